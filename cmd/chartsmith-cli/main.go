// Command chartsmith-cli imports, validates and renders charts offline and
// backs up the chart store to object storage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chartsmith-cli",
		Short:         "Offline tools for chartsmith charts",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to configuration file (YAML or JSON)")
	root.PersistentFlags().String("env-file", ".env", "Path to a .env file (ignored if missing)")

	root.AddCommand(
		newImportCmd(),
		newValidateCmd(),
		newRenderCmd(),
		newPresetsCmd(),
		newBackupCmd(),
		newRestoreCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
