package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chartsmith/chartsmith/internal/config"
	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/internal/importer"
	"github.com/chartsmith/chartsmith/internal/presets"
	"github.com/chartsmith/chartsmith/internal/render"
	"github.com/chartsmith/chartsmith/internal/storage"
	"github.com/chartsmith/chartsmith/internal/store"
	"github.com/chartsmith/chartsmith/internal/validation"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or to the command output when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeJSON(cmd *cobra.Command, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, path, append(data, '\n'))
}

// describe expands validation issues into the error message.
func describe(err error) error {
	var ce *cserrors.ChartError
	if !errors.As(err, &ce) || len(ce.Issues) == 0 {
		return err
	}
	lines := make([]string, len(ce.Issues))
	for i, is := range ce.Issues {
		lines[i] = "  " + is.String()
	}
	return fmt.Errorf("%s\n%s", ce.Message, strings.Join(lines, "\n"))
}

// loadServiceConfig layers defaults, the --config file, .env and CHARTSMITH_* variables.
func loadServiceConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	config.LoadFromEnv(cfg)

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	return cfg, nil
}

func newImportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Convert a CSV or XLSX file into a dataset document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := importer.Import(filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			cmd.PrintErrln(res.Message)
			return writeJSON(cmd, out, res.Dataset)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write the dataset to a file instead of stdout")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Validate a chart request, config or dataset document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			switch kind {
			case "request":
				req, err := validation.Request(raw)
				if err != nil {
					return describe(err)
				}
				if err := validation.CheckReferences(req.Config, req.Dataset); err != nil {
					return describe(err)
				}
			case "config":
				if _, err := validation.Config(raw); err != nil {
					return describe(err)
				}
			case "dataset":
				if _, err := validation.Dataset(raw); err != nil {
					return describe(err)
				}
			default:
				return fmt.Errorf("unknown document kind %q (must be request, config or dataset)", kind)
			}
			cmd.Println("valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "request", "Document kind: request, config or dataset")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		chartFile string
		presetID  string
		theme     string
		width     int
		height    int
		out       string
		planOnly  bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a chart to SVG, or print its render plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req validation.ChartRequest
			switch {
			case presetID != "" && chartFile != "":
				return fmt.Errorf("--chart and --preset are mutually exclusive")
			case presetID != "":
				p, err := presets.Get(presetID)
				if err != nil {
					return err
				}
				req.Config, req.Dataset = p.Instantiate(p.ID)
			case chartFile != "":
				raw, err := readInput(cmd, chartFile)
				if err != nil {
					return err
				}
				if req, err = validation.Request(raw); err != nil {
					return describe(err)
				}
			default:
				return fmt.Errorf("one of --chart or --preset is required")
			}

			opts := render.Options{Theme: types.Theme(theme), Width: width, Height: height}
			if planOnly {
				plan, err := render.Build(req.Config, req.Dataset, opts)
				if err != nil {
					return err
				}
				return writeJSON(cmd, out, plan)
			}

			res := render.Render(req.Config, req.Dataset, opts)
			if res.Failed() {
				cmd.PrintErrf("warning: rendered placeholder: %v\n", res.Err)
			}
			return writeOutput(cmd, out, res.SVG)
		},
	}
	cmd.Flags().StringVar(&chartFile, "chart", "", "Path to a {config, dataset} document, or - for stdin")
	cmd.Flags().StringVar(&presetID, "preset", "", "Render a gallery preset instead of a file")
	cmd.Flags().StringVar(&theme, "theme", "", "Override the theme: light or dark")
	cmd.Flags().IntVar(&width, "width", 0, "Width when the config carries no size")
	cmd.Flags().IntVar(&height, "height", 0, "Height when the config carries no size")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&planOnly, "plan", false, "Print the render plan as JSON instead of SVG")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Browse the preset gallery",
	}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				ps  []presets.Preset
				err error
			)
			if category != "" {
				ps, err = presets.ByCategory(presets.Category(category))
			} else {
				ps, err = presets.All()
			}
			if err != nil {
				return err
			}
			for _, p := range ps {
				cmd.Printf("%-28s %-8s %s\n", p.ID, p.Category, p.Title)
			}
			return nil
		},
	}
	list.Flags().StringVar(&category, "category", "", "Only list one category")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a preset as a {config, dataset} document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := presets.Get(args[0])
			if err != nil {
				return err
			}
			cfg, ds := p.Instantiate(p.ID)
			return writeJSON(cmd, "", map[string]interface{}{"config": cfg, "dataset": ds})
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

// openBackends opens the configured chart store and object storage.
func openBackends(ctx context.Context, cmd *cobra.Command) (store.Store, storage.ObjectStorage, error) {
	cfg, err := loadServiceConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return st, objects, nil
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write every saved chart to object storage as one JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, objects, err := openBackends(ctx, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			charts, err := st.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list charts: %w", err)
			}
			if charts == nil {
				charts = []*types.SavedChart{}
			}
			data, err := json.Marshal(charts)
			if err != nil {
				return err
			}
			key := storage.BackupKey(time.Now())
			etag, err := objects.Put(ctx, key, data, "application/json")
			if err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}
			cmd.Printf("backed up %d charts to %s (etag %s)\n", len(charts), key, etag)
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <key>",
		Short: "Put every chart of a backup back into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, objects, err := openBackends(ctx, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			data, err := objects.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}
			var charts []*types.SavedChart
			if err := json.Unmarshal(data, &charts); err != nil {
				return fmt.Errorf("failed to decode backup: %w", err)
			}
			for _, c := range charts {
				if _, err := st.Put(ctx, c); err != nil {
					return fmt.Errorf("failed to restore chart %s: %w", c.ID, err)
				}
			}
			cmd.Printf("restored %d charts from %s\n", len(charts), args[0])
			return nil
		},
	}
}
