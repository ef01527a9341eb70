// Command chartsmith-mcp exposes chart rendering, planning and validation
// as MCP tools over stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/chartsmith/chartsmith/internal/config"
	"github.com/chartsmith/chartsmith/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
)

func newServer(t *tools) *server.MCPServer {
	srv := server.NewMCPServer(
		"chartsmith",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	t.register(srv)
	return srv
}

func main() {
	var (
		configFile  string
		envFile     string
		showVersion bool
	)
	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("chartsmith-mcp version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	_, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", envFile, err)
		os.Exit(1)
	}
	config.LoadFromEnv(cfg)

	// stdout carries the protocol, so logs go to stderr only.
	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	srv := newServer(&tools{defaults: cfg.Render, log: log})
	log.Infof("chartsmith-mcp %s (commit: %s) serving on stdio", version, commit)

	if err := server.ServeStdio(srv); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
