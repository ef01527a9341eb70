// Package main implements the chartsmith server binary.
// It serves the chart REST API, SVG exports and embed pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chartsmith/chartsmith/internal/app"
	"github.com/chartsmith/chartsmith/internal/config"
	"github.com/chartsmith/chartsmith/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
)

// flags holds command line overrides. Empty values leave the configuration alone.
type flags struct {
	configFile string
	envFile    string
	dataDir    string
	addr       string
	publicURL  string
	storeType  string
	storePath  string
	logLevel   string
	logFormat  string
}

func main() {
	var (
		f           flags
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&f.envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")
	flag.StringVar(&f.dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&f.addr, "addr", "", "HTTP listen address")
	flag.StringVar(&f.publicURL, "public-url", "", "Public origin used in embed snippets")
	flag.StringVar(&f.storeType, "store", "", "Chart store: memory, file, sqlite, postgres, mongo")
	flag.StringVar(&f.storePath, "store-path", "", "Path of the file or sqlite store")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&f.logFormat, "log-format", "", "Log format: text, json")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "chartsmith - chart configuration and rendering service\n\n")
		fmt.Fprintf(os.Stderr, "Usage: chartsmith [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  chartsmith --data-dir /var/lib/chartsmith\n")
		fmt.Fprintf(os.Stderr, "  chartsmith --store postgres --config /etc/chartsmith/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CHARTSMITH_DATA_DIR       Base directory for data files\n")
		fmt.Fprintf(os.Stderr, "  CHARTSMITH_HTTP_ADDR      HTTP listen address\n")
		fmt.Fprintf(os.Stderr, "  CHARTSMITH_STORE_TYPE     Chart store backend\n")
		fmt.Fprintf(os.Stderr, "  CHARTSMITH_POSTGRES_DSN   Postgres connection string\n")
		fmt.Fprintf(os.Stderr, "  CHARTSMITH_MONGO_URI      MongoDB connection string\n")
		fmt.Fprintf(os.Stderr, "  CHARTSMITH_STORAGE_TYPE   Export storage (local, s3)\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("chartsmith version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	printBanner(log, cfg)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Blocks until SIGINT or SIGTERM, then drains and closes everything.
	if err := application.WaitForShutdown(ctx); err != nil {
		log.Errorf("Shutdown error: %v", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	if err := application.Stop(stopCtx); err != nil {
		log.Errorf("Shutdown error: %v", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, .env and CHARTSMITH_*
// variables, then command line flags (highest priority).
func loadConfig(f flags) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if f.configFile != "" {
		cfg, err = config.LoadFromFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if err := config.LoadDotEnv(f.envFile); err != nil {
		return nil, err
	}
	config.LoadFromEnv(cfg)

	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}
	if f.addr != "" {
		cfg.HTTP.Addr = f.addr
	}
	if f.publicURL != "" {
		cfg.HTTP.PublicURL = f.publicURL
	}
	if f.storeType != "" {
		cfg.Store.Type = config.StoreType(f.storeType)
	}
	if f.storePath != "" {
		cfg.Store.Path = f.storePath
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}

	return cfg, nil
}

// printBanner logs the startup banner with configuration summary.
func printBanner(log logrus.FieldLogger, cfg *config.Config) {
	log.Infof("chartsmith %s (commit: %s)", version, commit)
	log.Infof("Configuration:")
	log.Infof("  Data Dir:   %s", cfg.DataDir)
	log.Infof("  HTTP:       %s", cfg.HTTP.Addr)
	log.Infof("  Public URL: %s", cfg.HTTP.PublicURL)
	log.Infof("  Store:      %s", cfg.Store.Type)
	log.Infof("  Storage:    %s", cfg.Storage.Type)
	log.Infof("  Strict references: %v", cfg.Validation.StrictReferences)
}
