// Package config provides unified configuration for chartsmith binaries.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by LoadFromEnv.
const EnvPrefix = "CHARTSMITH_"

// StoreType selects the chart store backend.
type StoreType string

const (
	StoreMemory   StoreType = "memory"
	StoreFile     StoreType = "file"
	StoreSQLite   StoreType = "sqlite"
	StorePostgres StoreType = "postgres"
	StoreMongo    StoreType = "mongo"
)

// Config holds the unified configuration.
type Config struct {
	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// HTTP configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Store configuration for saved charts
	Store StoreConfig `json:"store" yaml:"store"`

	// Storage configuration for exported artifacts and backups
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Render defaults
	Render RenderConfig `json:"render" yaml:"render"`

	// Validation policy
	Validation ValidationConfig `json:"validation" yaml:"validation"`

	// Log configuration
	Log LogConfig `json:"log" yaml:"log"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// Addr is the listen address of the API server
	Addr string `json:"addr" yaml:"addr"`

	// PublicURL is the origin used in embed snippets, e.g. https://charts.example.com
	PublicURL string `json:"public_url" yaml:"public_url"`

	// AllowedOrigins lists CORS origins; empty allows all
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// BodyLimit caps request bodies, echo syntax such as "10M"
	BodyLimit string `json:"body_limit" yaml:"body_limit"`
}

// StoreConfig holds chart store configuration.
type StoreConfig struct {
	// Type is the backend: memory, file, sqlite, postgres, mongo
	Type StoreType `json:"type" yaml:"type"`

	// Path is the file or sqlite database path (resolved under DataDir)
	Path string `json:"path" yaml:"path"`

	// PostgresDSN is the connection string for the postgres backend
	PostgresDSN string `json:"postgres_dsn" yaml:"postgres_dsn"`

	// MongoURI is the connection string for the mongo backend
	MongoURI string `json:"mongo_uri" yaml:"mongo_uri"`

	// MongoDatabase is the database holding the charts collection
	MongoDatabase string `json:"mongo_database" yaml:"mongo_database"`

	// ConnectTimeout bounds connecting to external stores
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	// Theme is used when neither the request nor the config names one
	Theme string `json:"theme" yaml:"theme"`

	// Width and Height apply when a chart config carries no size
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ValidationConfig holds validation policy.
type ValidationConfig struct {
	// StrictReferences rejects configs whose xKey/yKeys do not name dataset fields
	StrictReferences bool `json:"strict_references" yaml:"strict_references"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is a logrus level name
	Level string `json:"level" yaml:"level"`

	// Format is text or json
	Format string `json:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/chartsmith",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			PublicURL:       "http://localhost:8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			BodyLimit:       "10M",
		},
		Store: StoreConfig{
			Type:           StoreSQLite,
			MongoDatabase:  "chartsmith",
			ConnectTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Type: "local",
		},
		Render: RenderConfig{
			Theme:  "light",
			Width:  600,
			Height: 400,
		},
		Validation: ValidationConfig{
			StrictReferences: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/chartsmith"
	}

	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}

	if c.Store.Path == "" {
		switch c.Store.Type {
		case StoreFile:
			c.Store.Path = filepath.Join(c.DataDir, "charts.json")
		case StoreSQLite:
			c.Store.Path = filepath.Join(c.DataDir, "charts.db")
		}
	}

	c.HTTP.PublicURL = strings.TrimRight(c.HTTP.PublicURL, "/")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}

	switch c.Store.Type {
	case StoreMemory, StoreFile, StoreSQLite:
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store.postgres_dsn is required when store type is postgres")
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri is required when store type is mongo")
		}
		if c.Store.MongoDatabase == "" {
			return fmt.Errorf("store.mongo_database is required when store type is mongo")
		}
	default:
		return fmt.Errorf("invalid store type: %s (must be memory, file, sqlite, postgres, or mongo)", c.Store.Type)
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	switch c.Render.Theme {
	case "", "system", "light", "dark":
	default:
		return fmt.Errorf("invalid render theme: %s (must be system, light, or dark)", c.Render.Theme)
	}

	if c.Render.Width < 0 || c.Render.Height < 0 {
		return fmt.Errorf("render width and height must be non-negative")
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the CHARTSMITH_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// HTTP configuration
	if v := os.Getenv(EnvPrefix + "HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv(EnvPrefix + "PUBLIC_URL"); v != "" {
		cfg.HTTP.PublicURL = v
	}
	if v := os.Getenv(EnvPrefix + "ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv(EnvPrefix + "HTTP_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.ShutdownTimeout = d
		}
	}

	// Store configuration
	if v := os.Getenv(EnvPrefix + "STORE_TYPE"); v != "" {
		cfg.Store.Type = StoreType(v)
	}
	if v := os.Getenv(EnvPrefix + "STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv(EnvPrefix + "POSTGRES_DSN"); v != "" {
		cfg.Store.PostgresDSN = v
	}
	if v := os.Getenv(EnvPrefix + "MONGO_URI"); v != "" {
		cfg.Store.MongoURI = v
	}
	if v := os.Getenv(EnvPrefix + "MONGO_DATABASE"); v != "" {
		cfg.Store.MongoDatabase = v
	}

	// Storage configuration
	if v := os.Getenv(EnvPrefix + "STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv(EnvPrefix + "STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvPrefix + "S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv(EnvPrefix + "S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv(EnvPrefix + "S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}

	// Render and validation
	if v := os.Getenv(EnvPrefix + "RENDER_THEME"); v != "" {
		cfg.Render.Theme = v
	}
	if v := os.Getenv(EnvPrefix + "STRICT_REFERENCES"); v != "" {
		cfg.Validation.StrictReferences = v == "true" || v == "1"
	}

	// Logging
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}
	if c.Store.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Store.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
