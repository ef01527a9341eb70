package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if !cfg.Validation.StrictReferences {
		t.Error("strict references should default to true")
	}
	if cfg.Store.Path != filepath.Join(cfg.DataDir, "charts.db") {
		t.Errorf("unexpected sqlite path %q", cfg.Store.Path)
	}
}

func TestResolve_FileStorePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/cs"
	cfg.Store.Type = StoreFile
	cfg.HTTP.PublicURL = "https://charts.example.com/"
	cfg.Resolve()

	if cfg.Store.Path != "/tmp/cs/charts.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Storage.Path != "/tmp/cs/storage" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.HTTP.PublicURL != "https://charts.example.com" {
		t.Errorf("PublicURL = %q", cfg.HTTP.PublicURL)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }},
		{"bad store", func(c *Config) { c.Store.Type = "redis" }},
		{"postgres without dsn", func(c *Config) { c.Store.Type = StorePostgres }},
		{"mongo without uri", func(c *Config) { c.Store.Type = StoreMongo }},
		{"bad storage", func(c *Config) { c.Storage.Type = "gcs" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }},
		{"bad theme", func(c *Config) { c.Render.Theme = "sepia" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chartsmith.yaml")
	content := `
data_dir: /var/lib/chartsmith
http:
  addr: ":9090"
  read_timeout: 5s
store:
  type: memory
validation:
  strict_references: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.HTTP.ReadTimeout)
	}
	if cfg.Store.Type != StoreMemory {
		t.Errorf("Store.Type = %q", cfg.Store.Type)
	}
	if cfg.Validation.StrictReferences {
		t.Error("strict references should be disabled")
	}
	// Unset fields keep their defaults.
	if cfg.HTTP.WriteTimeout != 60*time.Second {
		t.Errorf("WriteTimeout = %v", cfg.HTTP.WriteTimeout)
	}
}

func TestLoadFromFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chartsmith.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for .toml")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHARTSMITH_STORE_TYPE", "postgres")
	t.Setenv("CHARTSMITH_POSTGRES_DSN", "postgres://localhost/charts")
	t.Setenv("CHARTSMITH_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CHARTSMITH_STRICT_REFERENCES", "false")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.Store.Type != StorePostgres {
		t.Errorf("Store.Type = %q", cfg.Store.Type)
	}
	if cfg.Store.PostgresDSN != "postgres://localhost/charts" {
		t.Errorf("PostgresDSN = %q", cfg.Store.PostgresDSN)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Validation.StrictReferences {
		t.Error("strict references should be disabled")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CHARTSMITH_TEST_DOTENV=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("CHARTSMITH_TEST_DOTENV") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("CHARTSMITH_TEST_DOTENV"); got != "loaded" {
		t.Errorf("got %q", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Resolve()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{cfg.DataDir, cfg.Storage.Path} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("directory %s not created: %v", dir, err)
		}
	}
}
