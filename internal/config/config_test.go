package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Book.BirthdayHorizonDays != 7 {
		t.Errorf("BirthdayHorizonDays = %d, want 7", cfg.Book.BirthdayHorizonDays)
	}
	if cfg.Storage.DatabasePath != "rolo.db" {
		t.Errorf("DatabasePath = %q, want rolo.db", cfg.Storage.DatabasePath)
	}
	if cfg.Logging.Debug {
		t.Error("Debug logging enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config does not validate: %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Book.BirthdayHorizonDays != 7 {
		t.Errorf("BirthdayHorizonDays = %d, want default 7", cfg.Book.BirthdayHorizonDays)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
book:
  birthday_horizon_days: 14
storage:
  database_path: custom.db
watch:
  enabled: false
  debounce: 2s
logging:
  debug: true
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Book.BirthdayHorizonDays != 14 {
		t.Errorf("BirthdayHorizonDays = %d, want 14", cfg.Book.BirthdayHorizonDays)
	}
	if cfg.Storage.DatabasePath != "custom.db" {
		t.Errorf("DatabasePath = %q, want custom.db", cfg.Storage.DatabasePath)
	}
	if cfg.Watch.Enabled {
		t.Error("Watch.Enabled = true, want false")
	}
	if got := cfg.GetWatchDebounce(); got != 2*time.Second {
		t.Errorf("GetWatchDebounce = %v, want 2s", got)
	}
	if !cfg.Logging.Debug {
		t.Error("Logging.Debug = false, want true")
	}
	// Name keeps its default when the file omits it.
	if cfg.Name != "rolo" {
		t.Errorf("Name = %q, want rolo", cfg.Name)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{not yaml"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load(malformed) succeeded, want error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Book.BirthdayHorizonDays = 21
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Book.BirthdayHorizonDays != 21 {
		t.Errorf("BirthdayHorizonDays = %d after round trip, want 21", loaded.Book.BirthdayHorizonDays)
	}
}

func TestGetWatchDebounce_BadValue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watch.Debounce = "soon"
	if got := cfg.GetWatchDebounce(); got != 500*time.Millisecond {
		t.Errorf("GetWatchDebounce = %v, want 500ms fallback", got)
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("/data", "rolo.db"); got != filepath.Join("/data", "rolo.db") {
		t.Errorf("ResolvePath relative = %q", got)
	}
	if got := ResolvePath("/data", "/abs/rolo.db"); got != "/abs/rolo.db" {
		t.Errorf("ResolvePath absolute = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Default", func(c *Config) {}, false},
		{"ZeroHorizon", func(c *Config) { c.Book.BirthdayHorizonDays = 0 }, true},
		{"EmptyDB", func(c *Config) { c.Storage.DatabasePath = "" }, true},
		{"BadLevel", func(c *Config) { c.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
