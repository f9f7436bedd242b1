package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assetdesk.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/assets.db"
  wal_mode: false
  busy_timeout: 2
  seed_sample_data: true
ui_state:
  path: "/tmp/assets-ui.db"
logging:
  level: debug
  format: json
  output: stdout
labels:
  language: ja
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/assets.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/assets.db")
	}
	if cfg.Database.WALMode {
		t.Error("Database.WALMode = true, want false")
	}
	if !cfg.Database.SeedSampleData {
		t.Error("Database.SeedSampleData = false, want true")
	}
	if cfg.Labels.Language != "ja" {
		t.Errorf("Labels.Language = %q, want %q", cfg.Labels.Language, "ja")
	}
	if got := cfg.GetBusyTimeout().Seconds(); got != 2 {
		t.Errorf("GetBusyTimeout() = %v, want 2", got)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "labels:\n  language: ja\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := defaultConfig()
	if cfg.Database.Path != def.Database.Path {
		t.Errorf("Database.Path = %q, want default %q", cfg.Database.Path, def.Database.Path)
	}
	if cfg.UIState.Path != def.UIState.Path {
		t.Errorf("UIState.Path = %q, want default %q", cfg.UIState.Path, def.UIState.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/assetdesk.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "database: [unterminated")); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, "logging:\n  level: loud\n"))
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("Load() error = %v, want logging.level validation failure", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file yields defaults with env overrides", func(t *testing.T) {
		t.Setenv("ASSETDESK_DATABASE_PATH", "/env/assets.db")

		cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v", err)
		}
		if cfg.Database.Path != "/env/assets.db" {
			t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/env/assets.db")
		}
	})

	t.Run("broken file is still an error", func(t *testing.T) {
		if _, err := LoadOrDefault(writeConfig(t, "database: [")); err == nil {
			t.Error("LoadOrDefault() expected parse error, got nil")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid config", func(*Config) {}, ""},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"negative busy timeout", func(c *Config) { c.Database.BusyTimeout = -1 }, "busy_timeout"},
		{"missing ui state path", func(c *Config) { c.UIState.Path = "" }, "ui_state.path"},
		{"shared file", func(c *Config) { c.UIState.Path = c.Database.Path }, "must differ"},
		{"both in memory", func(c *Config) { c.Database.Path, c.UIState.Path = ":memory:", ":memory:" }, ""},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"missing language", func(c *Config) { c.Labels.Language = "" }, "labels.language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() on empty config should fail")
	}
	for _, want := range []string{"database.path", "ui_state.path", "logging.level", "labels.language"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q missing %q", err, want)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("ASSETDESK_DATABASE_PATH", "/custom/assets.db")
	t.Setenv("ASSETDESK_DATABASE_SEED_SAMPLE_DATA", "true")
	t.Setenv("ASSETDESK_UI_STATE_PATH", "/custom/ui.db")
	t.Setenv("ASSETDESK_LOG_LEVEL", "debug")
	t.Setenv("ASSETDESK_LANG", "ja")
	t.Setenv("ASSETDESK_LABELS_PATH", "/custom/labels.txt")

	applyEnvOverrides(cfg)

	checks := map[string][2]string{
		"Database.Path":   {cfg.Database.Path, "/custom/assets.db"},
		"UIState.Path":    {cfg.UIState.Path, "/custom/ui.db"},
		"Logging.Level":   {cfg.Logging.Level, "debug"},
		"Labels.Language": {cfg.Labels.Language, "ja"},
		"Labels.Path":     {cfg.Labels.Path, "/custom/labels.txt"},
	}
	for field, pair := range checks {
		if pair[0] != pair[1] {
			t.Errorf("%s = %q, want %q", field, pair[0], pair[1])
		}
	}
	if !cfg.Database.SeedSampleData {
		t.Error("Database.SeedSampleData = false, want true")
	}
}

func TestApplyEnvOverrides_IgnoresBadBool(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("ASSETDESK_DATABASE_SEED_SAMPLE_DATA", "maybe")
	applyEnvOverrides(cfg)
	if cfg.Database.SeedSampleData {
		t.Error("unparseable bool should leave SeedSampleData unchanged")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig() does not validate: %v", err)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Logging.Output = %q, want stderr so command output stays on stdout", cfg.Logging.Output)
	}
}
