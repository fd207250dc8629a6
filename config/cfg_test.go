package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"pdfstyle/theme"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Theme.Name != "" {
		t.Errorf("Theme.Name = %q, want empty", cfg.Theme.Name)
	}
	if cfg.Theme.References != "loose" {
		t.Errorf("Theme.References = %q, want loose", cfg.Theme.References)
	}
	if cfg.Transform.MergeAdjacentText {
		t.Error("MergeAdjacentText should be false by default")
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("file level = %q, want none", cfg.Logging.FileLogger.Level)
	}
	if !strings.HasSuffix(cfg.Logging.FileLogger.Destination, "pdfstyle.log") {
		t.Errorf("file destination = %q, want expanded template", cfg.Logging.FileLogger.Destination)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, `version: 1
theme:
  name: custom
  dir: `+dir+`
  references: strict
transform:
  merge_adjacent_text: true
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Theme.Name != "custom" {
		t.Errorf("Theme.Name = %q, want custom", cfg.Theme.Name)
	}
	if cfg.Theme.Dir != filepath.Clean(dir) {
		t.Errorf("Theme.Dir = %q, want %q", cfg.Theme.Dir, dir)
	}
	if cfg.Theme.ReferencePolicy() != theme.ReferencesStrict {
		t.Errorf("ReferencePolicy() = %v, want strict", cfg.Theme.ReferencePolicy())
	}
	if !cfg.Transform.MergeAdjacentText {
		t.Error("Expected MergeAdjacentText to be true")
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q, want debug", cfg.Logging.ConsoleLogger.Level)
	}
	// not present in file - keeps default
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("file level = %q, want none", cfg.Logging.FileLogger.Level)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ntheme:\n  name: x\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"unknown nested field", "version: 1\ntheme:\n  colour: red\n"},
		{"invalid version", "version: 2\n"},
		{"invalid references", "version: 1\ntheme:\n  references: lenient\n"},
		{"missing theme dir", "version: 1\ntheme:\n  dir: /nonexistent/themes\n"},
		{"invalid console level", "version: 1\nlogging:\n  console:\n    level: verbose\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadConfiguration() expected error")
			}
		})
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Theme: ThemeConfig{
			Name:       "custom",
			References: "strict",
		},
		Transform: TransformConfig{MergeAdjacentText: true},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Dump() returned empty data")
	}

	// Verify we can load it back
	cfg2 := &Config{}
	_, err = unmarshalConfig(data, cfg2, false)
	if err != nil {
		t.Errorf("Dumped config cannot be loaded: %v", err)
	}

	if cfg2.Theme != cfg.Theme || cfg2.Transform != cfg.Transform {
		t.Errorf("mismatch after dump/load: got %+v, want %+v", cfg2, cfg)
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		data := []byte(`version: 1`)
		cfg := &Config{}

		result, err := unmarshalConfig(data, cfg, false)
		if err != nil {
			t.Errorf("unmarshalConfig() error = %v", err)
		}

		if result == nil {
			t.Fatal("unmarshalConfig() returned nil")
		}

		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		data := []byte(`invalid: [yaml`)
		cfg := &Config{}

		_, err := unmarshalConfig(data, cfg, false)
		if err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestThemeConfig_ReferencePolicy(t *testing.T) {
	tests := []struct {
		value string
		want  theme.ReferencePolicy
	}{
		{"loose", theme.ReferencesLoose},
		{"strict", theme.ReferencesStrict},
		{"", theme.ReferencesLoose},
		{"bogus", theme.ReferencesLoose},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			conf := ThemeConfig{References: tt.value}
			if got := conf.ReferencePolicy(); got != tt.want {
				t.Errorf("ReferencePolicy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggingConfig_Prepare(t *testing.T) {
	t.Run("console only", func(t *testing.T) {
		conf := LoggingConfig{
			ConsoleLogger: LoggerConfig{Level: "none"},
			FileLogger:    LoggerConfig{Level: "none"},
		}
		log, err := conf.Prepare()
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		log.Info("not visible anywhere")
	})

	t.Run("file log", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "test.log")
		conf := LoggingConfig{
			ConsoleLogger: LoggerConfig{Level: "none"},
			FileLogger:    LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"},
		}
		log, err := conf.Prepare()
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		log.Debug("theme resolved")
		_ = log.Sync()

		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("unable to read log: %v", err)
		}
		if !strings.Contains(string(data), "theme resolved") {
			t.Errorf("log file does not contain message: %q", data)
		}
	})

	t.Run("debug switch", func(t *testing.T) {
		conf := LoggingConfig{ConsoleLogger: LoggerConfig{Level: "normal"}}
		conf.Debug()
		if conf.ConsoleLogger.Level != "debug" {
			t.Errorf("console level = %q, want debug", conf.ConsoleLogger.Level)
		}
	})
}
