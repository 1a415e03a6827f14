package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Scan.Extensions) != 4 || cfg.Scan.Extensions[0] != ".h" {
		t.Errorf("expected default extensions starting with .h, got %v", cfg.Scan.Extensions)
	}

	if len(cfg.Scan.Exclude) != 3 {
		t.Errorf("expected 3 exclude patterns, got %d", len(cfg.Scan.Exclude))
	}

	if len(cfg.Scan.StdNames) == 0 {
		t.Error("expected default std names")
	}

	if opts := cfg.Layout.Options(); opts.PointerSize != 8 || opts.LongSize != 8 {
		t.Errorf("expected LP64 layout, got %+v", opts)
	}

	if !cfg.Journal.IsEnabled() {
		t.Error("expected journal enabled by default")
	}

	if cfg.Output.Format != "yaml" {
		t.Errorf("expected format yaml, got %s", cfg.Output.Format)
	}

	if len(cfg.Serve.Tools) != len(ValidTools) {
		t.Errorf("expected all tools served, got %v", cfg.Serve.Tools)
	}

	if cfg.Serve.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %s", cfg.Serve.Timeout)
	}
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"yaml", true},
		{"json", true},
		{"cgf", false},
		{"", false},
		{"JSON", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			result := IsValidFormat(tt.format)
			if result != tt.valid {
				t.Errorf("IsValidFormat(%q) = %v, want %v", tt.format, result, tt.valid)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid format",
			modify: func(c *Config) {
				c.Output.Format = "xml"
			},
			wantErr: true,
		},
		{
			name: "ILP32 layout",
			modify: func(c *Config) {
				c.Layout.PointerSize = 4
				c.Layout.LongSize = 4
			},
			wantErr: false,
		},
		{
			name: "odd pointer size",
			modify: func(c *Config) {
				c.Layout.PointerSize = 6
			},
			wantErr: true,
		},
		{
			name: "odd long size",
			modify: func(c *Config) {
				c.Layout.LongSize = 2
			},
			wantErr: true,
		},
		{
			name: "no extensions",
			modify: func(c *Config) {
				c.Scan.Extensions = nil
			},
			wantErr: true,
		},
		{
			name: "empty journal path",
			modify: func(c *Config) {
				c.Journal.Path = ""
			},
			wantErr: true,
		},
		{
			name: "unknown tool",
			modify: func(c *Config) {
				c.Serve.Tools = []string{"clsinfo_list", "cx_show"}
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			modify: func(c *Config) {
				c.Serve.Timeout = -time.Second
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	defaults := DefaultConfig()

	t.Run("empty loaded uses all defaults", func(t *testing.T) {
		merged := Merge(&Config{}, defaults)

		if merged.Output.Format != defaults.Output.Format {
			t.Errorf("expected format %s, got %s", defaults.Output.Format, merged.Output.Format)
		}
		if merged.Layout != defaults.Layout {
			t.Errorf("expected layout %+v, got %+v", defaults.Layout, merged.Layout)
		}
		if !merged.Journal.IsEnabled() {
			t.Error("expected journal enabled")
		}
	})

	t.Run("loaded values take precedence", func(t *testing.T) {
		disabled := false
		loaded := &Config{
			Layout:  LayoutConfig{PointerSize: 4},
			Journal: JournalConfig{Enabled: &disabled},
			Output:  OutputConfig{Format: "json"},
			Serve:   ServeConfig{Tools: []string{"clsinfo_show"}},
		}
		merged := Merge(loaded, defaults)

		if merged.Output.Format != "json" {
			t.Errorf("expected format json, got %s", merged.Output.Format)
		}
		if merged.Layout.PointerSize != 4 {
			t.Errorf("expected pointer size 4, got %d", merged.Layout.PointerSize)
		}
		if merged.Journal.IsEnabled() {
			t.Error("explicit journal.enabled=false was lost")
		}
		if len(merged.Serve.Tools) != 1 {
			t.Errorf("expected one tool, got %v", merged.Serve.Tools)
		}

		// Unset values should use defaults
		if merged.Layout.LongSize != defaults.Layout.LongSize {
			t.Errorf("expected default long size %d, got %d", defaults.Layout.LongSize, merged.Layout.LongSize)
		}
		if merged.Journal.Path != defaults.Journal.Path {
			t.Errorf("expected default journal path, got %s", merged.Journal.Path)
		}
		if merged.Serve.Timeout != defaults.Serve.Timeout {
			t.Errorf("expected default timeout, got %s", merged.Serve.Timeout)
		}
	})
}

func TestFindConfigDir(t *testing.T) {
	tmpDir := t.TempDir()

	projectDir := filepath.Join(tmpDir, "project")
	subDir := filepath.Join(projectDir, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("no config dir returns error", func(t *testing.T) {
		_, err := FindConfigDir(subDir)
		if err == nil {
			t.Error("expected error when no .clsinfo directory exists")
		}
	})

	configDir := filepath.Join(projectDir, ConfigDirName)
	if err := os.Mkdir(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("finds config dir in current directory", func(t *testing.T) {
		found, err := FindConfigDir(projectDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})

	t.Run("finds config dir in parent directory", func(t *testing.T) {
		found, err := FindConfigDir(subDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})
}

func TestEnsureConfigDir(t *testing.T) {
	tmpDir := t.TempDir()

	dir, err := EnsureConfigDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectedDir := filepath.Join(tmpDir, ConfigDirName)
	if dir != expectedDir {
		t.Errorf("expected %s, got %s", expectedDir, dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("config directory not created: %v", err)
	}

	// Second call returns the same directory.
	again, err := EnsureConfigDir(tmpDir)
	if err != nil || again != expectedDir {
		t.Errorf("EnsureConfigDir again = %s, %v", again, err)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("loads valid config file", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		content := `
scan:
  extensions: [.h]
layout:
  pointer_size: 4
journal:
  enabled: false
output:
  format: json
serve:
  timeout: 5s
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFromPath(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Scan.Extensions) != 1 {
			t.Errorf("expected 1 extension, got %d", len(cfg.Scan.Extensions))
		}
		if cfg.Layout.PointerSize != 4 || cfg.Layout.LongSize != 8 {
			t.Errorf("unexpected layout %+v", cfg.Layout)
		}
		if cfg.Journal.IsEnabled() {
			t.Error("expected journal disabled")
		}
		if cfg.Output.Format != "json" {
			t.Errorf("expected format json, got %s", cfg.Output.Format)
		}
		if cfg.Serve.Timeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %s", cfg.Serve.Timeout)
		}
		if len(cfg.Scan.Exclude) != 3 {
			t.Errorf("expected default excludes, got %v", cfg.Scan.Exclude)
		}
	})

	t.Run("returns defaults for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromPath(filepath.Join(tmpDir, "nonexistent.yaml"))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.Output.Format != DefaultConfig().Output.Format {
			t.Errorf("expected default format, got %s", cfg.Output.Format)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("invalid: yaml: content"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadFromPath(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns error for invalid config values", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "bad-values.yaml")
		content := `
layout:
  long_size: 16
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadFromPath(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestLoadAndSaveDefault(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("expected defaults without config dir, got %s", cfg.Output.Format)
	}

	path, err := SaveDefault(tmpDir)
	if err != nil {
		t.Fatalf("SaveDefault: %v", err)
	}
	if path != filepath.Join(tmpDir, ConfigDirName, ConfigFileName) {
		t.Errorf("unexpected config path %s", path)
	}

	if _, err := SaveDefault(tmpDir); err == nil {
		t.Error("expected error when config already exists")
	}

	cfg, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("loading saved default: %v", err)
	}
	if cfg.Serve.Timeout != 30*time.Second {
		t.Errorf("round-tripped timeout = %s", cfg.Serve.Timeout)
	}

	configDir := filepath.Join(tmpDir, ConfigDirName)
	if got := cfg.JournalPath(configDir); got != filepath.Join(configDir, "journal.db") {
		t.Errorf("JournalPath = %s", got)
	}
}
