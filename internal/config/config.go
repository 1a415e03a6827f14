package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hargabyte/clsinfo/internal/decl"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the clsinfo configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the clsinfo configuration directory
const ConfigDirName = ".clsinfo"

// Config holds all clsinfo configuration
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Layout  LayoutConfig  `yaml:"layout"`
	Journal JournalConfig `yaml:"journal"`
	Output  OutputConfig  `yaml:"output"`
	Serve   ServeConfig   `yaml:"serve"`
}

// ScanConfig holds configuration for header discovery and name lookup
type ScanConfig struct {
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude"`
	// StdNames are unqualified names that lookup retries with std::
	// prepended.
	StdNames []string `yaml:"std_names"`
}

// LayoutConfig describes the target data model used for record sizes
type LayoutConfig struct {
	PointerSize int64 `yaml:"pointer_size"`
	LongSize    int64 `yaml:"long_size"`
}

// Options converts the layout section for the declaration tree.
func (l LayoutConfig) Options() decl.LayoutOptions {
	return decl.LayoutOptions{PointerSize: l.PointerSize, LongSize: l.LongSize}
}

// JournalConfig holds configuration for the snippet journal
type JournalConfig struct {
	// Enabled is a pointer so an explicit false survives merging.
	Enabled *bool `yaml:"enabled"`
	// Path is relative to the config directory.
	Path string `yaml:"path"`
}

// IsEnabled reports whether snippets should be journaled.
func (j JournalConfig) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format string `yaml:"format"`
}

// ServeConfig holds configuration for the MCP server
type ServeConfig struct {
	Tools   []string      `yaml:"tools"`
	Timeout time.Duration `yaml:"timeout"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .clsinfo/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .clsinfo directory by walking up from startDir.
// Returns the path to the .clsinfo directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .clsinfo directory if it doesn't exist.
// Returns the path to the .clsinfo directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// JournalPath resolves the journal database path against configDir.
func (c *Config) JournalPath(configDir string) string {
	if filepath.IsAbs(c.Journal.Path) {
		return c.Journal.Path
	}
	return filepath.Join(configDir, c.Journal.Path)
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if !IsValidFormat(cfg.Output.Format) {
		return fmt.Errorf("%w: format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}

	if cfg.Layout.PointerSize != 4 && cfg.Layout.PointerSize != 8 {
		return fmt.Errorf("%w: pointer_size must be 4 or 8, got %d",
			ErrInvalidConfig, cfg.Layout.PointerSize)
	}

	if cfg.Layout.LongSize != 4 && cfg.Layout.LongSize != 8 {
		return fmt.Errorf("%w: long_size must be 4 or 8, got %d",
			ErrInvalidConfig, cfg.Layout.LongSize)
	}

	if len(cfg.Scan.Extensions) == 0 {
		return fmt.Errorf("%w: extensions must not be empty", ErrInvalidConfig)
	}

	if cfg.Journal.Path == "" {
		return fmt.Errorf("%w: journal path must not be empty", ErrInvalidConfig)
	}

	for _, tool := range cfg.Serve.Tools {
		if !IsValidTool(tool) {
			return fmt.Errorf("%w: unknown serve tool %q, valid tools are %v",
				ErrInvalidConfig, tool, ValidTools)
		}
	}

	if cfg.Serve.Timeout < 0 {
		return fmt.Errorf("%w: serve timeout must be non-negative, got %s",
			ErrInvalidConfig, cfg.Serve.Timeout)
	}

	return nil
}

// SaveDefault writes the default configuration to .clsinfo/config.yaml in
// workDir. Creates the .clsinfo directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# clsinfo configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}
