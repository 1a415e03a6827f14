package config

import (
	"time"

	"github.com/hargabyte/clsinfo/internal/lookup"
)

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	enabled := true
	return &Config{
		Scan: ScanConfig{
			Extensions: []string{".h", ".hh", ".hpp", ".hxx"},
			Exclude: []string{
				"build/**",
				"third_party/**",
				"**/testdata/**",
			},
			StdNames: append([]string(nil), lookup.DefaultStdNames...),
		},
		Layout: LayoutConfig{
			PointerSize: 8,
			LongSize:    8,
		},
		Journal: JournalConfig{
			Enabled: &enabled,
			Path:    "journal.db",
		},
		Output: OutputConfig{
			Format: "yaml",
		},
		Serve: ServeConfig{
			Tools:   append([]string(nil), ValidTools...),
			Timeout: 30 * time.Second,
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Scan:    mergeScanConfig(loaded.Scan, defaults.Scan),
		Layout:  mergeLayoutConfig(loaded.Layout, defaults.Layout),
		Journal: mergeJournalConfig(loaded.Journal, defaults.Journal),
		Output:  mergeOutputConfig(loaded.Output, defaults.Output),
		Serve:   mergeServeConfig(loaded.Serve, defaults.Serve),
	}
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := ScanConfig{}

	if len(loaded.Extensions) > 0 {
		result.Extensions = loaded.Extensions
	} else {
		result.Extensions = defaults.Extensions
	}

	if len(loaded.Exclude) > 0 {
		result.Exclude = loaded.Exclude
	} else {
		result.Exclude = defaults.Exclude
	}

	if len(loaded.StdNames) > 0 {
		result.StdNames = loaded.StdNames
	} else {
		result.StdNames = defaults.StdNames
	}

	return result
}

func mergeLayoutConfig(loaded, defaults LayoutConfig) LayoutConfig {
	result := defaults
	if loaded.PointerSize != 0 {
		result.PointerSize = loaded.PointerSize
	}
	if loaded.LongSize != 0 {
		result.LongSize = loaded.LongSize
	}
	return result
}

func mergeJournalConfig(loaded, defaults JournalConfig) JournalConfig {
	result := defaults
	if loaded.Enabled != nil {
		result.Enabled = loaded.Enabled
	}
	if loaded.Path != "" {
		result.Path = loaded.Path
	}
	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.Format != "" {
		result.Format = loaded.Format
	} else {
		result.Format = defaults.Format
	}

	return result
}

func mergeServeConfig(loaded, defaults ServeConfig) ServeConfig {
	result := defaults
	if len(loaded.Tools) > 0 {
		result.Tools = loaded.Tools
	}
	if loaded.Timeout != 0 {
		result.Timeout = loaded.Timeout
	}
	return result
}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"yaml", "json"}

// IsValidFormat checks if the given format value is valid
func IsValidFormat(format string) bool {
	for _, valid := range ValidFormats {
		if format == valid {
			return true
		}
	}
	return false
}

// ValidTools lists the MCP tools the serve command can expose
var ValidTools = []string{"clsinfo_list", "clsinfo_show", "clsinfo_method"}

// IsValidTool checks if the given tool name is known
func IsValidTool(tool string) bool {
	for _, valid := range ValidTools {
		if tool == valid {
			return true
		}
	}
	return false
}
