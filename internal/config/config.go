// =============================================================================
// Sweepstakes Prefill Generator - Configuration Module
// =============================================================================
//
// This module loads the generator configuration. Every setting has a default,
// so a configuration file is optional; command-line flags override the file.
//
// PRECEDENCE (highest first):
//   1. Command-line flags (applied by cmd)
//   2. Environment variables (PREFILL_OUTPUT_DIR, PREFILL_ENCODING,
//      LOG_LEVEL, LOG_FORMAT), possibly loaded from .env
//   3. The YAML file (prefill.yaml unless --config names another)
//   4. Built-in defaults
//
// EXAMPLE prefill.yaml:
//
//   input_dir: ./logs
//   seed_file: ./SSCW.txt
//   output_dir: ./out
//   organization: NCCC
//   formats: [n1mm, wintest, trlog]
//   outputs:
//     n1mm: SS_prefill.txt
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sweeps-prefill/internal/export"
	"github.com/ginjaninja78/sweeps-prefill/internal/parser"
)

// DefaultFile is the configuration file read when --config is not given.
const DefaultFile = "prefill.yaml"

// DefaultSummaryFile is the summary report name used by --summary.
const DefaultSummaryFile = "run_summary.txt"

// Environment variables that override the file.
const (
	EnvOutputDir = "PREFILL_OUTPUT_DIR"
	EnvEncoding  = "PREFILL_ENCODING"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the settings for one generator run.
type Config struct {
	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// InputDir is the directory walked recursively for Cabrillo logs.
	// There is no default; a run needs either this or the -d flag.
	InputDir string `yaml:"input_dir"`

	// SeedFile is the optional prior-year prefill file (CSV or XLSX).
	SeedFile string `yaml:"seed_file"`

	// Encoding is the character set of the input files.
	// Supported: UTF-8, ISO-8859-1, Windows-1252. Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is the directory the export files are written to.
	// Default: "."
	OutputDir string `yaml:"output_dir"`

	// Formats lists the export formats to write.
	// Default: every registered format.
	Formats []string `yaml:"formats"`

	// Outputs overrides the file name of individual formats.
	// Example: {"n1mm": "SS_prefill.txt"}
	Outputs map[string]string `yaml:"outputs"`

	// Organization appears in the N1MM and WinTest headers.
	// Default: "NCCC"
	Organization string `yaml:"organization"`

	// Program appears in the WriteLog header.
	// Default: "WriteLog"
	Program string `yaml:"program"`

	// SummaryFile, when set, is the name of a run summary report written to
	// OutputDir.
	SummaryFile string `yaml:"summary_file"`

	// MetricsFile, when set, is a path the run metrics are written to in the
	// Prometheus textfile format.
	MetricsFile string `yaml:"metrics_file"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of debug, info, warn, error. Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is one of auto, json, console. Default: "auto"
	LogFormat string `yaml:"log_format"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration holding only default values.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration.
//
// PARAMETERS:
//   - path: The YAML file to read. Empty means DefaultFile.
//   - explicit: True when the user named the file. A missing explicit file
//     is an error; a missing default file yields the defaults.
//
// RETURNS:
//   - The configuration with environment overrides and defaults applied.
//   - An error if the file cannot be read or parsed, or is invalid.
func Load(path string, explicit bool) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No configuration file; defaults apply.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnv copies environment overrides into the configuration.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(EnvEncoding); v != "" {
		cfg.Encoding = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Encoding == "" {
		cfg.Encoding = parser.DefaultEncoding
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = export.DefaultNames()
	}
	if cfg.Outputs == nil {
		cfg.Outputs = make(map[string]string)
	}
	if cfg.Organization == "" {
		cfg.Organization = "NCCC"
	}
	if cfg.Program == "" {
		cfg.Program = "WriteLog"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "auto"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration and normalizes format names to lower
// case with duplicates removed.
func (c *Config) Validate() error {
	if !parser.SupportedEncoding(c.Encoding) {
		return fmt.Errorf("unsupported encoding %q", c.Encoding)
	}

	formats := make([]string, 0, len(c.Formats))
	seen := make(map[string]bool, len(c.Formats))
	for _, name := range c.Formats {
		f, err := export.Lookup(name)
		if err != nil {
			return err
		}
		if !seen[f.Name] {
			seen[f.Name] = true
			formats = append(formats, f.Name)
		}
	}
	c.Formats = formats

	for name, file := range c.Outputs {
		if _, err := export.Lookup(name); err != nil {
			return fmt.Errorf("outputs: %w", err)
		}
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("outputs: empty file name for %s", name)
		}
	}

	return nil
}

// OutputFile returns the file name the given format is written to.
func (c *Config) OutputFile(format string) string {
	if name, ok := c.Outputs[format]; ok && name != "" {
		return name
	}
	return export.Formats[format].DefaultFile
}

// ExportOptions returns the exporter header values for a run at now.
func (c *Config) ExportOptions(now time.Time) export.Options {
	opts := export.DefaultOptions(now)
	opts.Organization = c.Organization
	opts.Program = c.Program
	return opts
}
