package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type LoggingCfg struct {
	RotationDays int `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

// Config holds the optional settings for a sweep. The zero-flag run uses
// Default(); nothing here changes which directories or patterns are swept.
type Config struct {
	RetryInvalidInput bool       `yaml:"retry_invalid_input" json:"retry_invalid_input"` // Re-prompt after invalid input
	MaxAttempts       int        `yaml:"max_attempts" json:"max_attempts"`               // Prompt attempts when retrying (default: 3)
	DatabasePath      string     `yaml:"database_path" json:"database_path"`             // SQLite deletion history, empty disables
	MetricsTextfile   string     `yaml:"metrics_textfile" json:"metrics_textfile"`       // Prometheus textfile output, empty disables
	LogFile           string     `yaml:"log_file" json:"log_file"`                       // Diagnostic log file, empty disables
	Logging           LoggingCfg `yaml:"logging" json:"logging"`
	Color             string     `yaml:"color" json:"color"` // auto, always or never
}

var (
	errInvalidAttempts = errors.New("max_attempts cannot be negative")
	errInvalidColor    = errors.New("color must be auto, always or never")
	errInvalidPath     = errors.New("path must not be a directory")
)

// Default returns the configuration used when no --config is given.
func Default() *Config {
	cfg := &Config{}
	// Defaults never fail validation.
	_ = cfg.validateAndDefault()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		// An empty file is a valid "all defaults" config
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.MaxAttempts < 0 {
		return errInvalidAttempts
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}

	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	switch c.Color {
	case "":
		c.Color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: %q", errInvalidColor, c.Color)
	}

	for _, p := range []*string{&c.DatabasePath, &c.MetricsTextfile, &c.LogFile} {
		cp, err := cleanFile(*p)
		if err != nil {
			return err
		}
		*p = cp
	}

	return nil
}

// cleanFile normalizes an optional file path. Relative paths stay relative
// to the working directory the sweep runs in.
func cleanFile(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	cp := filepath.Clean(p)
	if info, err := os.Stat(cp); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

// Attempts returns how many times the prompt may be shown.
func (c *Config) Attempts() int {
	if !c.RetryInvalidInput {
		return 1
	}
	return c.MaxAttempts
}
