// Package config loads the engine configuration from wfmend.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	// ErrNotFound indicates the config file does not exist.
	ErrNotFound = errors.New("config file not found")

	// ErrInvalidValue indicates a config field is out of range.
	ErrInvalidValue = errors.New("invalid config value")
)

// Write policies for documents that still carry unresolved issues after
// repair.
const (
	PolicyWritePartial = "write-partial"
	PolicyWithhold     = "withhold"
)

// DefaultFile is the config file looked up in the working directory when no
// --config flag is given.
const DefaultFile = "wfmend.toml"

// Duration wraps time.Duration for TOML decoding ("10s", "500ms").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config is the engine configuration.
type Config struct {
	Concurrency int      `toml:"concurrency"`
	Extensions  []string `toml:"extensions"`
	WritePolicy string   `toml:"write_policy"`
	ReportPath  string   `toml:"report_path"`
	IOTimeout   Duration `toml:"io_timeout"`
	TrackLog    string   `toml:"track_log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Concurrency: 4,
		Extensions:  []string{".cfg"},
		WritePolicy: PolicyWritePartial,
		ReportPath:  "wfmend-report.json",
		IOTimeout:   Duration{10 * time.Second},
	}
}

// Load reads and validates a TOML config file. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidValue, c.Concurrency)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("%w: extensions must not be empty", ErrInvalidValue)
	}
	if c.WritePolicy != PolicyWritePartial && c.WritePolicy != PolicyWithhold {
		return fmt.Errorf("%w: write_policy must be %q or %q, got %q",
			ErrInvalidValue, PolicyWritePartial, PolicyWithhold, c.WritePolicy)
	}
	if c.ReportPath == "" {
		return fmt.Errorf("%w: report_path must not be empty", ErrInvalidValue)
	}
	if c.IOTimeout.Duration <= 0 {
		return fmt.Errorf("%w: io_timeout must be positive, got %s", ErrInvalidValue, c.IOTimeout)
	}
	return nil
}
