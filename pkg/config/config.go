package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/advscan/internal/device"
	"github.com/srg/advscan/internal/queue"
	"github.com/srg/advscan/scanner"
	"gopkg.in/yaml.v3"
)

// Output formats supported by the CLI
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds application configuration
type Config struct {
	LogLevel        string        `yaml:"log_level"` // empty is silent
	Adapter         string        `yaml:"adapter"`
	BlockList       []string      `yaml:"block_list"`
	AllowDuplicates bool          `yaml:"allow_duplicates" default:"true"`
	PollInterval    time.Duration `yaml:"poll_interval" default:"100ms"`
	MaxPending      uint32        `yaml:"max_pending"`
	LookupTimeout   time.Duration `yaml:"lookup_timeout" default:"30s"`
	OutputFormat    string        `yaml:"output_format" default:"table"` // table, json
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := device.ParseAdapterIndex(c.Adapter); err != nil {
		return err
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must not be negative: %s", c.PollInterval)
	}
	if c.LookupTimeout < 0 {
		return fmt.Errorf("lookup_timeout must not be negative: %s", c.LookupTimeout)
	}
	if c.MaxPending > queue.MaxCapacity {
		return fmt.Errorf("max_pending %d exceeds maximum %d", c.MaxPending, queue.MaxCapacity)
	}
	switch c.OutputFormat {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("invalid output format '%s': must be one of %v", c.OutputFormat, []string{FormatTable, FormatJSON})
	}
	return nil
}

// Level parses LogLevel. An empty level means silent.
func (c *Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.PanicLevel, nil
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, errors.New("invalid log level: " + c.LogLevel + " (must be debug, info, warn, or error)")
	}
	return lvl, nil
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	lvl, err := c.Level()
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}

// ScanOptions maps the scan settings onto scanner options.
func (c *Config) ScanOptions() *scanner.ScanOptions {
	return &scanner.ScanOptions{
		Adapter:         c.Adapter,
		BlockList:       append([]string(nil), c.BlockList...),
		AllowDuplicates: c.AllowDuplicates,
		PollInterval:    c.PollInterval,
		MaxPending:      c.MaxPending,
	}
}
