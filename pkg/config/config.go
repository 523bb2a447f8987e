// Package config loads blescan settings from defaults, an optional YAML file
// and command line overrides, and applies them to a scan controller.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/scanner"
	"gopkg.in/yaml.v3"
)

// OutputFormats lists the accepted values of Config.OutputFormat.
var OutputFormats = []string{"text", "json"}

// Config holds application configuration
type Config struct {
	LogLevel     string       `yaml:"log_level" default:"info"`
	OutputFormat string       `yaml:"output_format" default:"text"`
	Scan         ScanSettings `yaml:"scan"`
}

// ScanSettings holds the scan parameters in user units (milliseconds).
type ScanSettings struct {
	Mode             string        `yaml:"mode" default:"active"`
	IntervalMs       int           `yaml:"interval_ms" default:"40"`
	WindowMs         int           `yaml:"window_ms" default:"30"`
	FilterDuplicates bool          `yaml:"filter_duplicates" default:"true"`
	Duration         time.Duration `yaml:"duration" default:"10s"`
	LogReports       bool          `yaml:"log_reports" default:"false"`

	AllowList    []string `yaml:"allow"`
	BlockList    []string `yaml:"block"`
	ServiceUUIDs []string `yaml:"services"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML configuration file on top of the defaults. Keys missing
// from the file keep their default values. An empty path returns the defaults.
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
	return cfg, nil
}

// Validate checks values that cannot be applied silently.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid format '%s': must be one of %v", c.OutputFormat, OutputFormats)
	}
	if _, err := scanner.ParseScanMode(c.Scan.Mode); err != nil {
		return err
	}
	if c.Scan.Duration < 0 {
		return fmt.Errorf("invalid scan duration %s: must not be negative", c.Scan.Duration)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (logrus.Level, error) {
	switch c.LogLevel {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	level, _ := c.Level()

	logger := logrus.New()
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}

// ReportFilter builds the report filter described by the allow, block and
// service lists, or nil when all of them are empty.
func (c *Config) ReportFilter() (*scanner.ReportFilter, error) {
	s := c.Scan
	if len(s.AllowList) == 0 && len(s.BlockList) == 0 && len(s.ServiceUUIDs) == 0 {
		return nil, nil
	}

	f := &scanner.ReportFilter{
		AllowList: s.AllowList,
		BlockList: s.BlockList,
	}
	if len(s.ServiceUUIDs) > 0 {
		uuids, err := device.ParseUUIDs(s.ServiceUUIDs...)
		if err != nil {
			return nil, fmt.Errorf("invalid service UUID: %w", err)
		}
		f.ServiceUUIDs = uuids
	}
	return f, nil
}

// Apply pushes the scan settings into the controller. The interval is set
// before the window so the window is validated against the new interval.
func (c *Config) Apply(ctrl *scanner.Controller) error {
	mode, err := scanner.ParseScanMode(c.Scan.Mode)
	if err != nil {
		return err
	}

	filter, err := c.ReportFilter()
	if err != nil {
		return err
	}

	ctrl.SetScanMode(mode)
	ctrl.SetScanInterval(c.Scan.IntervalMs)
	if err := ctrl.SetScanWindow(c.Scan.WindowMs); err != nil {
		return err
	}
	ctrl.SetDuplicateFilter(c.Scan.FilterDuplicates)
	ctrl.SetReportFilter(filter)
	return nil
}
