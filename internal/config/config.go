// Package config loads run configuration from defaults, an optional config
// file, ECONCAL_* environment variables and command-line flags, in that
// order of precedence (flags win).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/econcal/internal/collector"
	"github.com/pfrederiksen/econcal/internal/filter"
	"github.com/pfrederiksen/econcal/internal/scraper"
	"github.com/pfrederiksen/econcal/internal/storage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ECONCAL_YEAR_FROM
const EnvPrefix = "ECONCAL"

// Config holds all run configuration.
type Config struct {
	SaveToFile      bool          `mapstructure:"save_to_file"`
	CurrentWeekOnly bool          `mapstructure:"current_week_only"`
	YearFrom        int           `mapstructure:"year_from"`
	YearTo          int           `mapstructure:"year_to"`
	Output          string        `mapstructure:"output"`
	Format          string        `mapstructure:"format"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	URLTemplate     string        `mapstructure:"url_template"`
	Timeout         time.Duration `mapstructure:"timeout"`
	OnError         string        `mapstructure:"on_error"`
	Workers         int           `mapstructure:"workers"`
	Currencies      []string      `mapstructure:"currency"`
	Impacts         []string      `mapstructure:"impact"`
	EventKind       string        `mapstructure:"event_kind"` // "", all-day, timed
	MetricsFile     string        `mapstructure:"metrics_file"`
	Log             LogConfig     `mapstructure:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("save_to_file", true)
	v.SetDefault("current_week_only", true)
	v.SetDefault("year_from", 2018)
	v.SetDefault("year_to", 2022)
	v.SetDefault("output", storage.DefaultCSVPath)
	v.SetDefault("format", string(storage.FormatCSV))
	v.SetDefault("sqlite_path", "")
	v.SetDefault("url_template", scraper.DefaultURLTemplate)
	v.SetDefault("timeout", scraper.Timeout)
	v.SetDefault("on_error", string(collector.PolicyAbort))
	v.SetDefault("workers", 1)
	v.SetDefault("currency", []string{})
	v.SetDefault("impact", []string{})
	v.SetDefault("event_kind", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
}

// Load reads configFile (if set) and the environment into a validated Config.
// Flags must already be bound to v.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// env values arrive as one comma-separated string
	cfg.Currencies = filter.ParseList(strings.Join(cfg.Currencies, ","))
	cfg.Impacts = filter.ParseList(strings.Join(cfg.Impacts, ","))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []string

	if !c.CurrentWeekOnly && c.YearFrom > c.YearTo {
		errs = append(errs, fmt.Sprintf("year_from (%d) must not be after year_to (%d)", c.YearFrom, c.YearTo))
	}
	if c.Workers < 1 {
		errs = append(errs, "workers must be at least 1")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}
	if _, err := collector.ParseErrorPolicy(c.OnError); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := storage.ParseFormat(c.Format); err != nil {
		errs = append(errs, err.Error())
	}
	if c.SaveToFile && c.Output == "" {
		errs = append(errs, "output path is required when save_to_file is set")
	}
	if !strings.Contains(c.URLTemplate, scraper.WeekPlaceholder) {
		errs = append(errs, fmt.Sprintf("url_template must contain %s", scraper.WeekPlaceholder))
	}
	switch c.EventKind {
	case "", "all-day", "timed":
	default:
		errs = append(errs, fmt.Sprintf("invalid event_kind: %s (must be 'all-day' or 'timed')", c.EventKind))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Mode returns the collector mode selected by CurrentWeekOnly
func (c *Config) Mode() collector.Mode {
	if c.CurrentWeekOnly {
		return collector.ModeCurrent
	}
	return collector.ModeHistorical
}

// AllDay maps EventKind to the filter's all-day criterion
func (c *Config) AllDay() *bool {
	switch c.EventKind {
	case "all-day":
		b := true
		return &b
	case "timed":
		b := false
		return &b
	default:
		return nil
	}
}
