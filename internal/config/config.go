package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Document     DocumentConfig     `mapstructure:"document"`
	Selectors    SelectorsConfig    `mapstructure:"selectors"`
	Closures     ClosuresConfig     `mapstructure:"closures"`
	BankHolidays BankHolidaysConfig `mapstructure:"bank_holidays"`
	Daemon       DaemonConfig       `mapstructure:"daemon"`
}

// DocumentConfig points at the theme HTML to annotate
type DocumentConfig struct {
	Input    string `mapstructure:"input"`
	Output   string `mapstructure:"output"`   // Defaults to Input (rewrite in place)
	Fragment bool   `mapstructure:"fragment"` // Section markup without <html>/<body>
}

// SelectorsConfig holds the class names used to locate page elements
type SelectorsConfig struct {
	Section string `mapstructure:"section"`
	Table   string `mapstructure:"table"`
	Note    string `mapstructure:"note"`
}

// ClosuresConfig controls how closures are resolved
type ClosuresConfig struct {
	Window   string `mapstructure:"window"`   // "week" or "year"; empty defers to data-window
	Timezone string `mapstructure:"timezone"` // IANA name, e.g. Europe/London
}

// BankHolidaysConfig configures optional bank holiday sources. They are
// consulted only when the section enables bank holidays.
type BankHolidaysConfig struct {
	File     string `mapstructure:"file"`
	FeedURL  string `mapstructure:"feed_url"`
	Division string `mapstructure:"division"`
	CacheTTL string `mapstructure:"cache_ttl"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	DailyTime string `mapstructure:"daily_time"` // Time to re-render (HH:MM, closures.timezone)
	LogFile   string `mapstructure:"log_file"`
	LogLevel  string `mapstructure:"log_level"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.opening-times")
		v.AddConfigPath("/etc/opening-times")
	}

	setDefaults(v)

	// Read environment variables, e.g. OPENING_TIMES_DOCUMENT_INPUT
	v.SetEnvPrefix("opening_times")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("selectors.section", "foxy-opening-times")
	v.SetDefault("selectors.table", "opening-times-table")
	v.SetDefault("selectors.note", "exceptions-note")
	v.SetDefault("daemon.daily_time", "00:05")
	v.SetDefault("daemon.log_level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Document.Input == "" {
		return fmt.Errorf("document.input is required")
	}

	if c.Selectors.Section == "" || c.Selectors.Table == "" || c.Selectors.Note == "" {
		return fmt.Errorf("selectors.section, selectors.table and selectors.note must not be empty")
	}

	switch c.Closures.Window {
	case "", "week", "year":
	default:
		return fmt.Errorf("closures.window must be 'week' or 'year', got '%s'", c.Closures.Window)
	}

	if c.Closures.Timezone != "" {
		if _, err := time.LoadLocation(c.Closures.Timezone); err != nil {
			return fmt.Errorf("closures.timezone is invalid: %w", err)
		}
	}

	if c.BankHolidays.CacheTTL != "" {
		if _, err := time.ParseDuration(c.BankHolidays.CacheTTL); err != nil {
			return fmt.Errorf("bank_holidays.cache_ttl is invalid: %w", err)
		}
	}

	if c.Daemon.DailyTime != "" {
		if _, _, ok := parseClock(c.Daemon.DailyTime); !ok {
			return fmt.Errorf("daemon.daily_time must be HH:MM, got '%s'", c.Daemon.DailyTime)
		}
	}

	return nil
}

// OutputPath returns where the annotated document is written
func (d *DocumentConfig) OutputPath() string {
	if d.Output == "" {
		return d.Input
	}
	return d.Output
}

// GetLocation returns the configured timezone, or the local zone
func (c *ClosuresConfig) GetLocation() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetCacheTTL returns cache TTL duration
func (c *BankHolidaysConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

// GetDailyTime returns the configured daily re-render time.
// Returns hour and minute (0-23, 0-59). Default: 00:05
func (c *DaemonConfig) GetDailyTime() (hour, minute int) {
	h, m, ok := parseClock(c.DailyTime)
	if !ok {
		return 0, 5
	}
	return h, m
}

func parseClock(s string) (int, int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Document.Input = os.ExpandEnv(c.Document.Input)
	c.Document.Output = os.ExpandEnv(c.Document.Output)
	c.BankHolidays.File = os.ExpandEnv(c.BankHolidays.File)
	c.Daemon.LogFile = os.ExpandEnv(c.Daemon.LogFile)
}
