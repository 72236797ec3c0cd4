// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ScrapeConfig governs the extraction pipeline.
type ScrapeConfig struct {
	Out       string        `mapstructure:"out"`
	Workers   int           `mapstructure:"workers"`
	Delay     time.Duration `mapstructure:"delay"`
	ListURL   string        `mapstructure:"list_url"`
	UserAgent string        `mapstructure:"user_agent"`
}

// HTTPConfig configures outbound HTTP behavior.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ServerConfig controls the dashboard API server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// File is the dataset path served. Empty means use scrape.out.
	File string `mapstructure:"file"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BCHOSPITALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scrape.out", "bc_hospitals.csv")
	v.SetDefault("scrape.workers", 10)
	v.SetDefault("scrape.delay", "0s")
	v.SetDefault("scrape.list_url", "https://en.wikipedia.org/wiki/List_of_hospitals_in_British_Columbia")
	v.SetDefault("scrape.user_agent", "bc-hospitals-crawler/1.0 (+https://github.com/openbcdata/bchospitals)")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.file", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scrape.Out == "" {
		return fmt.Errorf("scrape.out must not be empty")
	}
	if c.Scrape.Workers <= 0 {
		return fmt.Errorf("scrape.workers must be > 0")
	}
	if c.Scrape.Delay < 0 {
		return fmt.Errorf("scrape.delay must not be negative")
	}
	if c.Scrape.ListURL == "" {
		return fmt.Errorf("scrape.list_url must not be empty")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// Timeout converts the HTTP timeout config into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ServeFile resolves the dataset path used by the read-side commands.
func (c Config) ServeFile() string {
	if c.Server.File != "" {
		return c.Server.File
	}
	return c.Scrape.Out
}
