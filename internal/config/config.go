// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Output modes supported by the scan pipeline.
const (
	ModeFull = "full"
	ModeURLs = "urls"
	ModeBoth = "both"
)

// Extraction strategies selectable at runtime.
const (
	ExtractorPattern = "pattern"
	ExtractorDOM     = "dom"
)

// minSliceDelayMs is the floor for the inter-slice politeness delay.
const minSliceDelayMs = 50

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Lookup  LookupConfig  `mapstructure:"lookup"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Output  OutputConfig  `mapstructure:"output"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LookupConfig points the pipeline at the registration snapshot endpoint.
type LookupConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	UserAgent        string `mapstructure:"user_agent"`
	Extractor        string `mapstructure:"extractor"`
	DeepFetchDelayMs int    `mapstructure:"deep_fetch_delay_ms"`
}

// HTTPConfig configures fetch timeout, retry, and pacing behavior.
type HTTPConfig struct {
	TimeoutMs         int     `mapstructure:"timeout_ms"`
	MaxAttempts       int     `mapstructure:"max_attempts"`
	BackoffBaseMs     int     `mapstructure:"backoff_base_ms"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// FilterConfig governs the eligibility predicates.
type FilterConfig struct {
	MinAgeDays int `mapstructure:"min_age_days"`
}

// BatchConfig governs slice concurrency and pacing.
type BatchConfig struct {
	Concurrency  int    `mapstructure:"concurrency"`
	SliceDelayMs int    `mapstructure:"slice_delay_ms"`
	Mode         string `mapstructure:"mode"`
}

// OutputConfig sets the sink file paths.
type OutputConfig struct {
	RecordsPath string `mapstructure:"records_path"`
	URLsPath    string `mapstructure:"urls_path"`
}

// ServerConfig controls the optional health/metrics listener.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CARRIER")
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

	if cfg.Batch.SliceDelayMs < minSliceDelayMs {
		cfg.Batch.SliceDelayMs = minSliceDelayMs
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("lookup.base_url", "https://safer.fmcsa.dot.gov/query.asp")
	v.SetDefault("lookup.user_agent", "carrierscope/0.1")
	v.SetDefault("lookup.extractor", ExtractorPattern)
	v.SetDefault("lookup.deep_fetch_delay_ms", 300)
	v.SetDefault("http.timeout_ms", 30000)
	v.SetDefault("http.max_attempts", 3)
	v.SetDefault("http.backoff_base_ms", 2000)
	v.SetDefault("http.requests_per_second", 4)
	v.SetDefault("http.burst", 4)
	v.SetDefault("filter.min_age_days", 180)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.slice_delay_ms", 1000)
	v.SetDefault("batch.mode", ModeFull)
	v.SetDefault("output.records_path", "carriers.csv")
	v.SetDefault("output.urls_path", "carriers_urls.txt")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Lookup.BaseURL == "" {
		return fmt.Errorf("lookup.base_url must be set")
	}
	if c.Lookup.Extractor != ExtractorPattern && c.Lookup.Extractor != ExtractorDOM {
		return fmt.Errorf("lookup.extractor must be %q or %q", ExtractorPattern, ExtractorDOM)
	}
	if c.HTTP.TimeoutMs <= 0 {
		return fmt.Errorf("http.timeout_ms must be > 0")
	}
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}
	if c.HTTP.BackoffBaseMs < 0 {
		return fmt.Errorf("http.backoff_base_ms must be >= 0")
	}
	if c.Filter.MinAgeDays < 0 {
		return fmt.Errorf("filter.min_age_days must be >= 0")
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be > 0")
	}
	switch c.Batch.Mode {
	case ModeFull, ModeURLs, ModeBoth:
	default:
		return fmt.Errorf("batch.mode must be one of %q, %q, %q", ModeFull, ModeURLs, ModeBoth)
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// Timeout returns the per-attempt fetch timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMs) * time.Millisecond
}

// BackoffBase returns the exponential backoff base delay.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.HTTP.BackoffBaseMs) * time.Millisecond
}

// SliceDelay returns the inter-slice politeness delay.
func (c Config) SliceDelay() time.Duration {
	return time.Duration(c.Batch.SliceDelayMs) * time.Millisecond
}

// DeepFetchDelay returns the pause taken before each deep-fetch hop.
func (c Config) DeepFetchDelay() time.Duration {
	return time.Duration(c.Lookup.DeepFetchDelayMs) * time.Millisecond
}
