package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Fetch modes.
const (
	FetchModeBrowser = "browser"
	FetchModeHTTP    = "http"
)

// DefaultUserAgent is sent by both the HTTP page fetcher and the downloader.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Config stores all configuration for a scrape run.
type Config struct {
	CountiesFile    string        `mapstructure:"COUNTIES_FILE"`
	OutputFile      string        `mapstructure:"OUTPUT_FILE"`
	DownloadsDir    string        `mapstructure:"DOWNLOADS_DIR"`
	FetchMode       string        `mapstructure:"FETCH_MODE"`
	PageTimeout     time.Duration `mapstructure:"PAGE_TIMEOUT"`
	DownloadTimeout time.Duration `mapstructure:"DOWNLOAD_TIMEOUT"`
	UserAgent       string        `mapstructure:"USER_AGENT"`
	ChromePath      string        `mapstructure:"CHROME_PATH"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogFormat       string        `mapstructure:"LOG_FORMAT"`
	MetricsAddr     string        `mapstructure:"METRICS_ADDR"`
	MetricsTextfile string        `mapstructure:"METRICS_TEXTFILE"`
	PostgresURL     string        `mapstructure:"POSTGRES_URL"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
}

// Load reads configuration from an optional env file and the environment.
// A missing env file is not an error; configuration may come purely from the environment.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		_ = v.ReadInConfig()
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("COUNTIES_FILE", "county_urls.json")
	v.SetDefault("OUTPUT_FILE", "GA_TaxSale_Sources_and_Downloads.xlsx")
	v.SetDefault("DOWNLOADS_DIR", "downloads")
	v.SetDefault("FETCH_MODE", FetchModeBrowser)
	v.SetDefault("PAGE_TIMEOUT", 45*time.Second)
	v.SetDefault("DOWNLOAD_TIMEOUT", 45*time.Second)
	v.SetDefault("USER_AGENT", DefaultUserAgent)
	v.SetDefault("CHROME_PATH", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("METRICS_TEXTFILE", "")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.FetchMode {
	case FetchModeBrowser, FetchModeHTTP:
	default:
		return fmt.Errorf("invalid FETCH_MODE %q: want %q or %q", c.FetchMode, FetchModeBrowser, FetchModeHTTP)
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("PAGE_TIMEOUT must be positive, got %s", c.PageTimeout)
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_TIMEOUT must be positive, got %s", c.DownloadTimeout)
	}
	if c.CountiesFile == "" || c.OutputFile == "" || c.DownloadsDir == "" {
		return fmt.Errorf("COUNTIES_FILE, OUTPUT_FILE and DOWNLOADS_DIR must not be empty")
	}
	return nil
}
