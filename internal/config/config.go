// Package config loads and validates dashboard configuration.
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL   string `mapstructure:"api_base_url"`
	WebSocketURL string `mapstructure:"websocket_url"`

	RefreshInterval int `mapstructure:"refresh_interval"` // seconds between snapshot refreshes
	CandleLimit     int `mapstructure:"candle_limit"`     // candles requested per chart fetch
	FeedRetries     int `mapstructure:"feed_retries"`     // reconnect attempts before giving up

	PostgresURL  string `mapstructure:"postgres_url"` // empty disables the trade journal
	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`
}

const (
	DefaultRefreshInterval = 30
	DefaultCandleLimit     = 300
	DefaultFeedRetries     = 5
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"refresh_interval": DefaultRefreshInterval,
		"candle_limit":     DefaultCandleLimit,
		"feed_retries":     DefaultFeedRetries,
		"log_file":         "dashboard.log",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

// loadEnvironmentVariables lets deployment environments override the file.
func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix("DASHBOARD")
	v.AutomaticEnv()

	if s := v.GetString("API_BASE_URL"); s != "" {
		cfg.APIBaseURL = s
	}
	if s := v.GetString("WEBSOCKET_URL"); s != "" {
		cfg.WebSocketURL = s
	}
	if s := v.GetString("POSTGRES_URL"); s != "" {
		cfg.PostgresURL = s
	}
}

func validateConfig(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return errors.New("missing api_base_url in configuration")
	}
	if err := validateURLWithCache(cfg.APIBaseURL, "http"); err != nil {
		return errors.New("invalid API base URL protocol")
	}
	if cfg.WebSocketURL == "" {
		return errors.New("missing websocket_url in configuration")
	}
	if err := validateURLWithCache(cfg.WebSocketURL, "ws"); err != nil {
		return errors.New("invalid WebSocket URL protocol")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RefreshInterval <= 0 {
		return errors.New("invalid refresh_interval")
	}
	if cfg.CandleLimit <= 0 {
		return errors.New("invalid candle_limit")
	}
	if cfg.FeedRetries < 0 {
		return errors.New("invalid feed_retries count")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("unexpected URL scheme: " + parsed.Scheme)
	}
	urlCache.Store(rawURL, struct{}{})
	return nil
}
