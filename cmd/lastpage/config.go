package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/lastpage/pkg/discovery"
	"github.com/Sternrassler/lastpage/pkg/pagination"
)

// settings is the CLI configuration. Precedence from low to high:
// built-in defaults, LASTPAGE_* environment, --config file, explicit flags.
type settings struct {
	BaseURL     string        `yaml:"base_url"`
	PageSuffix  string        `yaml:"page_suffix"`
	FirstPage   int           `yaml:"first_page"`
	ScopeSize   int           `yaml:"scope_size"`
	Threshold   int           `yaml:"populated_page_threshold"`
	MaxScopes   int           `yaml:"max_scopes"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	RedisURL    string        `yaml:"redis_url"`
	RecordTTL   time.Duration `yaml:"record_ttl"`
	MetricsAddr string        `yaml:"metrics_addr"`
	LogLevel    string        `yaml:"log_level"`
	LogPretty   bool          `yaml:"log_pretty"`
}

// defaultSettings returns the built-in defaults overridden by the environment.
func defaultSettings() settings {
	search := pagination.DefaultSearchConfig()
	return settings{
		BaseURL:     getEnv("LASTPAGE_BASE_URL", ""),
		PageSuffix:  getEnv("LASTPAGE_PAGE_SUFFIX", ""),
		FirstPage:   getEnvInt("LASTPAGE_FIRST_PAGE", search.InitialFirstPage),
		ScopeSize:   getEnvInt("LASTPAGE_SCOPE_SIZE", search.ScopeSize),
		Threshold:   getEnvInt("LASTPAGE_THRESHOLD", search.PopulatedPageThreshold),
		MaxScopes:   getEnvInt("LASTPAGE_MAX_SCOPES", search.MaxScopes),
		Timeout:     getEnvDuration("LASTPAGE_TIMEOUT", 15*time.Second),
		UserAgent:   getEnv("LASTPAGE_USER_AGENT", discovery.DefaultUserAgent),
		RedisURL:    getEnv("LASTPAGE_REDIS_URL", ""),
		RecordTTL:   getEnvDuration("LASTPAGE_RECORD_TTL", 0),
		MetricsAddr: getEnv("LASTPAGE_METRICS_ADDR", ""),
		LogLevel:    getEnv("LASTPAGE_LOG_LEVEL", "info"),
		LogPretty:   getEnv("LASTPAGE_LOG_PRETTY", "") == "true",
	}
}

// loadFile decodes the YAML file at path over base.
func loadFile(path string, base settings) (settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return base, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return base, nil
}

// resolve merges the config file and the flags explicitly set on cmd.
func resolve(cmd *cobra.Command, configFile string, flags settings) (settings, error) {
	if configFile == "" {
		return flags, nil
	}
	s, err := loadFile(configFile, defaultSettings())
	if err != nil {
		return s, err
	}

	changed := cmd.Flags().Changed
	if changed("page-suffix") {
		s.PageSuffix = flags.PageSuffix
	}
	if changed("first-page") {
		s.FirstPage = flags.FirstPage
	}
	if changed("scope-size") {
		s.ScopeSize = flags.ScopeSize
	}
	if changed("threshold") {
		s.Threshold = flags.Threshold
	}
	if changed("max-scopes") {
		s.MaxScopes = flags.MaxScopes
	}
	if changed("timeout") {
		s.Timeout = flags.Timeout
	}
	if changed("user-agent") {
		s.UserAgent = flags.UserAgent
	}
	if changed("redis-url") {
		s.RedisURL = flags.RedisURL
	}
	if changed("record-ttl") {
		s.RecordTTL = flags.RecordTTL
	}
	if changed("metrics-addr") {
		s.MetricsAddr = flags.MetricsAddr
	}
	if changed("log-level") {
		s.LogLevel = flags.LogLevel
	}
	if changed("log-pretty") {
		s.LogPretty = flags.LogPretty
	}
	if flags.BaseURL != "" {
		s.BaseURL = flags.BaseURL
	}
	return s, nil
}

// options converts settings into discovery options.
func (s settings) options() discovery.Options {
	opts := discovery.DefaultOptions(s.BaseURL)
	opts.PageSuffix = s.PageSuffix
	opts.Search = pagination.SearchConfig{
		InitialFirstPage:       s.FirstPage,
		ScopeSize:              s.ScopeSize,
		PopulatedPageThreshold: s.Threshold,
		MaxScopes:              s.MaxScopes,
	}
	opts.Timeout = s.Timeout
	opts.UserAgent = s.UserAgent
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
