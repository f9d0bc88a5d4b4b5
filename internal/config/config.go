package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/law-makers/catalogsync/internal/utils/headers"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	Quiet    bool

	// Source shop
	BaseURL  string
	Login    string
	Password string

	// HTTP
	HTTPTimeout    time.Duration
	UserAgent      string
	Headers        map[string]string
	Proxies        []string
	RateLimitRPS   float64
	RateLimitBurst int
	RetryAttempts  int
	RetryBackoff   time.Duration

	// Extraction
	Workers      int
	ItemsPerPage int
	MaxAjaxPages int
	SectionRules []string
	OutputPath   string
	MetricsFile  string

	// WooCommerce
	WCSite            string
	ConsumerKey       string
	ConsumerSecret    string
	WCTimeout         time.Duration
	DeleteConcurrency int
}

// flag name -> config key
var flagKeys = map[string]string{
	"base-url":       "base_url",
	"proxy":          "proxies",
	"timeout":        "timeout",
	"user-agent":     "user_agent",
	"rate-limit":     "rate_limit",
	"retries":        "retry_attempts",
	"metrics-file":   "metrics_file",
	"workers":        "workers",
	"output":         "output",
	"section-rule":   "section_rules",
	"max-ajax-pages": "max_ajax_pages",
}

// Load builds a Config by combining defaults, an optional .env file,
// environment variables, and CLI flags, in increasing precedence.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	envFile := DefaultEnvFile
	if cmd != nil {
		if f := cmd.Flags().Lookup("env-file"); f != nil && f.Value.String() != "" {
			envFile = f.Value.String()
		}
	}
	if err := readEnvFile(v, envFile); err != nil {
		return nil, err
	}

	// Tunables come as CATALOGSYNC_<KEY>; credentials keep their historical names.
	v.SetEnvPrefix("catalogsync")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("site_login", "SITE_LOGIN", "SIMPLY_LOGIN")
	_ = v.BindEnv("site_password", "SITE_PASSWORD", "SIMPLY_PASSWORD")
	_ = v.BindEnv("consumer_key", "CONSUMER_KEY")
	_ = v.BindEnv("consumer_secret", "CONSUMER_SECRET")
	_ = v.BindEnv("wc_site", "WC_SITE")

	var headerFlags []string
	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				_ = v.BindPFlag(key, f)
			}
		})
		if hs, err := cmd.Flags().GetStringArray("header"); err == nil {
			headerFlags = hs
		}
	}

	cfg := &Config{
		LogLevel:       DefaultLogLevel,
		JSONLog:        DefaultJSONLog,
		BaseURL:        strings.TrimRight(lookup(v, "base_url"), "/"),
		Login:          lookup(v, "site_login", "simply_login"),
		Password:       lookup(v, "site_password", "simply_password"),
		UserAgent:      lookup(v, "user_agent"),
		Headers:        headers.Merge(headers.Browser(), headers.ParseHeaders(headerFlags)),
		Proxies:        splitList(v.GetStringSlice("proxies")),
		SectionRules:   splitList(v.GetStringSlice("section_rules")),
		OutputPath:     lookup(v, "output"),
		MetricsFile:    lookup(v, "metrics_file"),
		WCSite:         lookup(v, "wc_site"),
		ConsumerKey:    lookup(v, "consumer_key"),
		ConsumerSecret: lookup(v, "consumer_secret"),
	}

	var err error
	if cfg.HTTPTimeout, err = duration(v, "timeout"); err != nil {
		return nil, err
	}
	if cfg.RetryBackoff, err = duration(v, "retry_backoff"); err != nil {
		return nil, err
	}
	if cfg.WCTimeout, err = duration(v, "wc_timeout"); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = number(v, "rate_limit"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = integer(v, "workers"); err != nil {
		return nil, err
	}
	if cfg.RetryAttempts, err = integer(v, "retry_attempts"); err != nil {
		return nil, err
	}
	if cfg.MaxAjaxPages, err = integer(v, "max_ajax_pages"); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = integer(v, "rate_burst"); err != nil {
		return nil, err
	}
	if cfg.ItemsPerPage, err = integer(v, "items_per_page"); err != nil {
		return nil, err
	}
	if cfg.DeleteConcurrency, err = integer(v, "delete_concurrency"); err != nil {
		return nil, err
	}

	if cmd != nil {
		if on, _ := cmd.Flags().GetBool("verbose"); on {
			cfg.LogLevel = "debug"
		}
		if on, _ := cmd.Flags().GetBool("quiet"); on {
			cfg.Quiet = true
			cfg.LogLevel = "error"
		}
		if on, _ := cmd.Flags().GetBool("json"); on {
			cfg.JSONLog = true
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("timeout", DefaultHTTPTimeout.String())
	v.SetDefault("rate_limit", DefaultRateLimitRPS)
	v.SetDefault("rate_burst", DefaultRateLimitBurst)
	v.SetDefault("retry_attempts", DefaultRetryAttempts)
	v.SetDefault("retry_backoff", DefaultRetryBackoff.String())
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("items_per_page", DefaultItemsPerPage)
	v.SetDefault("max_ajax_pages", DefaultMaxAjaxPages)
	v.SetDefault("output", DefaultOutputPath)
	v.SetDefault("wc_timeout", DefaultWCTimeout.String())
	v.SetDefault("delete_concurrency", DefaultDeleteConcurrency)
}

// readEnvFile merges a dotenv file into v as defaults, so process env and
// flags still take precedence. CATALOGSYNC_ prefixes are stripped. A
// missing file is not an error.
func readEnvFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("env")
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, key := range file.AllKeys() {
		v.SetDefault(strings.TrimPrefix(key, "catalogsync_"), file.Get(key))
	}
	return nil
}

// lookup returns the first non-empty value among keys
func lookup(v *viper.Viper, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(v.GetString(k)); s != "" {
			return s
		}
	}
	return ""
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	s := v.GetString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func integer(v *viper.Viper, key string) (int, error) {
	s := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

func number(v *viper.Viper, key string) (float64, error) {
	s := strings.TrimSpace(v.GetString(key))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return f, nil
}

// splitList flattens repeated and comma-separated values
func splitList(values []string) []string {
	var out []string
	for _, s := range values {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
