package config

import (
	"fmt"

	urlutil "github.com/law-makers/catalogsync/internal/utils/url"
)

func validate(c *Config) error {
	if err := urlutil.ValidateURL(c.BaseURL); err != nil {
		return fmt.Errorf("base url: %w", err)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.WCTimeout <= 0 {
		return fmt.Errorf("woocommerce timeout must be > 0")
	}
	if c.Workers <= 0 || c.Workers > DefaultMaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d", DefaultMaxWorkers)
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry attempts must be > 0")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must be >= 0")
	}
	if c.ItemsPerPage <= 0 {
		return fmt.Errorf("items per page must be > 0")
	}
	if c.MaxAjaxPages <= 0 {
		return fmt.Errorf("max ajax pages must be > 0")
	}
	return nil
}

// RequireSite checks the credentials needed to scrape
func (c *Config) RequireSite() error {
	if c.Login == "" || c.Password == "" {
		return fmt.Errorf("site credentials missing: set SITE_LOGIN and SITE_PASSWORD (or SIMPLY_LOGIN/SIMPLY_PASSWORD)")
	}
	return nil
}

// RequireStore checks the settings needed to sync
func (c *Config) RequireStore() error {
	if c.WCSite == "" || c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return fmt.Errorf("woocommerce settings missing: set WC_SITE, CONSUMER_KEY and CONSUMER_SECRET")
	}
	if err := urlutil.ValidateURL(c.WCSite); err != nil {
		return fmt.Errorf("woocommerce site: %w", err)
	}
	return nil
}
