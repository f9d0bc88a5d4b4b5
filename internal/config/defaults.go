package config

import (
	"time"

	"github.com/law-makers/catalogsync/internal/engine/batch"
	"github.com/law-makers/catalogsync/internal/engine/pagination"
	"github.com/law-makers/catalogsync/internal/utils/output"
	"github.com/law-makers/catalogsync/internal/woocommerce"
)

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultEnvFile           = ".env"
	DefaultBaseURL           = "https://simplygreentrade.com"
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRateLimitRPS      = 0.0
	DefaultRateLimitBurst    = 5
	DefaultRetryAttempts     = 3
	DefaultRetryBackoff      = 300 * time.Millisecond
	DefaultWorkers           = batch.DefaultWorkers
	DefaultMaxWorkers        = batch.MaxWorkers
	DefaultItemsPerPage      = pagination.DefaultItemsPerPage
	DefaultMaxAjaxPages      = pagination.DefaultMaxAjaxPages
	DefaultOutputPath        = output.DefaultPath
	DefaultWCTimeout         = woocommerce.DefaultTimeout
	DefaultDeleteConcurrency = woocommerce.DefaultDeleteConcurrency
)
