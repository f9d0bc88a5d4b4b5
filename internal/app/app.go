// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/auth"
	"github.com/law-makers/catalogsync/internal/config"
	"github.com/law-makers/catalogsync/internal/engine/catalog"
	"github.com/law-makers/catalogsync/internal/engine/discovery"
	"github.com/law-makers/catalogsync/internal/engine/pagination"
	"github.com/law-makers/catalogsync/internal/metrics"
	"github.com/law-makers/catalogsync/internal/retry"
	"github.com/law-makers/catalogsync/internal/session"
	"github.com/law-makers/catalogsync/internal/woocommerce"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command invocation. Use Close() to release the
// HTTP connections and flush metrics.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Session     *session.Session
	Metrics     *metrics.Metrics
	Credentials *auth.Store
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the metrics registry
//   - Builds the shop session (cookie jar, retry, rate limit, proxies)
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := SetupLogging(cfg)

	m := metrics.New()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.RetryAttempts
	retryCfg.InitialBackoff = cfg.RetryBackoff

	sess, err := session.New(session.Options{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		Headers:        cfg.Headers,
		Timeout:        cfg.HTTPTimeout,
		Retry:          retryCfg,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Proxies:        cfg.Proxies,
		OnRetry: func(req *http.Request, attempt int) {
			m.IncRetries()
			logger.Debug().Str("url", req.URL.String()).Int("attempt", attempt).Msg("Retrying request")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger.Debug().
		Str("base_url", cfg.BaseURL).
		Dur("timeout", cfg.HTTPTimeout).
		Int("retries", cfg.RetryAttempts).
		Float64("rps", cfg.RateLimitRPS).
		Int("proxies", len(cfg.Proxies)).
		Msg("Session initialized")

	return &Application{
		Config:      cfg,
		Logger:      &logger,
		Session:     sess,
		Metrics:     m,
		Credentials: auth.NewStore(),
		startTime:   time.Now(),
	}, nil
}

// SetupLogging configures the global zerolog logger and returns it
func SetupLogging(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.JSONLog {
		w = os.Stderr
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// SiteCredentials returns the configured login, falling back to the
// credential store when the password is not set in the environment.
func (a *Application) SiteCredentials() (auth.Credentials, error) {
	creds := auth.Credentials{Login: a.Config.Login, Password: a.Config.Password}
	if creds.Password != "" {
		return creds, a.Config.RequireSite()
	}
	if creds.Login == "" {
		return creds, a.Config.RequireSite()
	}

	stored, err := a.Credentials.Load(creds.Login)
	if errors.Is(err, auth.ErrCredentialsNotFound) {
		return creds, a.Config.RequireSite()
	}
	if err != nil {
		return creds, err
	}
	a.Logger.Debug().Str("login", creds.Login).Msg("Using stored credentials")
	return stored, nil
}

// Catalog builds the extraction orchestrator
func (a *Application) Catalog(opts catalog.Options) (*catalog.Catalog, error) {
	rules, err := discovery.ParseRules(a.Config.SectionRules)
	if err != nil {
		return nil, err
	}

	opts.Workers = a.Config.Workers
	opts.Classifier = discovery.NewClassifier(rules)
	opts.Pagination = pagination.Options{
		ItemsPerPage: a.Config.ItemsPerPage,
		MaxAjaxPages: a.Config.MaxAjaxPages,
	}
	opts.Metrics = a.Metrics

	return catalog.New(a.Session, opts), nil
}

// Store builds the WooCommerce sync driver
func (a *Application) Store(opts woocommerce.DriverOptions) (*woocommerce.Driver, error) {
	if err := a.Config.RequireStore(); err != nil {
		return nil, err
	}

	client, err := woocommerce.NewClient(woocommerce.Config{
		Site:           a.Config.WCSite,
		ConsumerKey:    a.Config.ConsumerKey,
		ConsumerSecret: a.Config.ConsumerSecret,
		Timeout:        a.Config.WCTimeout,
	})
	if err != nil {
		return nil, err
	}

	opts.DeleteConcurrency = a.Config.DeleteConcurrency
	opts.Metrics = a.Metrics
	return woocommerce.NewDriver(client, opts), nil
}

// Close releases the session and writes the metrics textfile when one is configured.
func (a *Application) Close(ctx context.Context) error {
	if a.Session != nil {
		a.Session.Close()
	}

	if err := a.Metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to write metrics")
		return err
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
