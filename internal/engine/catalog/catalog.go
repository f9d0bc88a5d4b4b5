// Package catalog drives a full extraction run: login, section discovery,
// URL enumeration and concurrent product parsing.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/auth"
	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/internal/engine/batch"
	"github.com/law-makers/catalogsync/internal/engine/discovery"
	"github.com/law-makers/catalogsync/internal/engine/pagination"
	"github.com/law-makers/catalogsync/internal/engine/product"
	"github.com/law-makers/catalogsync/internal/metrics"
	"github.com/law-makers/catalogsync/internal/runctx"
	"github.com/law-makers/catalogsync/internal/session"
	"github.com/law-makers/catalogsync/pkg/models"
)

// DefaultLoginPath is the account page holding the login form
const DefaultLoginPath = "/account/"

// Options configures a run
type Options struct {
	Credentials auth.Credentials
	// LoginURL defaults to DefaultLoginPath on the session's site
	LoginURL string
	// SkipLogin scrapes anonymously
	SkipLogin bool

	Workers    int
	Classifier discovery.Classifier
	Pagination pagination.Options
	Metrics    *metrics.Metrics

	// OnURLs is called once enumeration is done, with the number of product URLs
	OnURLs func(total int)
	// OnProduct is called after every product page, parsed or skipped
	OnProduct func()
}

// Result is the outcome of a successful run
type Result struct {
	Sections []models.Section
	Records  []*models.ProductRecord
	Summary  models.RunSummary
}

// Catalog runs extractions against one site
type Catalog struct {
	sess *session.Session
	opts Options
}

// New creates a Catalog bound to sess
func New(sess *session.Session, opts Options) *Catalog {
	if opts.LoginURL == "" {
		opts.LoginURL = sess.Resolve(DefaultLoginPath)
	}
	if opts.Classifier.Rules == nil {
		opts.Classifier = discovery.NewClassifier(nil)
	}
	return &Catalog{sess: sess, opts: opts}
}

// Run performs a full extraction. Failures on individual product pages are
// counted in the summary; any error before the product stage aborts the run.
func (c *Catalog) Run(ctx context.Context) (*Result, error) {
	if runctx.FromContext(ctx).ID == "unknown" {
		ctx = runctx.WithRun(ctx)
	}
	run := runctx.FromContext(ctx)
	logger := runctx.Logger(ctx, log.Logger)
	start := time.Now()

	if !c.opts.SkipLogin {
		if err := auth.Authenticate(ctx, c.sess, c.opts.LoginURL, c.opts.Credentials); err != nil {
			return nil, runctx.Wrap(ctx, err)
		}
	}

	sections, err := discovery.New(c.sess, c.opts.Classifier).Discover(ctx)
	if err != nil {
		return nil, runctx.Wrap(ctx, err)
	}
	c.opts.Metrics.AddSections(len(sections))

	urls, categories, err := c.enumerate(ctx, sections)
	if err != nil {
		return nil, runctx.Wrap(ctx, err)
	}
	c.opts.Metrics.AddProductURLs(urls.Len())

	logger.Info().
		Int("sections", len(sections)).
		Int("products", urls.Len()).
		Msg("Product URLs collected")

	if c.opts.OnURLs != nil {
		c.opts.OnURLs(urls.Len())
	}

	records, skipped, err := c.extract(ctx, urls.Items(), categories)
	if err != nil {
		return nil, runctx.Wrap(ctx, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, runctx.Wrap(ctx, err)
	}

	summary := models.RunSummary{
		RunID:       run.ID,
		Sections:    len(sections),
		ProductURLs: urls.Len(),
		Parsed:      len(records),
		Skipped:     skipped,
		Duration:    time.Since(start),
	}

	logger.Info().
		Int("parsed", summary.Parsed).
		Int("skipped", summary.SkippedTotal()).
		Dur("duration", summary.Duration).
		Msg("Catalog run finished")

	return &Result{Sections: sections, Records: records, Summary: summary}, nil
}

// enumerate walks sections in menu order. The first section a URL appears
// in becomes its category.
func (c *Catalog) enumerate(ctx context.Context, sections []models.Section) (*pagination.URLSet, map[string]string, error) {
	resolver := pagination.NewResolver(c.sess, c.opts.Pagination)
	all := pagination.NewURLSet()
	categories := make(map[string]string)

	for _, section := range sections {
		found, _, err := resolver.Enumerate(ctx, section)
		if err != nil {
			return nil, nil, err
		}
		for _, u := range found {
			if all.Add(u) {
				categories[u] = section.Slug
			}
		}
	}
	return all, categories, nil
}

// extract fetches every product page. Page-level failures are counted as
// skips. A transport failure never cancels the other workers, but once the
// pool drains the first one is returned and fails the run.
func (c *Catalog) extract(ctx context.Context, urls []string, categories map[string]string) ([]*models.ProductRecord, map[models.SkipReason]int, error) {
	extractor := product.NewExtractor(c.sess)
	pool := batch.NewPool(c.opts.Workers, extractor.Extract)

	skipped := map[models.SkipReason]int{
		models.SkipUnrecognizedAvailability: 0,
		models.SkipPageFormat:               0,
		models.SkipOther:                    0,
	}
	records := make([]*models.ProductRecord, 0, len(urls))
	var fatal error

	pool.OnResult = func(r batch.Result[*models.ProductRecord]) {
		c.opts.Metrics.ObserveProduct(r.Elapsed)
		if c.opts.OnProduct != nil {
			c.opts.OnProduct()
		}

		if r.Err == nil && r.Value == nil {
			skipped[models.SkipUnrecognizedAvailability]++
			c.opts.Metrics.IncSkipped(models.SkipUnrecognizedAvailability)
			return
		}
		if r.Err != nil && engine.IsFatal(r.Err) {
			log.Error().Err(r.Err).Str("url", r.URL).Msg("Product fetch failed")
			if fatal == nil {
				fatal = fmt.Errorf("product %s: %w", r.URL, r.Err)
			}
			return
		}
		if r.Err != nil {
			reason := classify(r.Err)
			skipped[reason]++
			c.opts.Metrics.IncSkipped(reason)
			log.Warn().Err(r.Err).Str("url", r.URL).Str("reason", string(reason)).Msg("Product skipped")
			return
		}

		r.Value.Category = categories[r.URL]
		records = append(records, r.Value)
		c.opts.Metrics.IncParsed()
	}
	log.Info().Int("products", len(urls)).Int("workers", pool.Workers()).Msg("Extracting products")
	pool.Run(ctx, urls)

	return records, skipped, fatal
}

func classify(err error) models.SkipReason {
	switch {
	case errors.Is(err, engine.ErrProductPageFormat):
		return models.SkipPageFormat
	case errors.Is(err, engine.ErrUnrecognizedAvailability):
		return models.SkipUnrecognizedAvailability
	default:
		return models.SkipOther
	}
}

// String renders a one-line summary
func (r *Result) String() string {
	return fmt.Sprintf("%d sections, %d product urls, %d parsed, %d skipped",
		r.Summary.Sections, r.Summary.ProductURLs, r.Summary.Parsed, r.Summary.SkippedTotal())
}
