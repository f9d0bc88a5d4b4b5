// Package pagination enumerates the product URLs of a catalog section.
//
// A section is served by exactly one of three listing protocols. The
// Resolver fetches the section's first page once and asks each Strategy in
// precedence order whether it applies:
//
//   - Counted: the page shows "Showing 1–24 of N results"; pages are derived from N.
//   - Numbered: bestseller listings expose a page-number widget.
//   - InfiniteScroll: new and sale listings load through admin-ajax until
//     the endpoint reports "no-more-posts".
//
// Sections no strategy accepts contribute nothing.
package pagination

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/session"
	urlutil "github.com/law-makers/catalogsync/internal/utils/url"
	"github.com/law-makers/catalogsync/pkg/models"
)

const (
	// DefaultItemsPerPage is the listing page size of the shop
	DefaultItemsPerPage = 24
	// DefaultAjaxPath is the admin-ajax endpoint relative to the site root
	DefaultAjaxPath = "/wp-admin/admin-ajax.php"
	// DefaultMaxAjaxPages bounds an infinite-scroll loop that never sees its sentinel
	DefaultMaxAjaxPages = 500
)

// Strategy enumerates the product URLs of one kind of section listing
type Strategy interface {
	// Name identifies the strategy in logs and summaries
	Name() string
	// Match reports whether the strategy serves section, given its first page
	Match(section models.Section, first *goquery.Document) bool
	// Enumerate returns the section's product URLs in first-seen order, without duplicates
	Enumerate(ctx context.Context, sess *session.Session, section models.Section, first *goquery.Document) ([]string, error)
}

// Options tunes the built-in strategies
type Options struct {
	ItemsPerPage int
	AjaxURL      string
	MaxAjaxPages int
}

// Resolver selects and drives the strategy for each section
type Resolver struct {
	sess       *session.Session
	strategies []Strategy
}

// NewResolver returns a Resolver with the counted, numbered and
// infinite-scroll strategies in that precedence.
func NewResolver(sess *session.Session, opts Options) *Resolver {
	if opts.ItemsPerPage <= 0 {
		opts.ItemsPerPage = DefaultItemsPerPage
	}
	if opts.AjaxURL == "" {
		opts.AjaxURL = sess.Resolve(DefaultAjaxPath)
	}
	if opts.MaxAjaxPages <= 0 {
		opts.MaxAjaxPages = DefaultMaxAjaxPages
	}

	return NewResolverWith(sess,
		&Counted{ItemsPerPage: opts.ItemsPerPage},
		&Numbered{},
		&InfiniteScroll{AjaxURL: opts.AjaxURL, MaxPages: opts.MaxAjaxPages},
	)
}

// NewResolverWith returns a Resolver trying strategies in the given order
func NewResolverWith(sess *session.Session, strategies ...Strategy) *Resolver {
	return &Resolver{sess: sess, strategies: strategies}
}

// Select returns the first strategy matching section, or nil
func (r *Resolver) Select(section models.Section, first *goquery.Document) Strategy {
	for _, s := range r.strategies {
		if s.Match(section, first) {
			return s
		}
	}
	return nil
}

// Enumerate fetches the section's first page, selects a strategy and runs it.
// The returned name is empty when the section was skipped.
func (r *Resolver) Enumerate(ctx context.Context, section models.Section) ([]string, string, error) {
	start := time.Now()

	first, err := r.sess.GetDocument(ctx, section.URL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load section %s: %w", section.URL, err)
	}

	strategy := r.Select(section, first)
	if strategy == nil {
		log.Info().
			Str("section", section.URL).
			Str("kind", string(section.Kind)).
			Msg("No pagination strategy matches section, skipping")
		return nil, "", nil
	}

	urls, err := strategy.Enumerate(ctx, r.sess, section, first)
	if err != nil {
		return nil, strategy.Name(), fmt.Errorf("%s pagination of %s: %w", strategy.Name(), section.URL, err)
	}

	log.Info().
		Str("section", section.URL).
		Str("strategy", strategy.Name()).
		Int("products", len(urls)).
		Dur("elapsed", time.Since(start)).
		Msg("Section enumerated")

	return urls, strategy.Name(), nil
}

// productLinks returns the href of every element in sel,
// resolved against base. anchorSel selects the anchor inside each match; an
// empty anchorSel reads the matched element itself.
func productLinks(sel *goquery.Selection, anchorSel string, base string) []string {
	var links []string
	sel.Each(func(_ int, s *goquery.Selection) {
		a := s
		if anchorSel != "" {
			a = s.Find(anchorSel).First()
		}
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		links = append(links, urlutil.ResolveURL(base, href))
	})
	return links
}
