// Package discovery finds the top-level catalog sections of the shop.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/internal/session"
	urlutil "github.com/law-makers/catalogsync/internal/utils/url"
	"github.com/law-makers/catalogsync/pkg/models"
)

const (
	menuSelector = "ul#menu-desktop-horizontal-menu"
	itemSelector = "li.item-level-0"
)

// Discoverer reads catalog sections from the primary navigation menu
type Discoverer struct {
	sess       *session.Session
	classifier Classifier
}

// New creates a Discoverer
func New(sess *session.Session, classifier Classifier) *Discoverer {
	return &Discoverer{sess: sess, classifier: classifier}
}

// Discover fetches the site root and returns its catalog sections in menu order
func (d *Discoverer) Discover(ctx context.Context) ([]models.Section, error) {
	root := d.sess.BaseURL().String()

	doc, err := d.sess.GetDocument(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to load site root: %w", err)
	}

	sections, err := ParseNavigation(doc, root, d.classifier)
	if err != nil {
		return nil, err
	}

	log.Info().Int("sections", len(sections)).Msg("Catalog sections discovered")
	return sections, nil
}

// ParseNavigation extracts sections from the horizontal menu. The last menu
// entry is a utility link and is always dropped.
func ParseNavigation(doc *goquery.Document, base string, classifier Classifier) ([]models.Section, error) {
	menu := doc.Find(menuSelector).First()
	if menu.Length() == 0 {
		return nil, engine.NewEngineError(engine.ErrCodeNavigation, "menu container missing", nil).
			WithDetail("selector", menuSelector)
	}

	items := menu.Find(itemSelector)
	if items.Length() == 0 {
		return []models.Section{}, nil
	}
	items = items.Slice(0, items.Length()-1)

	seen := make(map[string]bool)
	sections := make([]models.Section, 0, items.Length())

	items.Each(func(i int, item *goquery.Selection) {
		href, ok := item.Find("a").First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			log.Debug().Int("index", i).Msg("Menu entry without link skipped")
			return
		}

		abs := urlutil.ResolveURL(base, href)
		if seen[abs] {
			return
		}
		seen[abs] = true

		sections = append(sections, models.Section{
			URL:  abs,
			Slug: urlutil.Slug(abs),
			Kind: classifier.Classify(abs),
		})
	})

	return sections, nil
}
