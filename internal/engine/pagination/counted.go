package pagination

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/session"
	urlutil "github.com/law-makers/catalogsync/internal/utils/url"
	"github.com/law-makers/catalogsync/pkg/models"
)

const (
	resultCountSelector = "p.woocommerce-result-count"
	productCardSelector = "div.product-element-top"
)

var (
	resultOfRe  = regexp.MustCompile(`(?i)of\s+([\d.,]+)\s+results?`)
	resultAllRe = regexp.MustCompile(`(?i)showing\s+all\s+([\d.,]+)\s+results?`)
	resultOneRe = regexp.MustCompile(`(?i)showing\s+the\s+single\s+result`)
)

// ParseResultCount reads the total from a "Showing 1–24 of N results" line
func ParseResultCount(text string) (int, bool) {
	text = strings.TrimSpace(text)

	if m := resultOfRe.FindStringSubmatch(text); m != nil {
		return atoiDigits(m[1])
	}
	if m := resultAllRe.FindStringSubmatch(text); m != nil {
		return atoiDigits(m[1])
	}
	if resultOneRe.MatchString(text) {
		return 1, true
	}
	return 0, false
}

func atoiDigits(s string) (int, bool) {
	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// PageCount returns ceil(total / perPage)
func PageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Counted walks "<section>/page/N" for every page implied by the result count
type Counted struct {
	ItemsPerPage int
}

func (c *Counted) Name() string { return "counted" }

func (c *Counted) Match(_ models.Section, first *goquery.Document) bool {
	_, ok := c.total(first)
	return ok
}

func (c *Counted) total(doc *goquery.Document) (int, bool) {
	if doc == nil {
		return 0, false
	}
	sel := doc.Find(resultCountSelector).First()
	if sel.Length() == 0 {
		return 0, false
	}
	return ParseResultCount(sel.Text())
}

func (c *Counted) Enumerate(ctx context.Context, sess *session.Session, section models.Section, first *goquery.Document) ([]string, error) {
	total, _ := c.total(first)
	pages := PageCount(total, c.ItemsPerPage)

	log.Debug().
		Str("section", section.URL).
		Int("total", total).
		Int("pages", pages).
		Msg("Counted pagination")

	base := urlutil.WithTrailingSlash(section.URL)
	found := NewURLSet()

	for page := 1; page <= pages; page++ {
		pageURL := base + "page/" + strconv.Itoa(page)
		doc, err := sess.GetDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		links := productLinks(doc.Find(productCardSelector), "a", pageURL)
		found.AddAll(links)

		log.Debug().Str("url", pageURL).Int("page", page).Int("links", len(links)).Msg("Listing page parsed")
	}

	return found.Items(), nil
}
