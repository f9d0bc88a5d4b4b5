package pagination

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/session"
	"github.com/law-makers/catalogsync/pkg/models"
)

const pageNumbersSelector = "ul.page-numbers"

// Numbered walks "<section>?product-page=N" up to the highest number shown
// in the page-number widget. It serves bestseller sections.
type Numbered struct{}

func (n *Numbered) Name() string { return "numbered" }

func (n *Numbered) Match(section models.Section, _ *goquery.Document) bool {
	return section.Kind == models.KindBestsellers
}

// MaxPage reads the highest page number: the text of the second-to-last
// widget item (the last one is the "next" arrow). A listing without the
// widget has a single page.
func MaxPage(doc *goquery.Document) int {
	items := doc.Find(pageNumbersSelector).First().Find("li")
	if items.Length() < 2 {
		return 1
	}
	text := strings.TrimSpace(items.Eq(items.Length() - 2).Text())
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (n *Numbered) Enumerate(ctx context.Context, sess *session.Session, section models.Section, first *goquery.Document) ([]string, error) {
	pages := MaxPage(first)

	log.Debug().Str("section", section.URL).Int("pages", pages).Msg("Numbered pagination")

	found := NewURLSet()
	for page := 1; page <= pages; page++ {
		pageURL := section.URL + "?product-page=" + strconv.Itoa(page)
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
