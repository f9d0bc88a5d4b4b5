package pagination

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/internal/session"
	"github.com/law-makers/catalogsync/pkg/models"
)

const (
	// NoMorePosts is the status the ajax endpoint reports past the last page
	NoMorePosts = "no-more-posts"

	ajaxAction          = "woodmart_get_products_shortcode"
	productImageLinkSel = "a.product-image-link"
)

type ajaxResponse struct {
	Status string `json:"status"`
	Items  string `json:"items"`
}

// InfiniteScroll pages through the theme's admin-ajax product shortcode
// until it answers NoMorePosts. It serves new and on-sale sections.
type InfiniteScroll struct {
	AjaxURL  string
	MaxPages int
}

func (s *InfiniteScroll) Name() string { return "infinite-scroll" }

func (s *InfiniteScroll) Match(section models.Section, _ *goquery.Document) bool {
	return section.Kind == models.KindNew || section.Kind == models.KindOnSale
}

// PostType returns the shortcode post type for a section kind
func PostType(kind models.SectionKind) string {
	if kind == models.KindOnSale {
		return "sale"
	}
	return "product"
}

func (s *InfiniteScroll) Enumerate(ctx context.Context, sess *session.Session, section models.Section, _ *goquery.Document) ([]string, error) {
	postType := PostType(section.Kind)
	found := NewURLSet()

	for page := 1; ; page++ {
		if s.MaxPages > 0 && page > s.MaxPages {
			return nil, engine.NewEngineError(engine.ErrCodePagination, "ajax pagination exceeded page cap", nil).
				WithDetail("section", section.URL).
				WithDetail("max_pages", s.MaxPages)
		}

		resp, err := sess.PostForm(ctx, s.AjaxURL, AjaxForm(postType, page), map[string]string{
			"X-Requested-With": "XMLHttpRequest",
			"Referer":          section.URL,
		})
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("ajax page %d: unexpected status %s", page, resp.Status)
		}

		var body ajaxResponse
		if err := resp.JSON(&body); err != nil {
			return nil, err
		}

		if body.Status == NoMorePosts {
			log.Debug().
				Str("section", section.URL).
				Int("page", page).
				Msg("Ajax pagination reached the end")
			break
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body.Items))
		if err != nil {
			return nil, fmt.Errorf("ajax page %d: failed to parse items: %w", page, err)
		}
		links := productLinks(doc.Find(productImageLinkSel), "", section.URL)
		found.AddAll(links)

		log.Debug().Str("section", section.URL).Int("page", page).Int("links", len(links)).Msg("Ajax page parsed")
	}

	return found.Items(), nil
}

// AjaxForm builds the shortcode request for one page. The attribute set
// mirrors what the theme's own grid sends; only post_type and paged vary.
func AjaxForm(postType string, page int) url.Values {
	atts := map[string]string{
		"element_title":                "",
		"post_type":                    postType,
		"layout":                       "grid",
		"include":                      "",
		"custom_query":                 "",
		"taxonomies":                   "",
		"pagination":                   "infinit",
		"items_per_page":               "25",
		"product_hover":                "standard",
		"spacing":                      "20",
		"columns":                      "5",
		"columns_tablet":               "3",
		"columns_mobile":               "2",
		"sale_countdown":               "0",
		"stretch_product_desktop":      "0",
		"stretch_product_tablet":       "0",
		"stretch_product_mobile":       "0",
		"stock_progress_bar":           "0",
		"highlighted_products":         "0",
		"products_bordered_grid":       "0",
		"products_bordered_grid_style": "outside",
		"products_with_background":     "0",
		"products_shadow":              "0",
		"products_color_scheme":        "default",
		"product_quantity":             "0",
		"grid_gallery":                 "",
		"grid_gallery_control":         "",
		"grid_gallery_enable_arrows":   "",
		"offset":                       "",
		"orderby":                      "date",
		"query_type":                   "OR",
		"order":                        "DESC",
		"meta_key":                     "",
		"exclude":                      "",
		"class":                        "",
		"ajax_page":                    "",
		"speed":                        "5000",
		"slides_per_view":              "4",
		"slides_per_view_tablet":       "auto",
		"slides_per_view_mobile":       "auto",
		"wrap":                         "",
		"autoplay":                     "no",
		"center_mode":                  "no",
		"hide_pagination_control":      "",
		"hide_prev_next_buttons":       "",
		"scroll_per_page":              "yes",
		"img_size":                     "woocommerce_thumbnail",
		"force_not_ajax":               "no",
		"products_masonry":             "0",
		"products_different_sizes":     "0",
		"lazy_loading":                 "yes",
		"scroll_carousel_init":         "no",
		"el_class":                     "",
		"shop_tools":                   "no",
		"query_post_type":              "product",
		"hide_out_of_stock":            "no",
		"css":                          "",
		"woodmart_css_id":              "6460f6a67ace8",
		"ajax_recently_viewed":         "no",
		"is_wishlist":                  "",
	}

	form := make(url.Values, len(atts)+3)
	for k, v := range atts {
		form.Set("atts["+k+"]", v)
	}
	form.Set("paged", strconv.Itoa(page))
	form.Set("action", ajaxAction)
	form.Set("woo_ajax", "1")
	return form
}
