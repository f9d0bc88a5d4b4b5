// internal/engine/product/fields.go
package product

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/pkg/models"
)

const (
	nameSelector         = "h1.product_title"
	articleSelector      = "div.sku-single"
	brandSelector        = "tr.woocommerce-product-attributes-item--attribute_pa_brand td.woocommerce-product-attributes-item__value"
	descriptionSelector  = "div.wd-single-content"
	breadcrumbsSelector  = "nav.woocommerce-breadcrumb"
	breadcrumbLink       = "a.breadcrumb-link"
	priceSelector        = "p.price span.woocommerce-Price-amount"
	imageSelector        = "figure.woocommerce-product-gallery__image a[href]"
	availabilitySelector = "div.detailed-info-stock div.wpb_wrapper"
	stockSelector        = "div.quantity input.input-text"
	featuresSelector     = "table.woocommerce-product-attributes"
)

// UnboundedStock is the in_stock value of an available product whose
// quantity control carries an empty max
const UnboundedStock = 0

func missing(field, selector string) error {
	return &engine.FieldError{Field: field, Selector: selector}
}

// text returns the trimmed text of the first match, or false when nothing matches
func text(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.Text()), true
}

func extractName(doc *goquery.Document) (string, error) {
	name, ok := text(doc, nameSelector)
	if !ok {
		return "", missing("name", nameSelector)
	}
	return name, nil
}

func extractArticle(doc *goquery.Document) (string, error) {
	article, ok := text(doc, articleSelector)
	if !ok {
		return "", missing("article", articleSelector)
	}
	return article, nil
}

// extractBrand falls back to the first word of the product name
func extractBrand(doc *goquery.Document, name string) string {
	if brand, ok := text(doc, brandSelector); ok {
		return brand
	}
	first, _, _ := strings.Cut(name, " ")
	return first
}

// extractDescription drops the block's leading heading. A page without a
// description block yields nil.
func extractDescription(doc *goquery.Document) *string {
	sel := doc.Find(descriptionSelector).First()
	if sel.Length() == 0 {
		return nil
	}
	block := sel.Clone()
	block.Find("h2").First().Remove()
	desc := strings.TrimSpace(block.Text())
	return &desc
}

// extractBreadcrumbs skips the root crumb
func extractBreadcrumbs(doc *goquery.Document) ([]string, error) {
	nav := doc.Find(breadcrumbsSelector).First()
	if nav.Length() == 0 {
		return nil, missing("breadcrumbs", breadcrumbsSelector)
	}

	crumbs := []string{}
	nav.Find(breadcrumbLink).Each(func(i int, s *goquery.Selection) {
		if i == 0 {
			return
		}
		crumbs = append(crumbs, strings.TrimSpace(s.Text()))
	})
	return crumbs, nil
}

func extractPrice(doc *goquery.Document) (float64, error) {
	raw, ok := text(doc, priceSelector)
	if !ok {
		return 0, missing("price", priceSelector)
	}
	price, err := ParsePrice(raw)
	if err != nil {
		return 0, &engine.FieldError{Field: "price", Selector: priceSelector}
	}
	return price, nil
}

func extractImage(doc *goquery.Document) (string, error) {
	href, ok := doc.Find(imageSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", missing("image", imageSelector)
	}
	return strings.TrimSpace(href), nil
}

func extractAvailability(doc *goquery.Document) (bool, error) {
	raw, ok := text(doc, availabilitySelector)
	if !ok {
		return false, missing("availability", availabilitySelector)
	}
	return ParseAvailability(raw)
}

// extractStock reads the quantity input's upper bound. Unavailable products
// have no stock.
func extractStock(doc *goquery.Document, available bool) (int, error) {
	if !available {
		return 0, nil
	}
	bound, ok := doc.Find(stockSelector).First().Attr("max")
	if !ok {
		return 0, missing("stock", stockSelector+"[max]")
	}
	bound = strings.TrimSpace(bound)
	if bound == "" {
		// quantity control without a bound: stock is not managed by the shop
		return UnboundedStock, nil
	}
	n, err := strconv.Atoi(bound)
	if err != nil {
		return 0, &engine.FieldError{Field: "stock", Selector: stockSelector + "[max]"}
	}
	return n, nil
}

// extractFeatures keeps table order and repeated labels
func extractFeatures(doc *goquery.Document) []models.Feature {
	features := []models.Feature{}
	doc.Find(featuresSelector).First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th").First()
		td := row.Find("td").First()
		if th.Length() == 0 && td.Length() == 0 {
			return
		}
		features = append(features, models.Feature{
			Label: strings.TrimSpace(th.Text()),
			Value: strings.TrimSpace(td.Text()),
		})
	})
	return features
}
