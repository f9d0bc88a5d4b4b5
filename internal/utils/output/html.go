package output

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"

	"github.com/law-makers/catalogsync/pkg/models"
)

// RenderHTML lays records out as one table per category, in first-seen
// category order.
func RenderHTML(records []*models.ProductRecord) string {
	var order []string
	groups := make(map[string][]*models.ProductRecord)
	for _, r := range records {
		if _, ok := groups[r.Category]; !ok {
			order = append(order, r.Category)
		}
		groups[r.Category] = append(groups[r.Category], r)
	}

	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, category := range order {
		title := category
		if title == "" {
			title = "uncategorized"
		}
		fmt.Fprintf(&sb, "<h2>%s</h2>", html.EscapeString(title))
		sb.WriteString("<table><thead><tr><th>Article</th><th>Name</th><th>Brand</th><th>Price</th><th>Stock</th><th>Features</th></tr></thead><tbody>")
		for _, r := range groups[category] {
			stock := "sold out"
			if r.IsAvailable {
				stock = strconv.Itoa(r.InStock)
			}
			fmt.Fprintf(&sb, `<tr><td>%s</td><td><a href="%s" title="%s">%s</a></td><td>%s</td><td>%.2f</td><td>%s</td><td>%s</td></tr>`,
				html.EscapeString(r.Article),
				html.EscapeString(r.URL),
				html.EscapeString(strings.Join(r.Breadcrumbs, " / ")),
				html.EscapeString(r.Name),
				html.EscapeString(r.Brand),
				r.Price,
				stock,
				html.EscapeString(joinFeatures(r.Features, ", ")),
			)
		}
		sb.WriteString("</tbody></table>")
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// CleanHTML removes unwanted elements and attributes to produce a safe HTML excerpt
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []xhtml.Attribute
		for _, attr := range node.Attr {
			switch {
			case node.Data == "a" && (attr.Key == "href" || attr.Key == "title"):
				kept = append(kept, attr)
			case node.Data == "img" && (attr.Key == "src" || attr.Key == "alt"):
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	htmlStr, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(htmlStr), nil
}
