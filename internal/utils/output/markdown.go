package output

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/catalogsync/pkg/models"
)

// SaveMarkdown writes records as GitHub-flavored markdown tables grouped by category
func SaveMarkdown(records []*models.ProductRecord, path string) error {
	content, err := RenderMarkdown(records)
	if err != nil {
		return err
	}
	return writeFile(path, []byte(content))
}

// RenderMarkdown converts the RenderHTML layout to markdown
func RenderMarkdown(records []*models.ProductRecord) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	// Keep product links as plain inline links.
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			str := fmt.Sprintf("[%s](%s)", selec.Text(), href)
			return &str
		},
	})

	cleaned, err := CleanHTML(RenderHTML(records))
	if err != nil {
		return "", err
	}
	return converter.ConvertString(cleaned)
}
