package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/law-makers/catalogsync/pkg/models"
)

// Format names an export format
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

// FormatFromPath infers the format from the file extension, defaulting to JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatJSON
	}
}

// Save writes records to path in the given format
func Save(records []*models.ProductRecord, path string, format Format) error {
	switch format {
	case FormatJSON, "":
		return SaveJSON(records, path)
	case FormatCSV:
		return SaveCSV(records, path)
	case FormatMarkdown, "markdown":
		return SaveMarkdown(records, path)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
