package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/law-makers/catalogsync/pkg/models"
)

var csvHeader = []string{
	"url", "article", "name", "brand", "category", "price", "is_available",
	"in_stock", "breadcrumbs", "image", "features", "description",
}

// SaveCSV writes one row per record. Breadcrumbs are joined with " > " and
// features with "; ".
func SaveCSV(records []*models.ProductRecord, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(csvRow(r)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(r *models.ProductRecord) []string {
	description := ""
	if r.Description != nil {
		description = *r.Description
	}
	return []string{
		r.URL,
		r.Article,
		r.Name,
		r.Brand,
		r.Category,
		strconv.FormatFloat(r.Price, 'f', 2, 64),
		strconv.FormatBool(r.IsAvailable),
		strconv.Itoa(r.InStock),
		strings.Join(r.Breadcrumbs, " > "),
		r.Image,
		joinFeatures(r.Features, "; "),
		description,
	}
}

func joinFeatures(features []models.Feature, sep string) string {
	parts := make([]string, len(features))
	for i, f := range features {
		parts[i] = f.Label + ": " + f.Value
	}
	return strings.Join(parts, sep)
}
