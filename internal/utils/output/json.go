package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/law-makers/catalogsync/pkg/models"
)

// DefaultPath is where a scrape run writes its records
const DefaultPath = "assets/result.json"

// SaveJSON writes records as an indented JSON array, creating parent
// directories as needed. A nil slice is written as [].
func SaveJSON(records []*models.ProductRecord, path string) error {
	if records == nil {
		records = []*models.ProductRecord{}
	}
	content, err := encodeJSON(records)
	if err != nil {
		return err
	}
	return writeFile(path, content)
}

// encodeJSON indents v and leaves &, < and > as they are, since names and
// descriptions are written for people and not embedded in HTML.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadJSON reads a record set written by SaveJSON
func LoadJSON(path string) ([]*models.ProductRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []*models.ProductRecord
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}

func writeFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, content, 0644)
}
