package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SectionsPath is the file next to a record set that lists the section
// slugs it was scraped from: "out/catalog.json" -> "out/catalog.sections.json".
func SectionsPath(recordsPath string) string {
	return strings.TrimSuffix(recordsPath, filepath.Ext(recordsPath)) + ".sections.json"
}

// SaveSections writes the section slugs beside the records at recordsPath
func SaveSections(slugs []string, recordsPath string) error {
	if slugs == nil {
		slugs = []string{}
	}
	content, err := encodeJSON(slugs)
	if err != nil {
		return err
	}
	return writeFile(SectionsPath(recordsPath), content)
}

// LoadSections reads the slugs saved by SaveSections. A missing file is not
// an error: it returns nil so callers can fall back to the record categories.
func LoadSections(recordsPath string) ([]string, error) {
	path := SectionsPath(recordsPath)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var slugs []string
	if err := json.Unmarshal(content, &slugs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return slugs, nil
}
