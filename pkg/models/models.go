package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SectionKind identifies which listing protocol a catalog section is served with
type SectionKind string

const (
	KindGeneric     SectionKind = "generic"
	KindBestsellers SectionKind = "bestsellers"
	KindNew         SectionKind = "new"
	KindOnSale      SectionKind = "on-sale"
)

// Section is a top-level catalog entry discovered in the site navigation
type Section struct {
	URL  string      `json:"url"`
	Slug string      `json:"slug"`
	Kind SectionKind `json:"kind"`
}

// SectionSlugs returns the slug of every section, in catalog order
func SectionSlugs(sections []Section) []string {
	slugs := make([]string, len(sections))
	for i, s := range sections {
		slugs[i] = s.Slug
	}
	return slugs
}

// Feature is one row of the product attribute table (label -> value).
// It is encoded as a single-key JSON object so a list of features keeps
// its order and may repeat labels.
type Feature struct {
	Label string
	Value string
}

// MarshalJSON encodes the feature as {"<label>": "<value>"}
func (f Feature) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	label, err := json.Marshal(f.Label)
	if err != nil {
		return nil, err
	}
	value, err := json.Marshal(f.Value)
	if err != nil {
		return nil, err
	}
	buf.WriteByte('{')
	buf.Write(label)
	buf.WriteByte(':')
	buf.Write(value)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a single-key object into a Feature
func (f *Feature) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("feature: %w", err)
	}
	if len(m) != 1 {
		return fmt.Errorf("feature: expected exactly one key, got %d", len(m))
	}
	for k, v := range m {
		f.Label = k
		f.Value = v
	}
	return nil
}

// ProductRecord is the normalized representation of one product page.
// Field names are the on-disk wire format consumed by the sync stage.
type ProductRecord struct {
	URL         string    `json:"url"`
	Article     string    `json:"article"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Image       string    `json:"image"`
	Price       float64   `json:"price"`
	IsAvailable bool      `json:"is_available"`
	InStock     int       `json:"in_stock"`
	Breadcrumbs []string  `json:"breadcrumbs"`
	Description *string   `json:"description"`
	Features    []Feature `json:"features"`
	Category    string    `json:"category"`
}

// SkipReason labels why a product URL produced no record
type SkipReason string

const (
	SkipUnrecognizedAvailability SkipReason = "unrecognized_availability"
	SkipPageFormat               SkipReason = "page_format"
	SkipOther                    SkipReason = "other"
)

// RunSummary reports the counts of a single extraction run
type RunSummary struct {
	RunID       string             `json:"run_id"`
	Sections    int                `json:"sections"`
	ProductURLs int                `json:"product_urls"`
	Parsed      int                `json:"parsed"`
	Skipped     map[SkipReason]int `json:"skipped"`
	Duration    time.Duration      `json:"duration"`
}

// SkippedTotal returns the number of product URLs that produced no record
func (s RunSummary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}
