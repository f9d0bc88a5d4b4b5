package discovery

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/law-makers/catalogsync/pkg/models"
)

// Rule maps a URL path marker to a section kind
type Rule struct {
	Marker string
	Kind   models.SectionKind
}

// DefaultRules are checked in order; the first marker contained in the
// section path wins.
var DefaultRules = []Rule{
	{Marker: "bestsellers", Kind: models.KindBestsellers},
	{Marker: "product-on-sale", Kind: models.KindOnSale},
	{Marker: "new", Kind: models.KindNew},
}

// Classifier assigns a SectionKind to a section URL
type Classifier struct {
	Rules []Rule
}

// NewClassifier returns a classifier using rules, or DefaultRules when empty
func NewClassifier(rules []Rule) Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return Classifier{Rules: rules}
}

// Classify returns the kind of the section at rawURL
func (c Classifier) Classify(rawURL string) models.SectionKind {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
		if u.RawQuery != "" {
			path += "?" + u.RawQuery
		}
	}
	path = strings.ToLower(path)

	for _, r := range c.Rules {
		if r.Marker != "" && strings.Contains(path, strings.ToLower(r.Marker)) {
			return r.Kind
		}
	}
	return models.KindGeneric
}

// ParseRules reads "marker=kind" pairs, e.g. from configuration
func ParseRules(pairs []string) ([]Rule, error) {
	var rules []Rule
	for _, p := range pairs {
		marker, kind, ok := strings.Cut(p, "=")
		marker = strings.TrimSpace(marker)
		if !ok || marker == "" {
			return nil, fmt.Errorf("invalid section rule %q: want marker=kind", p)
		}
		k := models.SectionKind(strings.TrimSpace(kind))
		switch k {
		case models.KindBestsellers, models.KindNew, models.KindOnSale, models.KindGeneric:
			rules = append(rules, Rule{Marker: marker, Kind: k})
		default:
			return nil, fmt.Errorf("invalid section rule %q: unknown kind %q", p, k)
		}
	}
	return rules, nil
}
