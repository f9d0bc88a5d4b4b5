package product

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/law-makers/catalogsync/internal/engine"
)

// ParsePrice converts a European-formatted amount such as "1.234,56 €".
// Thousands separators go first so the decimal comma survives.
func ParsePrice(raw string) (float64, error) {
	s := strings.ReplaceAll(raw, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", ""))

	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	return price, nil
}

// ParseAvailability maps the stock label to an availability flag
func ParseAvailability(raw string) (bool, error) {
	switch strings.TrimSpace(raw) {
	case "Available", "Limited stock":
		return true, nil
	case "Sold out", "Out of stock":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", engine.ErrUnrecognizedAvailability, raw)
	}
}
