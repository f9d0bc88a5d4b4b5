// Package product turns a product detail page into a models.ProductRecord.
package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/internal/session"
	"github.com/law-makers/catalogsync/pkg/models"
)

// Extractor fetches and parses product pages
type Extractor struct {
	sess *session.Session
}

// NewExtractor returns an Extractor using sess
func NewExtractor(sess *session.Session) *Extractor {
	return &Extractor{sess: sess}
}

// Extract fetches url and parses it. A page whose availability label is not
// recognized yields (nil, nil). A missing required field yields an error
// matching engine.ErrProductPageFormat.
func (e *Extractor) Extract(ctx context.Context, url string) (*models.ProductRecord, error) {
	resp, err := e.sess.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}
	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}

	record, err := Parse(doc, url)
	if errors.Is(err, engine.ErrUnrecognizedAvailability) {
		log.Warn().Str("url", url).Err(err).Msg("Unrecognized availability, product skipped")
		return nil, nil
	}
	return record, err
}

// Parse reads a product record from an already fetched page
func Parse(doc *goquery.Document, url string) (*models.ProductRecord, error) {
	record, err := parse(doc, url)
	if err != nil {
		var fe *engine.FieldError
		if errors.As(err, &fe) {
			fe.URL = url
		}
		return nil, err
	}
	return record, nil
}

func parse(doc *goquery.Document, url string) (*models.ProductRecord, error) {
	name, err := extractName(doc)
	if err != nil {
		return nil, err
	}
	article, err := extractArticle(doc)
	if err != nil {
		return nil, err
	}
	breadcrumbs, err := extractBreadcrumbs(doc)
	if err != nil {
		return nil, err
	}
	price, err := extractPrice(doc)
	if err != nil {
		return nil, err
	}
	image, err := extractImage(doc)
	if err != nil {
		return nil, err
	}
	available, err := extractAvailability(doc)
	if err != nil {
		return nil, err
	}
	stock, err := extractStock(doc, available)
	if err != nil {
		return nil, err
	}

	return &models.ProductRecord{
		URL:         url,
		Article:     article,
		Name:        name,
		Brand:       extractBrand(doc, name),
		Image:       image,
		Price:       price,
		IsAvailable: available,
		InStock:     stock,
		Breadcrumbs: breadcrumbs,
		Description: extractDescription(doc),
		Features:    extractFeatures(doc),
	}, nil
}
