package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/internal/retry"
	"github.com/law-makers/catalogsync/internal/session"
	"github.com/law-makers/catalogsync/pkg/models"
)

type page struct {
	Brand        bool
	Description  bool
	Price        string
	Availability string
	Stock        string
	Features     bool
}

func (p page) html() string {
	var b strings.Builder
	b.WriteString(`<html><body>
<nav class="woocommerce-breadcrumb">
	<a class="breadcrumb-link" href="/">Home</a>
	<a class="breadcrumb-link" href="/c/lighting/">Lighting</a>
	<a class="breadcrumb-link" href="/c/lamps/">Lamps</a>
</nav>
<h1 class="product_title"> Lumo Desk Lamp </h1>
<div class="sku-single"> LM-100 </div>
<figure class="woocommerce-product-gallery__image"><a href="https://cdn.test/lamp.jpg"><img src="x"></a></figure>
`)
	if p.Price != "" {
		fmt.Fprintf(&b, `<p class="price"><span class="woocommerce-Price-amount"><bdi>%s</bdi></span></p>`, p.Price)
	}
	fmt.Fprintf(&b, `<div class="detailed-info-stock"><div class="wpb_wrapper"> %s </div></div>`, p.Availability)
	if p.Stock != "" {
		fmt.Fprintf(&b, `<div class="quantity"><input class="input-text qty" type="number" max="%s"></div>`, p.Stock)
	}
	if p.Description {
		b.WriteString(`<div class="wd-single-content"><h2>Description</h2><p>Warm light.</p></div>`)
	}
	if p.Features {
		b.WriteString(`<table class="woocommerce-product-attributes">`)
		if p.Brand {
			b.WriteString(`<tr class="woocommerce-product-attributes-item--attribute_pa_brand"><th>Brand</th><td class="woocommerce-product-attributes-item__value"> Nordlux </td></tr>`)
		}
		b.WriteString(`<tr><th>Color</th><td>Black</td></tr><tr><th>Color</th><td>White</td></tr></table>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1.234,56 €", 1234.56},
		{"9,99 €", 9.99},
		{"€12,00", 12},
		{"1.000.000,00 €", 1000000},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.raw)
		require.NoError(t, err, tt.raw)
		require.InDelta(t, tt.want, got, 1e-9, tt.raw)
	}

	_, err := ParsePrice("call us")
	require.Error(t, err)
}

func TestParseAvailability(t *testing.T) {
	for label, want := range map[string]bool{
		"Available":     true,
		"Limited stock": true,
		"Sold out":      false,
		"Out of stock":  false,
	} {
		got, err := ParseAvailability(label)
		require.NoError(t, err, label)
		require.Equal(t, want, got, label)
	}

	_, err := ParseAvailability("Backordered")
	require.True(t, errors.Is(err, engine.ErrUnrecognizedAvailability))
}

func TestParse_FullPage(t *testing.T) {
	html := page{Brand: true, Description: true, Price: "1.234,56 €", Availability: "Available", Stock: "7", Features: true}.html()

	record, err := Parse(parseDoc(t, html), "https://shop.test/p/lamp/")
	require.NoError(t, err)

	require.Equal(t, "https://shop.test/p/lamp/", record.URL)
	require.Equal(t, "Lumo Desk Lamp", record.Name)
	require.Equal(t, "LM-100", record.Article)
	require.Equal(t, "Nordlux", record.Brand)
	require.Equal(t, "https://cdn.test/lamp.jpg", record.Image)
	require.InDelta(t, 1234.56, record.Price, 1e-9)
	require.True(t, record.IsAvailable)
	require.Equal(t, 7, record.InStock)
	require.Equal(t, []string{"Lighting", "Lamps"}, record.Breadcrumbs)
	require.NotNil(t, record.Description)
	require.Equal(t, "Warm light.", *record.Description)
	require.Equal(t, []models.Feature{
		{Label: "Brand", Value: "Nordlux"},
		{Label: "Color", Value: "Black"},
		{Label: "Color", Value: "White"},
	}, record.Features)
}

func TestParse_Fallbacks(t *testing.T) {
	html := page{Price: "9,99 €", Availability: "Sold out"}.html()

	record, err := Parse(parseDoc(t, html), "https://shop.test/p/lamp/")
	require.NoError(t, err)

	require.Equal(t, "Lumo", record.Brand)
	require.Nil(t, record.Description)
	require.NotNil(t, record.Features)
	require.Empty(t, record.Features)
	require.False(t, record.IsAvailable)
	require.Equal(t, 0, record.InStock)
	require.InDelta(t, 9.99, record.Price, 1e-9)
}

func TestParse_MissingPrice(t *testing.T) {
	html := page{Availability: "Available", Stock: "1"}.html()

	_, err := Parse(parseDoc(t, html), "https://shop.test/p/lamp/")
	require.True(t, errors.Is(err, engine.ErrProductPageFormat))
	require.False(t, engine.IsFatal(err))

	var fe *engine.FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "price", fe.Field)
	require.Equal(t, "https://shop.test/p/lamp/", fe.URL)
}

func TestParse_StockControlWithoutBound(t *testing.T) {
	html := page{Price: "5,00 €", Availability: "Available", Stock: "7"}.html()
	html = strings.Replace(html, `max="7"`, `max=""`, 1)

	record, err := Parse(parseDoc(t, html), "https://shop.test/p/1")
	require.NoError(t, err)
	require.True(t, record.IsAvailable)
	require.Equal(t, UnboundedStock, record.InStock)
}

func TestParse_AvailableWithoutStockControl(t *testing.T) {
	html := page{Price: "5,00 €", Availability: "Limited stock"}.html()

	_, err := Parse(parseDoc(t, html), "https://shop.test/p/lamp/")
	require.True(t, errors.Is(err, engine.ErrProductPageFormat))
}

func TestExtractor_UnrecognizedAvailability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page{Price: "5,00 €", Availability: "Backordered"}.html())
	}))
	defer server.Close()

	cfg := retry.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	sess, err := session.New(session.Options{BaseURL: server.URL, Retry: cfg})
	require.NoError(t, err)

	record, err := NewExtractor(sess).Extract(context.Background(), server.URL+"/p/lamp/")
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestExtractor_NotFoundIsNotPageFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	sess, err := session.New(session.Options{BaseURL: server.URL})
	require.NoError(t, err)

	record, err := NewExtractor(sess).Extract(context.Background(), server.URL+"/p/gone/")
	require.Error(t, err)
	require.Nil(t, record)
	require.False(t, errors.Is(err, engine.ErrProductPageFormat))
}
