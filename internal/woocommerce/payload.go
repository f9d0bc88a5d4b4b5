package woocommerce

import (
	"strconv"

	"github.com/law-makers/catalogsync/pkg/models"
)

// ProductInput is the create-product request body
type ProductInput struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	RegularPrice  string        `json:"regular_price"`
	OnSale        bool          `json:"on_sale"`
	ManageStock   bool          `json:"manage_stock"`
	StockQuantity int           `json:"stock_quantity"`
	MetaData      []MetaData    `json:"meta_data"`
	Categories    []CategoryRef `json:"categories"`
	Images        []Image       `json:"images"`
	Attributes    []Attribute   `json:"attributes"`
}

type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type CategoryRef struct {
	ID int `json:"id"`
}

type Image struct {
	Src string `json:"src"`
}

type Attribute struct {
	Name      string   `json:"name"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// BuildProduct maps a scraped record onto a create request. The category is
// attached only when lookup knows it.
func BuildProduct(record *models.ProductRecord, lookup map[string]int) ProductInput {
	input := ProductInput{
		Name:          record.Name,
		RegularPrice:  strconv.FormatFloat(record.Price, 'f', -1, 64),
		OnSale:        record.IsAvailable,
		ManageStock:   true,
		StockQuantity: record.InStock,
		MetaData:      []MetaData{},
		Categories:    []CategoryRef{},
		Images:        []Image{},
		Attributes:    make([]Attribute, 0, len(record.Features)),
	}
	// An available record without a stock figure is sold without stock tracking
	if record.IsAvailable && record.InStock <= 0 {
		input.ManageStock = false
	} else {
		input.MetaData = append(input.MetaData, MetaData{Key: "maximum_allowed_quantity", Value: strconv.Itoa(record.InStock)})
	}
	if record.Description != nil {
		input.Description = *record.Description
	}
	if id, ok := lookup[record.Category]; ok {
		input.Categories = append(input.Categories, CategoryRef{ID: id})
	}
	if record.Image != "" {
		input.Images = append(input.Images, Image{Src: record.Image})
	}
	for _, f := range record.Features {
		input.Attributes = append(input.Attributes, Attribute{
			Name:      f.Label,
			Visible:   true,
			Variation: true,
			Options:   []string{f.Value},
		})
	}
	return input
}
