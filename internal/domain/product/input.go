package product

import (
	"strings"

	"github.com/example/ec-storefront/internal/model"
)

// Input is the admin create/update payload.
type Input struct {
	Name          string         `json:"name" validate:"required"`
	Description   string         `json:"description" validate:"required"`
	Price         *float64       `json:"price" validate:"required,gte=0"`
	Brand         string         `json:"brand" validate:"required"`
	CategoryID    string         `json:"category" validate:"required"`
	Images        []string       `json:"images" validate:"required,min=1,dive,required"`
	ColorVariants []VariantInput `json:"colorVariants" validate:"dive"`
	SimpleColors  []string       `json:"simpleColors"`
	Sizes         []string       `json:"sizes"`
	Stock         *int           `json:"stock" validate:"required,gte=0"`
	Featured      bool           `json:"featured"`
	IsNewProduct  bool           `json:"isNewProduct"`
}

type VariantInput struct {
	Name   string   `json:"name" validate:"required"`
	Hex    string   `json:"hex" validate:"required,hexcolor"`
	Images []string `json:"images"`
	Stock  int      `json:"stock" validate:"gte=0"`
}

// apply copies the input onto p. Ratings and timestamps are left alone.
func (in Input) apply(p *model.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = *in.Price
	p.Brand = strings.TrimSpace(in.Brand)
	p.CategoryID = in.CategoryID
	p.Images = in.Images
	p.Stock = *in.Stock
	p.Featured = in.Featured
	p.IsNewProduct = in.IsNewProduct

	p.ColorVariants = make([]model.ColorVariant, 0, len(in.ColorVariants))
	for _, v := range in.ColorVariants {
		p.ColorVariants = append(p.ColorVariants, model.ColorVariant(v))
	}
	// Color facets and filters match on lowercase names.
	p.SimpleColors = make([]string, 0, len(in.SimpleColors))
	for _, c := range in.SimpleColors {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			p.SimpleColors = append(p.SimpleColors, c)
		}
	}
	p.Sizes = make([]string, 0, len(in.Sizes))
	for _, s := range in.Sizes {
		if s = strings.TrimSpace(s); s != "" {
			p.Sizes = append(p.Sizes, s)
		}
	}
}

// ListParams is a catalog query as received from the storefront.
// Category may be a slug or an id.
type ListParams struct {
	Category string
	Filter   model.ProductFilter
}

type Page struct {
	Products []*model.Product `json:"products"`
	Total    int              `json:"total"`
}

const (
	defaultLimit  = 10
	showcaseLimit = 8
)
