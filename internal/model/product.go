package model

import "time"

// DefaultRating is shown for products without approved reviews.
const DefaultRating = 4.5

type ColorVariant struct {
	Name   string   `json:"name"`
	Hex    string   `json:"hex"`
	Images []string `json:"images,omitempty"`
	Stock  int      `json:"stock"`
}

type Product struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Price           float64        `json:"price"`
	Brand           string         `json:"brand,omitempty"`
	CategoryID      string         `json:"category"`
	Images          []string       `json:"images"`
	ColorVariants   []ColorVariant `json:"colorVariants"`
	SimpleColors    []string       `json:"simpleColors"`
	Sizes           []string       `json:"sizes"`
	Stock           int            `json:"stock"`
	RatingsAverage  float64        `json:"ratingsAverage"`
	RatingsQuantity int            `json:"ratingsQuantity"`
	Featured        bool           `json:"featured"`
	IsNewProduct    bool           `json:"isNewProduct"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type ProductSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Images []string `json:"images,omitempty"`
}

func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Images: p.Images}
}

// ProductSort names a catalog ordering.
type ProductSort string

const (
	SortNewest       ProductSort = "newest"
	SortPriceLowHigh ProductSort = "price-low-high"
	SortPriceHighLow ProductSort = "price-high-low"
	SortRating       ProductSort = "rating"
)

// ProductFilter narrows a catalog listing. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryID string
	Brand      string
	Color      string
	Size       string
	MinPrice   *float64
	MaxPrice   *float64
	Featured   *bool
	IsNew      *bool
	Query      string
	Sort       ProductSort
	Page       int
	Limit      int
}

// Offset returns the number of rows skipped by the filter's page.
func (f ProductFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
