package model

// ProductSales is the aggregate of all line items for one product.
type ProductSales struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Sold      int     `json:"sold"`
	Revenue   float64 `json:"revenue"`
}

type DashboardStats struct {
	TotalSales     float64        `json:"totalSales"`
	TotalOrders    int            `json:"totalOrders"`
	TotalCustomers int            `json:"totalCustomers"`
	RecentOrders   []*Order       `json:"recentOrders"`
	TopProducts    []ProductSales `json:"topProducts"`
}

// FacetCount is one distinct value with the number of products carrying it.
type FacetCount struct {
	Value string
	Count int
}

type CategoryFacet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Count       int    `json:"count"`
}

type PriceBucketCounts struct {
	Under50      int
	From50To100  int
	From100To200 int
	Over200      int
}

type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Hex   string `json:"hex,omitempty"`
	Count int    `json:"count"`
}

type PriceRange struct {
	Value string  `json:"value"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

type ProductFilters struct {
	Categories  []CategoryFacet `json:"categories"`
	Colors      []FilterOption  `json:"colors"`
	Sizes       []FilterOption  `json:"sizes"`
	Brands      []FilterOption  `json:"brands"`
	PriceRanges []PriceRange    `json:"priceRanges"`
}
