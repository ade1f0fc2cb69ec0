package mocks

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/example/ec-storefront/internal/model"
)

// MockReportStore computes aggregates from the other in-memory stores.
type MockReportStore struct {
	Orders     *MockOrderStore
	Products   *MockProductStore
	Reviews    *MockReviewStore
	Categories *MockCategoryStore

	Err error

	// Calls counts every query; safe for concurrent callers.
	Calls atomic.Int64
}

func NewMockReportStore(orders *MockOrderStore, products *MockProductStore, reviews *MockReviewStore, categories *MockCategoryStore) *MockReportStore {
	return &MockReportStore{Orders: orders, Products: products, Reviews: reviews, Categories: categories}
}

func (m *MockReportStore) TotalSales(_ context.Context) (float64, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return 0, m.Err
	}
	total := decimal.Zero
	for _, o := range m.Orders.All() {
		total = total.Add(decimal.NewFromFloat(o.TotalAmount))
	}
	return total.InexactFloat64(), nil
}

func (m *MockReportStore) CountOrders(_ context.Context) (int, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Orders.All()), nil
}

func (m *MockReportStore) RecentOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	orders, err := m.Orders.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (m *MockReportStore) TopProducts(_ context.Context, limit int) ([]model.ProductSales, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	index := make(map[string]int)
	revenue := make([]decimal.Decimal, 0)
	sales := make([]model.ProductSales, 0)
	for _, o := range m.Orders.All() {
		for _, item := range o.Items {
			i, ok := index[item.ProductID]
			if !ok {
				i = len(sales)
				index[item.ProductID] = i
				sales = append(sales, model.ProductSales{ProductID: item.ProductID})
				revenue = append(revenue, decimal.Zero)
			}
			sales[i].Sold += item.Quantity
			revenue[i] = revenue[i].Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	for i := range sales {
		sales[i].Revenue = revenue[i].InexactFloat64()
	}
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].Sold > sales[j].Sold })
	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (m *MockReportStore) ApprovedRatingStats(_ context.Context, productID string) (model.RatingStats, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return model.RatingStats{}, m.Err
	}
	var st model.RatingStats
	sum := 0
	for _, r := range m.Reviews.All() {
		if r.ProductID == productID && r.Status == model.ReviewStatusApproved {
			st.Count++
			sum += r.Rating
		}
	}
	if st.Count > 0 {
		st.Average = float64(sum) / float64(st.Count)
	}
	return st, nil
}

func (m *MockReportStore) CategoryFacets(ctx context.Context) ([]model.CategoryFacet, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	categories, err := m.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := m.Products.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	facets := make([]model.CategoryFacet, 0, len(categories))
	for _, c := range categories {
		facets = append(facets, model.CategoryFacet{
			ID: c.ID, Name: c.Name, Description: c.Description, Image: c.Image, Count: counts[c.ID],
		})
	}
	return facets, nil
}

func (m *MockReportStore) ColorFacets(_ context.Context) ([]model.FacetCount, error) {
	return m.facets(func(p *model.Product) []string { return p.SimpleColors })
}

func (m *MockReportStore) SizeFacets(_ context.Context) ([]model.FacetCount, error) {
	return m.facets(func(p *model.Product) []string { return p.Sizes })
}

func (m *MockReportStore) BrandFacets(_ context.Context) ([]model.FacetCount, error) {
	return m.facets(func(p *model.Product) []string {
		if p.Brand == "" {
			return nil
		}
		return []string{p.Brand}
	})
}

func (m *MockReportStore) PriceBuckets(_ context.Context) (model.PriceBucketCounts, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return model.PriceBucketCounts{}, m.Err
	}
	var b model.PriceBucketCounts
	for _, p := range m.Products.All() {
		switch {
		case p.Price < 50:
			b.Under50++
		case p.Price < 100:
			b.From50To100++
		case p.Price < 200:
			b.From100To200++
		default:
			b.Over200++
		}
	}
	return b, nil
}

func (m *MockReportStore) facets(values func(*model.Product) []string) ([]model.FacetCount, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	counts := make(map[string]int)
	for _, p := range m.Products.All() {
		for _, v := range values(p) {
			counts[v]++
		}
	}
	out := make([]model.FacetCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, model.FacetCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}
