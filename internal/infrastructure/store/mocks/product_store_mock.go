package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

type MockProductStore struct {
	mu       sync.RWMutex
	products map[string]*model.Product
	seq      []string

	Err error

	UpdateRatingsCalls []RatingsCall
}

type RatingsCall struct {
	ID       string
	Average  float64
	Quantity int
}

func NewMockProductStore() *MockProductStore {
	return &MockProductStore{products: make(map[string]*model.Product)}
}

func (m *MockProductStore) Seed(products ...*model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		if _, ok := m.products[p.ID]; !ok {
			m.seq = append(m.seq, p.ID)
		}
		m.products[p.ID] = cloneProduct(p)
	}
}

func (m *MockProductStore) Create(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.products[p.ID]; ok {
		return store.ErrDuplicate
	}
	m.products[p.ID] = cloneProduct(p)
	m.seq = append(m.seq, p.ID)
	return nil
}

func (m *MockProductStore) Get(_ context.Context, id string) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (m *MockProductStore) GetMany(_ context.Context, ids []string) (map[string]*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]*model.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = cloneProduct(p)
		}
	}
	return out, nil
}

func (m *MockProductStore) List(_ context.Context, f model.ProductFilter) ([]*model.Product, int, error) {
	if m.Err != nil {
		return nil, 0, m.Err
	}
	matched := make([]*model.Product, 0)
	for _, p := range m.All() {
		if matchProduct(p, f) {
			matched = append(matched, p)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch f.Sort {
		case model.SortPriceLowHigh:
			return a.Price < b.Price
		case model.SortPriceHighLow:
			return a.Price > b.Price
		case model.SortRating:
			return a.RatingsAverage > b.RatingsAverage
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})

	total := len(matched)
	if f.Limit > 0 {
		start := f.Offset()
		if start > total {
			start = total
		}
		end := start + f.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (m *MockProductStore) Update(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.products[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	c := cloneProduct(p)
	c.RatingsAverage = existing.RatingsAverage
	c.RatingsQuantity = existing.RatingsQuantity
	c.CreatedAt = existing.CreatedAt
	m.products[p.ID] = c
	return nil
}

func (m *MockProductStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	for i, sid := range m.seq {
		if sid == id {
			m.seq = append(m.seq[:i], m.seq[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockProductStore) UpdateRatings(_ context.Context, id string, average float64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateRatingsCalls = append(m.UpdateRatingsCalls, RatingsCall{ID: id, Average: average, Quantity: quantity})
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.RatingsAverage = average
	p.RatingsQuantity = quantity
	return nil
}

func (m *MockProductStore) CountByCategory(_ context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	counts := make(map[string]int)
	for _, p := range m.products {
		if p.CategoryID != "" {
			counts[p.CategoryID]++
		}
	}
	return counts, nil
}

// All returns the stored products in insertion order.
func (m *MockProductStore) All() []*model.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Product, 0, len(m.seq))
	for _, id := range m.seq {
		out = append(out, cloneProduct(m.products[id]))
	}
	return out
}

func matchProduct(p *model.Product, f model.ProductFilter) bool {
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.Color != "" && !contains(p.SimpleColors, strings.ToLower(f.Color)) {
		return false
	}
	if f.Size != "" && !contains(p.Sizes, f.Size) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.IsNew != nil && p.IsNewProduct != *f.IsNew {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Brand), q) {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func cloneProduct(p *model.Product) *model.Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.SimpleColors = append([]string(nil), p.SimpleColors...)
	c.Sizes = append([]string(nil), p.Sizes...)
	c.ColorVariants = append([]model.ColorVariant(nil), p.ColorVariants...)
	return &c
}
