package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

// MockCategoryStore enforces the same name and slug uniqueness as the table.
type MockCategoryStore struct {
	mu         sync.RWMutex
	categories map[string]*model.Category

	Err error
}

func NewMockCategoryStore() *MockCategoryStore {
	return &MockCategoryStore{categories: make(map[string]*model.Category)}
}

func (m *MockCategoryStore) Seed(categories ...*model.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range categories {
		cp := *c
		m.categories[c.ID] = &cp
	}
}

func (m *MockCategoryStore) Create(_ context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.clashes(c) {
		return store.ErrDuplicate
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *MockCategoryStore) Get(_ context.Context, id string) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCategoryStore) GetBySlug(_ context.Context, slug string) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockCategoryStore) List(_ context.Context) ([]*model.Category, error) {
	return m.list(func(*model.Category) bool { return true }, 0)
}

func (m *MockCategoryStore) ListFeatured(_ context.Context, limit int) ([]*model.Category, error) {
	return m.list(func(c *model.Category) bool { return c.Featured }, limit)
}

func (m *MockCategoryStore) Update(_ context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	if m.clashes(c) {
		return store.ErrDuplicate
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *MockCategoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *MockCategoryStore) clashes(c *model.Category) bool {
	for id, existing := range m.categories {
		if id != c.ID && (existing.Name == c.Name || existing.Slug == c.Slug) {
			return true
		}
	}
	return false
}

func (m *MockCategoryStore) list(keep func(*model.Category) bool, limit int) ([]*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*model.Category, 0)
	for _, c := range m.categories {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
