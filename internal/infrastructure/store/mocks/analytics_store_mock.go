package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/ec-storefront/internal/model"
)

// MockAnalyticsStore groups the interaction logs in memory the same way
// the aggregation pipelines do.
type MockAnalyticsStore struct {
	mu           sync.RWMutex
	colors       []model.ColorEvent
	sizes        []model.SizeEvent
	combinations []model.CombinationEvent

	Err error
}

func NewMockAnalyticsStore() *MockAnalyticsStore {
	return &MockAnalyticsStore{}
}

func (m *MockAnalyticsStore) RecordColor(_ context.Context, e *model.ColorEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.colors = append(m.colors, *e)
	return nil
}

func (m *MockAnalyticsStore) RecordSize(_ context.Context, e *model.SizeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sizes = append(m.sizes, *e)
	return nil
}

func (m *MockAnalyticsStore) RecordCombination(_ context.Context, e *model.CombinationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.combinations = append(m.combinations, *e)
	return nil
}

// Colors returns the recorded color events.
func (m *MockAnalyticsStore) Colors() []model.ColorEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ColorEvent(nil), m.colors...)
}

func (m *MockAnalyticsStore) ColorActions(_ context.Context, w model.AnalyticsWindow) ([]model.ColorActionCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	type key struct{ product, name, color, hex, action string }
	type group struct {
		count    int
		users    map[string]bool
		sessions map[string]bool
	}
	groups := make(map[key]*group)
	var order []key
	for _, e := range m.colors {
		if !w.Contains(e.ProductID, e.Timestamp) {
			continue
		}
		k := key{e.ProductID, e.ProductName, e.ColorName, e.ColorHex, e.Action}
		g, ok := groups[k]
		if !ok {
			g = &group{users: make(map[string]bool), sessions: make(map[string]bool)}
			groups[k] = g
			order = append(order, k)
		}
		g.count++
		if e.UserID != "" {
			g.users[e.UserID] = true
		}
		g.sessions[e.SessionID] = true
	}

	out := make([]model.ColorActionCount, 0, len(order))
	for _, k := range order {
		g := groups[k]
		out = append(out, model.ColorActionCount{
			ProductID:      k.product,
			ProductName:    k.name,
			ColorName:      k.color,
			ColorHex:       k.hex,
			Action:         k.action,
			Count:          g.count,
			UniqueUsers:    len(g.users),
			UniqueSessions: len(g.sessions),
		})
	}
	return out, nil
}

func (m *MockAnalyticsStore) TopColors(_ context.Context, w model.AnalyticsWindow, limit int) ([]model.ColorTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	type key struct{ color, hex string }
	type group struct {
		total    int
		products map[string]bool
		users    map[string]bool
	}
	groups := make(map[key]*group)
	for _, e := range m.colors {
		if !w.Contains(e.ProductID, e.Timestamp) {
			continue
		}
		k := key{e.ColorName, e.ColorHex}
		g, ok := groups[k]
		if !ok {
			g = &group{products: make(map[string]bool), users: make(map[string]bool)}
			groups[k] = g
		}
		g.total++
		g.products[e.ProductID] = true
		if e.UserID != "" {
			g.users[e.UserID] = true
		}
	}

	out := make([]model.ColorTotal, 0, len(groups))
	for k, g := range groups {
		out = append(out, model.ColorTotal{
			ColorName:       k.color,
			ColorHex:        k.hex,
			TotalSelections: g.total,
			UniqueProducts:  len(g.products),
			UniqueUsers:     len(g.users),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSelections != out[j].TotalSelections {
			return out[i].TotalSelections > out[j].TotalSelections
		}
		return out[i].ColorName < out[j].ColorName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockAnalyticsStore) SizeActions(_ context.Context, w model.AnalyticsWindow) ([]model.SizeActionCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	type key struct{ size, action string }
	counts := make(map[key]int)
	var order []key
	for _, e := range m.sizes {
		if !w.Contains(e.ProductID, e.Timestamp) {
			continue
		}
		k := key{e.SizeName, e.Action}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]model.SizeActionCount, 0, len(order))
	for _, k := range order {
		out = append(out, model.SizeActionCount{SizeName: k.size, Action: k.action, Count: counts[k]})
	}
	return out, nil
}

func (m *MockAnalyticsStore) CombinationActions(_ context.Context, w model.AnalyticsWindow) ([]model.CombinationActionCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	type key struct{ product, color, hex, size, action string }
	counts := make(map[key]int)
	var order []key
	for _, e := range m.combinations {
		if !w.Contains(e.ProductID, e.Timestamp) {
			continue
		}
		k := key{e.ProductID, e.ColorName, e.ColorHex, e.SizeName, e.Action}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]model.CombinationActionCount, 0, len(order))
	for _, k := range order {
		out = append(out, model.CombinationActionCount{
			ProductID: k.product,
			ColorName: k.color,
			ColorHex:  k.hex,
			SizeName:  k.size,
			Action:    k.action,
			Count:     counts[k],
		})
	}
	return out, nil
}

func (m *MockAnalyticsStore) CountColor(_ context.Context, w model.AnalyticsWindow) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, e := range m.colors {
		if w.Contains(e.ProductID, e.Timestamp) {
			n++
		}
	}
	return n, m.Err
}

func (m *MockAnalyticsStore) CountSize(_ context.Context, w model.AnalyticsWindow) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, e := range m.sizes {
		if w.Contains(e.ProductID, e.Timestamp) {
			n++
		}
	}
	return n, m.Err
}

func (m *MockAnalyticsStore) CountCombination(_ context.Context, w model.AnalyticsWindow) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, e := range m.combinations {
		if w.Contains(e.ProductID, e.Timestamp) {
			n++
		}
	}
	return n, m.Err
}
