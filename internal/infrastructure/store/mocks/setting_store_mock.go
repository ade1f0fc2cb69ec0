package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

type MockSettingStore struct {
	mu       sync.RWMutex
	settings map[string]*model.Setting

	Err error
}

func NewMockSettingStore() *MockSettingStore {
	return &MockSettingStore{settings: make(map[string]*model.Setting)}
}

func (m *MockSettingStore) List(_ context.Context) ([]*model.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*model.Setting, 0, len(m.settings))
	for _, s := range m.settings {
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MockSettingStore) Get(_ context.Context, key string) (*model.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.settings[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (m *MockSettingStore) Upsert(_ context.Context, s *model.Setting) (*model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c := *s
	if existing, ok := m.settings[s.Key]; ok && c.Description == "" {
		c.Description = existing.Description
	}
	m.settings[s.Key] = &c
	out := c
	return &out, nil
}
