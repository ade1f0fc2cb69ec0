package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]*model.User

	Err error
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]*model.User)}
}

func (m *MockUserStore) Seed(users ...*model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		c := *u
		m.users[u.ID] = &c
	}
}

func (m *MockUserStore) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *MockUserStore) Get(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *MockUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockUserStore) GetMany(_ context.Context, ids []string) (map[string]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			c := *u
			out[id] = &c
		}
	}
	return out, nil
}

func (m *MockUserStore) List(_ context.Context, roles ...string) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*model.User, 0)
	for _, u := range m.users {
		if hasRole(u, roles) {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockUserStore) Count(ctx context.Context, roles ...string) (int, error) {
	users, err := m.List(ctx, roles...)
	return len(users), err
}

func (m *MockUserStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserStore) SetStripeCustomerID(_ context.Context, id, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.StripeCustomerID = customerID
	return nil
}

func hasRole(u *model.User, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
