package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

// MockOrderStore is an in-memory store.OrderStore.
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*model.Order
	seq    []string

	// Err, when set, is returned by every method.
	Err error

	CreateCalls        int
	SetStatusCalls     []SetStatusCall
	UpdatePaymentCalls []store.PaymentUpdate
}

type SetStatusCall struct {
	ID     string
	Status model.OrderStatus
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: make(map[string]*model.Order)}
}

// Seed stores orders as-is, bypassing call tracking.
func (m *MockOrderStore) Seed(orders ...*model.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range orders {
		if _, ok := m.orders[o.ID]; !ok {
			m.seq = append(m.seq, o.ID)
		}
		m.orders[o.ID] = cloneOrder(o)
	}
}

func (m *MockOrderStore) Create(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.orders[o.ID]; ok {
		return store.ErrDuplicate
	}
	if o.IdempotencyKey != "" {
		for _, existing := range m.orders {
			if existing.IdempotencyKey == o.IdempotencyKey {
				return store.ErrDuplicate
			}
		}
	}
	m.orders[o.ID] = cloneOrder(o)
	m.seq = append(m.seq, o.ID)
	return nil
}

func (m *MockOrderStore) Get(_ context.Context, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *MockOrderStore) GetByIdempotencyKey(_ context.Context, key string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, o := range m.orders {
		if key != "" && o.IdempotencyKey == key {
			return cloneOrder(o), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockOrderStore) List(_ context.Context) ([]*model.Order, error) {
	return m.filter(func(*model.Order) bool { return true })
}

func (m *MockOrderStore) ListByUser(_ context.Context, userID string) ([]*model.Order, error) {
	return m.filter(func(o *model.Order) bool { return o.UserID == userID })
}

func (m *MockOrderStore) SetStatus(_ context.Context, id string, status model.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetStatusCalls = append(m.SetStatusCalls, SetStatusCall{ID: id, Status: status})
	if m.Err != nil {
		return m.Err
	}
	o, ok := m.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *MockOrderStore) TransitionStatus(_ context.Context, id string, from, to model.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (m *MockOrderStore) UpdatePayment(_ context.Context, id string, u store.PaymentUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatePaymentCalls = append(m.UpdatePaymentCalls, u)
	if m.Err != nil {
		return m.Err
	}
	o, ok := m.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.PaymentStatus = u.PaymentStatus
	o.Status = u.Status
	if u.IntentID != "" {
		o.StripePaymentIntentID = u.IntentID
	}
	return nil
}

func (m *MockOrderStore) DeleteIfStatus(_ context.Context, id string, statuses ...model.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	o, ok := m.orders[id]
	if !ok {
		return false, nil
	}
	for _, st := range statuses {
		if o.Status == st {
			delete(m.orders, id)
			for i, sid := range m.seq {
				if sid == id {
					m.seq = append(m.seq[:i], m.seq[i+1:]...)
					break
				}
			}
			return true, nil
		}
	}
	return false, nil
}

// All returns the stored orders in insertion order.
func (m *MockOrderStore) All() []*model.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Order, 0, len(m.seq))
	for _, id := range m.seq {
		out = append(out, cloneOrder(m.orders[id]))
	}
	return out
}

func (m *MockOrderStore) filter(keep func(*model.Order) bool) ([]*model.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*model.Order, 0)
	for _, o := range m.All() {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	if o.User != nil {
		u := *o.User
		c.User = &u
	}
	return &c
}
