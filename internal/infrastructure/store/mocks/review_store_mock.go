package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

// MockReviewStore enforces one review per (product, user).
type MockReviewStore struct {
	mu      sync.RWMutex
	reviews map[string]*model.Review

	Err error
}

func NewMockReviewStore() *MockReviewStore {
	return &MockReviewStore{reviews: make(map[string]*model.Review)}
}

func (m *MockReviewStore) Seed(reviews ...*model.Review) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range reviews {
		c := *r
		m.reviews[r.ID] = &c
	}
}

func (m *MockReviewStore) Create(_ context.Context, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return store.ErrDuplicate
		}
	}
	c := *r
	m.reviews[r.ID] = &c
	return nil
}

func (m *MockReviewStore) Get(_ context.Context, id string) (*model.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.reviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (m *MockReviewStore) Update(_ context.Context, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.reviews[r.ID]; !ok {
		return store.ErrNotFound
	}
	c := *r
	m.reviews[r.ID] = &c
	return nil
}

func (m *MockReviewStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.reviews[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *MockReviewStore) IncrementHelpful(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	r, ok := m.reviews[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	r.Helpful++
	return r.Helpful, nil
}

func (m *MockReviewStore) List(_ context.Context, q model.ReviewQuery) ([]*model.Review, int, error) {
	if m.Err != nil {
		return nil, 0, m.Err
	}
	matched := make([]*model.Review, 0)
	for _, r := range m.All() {
		if q.ProductID != "" && r.ProductID != q.ProductID {
			continue
		}
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.Rating > 0 && r.Rating != q.Rating {
			continue
		}
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		switch q.SortBy {
		case "rating":
			less = a.Rating < b.Rating
		case "helpful":
			less = a.Helpful < b.Helpful
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if q.Ascending {
			return less
		}
		return !less && !equalKey(a, b, q.SortBy)
	})

	total := len(matched)
	if q.Limit > 0 {
		start := q.Offset()
		if start > total {
			start = total
		}
		end := start + q.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (m *MockReviewStore) Distribution(_ context.Context, productID string, status model.ReviewStatus) (map[int]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range m.All() {
		if (productID == "" || r.ProductID == productID) && (status == "" || r.Status == status) {
			dist[r.Rating]++
		}
	}
	return dist, nil
}

func (m *MockReviewStore) Overview(ctx context.Context) (*model.ReviewOverview, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var (
		o   model.ReviewOverview
		sum int
	)
	for _, r := range m.All() {
		o.Total++
		sum += r.Rating
		switch r.Status {
		case model.ReviewStatusPending:
			o.Pending++
		case model.ReviewStatusApproved:
			o.Approved++
		case model.ReviewStatusRejected:
			o.Rejected++
		}
	}
	if o.Total > 0 {
		o.AverageRating = float64(sum) / float64(o.Total)
	}
	dist, err := m.Distribution(ctx, "", model.ReviewStatusApproved)
	if err != nil {
		return nil, err
	}
	o.RatingDistribution = dist
	return &o, nil
}

// All returns every stored review ordered by creation time.
func (m *MockReviewStore) All() []*model.Review {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Review, 0, len(m.reviews))
	for _, r := range m.reviews {
		c := *r
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func equalKey(a, b *model.Review, sortBy string) bool {
	switch sortBy {
	case "rating":
		return a.Rating == b.Rating
	case "helpful":
		return a.Helpful == b.Helpful
	default:
		return a.CreatedAt.Equal(b.CreatedAt)
	}
}
