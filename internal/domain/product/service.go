// Package product serves the catalog: listing with filters, search and
// admin maintenance.
package product

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/validation"
)

type Service struct {
	products   store.ProductStore
	categories store.CategoryStore
	now        func() time.Time
}

func NewService(products store.ProductStore, categories store.CategoryStore) *Service {
	return &Service{products: products, categories: categories, now: time.Now}
}

// List returns one page of products matching the params. An unknown
// category yields an empty page rather than an error.
func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	f := params.Filter
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	switch f.Sort {
	case model.SortNewest, model.SortPriceLowHigh, model.SortPriceHighLow, model.SortRating:
	default:
		f.Sort = model.SortNewest
	}

	if params.Category != "" {
		id, err := s.resolveCategory(ctx, params.Category)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return &Page{Products: []*model.Product{}}, nil
		}
		f.CategoryID = id
	}

	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &Page{Products: products, Total: total}, nil
}

// resolveCategory maps a slug or id to a category id, or "" when neither
// matches.
func (s *Service) resolveCategory(ctx context.Context, ref string) (string, error) {
	c, err := s.categories.GetBySlug(ctx, ref)
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	c, err = s.categories.Get(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *Service) Create(ctx context.Context, in Input) (*model.Product, error) {
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &model.Product{
		ID:             uuid.NewString(),
		RatingsAverage: model.DefaultRating,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	in.apply(p)

	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	log.Printf("[Product] Created product %s (%s)", p.ID, p.Name)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Product, error) {
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in.apply(p)
	p.UpdatedAt = s.now().UTC()
	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	log.Printf("[Product] Deleted product %s", id)
	return nil
}

// Featured returns the newest featured products.
func (s *Service) Featured(ctx context.Context) ([]*model.Product, error) {
	yes := true
	return s.showcase(ctx, model.ProductFilter{Featured: &yes})
}

// NewArrivals returns the newest products flagged as new.
func (s *Service) NewArrivals(ctx context.Context) ([]*model.Product, error) {
	yes := true
	return s.showcase(ctx, model.ProductFilter{IsNew: &yes})
}

func (s *Service) showcase(ctx context.Context, f model.ProductFilter) ([]*model.Product, error) {
	f.Sort = model.SortNewest
	f.Page = 1
	f.Limit = showcaseLimit
	products, _, err := s.products.List(ctx, f)
	return products, err
}

// Search matches q case-insensitively against name, description and brand.
func (s *Service) Search(ctx context.Context, q string) ([]*model.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrQueryRequired
	}
	products, _, err := s.products.List(ctx, model.ProductFilter{Query: q, Sort: model.SortNewest})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (s *Service) check(ctx context.Context, in Input) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	_, err := s.categories.Get(ctx, in.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownCategory
	}
	return err
}
