// Package category maintains the catalog's category tree.
package category

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/validation"
)

// FeaturedLimit caps the storefront's featured category strip.
const FeaturedLimit = 6

type Service struct {
	categories store.CategoryStore
	products   store.ProductStore
	now        func() time.Time
}

func NewService(categories store.CategoryStore, products store.ProductStore) *Service {
	return &Service{categories: categories, products: products, now: time.Now}
}

// List returns top-level categories with their product counts and
// direct subcategories.
func (s *Service) List(ctx context.Context) ([]*model.Category, error) {
	all, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	counts, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products by category: %w", err)
	}

	children := make(map[string][]*model.Category)
	for _, c := range all {
		c.ProductCount = counts[c.ID]
		if c.ParentID != "" {
			children[c.ParentID] = append(children[c.ParentID], c)
		}
	}

	roots := make([]*model.Category, 0, len(all))
	for _, c := range all {
		if c.ParentID != "" {
			continue
		}
		c.Subcategories = children[c.ID]
		roots = append(roots, c)
	}
	return roots, nil
}

// Featured returns up to FeaturedLimit featured categories with counts.
func (s *Service) Featured(ctx context.Context) ([]*model.Category, error) {
	featured, err := s.categories.ListFeatured(ctx, FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("list featured categories: %w", err)
	}
	counts, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products by category: %w", err)
	}
	for _, c := range featured {
		c.ProductCount = counts[c.ID]
	}
	return featured, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, s.withCount(ctx, c)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c, err := s.categories.GetBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, s.withCount(ctx, c)
}

func (s *Service) Create(ctx context.Context, in Input) (*model.Category, error) {
	in, err := s.check(ctx, "", in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &model.Category{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(c, in)

	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	log.Printf("[Category] Created category %s (%s)", c.ID, c.Slug)
	return c, nil
}

// Update replaces the category's fields. The slug is re-derived from the
// name unless one is given.
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Category, error) {
	in, err := s.check(ctx, id, in)
	if err != nil {
		return nil, err
	}
	c, err := s.categories.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	apply(c, in)
	c.UpdatedAt = s.now().UTC()
	if err := s.categories.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrCategoryNotFound
		case errors.Is(err, store.ErrDuplicate):
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.categories.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	log.Printf("[Category] Deleted category %s", id)
	return nil
}

func (s *Service) check(ctx context.Context, id string, in Input) (Input, error) {
	in = in.trimmed()
	if err := validation.Struct(in); err != nil {
		return in, err
	}
	if !slugRegex.MatchString(Slugify(in.Name)) {
		return in, ErrInvalidSlug
	}
	if in.ParentID == "" {
		return in, nil
	}
	if in.ParentID == id {
		return in, ErrSelfParent
	}
	_, err := s.categories.Get(ctx, in.ParentID)
	if errors.Is(err, store.ErrNotFound) {
		return in, ErrUnknownParent
	}
	return in, err
}

func (s *Service) withCount(ctx context.Context, c *model.Category) error {
	counts, err := s.products.CountByCategory(ctx)
	if err != nil {
		return fmt.Errorf("count products by category: %w", err)
	}
	c.ProductCount = counts[c.ID]
	return nil
}

func apply(c *model.Category, in Input) {
	c.Name = in.Name
	c.Slug = Slugify(in.Name)
	c.Description = in.Description
	c.Image = in.Image
	c.ParentID = in.ParentID
	c.Featured = in.Featured
}
