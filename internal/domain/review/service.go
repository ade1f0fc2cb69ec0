// Package review manages product reviews and keeps product rating
// aggregates in step with them.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/validation"
)

// RatingRecalculator refreshes a product's stored rating aggregate.
type RatingRecalculator interface {
	RecalculateRatings(ctx context.Context, productID string) error
}

type Service struct {
	reviews  store.ReviewStore
	products store.ProductStore
	ratings  RatingRecalculator
	notifier notification.Notifier
	now      func() time.Time
}

func NewService(reviews store.ReviewStore, products store.ProductStore, ratings RatingRecalculator, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Service{
		reviews:  reviews,
		products: products,
		ratings:  ratings,
		notifier: notifier,
		now:      time.Now,
	}
}

// Pagination describes one page of a product's reviews.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalReviews int  `json:"totalReviews"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

type ProductReviews struct {
	Reviews            []*model.Review `json:"reviews"`
	Pagination         Pagination      `json:"pagination"`
	RatingDistribution map[int]int     `json:"ratingDistribution"`
}

type AdminPage struct {
	Reviews     []*model.Review `json:"reviews"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	Total       int             `json:"total"`
}

func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}

// ListForProduct returns approved reviews with the 1..5 distribution.
func (s *Service) ListForProduct(ctx context.Context, productID string, q ListQuery) (*ProductReviews, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	reviews, total, err := s.reviews.List(ctx, model.ReviewQuery{
		ProductID: productID,
		Status:    model.ReviewStatusApproved,
		Rating:    q.Rating,
		SortBy:    sortColumn(q.SortBy),
		Ascending: q.Ascending,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	dist, err := s.reviews.Distribution(ctx, productID, model.ReviewStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}

	pages := totalPages(total, limit)
	return &ProductReviews{
		Reviews: reviews,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   pages,
			TotalReviews: total,
			HasNextPage:  page < pages,
			HasPrevPage:  page > 1,
		},
		RatingDistribution: dist,
	}, nil
}

// Create adds userID's review of productID. New reviews are approved.
func (s *Service) Create(ctx context.Context, productID, userID string, in Input) (*model.Review, error) {
	in = in.trimmed()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.products.Get(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	now := s.now().UTC()
	r := &model.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Title:     in.Title,
		Comment:   in.Comment,
		Status:    model.ReviewStatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.refreshRating(ctx, productID)
	notification.Send(ctx, s.notifier, "Review", notification.EventNewReview, notification.ReviewPayload{
		ProductID: productID,
		ReviewID:  r.ID,
	})
	return s.reload(ctx, r), nil
}

// Update replaces the owner's review. Zero fields keep their value and
// the review returns to approved.
func (s *Service) Update(ctx context.Context, reviewID, userID string, in Input) (*model.Review, error) {
	in = in.trimmed()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	r, err := s.owned(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}
	r.Rating = in.Rating
	r.Comment = in.Comment
	if in.Title != "" {
		r.Title = in.Title
	}
	r.Status = model.ReviewStatusApproved
	r.UpdatedAt = s.now().UTC()

	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	s.refreshRating(ctx, r.ProductID)
	notification.Send(ctx, s.notifier, "Review", notification.EventReviewUpdated, notification.ReviewPayload{
		ProductID: r.ProductID,
		ReviewID:  r.ID,
	})
	return s.reload(ctx, r), nil
}

// Delete removes the owner's review.
func (s *Service) Delete(ctx context.Context, reviewID, userID string) error {
	r, err := s.owned(ctx, reviewID, userID)
	if err != nil {
		return err
	}
	return s.remove(ctx, r)
}

// MarkHelpful bumps the helpful counter and returns the new value.
func (s *Service) MarkHelpful(ctx context.Context, reviewID string) (int, error) {
	helpful, err := s.reviews.IncrementHelpful(ctx, reviewID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrReviewNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("mark helpful: %w", err)
	}
	notification.Send(ctx, s.notifier, "Review", notification.EventReviewHelpfulUpdated, notification.ReviewHelpfulPayload{
		ReviewID: reviewID,
		Helpful:  helpful,
	})
	return helpful, nil
}

// AdminList pages through all reviews, newest first.
func (s *Service) AdminList(ctx context.Context, q AdminQuery) (*AdminPage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	page, limit := normalizePage(q.Page, q.Limit)
	reviews, total, err := s.reviews.List(ctx, model.ReviewQuery{
		Status: q.Status,
		Rating: q.Rating,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return &AdminPage{
		Reviews:     reviews,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
		Total:       total,
	}, nil
}

func (s *Service) Get(ctx context.Context, reviewID string) (*model.Review, error) {
	r, err := s.reviews.Get(ctx, reviewID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	return r, err
}

// SetStatus moderates a review and records the operator's response.
func (s *Service) SetStatus(ctx context.Context, reviewID string, status model.ReviewStatus, adminResponse string) (*model.Review, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	r, err := s.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	r.Status = status
	r.AdminResponse = adminResponse
	r.UpdatedAt = s.now().UTC()
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("moderate review: %w", err)
	}
	s.refreshRating(ctx, r.ProductID)
	log.Printf("[Review] Review %s set to %s", r.ID, status)
	notification.Send(ctx, s.notifier, "Review", notification.EventReviewUpdated, notification.ReviewPayload{
		ProductID: r.ProductID,
		ReviewID:  r.ID,
	})
	return r, nil
}

// AdminDelete removes any review.
func (s *Service) AdminDelete(ctx context.Context, reviewID string) error {
	r, err := s.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	return s.remove(ctx, r)
}

func (s *Service) Overview(ctx context.Context) (*model.ReviewOverview, error) {
	return s.reviews.Overview(ctx)
}

func (s *Service) remove(ctx context.Context, r *model.Review) error {
	if err := s.reviews.Delete(ctx, r.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}
	s.refreshRating(ctx, r.ProductID)
	notification.Send(ctx, s.notifier, "Review", notification.EventReviewDeleted, notification.ReviewPayload{
		ProductID: r.ProductID,
		ReviewID:  r.ID,
	})
	return nil
}

// refreshRating recomputes the product aggregate after a committed review
// write. A failure leaves the previous aggregate in place until the next
// review mutation for the product.
func (s *Service) refreshRating(ctx context.Context, productID string) {
	if err := s.ratings.RecalculateRatings(ctx, productID); err != nil {
		log.Printf("[Review] Failed to recalculate rating for product %s: %v", productID, err)
	}
}

func (s *Service) owned(ctx context.Context, reviewID, userID string) (*model.Review, error) {
	r, err := s.reviews.Get(ctx, reviewID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrNotReviewOwner
	}
	return r, nil
}

// reload re-reads the review so the author summary is attached.
func (s *Service) reload(ctx context.Context, r *model.Review) *model.Review {
	fresh, err := s.reviews.Get(ctx, r.ID)
	if err != nil {
		log.Printf("[Review] Failed to reload review %s: %v", r.ID, err)
		return r
	}
	return fresh
}
