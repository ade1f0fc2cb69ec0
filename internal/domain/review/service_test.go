package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/reporting"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingNotifier) Notify(_ context.Context, event string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type failingRecalculator struct{}

func (failingRecalculator) RecalculateRatings(context.Context, string) error {
	return errors.New("aggregate timeout")
}

type testEnv struct {
	svc      *Service
	reviews  *mocks.MockReviewStore
	products *mocks.MockProductStore
	notifier *recordingNotifier
}

func newTestReviewService() *testEnv {
	env := &testEnv{
		reviews:  mocks.NewMockReviewStore(),
		products: mocks.NewMockProductStore(),
		notifier: &recordingNotifier{},
	}
	reports := mocks.NewMockReportStore(mocks.NewMockOrderStore(), env.products, env.reviews, mocks.NewMockCategoryStore())
	agg := reporting.NewAggregator(reports, mocks.NewMockUserStore(), env.products)
	env.svc = NewService(env.reviews, env.products, agg, env.notifier)

	clock := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	env.products.Seed(&model.Product{ID: "p1", Name: "Linen Shirt", RatingsAverage: model.DefaultRating})
	return env
}

func (env *testEnv) product(t *testing.T) *model.Product {
	t.Helper()
	p, err := env.products.Get(context.Background(), "p1")
	require.NoError(t, err)
	return p
}

func validInput(rating int) Input {
	return Input{Rating: rating, Title: "Nice", Comment: "Fits well and feels great."}
}

// ============================================
// Create Tests
// ============================================

func TestService_Create_RecalculatesRatings(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()

	r, err := env.svc.Create(ctx, "p1", "u1", validInput(5))
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusApproved, r.Status)

	_, err = env.svc.Create(ctx, "p1", "u2", validInput(4))
	require.NoError(t, err)

	p := env.product(t)
	assert.Equal(t, 4.5, p.RatingsAverage)
	assert.Equal(t, 2, p.RatingsQuantity)
	assert.Equal(t, []string{notification.EventNewReview, notification.EventNewReview}, env.notifier.events)
}

func TestService_Create_Duplicate(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()

	_, err := env.svc.Create(ctx, "p1", "u1", validInput(5))
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, "p1", "u1", validInput(3))

	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Len(t, env.reviews.All(), 1)
}

func TestService_Create_UnknownProduct(t *testing.T) {
	env := newTestReviewService()

	_, err := env.svc.Create(context.Background(), "nope", "u1", validInput(5))

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"rating too low", Input{Rating: 0, Comment: "Fits well and feels great."}, "rating"},
		{"rating too high", Input{Rating: 6, Comment: "Fits well and feels great."}, "rating"},
		{"comment too short", Input{Rating: 3, Comment: "   short   "}, "comment"},
		{"title too long", Input{Rating: 3, Title: string(make([]byte, 101)), Comment: "Fits well and feels great."}, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestReviewService()

			_, err := env.svc.Create(context.Background(), "p1", "u1", tt.in)

			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Equal(t, tt.field, apperror.FieldOf(err))
		})
	}
}

// ============================================
// Update / Delete Tests
// ============================================

func TestService_Update_OwnerOnly(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()
	r, err := env.svc.Create(ctx, "p1", "u1", validInput(5))
	require.NoError(t, err)

	_, err = env.svc.Update(ctx, r.ID, "u2", validInput(1))
	assert.ErrorIs(t, err, ErrNotReviewOwner)

	updated, err := env.svc.Update(ctx, r.ID, "u1", Input{Rating: 2, Comment: "Shrank after one wash."})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, "Nice", updated.Title)
	assert.Equal(t, 2.0, env.product(t).RatingsAverage)
	assert.Contains(t, env.notifier.events, notification.EventReviewUpdated)
}

func TestService_Update_MissingReview(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()

	_, err := env.svc.Update(ctx, "missing", "u1", validInput(3))
	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	err = env.svc.Delete(ctx, "missing", "u1")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestService_NonOwnerIsForbidden(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()
	r, err := env.svc.Create(ctx, "p1", "u1", validInput(5))
	require.NoError(t, err)

	_, err = env.svc.Update(ctx, r.ID, "u2", validInput(1))

	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestService_RatingFailureKeepsCommittedReview(t *testing.T) {
	env := newTestReviewService()
	env.svc.ratings = failingRecalculator{}
	ctx := context.Background()

	r, err := env.svc.Create(ctx, "p1", "u1", validInput(4))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Contains(t, env.notifier.events, notification.EventNewReview)

	stored, err := env.svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rating)

	_, err = env.svc.Update(ctx, r.ID, "u1", validInput(2))
	require.NoError(t, err)
	require.NoError(t, env.svc.Delete(ctx, r.ID, "u1"))
}

func TestService_Update_ResetsToApproved(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()
	r, err := env.svc.Create(ctx, "p1", "u1", validInput(5))
	require.NoError(t, err)
	_, err = env.svc.SetStatus(ctx, r.ID, model.ReviewStatusRejected, "Off topic")
	require.NoError(t, err)

	updated, err := env.svc.Update(ctx, r.ID, "u1", validInput(4))

	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusApproved, updated.Status)
}

func TestService_Delete_ResetsDefaultRating(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()
	r, err := env.svc.Create(ctx, "p1", "u1", validInput(2))
	require.NoError(t, err)
	require.Equal(t, 2.0, env.product(t).RatingsAverage)

	assert.ErrorIs(t, env.svc.Delete(ctx, r.ID, "u2"), ErrNotReviewOwner)
	require.NoError(t, env.svc.Delete(ctx, r.ID, "u1"))

	p := env.product(t)
	assert.Equal(t, model.DefaultRating, p.RatingsAverage)
	assert.Equal(t, 0, p.RatingsQuantity)
	assert.Contains(t, env.notifier.events, notification.EventReviewDeleted)
}

func TestService_MarkHelpful(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()
	r, err := env.svc.Create(ctx, "p1", "u1", validInput(5))
	require.NoError(t, err)

	n, err := env.svc.MarkHelpful(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = env.svc.MarkHelpful(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = env.svc.MarkHelpful(ctx, "missing")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

// ============================================
// Listing / Moderation Tests
// ============================================

func TestService_ListForProduct_ApprovedWithDistribution(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()
	for i, rating := range []int{5, 5, 4, 1} {
		_, err := env.svc.Create(ctx, "p1", string(rune('a'+i)), validInput(rating))
		require.NoError(t, err)
	}
	all := env.reviews.All()
	_, err := env.svc.SetStatus(ctx, all[3].ID, model.ReviewStatusRejected, "")
	require.NoError(t, err)

	res, err := env.svc.ListForProduct(ctx, "p1", ListQuery{Page: 1, Limit: 2})

	require.NoError(t, err)
	assert.Len(t, res.Reviews, 2)
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 2, TotalReviews: 3, HasNextPage: true}, res.Pagination)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 2}, res.RatingDistribution)
	// Newest first by default.
	assert.Equal(t, 4, res.Reviews[0].Rating)
}

func TestService_SetStatus_Invalid(t *testing.T) {
	env := newTestReviewService()

	_, err := env.svc.SetStatus(context.Background(), "r1", "hidden", "")

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_SetStatus_ExcludesFromRating(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()
	_, err := env.svc.Create(ctx, "p1", "u1", validInput(5))
	require.NoError(t, err)
	low, err := env.svc.Create(ctx, "p1", "u2", validInput(1))
	require.NoError(t, err)

	moderated, err := env.svc.SetStatus(ctx, low.ID, model.ReviewStatusRejected, "Spam")

	require.NoError(t, err)
	assert.Equal(t, "Spam", moderated.AdminResponse)
	p := env.product(t)
	assert.Equal(t, 5.0, p.RatingsAverage)
	assert.Equal(t, 1, p.RatingsQuantity)
}

func TestService_AdminList_AndOverview(t *testing.T) {
	env := newTestReviewService()
	ctx := context.Background()
	first, err := env.svc.Create(ctx, "p1", "u1", validInput(5))
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, "p1", "u2", validInput(3))
	require.NoError(t, err)
	_, err = env.svc.SetStatus(ctx, first.ID, model.ReviewStatusPending, "")
	require.NoError(t, err)

	page, err := env.svc.AdminList(ctx, AdminQuery{Status: model.ReviewStatusPending})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)

	ov, err := env.svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.Total)
	assert.Equal(t, 1, ov.Pending)
	assert.Equal(t, 1, ov.Approved)
	assert.Equal(t, 4.0, ov.AverageRating)

	require.NoError(t, env.svc.AdminDelete(ctx, first.ID))
	assert.ErrorIs(t, env.svc.AdminDelete(ctx, first.ID), ErrReviewNotFound)
}
