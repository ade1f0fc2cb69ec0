package store

import (
	"context"
	"errors"

	"github.com/example/ec-storefront/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	Get(ctx context.Context, id string) (*model.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error)
	List(ctx context.Context) ([]*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	SetStatus(ctx context.Context, id string, status model.OrderStatus) error
	// TransitionStatus sets status to `to` only if it currently equals `from`.
	TransitionStatus(ctx context.Context, id string, from, to model.OrderStatus) (bool, error)
	UpdatePayment(ctx context.Context, id string, update PaymentUpdate) error
	// DeleteIfStatus removes the order only if its status is one of statuses.
	DeleteIfStatus(ctx context.Context, id string, statuses ...model.OrderStatus) (bool, error)
}

type PaymentUpdate struct {
	PaymentStatus model.PaymentStatus
	Status        model.OrderStatus
	IntentID      string
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetMany(ctx context.Context, ids []string) (map[string]*model.User, error)
	List(ctx context.Context, roles ...string) ([]*model.User, error)
	Count(ctx context.Context, roles ...string) (int, error)
	Delete(ctx context.Context, id string) error
	SetStripeCustomerID(ctx context.Context, id, customerID string) error
}

type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	Get(ctx context.Context, id string) (*model.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	UpdateRatings(ctx context.Context, id string, average float64, quantity int) error
	CountByCategory(ctx context.Context) (map[string]int, error)
}

type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	Get(ctx context.Context, id string) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	ListFeatured(ctx context.Context, limit int) ([]*model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id string) error
}

type ReviewStore interface {
	// Create fails with ErrDuplicate when the user already reviewed the product.
	Create(ctx context.Context, r *model.Review) error
	Get(ctx context.Context, id string) (*model.Review, error)
	Update(ctx context.Context, r *model.Review) error
	Delete(ctx context.Context, id string) error
	IncrementHelpful(ctx context.Context, id string) (int, error)
	List(ctx context.Context, q model.ReviewQuery) ([]*model.Review, int, error)
	Distribution(ctx context.Context, productID string, status model.ReviewStatus) (map[int]int, error)
	Overview(ctx context.Context) (*model.ReviewOverview, error)
}

type SettingStore interface {
	List(ctx context.Context) ([]*model.Setting, error)
	Get(ctx context.Context, key string) (*model.Setting, error)
	Upsert(ctx context.Context, s *model.Setting) (*model.Setting, error)
}

// ReportStore runs the aggregate queries behind the admin dashboard,
// rating recomputation and storefront facets.
type ReportStore interface {
	TotalSales(ctx context.Context) (float64, error)
	CountOrders(ctx context.Context) (int, error)
	RecentOrders(ctx context.Context, limit int) ([]*model.Order, error)
	TopProducts(ctx context.Context, limit int) ([]model.ProductSales, error)
	ApprovedRatingStats(ctx context.Context, productID string) (model.RatingStats, error)
	CategoryFacets(ctx context.Context) ([]model.CategoryFacet, error)
	ColorFacets(ctx context.Context) ([]model.FacetCount, error)
	SizeFacets(ctx context.Context) ([]model.FacetCount, error)
	BrandFacets(ctx context.Context) ([]model.FacetCount, error)
	PriceBuckets(ctx context.Context) (model.PriceBucketCounts, error)
}

// AnalyticsStore keeps the append-only storefront interaction logs and
// groups them for the admin reports.
type AnalyticsStore interface {
	RecordColor(ctx context.Context, e *model.ColorEvent) error
	RecordSize(ctx context.Context, e *model.SizeEvent) error
	RecordCombination(ctx context.Context, e *model.CombinationEvent) error
	ColorActions(ctx context.Context, w model.AnalyticsWindow) ([]model.ColorActionCount, error)
	TopColors(ctx context.Context, w model.AnalyticsWindow, limit int) ([]model.ColorTotal, error)
	SizeActions(ctx context.Context, w model.AnalyticsWindow) ([]model.SizeActionCount, error)
	CombinationActions(ctx context.Context, w model.AnalyticsWindow) ([]model.CombinationActionCount, error)
	CountColor(ctx context.Context, w model.AnalyticsWindow) (int64, error)
	CountSize(ctx context.Context, w model.AnalyticsWindow) (int64, error)
	CountCombination(ctx context.Context, w model.AnalyticsWindow) (int64, error)
}
