package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/example/ec-storefront/internal/analytics"
	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/review"
	"github.com/example/ec-storefront/internal/domain/setting"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/payment"
	"github.com/example/ec-storefront/internal/reporting"
)

const (
	testJWTSecret     = "router-test-secret-that-is-long-enough"
	testWebhookSecret = "whsec_router_test"
)

var errProviderOffline = errors.New("provider offline")

// offlineProvider fails every processor call.
type offlineProvider struct{}

func (offlineProvider) CreateIntent(context.Context, payment.IntentParams) (*payment.Intent, error) {
	return nil, errProviderOffline
}
func (offlineProvider) GetIntent(context.Context, string) (*payment.Intent, error) {
	return nil, errProviderOffline
}
func (offlineProvider) CreateCustomer(context.Context, payment.CustomerParams) (string, error) {
	return "", errProviderOffline
}
func (offlineProvider) ListCards(context.Context, string) ([]payment.Card, error) {
	return nil, errProviderOffline
}
func (offlineProvider) AttachPaymentMethod(context.Context, string, string) (*payment.Card, error) {
	return nil, errProviderOffline
}
func (offlineProvider) Refund(context.Context, payment.RefundParams) (*payment.Refund, error) {
	return nil, errProviderOffline
}

type testServer struct {
	handler  http.Handler
	jwt      *auth.JWTService
	orders   *mocks.MockOrderStore
	users    *mocks.MockUserStore
	products *mocks.MockProductStore
	reviews  *mocks.MockReviewStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	orders := mocks.NewMockOrderStore()
	users := mocks.NewMockUserStore()
	products := mocks.NewMockProductStore()
	categories := mocks.NewMockCategoryStore()
	reviews := mocks.NewMockReviewStore()
	reports := mocks.NewMockReportStore(orders, products, reviews, categories)
	jwtService := auth.NewJWTService(testJWTSecret, time.Hour)

	aggregator := reporting.NewAggregator(reports, users, products)
	orderSvc := order.NewService(orders, users, products, notification.Nop{}, nil)

	handler := NewRouter(RouterConfig{
		Orders:     NewOrderHandlers(orderSvc, aggregator, true),
		Products:   NewProductHandlers(product.NewService(products, categories), aggregator, true),
		Categories: NewCategoryHandlers(category.NewService(categories, products), true),
		Reviews:    NewReviewHandlers(review.NewService(reviews, products, aggregator, notification.Nop{}), true),
		Settings:   NewSettingHandlers(setting.NewService(mocks.NewMockSettingStore(), notification.Nop{}), true),
		Payments: NewPaymentHandlers(
			payment.NewService(offlineProvider{}, orderSvc, users),
			payment.NewReconciler(testWebhookSecret, orderSvc),
			true,
		),
		Analytics:  NewAnalyticsHandlers(analytics.NewService(mocks.NewMockAnalyticsStore(), products), true),
		Auth:       NewAuthHandlers(user.NewService(users), jwtService, true),
		Users:      NewUserHandlers(user.NewService(users), true),
		JWTService: jwtService,
	})

	return &testServer{
		handler:  handler,
		jwt:      jwtService,
		orders:   orders,
		users:    users,
		products: products,
		reviews:  reviews,
	}
}

// tokenFor seeds a user with role and returns a bearer token for it.
func (s *testServer) tokenFor(t *testing.T, id, role string) string {
	t.Helper()
	s.users.Seed(&model.User{ID: id, Name: id, Email: id + "@example.com", Role: role})
	token, _, err := s.jwt.GenerateAccessToken(id, id+"@example.com", role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func checkoutBody() map[string]any {
	return map[string]any{
		"customerInfo": map[string]any{"name": "Guest", "email": "guest@example.com", "phone": "555-0100"},
		"items": []map[string]any{
			{"product": "p1", "quantity": 2, "price": 25.5},
		},
		"shippingAddress": map[string]any{"street": "1 Main St", "city": "Springfield", "state": "IL", "zipCode": "62701"},
		"totalAmount":     51.0,
		"status":          "delivered",
		"paymentStatus":   "paid",
	}
}

func seedOrder(s *testServer, id, userID string, status model.OrderStatus, createdAt time.Time) {
	s.orders.Seed(&model.Order{
		ID:            id,
		UserID:        userID,
		CustomerInfo:  model.CustomerInfo{Name: "Owner", Email: "owner@example.com"},
		Items:         []model.OrderItem{{ProductID: "p1", Quantity: 1, Price: 10}},
		PaymentMethod: model.PaymentMethodStripe,
		PaymentStatus: model.PaymentStatusPending,
		Status:        status,
		TotalAmount:   10,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	})
}

func orderByID(t *testing.T, s *testServer, id string) *model.Order {
	t.Helper()
	o, err := s.orders.Get(context.Background(), id)
	require.NoError(t, err)
	return o
}

// ============================================
// Order Tests
// ============================================

func TestPlaceOrder_GuestStartsPending(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/orders", "", checkoutBody())

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decode[model.Order](t, rec)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, model.PaymentStatusPending, o.PaymentStatus)
	assert.Empty(t, o.UserID)
}

func TestPlaceOrder_ValidationError(t *testing.T) {
	s := newTestServer(t)
	body := checkoutBody()
	body["items"] = []map[string]any{}

	rec := s.do(t, http.MethodPost, "/api/orders", "", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "items", decode[map[string]string](t, rec)["field"])
}

func TestPlaceOrder_MalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrder_IdempotencyKeyReplays(t *testing.T) {
	s := newTestServer(t)

	first := s.do(t, http.MethodPost, "/api/orders", "", checkoutBody(), IdempotencyKeyHeader, "checkout-1")
	second := s.do(t, http.MethodPost, "/api/orders", "", checkoutBody(), IdempotencyKeyHeader, "checkout-1")

	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, decode[model.Order](t, first).ID, decode[model.Order](t, second).ID)
	assert.Len(t, s.orders.All(), 1)
}

func TestCancelOrder(t *testing.T) {
	s := newTestServer(t)
	owner := s.tokenFor(t, "owner", model.RoleCustomer)
	stranger := s.tokenFor(t, "stranger", model.RoleCustomer)
	seedOrder(s, "fresh", "owner", model.OrderStatusPending, time.Now().Add(-30*time.Minute))
	seedOrder(s, "stale", "owner", model.OrderStatusPending, time.Now().Add(-90*time.Minute))

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPatch, "/api/orders/fresh/cancel", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, "/api/orders/fresh/cancel", stranger, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, "/api/orders/missing/cancel", owner, nil).Code)

	rec := s.do(t, http.MethodPatch, "/api/orders/stale/cancel", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.OrderStatusPending, orderByID(t, s, "stale").Status)

	rec = s.do(t, http.MethodPatch, "/api/orders/fresh/cancel", owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.OrderStatusCancelled, orderByID(t, s, "fresh").Status)
}

func TestGetOrder_OwnerOrAdmin(t *testing.T) {
	s := newTestServer(t)
	owner := s.tokenFor(t, "owner", model.RoleCustomer)
	stranger := s.tokenFor(t, "stranger", model.RoleCustomer)
	admin := s.tokenFor(t, "admin", model.RoleAdmin)
	seedOrder(s, "o1", "owner", model.OrderStatusPending, time.Now())

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/orders/o1", owner, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/orders/o1", admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/orders/o1", stranger, nil).Code)
}

func TestUserDeleteOrder(t *testing.T) {
	s := newTestServer(t)
	owner := s.tokenFor(t, "owner", model.RoleCustomer)
	seedOrder(s, "pending", "owner", model.OrderStatusPending, time.Now())
	seedOrder(s, "delivered", "owner", model.OrderStatusDelivered, time.Now())

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/orders/pending/user-delete", owner, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/orders/delivered/user-delete", owner, nil).Code)
	assert.Len(t, s.orders.All(), 1)
}

// ============================================
// Admin Tests
// ============================================

func TestAdminUpdateStatus(t *testing.T) {
	s := newTestServer(t)
	customer := s.tokenFor(t, "c1", model.RoleCustomer)
	admin := s.tokenFor(t, "a1", model.RoleAdmin)
	seedOrder(s, "o1", "c1", model.OrderStatusPending, time.Now())

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/api/admin/orders/o1/status", customer, map[string]string{"status": "shipped"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/admin/orders/o1/status", admin, map[string]string{"status": "confirmed"}).Code)

	rec := s.do(t, http.MethodPut, "/api/admin/orders/o1/status", admin, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.OrderStatusShipped, decode[model.Order](t, rec).Status)
}

func TestAdminDeleteOrder_OnlyCancelled(t *testing.T) {
	s := newTestServer(t)
	admin := s.tokenFor(t, "a1", model.RoleAdmin)
	seedOrder(s, "delivered", "c1", model.OrderStatusDelivered, time.Now())
	seedOrder(s, "cancelled", "c1", model.OrderStatusCancelled, time.Now())

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/admin/orders/delivered", admin, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/admin/orders/cancelled", admin, nil).Code)
}

func TestDashboardStats_ZeroOrders(t *testing.T) {
	s := newTestServer(t)
	admin := s.tokenFor(t, "a1", model.RoleAdmin)

	rec := s.do(t, http.MethodGet, "/api/admin/dashboard-stats", admin, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, float64(0), stats["totalSales"])
	assert.Equal(t, float64(0), stats["totalOrders"])
}

func TestAdminsManage_RequiresSuperAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := s.tokenFor(t, "a1", model.RoleAdmin)
	super := s.tokenFor(t, "s1", model.RoleSuperAdmin)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/admins", admin, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/admin/admins", super, nil).Code)
}

// ============================================
// Webhook Tests
// ============================================

func webhookRequest(t *testing.T, s *testServer, payload []byte, secret string) *httptest.ResponseRecorder {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set(payment.SignatureHeader, signed.Header)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func intentEvent(eventType, orderID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": "pi_1", "object": "payment_intent", "metadata": {"orderId": %q}}}
	}`, eventType, orderID))
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	s := newTestServer(t)
	seedOrder(s, "o1", "", model.OrderStatusPending, time.Now())

	rec := webhookRequest(t, s, intentEvent("payment_intent.succeeded", "o1"), "whsec_wrong")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.PaymentStatusPending, orderByID(t, s, "o1").PaymentStatus)
}

func TestWebhook_SucceededIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	seedOrder(s, "o1", "", model.OrderStatusPending, time.Now())
	payload := intentEvent("payment_intent.succeeded", "o1")

	for i := 0; i < 2; i++ {
		rec := webhookRequest(t, s, payload, testWebhookSecret)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]bool{"received": true}, decode[map[string]bool](t, rec))
	}

	o := orderByID(t, s, "o1")
	assert.Equal(t, model.PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, o.Status)
}

func TestWebhook_UnhandledEventAcknowledged(t *testing.T) {
	s := newTestServer(t)

	rec := webhookRequest(t, s, intentEvent("charge.refunded", "o1"), testWebhookSecret)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPayment_ProviderFailureIs500(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/payment/create-payment-intent", "", map[string]any{"amount": 10, "orderId": "o1"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Server error", body["error"])
	assert.NotContains(t, body, "detail")
}

// ============================================
// Catalog and Review Tests
// ============================================

func TestCreateCategory_DerivesSlug(t *testing.T) {
	s := newTestServer(t)
	admin := s.tokenFor(t, "a1", model.RoleAdmin)

	rec := s.do(t, http.MethodPost, "/api/categories", admin, map[string]string{"name": "Men's Fashion"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "men-s-fashion", decode[model.Category](t, rec).Slug)

	rec = s.do(t, http.MethodGet, "/api/categories/slug/men-s-fashion", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateCategory_IgnoresClientSlug(t *testing.T) {
	s := newTestServer(t)
	admin := s.tokenFor(t, "a1", model.RoleAdmin)

	rec := s.do(t, http.MethodPost, "/api/categories", admin, map[string]string{"name": "Men's Fashion", "slug": "womens-shoes"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "men-s-fashion", decode[model.Category](t, rec).Slug)

	rec = s.do(t, http.MethodGet, "/api/categories/slug/womens-shoes", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateReview_DuplicateConflicts(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "u1", model.RoleCustomer)
	s.products.Seed(&model.Product{ID: "p1", Name: "Tee", Price: 20, RatingsAverage: model.DefaultRating})
	body := map[string]any{"rating": 4, "title": "Nice", "comment": "Fits well and feels soft."}

	first := s.do(t, http.MethodPost, "/api/products/p1/reviews", token, body)
	second := s.do(t, http.MethodPost, "/api/products/p1/reviews", token, body)

	assert.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Len(t, s.reviews.All(), 1)
}

func TestCatalogWrites_RequireAdmin(t *testing.T) {
	s := newTestServer(t)
	customer := s.tokenFor(t, "c1", model.RoleCustomer)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/products", "", map[string]any{}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/products", customer, map[string]any{}).Code)
}

// ============================================
// Auth Tests
// ============================================

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]string{"name": "Ada", "email": "Ada@Example.com", "password": "correct-horse"}

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "access_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	s.handler.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "ada@example.com", decode[model.User](t, me).Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ada", "email": "ada@example.com", "password": "correct-horse"})

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong-horse"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Error Mapping Tests
// ============================================

func TestResponderFail(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		err        error
		wantStatus int
		wantDetail bool
	}{
		{"validation", true, apperror.Validation("email", "email is required"), http.StatusBadRequest, false},
		{"window expired", true, order.ErrCancelWindow, http.StatusBadRequest, false},
		{"not found", true, order.ErrOrderNotFound, http.StatusNotFound, false},
		{"unknown in production", true, errors.New("pq: connection refused"), http.StatusInternalServerError, false},
		{"unknown in development", false, errors.New("pq: connection refused"), http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			responder{production: tt.production}.fail(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode[map[string]string](t, rec)
			_, hasDetail := body["detail"]
			assert.Equal(t, tt.wantDetail, hasDetail)
		})
	}
}
