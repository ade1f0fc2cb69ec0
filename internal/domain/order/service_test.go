package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/notification"
)

type recordedEvent struct {
	Event   string
	Payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingNotifier) Notify(_ context.Context, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Event: event, Payload: payload})
	return nil
}

type mailCall struct {
	To      string
	OrderID string
	Status  model.OrderStatus
}

type fakeMailer struct {
	calls []mailCall
	err   error
}

func (f *fakeMailer) SendOrderStatus(to, orderID string, status model.OrderStatus) error {
	f.calls = append(f.calls, mailCall{To: to, OrderID: orderID, Status: status})
	return f.err
}

type testEnv struct {
	svc      *Service
	orders   *mocks.MockOrderStore
	users    *mocks.MockUserStore
	products *mocks.MockProductStore
	notifier *recordingNotifier
	mailer   *fakeMailer
	now      time.Time
}

func newTestOrderService() *testEnv {
	env := &testEnv{
		orders:   mocks.NewMockOrderStore(),
		users:    mocks.NewMockUserStore(),
		products: mocks.NewMockProductStore(),
		notifier: &recordingNotifier{},
		mailer:   &fakeMailer{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	env.svc = NewService(env.orders, env.users, env.products, env.notifier, env.mailer)
	env.svc.SetClock(func() time.Time { return env.now })
	return env
}

func total(v float64) *float64 { return &v }

func guestInput() CreateInput {
	return CreateInput{
		CustomerInfo: CustomerInput{Name: "Ana", Email: "ana@example.com", Phone: "555-0100"},
		Items:        []ItemInput{{ProductID: "prod-1", Quantity: 2, Price: 25}},
		ShippingAddress: AddressInput{
			Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701",
		},
		TotalAmount: total(50),
	}
}

func seedOrder(env *testEnv, id, userID string, status model.OrderStatus, age time.Duration) {
	env.orders.Seed(&model.Order{
		ID:            id,
		UserID:        userID,
		CustomerInfo:  model.CustomerInfo{Name: "Ana", Email: "ana@example.com", Phone: "555-0100"},
		Items:         []model.OrderItem{{ProductID: "prod-1", Quantity: 1, Price: 10}},
		PaymentMethod: model.PaymentMethodCashOnDelivery,
		PaymentStatus: model.PaymentStatusPending,
		Status:        status,
		TotalAmount:   10,
		CreatedAt:     env.now.Add(-age),
		UpdatedAt:     env.now.Add(-age),
	})
}

var (
	owner    = auth.Subject{ID: "user-1", Role: model.RoleCustomer}
	stranger = auth.Subject{ID: "user-2", Role: model.RoleCustomer}
	operator = auth.Subject{ID: "admin-1", Role: model.RoleAdmin}
)

// ============================================
// Create Tests
// ============================================

func TestService_Create_Guest(t *testing.T) {
	env := newTestOrderService()
	ctx := context.Background()

	o, created, err := env.svc.Create(ctx, guestInput(), "")

	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, o.ID)
	assert.Empty(t, o.UserID)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, model.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, model.PaymentMethodCashOnDelivery, o.PaymentMethod)
	assert.Equal(t, "US", o.ShippingAddress.Country)
	assert.Equal(t, 50.0, o.TotalAmount)
	assert.Equal(t, env.now, o.CreatedAt)
	assert.Equal(t, 1, env.orders.CreateCalls)

	require.Len(t, env.notifier.events, 1)
	assert.Equal(t, notification.EventNewOrder, env.notifier.events[0].Event)
	payload := env.notifier.events[0].Payload.(notification.NewOrderPayload)
	assert.Equal(t, o.ID, payload.OrderID)
	assert.Equal(t, "Ana", payload.Customer)
	assert.Equal(t, 50.0, payload.TotalAmount)
}

func TestService_Create_AlwaysStartsPending(t *testing.T) {
	env := newTestOrderService()

	in := guestInput()
	in.PaymentMethod = "stripe"
	o, _, err := env.svc.Create(context.Background(), in, "")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, model.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, model.PaymentMethodStripe, o.PaymentMethod)
}

func TestService_Create_AuthenticatedFillsContact(t *testing.T) {
	env := newTestOrderService()
	env.users.Seed(&model.User{ID: "user-1", Name: "Bea", Email: "bea@example.com", Role: model.RoleCustomer})

	in := guestInput()
	in.CustomerInfo = CustomerInput{}
	o, created, err := env.svc.Create(context.Background(), in, "user-1")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "user-1", o.UserID)
	assert.Equal(t, "Bea", o.CustomerInfo.Name)
	assert.Equal(t, "bea@example.com", o.CustomerInfo.Email)
	require.NotNil(t, o.User)
	assert.Equal(t, "Bea", o.User.Name)

	payload := env.notifier.events[0].Payload.(notification.NewOrderPayload)
	assert.Equal(t, "Bea", payload.Customer)
}

func TestService_Create_AuthenticatedBadEmail(t *testing.T) {
	env := newTestOrderService()
	env.users.Seed(&model.User{ID: "user-1", Name: "Bea", Email: "bea@example.com"})

	in := guestInput()
	in.CustomerInfo.Email = "not-an-email"
	_, _, err := env.svc.Create(context.Background(), in, "user-1")

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "customerInfo.email", apperror.FieldOf(err))
}

func TestService_Create_GuestRequiresContact(t *testing.T) {
	env := newTestOrderService()

	in := guestInput()
	in.CustomerInfo.Phone = ""
	_, _, err := env.svc.Create(context.Background(), in, "")

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "customerInfo.phone", apperror.FieldOf(err))
	assert.Equal(t, 0, env.orders.CreateCalls)
	assert.Empty(t, env.notifier.events)
}

func TestService_Create_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"no items", func(in *CreateInput) { in.Items = nil }, "items"},
		{"zero quantity", func(in *CreateInput) { in.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"missing product", func(in *CreateInput) { in.Items[0].ProductID = "" }, "items[0].product"},
		{"missing total", func(in *CreateInput) { in.TotalAmount = nil }, "totalAmount"},
		{"missing zip", func(in *CreateInput) { in.ShippingAddress.ZipCode = "" }, "shippingAddress.zipCode"},
		{"bad payment method", func(in *CreateInput) { in.PaymentMethod = "paypal" }, "paymentMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestOrderService()
			in := guestInput()
			tt.mutate(&in)

			_, _, err := env.svc.Create(context.Background(), in, "")

			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Equal(t, tt.field, apperror.FieldOf(err))
		})
	}
}

func TestService_Create_IdempotentReplay(t *testing.T) {
	env := newTestOrderService()
	ctx := context.Background()

	in := guestInput()
	in.IdempotencyKey = "key-123"
	first, created, err := env.svc.Create(ctx, in, "")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := env.svc.Create(ctx, in, "")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, env.orders.All(), 1)
	assert.Len(t, env.notifier.events, 1)
}

func TestService_Create_StoreError(t *testing.T) {
	env := newTestOrderService()
	env.orders.Err = errors.New("connection refused")

	_, _, err := env.svc.Create(context.Background(), guestInput(), "")

	require.Error(t, err)
	assert.Equal(t, apperror.KindUnknown, apperror.KindOf(err))
}

// ============================================
// Read Tests
// ============================================

func TestService_Get_OwnerAndAdmin(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Minute)
	ctx := context.Background()

	o, err := env.svc.Get(ctx, "order-1", owner)
	require.NoError(t, err)
	assert.Equal(t, "order-1", o.ID)

	_, err = env.svc.Get(ctx, "order-1", operator)
	require.NoError(t, err)

	_, err = env.svc.Get(ctx, "order-1", stranger)
	assert.ErrorIs(t, err, ErrNotOrderOwner)

	_, err = env.svc.Get(ctx, "missing", owner)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_Get_ResolvesProducts(t *testing.T) {
	env := newTestOrderService()
	env.products.Seed(&model.Product{ID: "prod-1", Name: "Linen Shirt", Price: 10})
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Minute)

	o, err := env.svc.Get(context.Background(), "order-1", owner)

	require.NoError(t, err)
	require.NotNil(t, o.Items[0].Product)
	assert.Equal(t, "Linen Shirt", o.Items[0].Product.Name)
}

func TestService_ListByUser(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-old", "user-1", model.OrderStatusDelivered, 48*time.Hour)
	seedOrder(env, "order-new", "user-1", model.OrderStatusPending, time.Hour)
	seedOrder(env, "order-other", "user-2", model.OrderStatusPending, time.Hour)

	orders, err := env.svc.ListByUser(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-new", orders[0].ID)
	assert.Equal(t, "order-old", orders[1].ID)
}

// ============================================
// UpdateStatus Tests
// ============================================

func TestService_UpdateStatus_AnyTransition(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "", model.OrderStatusDelivered, time.Hour)

	o, err := env.svc.UpdateStatus(context.Background(), "order-1", model.OrderStatusPending)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	require.Len(t, env.orders.SetStatusCalls, 1)
	require.Len(t, env.mailer.calls, 1)
	assert.Equal(t, "ana@example.com", env.mailer.calls[0].To)
	assert.Equal(t, model.OrderStatusPending, env.mailer.calls[0].Status)
	require.Len(t, env.notifier.events, 1)
	assert.Equal(t, notification.EventOrderStatusUpdated, env.notifier.events[0].Event)
}

func TestService_UpdateStatus_PrefersUserEmail(t *testing.T) {
	env := newTestOrderService()
	env.users.Seed(&model.User{ID: "user-1", Name: "Bea", Email: "bea@example.com"})
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Hour)

	_, err := env.svc.UpdateStatus(context.Background(), "order-1", model.OrderStatusShipped)

	require.NoError(t, err)
	require.Len(t, env.mailer.calls, 1)
	assert.Equal(t, "bea@example.com", env.mailer.calls[0].To)
}

func TestService_UpdateStatus_EmailFailureSwallowed(t *testing.T) {
	env := newTestOrderService()
	env.mailer.err = errors.New("smtp down")
	seedOrder(env, "order-1", "", model.OrderStatusPending, time.Hour)

	o, err := env.svc.UpdateStatus(context.Background(), "order-1", model.OrderStatusProcessing)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, o.Status)
}

func TestService_UpdateStatus_Invalid(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "", model.OrderStatusPending, time.Hour)

	_, err := env.svc.UpdateStatus(context.Background(), "order-1", "refunded")

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, env.orders.SetStatusCalls)
	assert.Empty(t, env.mailer.calls)
}

func TestService_UpdateStatus_NotFound(t *testing.T) {
	env := newTestOrderService()

	_, err := env.svc.UpdateStatus(context.Background(), "missing", model.OrderStatusShipped)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// ============================================
// Cancel Tests
// ============================================

func TestService_Cancel_WithinWindow(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, 30*time.Minute)

	o, err := env.svc.Cancel(context.Background(), "order-1", owner)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, o.Status)
	stored, _ := env.orders.Get(context.Background(), "order-1")
	assert.Equal(t, model.OrderStatusCancelled, stored.Status)
	require.Len(t, env.notifier.events, 1)
	assert.Equal(t, notification.EventOrderStatusUpdated, env.notifier.events[0].Event)
}

func TestService_Cancel_ExactlyOneHour(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Hour)

	_, err := env.svc.Cancel(context.Background(), "order-1", owner)

	require.NoError(t, err)
}

func TestService_Cancel_WindowExpired(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, 90*time.Minute)

	_, err := env.svc.Cancel(context.Background(), "order-1", owner)

	assert.ErrorIs(t, err, ErrCancelWindow)
	assert.Equal(t, apperror.KindWindowExpired, apperror.KindOf(err))
	stored, _ := env.orders.Get(context.Background(), "order-1")
	assert.Equal(t, model.OrderStatusPending, stored.Status)
}

func TestService_Cancel_NotPending(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusShipped, time.Minute)

	_, err := env.svc.Cancel(context.Background(), "order-1", owner)

	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Equal(t, "Cannot cancel order with status: shipped. Only pending orders can be cancelled.", err.Error())
}

func TestService_Cancel_NotOwner(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Minute)
	ctx := context.Background()

	_, err := env.svc.Cancel(ctx, "order-1", stranger)
	assert.ErrorIs(t, err, ErrNotOrderOwner)

	_, err = env.svc.Cancel(ctx, "order-1", operator)
	assert.ErrorIs(t, err, ErrNotOrderOwner)
}

func TestService_Cancel_GuestOrderRejected(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "", model.OrderStatusPending, time.Minute)

	_, err := env.svc.Cancel(context.Background(), "order-1", owner)

	assert.ErrorIs(t, err, ErrNotOrderOwner)
}

func TestService_Cancel_Unauthenticated(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Minute)

	_, err := env.svc.Cancel(context.Background(), "order-1", auth.Subject{})

	assert.ErrorIs(t, err, ErrAuthRequired)
}

// ============================================
// Delete Tests
// ============================================

func TestService_DeleteByUser_Matrix(t *testing.T) {
	tests := []struct {
		status  model.OrderStatus
		allowed bool
	}{
		{model.OrderStatusPending, false},
		{model.OrderStatusProcessing, false},
		{model.OrderStatusShipped, false},
		{model.OrderStatusDelivered, true},
		{model.OrderStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			env := newTestOrderService()
			seedOrder(env, "order-1", "user-1", tt.status, time.Hour)

			err := env.svc.DeleteByUser(context.Background(), "order-1", owner)

			if tt.allowed {
				require.NoError(t, err)
				assert.Empty(t, env.orders.All())
			} else {
				assert.ErrorIs(t, err, ErrNotDeletable)
				assert.Len(t, env.orders.All(), 1)
			}
		})
	}
}

func TestService_DeleteByUser_NotOwner(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusCancelled, time.Hour)

	err := env.svc.DeleteByUser(context.Background(), "order-1", stranger)

	assert.ErrorIs(t, err, ErrNotOrderOwner)
	assert.Len(t, env.orders.All(), 1)
}

func TestService_DeleteByAdmin_Matrix(t *testing.T) {
	for _, status := range model.OrderStatuses {
		t.Run(string(status), func(t *testing.T) {
			env := newTestOrderService()
			seedOrder(env, "order-1", "user-1", status, time.Hour)

			err := env.svc.DeleteByAdmin(context.Background(), "order-1")

			if status == model.OrderStatusCancelled {
				require.NoError(t, err)
				assert.Empty(t, env.orders.All())
			} else {
				assert.ErrorIs(t, err, ErrAdminNotDeletable)
				assert.Len(t, env.orders.All(), 1)
			}
		})
	}
}

func TestService_DeleteByAdmin_NotFound(t *testing.T) {
	env := newTestOrderService()

	err := env.svc.DeleteByAdmin(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// ============================================
// Payment Tests
// ============================================

func TestService_ApplyPaymentSucceeded(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Minute)
	ctx := context.Background()

	o, err := env.svc.ApplyPaymentSucceeded(ctx, "order-1", "pi_123")

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, o.Status)
	assert.Equal(t, "pi_123", o.StripePaymentIntentID)

	// A replayed delivery changes nothing.
	_, err = env.svc.ApplyPaymentSucceeded(ctx, "order-1", "pi_123")
	require.NoError(t, err)
	assert.Len(t, env.orders.UpdatePaymentCalls, 1)
}

func TestService_ApplyPaymentSucceeded_KeepsLaterStatus(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusShipped, time.Minute)

	o, err := env.svc.ApplyPaymentSucceeded(context.Background(), "order-1", "pi_123")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, o.Status)
	assert.Equal(t, model.PaymentStatusPaid, o.PaymentStatus)
}

func TestService_ApplyPaymentSucceeded_AfterDeclinedAttempt(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Minute)
	ctx := context.Background()

	_, err := env.svc.ApplyPaymentFailed(ctx, "order-1", "pi_123")
	require.NoError(t, err)

	o, err := env.svc.ApplyPaymentSucceeded(ctx, "order-1", "pi_123")

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, o.Status)

	stored, err := env.orders.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, stored.Status)
	assert.Equal(t, model.PaymentStatusPaid, stored.PaymentStatus)
}

func TestService_ApplyPaymentSucceeded_KeepsCustomerCancellation(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusCancelled, time.Minute)

	o, err := env.svc.ApplyPaymentSucceeded(context.Background(), "order-1", "pi_123")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, o.Status)
	assert.Equal(t, model.PaymentStatusPaid, o.PaymentStatus)
}

func TestService_ApplyPaymentFailed(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Minute)

	o, err := env.svc.ApplyPaymentFailed(context.Background(), "order-1", "pi_123")

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, o.PaymentStatus)
	assert.Equal(t, model.OrderStatusCancelled, o.Status)
}

func TestService_ApplyPaymentFailed_IgnoredWhenPaid(t *testing.T) {
	env := newTestOrderService()
	seedOrder(env, "order-1", "user-1", model.OrderStatusPending, time.Minute)
	ctx := context.Background()

	_, err := env.svc.ApplyPaymentSucceeded(ctx, "order-1", "pi_123")
	require.NoError(t, err)

	o, err := env.svc.ApplyPaymentFailed(ctx, "order-1", "pi_123")

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, o.Status)
	assert.Len(t, env.orders.UpdatePaymentCalls, 1)
}

func TestService_ApplyPayment_UnknownOrder(t *testing.T) {
	env := newTestOrderService()

	_, err := env.svc.ApplyPaymentSucceeded(context.Background(), "missing", "pi_123")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}
