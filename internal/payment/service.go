package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

const (
	defaultCurrency     = "usd"
	defaultRefundReason = "requested_by_customer"
	guestUser           = "guest"
)

// OrderPayments applies payment outcomes to orders.
type OrderPayments interface {
	ApplyPaymentSucceeded(ctx context.Context, orderID, intentID string) (*model.Order, error)
	ApplyPaymentFailed(ctx context.Context, orderID, intentID string) (*model.Order, error)
	AttachPaymentIntent(ctx context.Context, orderID, intentID string) error
}

type Service struct {
	provider Provider
	orders   OrderPayments
	users    store.UserStore
}

func NewService(provider Provider, orders OrderPayments, users store.UserStore) *Service {
	return &Service{provider: provider, orders: orders, users: users}
}

type IntentInput struct {
	Amount   float64           `json:"amount"`
	Currency string            `json:"currency"`
	OrderID  string            `json:"orderId"`
	Items    []json.RawMessage `json:"items"`
}

type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// MinorUnits converts a decimal amount to the provider's smallest
// currency unit, rounding half away from zero.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

// CreatePaymentIntent opens an intent for the order. The order id travels
// in the intent metadata so webhook events can be matched back to it.
func (s *Service) CreatePaymentIntent(ctx context.Context, in IntentInput, userID string) (*IntentResult, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.Amount == 0 {
		return nil, ErrAmountRequired
	}
	if in.OrderID == "" {
		return nil, ErrOrderIDRequired
	}
	if in.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	if userID == "" {
		userID = guestUser
	}
	items := in.Items
	if items == nil {
		items = []json.RawMessage{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, apperror.Validation("items", "items must be valid JSON")
	}

	intent, err := s.provider.CreateIntent(ctx, IntentParams{
		Amount:   MinorUnits(in.Amount),
		Currency: currency,
		Metadata: map[string]string{
			"orderId": in.OrderID,
			"userId":  userID,
			"items":   string(encoded),
		},
	})
	if err != nil {
		log.Printf("[Payment] Failed to create intent for order %s: %v", in.OrderID, err)
		return nil, apperror.Upstream("Failed to create payment intent", err)
	}

	if err := s.orders.AttachPaymentIntent(ctx, in.OrderID, intent.ID); err != nil {
		log.Printf("[Payment] Could not record intent %s on order %s: %v", intent.ID, in.OrderID, err)
	}
	log.Printf("[Payment] Created intent %s for order %s", intent.ID, in.OrderID)
	return &IntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

// ConfirmPayment checks the intent with the provider and, when it has
// settled, records the payment on the order.
func (s *Service) ConfirmPayment(ctx context.Context, intentID, orderID string) (*model.Order, error) {
	if intentID == "" {
		return nil, ErrIntentIDRequired
	}
	if orderID == "" {
		return nil, ErrOrderIDRequired
	}

	intent, err := s.provider.GetIntent(ctx, intentID)
	if err != nil {
		return nil, apperror.Upstream("Failed to confirm payment", err)
	}
	if intent.Status != IntentSucceeded {
		return nil, apperror.Errorf(ErrNotCompleted, "Payment not completed (status: %s)", intent.Status)
	}
	return s.orders.ApplyPaymentSucceeded(ctx, orderID, intent.ID)
}

// CreateCustomer returns the user's processor customer id, creating the
// customer on first use.
func (s *Service) CreateCustomer(ctx context.Context, userID string) (string, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.StripeCustomerID != "" {
		return u.StripeCustomerID, nil
	}

	id, err := s.provider.CreateCustomer(ctx, CustomerParams{Email: u.Email, Name: u.Name, UserID: u.ID})
	if err != nil {
		return "", apperror.Upstream("Failed to create customer", err)
	}
	if err := s.users.SetStripeCustomerID(ctx, u.ID, id); err != nil {
		return "", err
	}
	log.Printf("[Payment] Created customer %s for user %s", id, u.ID)
	return id, nil
}

// ListPaymentMethods returns the user's saved cards. Users without a
// processor customer have none.
func (s *Service) ListPaymentMethods(ctx context.Context, userID string) ([]Card, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.StripeCustomerID == "" {
		return []Card{}, nil
	}
	cards, err := s.provider.ListCards(ctx, u.StripeCustomerID)
	if err != nil {
		return nil, apperror.Upstream("Failed to get payment methods", err)
	}
	return cards, nil
}

func (s *Service) SavePaymentMethod(ctx context.Context, userID, paymentMethodID string) (*Card, error) {
	if paymentMethodID == "" {
		return nil, ErrMethodIDRequired
	}
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.StripeCustomerID == "" {
		return nil, ErrNoCustomer
	}
	card, err := s.provider.AttachPaymentMethod(ctx, paymentMethodID, u.StripeCustomerID)
	if err != nil {
		return nil, apperror.Upstream("Failed to save payment method", err)
	}
	return card, nil
}

type RefundInput struct {
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          float64 `json:"amount"`
	Reason          string  `json:"reason"`
}

// Refund returns money for an intent. A zero amount refunds in full.
func (s *Service) Refund(ctx context.Context, in RefundInput) (*Refund, error) {
	if in.PaymentIntentID == "" {
		return nil, ErrIntentIDRequired
	}
	if in.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	reason := in.Reason
	if reason == "" {
		reason = defaultRefundReason
	}
	var amount int64
	if in.Amount > 0 {
		amount = MinorUnits(in.Amount)
	}

	r, err := s.provider.Refund(ctx, RefundParams{PaymentIntentID: in.PaymentIntentID, Amount: amount, Reason: reason})
	if err != nil {
		return nil, apperror.Upstream("Failed to process refund", err)
	}
	log.Printf("[Payment] Refunded intent %s (refund=%s amount=%d)", in.PaymentIntentID, r.ID, r.Amount)
	return r, nil
}

func (s *Service) user(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.New(apperror.KindNotFound, "User not found")
	}
	return u, err
}
