// Package payment talks to the card processor and reconciles its
// asynchronous payment signals with orders.
package payment

import "context"

// Provider is the subset of the payment processor the storefront uses.
type Provider interface {
	CreateIntent(ctx context.Context, p IntentParams) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	CreateCustomer(ctx context.Context, p CustomerParams) (string, error)
	ListCards(ctx context.Context, customerID string) ([]Card, error)
	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*Card, error)
	Refund(ctx context.Context, p RefundParams) (*Refund, error)
}

// IntentParams describes a payment intent. Amount is in minor units.
type IntentParams struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"clientSecret,omitempty"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type CustomerParams struct {
	Email  string
	Name   string
	UserID string
}

type Card struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"expMonth"`
	ExpYear  int64  `json:"expYear"`
}

// RefundParams refunds an intent. A zero Amount refunds the full charge.
type RefundParams struct {
	PaymentIntentID string
	Amount          int64
	Reason          string
}

type Refund struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// IntentSucceeded is the provider status of a settled intent.
const IntentSucceeded = "succeeded"
