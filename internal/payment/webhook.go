package payment

import (
	"context"
	"encoding/json"
	"log"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/model"
)

// SignatureHeader carries the processor's payload signature.
const SignatureHeader = "Stripe-Signature"

// Reconciler verifies processor webhooks and applies payment outcomes to
// orders. Deliveries may repeat or arrive out of order; applying one twice
// leaves the order as applying it once.
type Reconciler struct {
	secret string
	orders OrderPayments
}

func NewReconciler(secret string, orders OrderPayments) *Reconciler {
	return &Reconciler{secret: secret, orders: orders}
}

// Handle verifies payload against signature and applies the event. Only
// an unverifiable payload or a store failure is an error; unknown events
// and events that name no known order are accepted.
func (r *Reconciler) Handle(ctx context.Context, payload []byte, signature string) error {
	if r.secret == "" {
		log.Printf("[Payment] Webhook rejected: no signing secret configured")
		return ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, r.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Printf("[Payment] Webhook signature verification failed: %v", err)
		return ErrInvalidSignature
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return r.apply(ctx, event, r.orders.ApplyPaymentSucceeded)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return r.apply(ctx, event, r.orders.ApplyPaymentFailed)
	default:
		log.Printf("[Payment] Ignoring webhook event %s (%s)", event.Type, event.ID)
		return nil
	}
}

type applyFunc func(ctx context.Context, orderID, intentID string) (*model.Order, error)

func (r *Reconciler) apply(ctx context.Context, event stripe.Event, fn applyFunc) error {
	if event.Data == nil {
		return ErrInvalidPayload
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Printf("[Payment] Could not decode payment intent in %s: %v", event.ID, err)
		return ErrInvalidPayload
	}

	orderID := pi.Metadata["orderId"]
	if orderID == "" {
		log.Printf("[Payment] Event %s for intent %s carries no order id", event.Type, pi.ID)
		return nil
	}

	_, err := fn(ctx, orderID, pi.ID)
	if apperror.KindOf(err) == apperror.KindNotFound {
		log.Printf("[Payment] Event %s references unknown order %s", event.Type, orderID)
		return nil
	}
	return err
}
