package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

// ConfirmationMailer sends the receipt for a placed order.
type ConfirmationMailer interface {
	SendOrderConfirmation(to string, order *model.Order) error
}

// Handler consumes bus envelopes and sends order-confirmation email.
type Handler struct {
	mailer   ConfirmationMailer
	orders   store.OrderStore
	products store.ProductStore
}

// NewHandler creates a new notification handler
func NewHandler(mailer ConfirmationMailer, orders store.OrderStore, products store.ProductStore) *Handler {
	return &Handler{
		mailer:   mailer,
		orders:   orders,
		products: products,
	}
}

// HandleEvent processes an envelope from Kafka. Only newOrder is acted on.
// Orders deleted before the message arrives are skipped.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[Notifier] Failed to unmarshal envelope: %v", err)
		return err
	}

	if env.Type != EventNewOrder {
		return nil
	}

	var p NewOrderPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		log.Printf("[Notifier] Failed to unmarshal newOrder payload: %v", err)
		return err
	}
	return h.handleNewOrder(ctx, p)
}

func (h *Handler) handleNewOrder(ctx context.Context, p NewOrderPayload) error {
	log.Printf("[Notifier] Processing newOrder event for order %s", p.OrderID)

	o, err := h.orders.Get(ctx, p.OrderID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[Notifier] Order not found: %s", p.OrderID)
		return nil
	}
	if err != nil {
		log.Printf("[Notifier] Error getting order %s: %v", p.OrderID, err)
		return err
	}

	to := o.ContactEmail()
	if to == "" {
		log.Printf("[Notifier] No email address for order %s", o.ID)
		return nil
	}

	// Product names are best-effort; the email falls back to ids.
	if products, err := h.products.GetMany(ctx, o.ProductIDs()); err == nil {
		for i := range o.Items {
			if prod, ok := products[o.Items[i].ProductID]; ok {
				o.Items[i].Product = prod.Summary()
			}
		}
	} else {
		log.Printf("[Notifier] Failed to load products for order %s: %v", o.ID, err)
	}

	if err := h.mailer.SendOrderConfirmation(to, o); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", to, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", to, o.ID)
	return nil
}
