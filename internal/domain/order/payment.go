package order

import (
	"context"
	"fmt"
	"log"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

// ApplyPaymentSucceeded records a settled payment. A pending order, or one
// cancelled by an earlier payment failure, moves to processing; later
// statuses are kept. Replays are no-ops.
func (s *Service) ApplyPaymentSucceeded(ctx context.Context, orderID, intentID string) (*model.Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == model.PaymentStatusPaid {
		log.Printf("[Order] Payment for order %s already recorded", o.ID)
		return o, nil
	}

	next := o.Status
	switch {
	case next == model.OrderStatusPending:
		next = model.OrderStatusProcessing
	case next == model.OrderStatusCancelled && o.PaymentStatus == model.PaymentStatusFailed:
		// A declined attempt cancelled it; the retry went through.
		next = model.OrderStatusProcessing
	}
	update := store.PaymentUpdate{
		PaymentStatus: model.PaymentStatusPaid,
		Status:        next,
		IntentID:      intentID,
	}
	if err := s.orders.UpdatePayment(ctx, o.ID, update); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	o.PaymentStatus = update.PaymentStatus
	o.Status = next
	if intentID != "" {
		o.StripePaymentIntentID = intentID
	}
	log.Printf("[Order] Payment succeeded for order %s (intent=%s)", o.ID, intentID)
	return o, nil
}

// ApplyPaymentFailed marks the payment failed and cancels a pending order.
// An order that is already paid is left alone.
func (s *Service) ApplyPaymentFailed(ctx context.Context, orderID, intentID string) (*model.Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == model.PaymentStatusPaid {
		log.Printf("[Order] Ignoring payment failure for paid order %s", o.ID)
		return o, nil
	}
	if o.PaymentStatus == model.PaymentStatusFailed {
		return o, nil
	}

	next := o.Status
	if next == model.OrderStatusPending {
		next = model.OrderStatusCancelled
	}
	update := store.PaymentUpdate{
		PaymentStatus: model.PaymentStatusFailed,
		Status:        next,
		IntentID:      intentID,
	}
	if err := s.orders.UpdatePayment(ctx, o.ID, update); err != nil {
		return nil, fmt.Errorf("record payment failure: %w", err)
	}

	o.PaymentStatus = update.PaymentStatus
	o.Status = next
	if intentID != "" {
		o.StripePaymentIntentID = intentID
	}
	log.Printf("[Order] Payment failed for order %s (intent=%s)", o.ID, intentID)
	return o, nil
}

// AttachPaymentIntent records the intent created for an order without
// changing its payment state.
func (s *Service) AttachPaymentIntent(ctx context.Context, orderID, intentID string) error {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	return s.orders.UpdatePayment(ctx, o.ID, store.PaymentUpdate{
		PaymentStatus: o.PaymentStatus,
		Status:        o.Status,
		IntentID:      intentID,
	})
}
