// Package order owns the order lifecycle: checkout, status changes,
// customer cancellation and deletion eligibility.
package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/validation"
)

// CancelWindow is how long after placement a customer may cancel.
const CancelWindow = time.Hour

// StatusMailer sends the status-change email.
type StatusMailer interface {
	SendOrderStatus(to, orderID string, status model.OrderStatus) error
}

type Service struct {
	orders   store.OrderStore
	users    store.UserStore
	products store.ProductStore
	notifier notification.Notifier
	mailer   StatusMailer
	now      func() time.Time
}

// NewService wires the order lifecycle. notifier and mailer may be nil.
func NewService(orders store.OrderStore, users store.UserStore, products store.ProductStore, notifier notification.Notifier, mailer StatusMailer) *Service {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Service{
		orders:   orders,
		users:    users,
		products: products,
		notifier: notifier,
		mailer:   mailer,
		now:      time.Now,
	}
}

// SetClock replaces the wall clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create places an order for userID, or for a guest when userID is empty.
// The returned bool is false when an earlier order with the same
// idempotency key was returned instead of creating a new one.
func (s *Service) Create(ctx context.Context, in CreateInput, userID string) (*model.Order, bool, error) {
	if in.IdempotencyKey != "" {
		existing, err := s.orders.GetByIdempotencyKey(ctx, in.IdempotencyKey)
		if err == nil {
			log.Printf("[Order] Replaying order %s for idempotency key", existing.ID)
			return s.resolve(ctx, existing), false, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, false, err
		}
	}

	var user *model.User
	if userID != "" {
		u, err := s.users.Get(ctx, userID)
		switch {
		case err == nil:
			user = u
		case errors.Is(err, store.ErrNotFound):
			log.Printf("[Order] Token user %s no longer exists, checking out as guest", userID)
		default:
			return nil, false, err
		}
	}

	if err := s.validate(&in, user); err != nil {
		return nil, false, err
	}

	now := s.now().UTC()
	o := &model.Order{
		ID: uuid.NewString(),
		CustomerInfo: model.CustomerInfo{
			Name:  in.CustomerInfo.Name,
			Email: in.CustomerInfo.Email,
			Phone: in.CustomerInfo.Phone,
		},
		Items:           in.items(),
		ShippingAddress: in.address(),
		PaymentMethod:   in.paymentMethod(),
		PaymentStatus:   model.PaymentStatusPending,
		Status:          model.OrderStatusPending,
		TotalAmount:     *in.TotalAmount,
		ShippingCost:    in.ShippingCost,
		Tax:             in.Tax,
		IdempotencyKey:  in.IdempotencyKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if user != nil {
		o.UserID = user.ID
	}

	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, store.ErrDuplicate) && in.IdempotencyKey != "" {
			// Lost a race with a concurrent retry carrying the same key.
			existing, getErr := s.orders.GetByIdempotencyKey(ctx, in.IdempotencyKey)
			if getErr == nil {
				return s.resolve(ctx, existing), false, nil
			}
		}
		return nil, false, fmt.Errorf("create order: %w", err)
	}
	log.Printf("[Order] Created order %s (user=%q, total=%.2f)", o.ID, o.UserID, o.TotalAmount)

	o = s.resolve(ctx, o)
	notification.Send(ctx, s.notifier, "Order", notification.EventNewOrder, notification.NewOrderPayload{
		OrderID:     o.ID,
		Customer:    o.CustomerName(),
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
	})
	return o, true, nil
}

// validate checks the checkout shape. Authenticated shoppers may omit
// contact details; they are taken from the account.
func (s *Service) validate(in *CreateInput, user *model.User) error {
	if user == nil {
		return validation.Struct(*in)
	}

	if in.CustomerInfo.Name == "" {
		in.CustomerInfo.Name = user.Name
	}
	if in.CustomerInfo.Email == "" {
		in.CustomerInfo.Email = user.Email
	}
	if err := validation.StructExcept(*in, "CustomerInfo"); err != nil {
		return err
	}
	if in.CustomerInfo.Email != "" {
		return validation.Var("customerInfo.email", in.CustomerInfo.Email, "email")
	}
	return nil
}

// Get returns an order the subject may read.
func (s *Service) Get(ctx context.Context, id string, by auth.Subject) (*model.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(by, auth.ActionOrderRead, o); err != nil {
		return nil, err
	}
	return s.resolve(ctx, o), nil
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, orders), nil
}

// ListAll returns every order, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*model.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, orders), nil
}

// UpdateStatus is the permissive operator path: any status may be set
// from any other. The customer is emailed on a best-effort basis.
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := s.orders.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	o = s.resolve(ctx, o)
	log.Printf("[Order] Order %s moved to %s", o.ID, status)

	notification.Send(ctx, s.notifier, "Order", notification.EventOrderStatusUpdated, notification.OrderStatusPayload{
		OrderID: o.ID,
		Status:  string(status),
	})
	s.sendStatusEmail(o)
	return o, nil
}

func (s *Service) sendStatusEmail(o *model.Order) {
	if s.mailer == nil {
		return
	}
	to := o.ContactEmail()
	if to == "" {
		log.Printf("[Order] No email address for order %s", o.ID)
		return
	}
	if err := s.mailer.SendOrderStatus(to, o.ID, o.Status); err != nil {
		log.Printf("[Order] Failed to send status email for order %s: %v", o.ID, err)
	}
}

// Cancel lets the owner cancel a pending order within CancelWindow of
// placement.
func (s *Service) Cancel(ctx context.Context, id string, by auth.Subject) (*model.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(by, auth.ActionOrderCancel, o); err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusPending {
		return nil, notCancellable(o.Status)
	}
	if s.now().Sub(o.CreatedAt) > CancelWindow {
		return nil, ErrCancelWindow
	}

	ok, err := s.orders.TransitionStatus(ctx, id, model.OrderStatusPending, model.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if !ok {
		// Changed between the read and the conditional write.
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, notCancellable(current.Status)
	}

	o.Status = model.OrderStatusCancelled
	log.Printf("[Order] Order %s cancelled by owner", o.ID)
	notification.Send(ctx, s.notifier, "Order", notification.EventOrderStatusUpdated, notification.OrderStatusPayload{
		OrderID: o.ID,
		Status:  string(o.Status),
	})
	return s.resolve(ctx, o), nil
}

func notCancellable(status model.OrderStatus) error {
	return apperror.Errorf(ErrNotCancellable,
		"Cannot cancel order with status: %s. Only pending orders can be cancelled.", status)
}

// DeleteByUser removes one of the requester's cancelled or delivered orders.
func (s *Service) DeleteByUser(ctx context.Context, id string, by auth.Subject) error {
	o, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(by, auth.ActionOrderDelete, o); err != nil {
		return err
	}
	if o.Status != model.OrderStatusCancelled && o.Status != model.OrderStatusDelivered {
		return ErrNotDeletable
	}

	ok, err := s.orders.DeleteIfStatus(ctx, id, model.OrderStatusCancelled, model.OrderStatusDelivered)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if !ok {
		return ErrNotDeletable
	}
	log.Printf("[Order] Order %s deleted by owner", id)
	return nil
}

// DeleteByAdmin removes a cancelled order. Delivered orders are kept as
// sales history.
func (s *Service) DeleteByAdmin(ctx context.Context, id string) error {
	o, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if o.Status != model.OrderStatusCancelled {
		return ErrAdminNotDeletable
	}

	ok, err := s.orders.DeleteIfStatus(ctx, id, model.OrderStatusCancelled)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if !ok {
		return ErrAdminNotDeletable
	}
	log.Printf("[Order] Order %s deleted by admin", id)
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", id, err)
	}
	return o, nil
}

func authorize(by auth.Subject, action auth.Action, o *model.Order) error {
	err := auth.Authorize(by, action, auth.Resource{OwnerID: o.UserID})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrUnauthenticated):
		return ErrAuthRequired
	default:
		return ErrNotOrderOwner
	}
}
