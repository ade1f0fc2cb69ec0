package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/example/ec-storefront/internal/model"
)

const orderColumns = `id, user_id, customer_info, items, shipping_address, payment_method,
	payment_status, status, stripe_payment_intent_id, stripe_customer_id,
	total_amount, shipping_cost, tax, idempotency_key, created_at, updated_at`

// PostgresOrderStore keeps orders as single rows with JSONB for nested parts.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (s *PostgresOrderStore) Create(ctx context.Context, o *model.Order) error {
	customer, err := jsonValue(o.CustomerInfo)
	if err != nil {
		return err
	}
	items, err := jsonValue(storedItems(o.Items))
	if err != nil {
		return err
	}
	address, err := jsonValue(o.ShippingAddress)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		o.ID, nullString(o.UserID), customer, items, address, o.PaymentMethod,
		o.PaymentStatus, o.Status, o.StripePaymentIntentID, o.StripeCustomerID,
		o.TotalAmount, o.ShippingCost, o.Tax, nullString(o.IdempotencyKey), o.CreatedAt, o.UpdatedAt,
	)
	return translate(err)
}

func (s *PostgresOrderStore) Get(ctx context.Context, id string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	return o, translate(err)
}

func (s *PostgresOrderStore) GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
	o, err := scanOrder(row)
	return o, translate(err)
}

func (s *PostgresOrderStore) List(ctx context.Context) ([]*model.Order, error) {
	return s.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (s *PostgresOrderStore) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	return s.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresOrderStore) SetStatus(ctx context.Context, id string, status model.OrderStatus) error {
	return requireAffected(s.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id))
}

func (s *PostgresOrderStore) TransitionStatus(ctx context.Context, id string, from, to model.OrderStatus) (bool, error) {
	return affectedOne(s.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now().UTC(), id, from))
}

func (s *PostgresOrderStore) UpdatePayment(ctx context.Context, id string, u PaymentUpdate) error {
	return requireAffected(s.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $1, status = $2,
		    stripe_payment_intent_id = COALESCE(NULLIF($3, ''), stripe_payment_intent_id),
		    updated_at = $4
		WHERE id = $5`,
		u.PaymentStatus, u.Status, u.IntentID, time.Now().UTC(), id))
}

func (s *PostgresOrderStore) DeleteIfStatus(ctx context.Context, id string, statuses ...model.OrderStatus) (bool, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return affectedOne(s.db.ExecContext(ctx,
		`DELETE FROM orders WHERE id = $1 AND status = ANY($2)`, id, pq.Array(names)))
}

func (s *PostgresOrderStore) query(ctx context.Context, q string, args ...any) ([]*model.Order, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(row scanner) (*model.Order, error) {
	var (
		o                        model.Order
		userID, idempotencyKey   sql.NullString
		customer, items, address []byte
	)
	err := row.Scan(
		&o.ID, &userID, &customer, &items, &address, &o.PaymentMethod,
		&o.PaymentStatus, &o.Status, &o.StripePaymentIntentID, &o.StripeCustomerID,
		&o.TotalAmount, &o.ShippingCost, &o.Tax, &idempotencyKey, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.UserID = userID.String
	o.IdempotencyKey = idempotencyKey.String

	if err := json.Unmarshal(customer, &o.CustomerInfo); err != nil {
		return nil, fmt.Errorf("decode customer_info: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping_address: %w", err)
	}
	return &o, nil
}

// storedItems drops resolved display data before persisting.
func storedItems(items []model.OrderItem) []model.OrderItem {
	out := make([]model.OrderItem, len(items))
	for i, item := range items {
		item.Product = nil
		out[i] = item
	}
	return out
}
