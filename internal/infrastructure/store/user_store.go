package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/example/ec-storefront/internal/model"
)

const userColumns = `id, name, email, password_hash, role, stripe_customer_id, created_at`

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.StripeCustomerID, u.CreatedAt)
	return translate(err)
}

func (s *PostgresUserStore) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, translate(err)
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	return u, translate(err)
}

func (s *PostgresUserStore) GetMany(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id::text = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

// List returns users holding any of roles, newest first. No roles means all users.
func (s *PostgresUserStore) List(ctx context.Context, roles ...string) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE cardinality($1::text[]) = 0 OR role = ANY($1)
		ORDER BY created_at DESC`, pq.Array(orEmpty(roles)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresUserStore) Count(ctx context.Context, roles ...string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE cardinality($1::text[]) = 0 OR role = ANY($1)`, pq.Array(orEmpty(roles))).Scan(&n)
	return n, err
}

func (s *PostgresUserStore) Delete(ctx context.Context, id string) error {
	return requireAffected(s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id))
}

func (s *PostgresUserStore) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	return requireAffected(s.db.ExecContext(ctx,
		`UPDATE users SET stripe_customer_id = $1 WHERE id = $2`, customerID, id))
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.StripeCustomerID, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
