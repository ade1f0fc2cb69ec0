package store

import (
	"context"
	"database/sql"

	"github.com/example/ec-storefront/internal/model"
)

const categoryColumns = `id, name, slug, description, image, parent_id, featured, created_at, updated_at`

type PostgresCategoryStore struct {
	db *sql.DB
}

func NewPostgresCategoryStore(db *sql.DB) *PostgresCategoryStore {
	return &PostgresCategoryStore{db: db}
}

func (s *PostgresCategoryStore) Create(ctx context.Context, c *model.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.Slug, c.Description, c.Image, nullString(c.ParentID), c.Featured, c.CreatedAt, c.UpdatedAt)
	return translate(err)
}

func (s *PostgresCategoryStore) Get(ctx context.Context, id string) (*model.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	return c, translate(err)
}

func (s *PostgresCategoryStore) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug))
	return c, translate(err)
}

func (s *PostgresCategoryStore) List(ctx context.Context) ([]*model.Category, error) {
	return s.query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
}

func (s *PostgresCategoryStore) ListFeatured(ctx context.Context, limit int) ([]*model.Category, error) {
	return s.query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE featured ORDER BY name LIMIT $1`, limit)
}

func (s *PostgresCategoryStore) Update(ctx context.Context, c *model.Category) error {
	return requireAffected(s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, image = $4, parent_id = $5, featured = $6, updated_at = $7
		WHERE id = $8`,
		c.Name, c.Slug, c.Description, c.Image, nullString(c.ParentID), c.Featured, c.UpdatedAt, c.ID))
}

func (s *PostgresCategoryStore) Delete(ctx context.Context, id string) error {
	return requireAffected(s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id))
}

func (s *PostgresCategoryStore) query(ctx context.Context, q string, args ...any) ([]*model.Category, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanCategory(row scanner) (*model.Category, error) {
	var (
		c        model.Category
		parentID sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &parentID, &c.Featured, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ParentID = parentID.String
	return &c, nil
}
