package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/example/ec-storefront/internal/model"
)

const productColumns = `id, name, description, price, brand, category_id, images, color_variants,
	simple_colors, sizes, stock, ratings_average, ratings_quantity, featured, is_new_product,
	created_at, updated_at`

type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Create(ctx context.Context, p *model.Product) error {
	variants, err := jsonValue(p.ColorVariants)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.ID, p.Name, p.Description, p.Price, p.Brand, nullString(p.CategoryID),
		pq.Array(orEmpty(p.Images)), variants, pq.Array(orEmpty(p.SimpleColors)), pq.Array(orEmpty(p.Sizes)),
		p.Stock, p.RatingsAverage, p.RatingsQuantity, p.Featured, p.IsNewProduct, p.CreatedAt, p.UpdatedAt,
	)
	return translate(err)
}

func (s *PostgresProductStore) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	return p, translate(err)
}

func (s *PostgresProductStore) GetMany(ctx context.Context, ids []string) (map[string]*model.Product, error) {
	products := make(map[string]*model.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id::text = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

// List returns one page of products matching f and the total match count.
func (s *PostgresProductStore) List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int, error) {
	where, args := productWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	q := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY ` + productOrder(f.Sort)
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset())
		q += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	products := make([]*model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (s *PostgresProductStore) Update(ctx context.Context, p *model.Product) error {
	variants, err := jsonValue(p.ColorVariants)
	if err != nil {
		return err
	}
	return requireAffected(s.db.ExecContext(ctx, `
		UPDATE products SET
			name = $1, description = $2, price = $3, brand = $4, category_id = $5,
			images = $6, color_variants = $7, simple_colors = $8, sizes = $9, stock = $10,
			featured = $11, is_new_product = $12, updated_at = $13
		WHERE id = $14`,
		p.Name, p.Description, p.Price, p.Brand, nullString(p.CategoryID),
		pq.Array(orEmpty(p.Images)), variants, pq.Array(orEmpty(p.SimpleColors)), pq.Array(orEmpty(p.Sizes)), p.Stock,
		p.Featured, p.IsNewProduct, p.UpdatedAt, p.ID,
	))
}

func (s *PostgresProductStore) Delete(ctx context.Context, id string) error {
	return requireAffected(s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id))
}

func (s *PostgresProductStore) UpdateRatings(ctx context.Context, id string, average float64, quantity int) error {
	return requireAffected(s.db.ExecContext(ctx,
		`UPDATE products SET ratings_average = $1, ratings_quantity = $2, updated_at = $3 WHERE id = $4`,
		average, quantity, time.Now().UTC(), id))
}

func (s *PostgresProductStore) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id::text, COUNT(*) FROM products
		WHERE category_id IS NOT NULL
		GROUP BY category_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func productWhere(f model.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryID != "" {
		conds = append(conds, "category_id::text = "+arg(f.CategoryID))
	}
	if f.Brand != "" {
		conds = append(conds, "lower(brand) = lower("+arg(f.Brand)+")")
	}
	if f.Color != "" {
		conds = append(conds, arg(strings.ToLower(f.Color))+" = ANY(simple_colors)")
	}
	if f.Size != "" {
		conds = append(conds, arg(f.Size)+" = ANY(sizes)")
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}
	if f.Featured != nil {
		conds = append(conds, "featured = "+arg(*f.Featured))
	}
	if f.IsNew != nil {
		conds = append(conds, "is_new_product = "+arg(*f.IsNew))
	}
	if f.Query != "" {
		p := arg("%" + escapeLike(f.Query) + "%")
		conds = append(conds, "(name ILIKE "+p+" OR description ILIKE "+p+" OR brand ILIKE "+p+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func productOrder(sort model.ProductSort) string {
	switch sort {
	case model.SortPriceLowHigh:
		return "price ASC, created_at DESC"
	case model.SortPriceHighLow:
		return "price DESC, created_at DESC"
	case model.SortRating:
		return "ratings_average DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanProduct(row scanner) (*model.Product, error) {
	var (
		p          model.Product
		categoryID sql.NullString
		variants   []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Brand, &categoryID,
		pq.Array(&p.Images), &variants, pq.Array(&p.SimpleColors), pq.Array(&p.Sizes),
		&p.Stock, &p.RatingsAverage, &p.RatingsQuantity, &p.Featured, &p.IsNewProduct,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CategoryID = categoryID.String
	if err := json.Unmarshal(variants, &p.ColorVariants); err != nil {
		return nil, fmt.Errorf("decode color_variants: %w", err)
	}
	return &p, nil
}
