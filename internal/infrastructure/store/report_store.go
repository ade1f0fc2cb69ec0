package store

import (
	"context"
	"database/sql"

	"github.com/example/ec-storefront/internal/model"
)

// PostgresReportStore answers aggregate queries directly in SQL.
type PostgresReportStore struct {
	db     *sql.DB
	orders *PostgresOrderStore
}

func NewPostgresReportStore(db *sql.DB) *PostgresReportStore {
	return &PostgresReportStore{db: db, orders: NewPostgresOrderStore(db)}
}

func (s *PostgresReportStore) TotalSales(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders`).Scan(&total)
	return total, err
}

func (s *PostgresReportStore) CountOrders(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func (s *PostgresReportStore) RecentOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	return s.orders.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
}

// TopProducts ranks products by quantity sold across every line item.
// Products that never sold have no line items and so never appear.
func (s *PostgresReportStore) TopProducts(ctx context.Context, limit int) ([]model.ProductSales, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item->>'product' AS product_id,
		       SUM((item->>'quantity')::int) AS sold,
		       SUM((item->>'price')::numeric * (item->>'quantity')::int) AS revenue
		FROM orders, jsonb_array_elements(items) AS item
		GROUP BY item->>'product'
		ORDER BY sold DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]model.ProductSales, 0, limit)
	for rows.Next() {
		var ps model.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Sold, &ps.Revenue); err != nil {
			return nil, err
		}
		sales = append(sales, ps)
	}
	return sales, rows.Err()
}

func (s *PostgresReportStore) ApprovedRatingStats(ctx context.Context, productID string) (model.RatingStats, error) {
	var st model.RatingStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM reviews WHERE product_id::text = $1 AND status = 'approved'`, productID,
	).Scan(&st.Count, &st.Average)
	return st, err
}

func (s *PostgresReportStore) CategoryFacets(ctx context.Context) ([]model.CategoryFacet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.image, COUNT(p.id)
		FROM categories c LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facets := make([]model.CategoryFacet, 0)
	for rows.Next() {
		var f model.CategoryFacet
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Image, &f.Count); err != nil {
			return nil, err
		}
		facets = append(facets, f)
	}
	return facets, rows.Err()
}

func (s *PostgresReportStore) ColorFacets(ctx context.Context) ([]model.FacetCount, error) {
	return s.facets(ctx, `
		SELECT color, COUNT(*) FROM products, unnest(simple_colors) AS color
		GROUP BY color ORDER BY color`)
}

func (s *PostgresReportStore) SizeFacets(ctx context.Context) ([]model.FacetCount, error) {
	return s.facets(ctx, `
		SELECT size, COUNT(*) FROM products, unnest(sizes) AS size
		GROUP BY size ORDER BY size`)
}

func (s *PostgresReportStore) BrandFacets(ctx context.Context) ([]model.FacetCount, error) {
	return s.facets(ctx, `
		SELECT brand, COUNT(*) FROM products WHERE brand <> ''
		GROUP BY brand ORDER BY brand`)
}

func (s *PostgresReportStore) PriceBuckets(ctx context.Context) (model.PriceBucketCounts, error) {
	var b model.PriceBucketCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE price < 50),
		       COUNT(*) FILTER (WHERE price >= 50 AND price < 100),
		       COUNT(*) FILTER (WHERE price >= 100 AND price < 200),
		       COUNT(*) FILTER (WHERE price >= 200)
		FROM products`).Scan(&b.Under50, &b.From50To100, &b.From100To200, &b.Over200)
	return b, err
}

func (s *PostgresReportStore) facets(ctx context.Context, q string) ([]model.FacetCount, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facets := make([]model.FacetCount, 0)
	for rows.Next() {
		var f model.FacetCount
		if err := rows.Scan(&f.Value, &f.Count); err != nil {
			return nil, err
		}
		facets = append(facets, f)
	}
	return facets, rows.Err()
}
