package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/ec-storefront/internal/model"
)

const reviewSelect = `
	SELECT r.id, r.product_id, r.user_id, r.rating, r.title, r.comment, r.status, r.helpful,
	       r.admin_response, r.created_at, r.updated_at, COALESCE(u.name, ''), COALESCE(u.email, '')
	FROM reviews r LEFT JOIN users u ON u.id = r.user_id`

type PostgresReviewStore struct {
	db *sql.DB
}

func NewPostgresReviewStore(db *sql.DB) *PostgresReviewStore {
	return &PostgresReviewStore{db: db}
}

func (s *PostgresReviewStore) Create(ctx context.Context, r *model.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, title, comment, status, helpful, admin_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.ProductID, r.UserID, r.Rating, r.Title, r.Comment, r.Status, r.Helpful, r.AdminResponse, r.CreatedAt, r.UpdatedAt)
	return translate(err)
}

func (s *PostgresReviewStore) Get(ctx context.Context, id string) (*model.Review, error) {
	r, err := scanReview(s.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = $1`, id))
	return r, translate(err)
}

func (s *PostgresReviewStore) Update(ctx context.Context, r *model.Review) error {
	return requireAffected(s.db.ExecContext(ctx, `
		UPDATE reviews
		SET rating = $1, title = $2, comment = $3, status = $4, admin_response = $5, updated_at = $6
		WHERE id = $7`,
		r.Rating, r.Title, r.Comment, r.Status, r.AdminResponse, r.UpdatedAt, r.ID))
}

func (s *PostgresReviewStore) Delete(ctx context.Context, id string) error {
	return requireAffected(s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id))
}

// IncrementHelpful bumps the counter in place and returns the new value.
func (s *PostgresReviewStore) IncrementHelpful(ctx context.Context, id string) (int, error) {
	var helpful int
	err := s.db.QueryRowContext(ctx,
		`UPDATE reviews SET helpful = helpful + 1 WHERE id = $1 RETURNING helpful`, id).Scan(&helpful)
	return helpful, translate(err)
}

func (s *PostgresReviewStore) List(ctx context.Context, q model.ReviewQuery) ([]*model.Review, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.ProductID != "" {
		conds = append(conds, "r.product_id::text = "+arg(q.ProductID))
	}
	if q.Status != "" {
		conds = append(conds, "r.status = "+arg(q.Status))
	}
	if q.Rating > 0 {
		conds = append(conds, "r.rating = "+arg(q.Rating))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews r`+where, args...).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	query := reviewSelect + where + ` ORDER BY ` + reviewOrder(q.SortBy, q.Ascending)
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset())
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	reviews := make([]*model.Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, r)
	}
	return reviews, total, rows.Err()
}

func (s *PostgresReviewStore) Distribution(ctx context.Context, productID string, status model.ReviewStatus) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rating, COUNT(*) FROM reviews
		WHERE ($1 = '' OR product_id::text = $1) AND ($2 = '' OR status = $2)
		GROUP BY rating`, productID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, err
		}
		dist[rating] = n
	}
	return dist, rows.Err()
}

func (s *PostgresReviewStore) Overview(ctx context.Context) (*model.ReviewOverview, error) {
	var o model.ReviewOverview
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'approved'),
		       COUNT(*) FILTER (WHERE status = 'rejected'),
		       COALESCE(AVG(rating), 0)
		FROM reviews`).Scan(&o.Total, &o.Pending, &o.Approved, &o.Rejected, &o.AverageRating)
	if err != nil {
		return nil, err
	}
	dist, err := s.Distribution(ctx, "", model.ReviewStatusApproved)
	if err != nil {
		return nil, err
	}
	o.RatingDistribution = dist
	return &o, nil
}

func reviewOrder(sortBy string, ascending bool) string {
	column := "r.created_at"
	switch sortBy {
	case "rating":
		column = "r.rating"
	case "helpful":
		column = "r.helpful"
	}
	if ascending {
		return column + " ASC"
	}
	return column + " DESC"
}

func scanReview(row scanner) (*model.Review, error) {
	var (
		r           model.Review
		name, email string
	)
	err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title, &r.Comment, &r.Status, &r.Helpful,
		&r.AdminResponse, &r.CreatedAt, &r.UpdatedAt, &name, &email)
	if err != nil {
		return nil, err
	}
	if name != "" || email != "" {
		r.User = &model.UserSummary{ID: r.UserID, Name: name, Email: email}
	}
	return &r, nil
}
