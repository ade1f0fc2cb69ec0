package store

import (
	"context"
	"database/sql"

	"github.com/example/ec-storefront/internal/model"
)

type PostgresSettingStore struct {
	db *sql.DB
}

func NewPostgresSettingStore(db *sql.DB) *PostgresSettingStore {
	return &PostgresSettingStore{db: db}
}

func (s *PostgresSettingStore) List(ctx context.Context) ([]*model.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, description, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]*model.Setting, 0)
	for rows.Next() {
		var st model.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.Description, &st.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, &st)
	}
	return settings, rows.Err()
}

func (s *PostgresSettingStore) Get(ctx context.Context, key string) (*model.Setting, error) {
	var st model.Setting
	err := s.db.QueryRowContext(ctx,
		`SELECT key, value, description, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&st.Key, &st.Value, &st.Description, &st.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

// Upsert writes the setting, keeping the stored description when none is given.
func (s *PostgresSettingStore) Upsert(ctx context.Context, st *model.Setting) (*model.Setting, error) {
	var out model.Setting
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO settings (key, value, description, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = COALESCE(NULLIF(EXCLUDED.description, ''), settings.description),
			updated_at = EXCLUDED.updated_at
		RETURNING key, value, description, updated_at`,
		st.Key, []byte(st.Value), st.Description, st.UpdatedAt,
	).Scan(&out.Key, &out.Value, &out.Description, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
