package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS brand_analyses (
  id          TEXT PRIMARY KEY,
  owner_id    TEXT NOT NULL,
  owner_email TEXT NOT NULL DEFAULT '',
  brand_name  TEXT NOT NULL,
  input_json  JSONB NOT NULL,
  result_text TEXT NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_brand_analyses_owner ON brand_analyses (owner_id, created_at DESC);`

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *AnalysisRepository) Check(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO brand_analyses
  (id, owner_id, owner_email, brand_name, input_json, result_text, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO NOTHING;`
	input, err := json.Marshal(a.Input)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, a.ID, a.OwnerID, a.OwnerEmail, a.Input.BrandName, string(input), a.Result, a.CreatedAt)
	return err
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	const q = `
SELECT id, owner_id, owner_email, input_json, result_text, created_at
FROM brand_analyses
WHERE id=$1;`
	a, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *AnalysisRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	const q = `
SELECT id, owner_id, owner_email, input_json, result_text, created_at
FROM brand_analyses
WHERE owner_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Record, 0, limit)
	for rows.Next() {
		a, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanRecord(s interface{ Scan(...any) error }) (*domain.Record, error) {
	var (
		a     domain.Record
		input []byte
	)
	if err := s.Scan(&a.ID, &a.OwnerID, &a.OwnerEmail, &input, &a.Result, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(input, &a.Input); err != nil {
		return nil, fmt.Errorf("decode input of %s: %w", a.ID, err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
