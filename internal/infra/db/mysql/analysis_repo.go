package mysql

import (
	"context"
	"database/sql"
	"encoding/json"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS brand_analyses (
  id          VARCHAR(64)  NOT NULL PRIMARY KEY,
  owner_id    VARCHAR(128) NOT NULL,
  owner_email VARCHAR(320) NOT NULL DEFAULT '',
  brand_name  VARCHAR(512) NOT NULL,
  input_json  JSON         NOT NULL,
  result_text MEDIUMTEXT   NOT NULL,
  created_at  DATETIME(6)  NOT NULL,
  KEY idx_brand_analyses_owner (owner_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *AnalysisRepository) Check(ctx context.Context) error { return r.db.PingContext(ctx) }

// Save inserts a record. Records are immutable, so a duplicate id is ignored.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT IGNORE INTO brand_analyses
  (id, owner_id, owner_email, brand_name, input_json, result_text, created_at)
VALUES (?,?,?,?,?,?,?);`
	input, err := json.Marshal(a.Input)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, a.ID, a.OwnerID, a.OwnerEmail, a.Input.BrandName, input, a.Result, a.CreatedAt.UTC())
	return err
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	const q = `
SELECT id, owner_id, owner_email, input_json, result_text, created_at
FROM brand_analyses
WHERE id=?
LIMIT 1;`
	a, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// ListByOwner returns the owner's records ordered by created_at desc
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
WHERE owner_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;`
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
