package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS brand_analyses (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    owner_email TEXT NOT NULL DEFAULT '',
    brand_name  TEXT NOT NULL,
    input_json  TEXT NOT NULL,
    result_text TEXT NOT NULL,
    created_at  INTEGER NOT NULL -- unix nanoseconds
);
CREATE INDEX IF NOT EXISTS idx_brand_analyses_owner ON brand_analyses (owner_id, created_at DESC);
`

// Open opens (and creates if needed) a SQLite database file. ":memory:" works for tests.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: SQLite serialises writers anyway, and ":memory:" is per-connection
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) Check(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	input, err := json.Marshal(a.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}
	const q = `
INSERT INTO brand_analyses (id, owner_id, owner_email, brand_name, input_json, result_text, created_at)
VALUES (?,?,?,?,?,?,?)
ON CONFLICT(id) DO NOTHING;`
	_, err = r.db.ExecContext(ctx, q, a.ID, a.OwnerID, a.OwnerEmail, a.Input.BrandName, string(input), a.Result, a.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	const q = `
SELECT id, owner_id, owner_email, input_json, result_text, created_at
FROM brand_analyses WHERE id = ?;`
	a, err := scan(r.db.QueryRowContext(ctx, q, id))
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
WHERE owner_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Record, 0, limit)
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*domain.Record, error) {
	var (
		a       domain.Record
		input   string
		created int64
	)
	if err := s.Scan(&a.ID, &a.OwnerID, &a.OwnerEmail, &input, &a.Result, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(input), &a.Input); err != nil {
		return nil, fmt.Errorf("failed to decode input of %s: %w", a.ID, err)
	}
	a.CreatedAt = time.Unix(0, created).UTC()
	return &a, nil
}
