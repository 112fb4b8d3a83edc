// Package store provides the Postgres-backed record store and the
// Redis read-through cache in front of it, split across separate files
// so the relational store and the cache manager each own their own
// connection lifecycle.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"metacore/domain"
)

// recordRow is the flat row shape backing the records table; Result is
// stored as a single JSONB blob since its internal shape (four
// variable-length series) doesn't warrant its own relational schema.
type recordRow struct {
	TestID          string    `db:"test_id"`
	AlgorithmVersion string   `db:"algorithm_version"`
	ResultJSON      []byte    `db:"result_json"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Postgres is the Postgres-backed record store.
type Postgres struct {
	db *sqlx.DB
}

// Connect opens a pooled connection to dsn using the pgx stdlib driver.
func Connect(dsn string) (*Postgres, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an already-open sqlx.DB, for tests that inject
// a sqlmock connection in place of a live Postgres instance.
func NewPostgresFromDB(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Migrate creates the records table if it does not already exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS metacore_records (
	test_id           TEXT PRIMARY KEY,
	algorithm_version TEXT NOT NULL,
	result_json       JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("migrate records table: %w", err)
	}
	return nil
}

// Upsert writes rec in a single commit, keyed by TestID.
func (p *Postgres) Upsert(ctx context.Context, rec domain.Record) error {
	payload, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
INSERT INTO metacore_records (test_id, algorithm_version, result_json, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (test_id) DO UPDATE SET
	algorithm_version = EXCLUDED.algorithm_version,
	result_json       = EXCLUDED.result_json,
	updated_at        = EXCLUDED.updated_at`,
		rec.TestID, rec.Result.AlgorithmVersion, payload, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.TestID, err)
	}
	return nil
}

// Get returns the stored record, or (zero, false, nil) when absent.
func (p *Postgres) Get(ctx context.Context, testID string) (domain.Record, bool, error) {
	var row recordRow
	err := p.db.GetContext(ctx, &row, `
SELECT test_id, algorithm_version, result_json, created_at, updated_at
FROM metacore_records WHERE test_id = $1`, testID)
	if err == sql.ErrNoRows {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("get record %s: %w", testID, err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(row.ResultJSON, &result); err != nil {
		return domain.Record{}, false, fmt.Errorf("unmarshal result %s: %w", testID, err)
	}
	return domain.Record{
		TestID:    row.TestID,
		Result:    result,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

// Delete removes the record for testID, if present; a no-op when the
// key doesn't exist.
func (p *Postgres) Delete(ctx context.Context, testID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM metacore_records WHERE test_id = $1`, testID)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", testID, err)
	}
	return nil
}
