package stats

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS usage_counters (
	category TEXT PRIMARY KEY,
	count    INTEGER NOT NULL DEFAULT 0
)`

const incrementSQL = `INSERT INTO usage_counters (category, count) VALUES (?, 1)
ON CONFLICT(category) DO UPDATE SET count = count + 1`

// SQLite is a Sink backed by a usage_counters table, so counts survive
// restarts.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens dsn with the pure-Go sqlite driver and creates the
// counters table when missing.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open stats db: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table usage_counters: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Increment(ctx context.Context, category string) error {
	if category == "" {
		return ErrEmptyCategory
	}

	if _, err := s.db.ExecContext(ctx, incrementSQL, category); err != nil {
		return fmt.Errorf("increment %s: %w", category, err)
	}

	return nil
}

func (s *SQLite) Counts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, count FROM usage_counters`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}

	for rows.Next() {
		var (
			category string
			count    int64
		)

		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}

		out[category] = count
	}

	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
