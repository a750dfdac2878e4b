// File path: internal/store/store.go

// Package store persists data sources, query history, alerts and alert
// executions in a local SQLite catalog. It is a collaborator of the analysis
// core, not part of it: nothing here influences pipeline semantics.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store wraps a pooled sqlx.DB connection to the SQLite catalog.
type Store struct {
	db *sqlx.DB
}

// Open constructs a Store backed by the SQLite database at the provided path.
// The schema is migrated automatically on first use.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", abs)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate catalog: %w", err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS data_sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		source_type TEXT NOT NULL,
		descriptor TEXT NOT NULL,
		schema_json TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS queries (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		intent TEXT,
		entities TEXT,
		data_source_id TEXT,
		generated_sql TEXT,
		results TEXT,
		status TEXT NOT NULL,
		error_message TEXT,
		execution_ms INTEGER,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		alert_type TEXT NOT NULL,
		condition_json TEXT NOT NULL,
		data_source_id TEXT NOT NULL,
		channels TEXT NOT NULL,
		recipient TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		last_checked_at TIMESTAMP,
		last_triggered_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alert_executions (
		id TEXT PRIMARY KEY,
		alert_id TEXT NOT NULL,
		status TEXT NOT NULL,
		observed_value REAL,
		message TEXT,
		error_message TEXT,
		notification_sent INTEGER NOT NULL DEFAULT 0,
		executed_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_queries_created ON queries(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_executions_alert ON alert_executions(alert_id, executed_at)`,
}
