package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Executor runs individual migrations against a database and maintains the
// version tracking table.
type Executor struct {
	db *sql.DB
}

// NewExecutor wraps the provided database handle.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// InitializeVersionTable creates the schema_migrations table if needed.
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	_, err := e.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version           TEXT PRIMARY KEY,
    applied_at        TEXT NOT NULL,
    execution_time_ms INTEGER NOT NULL DEFAULT 0
);`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// ExecuteMigration runs one migration's SQL inside a transaction and records
// it on success.
func (e *Executor) ExecuteMigration(ctx context.Context, m Migration) error {
	started := time.Now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return NewError(m.Version, "begin transaction", err)
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewError(m.Version, "execute", fmt.Errorf("%w (rollback error: %v)", err, rbErr))
		}
		return NewError(m.Version, "execute", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
	}

	elapsed := time.Since(started)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at, execution_time_ms) VALUES (?, ?, ?)`,
		m.Version, time.Now().UTC().Format(time.RFC3339), elapsed.Milliseconds(),
	); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewError(m.Version, "record", fmt.Errorf("%w (rollback error: %v)", err, rbErr))
		}
		return NewError(m.Version, "record", err)
	}

	if err := tx.Commit(); err != nil {
		return NewError(m.Version, "commit", err)
	}
	return nil
}

// AppliedVersions returns the applied migrations ordered by version.
func (e *Executor) AppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT version, applied_at, execution_time_ms FROM schema_migrations ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			record    AppliedMigration
			appliedAt string
			elapsedMS int64
		)
		if err := rows.Scan(&record.Version, &appliedAt, &elapsedMS); err != nil {
			return nil, fmt.Errorf("failed to scan applied migration: %w", err)
		}
		if record.AppliedAt, err = time.Parse(time.RFC3339, appliedAt); err != nil {
			return nil, fmt.Errorf("failed to parse applied_at: %w", err)
		}
		record.ExecutionTime = time.Duration(elapsedMS) * time.Millisecond
		applied = append(applied, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return applied, nil
}
