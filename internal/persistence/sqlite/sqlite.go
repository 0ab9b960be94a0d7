package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/event-horizon/internal/persistence"
	"github.com/example/event-horizon/internal/persistence/sqlite/migration"
	_ "modernc.org/sqlite"
)

// Storage bundles the SQLite-backed repository implementations behind one
// database handle. It satisfies persistence.EventStore, UserRepository and
// SessionRepository.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger

	*EventStore
	*UserRepository
	*SessionRepository
}

// Open connects to the SQLite database at dsn.
func Open(dsn string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// modernc.org/sqlite serialises writes itself; a single connection avoids
	// SQLITE_BUSY churn under the default journal mode.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Storage{
		db:                db,
		logger:            logger,
		EventStore:        NewEventStore(db, logger),
		UserRepository:    NewUserRepository(db),
		SessionRepository: NewSessionRepository(db),
	}, nil
}

// Migrate applies pending schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	return migration.NewManager(s.db, migration.All(), s.logger).Run(ctx)
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for tests.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// mapSQLiteError translates driver errors into persistence sentinels.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(msg, "constraint failed"):
		return persistence.ErrConstraintViolation
	}
	return err
}
