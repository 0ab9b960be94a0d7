package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Manager orchestrates the migration run: initialize tracking, diff declared
// against applied, execute pending migrations in order.
type Manager struct {
	executor   *Executor
	migrations []Migration
	logger     *slog.Logger
}

// NewManager builds a manager over the declared migration sequence.
func NewManager(db *sql.DB, migrations []Migration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		executor:   NewExecutor(db),
		migrations: migrations,
		logger:     logger,
	}
}

// Run executes all pending migrations sequentially.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}

	if len(status.Pending) == 0 {
		m.logger.InfoContext(ctx, "schema up to date", "version", status.CurrentVersion)
		return nil
	}

	for _, pending := range status.Pending {
		m.logger.InfoContext(ctx, "applying migration",
			"version", pending.Version,
			"description", pending.Description,
		)
		if err := m.executor.ExecuteMigration(ctx, pending); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", pending.Version, "error", err)
			return err
		}
	}

	m.logger.InfoContext(ctx, "migrations applied", "count", len(status.Pending))
	return nil
}

// Status reports the applied and pending migrations.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, fmt.Errorf("failed to initialize version table: %w", err)
	}

	applied, err := m.executor.AppliedVersions(ctx)
	if err != nil {
		return Status{}, err
	}

	appliedSet := make(map[string]struct{}, len(applied))
	for _, record := range applied {
		appliedSet[record.Version] = struct{}{}
	}

	status := Status{Applied: applied}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}

	for _, declared := range m.migrations {
		if _, ok := appliedSet[declared.Version]; ok {
			continue
		}
		// Applied versions must form a prefix of the declared sequence.
		if declared.Version < status.CurrentVersion {
			return Status{}, NewError(declared.Version, "order check", ErrVersionConflict)
		}
		status.Pending = append(status.Pending, declared)
	}
	status.PendingCount = len(status.Pending)

	return status, nil
}
