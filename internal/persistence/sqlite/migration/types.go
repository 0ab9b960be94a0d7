package migration

import "time"

// Migration is a single schema change with its tracking metadata.
type Migration struct {
	Version     string // sequential identifier, e.g. "001"
	Description string
	SQL         string
}

// AppliedMigration records a migration that has been executed.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
}

// Status describes the migration state of a database.
type Status struct {
	CurrentVersion string
	PendingCount   int
	Applied        []AppliedMigration
	Pending        []Migration
}
