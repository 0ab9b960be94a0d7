// Package migration applies versioned schema migrations to the calendar
// database. Migrations are declared in code and run sequentially inside
// transactions; applied versions are tracked in the schema_migrations table
// so reruns are no-ops.
package migration
