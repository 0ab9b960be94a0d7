package migration

// All returns the declared migration sequence in execution order. The schema
// ships with the binary; there is no filesystem scanning.
func All() []Migration {
	return []Migration{
		{
			Version:     "001",
			Description: "create users table",
			SQL: `
CREATE TABLE IF NOT EXISTS users (
    username        TEXT PRIMARY KEY,
    first_name      TEXT NOT NULL DEFAULT '',
    last_name       TEXT NOT NULL DEFAULT '',
    middle_initial  TEXT NOT NULL DEFAULT '',
    email           TEXT NOT NULL DEFAULT '',
    phone_number    TEXT NOT NULL DEFAULT '',
    password_hash   TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);`,
		},
		{
			Version:     "002",
			Description: "create sessions table",
			SQL: `
CREATE TABLE IF NOT EXISTS sessions (
    token      TEXT PRIMARY KEY,
    username   TEXT NOT NULL,
    expires_at TEXT NOT NULL,
    created_at TEXT NOT NULL,
    revoked_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_username ON sessions(username);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);`,
		},
		{
			Version:     "003",
			Description: "create calendar blobs table",
			SQL: `
CREATE TABLE IF NOT EXISTS calendar_blobs (
    identity   TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`,
		},
	}
}
