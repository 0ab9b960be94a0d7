package persistence

import (
	"context"
	"time"

	"github.com/example/event-horizon/internal/calendar"
)

// EventStore persists the full event collection for each identity as one
// serialized blob. There is no incremental update path: every mutation is a
// whole-collection rewrite.
type EventStore interface {
	// LoadEvents returns the stored collection for the identity. A missing or
	// unparsable blob yields an empty collection, never an error.
	LoadEvents(ctx context.Context, identity string) ([]calendar.Event, error)
	// ReplaceAllEvents overwrites the stored collection for the identity.
	ReplaceAllEvents(ctx context.Context, identity string, events []calendar.Event) error
	// DeleteEvents discards the stored collection for the identity.
	DeleteEvents(ctx context.Context, identity string) error
}

// UserRepository stores identity records. Deleting a user cascades to their
// sessions and event collection.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, username string) (User, error)
	DeleteUser(ctx context.Context, username string) error
}

// SessionRepository stores issued login sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
