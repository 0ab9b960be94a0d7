package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/event-horizon/internal/calendar"
)

// EventStore persists one JSON-serialized event collection per identity in
// the calendar_blobs table. The whole blob is rewritten on every mutation;
// there is no per-event persistence.
type EventStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewEventStore wraps the database handle.
func NewEventStore(db *sql.DB, logger *slog.Logger) *EventStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventStore{db: db, logger: logger}
}

// LoadEvents returns the stored collection for the identity. A missing row or
// a payload that fails to decode both act as an empty collection; decode
// failures are logged but never surfaced to the caller.
func (s *EventStore) LoadEvents(ctx context.Context, identity string) ([]calendar.Event, error) {
	if identity == "" {
		return []calendar.Event{}, nil
	}

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM calendar_blobs WHERE identity = ?`, identity,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []calendar.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load events for %q: %w", identity, err)
	}

	var events []calendar.Event
	if err := json.Unmarshal([]byte(payload), &events); err != nil {
		s.logger.WarnContext(ctx, "discarding unparsable event blob",
			"identity", identity,
			"error", err,
		)
		return []calendar.Event{}, nil
	}
	if events == nil {
		events = []calendar.Event{}
	}
	return events, nil
}

// ReplaceAllEvents overwrites the stored collection for the identity.
func (s *EventStore) ReplaceAllEvents(ctx context.Context, identity string, events []calendar.Event) error {
	if identity == "" {
		return fmt.Errorf("identity is required")
	}
	if events == nil {
		events = []calendar.Event{}
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to serialize events for %q: %w", identity, err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO calendar_blobs (identity, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(identity) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		identity, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return nil
}

// DeleteEvents discards the stored collection for the identity. Deleting a
// collection that never existed is a no-op.
func (s *EventStore) DeleteEvents(ctx context.Context, identity string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM calendar_blobs WHERE identity = ?`, identity)
	if err != nil {
		return mapSQLiteError(err)
	}
	return nil
}
