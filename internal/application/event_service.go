package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/event-horizon/internal/calendar"
)

// EventStore captures the persistence operations needed by the event service.
// Each identity owns one serialized collection; mutations rewrite it whole.
type EventStore interface {
	LoadEvents(ctx context.Context, identity string) ([]calendar.Event, error)
	ReplaceAllEvents(ctx context.Context, identity string, events []calendar.Event) error
	DeleteEvents(ctx context.Context, identity string) error
}

// EventService orchestrates draft normalization and collection rewrites for
// the per-identity event collections.
type EventService struct {
	store       EventStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService wires dependencies for the event service.
func NewEventService(store EventStore, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(store, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an EventService with a specified logger.
func NewEventServiceWithLogger(store EventStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		store:       store,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

func (s *EventService) guard(principal Principal) (string, error) {
	if s == nil {
		return "", fmt.Errorf("EventService is nil")
	}
	if s.store == nil {
		return "", fmt.Errorf("event store not configured")
	}
	identity := strings.TrimSpace(principal.Username)
	if identity == "" {
		return "", ErrUnauthorized
	}
	return identity, nil
}

// ListEvents returns the full collection for the principal's identity. A
// missing or unreadable collection is an empty one, never an error.
func (s *EventService) ListEvents(ctx context.Context, principal Principal) ([]calendar.Event, error) {
	identity, err := s.guard(principal)
	if err != nil {
		return nil, err
	}

	events, err := s.store.LoadEvents(ctx, identity)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// EventsOn returns the agenda for a single calendar day, ordered by start
// time with stable ties.
func (s *EventService) EventsOn(ctx context.Context, principal Principal, date time.Time) ([]calendar.Event, error) {
	events, err := s.ListEvents(ctx, principal)
	if err != nil {
		return nil, err
	}
	return calendar.EventsOn(date, events), nil
}

// MonthMarkers returns the per-day decoration data for a month grid.
func (s *EventService) MonthMarkers(ctx context.Context, principal Principal, year int, month time.Month, loc *time.Location) (map[int]calendar.DayMarker, error) {
	events, err := s.ListEvents(ctx, principal)
	if err != nil {
		return nil, err
	}
	return calendar.MonthMarkers(year, month, loc, events), nil
}

// CreateEvent normalizes the draft and appends the resulting event to the
// principal's collection. A draft without an identifier receives a fresh one.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (event calendar.Event, err error) {
	var identity string
	identity, err = s.guard(params.Principal)
	if err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent", "identity", identity)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	draft := params.Draft
	if strings.TrimSpace(draft.ID) == "" {
		draft.ID = s.idGenerator()
	}

	event, err = normalizeDraft(draft)
	if err != nil {
		return
	}

	var events []calendar.Event
	events, err = s.store.LoadEvents(ctx, identity)
	if err != nil {
		return
	}
	for _, existing := range events {
		if existing.ID == event.ID {
			err = ErrAlreadyExists
			return
		}
	}

	events = append(events, event)
	err = s.store.ReplaceAllEvents(ctx, identity, events)
	return
}

// UpdateEvent normalizes the draft and replaces the stored event with the
// matching identifier. Updating an event that no longer exists is ErrNotFound.
func (s *EventService) UpdateEvent(ctx context.Context, params UpdateEventParams) (event calendar.Event, err error) {
	var identity string
	identity, err = s.guard(params.Principal)
	if err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateEvent", "identity", identity, "event_id", params.EventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	draft := params.Draft
	draft.ID = strings.TrimSpace(params.EventID)

	event, err = normalizeDraft(draft)
	if err != nil {
		return
	}

	var events []calendar.Event
	events, err = s.store.LoadEvents(ctx, identity)
	if err != nil {
		return
	}

	replaced := false
	for i := range events {
		if events[i].ID == event.ID {
			events[i] = event
			replaced = true
			break
		}
	}
	if !replaced {
		err = ErrNotFound
		return
	}

	err = s.store.ReplaceAllEvents(ctx, identity, events)
	return
}

// DeleteEvent removes the event with the given identifier. Removing an absent
// identifier is a silent no-op: the collection is already in the desired state.
func (s *EventService) DeleteEvent(ctx context.Context, principal Principal, eventID string) error {
	identity, err := s.guard(principal)
	if err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "DeleteEvent", "identity", identity, "event_id", eventID)

	events, err := s.store.LoadEvents(ctx, identity)
	if err != nil {
		return err
	}

	remaining := events[:0]
	for _, event := range events {
		if event.ID == eventID {
			continue
		}
		remaining = append(remaining, event)
	}
	if len(remaining) == len(events) {
		logger.InfoContext(ctx, "event already absent")
		return nil
	}

	if err := s.store.ReplaceAllEvents(ctx, identity, remaining); err != nil {
		logger.ErrorContext(ctx, "event removal failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "event removed")
	return nil
}

// ClearEvents discards the principal's whole collection.
func (s *EventService) ClearEvents(ctx context.Context, principal Principal) error {
	identity, err := s.guard(principal)
	if err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "ClearEvents", "identity", identity)
	if err := s.store.DeleteEvents(ctx, identity); err != nil {
		logger.ErrorContext(ctx, "event collection clear failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "event collection cleared")
	return nil
}

// normalizeDraft runs draft normalization and converts validation failures to
// the application's field error shape.
func normalizeDraft(draft calendar.Draft) (calendar.Event, error) {
	event, err := draft.Normalize()
	if err != nil {
		var cErr *calendar.ValidationError
		if errors.As(err, &cErr) {
			vErr := &ValidationError{}
			for field, msg := range cErr.Fields {
				vErr.add(field, msg)
			}
			return calendar.Event{}, vErr
		}
		return calendar.Event{}, err
	}
	return event, nil
}
