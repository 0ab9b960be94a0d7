// Package testfixtures provides deterministic clocks, identifier sequences,
// and domain fixtures shared by tests across packages.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/event-horizon/internal/calendar"
	"github.com/example/event-horizon/internal/persistence"
)

var (
	eventCounter   uint64
	userCounter    uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Event fixtures -----------------------------

// EventOption configures a generated event fixture.
type EventOption func(*calendar.Event)

// NewEventFixture returns a deterministic one-hour event with optional
// overrides. Successive calls shift the start time by a day so fixtures do
// not pile onto the same calendar day unless asked to.
func NewEventFixture(opts ...EventOption) calendar.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.Add(time.Duration(idx-1) * 24 * time.Hour)
	event := calendar.Event{
		ID:        fmt.Sprintf("event-%03d", idx),
		Title:     fmt.Sprintf("Event %03d", idx),
		EventType: calendar.EventTypePersonal,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Kind:      calendar.KindMeeting,
		Priority:  calendar.PriorityNotUrgentImportant,
		Color:     calendar.DefaultColor,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventID overrides the generated identifier.
func WithEventID(id string) EventOption {
	return func(e *calendar.Event) {
		e.ID = id
	}
}

// WithEventTitle overrides the generated title.
func WithEventTitle(title string) EventOption {
	return func(e *calendar.Event) {
		e.Title = title
	}
}

// WithEventCategory overrides the event category.
func WithEventCategory(category calendar.EventType) EventOption {
	return func(e *calendar.Event) {
		e.EventType = category
	}
}

// WithEventWindow pins the event to an explicit start and end.
func WithEventWindow(start, end time.Time) EventOption {
	return func(e *calendar.Event) {
		e.StartTime = start
		e.EndTime = end
	}
}

// WithEventTags sets the tag list.
func WithEventTags(tags ...string) EventOption {
	return func(e *calendar.Event) {
		e.Tags = tags
	}
}

// ----------------------------- User fixtures ------------------------------

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// NewUserFixture returns a deterministic identity record with optional overrides.
func NewUserFixture(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	username := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		Username:     username,
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User %03d", idx),
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(u *persistence.User) {
		u.Username = username
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(u *persistence.User) {
		u.Email = email
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionOption configures a generated session fixture.
type SessionOption func(*persistence.Session)

// NewSessionFixture returns a deterministic session bound to the given
// username, valid for a day from the reference time.
func NewSessionFixture(username string, opts ...SessionOption) persistence.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	session := persistence.Session{
		Token:     fmt.Sprintf("session-%03d", idx),
		Username:  username,
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(s *persistence.Session) {
		s.Token = token
	}
}

// WithSessionExpiry overrides the expiry instant.
func WithSessionExpiry(at time.Time) SessionOption {
	return func(s *persistence.Session) {
		s.ExpiresAt = at
	}
}

// Revoked marks the session as revoked at the given instant.
func Revoked(at time.Time) SessionOption {
	return func(s *persistence.Session) {
		s.RevokedAt = &at
	}
}
