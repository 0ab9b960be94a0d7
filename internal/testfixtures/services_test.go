package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/event-horizon/internal/application"
	"github.com/example/event-horizon/internal/calendar"
)

func TestServiceFactoryBuildsEventServiceAgainstSQLite(t *testing.T) {
	harness := NewSQLiteHarness(t)
	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("event")))

	svc := factory.NewEventService(EventServiceDeps{Store: harness.Events})
	principal := application.Principal{Username: "alice"}

	draft := calendar.NewDraft("", ReferenceTime())
	draft.Title = "Dentist"

	created, err := svc.CreateEvent(context.Background(), application.CreateEventParams{
		Principal: principal,
		Draft:     draft,
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if created.ID != "event-1" {
		t.Fatalf("expected deterministic identifier, got %q", created.ID)
	}

	events, err := svc.ListEvents(context.Background(), principal)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Dentist" {
		t.Fatalf("unexpected collection: %+v", events)
	}
}

func TestServiceFactoryClockDrivesSessionExpiry(t *testing.T) {
	clock := NewClock(ReferenceTime())
	factory := NewServiceFactory(WithClock(clock), WithIDGenerator(NewIDGenerator("token")))

	accounts := &staticAccounts{}
	sessions := &recordingSessions{}
	svc := factory.NewAuthService(AuthServiceDeps{
		Accounts:   accounts,
		Sessions:   sessions,
		SessionTTL: 2 * time.Hour,
	})

	result, err := svc.LogIn(context.Background(), application.LogInParams{Username: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("LogIn failed: %v", err)
	}
	if !result.Session.ExpiresAt.Equal(ReferenceTime().Add(2 * time.Hour)) {
		t.Fatalf("expected expiry derived from the fixture clock, got %v", result.Session.ExpiresAt)
	}
}

type staticAccounts struct{}

func (staticAccounts) CreateAccount(ctx context.Context, creds application.AccountCredentials) error {
	return nil
}

func (staticAccounts) GetAccount(ctx context.Context, username string) (application.AccountCredentials, error) {
	return application.AccountCredentials{Account: application.Account{Username: username}}, nil
}

func (staticAccounts) DeleteAccount(ctx context.Context, username string) error {
	return nil
}

type recordingSessions struct {
	created []application.Session
}

func (r *recordingSessions) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	r.created = append(r.created, session)
	return session, nil
}

func (r *recordingSessions) GetSession(ctx context.Context, token string) (application.Session, error) {
	return application.Session{}, application.ErrNotFound
}

func (r *recordingSessions) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	return application.Session{}, application.ErrNotFound
}

func (r *recordingSessions) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return nil
}
