package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/event-horizon/internal/application"
	"github.com/example/event-horizon/internal/persistence"
)

func TestIsPublicPath(t *testing.T) {
	public := []string{"/login", "/signup", "/LOGIN"}
	for _, path := range public {
		if !isPublicPath(path) {
			t.Fatalf("expected %q to be public", path)
		}
	}
	protected := []string{"/events", "/calendar", "/logout", "/events/export"}
	for _, path := range protected {
		if isPublicPath(path) {
			t.Fatalf("expected %q to require a session", path)
		}
	}
}

func TestMapPersistenceError(t *testing.T) {
	if got := mapPersistenceError(persistence.ErrNotFound); !errors.Is(got, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound mapping, got %v", got)
	}
	if got := mapPersistenceError(persistence.ErrDuplicate); !errors.Is(got, application.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists mapping, got %v", got)
	}
	unexpected := errors.New("boom")
	if got := mapPersistenceError(unexpected); !errors.Is(got, unexpected) {
		t.Fatalf("expected passthrough, got %v", got)
	}
	if got := mapPersistenceError(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

type userRepositoryStub struct {
	users map[string]persistence.User
}

func (s *userRepositoryStub) CreateUser(ctx context.Context, user persistence.User) error {
	if _, ok := s.users[user.Username]; ok {
		return persistence.ErrDuplicate
	}
	s.users[user.Username] = user
	return nil
}

func (s *userRepositoryStub) GetUser(ctx context.Context, username string) (persistence.User, error) {
	user, ok := s.users[username]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *userRepositoryStub) DeleteUser(ctx context.Context, username string) error {
	if _, ok := s.users[username]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, username)
	return nil
}

func TestAccountRepositoryAdapter_RoundTrip(t *testing.T) {
	adapter := newAccountRepositoryAdapter(&userRepositoryStub{users: make(map[string]persistence.User)})
	ctx := context.Background()

	creds := application.AccountCredentials{
		Account: application.Account{
			Username:  "alice",
			FirstName: "Alice",
			Email:     "alice@example.com",
			CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		PasswordHash: "hash",
	}
	if err := adapter.CreateAccount(ctx, creds); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	got, err := adapter.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Account.Email != "alice@example.com" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected round trip: %+v", got)
	}

	if err := adapter.CreateAccount(ctx, creds); !errors.Is(err, application.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := adapter.GetAccount(ctx, "ghost"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := adapter.DeleteAccount(ctx, "alice"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if _, err := adapter.GetAccount(ctx, "alice"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected account to be gone, got %v", err)
	}
	if err := adapter.DeleteAccount(ctx, "alice"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
	}
}
