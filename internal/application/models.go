package application

import (
	"time"

	"github.com/example/event-horizon/internal/calendar"
)

// Principal identifies the authenticated user invoking a service method.
// Event collections are keyed by the principal's username.
type Principal struct {
	Username string
}

// Account is a registered identity together with its signup profile.
type Account struct {
	Username      string
	FirstName     string
	LastName      string
	MiddleInitial string
	Email         string
	PhoneNumber   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AccountCredentials pairs an account with its stored password hash.
type AccountCredentials struct {
	Account      Account
	PasswordHash string
}

// Session represents an authenticated session issued to an account.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// SignUpParams captures the registration form fields.
type SignUpParams struct {
	Username        string
	FirstName       string
	LastName        string
	MiddleInitial   string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
}

// SignUpResult carries the stored account and its freshly issued session.
type SignUpResult struct {
	Account Account
	Session Session
}

// LogInParams captures the login form fields.
type LogInParams struct {
	Username string
	Password string
}

// LogInResult carries the account and its freshly issued session.
type LogInResult struct {
	Account Account
	Session Session
}

// CreateEventParams wraps the data required to add an event to a collection.
type CreateEventParams struct {
	Principal Principal
	Draft     calendar.Draft
}

// UpdateEventParams wraps the data required to replace an existing event.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Draft     calendar.Draft
}
