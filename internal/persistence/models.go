package persistence

import "time"

// User represents the identity record stored for a signed-up or logged-in
// username, including the optional profile fields collected at signup.
type User struct {
	Username      string
	FirstName     string
	LastName      string
	MiddleInitial string
	Email         string
	PhoneNumber   string
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session represents an issued login session.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
