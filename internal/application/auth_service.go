package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// AccountRepository captures the persistence operations needed by the auth service.
type AccountRepository interface {
	CreateAccount(ctx context.Context, credentials AccountCredentials) error
	GetAccount(ctx context.Context, username string) (AccountCredentials, error)
	DeleteAccount(ctx context.Context, username string) error
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// PasswordHasher derives a stored hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// AuthService coordinates signup, login, and session lifecycle. Login is
// trust-based: any non-empty username and password are accepted, and unknown
// usernames are registered on the fly.
type AuthService struct {
	accounts        AccountRepository
	sessions        SessionRepository
	hashPassword    PasswordHasher
	tokenGenerator  func() string
	now             func() time.Time
	sessionTTL      time.Duration
	verifyPasswords bool
	logger          *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(accounts AccountRepository, sessions SessionRepository, hash PasswordHasher, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(accounts, sessions, hash, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(accounts AccountRepository, sessions SessionRepository, hash PasswordHasher, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts:       accounts,
		sessions:       sessions,
		hashPassword:   hash,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

// SetPasswordVerification switches LogIn from trusting any password for a
// known account to checking it against the stored hash. Off by default.
func (s *AuthService) SetPasswordVerification(enabled bool) {
	if s == nil {
		return
	}
	s.verifyPasswords = enabled
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// SignUp validates the registration form, stores the identity with a hashed
// password, and issues a session.
func (s *AuthService) SignUp(ctx context.Context, params SignUpParams) (result SignUpResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.accounts == nil {
		err = fmt.Errorf("account repository not configured")
		return
	}

	normalized := normalizeSignUp(params)

	logger := s.loggerWith(ctx, "SignUp", "username", normalized.Username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "signup failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "account registered")
	}()

	vErr := validateSignUp(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(normalized.Password)
	if err != nil {
		return
	}

	now := s.now()
	account := Account{
		Username:      normalized.Username,
		FirstName:     normalized.FirstName,
		LastName:      normalized.LastName,
		MiddleInitial: normalized.MiddleInitial,
		Email:         normalized.Email,
		PhoneNumber:   normalized.PhoneNumber,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.accounts.CreateAccount(ctx, AccountCredentials{Account: account, PasswordHash: hash})
	if err != nil {
		return
	}

	var session Session
	session, err = s.issueSession(ctx, account.Username)
	if err != nil {
		return
	}

	result = SignUpResult{Account: account, Session: session}
	return
}

// LogIn accepts any non-empty username and password. An unknown username is
// registered on the fly with the submitted password; an existing account is
// trusted without comparing hashes unless password verification is enabled.
func (s *AuthService) LogIn(ctx context.Context, params LogInParams) (result LogInResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.accounts == nil {
		err = fmt.Errorf("account repository not configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	password := params.Password

	logger := s.loggerWith(ctx, "LogIn", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "login succeeded")
	}()

	if username == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	var creds AccountCredentials
	creds, err = s.accounts.GetAccount(ctx, username)
	registered := false
	if errors.Is(err, ErrNotFound) {
		creds, err = s.registerOnTheFly(ctx, username, password)
		registered = true
	}
	if err != nil {
		return
	}

	if s.verifyPasswords && !registered {
		if err = VerifyPassword(creds.PasswordHash, password); err != nil {
			err = ErrInvalidCredentials
			return
		}
	}

	var session Session
	session, err = s.issueSession(ctx, creds.Account.Username)
	if err != nil {
		return
	}

	result = LogInResult{Account: creds.Account, Session: session}
	return
}

func (s *AuthService) registerOnTheFly(ctx context.Context, username, password string) (AccountCredentials, error) {
	hash, err := s.hashPassword(password)
	if err != nil {
		return AccountCredentials{}, err
	}

	now := s.now()
	creds := AccountCredentials{
		Account: Account{
			Username:  username,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	}

	if err := s.accounts.CreateAccount(ctx, creds); err != nil {
		// Lost a race with a concurrent first login; the stored record wins.
		if errors.Is(err, ErrAlreadyExists) {
			return s.accounts.GetAccount(ctx, username)
		}
		return AccountCredentials{}, err
	}
	return creds, nil
}

func (s *AuthService) issueSession(ctx context.Context, username string) (Session, error) {
	now := s.now()
	session := Session{
		Token:     s.tokenGenerator(),
		Username:  username,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if s.sessions == nil {
		return session, nil
	}
	return s.sessions.CreateSession(ctx, session)
}

// DeleteAccount removes the principal's account. The storage layer cascades
// the delete to the account's sessions and calendar collection.
func (s *AuthService) DeleteAccount(ctx context.Context, principal Principal) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.accounts == nil {
		return fmt.Errorf("account repository not configured")
	}

	username := strings.TrimSpace(principal.Username)
	logger := s.loggerWith(ctx, "DeleteAccount", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "account deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "account deleted")
	}()

	if username == "" {
		err = ErrUnauthorized
		return
	}

	err = s.accounts.DeleteAccount(ctx, username)
	return
}

// RevokeSession invalidates an existing session token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", trimmed != "")

	if _, err := s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.ErrorContext(ctx, "failed to revoke session", "error", ErrInvalidCredentials, "error_kind", ErrorKind(ErrInvalidCredentials))
			return ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "session revoked")
	return nil
}

// ValidateSession verifies that the provided token corresponds to an active
// session and returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("username", principal.Username).InfoContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	principal = Principal{Username: session.Username}
	return
}

// PruneSessions deletes sessions that expired at or before the current time.
func (s *AuthService) PruneSessions(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "PruneSessions")
	if err := s.sessions.DeleteExpiredSessions(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "expired sessions pruned")
	return nil
}

func normalizeSignUp(params SignUpParams) SignUpParams {
	return SignUpParams{
		Username:        strings.TrimSpace(params.Username),
		FirstName:       strings.TrimSpace(params.FirstName),
		LastName:        strings.TrimSpace(params.LastName),
		MiddleInitial:   strings.TrimSpace(params.MiddleInitial),
		Email:           strings.ToLower(strings.TrimSpace(params.Email)),
		PhoneNumber:     strings.TrimSpace(params.PhoneNumber),
		Password:        params.Password,
		ConfirmPassword: params.ConfirmPassword,
	}
}

func validateSignUp(params SignUpParams) *ValidationError {
	vErr := &ValidationError{}

	if params.FirstName == "" {
		vErr.add("firstName", "first name is required")
	}
	if params.LastName == "" {
		vErr.add("lastName", "last name is required")
	}
	if params.Username == "" {
		vErr.add("username", "username is required")
	}

	if params.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(params.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if params.Password == "" {
		vErr.add("password", "password is required")
	} else if params.Password != params.ConfirmPassword {
		vErr.add("confirmPassword", "passwords do not match")
	}

	return vErr
}
