package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/event-horizon/internal/application"
	"github.com/example/event-horizon/internal/config"
	httptransport "github.com/example/event-horizon/internal/http"
	"github.com/example/event-horizon/internal/logging"
	"github.com/example/event-horizon/internal/persistence"
	"github.com/example/event-horizon/internal/persistence/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	bootstrap := logging.NewLogger(os.Stdout, logging.ParseLevel(""))

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := sqlite.Open(cfg.Database.DSN, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	accounts := newAccountRepositoryAdapter(storage)
	sessions := newSessionRepositoryAdapter(storage)

	eventService := application.NewEventServiceWithLogger(storage, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(accounts, sessions, nil, tokenGenerator, now, cfg.Session.TTL, logger)
	authService.SetPasswordVerification(cfg.Auth.VerifyPasswords)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	eventHandler := httptransport.NewEventHandler(eventService, logger)
	calendarHandler := httptransport.NewCalendarHandler(eventService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     authHandler,
		Events:   eventHandler,
		Calendar: calendarHandler,
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Session.SweepSchedule, func() {
		if err := authService.PruneSessions(context.Background()); err != nil {
			logger.Error("session sweep failed", "error", err)
		}
	}); err != nil {
		logger.Error("invalid session sweep schedule", "schedule", cfg.Session.SweepSchedule, "error", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("calendar API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func isPublicPath(path string) bool {
	return strings.EqualFold(path, "/login") || strings.EqualFold(path, "/signup")
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// accountRepositoryAdapter bridges the application's account contract onto the
// persistence user repository, translating models and sentinel errors.
type accountRepositoryAdapter struct {
	users persistence.UserRepository
}

func newAccountRepositoryAdapter(users persistence.UserRepository) *accountRepositoryAdapter {
	return &accountRepositoryAdapter{users: users}
}

func (a *accountRepositoryAdapter) CreateAccount(ctx context.Context, creds application.AccountCredentials) error {
	if err := a.users.CreateUser(ctx, userModel(creds)); err != nil {
		return mapPersistenceError(err)
	}
	return nil
}

func (a *accountRepositoryAdapter) GetAccount(ctx context.Context, username string) (application.AccountCredentials, error) {
	user, err := a.users.GetUser(ctx, username)
	if err != nil {
		return application.AccountCredentials{}, mapPersistenceError(err)
	}
	return accountModel(user), nil
}

func (a *accountRepositoryAdapter) DeleteAccount(ctx context.Context, username string) error {
	if err := a.users.DeleteUser(ctx, username); err != nil {
		return mapPersistenceError(err)
	}
	return nil
}

func userModel(creds application.AccountCredentials) persistence.User {
	return persistence.User{
		Username:      creds.Account.Username,
		FirstName:     creds.Account.FirstName,
		LastName:      creds.Account.LastName,
		MiddleInitial: creds.Account.MiddleInitial,
		Email:         creds.Account.Email,
		PhoneNumber:   creds.Account.PhoneNumber,
		PasswordHash:  creds.PasswordHash,
		CreatedAt:     creds.Account.CreatedAt,
		UpdatedAt:     creds.Account.UpdatedAt,
	}
}

func accountModel(user persistence.User) application.AccountCredentials {
	return application.AccountCredentials{
		Account: application.Account{
			Username:      user.Username,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			MiddleInitial: user.MiddleInitial,
			Email:         user.Email,
			PhoneNumber:   user.PhoneNumber,
			CreatedAt:     user.CreatedAt,
			UpdatedAt:     user.UpdatedAt,
		},
		PasswordHash: user.PasswordHash,
	}
}

// sessionRepositoryAdapter bridges the application's session contract onto the
// persistence session repository.
type sessionRepositoryAdapter struct {
	sessions persistence.SessionRepository
}

func newSessionRepositoryAdapter(sessions persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{sessions: sessions}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	persisted, err := a.sessions.CreateSession(ctx, sessionModel(session))
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return applicationSession(persisted), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	session, err := a.sessions.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return applicationSession(session), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	session, err := a.sessions.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return applicationSession(session), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	if err := a.sessions.DeleteExpiredSessions(ctx, reference); err != nil {
		return mapPersistenceError(err)
	}
	return nil
}

func sessionModel(session application.Session) persistence.Session {
	return persistence.Session{
		Token:     session.Token,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func applicationSession(session persistence.Session) application.Session {
	return application.Session{
		Token:     session.Token,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func mapPersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrAlreadyExists
	default:
		return err
	}
}
