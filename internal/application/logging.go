package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/event-horizon/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// serviceLogger resolves the request-scoped logger, falling back to the
// service's own logger, and annotates it with the service and operation names.
func serviceLogger(ctx context.Context, fallback *slog.Logger, service, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	annotated := []any{"service", service}
	if operation != "" {
		annotated = append(annotated, "operation", operation)
	}
	annotated = append(annotated, attrs...)
	return logger.With(annotated...)
}

// ErrorKind labels an error for structured log fields so dashboards can group
// failures without parsing messages.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrSessionRevoked):
		return "session_revoked"
	default:
		return "unexpected"
	}
}
