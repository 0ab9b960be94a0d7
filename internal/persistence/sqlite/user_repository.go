package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/event-horizon/internal/persistence"
)

// UserRepository implements persistence.UserRepository over SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository wraps the database handle.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `username, first_name, last_name, middle_initial, email, phone_number, password_hash, created_at, updated_at`

// CreateUser inserts a new identity record.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.Username == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.FirstName,
		user.LastName,
		user.MiddleInitial,
		user.Email,
		user.PhoneNumber,
		user.PasswordHash,
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return nil
}

// GetUser retrieves an identity record by username.
func (r *UserRepository) GetUser(ctx context.Context, username string) (persistence.User, error) {
	if username == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row.Scan)
}

// DeleteUser removes an identity record and its stored calendar.
func (r *UserRepository) DeleteUser(ctx context.Context, username string) error {
	if username == "" {
		return persistence.ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE username = ?`, username); err != nil {
		_ = tx.Rollback()
		return mapSQLiteError(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_blobs WHERE identity = ?`, username); err != nil {
		_ = tx.Rollback()
		return mapSQLiteError(err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		_ = tx.Rollback()
		return mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return persistence.ErrNotFound
	}

	return tx.Commit()
}

func scanUser(scan func(dest ...any) error) (persistence.User, error) {
	var (
		user      persistence.User
		createdAt string
		updatedAt string
	)
	err := scan(
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.MiddleInitial,
		&user.Email,
		&user.PhoneNumber,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, mapSQLiteError(err)
	}

	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return user, nil
}
