package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/church-events-api/internal/models"
)

const (
	userColumns    = `id, email, password_hash, full_name, role, active, last_login, created_at, updated_at`
	sessionColumns = `id, user_id, token_hash, expires_at, created_at, revoked, revoked_at, ip_address, user_agent`
)

// UserRepository stores admin accounts and their refresh sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// getOne runs a single-row lookup. sql.ErrNoRows is returned unwrapped so
// callers can tell an unknown account from a failed query.
func (r *UserRepository) getOne(ctx context.Context, dest interface{}, op, query string, arg interface{}) error {
	err := r.db.GetContext(ctx, dest, query, arg)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return sql.ErrNoRows
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// FindByEmail returns the admin account registered under email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.getOne(ctx, &user, "find admin by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns the admin account with the given id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.getOne(ctx, &user, "find admin by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("record admin login: %w", err)
	}
	return nil
}

// UpdatePassword replaces the password hash and reactivates the account.
// adminctl create-admin uses it to reset an existing operator.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2, active = TRUE, updated_at = $3 WHERE id = $1`, id, passwordHash, at); err != nil {
		return fmt.Errorf("reset admin password: %w", err)
	}
	return nil
}

// Create inserts an admin account, filling in its id and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.UpdatedAt = time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :full_name, :role, :active, :created_at, :updated_at)`, user)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// CreateRefreshToken opens a session. Only the token digest is persisted.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, session *models.RefreshToken) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO refresh_tokens (`+sessionColumns+`)
		VALUES (:id, :user_id, :token_hash, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`, session)
	if err != nil {
		return fmt.Errorf("open admin session: %w", err)
	}
	return nil
}

// FindRefreshToken looks a session up by token digest.
func (r *UserRepository) FindRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var session models.RefreshToken
	if err := r.getOne(ctx, &session, "find admin session", `SELECT `+sessionColumns+` FROM refresh_tokens WHERE token_hash = $1`, tokenHash); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("revoke admin session: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens closes every open session of an admin.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE user_id = $1 AND NOT revoked`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke admin sessions: %w", err)
	}
	return nil
}
