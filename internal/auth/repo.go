package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atrium-hq/atrium/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByLogin(ctx context.Context, login string) (*User, error)
	CreateSession(ctx context.Context, id, userName string, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByLogin fetches an account by name or email address. Desk accounts
// are keyed by name, which for regular accounts is the email.
func (r *PGRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	const query = `
SELECT name, email, full_name, password_hash, enabled, language
FROM users
WHERE name = $1 OR email = $1`

	var (
		user     User
		fullName pgtype.Text
		language pgtype.Text
	)
	err := r.pool.QueryRow(ctx, query, login).Scan(
		&user.Name,
		&user.Email,
		&fullName,
		&user.PasswordHash,
		&user.Enabled,
		&language,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.FullName = fullName.String
	user.Language = language.String
	return &user, nil
}

// CreateSession persists a new login session in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id, userName string, expiresAt time.Time, ip, ua string) error {
	const query = `
INSERT INTO sessions (id, user_name, created_at, expires_at, ip, ua)
VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, query,
		id,
		userName,
		pgtype.Timestamptz{Time: now, Valid: true},
		pgtype.Timestamptz{Time: expiresAt.UTC(), Valid: true},
		pgtype.Text{String: ip, Valid: ip != ""},
		pgtype.Text{String: ua, Valid: ua != ""},
	)
	return err
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)
