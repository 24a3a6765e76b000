package users

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atrium-hq/atrium/internal/platform/db"
	"github.com/atrium-hq/atrium/internal/shared"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, name string) (*User, error)
	Create(ctx context.Context, user *User, passwordHash string, roles []string) error
	UpdateProfile(ctx context.Context, name string, patch ProfilePatch) (*User, error)
	SetEnabled(ctx context.Context, name string, enabled bool) error
}

const userColumns = `name, email, full_name, user_image, gender, bio, location, interest, banner_image, allowed_in_mentions, user_type, language, time_zone, enabled, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns all accounts ordered by name.
func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one account by name.
func (r *PGRepository) Get(ctx context.Context, name string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE name = $1`, name)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts the account and its role attachments in one transaction.
func (r *PGRepository) Create(ctx context.Context, user *User, passwordHash string, roles []string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO users (name, email, full_name, user_type, language, time_zone, password_hash, enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
			user.Name, user.Email, user.FullName, user.UserType, user.Language, user.TimeZone, passwordHash, user.Enabled)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return shared.ErrDuplicate
			}
			return err
		}
		for _, role := range roles {
			if _, err := tx.Exec(ctx, `INSERT INTO has_roles (parent, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`, user.Name, role); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateProfile applies the non-nil patch fields and returns the updated
// account.
func (r *PGRepository) UpdateProfile(ctx context.Context, name string, patch ProfilePatch) (*User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{name}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	add("full_name", patch.FullName)
	add("user_image", patch.UserImage)
	add("gender", patch.Gender)
	add("bio", patch.Bio)
	add("location", patch.Location)
	add("interest", patch.Interest)
	add("banner_image", patch.BannerImage)
	add("language", patch.Language)
	add("time_zone", patch.TimeZone)

	row := r.pool.QueryRow(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE name = $1 RETURNING `+userColumns,
		args...)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetEnabled switches an account on or off.
func (r *PGRepository) SetEnabled(ctx context.Context, name string, enabled bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET enabled = $2, updated_at = now() WHERE name = $1`, name, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var fullName, userImage, gender, bio, location, interest, bannerImage, userType, language, timeZone pgtype.Text
	err := row.Scan(
		&u.Name, &u.Email, &fullName, &userImage, &gender, &bio, &location, &interest,
		&bannerImage, &u.AllowedInMentions, &userType, &language, &timeZone,
		&u.Enabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.FullName = fullName.String
	u.UserImage = userImage.String
	u.Gender = gender.String
	u.Bio = bio.String
	u.Location = location.String
	u.Interest = interest.String
	u.BannerImage = bannerImage.String
	u.UserType = userType.String
	u.Language = language.String
	u.TimeZone = timeZone.String
	return &u, nil
}

var _ Repository = (*PGRepository)(nil)
