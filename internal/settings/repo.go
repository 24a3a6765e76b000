package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for defaults, singles and per-user settings.
type Repository interface {
	Defaults(ctx context.Context) (SystemDefaults, error)
	Default(ctx context.Context, key string) (string, error)
	SinglesDoc(ctx context.Context, doctype string) (map[string]string, error)
	NotificationSettings(ctx context.Context, user string) (*NotificationSettings, error)
	EnergyScore(ctx context.Context, user string) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Defaults returns every stored system default.
func (r *PGRepository) Defaults(ctx context.Context) (SystemDefaults, error) {
	rows, err := r.pool.Query(ctx, `SELECT defkey, defvalue FROM system_defaults`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	defaults := SystemDefaults{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		defaults[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return defaults, nil
}

// Default returns one system default, empty when the key is not set.
func (r *PGRepository) Default(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT defvalue FROM system_defaults WHERE defkey = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SinglesDoc returns the field/value pairs of a one-row document.
func (r *PGRepository) SinglesDoc(ctx context.Context, doctype string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT field, value FROM singles WHERE doctype = $1`, doctype)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	doc := map[string]string{}
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, err
		}
		doc[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// NotificationSettings returns the stored preferences for a user, nil when
// none exist yet.
func (r *PGRepository) NotificationSettings(ctx context.Context, user string) (*NotificationSettings, error) {
	var settings NotificationSettings
	err := r.pool.QueryRow(ctx, `
SELECT user_name, enabled, notify_by_email
FROM notification_settings
WHERE user_name = $1`, user).Scan(&settings.User, &settings.Enabled, &settings.NotifyByEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// EnergyScore sums the user's energy points, review entries excluded.
func (r *PGRepository) EnergyScore(ctx context.Context, user string) (int64, error) {
	var score int64
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(points), 0)
FROM energy_point_logs
WHERE user_name = $1 AND type <> 'Review'`, user).Scan(&score)
	if err != nil {
		return 0, err
	}
	return score, nil
}

var _ Repository = (*PGRepository)(nil)
