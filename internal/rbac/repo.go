package rbac

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for role membership.
type Repository interface {
	UserRoles(ctx context.Context, user string) ([]string, error)
	DeskProperties(ctx context.Context, roles []string) ([]DeskSettings, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// UserRoles returns the roles explicitly attached to the user.
func (r *PGRepository) UserRoles(ctx context.Context, user string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT role FROM has_roles WHERE parent = $1`, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// DeskProperties returns the desk feature toggles stored on each role.
func (r *PGRepository) DeskProperties(ctx context.Context, roles []string) ([]DeskSettings, error) {
	rows, err := r.pool.Query(ctx, `
SELECT search_bar, notifications, list_sidebar, bulk_actions, view_switcher, form_sidebar, timeline, dashboard
FROM roles
WHERE name = ANY($1)`, roles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var settings []DeskSettings
	for rows.Next() {
		var row DeskSettings
		if err := rows.Scan(
			&row.SearchBar,
			&row.Notifications,
			&row.ListSidebar,
			&row.BulkActions,
			&row.ViewSwitcher,
			&row.FormSidebar,
			&row.Timeline,
			&row.Dashboard,
		); err != nil {
			return nil, err
		}
		settings = append(settings, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settings, nil
}

var _ Repository = (*PGRepository)(nil)
