package permissions

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for permission query conditions.
type Repository interface {
	EnabledConditions(ctx context.Context, kind string) ([]string, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// EnabledConditions returns the enabled SQL fragments registered for the
// entity kind, in a stable order.
func (r *PGRepository) EnabledConditions(ctx context.Context, kind string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT fragment
FROM permission_conditions
WHERE entity_kind = $1 AND enabled
ORDER BY fragment`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var fragments []string
	for rows.Next() {
		var fragment string
		if err := rows.Scan(&fragment); err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fragments, nil
}

var _ Repository = (*PGRepository)(nil)
