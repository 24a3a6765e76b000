package meta

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence over the entity type registry.
type Repository interface {
	PreviewEnabledTypes(ctx context.Context) ([]string, error)
	PreviewOverrides(ctx context.Context) ([]PreviewOverride, error)
	SingleTypes(ctx context.Context) ([]string, error)
	TreeTypes(ctx context.Context) ([]string, error)
	TranslatedTypes(ctx context.Context) ([]string, error)
	Layouts(ctx context.Context) ([]Layout, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// PreviewEnabledTypes returns entity types globally flagged for link previews.
func (r *PGRepository) PreviewEnabledTypes(ctx context.Context) ([]string, error) {
	return r.names(ctx, `SELECT name FROM entity_types WHERE show_preview_popup ORDER BY name`)
}

// PreviewOverrides returns the stored preview toggles in application order.
func (r *PGRepository) PreviewOverrides(ctx context.Context) ([]PreviewOverride, error) {
	rows, err := r.pool.Query(ctx, `
SELECT entity_type, value
FROM property_overrides
WHERE property = 'show_preview_popup'
ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var overrides []PreviewOverride
	for rows.Next() {
		var override PreviewOverride
		var value pgtype.Text
		if err := rows.Scan(&override.EntityType, &value); err != nil {
			return nil, err
		}
		override.Value = value.String
		overrides = append(overrides, override)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return overrides, nil
}

// SingleTypes returns entity types that exist as exactly one document.
func (r *PGRepository) SingleTypes(ctx context.Context) ([]string, error) {
	return r.names(ctx, `SELECT name FROM entity_types WHERE is_single ORDER BY name`)
}

// TreeTypes returns entity types organised as nested sets.
func (r *PGRepository) TreeTypes(ctx context.Context) ([]string, error) {
	return r.names(ctx, `SELECT name FROM entity_types WHERE has_tree ORDER BY name`)
}

// TranslatedTypes returns entity types whose records are translated.
func (r *PGRepository) TranslatedTypes(ctx context.Context) ([]string, error) {
	return r.names(ctx, `SELECT name FROM entity_types WHERE is_translated ORDER BY name`)
}

// Layouts returns the routes registered for readable entity types.
func (r *PGRepository) Layouts(ctx context.Context) ([]Layout, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, route, document_type FROM entity_layouts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var layouts []Layout
	for rows.Next() {
		var layout Layout
		var route, documentType pgtype.Text
		if err := rows.Scan(&layout.Name, &route, &documentType); err != nil {
			return nil, err
		}
		layout.Route = route.String
		layout.DocumentType = documentType.String
		layouts = append(layouts, layout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return layouts, nil
}

func (r *PGRepository) names(ctx context.Context, sql string) ([]string, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

var _ Repository = (*PGRepository)(nil)
