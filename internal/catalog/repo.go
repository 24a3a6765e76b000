package catalog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Row is one entity produced by a branch query.
type Row struct {
	Name       string
	Modified   time.Time
	Title      string
	RefDoctype string
}

// Repository runs the listing branch queries.
type Repository interface {
	CustomRoleGrants(ctx context.Context, kind Kind, roles []string, conditions string) ([]Row, error)
	StandardRoleGrants(ctx context.Context, kind Kind, roles []string, conditions string) ([]Row, error)
	ZeroRolePages(ctx context.Context, conditions string) ([]Row, error)
	ReportTypes(ctx context.Context, names []string) (map[string]string, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CustomRoleGrants returns entities granted through custom role overrides
// naming the entity directly.
func (r *PGRepository) CustomRoleGrants(ctx context.Context, kind Kind, roles []string, conditions string) ([]Row, error) {
	sql := customPageGrantsSQL
	if kind == KindReport {
		sql = customReportGrantsSQL
	}
	return r.run(ctx, branchQuery{sql: sql, args: []any{roles}}, conditions)
}

// StandardRoleGrants returns entities granted through standard role
// attachments, excluding entities covered by a custom override.
func (r *PGRepository) StandardRoleGrants(ctx context.Context, kind Kind, roles []string, conditions string) ([]Row, error) {
	sql := standardPageGrantsSQL
	if kind == KindReport {
		sql = standardReportGrantsSQL
	}
	return r.run(ctx, branchQuery{sql: sql, args: []any{roles}}, conditions)
}

// ZeroRolePages returns pages with no role attachment at all.
func (r *PGRepository) ZeroRolePages(ctx context.Context, conditions string) ([]Row, error) {
	return r.run(ctx, branchQuery{sql: zeroRolePagesSQL}, conditions)
}

// ReportTypes returns the report_type per report name.
func (r *PGRepository) ReportTypes(ctx context.Context, names []string) (map[string]string, error) {
	types := make(map[string]string, len(names))
	if len(names) == 0 {
		return types, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT name, report_type FROM reports WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var reportType pgtype.Text
		if err := rows.Scan(&name, &reportType); err != nil {
			return nil, err
		}
		types[name] = reportType.String
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *PGRepository) run(ctx context.Context, q branchQuery, conditions string) ([]Row, error) {
	q, err := q.withConditions(conditions)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var row Row
		var title, refDoctype pgtype.Text
		if err := rows.Scan(&row.Name, &row.Modified, &title, &refDoctype); err != nil {
			return nil, err
		}
		row.Title = title.String
		row.RefDoctype = refDoctype.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repository = (*PGRepository)(nil)
