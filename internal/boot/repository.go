package boot

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atrium-hq/atrium/internal/rbac"
	"github.com/atrium-hq/atrium/internal/shared"
)

// Repository defines the read-only aggregations the assembler pulls from
// PostgreSQL.
type Repository interface {
	UserInfo(ctx context.Context) (map[string]UserSummary, error)
	AllowedWorkspaces(ctx context.Context, user string) ([]Workspace, error)
	ModulePageMap(ctx context.Context) (map[string]string, error)
	Dashboards(ctx context.Context) ([]Dashboard, error)
	LetterHeads(ctx context.Context) (map[string]LetterHead, error)
	HomeFolder(ctx context.Context) (string, error)
	UnseenNotes(ctx context.Context, user string) ([]UnseenNote, error)
	SuccessActions(ctx context.Context) ([]SuccessAction, error)
	PageDoc(ctx context.Context, name string) (*PageDoc, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// UserInfo returns every enabled account keyed by name. The Administrator
// entry is additionally aliased under its email address so clients can look
// it up either way.
func (r *PGRepository) UserInfo(ctx context.Context) (map[string]UserSummary, error) {
	const query = `
SELECT name, full_name, user_image, gender, email, bio, location, interest,
       banner_image, allowed_in_mentions, user_type
FROM users
WHERE enabled`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]UserSummary)
	for rows.Next() {
		var (
			entry       UserSummary
			fullName    pgtype.Text
			image       pgtype.Text
			gender      pgtype.Text
			bio         pgtype.Text
			location    pgtype.Text
			interest    pgtype.Text
			bannerImage pgtype.Text
			userType    pgtype.Text
		)
		if err := rows.Scan(
			&entry.Name,
			&fullName,
			&image,
			&gender,
			&entry.Email,
			&bio,
			&location,
			&interest,
			&bannerImage,
			&entry.AllowedInMentions,
			&userType,
		); err != nil {
			return nil, err
		}
		entry.Fullname = fullName.String
		entry.Image = image.String
		entry.Gender = gender.String
		entry.Bio = bio.String
		entry.Location = location.String
		entry.Interest = interest.String
		entry.BannerImage = bannerImage.String
		entry.UserType = userType.String
		out[entry.Name] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if admin, ok := out[rbac.UserAdministrator]; ok && admin.Email != "" {
		out[admin.Email] = admin
	}
	return out, nil
}

// AllowedWorkspaces lists public workspaces plus the private ones owned by
// the given user, in sidebar order.
func (r *PGRepository) AllowedWorkspaces(ctx context.Context, user string) ([]Workspace, error) {
	const query = `
SELECT name, title, module, is_public
FROM workspaces
WHERE is_public OR for_user = $1
ORDER BY sequence, name`

	rows, err := r.pool.Query(ctx, query, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		var (
			ws     Workspace
			module pgtype.Text
		)
		if err := rows.Scan(&ws.Name, &ws.Title, &module, &ws.IsPublic); err != nil {
			return nil, err
		}
		ws.Module = module.String
		out = append(out, ws)
	}
	return out, rows.Err()
}

// ModulePageMap maps each module to the workspace that serves as its landing
// page.
func (r *PGRepository) ModulePageMap(ctx context.Context) (map[string]string, error) {
	const query = `
SELECT module, name
FROM workspaces
WHERE module IS NOT NULL AND module <> ''
ORDER BY sequence, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var module, name string
		if err := rows.Scan(&module, &name); err != nil {
			return nil, err
		}
		if _, ok := out[module]; !ok {
			out[module] = name
		}
	}
	return out, rows.Err()
}

// Dashboards lists every dashboard name.
func (r *PGRepository) Dashboards(ctx context.Context) ([]Dashboard, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM dashboards ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dashboard
	for rows.Next() {
		var d Dashboard
		if err := rows.Scan(&d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LetterHeads returns every letter head keyed by name.
func (r *PGRepository) LetterHeads(ctx context.Context) (map[string]LetterHead, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, content, footer FROM letter_heads`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]LetterHead)
	for rows.Next() {
		var (
			name    string
			content pgtype.Text
			footer  pgtype.Text
		)
		if err := rows.Scan(&name, &content, &footer); err != nil {
			return nil, err
		}
		if _, ok := out[name]; !ok {
			out[name] = LetterHead{Header: content.String, Footer: footer.String}
		}
	}
	return out, rows.Err()
}

// HomeFolder returns the name of the root file folder, empty when the files
// table has none.
func (r *PGRepository) HomeFolder(ctx context.Context) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM files WHERE is_home_folder LIMIT 1`).Scan(&name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return name, nil
}

// UnseenNotes returns login notices the user has not acknowledged and whose
// notification window is still open.
func (r *PGRepository) UnseenNotes(ctx context.Context, user string) ([]UnseenNote, error) {
	const query = `
SELECT name, title, content, notify_on_every_login
FROM notes
WHERE notify_on_login
  AND expire_notification_on > $1
  AND $2 NOT IN (SELECT user_name FROM note_seen_by WHERE note_name = notes.name)`

	rows, err := r.pool.Query(ctx, query, time.Now().UTC(), user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UnseenNote
	for rows.Next() {
		var (
			note    UnseenNote
			title   pgtype.Text
			content pgtype.Text
		)
		if err := rows.Scan(&note.Name, &title, &content, &note.NotifyOnEveryLogin); err != nil {
			return nil, err
		}
		note.Title = title.String
		note.Content = content.String
		out = append(out, note)
	}
	return out, rows.Err()
}

// SuccessActions lists the configured save-success dialogs.
func (r *PGRepository) SuccessActions(ctx context.Context) ([]SuccessAction, error) {
	const query = `
SELECT name, ref_doctype, message, next_actions, action_timeout
FROM success_actions
ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SuccessAction
	for rows.Next() {
		var (
			action      SuccessAction
			message     pgtype.Text
			nextActions pgtype.Text
			timeout     pgtype.Int4
		)
		if err := rows.Scan(&action.Name, &action.RefDoctype, &message, &nextActions, &timeout); err != nil {
			return nil, err
		}
		action.Message = message.String
		action.NextActions = nextActions.String
		action.ActionTimeout = int(timeout.Int32)
		out = append(out, action)
	}
	return out, rows.Err()
}

// PageDoc loads one page together with its role requirements.
func (r *PGRepository) PageDoc(ctx context.Context, name string) (*PageDoc, error) {
	var doc PageDoc
	var title pgtype.Text
	err := r.pool.QueryRow(ctx, `SELECT name, title, modified FROM pages WHERE name = $1`, name).
		Scan(&doc.Name, &title, &doc.Modified)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	doc.Doctype = "Page"
	doc.Title = title.String

	rows, err := r.pool.Query(ctx, `SELECT role FROM has_roles WHERE parent = $1 ORDER BY role`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		doc.Roles = append(doc.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &doc, nil
}

var _ Repository = (*PGRepository)(nil)
