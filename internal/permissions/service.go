package permissions

import (
	"context"
	"strings"

	"github.com/atrium-hq/atrium/internal/rbac"
)

// Service provides the SQL condition fragments scoping catalog queries per
// user. Fragments come from the permission_conditions table, the Atrium
// analogue of server-side permission scripts.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// QueryConditions joins every enabled fragment for the entity kind with
// " AND ". The Administrator account is never filtered and always receives an
// empty fragment.
func (s *Service) QueryConditions(ctx context.Context, kind, user string) (string, error) {
	if user == rbac.UserAdministrator {
		return "", nil
	}
	fragments, err := s.repo.EnabledConditions(ctx, kind)
	if err != nil {
		return "", err
	}
	return strings.Join(fragments, " AND "), nil
}
