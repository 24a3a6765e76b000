package rbac

import (
	"context"
	"slices"
)

// Service resolves role membership and role-derived desk settings.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RolesOf returns every role the user carries. The guest account resolves to
// the guest role alone; other users carry RoleAll and RoleGuest implicitly.
func (s *Service) RolesOf(ctx context.Context, user string) ([]string, error) {
	if user == "" || user == UserGuest {
		return []string{RoleGuest}, nil
	}
	roles, err := s.repo.UserRoles(ctx, user)
	if err != nil {
		return nil, err
	}
	return append(roles, RoleAll, RoleGuest), nil
}

// HasRole reports whether the user carries the given role. The Administrator
// account passes every check.
func (s *Service) HasRole(ctx context.Context, user, role string) (bool, error) {
	if user == UserAdministrator {
		return true, nil
	}
	roles, err := s.RolesOf(ctx, user)
	if err != nil {
		return false, err
	}
	return slices.Contains(roles, role), nil
}

// DeskSettings OR-merges the desk feature toggles of every role the user
// carries, so a feature disabled on one role survives through any other.
func (s *Service) DeskSettings(ctx context.Context, user string) (DeskSettings, error) {
	roles, err := s.RolesOf(ctx, user)
	if err != nil {
		return DeskSettings{}, err
	}
	rows, err := s.repo.DeskProperties(ctx, roles)
	if err != nil {
		return DeskSettings{}, err
	}
	var merged DeskSettings
	for _, row := range rows {
		merged.merge(row)
	}
	return merged, nil
}
