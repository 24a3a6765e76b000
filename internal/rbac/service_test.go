package rbac

import (
	"context"
	"slices"
	"testing"
)

type stubRepo struct {
	roles      map[string][]string
	desk       map[string]DeskSettings
	rolesCalls int
}

func (s *stubRepo) UserRoles(ctx context.Context, user string) ([]string, error) {
	s.rolesCalls++
	return s.roles[user], nil
}

func (s *stubRepo) DeskProperties(ctx context.Context, roles []string) ([]DeskSettings, error) {
	var out []DeskSettings
	for _, role := range roles {
		if settings, ok := s.desk[role]; ok {
			out = append(out, settings)
		}
	}
	return out, nil
}

func TestRolesOfGuest(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	roles, err := svc.RolesOf(context.Background(), UserGuest)
	if err != nil {
		t.Fatalf("RolesOf: %v", err)
	}
	if len(roles) != 1 || roles[0] != RoleGuest {
		t.Fatalf("unexpected guest roles: %v", roles)
	}
	if repo.rolesCalls != 0 {
		t.Fatalf("guest lookup should not hit the repository")
	}
}

func TestRolesOfAppendsImplicitRoles(t *testing.T) {
	repo := &stubRepo{roles: map[string][]string{
		"linda@example.com": {"Desk User"},
	}}
	svc := NewService(repo)

	roles, err := svc.RolesOf(context.Background(), "linda@example.com")
	if err != nil {
		t.Fatalf("RolesOf: %v", err)
	}
	for _, want := range []string{"Desk User", RoleAll, RoleGuest} {
		if !slices.Contains(roles, want) {
			t.Fatalf("roles %v missing %q", roles, want)
		}
	}
}

func TestHasRoleAdministratorBypass(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	ok, err := svc.HasRole(context.Background(), UserAdministrator, "Anything")
	if err != nil {
		t.Fatalf("HasRole: %v", err)
	}
	if !ok {
		t.Fatalf("administrator must pass every role check")
	}
	if repo.rolesCalls != 0 {
		t.Fatalf("administrator check should not hit the repository")
	}
}

func TestDeskSettingsMergesAcrossRoles(t *testing.T) {
	repo := &stubRepo{
		roles: map[string][]string{
			"linda@example.com": {"Desk User", "Report Viewer"},
		},
		desk: map[string]DeskSettings{
			"Desk User":     {SearchBar: true, Notifications: true},
			"Report Viewer": {Timeline: true, Dashboard: true},
		},
	}
	svc := NewService(repo)

	merged, err := svc.DeskSettings(context.Background(), "linda@example.com")
	if err != nil {
		t.Fatalf("DeskSettings: %v", err)
	}
	want := DeskSettings{SearchBar: true, Notifications: true, Timeline: true, Dashboard: true}
	if merged != want {
		t.Fatalf("unexpected merge: %+v", merged)
	}
}
