package boot_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/atrium-hq/atrium/internal/boot"
	"github.com/atrium-hq/atrium/internal/catalog"
	"github.com/atrium-hq/atrium/internal/i18n"
	"github.com/atrium-hq/atrium/internal/meta"
	"github.com/atrium-hq/atrium/internal/permissions"
	"github.com/atrium-hq/atrium/internal/rbac"
	"github.com/atrium-hq/atrium/internal/settings"
	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/users"
	_ "github.com/atrium-hq/atrium/testing"
)

type stubBootRepo struct {
	userInfo    map[string]boot.UserSummary
	userInfoErr error
	workspaces  []boot.Workspace
	pages       map[string]*boot.PageDoc
	notes       []boot.UnseenNote
	actions     []boot.SuccessAction
	homeFolder  string

	pageDocCalls int
}

func (s *stubBootRepo) UserInfo(ctx context.Context) (map[string]boot.UserSummary, error) {
	if s.userInfoErr != nil {
		return nil, s.userInfoErr
	}
	return s.userInfo, nil
}

func (s *stubBootRepo) AllowedWorkspaces(ctx context.Context, user string) ([]boot.Workspace, error) {
	return s.workspaces, nil
}

func (s *stubBootRepo) ModulePageMap(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for _, ws := range s.workspaces {
		if ws.Module != "" {
			if _, ok := out[ws.Module]; !ok {
				out[ws.Module] = ws.Name
			}
		}
	}
	return out, nil
}

func (s *stubBootRepo) Dashboards(ctx context.Context) ([]boot.Dashboard, error) {
	return []boot.Dashboard{{Name: "Utama"}}, nil
}

func (s *stubBootRepo) LetterHeads(ctx context.Context) (map[string]boot.LetterHead, error) {
	return map[string]boot.LetterHead{"Standar": {Header: "<h1>Atrium</h1>"}}, nil
}

func (s *stubBootRepo) HomeFolder(ctx context.Context) (string, error) {
	return s.homeFolder, nil
}

func (s *stubBootRepo) UnseenNotes(ctx context.Context, user string) ([]boot.UnseenNote, error) {
	return s.notes, nil
}

func (s *stubBootRepo) SuccessActions(ctx context.Context) ([]boot.SuccessAction, error) {
	return s.actions, nil
}

func (s *stubBootRepo) PageDoc(ctx context.Context, name string) (*boot.PageDoc, error) {
	s.pageDocCalls++
	if doc, ok := s.pages[name]; ok {
		return doc, nil
	}
	return nil, shared.ErrNotFound
}

type stubUsersRepo struct {
	users map[string]*users.User
}

func (s *stubUsersRepo) List(ctx context.Context) ([]users.User, error) { return nil, nil }

func (s *stubUsersRepo) Get(ctx context.Context, name string) (*users.User, error) {
	if u, ok := s.users[name]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubUsersRepo) Create(ctx context.Context, user *users.User, passwordHash string, roles []string) error {
	return nil
}

func (s *stubUsersRepo) UpdateProfile(ctx context.Context, name string, patch users.ProfilePatch) (*users.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubUsersRepo) SetEnabled(ctx context.Context, name string, enabled bool) error {
	return nil
}

type stubRBACRepo struct {
	roles map[string][]string
}

func (s *stubRBACRepo) UserRoles(ctx context.Context, user string) ([]string, error) {
	return s.roles[user], nil
}

func (s *stubRBACRepo) DeskProperties(ctx context.Context, roles []string) ([]rbac.DeskSettings, error) {
	return []rbac.DeskSettings{{SearchBar: true, Notifications: true}}, nil
}

type stubMetaRepo struct{}

func (stubMetaRepo) PreviewEnabledTypes(ctx context.Context) ([]string, error) {
	return []string{"Contact"}, nil
}

func (stubMetaRepo) PreviewOverrides(ctx context.Context) ([]meta.PreviewOverride, error) {
	return nil, nil
}

func (stubMetaRepo) SingleTypes(ctx context.Context) ([]string, error) {
	return []string{"System Settings"}, nil
}

func (stubMetaRepo) TreeTypes(ctx context.Context) ([]string, error) {
	return []string{"Account"}, nil
}

func (stubMetaRepo) TranslatedTypes(ctx context.Context) ([]string, error) {
	return []string{"Note"}, nil
}

func (stubMetaRepo) Layouts(ctx context.Context) ([]meta.Layout, error) {
	return []meta.Layout{{Name: "Contact Layout", Route: "contact", DocumentType: "Contact"}}, nil
}

type stubSettingsRepo struct {
	defaults settings.SystemDefaults
	singles  map[string]map[string]string
	scores   map[string]int64
}

func (s *stubSettingsRepo) Defaults(ctx context.Context) (settings.SystemDefaults, error) {
	return s.defaults, nil
}

func (s *stubSettingsRepo) Default(ctx context.Context, key string) (string, error) {
	return s.defaults[key], nil
}

func (s *stubSettingsRepo) SinglesDoc(ctx context.Context, doctype string) (map[string]string, error) {
	if fields, ok := s.singles[doctype]; ok {
		return fields, nil
	}
	return map[string]string{}, nil
}

func (s *stubSettingsRepo) NotificationSettings(ctx context.Context, user string) (*settings.NotificationSettings, error) {
	return nil, nil
}

func (s *stubSettingsRepo) EnergyScore(ctx context.Context, user string) (int64, error) {
	return s.scores[user], nil
}

type stubCatalogRepo struct{}

func (stubCatalogRepo) CustomRoleGrants(ctx context.Context, kind catalog.Kind, roles []string, conditions string) ([]catalog.Row, error) {
	return nil, nil
}

func (stubCatalogRepo) StandardRoleGrants(ctx context.Context, kind catalog.Kind, roles []string, conditions string) ([]catalog.Row, error) {
	return nil, nil
}

func (stubCatalogRepo) ZeroRolePages(ctx context.Context, conditions string) ([]catalog.Row, error) {
	return []catalog.Row{{Name: "open-page", Modified: time.Now(), Title: "Open Page"}}, nil
}

func (stubCatalogRepo) ReportTypes(ctx context.Context, names []string) (map[string]string, error) {
	return map[string]string{}, nil
}

type stubPermissionsRepo struct{}

func (stubPermissionsRepo) EnabledConditions(ctx context.Context, kind string) ([]string, error) {
	return nil, nil
}

type fixture struct {
	t         *testing.T
	repo      *stubBootRepo
	settings  *stubSettingsRepo
	registry  *boot.Registry
	assembler *boot.Assembler
	sessions  *shared.SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &stubBootRepo{
		userInfo: map[string]boot.UserSummary{
			"linda@example.com": {Name: "linda@example.com", Email: "linda@example.com", Fullname: "Linda Hartono"},
		},
		workspaces: []boot.Workspace{
			{Name: "Beranda", Title: "Beranda", Module: "Core", IsPublic: true},
		},
		pages: map[string]*boot.PageDoc{
			"ops-dash": {Doctype: "Page", Name: "ops-dash", Title: "Dasbor Operasi", Modified: time.Now()},
		},
		homeFolder: "Home",
	}
	usersRepo := &stubUsersRepo{users: map[string]*users.User{
		"linda@example.com": {
			Name:     "linda@example.com",
			Email:    "linda@example.com",
			FullName: "Linda Hartono",
			Language: "id",
			Enabled:  true,
		},
	}}
	rbacRepo := &stubRBACRepo{roles: map[string][]string{
		"linda@example.com": {"Desk User"},
	}}
	settingsRepo := &stubSettingsRepo{
		defaults: settings.SystemDefaults{
			"time_zone":         "Asia/Jakarta",
			"desktop:home_page": "ops-dash",
		},
		singles: map[string]map[string]string{
			"Print Settings":        {"print_style": "Classic", "font": "Default", "font_size": "9"},
			"Energy Point Settings": {"enabled": "1"},
		},
		scores: map[string]int64{"linda@example.com": 42},
	}

	rbacSvc := rbac.NewService(rbacRepo)
	resolver := catalog.NewResolver(stubCatalogRepo{}, catalog.NewCache(client), rbacSvc, permissions.NewService(stubPermissionsRepo{}), nil)
	settingsSvc := settings.NewService(settingsRepo, settings.NewDocumentCache(client, time.Minute), client, "/static/images/atrium-logo.svg")
	bundle, err := i18n.NewBundle("en")
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	registry := boot.NewRegistry()
	assembler := boot.NewAssembler(
		repo,
		users.NewService(usersRepo),
		rbacSvc,
		resolver,
		meta.NewService(stubMetaRepo{}),
		settingsSvc,
		bundle,
		registry,
		boot.Conf{SiteName: "atrium.localhost", MaxFileSize: 10485760, SocketIOPort: 9000, AppVersion: "0.4.0"},
		nil,
	)
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	return &fixture{
		t:         t,
		repo:      repo,
		settings:  settingsRepo,
		registry:  registry,
		assembler: assembler,
		sessions:  sessions,
	}
}

func (f *fixture) session(user string) *shared.Session {
	f.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/boot", nil)
	sess, err := f.sessions.Load(context.Background(), req)
	if err != nil {
		f.t.Fatalf("load session: %v", err)
	}
	if user != "" {
		sess.SetUser(user)
	}
	return sess
}

func TestBuildAuthenticatedPayload(t *testing.T) {
	f := newFixture(t)
	sess := f.session("linda@example.com")
	sess.Set("ipinfo", "103.10.20.30")

	info, err := f.assembler.Build(context.Background(), sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if info.User.Name != "linda@example.com" {
		t.Fatalf("unexpected user block name %q", info.User.Name)
	}
	for _, role := range []string{"Desk User", rbac.RoleAll, rbac.RoleGuest} {
		if !slices.Contains(info.User.Roles, role) {
			t.Fatalf("role %q missing from user block: %v", role, info.User.Roles)
		}
	}
	if info.SID != sess.ID {
		t.Fatalf("sid mismatch: %q vs %q", info.SID, sess.ID)
	}
	if _, ok := info.UserInfo["linda@example.com"]; !ok {
		t.Fatal("user_info missing current user")
	}
	if info.HomePage != "ops-dash" {
		t.Fatalf("expected configured home page, got %q", info.HomePage)
	}
	if len(info.Docs) != 2 {
		t.Fatalf("expected page doc and print settings in docs, got %d entries", len(info.Docs))
	}
	page, ok := info.Docs[0].(*boot.PageDoc)
	if !ok || page.Name != "ops-dash" {
		t.Fatalf("docs[0] is not the home page doc: %#v", info.Docs[0])
	}
	printDoc, ok := info.Docs[1].(settings.PrintSettings)
	if !ok || printDoc.Doctype != ":Print Settings" {
		t.Fatalf("docs[1] is not the print settings doc: %#v", info.Docs[1])
	}
	if info.PrintCSS == "" {
		t.Fatal("print css empty")
	}
	if info.Lang != "id" {
		t.Fatalf("expected user language id, got %q", info.Lang)
	}
	if info.Messages["Workspaces"] != "Ruang Kerja" {
		t.Fatalf("expected Indonesian catalog, got %q", info.Messages["Workspaces"])
	}
	if _, ok := info.PageInfo["open-page"]; !ok {
		t.Fatalf("page_info missing open page: %v", info.PageInfo)
	}
	if info.Versions["atrium"] != "0.4.0" {
		t.Fatalf("unexpected versions map: %v", info.Versions)
	}
	if info.Points != 42 {
		t.Fatalf("expected 42 energy points, got %d", info.Points)
	}
	if !info.EnergyPointsEnabled {
		t.Fatal("energy points should be enabled")
	}
	if len(info.TimezoneInfo.Zones) == 0 {
		t.Fatal("timezone table empty")
	}
	if info.SysDefault["time_zone"] != "Asia/Jakarta" {
		t.Fatalf("sysdefaults missing time zone: %v", info.SysDefault)
	}
	if info.IPInfo != "103.10.20.30" {
		t.Fatalf("ipinfo not carried over: %q", info.IPInfo)
	}
	if !info.NotificationSettings.Enabled {
		t.Fatal("notification settings should default to enabled")
	}
	if !info.DeskSettings.SearchBar {
		t.Fatal("desk settings merge lost search bar")
	}
	if info.HomeFolder != "Home" {
		t.Fatalf("unexpected home folder %q", info.HomeFolder)
	}
}

func TestBuildGuestReducedPayload(t *testing.T) {
	f := newFixture(t)
	sess := f.session("")

	info, err := f.assembler.Build(context.Background(), sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if info.User.Name != rbac.UserGuest {
		t.Fatalf("expected Guest user block, got %q", info.User.Name)
	}
	if len(info.User.Roles) != 1 || info.User.Roles[0] != rbac.RoleGuest {
		t.Fatalf("unexpected guest roles: %v", info.User.Roles)
	}
	if info.HomePage != "" {
		t.Fatalf("guest must not get a home page, got %q", info.HomePage)
	}
	if info.UserInfo != nil {
		t.Fatal("guest must not receive user_info")
	}
	if info.SID != "" {
		t.Fatalf("guest must not receive a sid, got %q", info.SID)
	}
	if f.repo.pageDocCalls != 0 {
		t.Fatalf("home page resolution ran for guest: %d calls", f.repo.pageDocCalls)
	}
	if info.Notes != nil {
		t.Fatal("guest must not receive notes")
	}
	if len(info.Docs) != 1 {
		t.Fatalf("guest docs should hold print settings only, got %d", len(info.Docs))
	}
}

func TestBuildHomePageMissingFallsBack(t *testing.T) {
	f := newFixture(t)
	f.settings.defaults["desktop:home_page"] = "missing-page"
	sess := f.session("linda@example.com")

	log := &shared.MessageLog{}
	log.Add("catatan sebelumnya")
	ctx := shared.ContextWithMessageLog(context.Background(), log)

	info, err := f.assembler.Build(ctx, sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if info.HomePage != "Workspaces" {
		t.Fatalf("expected Workspaces fallback, got %q", info.HomePage)
	}
	if log.Len() != 1 {
		t.Fatalf("exactly the loader notice should have been popped, log has %d entries", log.Len())
	}
	if len(info.Docs) != 1 {
		t.Fatalf("missing page must not land in docs, got %d entries", len(info.Docs))
	}
}

func TestBuildHomePageForbiddenFallsBack(t *testing.T) {
	f := newFixture(t)
	f.repo.pages["ops-dash"].Roles = []string{rbac.RoleSystemManager}
	sess := f.session("linda@example.com")

	log := &shared.MessageLog{}
	ctx := shared.ContextWithMessageLog(context.Background(), log)

	info, err := f.assembler.Build(ctx, sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if info.HomePage != "Workspaces" {
		t.Fatalf("expected Workspaces fallback, got %q", info.HomePage)
	}
	if log.Len() != 0 {
		t.Fatalf("permission notice should have been popped, log has %d entries", log.Len())
	}
	if len(info.Docs) != 1 {
		t.Fatalf("forbidden page must not land in docs, got %d entries", len(info.Docs))
	}
}

func TestBuildAbortsOnLoaderError(t *testing.T) {
	f := newFixture(t)
	f.repo.userInfoErr = errors.New("koneksi terputus")
	sess := f.session("linda@example.com")

	info, err := f.assembler.Build(context.Background(), sess)
	if err == nil {
		t.Fatal("expected build to abort")
	}
	if info != nil {
		t.Fatal("no partial payload may be returned")
	}
}

func TestBuildExtensionRunsAfterLoaders(t *testing.T) {
	f := newFixture(t)
	f.registry.RegisterExtension(func(ctx context.Context, sess *shared.Session, info *boot.BootInfo) error {
		if info.AppLogoURL == "" {
			t.Error("extension ran before the loaders finished")
		}
		info.Sitename = "disesuaikan"
		return nil
	})
	sess := f.session("linda@example.com")

	info, err := f.assembler.Build(context.Background(), sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if info.Sitename != "disesuaikan" {
		t.Fatalf("extension mutation lost: %q", info.Sitename)
	}
}

func TestBuildExtensionErrorAborts(t *testing.T) {
	f := newFixture(t)
	f.registry.RegisterExtension(func(ctx context.Context, sess *shared.Session, info *boot.BootInfo) error {
		return errors.New("ekstensi gagal")
	})
	sess := f.session("linda@example.com")

	if _, err := f.assembler.Build(context.Background(), sess); err == nil {
		t.Fatal("expected extension error to abort the build")
	}
}

func TestBuildCalendarsSorted(t *testing.T) {
	f := newFixture(t)
	f.registry.RegisterCalendar("Tugas")
	f.registry.RegisterCalendar("Absensi")
	f.registry.RegisterTreeview("Account")
	sess := f.session("linda@example.com")

	info, err := f.assembler.Build(context.Background(), sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !slices.Equal(info.Calendars, []string{"Absensi", "Tugas"}) {
		t.Fatalf("calendars not sorted: %v", info.Calendars)
	}
	if !slices.Equal(info.Treeviews, []string{"Account"}) {
		t.Fatalf("unexpected treeviews: %v", info.Treeviews)
	}
}
