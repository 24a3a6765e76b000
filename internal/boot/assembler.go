package boot

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/atrium-hq/atrium/internal/catalog"
	"github.com/atrium-hq/atrium/internal/i18n"
	"github.com/atrium-hq/atrium/internal/meta"
	"github.com/atrium-hq/atrium/internal/rbac"
	"github.com/atrium-hq/atrium/internal/settings"
	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/timezones"
	"github.com/atrium-hq/atrium/internal/users"
)

// Conf carries the deployment values surfaced verbatim in the boot payload.
type Conf struct {
	SiteName         string
	MaxFileSize      int64
	DeveloperMode    bool
	SocketIOPort     int
	ErrorReportEmail string
	AppVersion       string
}

// Assembler builds the boot payload for one session. Loaders run strictly
// in sequence; the first error aborts the build and no partial payload is
// ever returned.
type Assembler struct {
	repo     Repository
	users    *users.Service
	roles    *rbac.Service
	resolver *catalog.Resolver
	meta     *meta.Service
	settings *settings.Service
	bundle   *i18n.Bundle
	registry *Registry
	conf     Conf
	metrics  *Metrics
}

// NewAssembler wires the assembler with its collaborators.
func NewAssembler(
	repo Repository,
	usersSvc *users.Service,
	rolesSvc *rbac.Service,
	resolver *catalog.Resolver,
	metaSvc *meta.Service,
	settingsSvc *settings.Service,
	bundle *i18n.Bundle,
	registry *Registry,
	conf Conf,
	metrics *Metrics,
) *Assembler {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Assembler{
		repo:     repo,
		users:    usersSvc,
		roles:    rolesSvc,
		resolver: resolver,
		meta:     metaSvc,
		settings: settingsSvc,
		bundle:   bundle,
		registry: registry,
		conf:     conf,
		metrics:  metrics,
	}
}

// Build assembles the payload for the session's user. Anonymous sessions
// are treated as Guest and receive a reduced payload.
func (a *Assembler) Build(ctx context.Context, sess *shared.Session) (*BootInfo, error) {
	start := time.Now()
	info, err := a.build(ctx, sess)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	a.metrics.ObserveBuild(outcome, time.Since(start))
	return info, err
}

func (a *Assembler) build(ctx context.Context, sess *shared.Session) (*BootInfo, error) {
	user := rbac.UserGuest
	if sess != nil && sess.User() != "" {
		user = sess.User()
	}

	roles, err := a.roles.RolesOf(ctx, user)
	if err != nil {
		return nil, err
	}
	defaults, err := a.settings.Defaults(ctx)
	if err != nil {
		return nil, err
	}

	info := &BootInfo{}
	docs := make([]any, 0, 2)

	userBlock, err := a.userBlock(ctx, user, roles, defaults)
	if err != nil {
		return nil, err
	}
	info.User = userBlock

	info.Sitename = a.conf.SiteName
	info.SysDefault = defaults
	info.ServerDate = time.Now().Format("2006-01-02")

	if user != rbac.UserGuest {
		userInfo, err := a.repo.UserInfo(ctx)
		if err != nil {
			return nil, err
		}
		info.UserInfo = userInfo
		if sess != nil {
			info.SID = sess.ID
		}
	}

	if info.AllowedWorkspaces, err = a.repo.AllowedWorkspaces(ctx, user); err != nil {
		return nil, err
	}
	if info.ModulePageMap, err = a.repo.ModulePageMap(ctx); err != nil {
		return nil, err
	}
	if info.Dashboards, err = a.repo.Dashboards(ctx); err != nil {
		return nil, err
	}
	if info.LetterHeads, err = a.repo.LetterHeads(ctx); err != nil {
		return nil, err
	}
	if info.DoctypeLayouts, err = a.meta.Layouts(ctx); err != nil {
		return nil, err
	}
	if info.SingleTypes, err = a.meta.SingleTypes(ctx); err != nil {
		return nil, err
	}
	if info.TreeDoctypes, err = a.meta.TreeTypes(ctx); err != nil {
		return nil, err
	}

	if user != rbac.UserGuest {
		if err := a.addHomePage(ctx, info, &docs, user, roles); err != nil {
			return nil, err
		}
	}

	if info.PageInfo, err = a.resolver.AllowedPages(ctx, user, catalog.Options{}); err != nil {
		return nil, err
	}

	lang := a.bundle.Resolve(userBlock.Language)
	info.Lang = lang
	info.Messages = a.bundle.Messages(lang)

	if info.TimezoneInfo, err = timezones.Table(); err != nil {
		return nil, err
	}

	info.MaxFileSize = a.conf.MaxFileSize
	info.DeveloperMode = a.conf.DeveloperMode
	info.SocketIOPort = a.conf.SocketIOPort

	printSettings, err := a.settings.PrintSettings(ctx)
	if err != nil {
		return nil, err
	}
	docs = append(docs, printSettings)
	info.PrintCSS = a.settings.PrintCSS(printSettings.PrintStyle)

	if info.HomeFolder, err = a.repo.HomeFolder(ctx); err != nil {
		return nil, err
	}
	if info.NavbarSettings, err = a.settings.NavbarSettings(ctx); err != nil {
		return nil, err
	}
	if info.NotificationSettings, err = a.settings.NotificationSettings(ctx, user); err != nil {
		return nil, err
	}

	if sess != nil {
		if ipinfo := sess.Get("ipinfo"); ipinfo != "" {
			info.IPInfo = ipinfo
		}
	}

	info.Docs = docs

	info.Versions = map[string]string{"atrium": a.conf.AppVersion}
	info.ErrorReportEmail = a.conf.ErrorReportEmail
	info.Calendars = a.registry.Calendars()
	info.Treeviews = a.registry.Treeviews()
	info.LangDict = a.bundle.LangDict()

	if info.SuccessActions, err = a.repo.SuccessActions(ctx); err != nil {
		return nil, err
	}
	if info.EnergyPointsEnabled, err = a.settings.EnergyPointsEnabled(ctx); err != nil {
		return nil, err
	}
	if info.Points, err = a.settings.EnergyPoints(ctx, user); err != nil {
		return nil, err
	}
	if info.LinkPreviewDoctypes, err = a.meta.LinkPreviewTypes(ctx); err != nil {
		return nil, err
	}
	if info.DeskSettings, err = a.roles.DeskSettings(ctx, user); err != nil {
		return nil, err
	}
	if info.AppLogoURL, err = a.settings.AppLogoURL(ctx); err != nil {
		return nil, err
	}
	if info.TranslatedDoctypes, err = a.meta.TranslatedTypes(ctx); err != nil {
		return nil, err
	}
	if user != rbac.UserGuest {
		if info.Notes, err = a.repo.UnseenNotes(ctx, user); err != nil {
			return nil, err
		}
	}

	for _, extension := range a.registry.Extensions() {
		if err := extension(ctx, sess, info); err != nil {
			return nil, err
		}
	}

	return info, nil
}

// userBlock loads the current-user section. A Guest session without a users
// row still gets a minimal block.
func (a *Assembler) userBlock(ctx context.Context, user string, roles []string, defaults settings.SystemDefaults) (UserBlock, error) {
	profile, err := a.users.Get(ctx, user)
	if err != nil {
		if user == rbac.UserGuest && errors.Is(err, shared.ErrNotFound) {
			return UserBlock{Name: rbac.UserGuest, Roles: roles}, nil
		}
		return UserBlock{}, err
	}
	return UserBlock{
		Name:      profile.Name,
		Email:     profile.Email,
		FullName:  profile.FullName,
		UserImage: profile.UserImage,
		UserType:  profile.UserType,
		Language:  profile.Language,
		TimeZone:  profile.TimeZone,
		Roles:     roles,
		Defaults:  defaults,
	}, nil
}

// addHomePage resolves the configured home page. A missing page or one the
// user may not open downgrades to the Workspaces fallback and removes the
// notice the loader pushed, so the client does not see a duplicate error.
func (a *Assembler) addHomePage(ctx context.Context, info *BootInfo, docs *[]any, user string, roles []string) error {
	name, err := a.settings.Default(ctx, "desktop:home_page")
	if err != nil {
		return err
	}

	log := shared.MessageLogFromContext(ctx)
	doc, err := a.loadHomePage(ctx, log, name, user, roles)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrPermissionDenied) {
			log.Pop()
			info.HomePage = "Workspaces"
			return nil
		}
		return err
	}
	*docs = append(*docs, doc)
	info.HomePage = doc.Name
	return nil
}

// loadHomePage fetches the page doc and checks its role requirements. Both
// rejection paths push one user-facing notice before returning.
func (a *Assembler) loadHomePage(ctx context.Context, log *shared.MessageLog, name, user string, roles []string) (*PageDoc, error) {
	doc, err := a.repo.PageDoc(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Add("Halaman " + name + " tidak ditemukan")
		}
		return nil, err
	}
	if !pageAllowed(doc, user, roles) {
		log.Add("Anda tidak berhak membuka halaman " + doc.Name)
		return nil, shared.ErrPermissionDenied
	}
	return doc, nil
}

// pageAllowed reports whether the user may open the page. Pages without role
// attachments are open to everyone.
func pageAllowed(doc *PageDoc, user string, roles []string) bool {
	if user == rbac.UserAdministrator {
		return true
	}
	if len(doc.Roles) == 0 {
		return true
	}
	for _, required := range doc.Roles {
		if slices.Contains(roles, required) {
			return true
		}
	}
	return false
}
