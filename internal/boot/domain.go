package boot

import (
	"time"

	"github.com/atrium-hq/atrium/internal/catalog"
	"github.com/atrium-hq/atrium/internal/meta"
	"github.com/atrium-hq/atrium/internal/rbac"
	"github.com/atrium-hq/atrium/internal/settings"
	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/timezones"
)

// BootInfo is the aggregate payload handed to the desk client right after
// login. Every field the client needs to render without further round trips
// lives here. Optional fields carry omitempty so reduced payloads (Guest)
// stay small.
type BootInfo struct {
	User       UserBlock               `json:"user"`
	Sitename   string                  `json:"sitename"`
	SysDefault settings.SystemDefaults `json:"sysdefaults"`
	ServerDate string                  `json:"server_date"`

	// Only for authenticated sessions.
	UserInfo map[string]UserSummary `json:"user_info,omitempty"`
	SID      string                 `json:"sid,omitempty"`

	AllowedWorkspaces []Workspace           `json:"allowed_workspaces"`
	ModulePageMap     map[string]string     `json:"module_page_map"`
	Dashboards        []Dashboard           `json:"dashboards"`
	LetterHeads       map[string]LetterHead `json:"letter_heads"`
	DoctypeLayouts    []meta.Layout         `json:"doctype_layouts"`
	SingleTypes       []string              `json:"single_types"`
	TreeDoctypes      []string              `json:"tree_doctypes"`

	// Absent for Guest sessions.
	HomePage string `json:"home_page,omitempty"`

	PageInfo catalog.Listing `json:"page_info"`

	Lang               string            `json:"lang"`
	Messages           map[string]string `json:"__messages"`
	LangDict           map[string]string `json:"lang_dict"`
	TranslatedDoctypes []string          `json:"translated_doctypes"`

	TimezoneInfo timezones.Info `json:"timezone_info"`

	MaxFileSize   int64 `json:"max_file_size"`
	DeveloperMode bool  `json:"developer_mode,omitempty"`
	SocketIOPort  int   `json:"socketio_port,omitempty"`

	PrintCSS string `json:"print_css"`

	HomeFolder           string                        `json:"home_folder,omitempty"`
	NavbarSettings       settings.NavbarSettings       `json:"navbar_settings"`
	NotificationSettings settings.NotificationSettings `json:"notification_settings"`

	IPInfo string `json:"ipinfo,omitempty"`

	// Documents preloaded for the client: the home page doc plus the print
	// settings doc marked with the ":Print Settings" doctype.
	Docs []any `json:"docs"`

	Versions         map[string]string `json:"versions"`
	ErrorReportEmail string            `json:"error_report_email,omitempty"`
	Calendars        []string          `json:"calendars"`
	Treeviews        []string          `json:"treeviews"`
	SuccessActions   []SuccessAction   `json:"success_action"`

	EnergyPointsEnabled bool  `json:"energy_points_enabled"`
	Points              int64 `json:"points"`

	LinkPreviewDoctypes []string          `json:"link_preview_doctypes"`
	DeskSettings        rbac.DeskSettings `json:"desk_settings"`
	AppLogoURL          string            `json:"app_logo_url"`

	Notes []UnseenNote `json:"notes,omitempty"`

	// Notices pushed by loaders during the build and not consumed by a
	// fallback, handed to the client for display.
	ServerMessages []shared.ServerMessage `json:"_server_messages,omitempty"`
}

// UserBlock is the current-user section of the boot payload.
type UserBlock struct {
	Name      string                  `json:"name"`
	Email     string                  `json:"email,omitempty"`
	FullName  string                  `json:"full_name,omitempty"`
	UserImage string                  `json:"user_image,omitempty"`
	UserType  string                  `json:"user_type,omitempty"`
	Language  string                  `json:"language,omitempty"`
	TimeZone  string                  `json:"time_zone,omitempty"`
	Roles     []string                `json:"roles"`
	Defaults  settings.SystemDefaults `json:"defaults,omitempty"`
}

// UserSummary is one entry of the user_info map used by the client to render
// avatars and mentions without extra lookups.
type UserSummary struct {
	Name              string `json:"name"`
	Fullname          string `json:"fullname,omitempty"`
	Image             string `json:"image,omitempty"`
	Gender            string `json:"gender,omitempty"`
	Email             string `json:"email"`
	Bio               string `json:"bio,omitempty"`
	Location          string `json:"location,omitempty"`
	Interest          string `json:"interest,omitempty"`
	BannerImage       string `json:"banner_image,omitempty"`
	AllowedInMentions bool   `json:"allowed_in_mentions,omitempty"`
	UserType          string `json:"user_type,omitempty"`
}

// Workspace is a sidebar workspace visible to the current user.
type Workspace struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Module   string `json:"module,omitempty"`
	IsPublic bool   `json:"is_public"`
}

// Dashboard names a dashboard available to the desk.
type Dashboard struct {
	Name string `json:"name"`
}

// LetterHead carries the rendered header and footer of one letter head.
type LetterHead struct {
	Header string `json:"header"`
	Footer string `json:"footer"`
}

// SuccessAction configures the dialog shown after a successful document save.
type SuccessAction struct {
	Name          string `json:"name"`
	RefDoctype    string `json:"ref_doctype"`
	Message       string `json:"message,omitempty"`
	NextActions   string `json:"next_actions,omitempty"`
	ActionTimeout int    `json:"action_timeout,omitempty"`
}

// UnseenNote is a login notice the current user has not acknowledged yet.
type UnseenNote struct {
	Name               string `json:"name"`
	Title              string `json:"title"`
	Content            string `json:"content"`
	NotifyOnEveryLogin bool   `json:"notify_on_every_login"`
}

// PageDoc is the home page document preloaded into the docs list.
type PageDoc struct {
	Doctype  string    `json:"doctype"`
	Name     string    `json:"name"`
	Title    string    `json:"title,omitempty"`
	Modified time.Time `json:"modified"`
	Roles    []string  `json:"roles,omitempty"`
}
