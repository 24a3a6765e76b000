package rbac

// Reserved principals.
const (
	UserAdministrator = "Administrator"
	UserGuest         = "Guest"
)

// Built-in roles. Every authenticated user implicitly carries RoleAll and
// RoleGuest on top of explicit memberships.
const (
	RoleAll           = "All"
	RoleGuest         = "Guest"
	RoleSystemManager = "System Manager"
)

// DeskSettings aggregates desk feature toggles across a user's roles. A
// feature is on when any role switches it on.
type DeskSettings struct {
	SearchBar     bool `json:"search_bar"`
	Notifications bool `json:"notifications"`
	ListSidebar   bool `json:"list_sidebar"`
	BulkActions   bool `json:"bulk_actions"`
	ViewSwitcher  bool `json:"view_switcher"`
	FormSidebar   bool `json:"form_sidebar"`
	Timeline      bool `json:"timeline"`
	Dashboard     bool `json:"dashboard"`
}

func (d *DeskSettings) merge(other DeskSettings) {
	d.SearchBar = d.SearchBar || other.SearchBar
	d.Notifications = d.Notifications || other.Notifications
	d.ListSidebar = d.ListSidebar || other.ListSidebar
	d.BulkActions = d.BulkActions || other.BulkActions
	d.ViewSwitcher = d.ViewSwitcher || other.ViewSwitcher
	d.FormSidebar = d.FormSidebar || other.FormSidebar
	d.Timeline = d.Timeline || other.Timeline
	d.Dashboard = d.Dashboard || other.Dashboard
}
