package settings

// SystemDefaults is the key/value defaults map served to the client.
type SystemDefaults map[string]string

// PrintSettings mirrors the one-row print configuration document. The
// Doctype marker distinguishes it from regular documents in the boot bundle.
type PrintSettings struct {
	Doctype                string `json:"doctype"`
	PrintStyle             string `json:"print_style,omitempty"`
	Font                   string `json:"font,omitempty"`
	FontSize               int    `json:"font_size,omitempty"`
	WithLetterhead         bool   `json:"with_letterhead"`
	RepeatHeaderFooter     bool   `json:"repeat_header_footer"`
	AllowPrintForDraft     bool   `json:"allow_print_for_draft"`
	AllowPrintForCancelled bool   `json:"allow_print_for_cancelled"`
}

// NavbarSettings drives the desk top bar.
type NavbarSettings struct {
	AppLogo            string `json:"app_logo,omitempty"`
	LogoWidth          int    `json:"logo_width,omitempty"`
	AnnouncementWidget string `json:"announcement_widget,omitempty"`
}

// NotificationSettings carries one user's notification preferences.
type NotificationSettings struct {
	User          string `json:"user"`
	Enabled       bool   `json:"enabled"`
	NotifyByEmail bool   `json:"notify_by_email"`
}

// Singles doctypes read by the service.
const (
	doctypePrintSettings       = "Print Settings"
	doctypeNavbarSettings      = "Navbar Settings"
	doctypeEnergyPointSettings = "Energy Point Settings"
)
