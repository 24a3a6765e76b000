package settings

import (
	"embed"
	"strings"
)

//go:embed styles/*.css
var styleFS embed.FS

// DefaultPrintStyle is used when the configured style is empty or unknown.
const DefaultPrintStyle = "Redesign"

// PrintStyle returns the CSS for the named print style.
func PrintStyle(name string) string {
	if name == "" {
		name = DefaultPrintStyle
	}
	data, err := styleFS.ReadFile("styles/" + strings.ToLower(name) + ".css")
	if err != nil {
		data, _ = styleFS.ReadFile("styles/" + strings.ToLower(DefaultPrintStyle) + ".css")
	}
	return string(data)
}
