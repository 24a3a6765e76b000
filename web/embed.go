package web

import "embed"

// Static embeds the assets served under /static/.
//
//go:embed static
var Static embed.FS
