package app

// Version is the application release surfaced in the boot payload. Overridden
// at build time via -ldflags "-X github.com/atrium-hq/atrium/internal/app.Version=...".
var Version = "0.4.0"
