package catalog

import "time"

// Kind selects which listing the resolver produces.
type Kind string

// Supported listing kinds.
const (
	KindPage   Kind = "Page"
	KindReport Kind = "Report"
)

// Entry is the per-entity metadata the client receives for one visible page
// or report.
type Entry struct {
	Modified   time.Time `json:"modified"`
	Title      string    `json:"title,omitempty"`
	RefDoctype string    `json:"ref_doctype,omitempty"`
	ReportType string    `json:"report_type,omitempty"`
}

// Listing maps entity name to its metadata.
type Listing map[string]Entry

// Options tunes a single resolve call.
type Options struct {
	// Cache serves a previously computed listing when one is still live. The
	// resolver refreshes the stored listing after every recompute regardless.
	Cache bool
}
