package boot

import (
	"context"
	"slices"
	"sync"

	"github.com/atrium-hq/atrium/internal/shared"
)

// Extension mutates the boot payload after the built-in loaders ran. An
// error aborts the whole build.
type Extension func(ctx context.Context, sess *shared.Session, info *BootInfo) error

// Registry collects the pluggable boot contributions: payload extensions,
// calendar sources and treeview doctypes. Registration happens during
// startup; reads are safe from concurrent requests afterwards.
type Registry struct {
	mu         sync.RWMutex
	extensions []Extension
	calendars  []string
	treeviews  []string
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterExtension appends a payload extension. Extensions run in
// registration order, after every built-in loader.
func (r *Registry) RegisterExtension(fn Extension) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions = append(r.extensions, fn)
}

// RegisterCalendar announces a calendar source by name.
func (r *Registry) RegisterCalendar(name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calendars = append(r.calendars, name)
}

// RegisterTreeview announces a treeview doctype.
func (r *Registry) RegisterTreeview(name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.treeviews = append(r.treeviews, name)
}

// Extensions returns the registered extensions in order.
func (r *Registry) Extensions() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Extension, len(r.extensions))
	copy(out, r.extensions)
	return out
}

// Calendars returns the calendar names sorted alphabetically.
func (r *Registry) Calendars() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.calendars))
	copy(out, r.calendars)
	slices.Sort(out)
	return out
}

// Treeviews returns the treeview doctypes in registration order.
func (r *Registry) Treeviews() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.treeviews))
	copy(out, r.treeviews)
	return out
}
