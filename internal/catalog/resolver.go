package catalog

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"
)

// RoleSource yields the role set for a user.
type RoleSource interface {
	RolesOf(ctx context.Context, user string) ([]string, error)
}

// ConditionSource yields the permission fragment scoping branch queries for a
// user. An empty fragment means no extra filtering.
type ConditionSource interface {
	QueryConditions(ctx context.Context, kind, user string) (string, error)
}

// Resolver computes the permission-scoped page and report listings served to
// the desk client.
type Resolver struct {
	repo    Repository
	cache   *Cache
	roles   RoleSource
	perms   ConditionSource
	metrics *Metrics
	group   singleflight.Group
}

// NewResolver wires a resolver from its collaborators.
func NewResolver(repo Repository, cache *Cache, roles RoleSource, perms ConditionSource, metrics *Metrics) *Resolver {
	return &Resolver{repo: repo, cache: cache, roles: roles, perms: perms, metrics: metrics}
}

// AllowedPages returns the pages visible to the user.
func (r *Resolver) AllowedPages(ctx context.Context, user string, opts Options) (Listing, error) {
	return r.resolve(ctx, KindPage, user, opts)
}

// AllowedReports returns the reports visible to the user.
func (r *Resolver) AllowedReports(ctx context.Context, user string, opts Options) (Listing, error) {
	return r.resolve(ctx, KindReport, user, opts)
}

// AllowedReportNames returns just the visible report names, sorted. Cached
// listings are served when still live.
func (r *Resolver) AllowedReportNames(ctx context.Context, user string) ([]string, error) {
	listing, err := r.AllowedReports(ctx, user, Options{Cache: true})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(listing))
	for name := range listing {
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (r *Resolver) resolve(ctx context.Context, kind Kind, user string, opts Options) (Listing, error) {
	if opts.Cache {
		cached, ok, err := r.cache.Get(ctx, kind, user)
		if err != nil {
			return nil, err
		}
		if ok {
			r.metrics.CacheHit(kind)
			return cached, nil
		}
		r.metrics.CacheMiss(kind)
	}
	result, err, _ := r.single(ctx, string(kind)+":"+user, func(ctx context.Context) (interface{}, error) {
		return r.compute(ctx, kind, user)
	})
	if err != nil {
		return nil, err
	}
	return result.(Listing), nil
}

func (r *Resolver) single(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := r.group.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}

func (r *Resolver) compute(ctx context.Context, kind Kind, user string) (Listing, error) {
	start := time.Now()
	roles, err := r.roles.RolesOf(ctx, user)
	if err != nil {
		return nil, err
	}
	conditions, err := r.perms.QueryConditions(ctx, string(kind), user)
	if err != nil {
		return nil, err
	}

	listing := Listing{}

	// Custom overrides seed the listing and win over every later branch.
	custom, err := r.repo.CustomRoleGrants(ctx, kind, roles, conditions)
	if err != nil {
		return nil, err
	}
	for _, row := range custom {
		listing[row.Name] = Entry{Modified: row.Modified, Title: row.Title, RefDoctype: row.RefDoctype}
	}

	standard, err := r.repo.StandardRoleGrants(ctx, kind, roles, conditions)
	if err != nil {
		return nil, err
	}
	for _, row := range standard {
		if _, ok := listing[row.Name]; ok {
			continue
		}
		entry := Entry{Modified: row.Modified, Title: row.Title}
		if kind == KindReport {
			entry.RefDoctype = row.RefDoctype
		}
		listing[row.Name] = entry
	}

	switch kind {
	case KindPage:
		// Pages with no role attachment are open to everyone.
		open, err := r.repo.ZeroRolePages(ctx, conditions)
		if err != nil {
			return nil, err
		}
		for _, row := range open {
			if _, ok := listing[row.Name]; ok {
				continue
			}
			listing[row.Name] = Entry{Modified: row.Modified, Title: row.Title}
		}
	case KindReport:
		names := make([]string, 0, len(listing))
		for name := range listing {
			names = append(names, name)
		}
		types, err := r.repo.ReportTypes(ctx, names)
		if err != nil {
			return nil, err
		}
		for name, reportType := range types {
			entry, ok := listing[name]
			if !ok {
				continue
			}
			entry.ReportType = reportType
			listing[name] = entry
		}
	}

	if err := r.cache.Set(ctx, kind, user, listing); err != nil {
		return nil, err
	}
	r.metrics.ObserveResolve(kind, time.Since(start))
	return listing, nil
}
