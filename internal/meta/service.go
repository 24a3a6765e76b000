package meta

import (
	"context"
	"slices"

	"github.com/spf13/cast"
)

// Service exposes the entity type registry to the boot assembler.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LinkPreviewTypes returns the entity types whose link previews are active.
// Overrides apply in stored order on top of the globally flagged set: a falsy
// value removes the first matching occurrence when the type is present, every
// other override appends. Duplicates can occur and are kept as-is.
func (s *Service) LinkPreviewTypes(ctx context.Context) ([]string, error) {
	types, err := s.repo.PreviewEnabledTypes(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := s.repo.PreviewOverrides(ctx)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		idx := slices.Index(types, override.EntityType)
		if cast.ToInt(override.Value) == 0 && idx >= 0 {
			types = slices.Delete(types, idx, idx+1)
			continue
		}
		types = append(types, override.EntityType)
	}
	return types, nil
}

// SingleTypes returns entity types that exist as exactly one document.
func (s *Service) SingleTypes(ctx context.Context) ([]string, error) {
	return s.repo.SingleTypes(ctx)
}

// TreeTypes returns entity types organised as nested sets.
func (s *Service) TreeTypes(ctx context.Context) ([]string, error) {
	return s.repo.TreeTypes(ctx)
}

// TranslatedTypes returns entity types whose records are translated.
func (s *Service) TranslatedTypes(ctx context.Context) ([]string, error) {
	return s.repo.TranslatedTypes(ctx)
}

// Layouts returns the routes registered for readable entity types.
func (s *Service) Layouts(ctx context.Context) ([]Layout, error) {
	return s.repo.Layouts(ctx)
}
