package settings

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"
)

const energyPointsHashKey = "energy_points"

// Service exposes system defaults, singles documents and per-user settings
// to the boot assembler.
type Service struct {
	repo    Repository
	docs    *DocumentCache
	redis   *redis.Client
	appLogo string
}

// NewService constructs a Service. appLogo is the fallback logo URL used when
// the navbar settings carry none.
func NewService(repo Repository, docs *DocumentCache, client *redis.Client, appLogo string) *Service {
	return &Service{repo: repo, docs: docs, redis: client, appLogo: appLogo}
}

// Defaults returns the system defaults map.
func (s *Service) Defaults(ctx context.Context) (SystemDefaults, error) {
	return s.repo.Defaults(ctx)
}

// Default returns one system default, empty when unset.
func (s *Service) Default(ctx context.Context, key string) (string, error) {
	return s.repo.Default(ctx, key)
}

// PrintSettings returns the print configuration document, served from cache
// when live. The doctype marker is part of the cached value.
func (s *Service) PrintSettings(ctx context.Context) (PrintSettings, error) {
	var doc PrintSettings
	err := s.docs.Fetch(ctx, doctypePrintSettings, &doc, func(ctx context.Context) (interface{}, error) {
		fields, err := s.repo.SinglesDoc(ctx, doctypePrintSettings)
		if err != nil {
			return nil, err
		}
		return PrintSettings{
			Doctype:                ":" + doctypePrintSettings,
			PrintStyle:             fields["print_style"],
			Font:                   fields["font"],
			FontSize:               cast.ToInt(fields["font_size"]),
			WithLetterhead:         cast.ToInt(fields["with_letterhead"]) != 0,
			RepeatHeaderFooter:     cast.ToInt(fields["repeat_header_footer"]) != 0,
			AllowPrintForDraft:     cast.ToInt(fields["allow_print_for_draft"]) != 0,
			AllowPrintForCancelled: cast.ToInt(fields["allow_print_for_cancelled"]) != 0,
		}, nil
	})
	return doc, err
}

// PrintCSS returns the stylesheet for the configured print style.
func (s *Service) PrintCSS(style string) string {
	return PrintStyle(style)
}

// NavbarSettings returns the navbar document, served from cache when live.
func (s *Service) NavbarSettings(ctx context.Context) (NavbarSettings, error) {
	var doc NavbarSettings
	err := s.docs.Fetch(ctx, doctypeNavbarSettings, &doc, func(ctx context.Context) (interface{}, error) {
		fields, err := s.repo.SinglesDoc(ctx, doctypeNavbarSettings)
		if err != nil {
			return nil, err
		}
		return NavbarSettings{
			AppLogo:            fields["app_logo"],
			LogoWidth:          cast.ToInt(fields["logo_width"]),
			AnnouncementWidget: fields["announcement_widget"],
		}, nil
	})
	return doc, err
}

// AppLogoURL returns the navbar logo, falling back to the configured default.
func (s *Service) AppLogoURL(ctx context.Context) (string, error) {
	navbar, err := s.NavbarSettings(ctx)
	if err != nil {
		return "", err
	}
	if navbar.AppLogo != "" {
		return navbar.AppLogo, nil
	}
	return s.appLogo, nil
}

// NotificationSettings returns the user's stored preferences, or enabled-by
// default values when none exist yet.
func (s *Service) NotificationSettings(ctx context.Context, user string) (NotificationSettings, error) {
	stored, err := s.repo.NotificationSettings(ctx, user)
	if err != nil {
		return NotificationSettings{}, err
	}
	if stored == nil {
		return NotificationSettings{User: user, Enabled: true, NotifyByEmail: true}, nil
	}
	return *stored, nil
}

// EnergyPointsEnabled reports whether the energy point system is switched on.
func (s *Service) EnergyPointsEnabled(ctx context.Context) (bool, error) {
	fields, err := s.repo.SinglesDoc(ctx, doctypeEnergyPointSettings)
	if err != nil {
		return false, err
	}
	return cast.ToInt(fields["enabled"]) != 0, nil
}

// EnergyPoints returns the user's energy point score, cached in a Redis hash
// keyed by user.
func (s *Service) EnergyPoints(ctx context.Context, user string) (int64, error) {
	if s.redis != nil {
		cached, err := s.redis.HGet(ctx, energyPointsHashKey, user).Int64()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			return 0, err
		}
	}
	score, err := s.repo.EnergyScore(ctx, user)
	if err != nil {
		return 0, err
	}
	if s.redis != nil {
		if err := s.redis.HSet(ctx, energyPointsHashKey, user, score).Err(); err != nil {
			return 0, err
		}
	}
	return score, nil
}
