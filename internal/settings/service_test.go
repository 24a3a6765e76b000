package settings_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/atrium-hq/atrium/internal/settings"
	_ "github.com/atrium-hq/atrium/testing"
)

type stubRepo struct {
	defaults      settings.SystemDefaults
	singles       map[string]map[string]string
	notifications map[string]*settings.NotificationSettings
	scores        map[string]int64

	singlesCalls int
	scoreCalls   int
}

func (s *stubRepo) Defaults(ctx context.Context) (settings.SystemDefaults, error) {
	return s.defaults, nil
}

func (s *stubRepo) Default(ctx context.Context, key string) (string, error) {
	return s.defaults[key], nil
}

func (s *stubRepo) SinglesDoc(ctx context.Context, doctype string) (map[string]string, error) {
	s.singlesCalls++
	if doc, ok := s.singles[doctype]; ok {
		return doc, nil
	}
	return map[string]string{}, nil
}

func (s *stubRepo) NotificationSettings(ctx context.Context, user string) (*settings.NotificationSettings, error) {
	return s.notifications[user], nil
}

func (s *stubRepo) EnergyScore(ctx context.Context, user string) (int64, error) {
	s.scoreCalls++
	return s.scores[user], nil
}

func newService(t *testing.T, repo settings.Repository) *settings.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	docs := settings.NewDocumentCache(client, time.Hour)
	return settings.NewService(repo, docs, client, "/static/images/atrium-logo.svg")
}

func TestPrintSettingsDocCarriesDoctypeMarker(t *testing.T) {
	repo := &stubRepo{singles: map[string]map[string]string{
		"Print Settings": {
			"print_style":     "Modern",
			"font_size":       "10",
			"with_letterhead": "1",
		},
	}}
	svc := newService(t, repo)

	doc, err := svc.PrintSettings(context.Background())
	if err != nil {
		t.Fatalf("PrintSettings: %v", err)
	}
	if doc.Doctype != ":Print Settings" {
		t.Fatalf("doctype = %q", doc.Doctype)
	}
	if doc.PrintStyle != "Modern" || doc.FontSize != 10 || !doc.WithLetterhead {
		t.Fatalf("unexpected doc: %+v", doc)
	}
}

func TestPrintSettingsServedFromCache(t *testing.T) {
	repo := &stubRepo{singles: map[string]map[string]string{
		"Print Settings": {"print_style": "Modern"},
	}}
	svc := newService(t, repo)

	for i := 0; i < 2; i++ {
		if _, err := svc.PrintSettings(context.Background()); err != nil {
			t.Fatalf("PrintSettings %d: %v", i, err)
		}
	}
	if repo.singlesCalls != 1 {
		t.Fatalf("singles reads = %d, want 1", repo.singlesCalls)
	}
}

func TestPrintCSSFallsBackToDefaultStyle(t *testing.T) {
	svc := newService(t, &stubRepo{})

	css := svc.PrintCSS("No Such Style")
	if css == "" {
		t.Fatalf("expected fallback stylesheet")
	}
	if css != svc.PrintCSS("") {
		t.Fatalf("unknown style must fall back to the default stylesheet")
	}
	if !strings.Contains(css, ".print-format") {
		t.Fatalf("stylesheet looks wrong:\n%s", css)
	}
}

func TestAppLogoURLFallback(t *testing.T) {
	svc := newService(t, &stubRepo{})

	logo, err := svc.AppLogoURL(context.Background())
	if err != nil {
		t.Fatalf("AppLogoURL: %v", err)
	}
	if logo != "/static/images/atrium-logo.svg" {
		t.Fatalf("logo = %q", logo)
	}
}

func TestNotificationSettingsDefaultWhenMissing(t *testing.T) {
	svc := newService(t, &stubRepo{})

	prefs, err := svc.NotificationSettings(context.Background(), "linda@example.com")
	if err != nil {
		t.Fatalf("NotificationSettings: %v", err)
	}
	if !prefs.Enabled || !prefs.NotifyByEmail || prefs.User != "linda@example.com" {
		t.Fatalf("unexpected defaults: %+v", prefs)
	}
}

func TestEnergyPointsCachedInHash(t *testing.T) {
	repo := &stubRepo{scores: map[string]int64{"linda@example.com": 42}}
	svc := newService(t, repo)

	for i := 0; i < 2; i++ {
		score, err := svc.EnergyPoints(context.Background(), "linda@example.com")
		if err != nil {
			t.Fatalf("EnergyPoints %d: %v", i, err)
		}
		if score != 42 {
			t.Fatalf("score = %d, want 42", score)
		}
	}
	if repo.scoreCalls != 1 {
		t.Fatalf("score queries = %d, want 1", repo.scoreCalls)
	}
}
