package auth_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/atrium-hq/atrium/internal/auth"
	"github.com/atrium-hq/atrium/internal/shared"
	_ "github.com/atrium-hq/atrium/testing"
)

type stubRepo struct {
	user *auth.User

	createCalls int
	deleteCalls int
	lastUser    string
}

func (s *stubRepo) FindByLogin(ctx context.Context, login string) (*auth.User, error) {
	if s.user == nil || (login != s.user.Name && login != s.user.Email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id, userName string, expiresAt time.Time, ip, ua string) error {
	s.createCalls++
	s.lastUser = userName
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deleteCalls++
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), sessionManager, nil)
	return handler, sessionManager
}

func sessionRequest(t *testing.T, sm *shared.SessionManager, method, target, body string) (*http.Request, *shared.Session) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestLoginSetsSessionUser(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("kata-sandi-benar"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{user: &auth.User{
		Name:         "rani@example.com",
		Email:        "rani@example.com",
		FullName:     "Rani Kusuma",
		PasswordHash: string(hashed),
		Enabled:      true,
	}}
	handler, sm := newAuthHandler(t, repo)

	req, sess := sessionRequest(t, sm, http.MethodPost, "/auth/login",
		`{"login":"rani@example.com","password":"kata-sandi-benar"}`)
	res := httptest.NewRecorder()
	handler.LoginForTest(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if sess.User() != "rani@example.com" {
		t.Fatalf("session user not set, got %q", sess.User())
	}
	if repo.createCalls != 1 || repo.lastUser != "rani@example.com" {
		t.Fatalf("session record not registered: calls=%d user=%q", repo.createCalls, repo.lastUser)
	}
	if !strings.Contains(res.Body.String(), "Rani Kusuma") {
		t.Fatalf("expected full name in response: %s", res.Body.String())
	}
}

func TestLoginWrongPasswordRejected(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("kata-sandi-benar"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{user: &auth.User{
		Name:         "rani@example.com",
		Email:        "rani@example.com",
		PasswordHash: string(hashed),
		Enabled:      true,
	}}
	handler, sm := newAuthHandler(t, repo)

	req, sess := sessionRequest(t, sm, http.MethodPost, "/auth/login",
		`{"login":"rani@example.com","password":"kata-sandi-salah"}`)
	res := httptest.NewRecorder()
	handler.LoginForTest(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if sess.User() != "" {
		t.Fatalf("session user should stay empty, got %q", sess.User())
	}
	if repo.createCalls != 0 {
		t.Fatalf("no session record expected, got %d", repo.createCalls)
	}
}

func TestLoginDisabledAccountRejected(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("kata-sandi-benar"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{user: &auth.User{
		Name:         "nonaktif@example.com",
		Email:        "nonaktif@example.com",
		PasswordHash: string(hashed),
		Enabled:      false,
	}}
	handler, sm := newAuthHandler(t, repo)

	req, _ := sessionRequest(t, sm, http.MethodPost, "/auth/login",
		`{"login":"nonaktif@example.com","password":"kata-sandi-benar"}`)
	res := httptest.NewRecorder()
	handler.LoginForTest(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestLogoutRemovesSessionRecord(t *testing.T) {
	repo := &stubRepo{}
	handler, sm := newAuthHandler(t, repo)

	req, sess := sessionRequest(t, sm, http.MethodPost, "/auth/logout", "")
	sess.SetUser("rani@example.com")
	res := httptest.NewRecorder()
	handler.LogoutForTest(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected one session delete, got %d", repo.deleteCalls)
	}
}
