package auth

import (
	"net"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atrium-hq/atrium/internal/platform/httpx"
	"github.com/atrium-hq/atrium/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	activity       *shared.ActivityLogger
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance. The activity logger may be nil.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, activity *shared.ActivityLogger) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		activity:       activity,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "Body JSON tidak valid")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		h.recordActivity(r, req.Login, "Login", "Failed")
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Nama pengguna atau kata sandi salah")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(user.Name)
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		sess.Set("ipinfo", host)
	} else if r.RemoteAddr != "" {
		sess.Set("ipinfo", r.RemoteAddr)
	}

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.Name, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	h.recordActivity(r, user.Name, "Login", "Success")

	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":   "Selamat datang kembali",
		"user":      user.Name,
		"full_name": user.FullName,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		if user := sess.User(); user != "" {
			h.recordActivity(r, user, "Logout", "Success")
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Sampai jumpa"})
}

// recordActivity keeps the activity trail without ever blocking the auth flow.
func (h *Handler) recordActivity(r *http.Request, user, operation, status string) {
	log := shared.ActivityLog{User: user, Operation: operation, Status: status, IP: r.RemoteAddr}
	if err := h.activity.Record(r.Context(), log); err != nil {
		h.logger.Warn("record activity", slog.Any("error", err))
	}
}

// LoginForTest exposes the login handler for tests.
func (h *Handler) LoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// LogoutForTest exposes the logout handler for tests.
func (h *Handler) LogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
