package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atrium-hq/atrium/internal/platform/httpx"
	"github.com/atrium-hq/atrium/internal/shared"
)

// RolesHandler exposes role lookups for desk clients.
type RolesHandler struct {
	logger  *slog.Logger
	service *Service
	rbac    Middleware
}

// NewRolesHandler builds RolesHandler instance.
func NewRolesHandler(logger *slog.Logger, service *Service, rbacMiddleware Middleware) *RolesHandler {
	return &RolesHandler{logger: logger, service: service, rbac: rbacMiddleware}
}

// MountRoutes registers role routes.
func (h *RolesHandler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireAuthenticated)
	r.Get("/", h.listOwnRoles)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(RoleSystemManager))
		r.Get("/{user}", h.listUserRoles)
	})
}

func (h *RolesHandler) listOwnRoles(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Silakan masuk terlebih dahulu")
		return
	}
	h.respondRoles(w, r, sess.User())
}

func (h *RolesHandler) listUserRoles(w http.ResponseWriter, r *http.Request) {
	h.respondRoles(w, r, chi.URLParam(r, "user"))
}

func (h *RolesHandler) respondRoles(w http.ResponseWriter, r *http.Request, user string) {
	roles, err := h.service.RolesOf(r.Context(), user)
	if err != nil {
		h.logger.Error("list roles", slog.String("user", user), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": user, "roles": roles})
}
