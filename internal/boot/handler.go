package boot

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/atrium-hq/atrium/internal/platform/httpx"
	"github.com/atrium-hq/atrium/internal/shared"
)

// Handler serves the boot payload endpoint.
type Handler struct {
	logger    *slog.Logger
	assembler *Assembler
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, assembler *Assembler) *Handler {
	return &Handler{logger: logger, assembler: assembler}
}

// MountRoutes registers the boot route. Guests may call it too and receive
// the reduced payload.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/boot", h.handleBoot)
}

func (h *Handler) handleBoot(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	log := &shared.MessageLog{}
	ctx := shared.ContextWithMessageLog(r.Context(), log)

	info, err := h.assembler.Build(ctx, sess)
	if err != nil {
		h.logger.Error("build boot payload", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "Gagal menyusun data boot")
		return
	}
	if log.Len() > 0 {
		info.ServerMessages = log.Entries()
	}
	httpx.JSON(w, http.StatusOK, info)
}

// BootForTest exposes the boot handler for tests.
func (h *Handler) BootForTest(w http.ResponseWriter, r *http.Request) {
	h.handleBoot(w, r)
}
