package progress

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// Handler serves progress reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountSalesOrderRoutes registers GET /{id}/progress under /sales-orders.
func (h *Handler) MountSalesOrderRoutes(r chi.Router) {
	r.Get("/{id}/progress", h.show)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rep, err := h.service.OrderProgress(r.Context(), id, actor)
	if err != nil {
		if !httpx.IsClientError(err) {
			h.logger.Error("order progress failed", slog.Int64("sales_order_id", id), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}
