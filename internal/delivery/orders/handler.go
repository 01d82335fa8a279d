package orders

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// HeaderIdempotencyKey deduplicates delivery creation retries.
const HeaderIdempotencyKey = "Idempotency-Key"

// Handler exposes fulfillment ledger endpoints as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type dataResponse[T any] struct {
	Data T `json:"data"`
}

func (h *Handler) deliverable(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lines, err := h.service.RemainingForNew(r.Context(), id, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dataResponse[[]DeliverableLine]{Data: lines})
}

func (h *Handler) editable(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.service.RemainingForEdit(r.Context(), id, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) listBySalesOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.service.ListBySalesOrder(r.Context(), id, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []DeliveryOrder{}
	}
	httpx.JSON(w, http.StatusOK, dataResponse[[]DeliveryOrder]{Data: items})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.service.Get(r.Context(), id, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req CommitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	d, err := h.service.Create(r.Context(), id, req, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("delivery order created", slog.Int64("delivery_id", d.ID), slog.String("number", d.DeliveryNumber),
		slog.Int64("sales_order_id", id), slog.Int64("actor_id", actor.ID))
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req CommitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.service.Update(r.Context(), id, req, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("delivery order updated", slog.Int64("delivery_id", d.ID), slog.Int64("actor_id", actor.ID))
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error("delivery request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
