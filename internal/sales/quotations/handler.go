package quotations

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// Handler exposes quotation endpoints as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type listResponse struct {
	Data       []Quotation       `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	page, limit, offset := shared.PageParams(r.URL.Query().Get("page"), r.URL.Query().Get("per_page"))
	filter := ListFilter{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := ParseStatus(raw)
		if !ok {
			h.fail(w, r, ErrUnknownStatus)
			return
		}
		filter.Status = &status
	}
	items, total, err := h.service.List(r.Context(), filter, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []Quotation{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: items, Pagination: shared.NewPagination(page, limit, total)})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.Get(r.Context(), id, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.Create(r.Context(), req, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("quotation created", slog.Int64("quotation_id", q.ID), slog.String("number", q.Number), slog.Int64("actor_id", actor.ID))
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req EditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.Edit(r.Context(), id, req, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := httpx.ParamID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.UpdateStatus(r.Context(), id, req, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("quotation status changed", slog.Int64("quotation_id", id), slog.String("status", string(q.Status)), slog.Int64("actor_id", actor.ID))
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error("quotation request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
