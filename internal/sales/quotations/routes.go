package quotations

import "github.com/go-chi/chi/v5"

// MountRoutes registers quotation routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.edit)
	r.Post("/{id}/status", h.updateStatus)
}
