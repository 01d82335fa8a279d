package orders

import "github.com/go-chi/chi/v5"

// MountRoutes registers sales order routes on r. Materialize is mounted
// under the quotation routes by the caller.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.edit)
	r.Post("/{id}/status", h.updateStatus)
}
