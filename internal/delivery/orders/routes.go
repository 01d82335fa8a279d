package orders

import "github.com/go-chi/chi/v5"

// MountSalesOrderRoutes registers the routes nested under /sales-orders.
func (h *Handler) MountSalesOrderRoutes(r chi.Router) {
	r.Get("/{id}/deliverable", h.deliverable)
	r.Get("/{id}/deliveries", h.listBySalesOrder)
	r.Post("/{id}/deliveries", h.create)
}

// MountRoutes registers the routes under /deliveries.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}", h.show)
	r.Get("/{id}/deliverable", h.editable)
	r.Put("/{id}", h.update)
}
