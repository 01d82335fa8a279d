package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	deliveryorders "github.com/odyssey-erp/fulfillment-ledger/internal/delivery/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/delivery/progress"
	"github.com/odyssey-erp/fulfillment-ledger/internal/observability"
	"github.com/odyssey-erp/fulfillment-ledger/internal/rbac"
	salesorders "github.com/odyssey-erp/fulfillment-ledger/internal/sales/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/sales/quotations"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
	"github.com/odyssey-erp/fulfillment-ledger/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	RBACMiddleware   rbac.Middleware
	QuotationHandler *quotations.Handler
	SalesHandler     *salesorders.Handler
	DeliveryHandler  *deliveryorders.Handler
	ProgressHandler  *progress.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	if !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.Identify, params.RBACMiddleware.RequireActor)

		if params.QuotationHandler != nil {
			r.Route("/quotations", func(r chi.Router) {
				params.QuotationHandler.MountRoutes(r)
				if params.SalesHandler != nil {
					r.Post("/{id}/sales-order", params.SalesHandler.Materialize)
				}
			})
		}
		r.Route("/sales-orders", func(r chi.Router) {
			if params.SalesHandler != nil {
				params.SalesHandler.MountRoutes(r)
			}
			if params.DeliveryHandler != nil {
				params.DeliveryHandler.MountSalesOrderRoutes(r)
			}
			if params.ProgressHandler != nil {
				params.ProgressHandler.MountSalesOrderRoutes(r)
			}
		})
		if params.DeliveryHandler != nil {
			r.Route("/deliveries", params.DeliveryHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireRole(shared.RoleManager, shared.RoleSuperadmin))
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	return r
}
