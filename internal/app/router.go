package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/migarbe/SisConVen-sub000/internal/commission"
	"github.com/migarbe/SisConVen-sub000/internal/directory"
	"github.com/migarbe/SisConVen-sub000/internal/fx"
	"github.com/migarbe/SisConVen-sub000/internal/inventory"
	"github.com/migarbe/SisConVen-sub000/internal/platform/httpx"
	"github.com/migarbe/SisConVen-sub000/internal/procurement"
	"github.com/migarbe/SisConVen-sub000/internal/sales"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	InventoryHandler   *inventory.Handler
	SalesHandler       *sales.Handler
	ProcurementHandler *procurement.Handler
	DirectoryHandler   *directory.Handler
	CommissionHandler  *commission.Handler
	FXHandler          *fx.Handler
	Pool               *pgxpool.Pool
}

// NewRouter assembles the chi router with the API surface.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if p.Pool != nil {
			if err := p.Pool.Ping(r.Context()); err != nil {
				httpx.Problem(w, http.StatusServiceUnavailable, "Unhealthy", "database unreachable")
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/products", p.InventoryHandler.MountRoutes)
		api.Route("/invoices", p.SalesHandler.MountRoutes)
		api.Route("/purchases", p.ProcurementHandler.MountRoutes)
		api.Route("/clients", p.DirectoryHandler.MountClientRoutes)
		api.Route("/sellers", p.DirectoryHandler.MountSellerRoutes)
		api.Route("/commissions", p.CommissionHandler.MountRoutes)
		api.Route("/fx", p.FXHandler.MountRoutes)
	})

	return r
}
