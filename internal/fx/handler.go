package fx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/platform/httpx"
)

// Handler exposes the current rate and a manual override.
type Handler struct {
	logger   *slog.Logger
	provider *CachedProvider
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, provider *CachedProvider) *Handler {
	return &Handler{logger: logger, provider: provider}
}

// MountRoutes registers fx routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/rate", h.getRate)
	r.Put("/rate", h.setRate)
}

func (h *Handler) getRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.provider.CurrentRate(r.Context())
	if err != nil {
		h.logger.Error("fetch fx rate", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Rate Unavailable", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"pair": HardCurrency.String() + "/" + LocalCurrencyCode(),
		"rate": rate,
	})
}

type setRateRequest struct {
	Rate decimal.Decimal `json:"rate" validate:"required"`
}

func (h *Handler) setRate(w http.ResponseWriter, r *http.Request) {
	var req setRateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.provider.SetRate(r.Context(), req.Rate); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "rate must be positive")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rate": req.Rate})
}
