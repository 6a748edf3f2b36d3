package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/commission"
	"github.com/migarbe/SisConVen-sub000/internal/platform/httpx"
)

// Handler manages product and stock endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listProducts)
	r.Post("/", h.createProduct)
	r.Get("/{id}", h.getProduct)
	r.Put("/{id}", h.updateProduct)
	r.Post("/{id}/adjust", h.adjustStock)
}

type productRequest struct {
	Name              string          `json:"name" validate:"required"`
	SalePriceHard     decimal.Decimal `json:"sale_price_hard" validate:"required"`
	PurchaseCostLocal decimal.Decimal `json:"purchase_cost_local"`
	CommissionType    string          `json:"commission_type" validate:"omitempty,oneof=PERCENT FIXED"`
	CommissionValue   decimal.Decimal `json:"commission_value"`
	InitialStock      float64         `json:"initial_stock" validate:"gte=0"`
}

func (req productRequest) toInput() ProductInput {
	ctype := commission.Type(req.CommissionType)
	if ctype == "" {
		ctype = commission.TypePercent
	}
	return ProductInput{
		Name:              req.Name,
		SalePriceHard:     req.SalePriceHard,
		PurchaseCostLocal: req.PurchaseCostLocal,
		CommissionType:    ctype,
		CommissionValue:   req.CommissionValue,
		InitialStock:      req.InitialStock,
	}
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

type adjustRequest struct {
	QtyChange float64 `json:"qty_change" validate:"required"`
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	newQty, err := h.service.AdjustStock(r.Context(), id, req.QtyChange)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": id, "stock_qty": newQty})
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("inventory request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
