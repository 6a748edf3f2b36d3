package commission

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/platform/httpx"
)

// Handler manages commission endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers commission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listSummaries)
	r.Get("/{sellerID}/pending", h.getPending)
	r.Get("/{sellerID}/payments", h.listPayments)
	r.Post("/{sellerID}/payments", h.pay)
}

func (h *Handler) listSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListSummaries(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summaries)
}

func (h *Handler) getPending(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := h.sellerParam(w, r)
	if !ok {
		return
	}
	pending, err := h.service.Pending(r.Context(), sellerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"seller_id": sellerID, "pending": pending})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := h.sellerParam(w, r)
	if !ok {
		return
	}
	payments, err := h.service.ListPayments(r.Context(), sellerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

type payRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Reference string          `json:"reference" validate:"required"`
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := h.sellerParam(w, r)
	if !ok {
		return
	}
	var req payRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	payment, err := h.service.Pay(r.Context(), PayInput{SellerID: sellerID, Amount: req.Amount, Reference: req.Reference})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) sellerParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sellerID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "seller id must be numeric")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSellerNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrReferenceRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrExceedsPending):
		httpx.Problem(w, http.StatusConflict, "Exceeds Pending Commission", err.Error())
	default:
		h.logger.Error("commission request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
