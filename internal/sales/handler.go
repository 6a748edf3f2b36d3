package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/inventory"
	"github.com/migarbe/SisConVen-sub000/internal/ledger"
	"github.com/migarbe/SisConVen-sub000/internal/platform/httpx"
)

// Handler manages invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listInvoices)
	r.Post("/", h.createInvoice)
	r.Get("/{id}", h.getInvoice)
	r.Put("/{id}", h.editInvoice)
	r.Delete("/{id}", h.deleteInvoice)
	r.Get("/{id}/balance", h.getBalance)
	r.Post("/{id}/payments", h.applyPayment)
	r.Put("/payments/{paymentID}", h.editPayment)
	r.Delete("/payments/{paymentID}", h.deletePayment)
}

type itemRequest struct {
	ProductID     int64           `json:"product_id" validate:"required"`
	Qty           float64         `json:"qty" validate:"required,gt=0"`
	PricingMode   string          `json:"pricing_mode" validate:"omitempty,oneof=CASH CREDIT"`
	UnitPriceHard decimal.Decimal `json:"unit_price_hard"`
}

func toItemInputs(reqs []itemRequest) []ItemInput {
	items := make([]ItemInput, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, ItemInput{
			ProductID:     r.ProductID,
			Qty:           r.Qty,
			PricingMode:   PricingMode(r.PricingMode),
			UnitPriceHard: r.UnitPriceHard,
		})
	}
	return items
}

type createInvoiceRequest struct {
	ClientID int64         `json:"client_id" validate:"required"`
	SellerID *int64        `json:"seller_id"`
	Items    []itemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), CreateInvoiceInput{
		ClientID: req.ClientID,
		SellerID: req.SellerID,
		Items:    toItemInputs(req.Items),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

type editInvoiceRequest struct {
	SellerID *int64        `json:"seller_id"`
	Items    []itemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) editInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var req editInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.EditInvoice(r.Context(), id, EditInvoiceInput{
		SellerID: req.SellerID,
		Items:    toItemInputs(req.Items),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteInvoice(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	balance, err := h.service.InvoiceBalance(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice_id": id, "balance_hard": balance})
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	var clientID int64
	if v := r.URL.Query().Get("client_id"); v != "" {
		clientID, _ = strconv.ParseInt(v, 10, 64)
	}
	if r.URL.Query().Get("pending") == "true" && clientID != 0 {
		invoices, err := h.service.PendingForClient(r.Context(), clientID)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, invoices)
		return
	}
	invoices, err := h.service.ListInvoices(r.Context(), ListInvoicesRequest{
		Status:   ledger.Status(r.URL.Query().Get("status")),
		ClientID: clientID,
		Limit:    100,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method" validate:"required"`
}

func (h *Handler) applyPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	payment, err := h.service.ApplyPayment(r.Context(), ApplyPaymentInput{
		InvoiceID: id,
		Amount:    req.Amount,
		Method:    req.Method,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

type editPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

func (h *Handler) editPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := h.idParam(w, r, "paymentID")
	if !ok {
		return
	}
	var req editPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	payment, err := h.service.EditPayment(r.Context(), paymentID, req.Amount)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := h.idParam(w, r, "paymentID")
	if !ok {
		return
	}
	if err := h.service.DeletePayment(r.Context(), paymentID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", name+" must be numeric")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrPaymentNotFound), errors.Is(err, inventory.ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrInvoiceLocked):
		httpx.Problem(w, http.StatusConflict, "Invoice Locked", err.Error())
	case errors.Is(err, ErrHasPayments):
		httpx.Problem(w, http.StatusConflict, "Invoice Has Payments", err.Error())
	case errors.Is(err, ledger.ErrExceedsBalance):
		httpx.Problem(w, http.StatusConflict, "Exceeds Balance", err.Error())
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ledger.ErrInvalidAmount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("sales request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
