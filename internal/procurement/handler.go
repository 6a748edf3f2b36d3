package procurement

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

// Handler manages purchase endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers purchase routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPurchases)
	r.Post("/", h.createPurchase)
	r.Get("/debt-total", h.debtTotal)
	r.Get("/{id}", h.getPurchase)
	r.Put("/{id}", h.editPurchase)
	r.Delete("/{id}", h.deletePurchase)
	r.Post("/{id}/payments", h.applyPayment)
	r.Put("/payments/{paymentID}", h.editPayment)
	r.Delete("/payments/{paymentID}", h.deletePayment)
}

type itemRequest struct {
	ProductID     int64           `json:"product_id" validate:"required"`
	Qty           float64         `json:"qty" validate:"required,gt=0"`
	UnitCostLocal decimal.Decimal `json:"unit_cost_local" validate:"required"`
}

func toItemInputs(reqs []itemRequest) []ItemInput {
	items := make([]ItemInput, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, ItemInput{
			ProductID:     r.ProductID,
			Qty:           r.Qty,
			UnitCostLocal: r.UnitCostLocal,
		})
	}
	return items
}

type createPurchaseRequest struct {
	SupplierName string        `json:"supplier_name" validate:"required"`
	Items        []itemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.CreatePurchase(r.Context(), CreatePurchaseInput{
		SupplierName: req.SupplierName,
		Items:        toItemInputs(req.Items),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

type editPurchaseRequest struct {
	SupplierName string        `json:"supplier_name"`
	Items        []itemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) editPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var req editPurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.EditPurchase(r.Context(), id, EditPurchaseInput{
		SupplierName: req.SupplierName,
		Items:        toItemInputs(req.Items),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePurchase(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.service.GetPurchase(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.service.ListPurchases(r.Context(), ListPurchasesRequest{
		Status: ledger.Status(r.URL.Query().Get("status")),
		Limit:  100,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchases)
}

func (h *Handler) debtTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.DebtTotal(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"debt_total_hard": total})
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
		PurchaseID: id,
		Amount:     req.Amount,
		Method:     req.Method,
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
	case errors.Is(err, ErrPurchaseNotFound), errors.Is(err, ErrPaymentNotFound), errors.Is(err, inventory.ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrPurchaseLocked):
		httpx.Problem(w, http.StatusConflict, "Purchase Locked", err.Error())
	case errors.Is(err, ErrHasPayments):
		httpx.Problem(w, http.StatusConflict, "Purchase Has Payments", err.Error())
	case errors.Is(err, ledger.ErrExceedsBalance):
		httpx.Problem(w, http.StatusConflict, "Exceeds Balance", err.Error())
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidCost),
		errors.Is(err, ErrSupplierRequired), errors.Is(err, ledger.ErrInvalidAmount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("procurement request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
