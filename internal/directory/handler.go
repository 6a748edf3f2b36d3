package directory

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

// Handler manages client and seller endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountClientRoutes registers client routes.
func (h *Handler) MountClientRoutes(r chi.Router) {
	r.Get("/", h.listClients)
	r.Post("/", h.createClient)
	r.Get("/{id}", h.getClient)
	r.Put("/{id}", h.updateClient)
	r.Delete("/{id}", h.deleteClient)
}

// MountSellerRoutes registers seller routes.
func (h *Handler) MountSellerRoutes(r chi.Router) {
	r.Get("/", h.listSellers)
	r.Post("/", h.createSeller)
	r.Get("/{id}", h.getSeller)
	r.Put("/{id}", h.updateSeller)
	r.Delete("/{id}", h.deleteSeller)
}

type clientRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	c, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.CreateClient(r.Context(), ClientInput{Name: req.Name, Phone: req.Phone, Email: req.Email})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var req clientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.UpdateClient(r.Context(), id, ClientInput{Name: req.Name, Phone: req.Phone, Email: req.Email})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteClient(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sellerRequest struct {
	Name            string          `json:"name" validate:"required"`
	Phone           string          `json:"phone"`
	CommissionType  string          `json:"commission_type" validate:"required,oneof=PERCENT FIXED"`
	CommissionValue decimal.Decimal `json:"commission_value"`
}

func (h *Handler) listSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.service.ListSellers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sellers)
}

func (h *Handler) getSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	s, err := h.service.GetSeller(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) createSeller(w http.ResponseWriter, r *http.Request) {
	var req sellerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	s, err := h.service.CreateSeller(r.Context(), SellerInput{
		Name:            req.Name,
		Phone:           req.Phone,
		CommissionType:  commission.Type(req.CommissionType),
		CommissionValue: req.CommissionValue,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

func (h *Handler) updateSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var req sellerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	s, err := h.service.UpdateSeller(r.Context(), id, SellerInput{
		Name:            req.Name,
		Phone:           req.Phone,
		CommissionType:  commission.Type(req.CommissionType),
		CommissionValue: req.CommissionValue,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) deleteSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteSeller(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrSellerNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateName):
		httpx.Problem(w, http.StatusConflict, "Duplicate Name", err.Error())
	case errors.Is(err, ErrSellerHasPending):
		httpx.Problem(w, http.StatusConflict, "Seller Has Pending Commission", err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("directory request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
