package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/logging"
)

type customerStore interface {
	Create(ctx context.Context, c *domain.Customer) error
	List(ctx context.Context, companyID uuid.UUID) ([]domain.Customer, error)
}

type supplierStore interface {
	Create(ctx context.Context, s *domain.Supplier) error
	List(ctx context.Context, companyID uuid.UUID) ([]domain.Supplier, error)
}

// PartyHandler covers the two registration rows the settlement engine links
// to: customers on the receivable side, suppliers on the payable side.
type PartyHandler struct {
	customers customerStore
	suppliers supplierStore
}

func NewPartyHandler(customers customerStore, suppliers supplierStore) *PartyHandler {
	return &PartyHandler{customers: customers, suppliers: suppliers}
}

type partyRequest struct {
	Name     string  `json:"name"`
	Document *string `json:"document"`
	Email    *string `json:"email"`
}

func (r partyRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	return errs
}

type partyDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Document  *string   `json:"document"`
	Email     *string   `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *PartyHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req partyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	c := &domain.Customer{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      req.Name,
		Document:  req.Document,
		Email:     req.Email,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.customers.Create(r.Context(), c); err != nil {
		logging.FromContext(r.Context()).Error("failed to create customer", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, partyDTO{
		ID: c.ID, Name: c.Name, Document: c.Document, Email: c.Email,
		IsActive: c.IsActive, CreatedAt: c.CreatedAt,
	})
}

func (h *PartyHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	customers, err := h.customers.List(r.Context(), companyID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list customers", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]partyDTO, len(customers))
	for i, c := range customers {
		dtos[i] = partyDTO{
			ID: c.ID, Name: c.Name, Document: c.Document, Email: c.Email,
			IsActive: c.IsActive, CreatedAt: c.CreatedAt,
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *PartyHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req partyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	s := &domain.Supplier{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      req.Name,
		Document:  req.Document,
		Email:     req.Email,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.suppliers.Create(r.Context(), s); err != nil {
		logging.FromContext(r.Context()).Error("failed to create supplier", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, partyDTO{
		ID: s.ID, Name: s.Name, Document: s.Document, Email: s.Email,
		IsActive: s.IsActive, CreatedAt: s.CreatedAt,
	})
}

func (h *PartyHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	suppliers, err := h.suppliers.List(r.Context(), companyID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list suppliers", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]partyDTO, len(suppliers))
	for i, s := range suppliers {
		dtos[i] = partyDTO{
			ID: s.ID, Name: s.Name, Document: s.Document, Email: s.Email,
			IsActive: s.IsActive, CreatedAt: s.CreatedAt,
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
