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

type categoryStore interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Category, error)
	List(ctx context.Context, companyID uuid.UUID, kind *domain.TransactionKind) ([]domain.Category, error)
	Delete(ctx context.Context, id, companyID uuid.UUID) error
}

type CategoryHandler struct {
	categories categoryStore
}

func NewCategoryHandler(categories categoryStore) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryRequest struct {
	Name              string `json:"name"`
	Kind              string `json:"kind"`
	DFCClassification string `json:"dfc_classification"`
	DREClassification string `json:"dre_classification"`
}

func (r categoryRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if !domain.TransactionKind(r.Kind).IsValid() {
		errs = append(errs, FieldError{Field: "kind", Message: "must be inflow or outflow"})
	}
	if r.DFCClassification != "" && !domain.DFCClassification(r.DFCClassification).IsValid() {
		errs = append(errs, FieldError{Field: "dfc_classification", Message: "must be operational, investment, financing, or none"})
	}
	return errs
}

type categoryDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Kind              string    `json:"kind"`
	DFCClassification string    `json:"dfc_classification"`
	DREClassification string    `json:"dre_classification"`
	CreatedAt         time.Time `json:"created_at"`
}

func toCategoryDTO(c *domain.Category) categoryDTO {
	return categoryDTO{
		ID:                c.ID,
		Name:              c.Name,
		Kind:              string(c.Kind),
		DFCClassification: string(c.DFCClassification),
		DREClassification: c.DREClassification,
		CreatedAt:         c.CreatedAt,
	}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	dfc := domain.DFCNone
	if req.DFCClassification != "" {
		dfc = domain.DFCClassification(req.DFCClassification)
	}
	dre := req.DREClassification
	if dre == "" {
		dre = "not_applicable"
	}

	category := &domain.Category{
		ID:                uuid.New(),
		CompanyID:         companyID,
		Name:              req.Name,
		Kind:              domain.TransactionKind(req.Kind),
		DFCClassification: dfc,
		DREClassification: dre,
		CreatedAt:         time.Now().UTC(),
	}
	if err := h.categories.Create(r.Context(), category); err != nil {
		logging.FromContext(r.Context()).Error("failed to create category", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toCategoryDTO(category))
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var kind *domain.TransactionKind
	if k := r.URL.Query().Get("kind"); k != "" {
		tk := domain.TransactionKind(k)
		if !tk.IsValid() {
			RespondValidationError(w, []FieldError{{Field: "kind", Message: "must be inflow or outflow"}})
			return
		}
		kind = &tk
	}

	categories, err := h.categories.List(r.Context(), companyID, kind)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list categories", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]categoryDTO, len(categories))
	for i := range categories {
		dtos[i] = toCategoryDTO(&categories[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

// Delete detaches the category from transactions and open items (FK SET NULL)
// rather than blocking or cascading.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.categories.Delete(r.Context(), id, companyID); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}
