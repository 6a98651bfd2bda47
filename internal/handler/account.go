package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/logging"
	"github.com/finledger/backend/internal/money"
)

type accountStore interface {
	Create(ctx context.Context, account *domain.BankAccount) error
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.BankAccount, error)
	List(ctx context.Context, companyID uuid.UUID) ([]domain.BankAccount, error)
	Update(ctx context.Context, account *domain.BankAccount) error
	Delete(ctx context.Context, id, companyID uuid.UUID) error
}

type AccountHandler struct {
	accounts accountStore
}

func NewAccountHandler(accounts accountStore) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type accountRequest struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	InitialBalance string  `json:"initial_balance"`
	IsActive       *bool   `json:"is_active"`
	Notes          *string `json:"notes"`
}

func (r accountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if !domain.AccountType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be checking, savings, cash, investment, or other"})
	}
	if r.InitialBalance != "" {
		if _, err := decimal.NewFromString(r.InitialBalance); err != nil {
			errs = append(errs, FieldError{Field: "initial_balance", Message: "must be a decimal number"})
		}
	}
	return errs
}

type accountDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	IsActive  bool            `json:"is_active"`
	Notes     *string         `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

func toAccountDTO(a *domain.BankAccount) accountDTO {
	return accountDTO{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   a.Balance,
		IsActive:  a.IsActive,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
	}
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	balance := decimal.Zero
	if req.InitialBalance != "" {
		balance = decimal.RequireFromString(req.InitialBalance)
	}
	if !balance.IsZero() && balance.Exponent() < -money.Scale {
		RespondValidationError(w, []FieldError{{Field: "initial_balance", Message: "at most two decimal places"}})
		return
	}

	account := &domain.BankAccount{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      req.Name,
		Type:      domain.AccountType(req.Type),
		Balance:   balance,
		IsActive:  true,
		Notes:     req.Notes,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.accounts.Create(r.Context(), account); err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accounts, err := h.accounts.List(r.Context(), companyID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	account, err := h.accounts.GetByID(r.Context(), id, companyID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

// Update changes descriptive fields only. The balance is owned by the ledger
// service and never writable here.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id, companyID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	account.Name = req.Name
	account.Type = domain.AccountType(req.Type)
	account.Notes = req.Notes
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if err := h.accounts.Update(r.Context(), account); err != nil {
		logging.FromContext(r.Context()).Error("failed to update account", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.accounts.Delete(r.Context(), id, companyID); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}
