package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/auth"
	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/logging"
	"github.com/finledger/backend/internal/repository"
	"github.com/finledger/backend/internal/service/ledger"
)

type transactionService interface {
	CreateTransaction(ctx context.Context, req ledger.CreateTransactionRequest) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID, companyID uuid.UUID, req ledger.UpdateTransactionRequest) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID, companyID uuid.UUID) error
	GetTransaction(ctx context.Context, id, companyID uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, companyID uuid.UUID, filter repository.TransactionFilter) ([]domain.Transaction, error)
	CreateCardExpense(ctx context.Context, req ledger.CardExpenseRequest) (*domain.Transaction, []domain.Payable, error)
}

type TransactionHandler struct {
	ledger transactionService
}

func NewTransactionHandler(ledger transactionService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

type transactionRequest struct {
	Description   string  `json:"description"`
	Amount        string  `json:"amount"`
	Kind          string  `json:"kind"`
	Date          string  `json:"date"`
	CategoryID    *string `json:"category_id"`
	BankAccountID *string `json:"bank_account_id"`
	Notes         *string `json:"notes"`
}

func (r transactionRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "required"})
	}
	if _, err := decimal.NewFromString(r.Amount); err != nil {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a decimal number"})
	}
	if !domain.TransactionKind(r.Kind).IsValid() {
		errs = append(errs, FieldError{Field: "kind", Message: "must be inflow or outflow"})
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		errs = append(errs, FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
	}
	if r.CategoryID != nil {
		if _, err := uuid.Parse(*r.CategoryID); err != nil {
			errs = append(errs, FieldError{Field: "category_id", Message: "must be a valid id"})
		}
	}
	if r.BankAccountID != nil {
		if _, err := uuid.Parse(*r.BankAccountID); err != nil {
			errs = append(errs, FieldError{Field: "bank_account_id", Message: "must be a valid id"})
		}
	}
	return errs
}

func (r transactionRequest) parsedIDs() (categoryID, bankAccountID *uuid.UUID) {
	if r.CategoryID != nil {
		id := uuid.MustParse(*r.CategoryID)
		categoryID = &id
	}
	if r.BankAccountID != nil {
		id := uuid.MustParse(*r.BankAccountID)
		bankAccountID = &id
	}
	return categoryID, bankAccountID
}

type transactionDTO struct {
	ID            uuid.UUID       `json:"id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Date          string          `json:"date"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	BankAccountID *uuid.UUID      `json:"bank_account_id"`
	CreditCardID  *uuid.UUID      `json:"credit_card_id"`
	Notes         *string         `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:            t.ID,
		Description:   t.Description,
		Amount:        t.Amount,
		Kind:          string(t.Kind),
		Date:          t.Date.Format("2006-01-02"),
		CategoryID:    t.CategoryID,
		BankAccountID: t.BankAccountID,
		CreditCardID:  t.CreditCardID,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
	}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	categoryID, bankAccountID := req.parsedIDs()

	tx, err := h.ledger.CreateTransaction(r.Context(), ledger.CreateTransactionRequest{
		CompanyID:     companyID,
		UserID:        userID,
		Description:   req.Description,
		Amount:        decimal.RequireFromString(req.Amount),
		Kind:          domain.TransactionKind(req.Kind),
		Date:          date,
		CategoryID:    categoryID,
		BankAccountID: bankAccountID,
		Notes:         req.Notes,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toTransactionDTO(tx))
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	categoryID, bankAccountID := req.parsedIDs()

	tx, err := h.ledger.UpdateTransaction(r.Context(), id, companyID, ledger.UpdateTransactionRequest{
		Description:   req.Description,
		Amount:        decimal.RequireFromString(req.Amount),
		Kind:          domain.TransactionKind(req.Kind),
		Date:          date,
		CategoryID:    categoryID,
		BankAccountID: bankAccountID,
		Notes:         req.Notes,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTO(tx))
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.ledger.DeleteTransaction(r.Context(), id, companyID); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	tx, err := h.ledger.GetTransaction(r.Context(), id, companyID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTO(tx))
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var filter repository.TransactionFilter
	q := r.URL.Query()
	if k := q.Get("kind"); k != "" {
		kind := domain.TransactionKind(k)
		if !kind.IsValid() {
			RespondValidationError(w, []FieldError{{Field: "kind", Message: "must be inflow or outflow"}})
			return
		}
		filter.Kind = &kind
	}
	if a := q.Get("bank_account_id"); a != "" {
		id, err := uuid.Parse(a)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "bank_account_id", Message: "must be a valid id"}})
			return
		}
		filter.BankAccountID = &id
	}
	if from := q.Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "from", Message: "must be YYYY-MM-DD"}})
			return
		}
		filter.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "to", Message: "must be YYYY-MM-DD"}})
			return
		}
		filter.To = &t
	}

	transactions, err := h.ledger.ListTransactions(r.Context(), companyID, filter)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, len(transactions))
	for i := range transactions {
		dtos[i] = toTransactionDTO(&transactions[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type cardExpenseRequest struct {
	Description  string  `json:"description"`
	TotalAmount  string  `json:"total_amount"`
	CardID       string  `json:"card_id"`
	CategoryID   *string `json:"category_id"`
	PurchaseDate string  `json:"purchase_date"`
	Installments int     `json:"installments"`
}

func (r cardExpenseRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "required"})
	}
	if _, err := decimal.NewFromString(r.TotalAmount); err != nil {
		errs = append(errs, FieldError{Field: "total_amount", Message: "must be a decimal number"})
	}
	if _, err := uuid.Parse(r.CardID); err != nil {
		errs = append(errs, FieldError{Field: "card_id", Message: "must be a valid id"})
	}
	if r.CategoryID != nil {
		if _, err := uuid.Parse(*r.CategoryID); err != nil {
			errs = append(errs, FieldError{Field: "category_id", Message: "must be a valid id"})
		}
	}
	if _, err := time.Parse("2006-01-02", r.PurchaseDate); err != nil {
		errs = append(errs, FieldError{Field: "purchase_date", Message: "must be YYYY-MM-DD"})
	}
	if r.Installments < 1 {
		errs = append(errs, FieldError{Field: "installments", Message: "must be at least 1"})
	}
	return errs
}

type cardExpenseResponse struct {
	Transaction transactionDTO `json:"transaction"`
	Payables    []payableDTO   `json:"payables"`
}

func (h *TransactionHandler) CreateCardExpense(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req cardExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	purchaseDate, _ := time.Parse("2006-01-02", req.PurchaseDate)
	var categoryID *uuid.UUID
	if req.CategoryID != nil {
		id := uuid.MustParse(*req.CategoryID)
		categoryID = &id
	}

	tx, payables, err := h.ledger.CreateCardExpense(r.Context(), ledger.CardExpenseRequest{
		CompanyID:    companyID,
		UserID:       userID,
		Description:  req.Description,
		TotalAmount:  decimal.RequireFromString(req.TotalAmount),
		CardID:       uuid.MustParse(req.CardID),
		CategoryID:   categoryID,
		PurchaseDate: purchaseDate,
		Installments: req.Installments,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	resp := cardExpenseResponse{
		Transaction: toTransactionDTO(tx),
		Payables:    make([]payableDTO, len(payables)),
	}
	now := time.Now()
	for i := range payables {
		resp.Payables[i] = toPayableDTO(&payables[i], now)
	}
	RespondSuccess(w, http.StatusCreated, resp)
}
