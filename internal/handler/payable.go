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
	"github.com/finledger/backend/internal/repository"
	"github.com/finledger/backend/internal/service/ledger"
)

type openItemService interface {
	CreatePayable(ctx context.Context, req ledger.CreatePayableRequest) (*domain.Payable, error)
	GetPayable(ctx context.Context, id, companyID uuid.UUID) (*domain.Payable, error)
	ListPayables(ctx context.Context, companyID uuid.UUID, filter repository.PayableFilter) ([]domain.Payable, error)
	MarkPayablePaid(ctx context.Context, payableID, companyID, bankAccountID uuid.UUID, paymentDate time.Time, paidAmount decimal.Decimal) (*domain.Payable, error)
	CreateReceivable(ctx context.Context, req ledger.CreateReceivableRequest) (*domain.Receivable, error)
	ListReceivables(ctx context.Context, companyID uuid.UUID, filter repository.ReceivableFilter) ([]domain.Receivable, error)
	MarkReceivableReceived(ctx context.Context, receivableID, companyID, bankAccountID uuid.UUID, receiveDate time.Time, receivedAmount decimal.Decimal) (*domain.Receivable, error)
}

// OpenItemHandler serves payables and receivables: creation, listing with
// derived overdue status, and settlement.
type OpenItemHandler struct {
	ledger openItemService
}

func NewOpenItemHandler(ledger openItemService) *OpenItemHandler {
	return &OpenItemHandler{ledger: ledger}
}

type payableDTO struct {
	ID                      uuid.UUID       `json:"id"`
	Description             string          `json:"description"`
	Amount                  decimal.Decimal `json:"amount"`
	DueDate                 string          `json:"due_date"`
	Status                  string          `json:"status"`
	PaidAt                  *string         `json:"paid_at"`
	InstallmentNumber       int             `json:"installment_number"`
	InstallmentCount        int             `json:"installment_count"`
	SupplierID              *uuid.UUID      `json:"supplier_id"`
	CategoryID              *uuid.UUID      `json:"category_id"`
	TransactionID           *uuid.UUID      `json:"transaction_id"`
	SettlementTransactionID *uuid.UUID      `json:"settlement_transaction_id"`
}

// toPayableDTO surfaces the derived status: stored pending items past their
// due date read as overdue.
func toPayableDTO(p *domain.Payable, today time.Time) payableDTO {
	dto := payableDTO{
		ID:                      p.ID,
		Description:             p.Description,
		Amount:                  p.Amount,
		DueDate:                 p.DueDate.Format("2006-01-02"),
		Status:                  string(p.EffectiveStatus(today)),
		InstallmentNumber:       p.InstallmentNumber,
		InstallmentCount:        p.InstallmentCount,
		SupplierID:              p.SupplierID,
		CategoryID:              p.CategoryID,
		TransactionID:           p.TransactionID,
		SettlementTransactionID: p.SettlementTransactionID,
	}
	if p.PaidAt != nil {
		s := p.PaidAt.Format("2006-01-02")
		dto.PaidAt = &s
	}
	return dto
}

type receivableDTO struct {
	ID                      uuid.UUID       `json:"id"`
	Description             string          `json:"description"`
	Amount                  decimal.Decimal `json:"amount"`
	DueDate                 string          `json:"due_date"`
	Status                  string          `json:"status"`
	ReceivedAt              *string         `json:"received_at"`
	CustomerID              *uuid.UUID      `json:"customer_id"`
	CategoryID              *uuid.UUID      `json:"category_id"`
	SettlementTransactionID *uuid.UUID      `json:"settlement_transaction_id"`
}

func toReceivableDTO(rec *domain.Receivable, today time.Time) receivableDTO {
	dto := receivableDTO{
		ID:                      rec.ID,
		Description:             rec.Description,
		Amount:                  rec.Amount,
		DueDate:                 rec.DueDate.Format("2006-01-02"),
		Status:                  string(rec.EffectiveStatus(today)),
		CustomerID:              rec.CustomerID,
		CategoryID:              rec.CategoryID,
		SettlementTransactionID: rec.SettlementTransactionID,
	}
	if rec.ReceivedAt != nil {
		s := rec.ReceivedAt.Format("2006-01-02")
		dto.ReceivedAt = &s
	}
	return dto
}

type openItemRequest struct {
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	DueDate     string  `json:"due_date"`
	PartyID     *string `json:"party_id"`
	CategoryID  *string `json:"category_id"`
}

func (r openItemRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "required"})
	}
	if _, err := decimal.NewFromString(r.Amount); err != nil {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a decimal number"})
	}
	if _, err := time.Parse("2006-01-02", r.DueDate); err != nil {
		errs = append(errs, FieldError{Field: "due_date", Message: "must be YYYY-MM-DD"})
	}
	if r.PartyID != nil {
		if _, err := uuid.Parse(*r.PartyID); err != nil {
			errs = append(errs, FieldError{Field: "party_id", Message: "must be a valid id"})
		}
	}
	if r.CategoryID != nil {
		if _, err := uuid.Parse(*r.CategoryID); err != nil {
			errs = append(errs, FieldError{Field: "category_id", Message: "must be a valid id"})
		}
	}
	return errs
}

func (r openItemRequest) parsedIDs() (partyID, categoryID *uuid.UUID) {
	if r.PartyID != nil {
		id := uuid.MustParse(*r.PartyID)
		partyID = &id
	}
	if r.CategoryID != nil {
		id := uuid.MustParse(*r.CategoryID)
		categoryID = &id
	}
	return partyID, categoryID
}

func (h *OpenItemHandler) CreatePayable(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req openItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	dueDate, _ := time.Parse("2006-01-02", req.DueDate)
	supplierID, categoryID := req.parsedIDs()

	p, err := h.ledger.CreatePayable(r.Context(), ledger.CreatePayableRequest{
		CompanyID:   companyID,
		Description: req.Description,
		Amount:      decimal.RequireFromString(req.Amount),
		DueDate:     dueDate,
		SupplierID:  supplierID,
		CategoryID:  categoryID,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toPayableDTO(p, time.Now()))
}

func (h *OpenItemHandler) ListPayables(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	filter, fields := payableFilterFromQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	payables, err := h.ledger.ListPayables(r.Context(), companyID, filter)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list payables", "error", err)
		RespondDomainError(w, err)
		return
	}

	now := time.Now()
	dtos := make([]payableDTO, len(payables))
	for i := range payables {
		dtos[i] = toPayableDTO(&payables[i], now)
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *OpenItemHandler) GetPayable(w http.ResponseWriter, r *http.Request) {
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

	p, err := h.ledger.GetPayable(r.Context(), id, companyID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toPayableDTO(p, time.Now()))
}

type settleRequest struct {
	BankAccountID string `json:"bank_account_id"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
}

func (r settleRequest) Validate() []FieldError {
	var errs []FieldError
	if _, err := uuid.Parse(r.BankAccountID); err != nil {
		errs = append(errs, FieldError{Field: "bank_account_id", Message: "must be a valid id"})
	}
	if _, err := decimal.NewFromString(r.Amount); err != nil {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a decimal number"})
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		errs = append(errs, FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
	}
	return errs
}

func (h *OpenItemHandler) PayPayable(w http.ResponseWriter, r *http.Request) {
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

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	p, err := h.ledger.MarkPayablePaid(r.Context(), id, companyID,
		uuid.MustParse(req.BankAccountID), date, decimal.RequireFromString(req.Amount))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toPayableDTO(p, time.Now()))
}

func (h *OpenItemHandler) CreateReceivable(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req openItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	dueDate, _ := time.Parse("2006-01-02", req.DueDate)
	customerID, categoryID := req.parsedIDs()

	rec, err := h.ledger.CreateReceivable(r.Context(), ledger.CreateReceivableRequest{
		CompanyID:   companyID,
		Description: req.Description,
		Amount:      decimal.RequireFromString(req.Amount),
		DueDate:     dueDate,
		CustomerID:  customerID,
		CategoryID:  categoryID,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toReceivableDTO(rec, time.Now()))
}

func (h *OpenItemHandler) ListReceivables(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var filter repository.ReceivableFilter
	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		status := domain.ReceivableStatus(s)
		filter.Status = &status
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

	receivables, err := h.ledger.ListReceivables(r.Context(), companyID, filter)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list receivables", "error", err)
		RespondDomainError(w, err)
		return
	}

	now := time.Now()
	dtos := make([]receivableDTO, len(receivables))
	for i := range receivables {
		dtos[i] = toReceivableDTO(&receivables[i], now)
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *OpenItemHandler) ReceiveReceivable(w http.ResponseWriter, r *http.Request) {
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

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	rec, err := h.ledger.MarkReceivableReceived(r.Context(), id, companyID,
		uuid.MustParse(req.BankAccountID), date, decimal.RequireFromString(req.Amount))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toReceivableDTO(rec, time.Now()))
}

func payableFilterFromQuery(r *http.Request) (repository.PayableFilter, []FieldError) {
	var filter repository.PayableFilter
	var fields []FieldError

	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		status := domain.PayableStatus(s)
		filter.Status = &status
	}
	if from := q.Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			fields = append(fields, FieldError{Field: "from", Message: "must be YYYY-MM-DD"})
		} else {
			filter.From = &t
		}
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			fields = append(fields, FieldError{Field: "to", Message: "must be YYYY-MM-DD"})
		} else {
			filter.To = &t
		}
	}
	return filter, fields
}
