package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/logging"
	"github.com/finledger/backend/internal/service/ledger"
)

type cardStore interface {
	Create(ctx context.Context, card *domain.CreditCard) error
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.CreditCard, error)
	List(ctx context.Context, companyID uuid.UUID) ([]domain.CreditCard, error)
}

type cardSettler interface {
	PayCardBill(ctx context.Context, req ledger.PayCardBillRequest) (int, error)
	GetCardBill(ctx context.Context, companyID, cardID uuid.UUID, month, year int) (*ledger.CardBill, error)
}

type CardHandler struct {
	cards  cardStore
	ledger cardSettler
}

func NewCardHandler(cards cardStore, ledger cardSettler) *CardHandler {
	return &CardHandler{cards: cards, ledger: ledger}
}

type cardRequest struct {
	Name                string `json:"name"`
	Brand               string `json:"brand"`
	LastDigits          string `json:"last_digits"`
	CreditLimit         string `json:"credit_limit"`
	ClosingDay          int    `json:"closing_day"`
	DueDay              int    `json:"due_day"`
	AssociatedAccountID string `json:"associated_account_id"`
}

func (r cardRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if len(r.LastDigits) != 4 {
		errs = append(errs, FieldError{Field: "last_digits", Message: "must be exactly 4 digits"})
	}
	if r.ClosingDay < 1 || r.ClosingDay > 31 {
		errs = append(errs, FieldError{Field: "closing_day", Message: "must be between 1 and 31"})
	}
	if r.DueDay < 1 || r.DueDay > 31 {
		errs = append(errs, FieldError{Field: "due_day", Message: "must be between 1 and 31"})
	}
	if _, err := uuid.Parse(r.AssociatedAccountID); err != nil {
		errs = append(errs, FieldError{Field: "associated_account_id", Message: "must be a valid id"})
	}
	if r.CreditLimit != "" {
		if _, err := decimal.NewFromString(r.CreditLimit); err != nil {
			errs = append(errs, FieldError{Field: "credit_limit", Message: "must be a decimal number"})
		}
	}
	return errs
}

type cardDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Brand               string          `json:"brand"`
	LastDigits          string          `json:"last_digits"`
	CreditLimit         decimal.Decimal `json:"credit_limit"`
	ClosingDay          int             `json:"closing_day"`
	DueDay              int             `json:"due_day"`
	AssociatedAccountID uuid.UUID       `json:"associated_account_id"`
	IsActive            bool            `json:"is_active"`
	CreatedAt           time.Time       `json:"created_at"`
}

func toCardDTO(c *domain.CreditCard) cardDTO {
	return cardDTO{
		ID:                  c.ID,
		Name:                c.Name,
		Brand:               c.Brand,
		LastDigits:          c.LastDigits,
		CreditLimit:         c.CreditLimit,
		ClosingDay:          c.ClosingDay,
		DueDay:              c.DueDay,
		AssociatedAccountID: c.AssociatedAccountID,
		IsActive:            c.IsActive,
		CreatedAt:           c.CreatedAt,
	}
}

func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req cardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	limit := decimal.Zero
	if req.CreditLimit != "" {
		limit = decimal.RequireFromString(req.CreditLimit)
	}

	card := &domain.CreditCard{
		ID:                  uuid.New(),
		CompanyID:           companyID,
		Name:                req.Name,
		Brand:               req.Brand,
		LastDigits:          req.LastDigits,
		CreditLimit:         limit,
		ClosingDay:          req.ClosingDay,
		DueDay:              req.DueDay,
		AssociatedAccountID: uuid.MustParse(req.AssociatedAccountID),
		IsActive:            true,
		CreatedAt:           time.Now().UTC(),
	}
	if err := h.cards.Create(r.Context(), card); err != nil {
		logging.FromContext(r.Context()).Error("failed to create card", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toCardDTO(card))
}

func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	cards, err := h.cards.List(r.Context(), companyID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list cards", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]cardDTO, len(cards))
	for i := range cards {
		dtos[i] = toCardDTO(&cards[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	card, err := h.cards.GetByID(r.Context(), id, companyID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCardDTO(card))
}

type payBillRequest struct {
	Month         int    `json:"month"`
	Year          int    `json:"year"`
	BankAccountID string `json:"bank_account_id"`
	PaidAmount    string `json:"paid_amount"`
	PaymentDate   string `json:"payment_date"`
}

func (r payBillRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, FieldError{Field: "month", Message: "must be between 1 and 12"})
	}
	if r.Year < 2000 {
		errs = append(errs, FieldError{Field: "year", Message: "required"})
	}
	if _, err := uuid.Parse(r.BankAccountID); err != nil {
		errs = append(errs, FieldError{Field: "bank_account_id", Message: "must be a valid id"})
	}
	if _, err := decimal.NewFromString(r.PaidAmount); err != nil {
		errs = append(errs, FieldError{Field: "paid_amount", Message: "must be a decimal number"})
	}
	if _, err := time.Parse("2006-01-02", r.PaymentDate); err != nil {
		errs = append(errs, FieldError{Field: "payment_date", Message: "must be YYYY-MM-DD"})
	}
	return errs
}

func (h *CardHandler) PayBill(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	cardID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req payBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	paymentDate, _ := time.Parse("2006-01-02", req.PaymentDate)
	count, err := h.ledger.PayCardBill(r.Context(), ledger.PayCardBillRequest{
		CompanyID:     companyID,
		CardID:        cardID,
		Month:         req.Month,
		Year:          req.Year,
		BankAccountID: uuid.MustParse(req.BankAccountID),
		PaidAmount:    decimal.RequireFromString(req.PaidAmount),
		PaymentDate:   paymentDate,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int{"payables_settled": count})
}

type cardBillDTO struct {
	CardID     uuid.UUID       `json:"card_id"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	DueDate    string          `json:"due_date"`
	Total      decimal.Decimal `json:"total"`
	OpenAmount decimal.Decimal `json:"open_amount"`
	Status     string          `json:"status"`
	Payables   []payableDTO    `json:"payables"`
}

func (h *CardHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	cardID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		RespondValidationError(w, []FieldError{{Field: "month", Message: "must be between 1 and 12"}})
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "year", Message: "required"}})
		return
	}

	bill, err := h.ledger.GetCardBill(r.Context(), companyID, cardID, month, year)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dto := cardBillDTO{
		CardID:     bill.CardID,
		Month:      bill.Month,
		Year:       bill.Year,
		DueDate:    bill.DueDate.Format("2006-01-02"),
		Total:      bill.Total,
		OpenAmount: bill.OpenAmount,
		Status:     string(bill.Status),
		Payables:   make([]payableDTO, len(bill.Payables)),
	}
	for i := range bill.Payables {
		dto.Payables[i] = toPayableDTO(&bill.Payables[i], time.Now())
	}
	RespondSuccess(w, http.StatusOK, dto)
}
