package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/billing"
	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/money"
)

type CreatePayableRequest struct {
	CompanyID   uuid.UUID
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time
	SupplierID  *uuid.UUID
	CategoryID  *uuid.UUID
}

// CreatePayable records a manually entered bill. No ledger effect until it is
// settled.
func (s *Service) CreatePayable(ctx context.Context, req CreatePayableRequest) (*domain.Payable, error) {
	if err := money.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("CreatePayable: %v: %w", err, domain.ErrInvalidAmount)
	}
	if req.SupplierID != nil {
		if _, err := s.suppliers.GetByID(ctx, *req.SupplierID, req.CompanyID); err != nil {
			return nil, fmt.Errorf("CreatePayable: supplier: %w", err)
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID, req.CompanyID); err != nil {
			return nil, fmt.Errorf("CreatePayable: category: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreatePayable: begin tx: %w", err)
	}
	defer tx.Rollback()

	p := &domain.Payable{
		ID:                uuid.New(),
		CompanyID:         req.CompanyID,
		Description:       req.Description,
		Amount:            req.Amount,
		DueDate:           req.DueDate,
		Status:            domain.PayableStatusPending,
		InstallmentNumber: 1,
		InstallmentCount:  1,
		SupplierID:        req.SupplierID,
		CategoryID:        req.CategoryID,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.payables.Create(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("CreatePayable: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreatePayable: commit: %w", err)
	}
	return p, nil
}

type CreateReceivableRequest struct {
	CompanyID   uuid.UUID
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time
	CustomerID  *uuid.UUID
	CategoryID  *uuid.UUID
}

func (s *Service) CreateReceivable(ctx context.Context, req CreateReceivableRequest) (*domain.Receivable, error) {
	if err := money.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("CreateReceivable: %v: %w", err, domain.ErrInvalidAmount)
	}
	if req.CustomerID != nil {
		if _, err := s.customers.GetByID(ctx, *req.CustomerID, req.CompanyID); err != nil {
			return nil, fmt.Errorf("CreateReceivable: customer: %w", err)
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID, req.CompanyID); err != nil {
			return nil, fmt.Errorf("CreateReceivable: category: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateReceivable: begin tx: %w", err)
	}
	defer tx.Rollback()

	rec := &domain.Receivable{
		ID:          uuid.New(),
		CompanyID:   req.CompanyID,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Status:      domain.ReceivableStatusPending,
		CustomerID:  req.CustomerID,
		CategoryID:  req.CategoryID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.receivables.Create(ctx, tx, rec); err != nil {
		return nil, fmt.Errorf("CreateReceivable: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreateReceivable: commit: %w", err)
	}
	return rec, nil
}

func (s *Service) GetPayable(ctx context.Context, id, companyID uuid.UUID) (*domain.Payable, error) {
	return s.payables.GetByID(ctx, id, companyID)
}

// CardBill is the derived view of one billing cycle: the bill is paid only
// when every installment is paid, overdue once the cycle due date has passed
// with anything still open, pending otherwise.
type CardBill struct {
	CardID     uuid.UUID
	Month      int
	Year       int
	DueDate    time.Time
	Total      decimal.Decimal
	OpenAmount decimal.Decimal
	Status     domain.PayableStatus
	Payables   []domain.Payable
}

func (s *Service) GetCardBill(ctx context.Context, companyID, cardID uuid.UUID, month, year int) (*CardBill, error) {
	card, err := s.cards.GetByID(ctx, cardID, companyID)
	if err != nil {
		return nil, fmt.Errorf("GetCardBill: card: %w", err)
	}

	dueDate, err := billing.CycleDueDate(card.DueDay, month, year)
	if err != nil {
		return nil, fmt.Errorf("GetCardBill: %w", err)
	}

	all, err := s.payables.ListByCardCycle(ctx, companyID, card.ID, month, year)
	if err != nil {
		return nil, fmt.Errorf("GetCardBill: %w", err)
	}

	bill := &CardBill{
		CardID:   card.ID,
		Month:    month,
		Year:     year,
		DueDate:  dueDate,
		Total:    decimal.Zero,
		Payables: all,
	}
	for _, p := range all {
		bill.Total = bill.Total.Add(p.Amount)
		if p.Status != domain.PayableStatusPaid {
			bill.OpenAmount = bill.OpenAmount.Add(p.Amount)
		}
	}

	switch {
	case len(bill.Payables) > 0 && bill.OpenAmount.IsZero():
		bill.Status = domain.PayableStatusPaid
	case dueDate.Before(time.Now().UTC().Truncate(24 * time.Hour)):
		bill.Status = domain.PayableStatusOverdue
	default:
		bill.Status = domain.PayableStatusPending
	}
	return bill, nil
}
