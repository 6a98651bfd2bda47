package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/logging"
	"github.com/finledger/backend/internal/money"
)

type CreateTransactionRequest struct {
	CompanyID     uuid.UUID
	UserID        uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Kind          domain.TransactionKind
	Date          time.Time
	CategoryID    *uuid.UUID
	BankAccountID *uuid.UUID
	Notes         *string
}

// UpdateTransactionRequest carries the complete desired state of the
// transaction. The engine diffs it against the persisted state, so the
// caller never needs to know what changed.
type UpdateTransactionRequest struct {
	Description   string
	Amount        decimal.Decimal
	Kind          domain.TransactionKind
	Date          time.Time
	CategoryID    *uuid.UUID
	BankAccountID *uuid.UUID
	Notes         *string
}

// CreateTransaction posts a direct ledger entry: the transaction row and its
// balance effect commit together or not at all.
func (s *Service) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*domain.Transaction, error) {
	if err := validateAmountAndKind(req.Amount, req.Kind); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID, req.CompanyID); err != nil {
			return nil, fmt.Errorf("CreateTransaction: category: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateTransaction: begin tx: %w", err)
	}
	defer tx.Rollback()

	if req.BankAccountID != nil {
		acct, err := s.accounts.GetForUpdate(ctx, tx, *req.BankAccountID, req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("CreateTransaction: account: %w", err)
		}
		if !acct.IsActive {
			return nil, fmt.Errorf("CreateTransaction: %w", domain.ErrAccountInactive)
		}
	}

	userID := req.UserID
	t := &domain.Transaction{
		ID:            uuid.New(),
		CompanyID:     req.CompanyID,
		UserID:        &userID,
		Description:   req.Description,
		Amount:        req.Amount,
		Kind:          req.Kind,
		Date:          req.Date,
		CategoryID:    req.CategoryID,
		BankAccountID: req.BankAccountID,
		Notes:         req.Notes,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.transactions.Create(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}
	if err := s.applyEffect(ctx, tx, t.BankAccountID, t.CompanyID, t.Amount, t.Kind); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreateTransaction: commit: %w", err)
	}

	logging.FromContext(ctx).Info("transaction created",
		"transaction_id", t.ID,
		"company_id", t.CompanyID,
		"amount", t.Amount,
		"kind", t.Kind,
	)
	return t, nil
}

// UpdateTransaction reverses the persisted effect and applies the new one.
// The persisted row, loaded under lock before any field changes, is the
// immutable "before" side of the diff; the request is the "after" side. When
// the account is unchanged this still issues two balance writes against the
// same row, netting out to the delta.
func (s *Service) UpdateTransaction(ctx context.Context, transactionID, companyID uuid.UUID, req UpdateTransactionRequest) (*domain.Transaction, error) {
	if err := validateAmountAndKind(req.Amount, req.Kind); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID, companyID); err != nil {
			return nil, fmt.Errorf("UpdateTransaction: category: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("UpdateTransaction: begin tx: %w", err)
	}
	defer tx.Rollback()

	before, err := s.transactions.GetForUpdate(ctx, tx, transactionID, companyID)
	if err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}

	if before.CreditCardID != nil && req.BankAccountID != nil {
		return nil, fmt.Errorf("UpdateTransaction: card purchase cannot target a bank account: %w", domain.ErrInvalidRequest)
	}

	if err := s.lockAccounts(ctx, tx, companyID, before.BankAccountID, req.BankAccountID); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}

	if req.BankAccountID != nil {
		acct, err := s.accounts.GetForUpdate(ctx, tx, *req.BankAccountID, companyID)
		if err != nil {
			return nil, fmt.Errorf("UpdateTransaction: account: %w", err)
		}
		if !acct.IsActive && (before.BankAccountID == nil || *before.BankAccountID != acct.ID) {
			return nil, fmt.Errorf("UpdateTransaction: %w", domain.ErrAccountInactive)
		}
	}

	if err := s.reverseEffect(ctx, tx, before.BankAccountID, companyID, before.Amount, before.Kind); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}

	after := *before
	after.Description = req.Description
	after.Amount = req.Amount
	after.Kind = req.Kind
	after.Date = req.Date
	after.CategoryID = req.CategoryID
	after.BankAccountID = req.BankAccountID
	after.Notes = req.Notes

	if err := s.transactions.Update(ctx, tx, &after); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}
	if err := s.applyEffect(ctx, tx, after.BankAccountID, companyID, after.Amount, after.Kind); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: commit: %w", err)
	}

	logging.FromContext(ctx).Info("transaction updated",
		"transaction_id", after.ID,
		"company_id", companyID,
	)
	return &after, nil
}

// DeleteTransaction removes the row after reversing its current effect.
func (s *Service) DeleteTransaction(ctx context.Context, transactionID, companyID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: begin tx: %w", err)
	}
	defer tx.Rollback()

	t, err := s.transactions.GetForUpdate(ctx, tx, transactionID, companyID)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}

	if err := s.reverseEffect(ctx, tx, t.BankAccountID, companyID, t.Amount, t.Kind); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	if err := s.transactions.Delete(ctx, tx, transactionID, companyID); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("DeleteTransaction: commit: %w", err)
	}

	logging.FromContext(ctx).Info("transaction deleted",
		"transaction_id", transactionID,
		"company_id", companyID,
	)
	return nil
}

func validateAmountAndKind(amount decimal.Decimal, kind domain.TransactionKind) error {
	if err := money.ValidateAmount(amount); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidAmount)
	}
	if !kind.IsValid() {
		return domain.ErrInvalidKind
	}
	return nil
}
