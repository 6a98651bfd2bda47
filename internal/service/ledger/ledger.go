package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/logging"
)

// applyEffect adds a transaction's effect to a bank account balance: inflows
// add, outflows subtract. A nil account id is a no-op (card purchases move no
// cash). The caller must already hold the surrounding database transaction;
// the row lock is taken here and the new balance is persisted immediately.
func (s *Service) applyEffect(ctx context.Context, tx *sql.Tx, accountID *uuid.UUID, companyID uuid.UUID, amount decimal.Decimal, kind domain.TransactionKind) error {
	if accountID == nil {
		return nil
	}

	acct, err := s.accounts.GetForUpdate(ctx, tx, *accountID, companyID)
	if err != nil {
		return fmt.Errorf("applyEffect: %w", err)
	}

	newBalance := acct.Balance.Add(signed(amount, kind))
	if err := s.accounts.UpdateBalance(ctx, tx, acct.ID, newBalance, acct.Version+1); err != nil {
		return fmt.Errorf("applyEffect: %w", err)
	}
	return nil
}

// reverseEffect is the exact inverse of applyEffect. Unlike the apply path it
// tolerates a vanished account: the reversal is skipped with a warning so the
// user-facing update or delete still goes through. That is an accepted
// balance-drift risk, not a silent bug.
func (s *Service) reverseEffect(ctx context.Context, tx *sql.Tx, accountID *uuid.UUID, companyID uuid.UUID, amount decimal.Decimal, kind domain.TransactionKind) error {
	if accountID == nil {
		return nil
	}

	acct, err := s.accounts.GetForUpdate(ctx, tx, *accountID, companyID)
	if err != nil {
		if isNotFound(err) {
			logging.FromContext(ctx).Warn("reversal target account missing, skipping balance reversal",
				"account_id", *accountID,
				"amount", amount,
				"kind", kind,
			)
			return nil
		}
		return fmt.Errorf("reverseEffect: %w", err)
	}

	newBalance := acct.Balance.Sub(signed(amount, kind))
	if err := s.accounts.UpdateBalance(ctx, tx, acct.ID, newBalance, acct.Version+1); err != nil {
		return fmt.Errorf("reverseEffect: %w", err)
	}
	return nil
}

func signed(amount decimal.Decimal, kind domain.TransactionKind) decimal.Decimal {
	if kind == domain.KindOutflow {
		return amount.Neg()
	}
	return amount
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
