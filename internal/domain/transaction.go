package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind is the direction of a transaction's ledger effect.
type TransactionKind string

const (
	KindInflow  TransactionKind = "inflow"
	KindOutflow TransactionKind = "outflow"
)

func (k TransactionKind) IsValid() bool {
	return k == KindInflow || k == KindOutflow
}

// Transaction is a single categorized cash (or card) movement. Amount is
// always positive; Kind carries the sign. BankAccountID is nil for card
// purchases, which have no ledger effect until the bill is settled.
type Transaction struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	UserID        *uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Kind          TransactionKind
	Date          time.Time
	CategoryID    *uuid.UUID
	BankAccountID *uuid.UUID
	CreditCardID  *uuid.UUID
	Notes         *string
	CreatedAt     time.Time
}

// SignedAmount is the transaction's effect on a bank account balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Kind == KindOutflow {
		return t.Amount.Neg()
	}
	return t.Amount
}
