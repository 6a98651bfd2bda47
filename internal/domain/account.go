package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCash       AccountType = "cash"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCash, AccountTypeInvestment, AccountTypeOther:
		return true
	}
	return false
}

// BankAccount carries a denormalized running balance. The balance is mutated
// only by the ledger service, always inside a transaction that holds the row
// lock; Version guards against lost updates on top of that.
type BankAccount struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Type      AccountType
	Balance   decimal.Decimal
	Version   int64
	IsActive  bool
	Notes     *string
	CreatedAt time.Time
}
