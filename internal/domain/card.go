package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditCard purchases are aggregated into monthly bills. ClosingDay bounds
// the billing cycle: a purchase on or after the closing day belongs to the
// next cycle. DueDay is the day of month the bill falls due.
type CreditCard struct {
	ID                  uuid.UUID
	CompanyID           uuid.UUID
	Name                string
	Brand               string
	LastDigits          string
	CreditLimit         decimal.Decimal
	ClosingDay          int
	DueDay              int
	AssociatedAccountID uuid.UUID
	IsActive            bool
	CreatedAt           time.Time
}
