package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayableStatus string

const (
	PayableStatusPending PayableStatus = "pending"
	PayableStatusPaid    PayableStatus = "paid"
	// PayableStatusOverdue is derived at read time, never stored.
	PayableStatusOverdue PayableStatus = "overdue"
)

// Payable is money the company owes. A non-nil TransactionID marks it as one
// installment of a card purchase; nil means a manually entered bill.
// SettlementTransactionID is set when the settlement engine pays it.
type Payable struct {
	ID                      uuid.UUID
	CompanyID               uuid.UUID
	Description             string
	Amount                  decimal.Decimal
	DueDate                 time.Time
	Status                  PayableStatus
	PaidAt                  *time.Time
	InstallmentNumber       int
	InstallmentCount        int
	SupplierID              *uuid.UUID
	CategoryID              *uuid.UUID
	TransactionID           *uuid.UUID
	SettlementTransactionID *uuid.UUID
	CreatedAt               time.Time
}

// EffectiveStatus reports overdue for open payables past their due date
// without mutating anything.
func (p *Payable) EffectiveStatus(today time.Time) PayableStatus {
	if p.Status == PayableStatusPaid {
		return PayableStatusPaid
	}
	if p.DueDate.Before(truncateToDay(today)) {
		return PayableStatusOverdue
	}
	return PayableStatusPending
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
