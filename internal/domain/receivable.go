package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReceivableStatus string

const (
	ReceivableStatusPending  ReceivableStatus = "pending"
	ReceivableStatusReceived ReceivableStatus = "received"
	// ReceivableStatusOverdue is derived at read time, never stored.
	ReceivableStatusOverdue ReceivableStatus = "overdue"
)

// Receivable mirrors Payable for money owed to the company by a customer.
type Receivable struct {
	ID                      uuid.UUID
	CompanyID               uuid.UUID
	Description             string
	Amount                  decimal.Decimal
	DueDate                 time.Time
	Status                  ReceivableStatus
	ReceivedAt              *time.Time
	CustomerID              *uuid.UUID
	CategoryID              *uuid.UUID
	SettlementTransactionID *uuid.UUID
	CreatedAt               time.Time
}

func (r *Receivable) EffectiveStatus(today time.Time) ReceivableStatus {
	if r.Status == ReceivableStatusReceived {
		return ReceivableStatusReceived
	}
	if r.DueDate.Before(truncateToDay(today)) {
		return ReceivableStatusOverdue
	}
	return ReceivableStatusPending
}
