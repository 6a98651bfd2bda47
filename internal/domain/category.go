package domain

import (
	"time"

	"github.com/google/uuid"
)

// DFCClassification buckets a category for the cash-flow statement. Only the
// read-only reports depend on it.
type DFCClassification string

const (
	DFCOperational DFCClassification = "operational"
	DFCInvestment  DFCClassification = "investment"
	DFCFinancing   DFCClassification = "financing"
	DFCNone        DFCClassification = "none"
)

func (c DFCClassification) IsValid() bool {
	switch c {
	case DFCOperational, DFCInvestment, DFCFinancing, DFCNone:
		return true
	}
	return false
}

type Category struct {
	ID                uuid.UUID
	CompanyID         uuid.UUID
	Name              string
	Kind              TransactionKind
	DFCClassification DFCClassification
	DREClassification string
	CreatedAt         time.Time
}
