package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer anchors receivables; Supplier anchors payables. Both are minimal
// registration rows here, full contact data lives outside the ledger core.
type Customer struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Document  *string
	Email     *string
	IsActive  bool
	CreatedAt time.Time
}

type Supplier struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Document  *string
	Email     *string
	IsActive  bool
	CreatedAt time.Time
}
