package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAccountInactive     = errors.New("bank account inactive")
	ErrAccountProtected    = errors.New("bank account has transactions or cards attached")
	ErrCardInactive        = errors.New("credit card inactive")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidKind         = errors.New("kind must be inflow or outflow")
	ErrInvalidInstallments = errors.New("installment count must be at least 1")
	ErrAlreadyPaid         = errors.New("payable already paid")
	ErrAlreadyReceived     = errors.New("receivable already received")
	ErrPartialPayment      = errors.New("paid amount must equal the open amount")
	ErrNoPendingBill       = errors.New("no pending payables for this billing cycle")
	ErrVersionConflict     = errors.New("optimistic lock conflict")
	ErrInvalidRequest      = errors.New("invalid request")
)
