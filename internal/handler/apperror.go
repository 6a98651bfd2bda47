package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive with at most two decimal places"}
	ErrInvalidKind         = &AppError{http.StatusBadRequest, "INVALID_KIND", "Kind must be inflow or outflow"}
	ErrInvalidInstallments = &AppError{http.StatusBadRequest, "INVALID_INSTALLMENTS", "Installments must be at least 1"}
	ErrAccountInactive     = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_INACTIVE", "Bank account is inactive"}
	ErrAccountProtected    = &AppError{http.StatusConflict, "ACCOUNT_PROTECTED", "Bank account still has transactions or cards attached"}
	ErrCardInactive        = &AppError{http.StatusUnprocessableEntity, "CARD_INACTIVE", "Credit card is inactive"}
	ErrAlreadyPaid         = &AppError{http.StatusConflict, "ALREADY_PAID", "Payable has already been paid"}
	ErrAlreadyReceived     = &AppError{http.StatusConflict, "ALREADY_RECEIVED", "Receivable has already been received"}
	ErrPartialPayment      = &AppError{http.StatusUnprocessableEntity, "PARTIAL_PAYMENT_NOT_SUPPORTED", "Paid amount must match the open amount exactly"}
	ErrNoPendingBill       = &AppError{http.StatusConflict, "NO_PENDING_BILL", "No pending installments for this billing cycle"}
	ErrVersionConflict     = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}
)
