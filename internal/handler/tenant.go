package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/auth"
)

// tenantFromContext returns the authenticated company, the scope of every
// query a handler runs.
func tenantFromContext(r *http.Request) (uuid.UUID, *AppError) {
	companyID, ok := auth.CompanyIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}
	return companyID, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}
	return id, nil
}
