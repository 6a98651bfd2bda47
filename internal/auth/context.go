package auth

import (
	"context"

	"github.com/google/uuid"
)

type userIDKey struct{}
type companyIDKey struct{}

func ContextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}

// ContextWithCompanyID carries the tenant of the authenticated user. Every
// handler scopes its queries by it.
func ContextWithCompanyID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, companyIDKey{}, id)
}

func CompanyIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(companyIDKey{}).(uuid.UUID)
	return id, ok
}
