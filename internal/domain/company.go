package domain

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant boundary. Every other entity belongs to exactly one
// company, and every query must be scoped by its id.
type Company struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type User struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}
