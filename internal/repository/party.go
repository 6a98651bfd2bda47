package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain"
)

const partyColumns = `id, company_id, name, document, email, is_active, created_at`

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, company_id, name, document, email, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.CompanyID, c.Name, c.Document, c.Email, c.IsActive, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM customers WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	var c domain.Customer
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Document, &c.Email, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) List(ctx context.Context, companyID uuid.UUID) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+partyColumns+` FROM customers WHERE company_id = $1 ORDER BY name`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Document, &c.Email, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return customers, nil
}

type SupplierRepository struct {
	db *sql.DB
}

func NewSupplierRepository(db *sql.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(ctx context.Context, s *domain.Supplier) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO suppliers (id, company_id, name, document, email, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.CompanyID, s.Name, s.Document, s.Email, s.IsActive, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *SupplierRepository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Supplier, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM suppliers WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	var s domain.Supplier
	err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Document, &s.Email, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &s, nil
}

func (r *SupplierRepository) List(ctx context.Context, companyID uuid.UUID) ([]domain.Supplier, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+partyColumns+` FROM suppliers WHERE company_id = $1 ORDER BY name`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Document, &s.Email, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return suppliers, nil
}
