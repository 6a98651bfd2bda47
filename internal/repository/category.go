package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain"
)

const categoryColumns = `id, company_id, name, kind, dfc_classification, dre_classification, created_at`

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, company_id, name, kind, dfc_classification, dre_classification, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.CompanyID, c.Name, c.Kind, c.DFCClassification, c.DREClassification, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) List(ctx context.Context, companyID uuid.UUID, kind *domain.TransactionKind) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE company_id = $1`
	args := []any{companyID}
	if kind != nil {
		args = append(args, *kind)
		query += " AND kind = $2"
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return categories, nil
}

// Delete removes a category; transactions and payables that referenced it
// keep existing with a null category (FK SET NULL).
func (r *CategoryRepository) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanCategory(s scanner) (*domain.Category, error) {
	var c domain.Category
	err := s.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Kind,
		&c.DFCClassification, &c.DREClassification, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
