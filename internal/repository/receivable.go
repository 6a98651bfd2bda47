package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain"
)

const receivableColumns = `id, company_id, description, amount, due_date, status,
	received_at, customer_id, category_id, settlement_transaction_id, created_at`

type ReceivableRepository struct {
	db *sql.DB
}

func NewReceivableRepository(db *sql.DB) *ReceivableRepository {
	return &ReceivableRepository{db: db}
}

func (r *ReceivableRepository) Create(ctx context.Context, tx *sql.Tx, rec *domain.Receivable) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO receivables (
			id, company_id, description, amount, due_date, status,
			received_at, customer_id, category_id, settlement_transaction_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.CompanyID, rec.Description, rec.Amount, rec.DueDate, rec.Status,
		rec.ReceivedAt, rec.CustomerID, rec.CategoryID, rec.SettlementTransactionID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ReceivableRepository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Receivable, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+receivableColumns+` FROM receivables WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	rec, err := scanReceivable(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return rec, nil
}

func (r *ReceivableRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) (*domain.Receivable, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+receivableColumns+` FROM receivables WHERE id = $1 AND company_id = $2 FOR UPDATE`,
		id, companyID,
	)
	rec, err := scanReceivable(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return rec, nil
}

func (r *ReceivableRepository) MarkReceived(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID, receivedAt time.Time, settlementTransactionID uuid.UUID) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE receivables SET status = 'received', received_at = $1, settlement_transaction_id = $2
		WHERE id = $3 AND company_id = $4 AND status = 'pending'`,
		receivedAt, settlementTransactionID, id, companyID,
	)
	if err != nil {
		return fmt.Errorf("MarkReceived: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkReceived: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("MarkReceived: %w", domain.ErrAlreadyReceived)
	}
	return nil
}

type ReceivableFilter struct {
	Status *domain.ReceivableStatus
	From   *time.Time
	To     *time.Time
}

func (r *ReceivableRepository) List(ctx context.Context, companyID uuid.UUID, filter ReceivableFilter) ([]domain.Receivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM receivables WHERE company_id = $1`
	args := []any{companyID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND due_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND due_date <= $%d", len(args))
	}
	query += " ORDER BY due_date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var receivables []domain.Receivable
	for rows.Next() {
		rec, err := scanReceivable(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		receivables = append(receivables, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return receivables, nil
}

func scanReceivable(s scanner) (*domain.Receivable, error) {
	var rec domain.Receivable
	err := s.Scan(
		&rec.ID, &rec.CompanyID, &rec.Description, &rec.Amount, &rec.DueDate, &rec.Status,
		&rec.ReceivedAt, &rec.CustomerID, &rec.CategoryID, &rec.SettlementTransactionID, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
