package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/finledger/backend/internal/domain"
)

const payableColumns = `id, company_id, description, amount, due_date, status, paid_at,
	installment_number, installment_count, supplier_id, category_id,
	transaction_id, settlement_transaction_id, created_at`

type PayableRepository struct {
	db *sql.DB
}

func NewPayableRepository(db *sql.DB) *PayableRepository {
	return &PayableRepository{db: db}
}

func (r *PayableRepository) Create(ctx context.Context, tx *sql.Tx, p *domain.Payable) error {
	_, err := tx.ExecContext(ctx, insertPayableSQL, payableArgs(p)...)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// CreateBatch inserts a whole installment plan. The surrounding transaction
// makes the plan all-or-nothing.
func (r *PayableRepository) CreateBatch(ctx context.Context, tx *sql.Tx, payables []*domain.Payable) error {
	for _, p := range payables {
		if _, err := tx.ExecContext(ctx, insertPayableSQL, payableArgs(p)...); err != nil {
			return fmt.Errorf("CreateBatch: installment %d: %w", p.InstallmentNumber, err)
		}
	}
	return nil
}

const insertPayableSQL = `INSERT INTO payables (
	id, company_id, description, amount, due_date, status, paid_at,
	installment_number, installment_count, supplier_id, category_id,
	transaction_id, settlement_transaction_id, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func payableArgs(p *domain.Payable) []any {
	return []any{
		p.ID, p.CompanyID, p.Description, p.Amount, p.DueDate, p.Status, p.PaidAt,
		p.InstallmentNumber, p.InstallmentCount, p.SupplierID, p.CategoryID,
		p.TransactionID, p.SettlementTransactionID, p.CreatedAt,
	}
}

func (r *PayableRepository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Payable, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+payableColumns+` FROM payables WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	p, err := scanPayable(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

// GetForUpdate locks the payable so two settlements cannot race each other.
func (r *PayableRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) (*domain.Payable, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+payableColumns+` FROM payables WHERE id = $1 AND company_id = $2 FOR UPDATE`,
		id, companyID,
	)
	p, err := scanPayable(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return p, nil
}

// ListOpenByCardCycle returns the still-unpaid installments of a card whose
// due date falls in the given billing month, locked for settlement.
func (r *PayableRepository) ListOpenByCardCycle(ctx context.Context, tx *sql.Tx, companyID, cardID uuid.UUID, month, year int) ([]domain.Payable, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+prefixedPayableColumns("p")+` FROM payables p
		JOIN transactions t ON t.id = p.transaction_id
		WHERE p.company_id = $1
		  AND t.credit_card_id = $2
		  AND p.status = 'pending'
		  AND EXTRACT(MONTH FROM p.due_date) = $3
		  AND EXTRACT(YEAR FROM p.due_date) = $4
		ORDER BY p.installment_number
		FOR UPDATE OF p`,
		companyID, cardID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("ListOpenByCardCycle: %w", err)
	}
	defer rows.Close()

	var payables []domain.Payable
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, fmt.Errorf("ListOpenByCardCycle: scan: %w", err)
		}
		payables = append(payables, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListOpenByCardCycle: rows: %w", err)
	}
	return payables, nil
}

// ListByCardCycle returns every installment of a card, paid or not, whose due
// date falls in the given billing month. Read-only counterpart of
// ListOpenByCardCycle, used for bill summaries.
func (r *PayableRepository) ListByCardCycle(ctx context.Context, companyID, cardID uuid.UUID, month, year int) ([]domain.Payable, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+prefixedPayableColumns("p")+` FROM payables p
		JOIN transactions t ON t.id = p.transaction_id
		WHERE p.company_id = $1
		  AND t.credit_card_id = $2
		  AND EXTRACT(MONTH FROM p.due_date) = $3
		  AND EXTRACT(YEAR FROM p.due_date) = $4
		ORDER BY p.installment_number`,
		companyID, cardID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCardCycle: %w", err)
	}
	defer rows.Close()

	var payables []domain.Payable
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByCardCycle: scan: %w", err)
		}
		payables = append(payables, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByCardCycle: rows: %w", err)
	}
	return payables, nil
}

// MarkPaid flips a set of payables to paid and links the settlement
// transaction, returning how many rows actually transitioned.
func (r *PayableRepository) MarkPaid(ctx context.Context, tx *sql.Tx, ids []uuid.UUID, companyID uuid.UUID, paidAt time.Time, settlementTransactionID uuid.UUID) (int, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE payables SET status = 'paid', paid_at = $1, settlement_transaction_id = $2
		WHERE id = ANY($3) AND company_id = $4 AND status = 'pending'`,
		paidAt, settlementTransactionID, pq.Array(ids), companyID,
	)
	if err != nil {
		return 0, fmt.Errorf("MarkPaid: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("MarkPaid: rows affected: %w", err)
	}
	return int(rows), nil
}

type PayableFilter struct {
	Status *domain.PayableStatus
	From   *time.Time
	To     *time.Time
}

func (r *PayableRepository) List(ctx context.Context, companyID uuid.UUID, filter PayableFilter) ([]domain.Payable, error) {
	query := `SELECT ` + payableColumns + ` FROM payables WHERE company_id = $1`
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
	query += " ORDER BY due_date, installment_number"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var payables []domain.Payable
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		payables = append(payables, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return payables, nil
}

func prefixedPayableColumns(alias string) string {
	return alias + `.id, ` + alias + `.company_id, ` + alias + `.description, ` +
		alias + `.amount, ` + alias + `.due_date, ` + alias + `.status, ` + alias + `.paid_at, ` +
		alias + `.installment_number, ` + alias + `.installment_count, ` + alias + `.supplier_id, ` +
		alias + `.category_id, ` + alias + `.transaction_id, ` + alias + `.settlement_transaction_id, ` +
		alias + `.created_at`
}

func scanPayable(s scanner) (*domain.Payable, error) {
	var p domain.Payable
	err := s.Scan(
		&p.ID, &p.CompanyID, &p.Description, &p.Amount, &p.DueDate, &p.Status, &p.PaidAt,
		&p.InstallmentNumber, &p.InstallmentCount, &p.SupplierID, &p.CategoryID,
		&p.TransactionID, &p.SettlementTransactionID, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
