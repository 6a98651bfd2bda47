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

const transactionColumns = `id, company_id, user_id, description, amount, kind,
	transaction_date, category_id, bank_account_id, credit_card_id, notes, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (
			id, company_id, user_id, description, amount, kind,
			transaction_date, category_id, bank_account_id, credit_card_id, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.CompanyID, t.UserID, t.Description, t.Amount, t.Kind,
		t.Date, t.CategoryID, t.BankAccountID, t.CreditCardID, t.Notes, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// GetForUpdate locks the transaction row and returns its persisted state.
// The caller keeps this snapshot as the "before" side of an update diff.
func (r *TransactionRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) (*domain.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND company_id = $2 FOR UPDATE`,
		id, companyID,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE transactions SET description = $1, amount = $2, kind = $3,
			transaction_date = $4, category_id = $5, bank_account_id = $6, notes = $7
		WHERE id = $8 AND company_id = $9`,
		t.Description, t.Amount, t.Kind, t.Date, t.CategoryID, t.BankAccountID, t.Notes,
		t.ID, t.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND company_id = $2`,
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

type TransactionFilter struct {
	Kind          *domain.TransactionKind
	BankAccountID *uuid.UUID
	From          *time.Time
	To            *time.Time
}

func (r *TransactionRepository) List(ctx context.Context, companyID uuid.UUID, filter TransactionFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE company_id = $1`
	args := []any{companyID}

	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.BankAccountID != nil {
		args = append(args, *filter.BankAccountID)
		query += fmt.Sprintf(" AND bank_account_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND transaction_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND transaction_date <= $%d", len(args))
	}
	query += " ORDER BY transaction_date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return transactions, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.ID, &t.CompanyID, &t.UserID, &t.Description, &t.Amount, &t.Kind,
		&t.Date, &t.CategoryID, &t.BankAccountID, &t.CreditCardID, &t.Notes, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
