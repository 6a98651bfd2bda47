package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain"
)

const accountColumns = `id, company_id, name, account_type, balance, version,
	is_active, notes, created_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.BankAccount) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bank_accounts (
			id, company_id, name, account_type, balance, version, is_active, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID, account.CompanyID, account.Name, account.Type,
		account.Balance, account.Version, account.IsActive, account.Notes, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.BankAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context, companyID uuid.UUID) ([]domain.BankAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE company_id = $1 ORDER BY name`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var accounts []domain.BankAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return accounts, nil
}

// GetForUpdate takes the row lock that serializes concurrent balance changes
// on the same account.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) (*domain.BankAccount, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1 AND company_id = $2 FOR UPDATE`,
		id, companyID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bank_accounts SET balance = $1, version = $2 WHERE id = $3 AND version = $4`,
		newBalance, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrVersionConflict)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.BankAccount) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bank_accounts SET name = $1, account_type = $2, is_active = $3, notes = $4
		WHERE id = $5 AND company_id = $6`,
		account.Name, account.Type, account.IsActive, account.Notes,
		account.ID, account.CompanyID,
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

// Delete fails with ErrAccountProtected while transactions or credit cards
// still reference the account (FK RESTRICT).
func (r *AccountRepository) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM bank_accounts WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("Delete: %w", domain.ErrAccountProtected)
		}
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

func scanAccount(s scanner) (*domain.BankAccount, error) {
	var a domain.BankAccount
	err := s.Scan(
		&a.ID, &a.CompanyID, &a.Name, &a.Type,
		&a.Balance, &a.Version, &a.IsActive, &a.Notes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
