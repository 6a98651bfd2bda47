package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain"
)

const cardColumns = `id, company_id, name, brand, last_digits, credit_limit,
	closing_day, due_day, associated_account_id, is_active, created_at`

type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(ctx context.Context, card *domain.CreditCard) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credit_cards (
			id, company_id, name, brand, last_digits, credit_limit,
			closing_day, due_day, associated_account_id, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		card.ID, card.CompanyID, card.Name, card.Brand, card.LastDigits, card.CreditLimit,
		card.ClosingDay, card.DueDay, card.AssociatedAccountID, card.IsActive, card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CardRepository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.CreditCard, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM credit_cards WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CardRepository) List(ctx context.Context, companyID uuid.UUID) ([]domain.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM credit_cards WHERE company_id = $1 ORDER BY name`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var cards []domain.CreditCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		cards = append(cards, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return cards, nil
}

func scanCard(s scanner) (*domain.CreditCard, error) {
	var c domain.CreditCard
	err := s.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Brand, &c.LastDigits, &c.CreditLimit,
		&c.ClosingDay, &c.DueDay, &c.AssociatedAccountID, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
