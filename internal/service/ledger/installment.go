package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/billing"
	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/logging"
	"github.com/finledger/backend/internal/money"
)

type CardExpenseRequest struct {
	CompanyID    uuid.UUID
	UserID       uuid.UUID
	Description  string
	TotalAmount  decimal.Decimal
	CardID       uuid.UUID
	CategoryID   *uuid.UUID
	PurchaseDate time.Time
	Installments int
}

// CreateCardExpense posts a card purchase: one transaction record for the
// full amount, tagged with the card and with no bank-account effect (cards
// move no cash until the bill is settled), plus one pending payable per
// installment. Due dates follow the card's billing cycle: installment 1 via
// the closing-day rule, each further installment one month later, clamped to
// short months. Nothing is persisted unless every row can be.
func (s *Service) CreateCardExpense(ctx context.Context, req CardExpenseRequest) (*domain.Transaction, []domain.Payable, error) {
	if req.Installments < 1 {
		return nil, nil, fmt.Errorf("CreateCardExpense: %w", domain.ErrInvalidInstallments)
	}
	if err := money.ValidateAmount(req.TotalAmount); err != nil {
		return nil, nil, fmt.Errorf("CreateCardExpense: %v: %w", err, domain.ErrInvalidAmount)
	}

	card, err := s.cards.GetByID(ctx, req.CardID, req.CompanyID)
	if err != nil {
		return nil, nil, fmt.Errorf("CreateCardExpense: card: %w", err)
	}
	if !card.IsActive {
		return nil, nil, fmt.Errorf("CreateCardExpense: %w", domain.ErrCardInactive)
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID, req.CompanyID); err != nil {
			return nil, nil, fmt.Errorf("CreateCardExpense: category: %w", err)
		}
	}

	parts, err := money.SplitInstallments(req.TotalAmount, req.Installments)
	if err != nil {
		return nil, nil, fmt.Errorf("CreateCardExpense: %w", err)
	}
	firstDue, err := billing.DueDate(card.ClosingDay, card.DueDay, req.PurchaseDate)
	if err != nil {
		return nil, nil, fmt.Errorf("CreateCardExpense: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("CreateCardExpense: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	userID := req.UserID
	cardID := card.ID
	purchase := &domain.Transaction{
		ID:           uuid.New(),
		CompanyID:    req.CompanyID,
		UserID:       &userID,
		Description:  req.Description,
		Amount:       req.TotalAmount,
		Kind:         domain.KindOutflow,
		Date:         req.PurchaseDate,
		CategoryID:   req.CategoryID,
		CreditCardID: &cardID,
		CreatedAt:    now,
	}
	if err := s.transactions.Create(ctx, tx, purchase); err != nil {
		return nil, nil, fmt.Errorf("CreateCardExpense: %w", err)
	}

	payables := make([]*domain.Payable, req.Installments)
	for i := range payables {
		transactionID := purchase.ID
		payables[i] = &domain.Payable{
			ID:                uuid.New(),
			CompanyID:         req.CompanyID,
			Description:       fmt.Sprintf("%s (%d/%d)", req.Description, i+1, req.Installments),
			Amount:            parts[i],
			DueDate:           billing.AddMonths(firstDue, i),
			Status:            domain.PayableStatusPending,
			InstallmentNumber: i + 1,
			InstallmentCount:  req.Installments,
			CategoryID:        req.CategoryID,
			TransactionID:     &transactionID,
			CreatedAt:         now,
		}
	}
	if err := s.payables.CreateBatch(ctx, tx, payables); err != nil {
		return nil, nil, fmt.Errorf("CreateCardExpense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("CreateCardExpense: commit: %w", err)
	}

	logging.FromContext(ctx).Info("card expense created",
		"transaction_id", purchase.ID,
		"card_id", card.ID,
		"installments", req.Installments,
		"total", req.TotalAmount,
	)

	out := make([]domain.Payable, len(payables))
	for i, p := range payables {
		out[i] = *p
	}
	return purchase, out, nil
}
