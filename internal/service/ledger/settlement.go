package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/logging"
	"github.com/finledger/backend/internal/money"
)

// MarkPayablePaid settles a single payable: one outflow transaction against
// the chosen bank account and the payable flipped to paid, atomically.
// Partial payments are rejected; the paid amount must match the payable
// exactly.
func (s *Service) MarkPayablePaid(ctx context.Context, payableID, companyID, bankAccountID uuid.UUID, paymentDate time.Time, paidAmount decimal.Decimal) (*domain.Payable, error) {
	if err := money.ValidateAmount(paidAmount); err != nil {
		return nil, fmt.Errorf("MarkPayablePaid: %v: %w", err, domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("MarkPayablePaid: begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := s.payables.GetForUpdate(ctx, tx, payableID, companyID)
	if err != nil {
		return nil, fmt.Errorf("MarkPayablePaid: %w", err)
	}
	if p.Status == domain.PayableStatusPaid {
		return nil, fmt.Errorf("MarkPayablePaid: %w", domain.ErrAlreadyPaid)
	}
	if !paidAmount.Equal(p.Amount) {
		return nil, fmt.Errorf("MarkPayablePaid: %w", domain.ErrPartialPayment)
	}

	settlement, err := s.postSettlement(ctx, tx, settlementPost{
		companyID:     companyID,
		bankAccountID: bankAccountID,
		description:   p.Description,
		amount:        paidAmount,
		kind:          domain.KindOutflow,
		date:          paymentDate,
		categoryID:    p.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("MarkPayablePaid: %w", err)
	}

	count, err := s.payables.MarkPaid(ctx, tx, []uuid.UUID{p.ID}, companyID, paymentDate, settlement.ID)
	if err != nil {
		return nil, fmt.Errorf("MarkPayablePaid: %w", err)
	}
	if count != 1 {
		return nil, fmt.Errorf("MarkPayablePaid: %w", domain.ErrAlreadyPaid)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("MarkPayablePaid: commit: %w", err)
	}

	logging.FromContext(ctx).Info("payable settled",
		"payable_id", p.ID,
		"settlement_transaction_id", settlement.ID,
		"amount", paidAmount,
	)

	paid := *p
	paid.Status = domain.PayableStatusPaid
	paid.PaidAt = &paymentDate
	paid.SettlementTransactionID = &settlement.ID
	return &paid, nil
}

// MarkReceivableReceived mirrors MarkPayablePaid for money coming in.
func (s *Service) MarkReceivableReceived(ctx context.Context, receivableID, companyID, bankAccountID uuid.UUID, receiveDate time.Time, receivedAmount decimal.Decimal) (*domain.Receivable, error) {
	if err := money.ValidateAmount(receivedAmount); err != nil {
		return nil, fmt.Errorf("MarkReceivableReceived: %v: %w", err, domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("MarkReceivableReceived: begin tx: %w", err)
	}
	defer tx.Rollback()

	rec, err := s.receivables.GetForUpdate(ctx, tx, receivableID, companyID)
	if err != nil {
		return nil, fmt.Errorf("MarkReceivableReceived: %w", err)
	}
	if rec.Status == domain.ReceivableStatusReceived {
		return nil, fmt.Errorf("MarkReceivableReceived: %w", domain.ErrAlreadyReceived)
	}
	if !receivedAmount.Equal(rec.Amount) {
		return nil, fmt.Errorf("MarkReceivableReceived: %w", domain.ErrPartialPayment)
	}

	settlement, err := s.postSettlement(ctx, tx, settlementPost{
		companyID:     companyID,
		bankAccountID: bankAccountID,
		description:   rec.Description,
		amount:        receivedAmount,
		kind:          domain.KindInflow,
		date:          receiveDate,
		categoryID:    rec.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("MarkReceivableReceived: %w", err)
	}

	if err := s.receivables.MarkReceived(ctx, tx, rec.ID, companyID, receiveDate, settlement.ID); err != nil {
		return nil, fmt.Errorf("MarkReceivableReceived: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("MarkReceivableReceived: commit: %w", err)
	}

	logging.FromContext(ctx).Info("receivable settled",
		"receivable_id", rec.ID,
		"settlement_transaction_id", settlement.ID,
		"amount", receivedAmount,
	)

	received := *rec
	received.Status = domain.ReceivableStatusReceived
	received.ReceivedAt = &receiveDate
	received.SettlementTransactionID = &settlement.ID
	return &received, nil
}

type PayCardBillRequest struct {
	CompanyID     uuid.UUID
	CardID        uuid.UUID
	Month         int
	Year          int
	BankAccountID uuid.UUID
	PaidAmount    decimal.Decimal
	PaymentDate   time.Time
}

// PayCardBill settles a whole billing cycle at once: every open installment
// of the card due in the given month flips to paid, and a single aggregate
// outflow transaction for the paid amount is posted against the chosen
// account. One transaction for N payables, unlike the 1:1 single-payable
// path. Returns how many payables were settled.
func (s *Service) PayCardBill(ctx context.Context, req PayCardBillRequest) (int, error) {
	if err := money.ValidateAmount(req.PaidAmount); err != nil {
		return 0, fmt.Errorf("PayCardBill: %v: %w", err, domain.ErrInvalidAmount)
	}
	if req.Month < 1 || req.Month > 12 {
		return 0, fmt.Errorf("PayCardBill: month %d: %w", req.Month, domain.ErrInvalidRequest)
	}

	card, err := s.cards.GetByID(ctx, req.CardID, req.CompanyID)
	if err != nil {
		return 0, fmt.Errorf("PayCardBill: card: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("PayCardBill: begin tx: %w", err)
	}
	defer tx.Rollback()

	open, err := s.payables.ListOpenByCardCycle(ctx, tx, req.CompanyID, card.ID, req.Month, req.Year)
	if err != nil {
		return 0, fmt.Errorf("PayCardBill: %w", err)
	}
	if len(open) == 0 {
		return 0, fmt.Errorf("PayCardBill: %w", domain.ErrNoPendingBill)
	}

	settlement, err := s.postSettlement(ctx, tx, settlementPost{
		companyID:     req.CompanyID,
		bankAccountID: req.BankAccountID,
		description:   fmt.Sprintf("%s bill %02d/%d", card.Name, req.Month, req.Year),
		amount:        req.PaidAmount,
		kind:          domain.KindOutflow,
		date:          req.PaymentDate,
	})
	if err != nil {
		return 0, fmt.Errorf("PayCardBill: %w", err)
	}

	ids := make([]uuid.UUID, len(open))
	for i := range open {
		ids[i] = open[i].ID
	}
	count, err := s.payables.MarkPaid(ctx, tx, ids, req.CompanyID, req.PaymentDate, settlement.ID)
	if err != nil {
		return 0, fmt.Errorf("PayCardBill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("PayCardBill: commit: %w", err)
	}

	logging.FromContext(ctx).Info("card bill settled",
		"card_id", card.ID,
		"month", req.Month,
		"year", req.Year,
		"payables_settled", count,
		"settlement_transaction_id", settlement.ID,
	)
	return count, nil
}

type settlementPost struct {
	companyID     uuid.UUID
	bankAccountID uuid.UUID
	description   string
	amount        decimal.Decimal
	kind          domain.TransactionKind
	date          time.Time
	categoryID    *uuid.UUID
}

// postSettlement creates the cash-moving transaction of a settlement and
// applies its ledger effect, inside the caller's database transaction.
func (s *Service) postSettlement(ctx context.Context, tx *sql.Tx, post settlementPost) (*domain.Transaction, error) {
	acct, err := s.accounts.GetForUpdate(ctx, tx, post.bankAccountID, post.companyID)
	if err != nil {
		return nil, fmt.Errorf("postSettlement: account: %w", err)
	}
	if !acct.IsActive {
		return nil, fmt.Errorf("postSettlement: %w", domain.ErrAccountInactive)
	}

	accountID := acct.ID
	settlement := &domain.Transaction{
		ID:            uuid.New(),
		CompanyID:     post.companyID,
		Description:   post.description,
		Amount:        post.amount,
		Kind:          post.kind,
		Date:          post.date,
		CategoryID:    post.categoryID,
		BankAccountID: &accountID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.transactions.Create(ctx, tx, settlement); err != nil {
		return nil, fmt.Errorf("postSettlement: %w", err)
	}
	if err := s.applyEffect(ctx, tx, settlement.BankAccountID, post.companyID, settlement.Amount, settlement.Kind); err != nil {
		return nil, fmt.Errorf("postSettlement: %w", err)
	}
	return settlement, nil
}
