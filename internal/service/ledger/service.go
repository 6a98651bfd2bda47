// Package ledger is the consistency engine of the system: it keeps bank
// account balances, transactions, installment plans, and payable/receivable
// statuses mutually consistent. Every mutating operation runs inside a single
// database transaction, and balance changes always go through the apply and
// reverse effect helpers so they stay algebraically invertible.
package ledger

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/repository"
)

type accountRepo interface {
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.BankAccount, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) (*domain.BankAccount, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, newVersion int64) error
}

type transactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Transaction, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) (*domain.Transaction, error)
	Update(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	Delete(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, filter repository.TransactionFilter) ([]domain.Transaction, error)
}

type cardRepo interface {
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.CreditCard, error)
}

type categoryRepo interface {
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Category, error)
}

type payableRepo interface {
	Create(ctx context.Context, tx *sql.Tx, p *domain.Payable) error
	CreateBatch(ctx context.Context, tx *sql.Tx, payables []*domain.Payable) error
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Payable, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) (*domain.Payable, error)
	ListOpenByCardCycle(ctx context.Context, tx *sql.Tx, companyID, cardID uuid.UUID, month, year int) ([]domain.Payable, error)
	ListByCardCycle(ctx context.Context, companyID, cardID uuid.UUID, month, year int) ([]domain.Payable, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, ids []uuid.UUID, companyID uuid.UUID, paidAt time.Time, settlementTransactionID uuid.UUID) (int, error)
	List(ctx context.Context, companyID uuid.UUID, filter repository.PayableFilter) ([]domain.Payable, error)
}

type receivableRepo interface {
	Create(ctx context.Context, tx *sql.Tx, rec *domain.Receivable) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID) (*domain.Receivable, error)
	MarkReceived(ctx context.Context, tx *sql.Tx, id, companyID uuid.UUID, receivedAt time.Time, settlementTransactionID uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, filter repository.ReceivableFilter) ([]domain.Receivable, error)
}

type customerRepo interface {
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Customer, error)
}

type supplierRepo interface {
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Supplier, error)
}

type Service struct {
	accounts     accountRepo
	transactions transactionRepo
	cards        cardRepo
	categories   categoryRepo
	payables     payableRepo
	receivables  receivableRepo
	customers    customerRepo
	suppliers    supplierRepo
	db           *sql.DB
}

func NewService(
	accounts accountRepo,
	transactions transactionRepo,
	cards cardRepo,
	categories categoryRepo,
	payables payableRepo,
	receivables receivableRepo,
	customers customerRepo,
	suppliers supplierRepo,
	db *sql.DB,
) *Service {
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		cards:        cards,
		categories:   categories,
		payables:     payables,
		receivables:  receivables,
		customers:    customers,
		suppliers:    suppliers,
		db:           db,
	}
}

func (s *Service) GetTransaction(ctx context.Context, id, companyID uuid.UUID) (*domain.Transaction, error) {
	return s.transactions.GetByID(ctx, id, companyID)
}

func (s *Service) ListTransactions(ctx context.Context, companyID uuid.UUID, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	return s.transactions.List(ctx, companyID, filter)
}

func (s *Service) ListPayables(ctx context.Context, companyID uuid.UUID, filter repository.PayableFilter) ([]domain.Payable, error) {
	return s.payables.List(ctx, companyID, filter)
}

func (s *Service) ListReceivables(ctx context.Context, companyID uuid.UUID, filter repository.ReceivableFilter) ([]domain.Receivable, error) {
	return s.receivables.List(ctx, companyID, filter)
}

// lockAccounts takes row locks in deterministic id order so concurrent
// operations touching the same pair of accounts cannot deadlock. Accounts
// that no longer exist are skipped; the strict or tolerant handling of a
// missing account is the caller's business.
func (s *Service) lockAccounts(ctx context.Context, tx *sql.Tx, companyID uuid.UUID, ids ...*uuid.UUID) error {
	seen := make(map[uuid.UUID]bool)
	var sorted []uuid.UUID
	for _, id := range ids {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		sorted = append(sorted, *id)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	for _, id := range sorted {
		if _, err := s.accounts.GetForUpdate(ctx, tx, id, companyID); err != nil {
			if isNotFound(err) {
				continue
			}
			return err
		}
	}
	return nil
}
