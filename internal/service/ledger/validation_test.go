package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/service/ledger"
)

// Validation failures must short-circuit before the service touches the
// database, so a zero-value service is enough here.
func newBareService() *ledger.Service {
	return ledger.NewService(nil, nil, nil, nil, nil, nil, nil, nil, nil)
}

func TestCreateTransaction_Validation(t *testing.T) {
	svc := newBareService()
	ctx := context.Background()

	tests := []struct {
		name    string
		amount  decimal.Decimal
		kind    domain.TransactionKind
		wantErr error
	}{
		{"zero amount", decimal.Zero, domain.KindInflow, domain.ErrInvalidAmount},
		{"negative amount", decimal.RequireFromString("-10.00"), domain.KindOutflow, domain.ErrInvalidAmount},
		{"sub-cent precision", decimal.RequireFromString("10.001"), domain.KindInflow, domain.ErrInvalidAmount},
		{"unknown kind", decimal.RequireFromString("10.00"), domain.TransactionKind("transfer"), domain.ErrInvalidKind},
		{"empty kind", decimal.RequireFromString("10.00"), domain.TransactionKind(""), domain.ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
				CompanyID:   uuid.New(),
				UserID:      uuid.New(),
				Description: "x",
				Amount:      tt.amount,
				Kind:        tt.kind,
				Date:        time.Now(),
			})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateTransaction_Validation(t *testing.T) {
	svc := newBareService()

	_, err := svc.UpdateTransaction(context.Background(), uuid.New(), uuid.New(), ledger.UpdateTransactionRequest{
		Description: "x",
		Amount:      decimal.RequireFromString("-1"),
		Kind:        domain.KindInflow,
		Date:        time.Now(),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCreateCardExpense_Validation(t *testing.T) {
	svc := newBareService()
	ctx := context.Background()

	_, _, err := svc.CreateCardExpense(ctx, ledger.CardExpenseRequest{
		CompanyID:    uuid.New(),
		TotalAmount:  decimal.RequireFromString("100.00"),
		CardID:       uuid.New(),
		PurchaseDate: time.Now(),
		Installments: 0,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInstallments)

	_, _, err = svc.CreateCardExpense(ctx, ledger.CardExpenseRequest{
		CompanyID:    uuid.New(),
		TotalAmount:  decimal.Zero,
		CardID:       uuid.New(),
		PurchaseDate: time.Now(),
		Installments: 3,
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestPayCardBill_Validation(t *testing.T) {
	svc := newBareService()
	ctx := context.Background()

	_, err := svc.PayCardBill(ctx, ledger.PayCardBillRequest{
		CompanyID:  uuid.New(),
		CardID:     uuid.New(),
		Month:      13,
		Year:       2026,
		PaidAmount: decimal.RequireFromString("100.00"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.PayCardBill(ctx, ledger.PayCardBillRequest{
		CompanyID:  uuid.New(),
		CardID:     uuid.New(),
		Month:      6,
		Year:       2026,
		PaidAmount: decimal.Zero,
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestMarkPayablePaid_RejectsInvalidAmount(t *testing.T) {
	svc := newBareService()

	_, err := svc.MarkPayablePaid(context.Background(), uuid.New(), uuid.New(), uuid.New(), time.Now(), decimal.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}
