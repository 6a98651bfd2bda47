package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/repository"
	"github.com/finledger/backend/internal/service/ledger"
	"github.com/finledger/backend/internal/service/report"
	"github.com/finledger/backend/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReports(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := report.NewService(db)
	led := ledger.NewService(
		repository.NewAccountRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewCardRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewPayableRepository(db),
		repository.NewReceivableRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewSupplierRepository(db),
		db,
	)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	sales := testutil.SeedCategory(t, db, company.ID, "Sales", domain.KindInflow, domain.DFCOperational)
	rent := testutil.SeedCategory(t, db, company.ID, "Rent", domain.KindOutflow, domain.DFCOperational)
	equipment := testutil.SeedCategory(t, db, company.ID, "Equipment", domain.KindOutflow, domain.DFCInvestment)
	accountID := acct.ID

	entries := []struct {
		desc     string
		amount   string
		kind     domain.TransactionKind
		date     time.Time
		category *domain.Category
	}{
		{"january sale", "500.00", domain.KindInflow, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), sales},
		{"january rent", "200.00", domain.KindOutflow, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), rent},
		{"february sale", "300.00", domain.KindInflow, time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC), sales},
		{"new machine", "100.00", domain.KindOutflow, time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC), equipment},
	}
	for _, e := range entries {
		catID := e.category.ID
		_, err := led.CreateTransaction(ctx, ledger.CreateTransactionRequest{
			CompanyID:     company.ID,
			UserID:        user.ID,
			Description:   e.desc,
			Amount:        dec(e.amount),
			Kind:          e.kind,
			Date:          e.date,
			CategoryID:    &catID,
			BankAccountID: &accountID,
		})
		require.NoError(t, err)
	}

	t.Run("balance as of", func(t *testing.T) {
		// current balance 1000 + 500 - 200 + 300 - 100 = 1500;
		// as of Jan 31 the February entries are backed out
		balances, err := svc.BalanceAsOf(ctx, company.ID, time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, balances, 1)
		assert.True(t, balances[0].Balance.Equal(dec("1300.00")))

		now, err := svc.BalanceAsOf(ctx, company.ID, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, now, 1)
		assert.True(t, now[0].Balance.Equal(dec("1500.00")))
	})

	t.Run("flow by classification", func(t *testing.T) {
		flows, err := svc.FlowByClassification(ctx, company.ID,
			time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		require.Len(t, flows, 2)

		byClass := map[domain.DFCClassification]report.ClassificationFlow{}
		for _, f := range flows {
			byClass[f.Classification] = f
		}
		op := byClass[domain.DFCOperational]
		assert.True(t, op.Inflow.Equal(dec("800.00")))
		assert.True(t, op.Outflow.Equal(dec("200.00")))
		assert.True(t, op.Net.Equal(dec("600.00")))

		inv := byClass[domain.DFCInvestment]
		assert.True(t, inv.Outflow.Equal(dec("100.00")))
		assert.True(t, inv.Net.Equal(dec("-100.00")))
	})

	t.Run("monthly summary", func(t *testing.T) {
		months, err := svc.MonthlySummary(ctx, company.ID, 2026)
		require.NoError(t, err)
		require.Len(t, months, 2)

		assert.Equal(t, 1, months[0].Month)
		assert.True(t, months[0].Net.Equal(dec("300.00")))
		assert.Equal(t, 2, months[1].Month)
		assert.True(t, months[1].Net.Equal(dec("200.00")))
	})

	t.Run("open item aging", func(t *testing.T) {
		_, err := led.CreatePayable(ctx, ledger.CreatePayableRequest{
			CompanyID:   company.ID,
			Description: "fresh bill",
			Amount:      dec("100.00"),
			DueDate:     time.Now().AddDate(0, 0, 10),
		})
		require.NoError(t, err)
		_, err = led.CreatePayable(ctx, ledger.CreatePayableRequest{
			CompanyID:   company.ID,
			Description: "stale bill",
			Amount:      dec("40.00"),
			DueDate:     time.Now().AddDate(0, 0, -45),
		})
		require.NoError(t, err)

		aging, err := svc.OpenItemAging(ctx, company.ID, time.Now())
		require.NoError(t, err)

		byBucket := map[string]report.AgingBucket{}
		for _, b := range aging.Payables {
			byBucket[b.Bucket] = b
		}
		assert.Equal(t, 1, byBucket["current"].Count)
		assert.Equal(t, 1, byBucket["31-60"].Count)
		assert.Empty(t, aging.Receivables)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		other := testutil.SeedCompany(t, db, "Rival")
		balances, err := svc.BalanceAsOf(ctx, other.ID, time.Now())
		require.NoError(t, err)
		assert.Empty(t, balances)
	})
}
