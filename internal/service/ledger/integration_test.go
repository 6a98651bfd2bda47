package ledger_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finledger/backend/internal/domain"
	"github.com/finledger/backend/internal/repository"
	"github.com/finledger/backend/internal/service/ledger"
	"github.com/finledger/backend/internal/testutil"
)

func setupLedgerService(t *testing.T, db *sql.DB) *ledger.Service {
	t.Helper()
	return ledger.NewService(
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
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateTransaction_AppliesBalanceEffect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	accountID := acct.ID

	tx, err := svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:     company.ID,
		UserID:        user.ID,
		Description:   "client payment",
		Amount:        dec("250.50"),
		Kind:          domain.KindInflow,
		Date:          time.Now(),
		BankAccountID: &accountID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindInflow, tx.Kind)

	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1250.50")))

	_, err = svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:     company.ID,
		UserID:        user.ID,
		Description:   "office rent",
		Amount:        dec("800.00"),
		Kind:          domain.KindOutflow,
		Date:          time.Now(),
		BankAccountID: &accountID,
	})
	require.NoError(t, err)
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("450.50")))
}

func TestCreateTransaction_NoAccountNoEffect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))

	_, err := svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:   company.ID,
		UserID:      user.ID,
		Description: "unassigned expense",
		Amount:      dec("99.99"),
		Kind:        domain.KindOutflow,
		Date:        time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1000.00")))
}

func TestCreateTransaction_InactiveAccountRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedInactiveAccount(t, db, company.ID, "Closed")
	accountID := acct.ID

	_, err := svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:     company.ID,
		UserID:        user.ID,
		Description:   "x",
		Amount:        dec("10.00"),
		Kind:          domain.KindInflow,
		Date:          time.Now(),
		BankAccountID: &accountID,
	})
	require.ErrorIs(t, err, domain.ErrAccountInactive)
	assert.Equal(t, 0, testutil.CountTransactions(t, db, company.ID))
}

func TestUpdateTransaction_SameAccountDelta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	accountID := acct.ID

	tx, err := svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:     company.ID,
		UserID:        user.ID,
		Description:   "sale",
		Amount:        dec("100.00"),
		Kind:          domain.KindInflow,
		Date:          time.Now(),
		BankAccountID: &accountID,
	})
	require.NoError(t, err)
	require.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1100.00")))

	updated, err := svc.UpdateTransaction(ctx, tx.ID, company.ID, ledger.UpdateTransactionRequest{
		Description:   "sale (corrected)",
		Amount:        dec("150.00"),
		Kind:          domain.KindInflow,
		Date:          tx.Date,
		BankAccountID: &accountID,
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(dec("150.00")))

	// reverse 100 then apply 150: net +50 over the original
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1150.00")))
}

func TestUpdateTransaction_KindFlip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	accountID := acct.ID

	tx, err := svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:     company.ID,
		UserID:        user.ID,
		Description:   "mistyped",
		Amount:        dec("200.00"),
		Kind:          domain.KindInflow,
		Date:          time.Now(),
		BankAccountID: &accountID,
	})
	require.NoError(t, err)

	_, err = svc.UpdateTransaction(ctx, tx.ID, company.ID, ledger.UpdateTransactionRequest{
		Description:   "mistyped",
		Amount:        dec("200.00"),
		Kind:          domain.KindOutflow,
		Date:          tx.Date,
		BankAccountID: &accountID,
	})
	require.NoError(t, err)

	// +200 reversed, -200 applied: 1000 + 200 - 200 - 200 = 800
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("800.00")))
}

func TestUpdateTransaction_MoveAcrossAccountsConservesTotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	src := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	dst := testutil.SeedAccount(t, db, company.ID, "Savings", dec("500.00"))
	srcID, dstID := src.ID, dst.ID

	tx, err := svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:     company.ID,
		UserID:        user.ID,
		Description:   "deposit",
		Amount:        dec("300.00"),
		Kind:          domain.KindInflow,
		Date:          time.Now(),
		BankAccountID: &srcID,
	})
	require.NoError(t, err)

	_, err = svc.UpdateTransaction(ctx, tx.ID, company.ID, ledger.UpdateTransactionRequest{
		Description:   "deposit",
		Amount:        dec("300.00"),
		Kind:          domain.KindInflow,
		Date:          tx.Date,
		BankAccountID: &dstID,
	})
	require.NoError(t, err)

	assert.True(t, testutil.GetAccountBalance(t, db, src.ID).Equal(dec("1000.00")))
	assert.True(t, testutil.GetAccountBalance(t, db, dst.ID).Equal(dec("800.00")))
}

func TestDeleteTransaction_ReversesEffect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	accountID := acct.ID

	tx, err := svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:     company.ID,
		UserID:        user.ID,
		Description:   "supplies",
		Amount:        dec("123.45"),
		Kind:          domain.KindOutflow,
		Date:          time.Now(),
		BankAccountID: &accountID,
	})
	require.NoError(t, err)
	require.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("876.55")))

	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID, company.ID))

	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1000.00")))
	_, err = svc.GetTransaction(ctx, tx.ID, company.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTenantIsolation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	acme := testutil.SeedCompany(t, db, "Acme")
	rival := testutil.SeedCompany(t, db, "Rival")
	user := testutil.SeedUser(t, db, acme.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, acme.ID, "Checking", dec("1000.00"))
	accountID := acct.ID

	tx, err := svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:     acme.ID,
		UserID:        user.ID,
		Description:   "private",
		Amount:        dec("10.00"),
		Kind:          domain.KindInflow,
		Date:          time.Now(),
		BankAccountID: &accountID,
	})
	require.NoError(t, err)

	_, err = svc.GetTransaction(ctx, tx.ID, rival.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteTransaction(ctx, tx.ID, rival.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1010.00")))

	// nor can the other tenant post into a foreign account
	_, err = svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
		CompanyID:     rival.ID,
		UserID:        user.ID,
		Description:   "intrusion",
		Amount:        dec("10.00"),
		Kind:          domain.KindOutflow,
		Date:          time.Now(),
		BankAccountID: &accountID,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConcurrentTransactions_NoLostUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("0.00"))
	accountID := acct.ID

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.CreateTransaction(ctx, ledger.CreateTransactionRequest{
				CompanyID:     company.ID,
				UserID:        user.ID,
				Description:   "concurrent inflow",
				Amount:        dec("10.00"),
				Kind:          domain.KindInflow,
				Date:          time.Now(),
				BankAccountID: &accountID,
			})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("100.00")))
}

func TestCreateCardExpense_GeneratesInstallmentPlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	card := testutil.SeedCard(t, db, company.ID, acct.ID, "Corporate Visa", 10, 20)

	// purchase on the 5th, before closing day 10: first installment due this month
	purchaseDate := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	tx, payables, err := svc.CreateCardExpense(ctx, ledger.CardExpenseRequest{
		CompanyID:    company.ID,
		UserID:       user.ID,
		Description:  "new laptops",
		TotalAmount:  dec("1000.00"),
		CardID:       card.ID,
		PurchaseDate: purchaseDate,
		Installments: 3,
	})
	require.NoError(t, err)
	require.Len(t, payables, 3)

	assert.Equal(t, domain.KindOutflow, tx.Kind)
	require.NotNil(t, tx.CreditCardID)
	assert.Nil(t, tx.BankAccountID)

	// card purchases move no cash until the bill is paid
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1000.00")))

	sum := decimal.Zero
	for i, p := range payables {
		sum = sum.Add(p.Amount)
		assert.Equal(t, i+1, p.InstallmentNumber)
		assert.Equal(t, 3, p.InstallmentCount)
		assert.Equal(t, domain.PayableStatusPending, p.Status)
		require.NotNil(t, p.TransactionID)
		assert.Equal(t, tx.ID, *p.TransactionID)
	}
	assert.True(t, sum.Equal(dec("1000.00")))

	// 1000/3: residual cent lands on the first installment
	assert.True(t, payables[0].Amount.Equal(dec("333.34")))
	assert.True(t, payables[1].Amount.Equal(dec("333.33")))
	assert.True(t, payables[2].Amount.Equal(dec("333.33")))

	assert.Equal(t, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC), payables[0].DueDate.UTC())
	assert.Equal(t, time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC), payables[1].DueDate.UTC())
	assert.Equal(t, time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC), payables[2].DueDate.UTC())
}

func TestCreateCardExpense_AfterClosingDayRollsForward(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("0.00"))
	card := testutil.SeedCard(t, db, company.ID, acct.ID, "Corporate Visa", 10, 20)

	purchaseDate := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	_, payables, err := svc.CreateCardExpense(ctx, ledger.CardExpenseRequest{
		CompanyID:    company.ID,
		UserID:       user.ID,
		Description:  "subscription",
		TotalAmount:  dec("50.00"),
		CardID:       card.ID,
		PurchaseDate: purchaseDate,
		Installments: 1,
	})
	require.NoError(t, err)
	require.Len(t, payables, 1)
	assert.Equal(t, time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC), payables[0].DueDate.UTC())
}

func TestMarkPayablePaid_SettlesWithOutflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	supplier := testutil.SeedSupplier(t, db, company.ID, "Paper Co")
	supplierID := supplier.ID

	p, err := svc.CreatePayable(ctx, ledger.CreatePayableRequest{
		CompanyID:   company.ID,
		Description: "paper order",
		Amount:      dec("150.00"),
		DueDate:     time.Now().AddDate(0, 0, 7),
		SupplierID:  &supplierID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.CountTransactions(t, db, company.ID))

	paid, err := svc.MarkPayablePaid(ctx, p.ID, company.ID, acct.ID, time.Now(), dec("150.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.PayableStatusPaid, paid.Status)
	require.NotNil(t, paid.SettlementTransactionID)

	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("850.00")))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, company.ID))

	// settling again must fail and leave the balance alone
	_, err = svc.MarkPayablePaid(ctx, p.ID, company.ID, acct.ID, time.Now(), dec("150.00"))
	require.ErrorIs(t, err, domain.ErrAlreadyPaid)
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("850.00")))
}

func TestMarkPayablePaid_RejectsPartialPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))

	p, err := svc.CreatePayable(ctx, ledger.CreatePayableRequest{
		CompanyID:   company.ID,
		Description: "rent",
		Amount:      dec("500.00"),
		DueDate:     time.Now().AddDate(0, 0, 7),
	})
	require.NoError(t, err)

	_, err = svc.MarkPayablePaid(ctx, p.ID, company.ID, acct.ID, time.Now(), dec("250.00"))
	require.ErrorIs(t, err, domain.ErrPartialPayment)

	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1000.00")))
	assert.Equal(t, 0, testutil.CountTransactions(t, db, company.ID))
}

func TestMarkReceivableReceived_SettlesWithInflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("100.00"))
	customer := testutil.SeedCustomer(t, db, company.ID, "Big Client")
	customerID := customer.ID

	rec, err := svc.CreateReceivable(ctx, ledger.CreateReceivableRequest{
		CompanyID:   company.ID,
		Description: "invoice 42",
		Amount:      dec("900.00"),
		DueDate:     time.Now().AddDate(0, 0, 30),
		CustomerID:  &customerID,
	})
	require.NoError(t, err)

	received, err := svc.MarkReceivableReceived(ctx, rec.ID, company.ID, acct.ID, time.Now(), dec("900.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.ReceivableStatusReceived, received.Status)

	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1000.00")))

	_, err = svc.MarkReceivableReceived(ctx, rec.ID, company.ID, acct.ID, time.Now(), dec("900.00"))
	require.ErrorIs(t, err, domain.ErrAlreadyReceived)

	_, err = svc.MarkReceivableReceived(ctx, rec.ID, company.ID, acct.ID, time.Now(), dec("100.00"))
	require.ErrorIs(t, err, domain.ErrAlreadyReceived)
}

func TestPayCardBill_OneTransactionForManyPayables(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("5000.00"))
	card := testutil.SeedCard(t, db, company.ID, acct.ID, "Corporate Visa", 10, 20)

	// three purchases before the closing day, all landing in the March bill
	purchaseDate := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	for _, amount := range []string{"100.00", "200.00", "300.00"} {
		_, _, err := svc.CreateCardExpense(ctx, ledger.CardExpenseRequest{
			CompanyID:    company.ID,
			UserID:       user.ID,
			Description:  "purchase " + amount,
			TotalAmount:  dec(amount),
			CardID:       card.ID,
			PurchaseDate: purchaseDate,
			Installments: 1,
		})
		require.NoError(t, err)
	}
	before := testutil.CountTransactions(t, db, company.ID)
	require.Equal(t, 3, before)

	count, err := svc.PayCardBill(ctx, ledger.PayCardBillRequest{
		CompanyID:     company.ID,
		CardID:        card.ID,
		Month:         3,
		Year:          2026,
		BankAccountID: acct.ID,
		PaidAmount:    dec("600.00"),
		PaymentDate:   time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// one aggregate settlement transaction, not one per payable
	assert.Equal(t, before+1, testutil.CountTransactions(t, db, company.ID))
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("4400.00")))

	bill, err := svc.GetCardBill(ctx, company.ID, card.ID, 3, 2026)
	require.NoError(t, err)
	assert.Equal(t, domain.PayableStatusPaid, bill.Status)
	assert.True(t, bill.OpenAmount.IsZero())
	assert.Len(t, bill.Payables, 3)

	// paying an already-settled cycle is an error
	_, err = svc.PayCardBill(ctx, ledger.PayCardBillRequest{
		CompanyID:     company.ID,
		CardID:        card.ID,
		Month:         3,
		Year:          2026,
		BankAccountID: acct.ID,
		PaidAmount:    dec("600.00"),
		PaymentDate:   time.Now(),
	})
	require.ErrorIs(t, err, domain.ErrNoPendingBill)
}

func TestPayCardBill_IgnoresOtherCycles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("5000.00"))
	card := testutil.SeedCard(t, db, company.ID, acct.ID, "Corporate Visa", 10, 20)

	// 2 installments: March and April cycles
	_, payables, err := svc.CreateCardExpense(ctx, ledger.CardExpenseRequest{
		CompanyID:    company.ID,
		UserID:       user.ID,
		Description:  "split purchase",
		TotalAmount:  dec("400.00"),
		CardID:       card.ID,
		PurchaseDate: time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		Installments: 2,
	})
	require.NoError(t, err)
	require.Len(t, payables, 2)

	count, err := svc.PayCardBill(ctx, ledger.PayCardBillRequest{
		CompanyID:     company.ID,
		CardID:        card.ID,
		Month:         3,
		Year:          2026,
		BankAccountID: acct.ID,
		PaidAmount:    dec("200.00"),
		PaymentDate:   time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// the April installment is untouched
	april, err := svc.GetCardBill(ctx, company.ID, card.ID, 4, 2026)
	require.NoError(t, err)
	assert.True(t, april.OpenAmount.Equal(dec("200.00")))
}

func TestDeleteCardPurchase_RemovesNothingFromBalances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	card := testutil.SeedCard(t, db, company.ID, acct.ID, "Corporate Visa", 10, 20)

	tx, _, err := svc.CreateCardExpense(ctx, ledger.CardExpenseRequest{
		CompanyID:    company.ID,
		UserID:       user.ID,
		Description:  "regretted purchase",
		TotalAmount:  dec("300.00"),
		CardID:       card.ID,
		PurchaseDate: time.Now(),
		Installments: 3,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID, company.ID))
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1000.00")))

	// installments survive the purchase row, now orphaned
	var orphans int
	err = db.QueryRow(`SELECT COUNT(*) FROM payables WHERE company_id = $1 AND transaction_id IS NULL`, company.ID).Scan(&orphans)
	require.NoError(t, err)
	assert.Equal(t, 3, orphans)
}

func TestPayableEffectiveStatus_Overdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")

	p, err := svc.CreatePayable(ctx, ledger.CreatePayableRequest{
		CompanyID:   company.ID,
		Description: "forgotten bill",
		Amount:      dec("75.00"),
		DueDate:     time.Now().AddDate(0, 0, -3),
	})
	require.NoError(t, err)

	// stored status stays pending, overdue is derived per read
	stored, err := svc.GetPayable(ctx, p.ID, company.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayableStatusPending, stored.Status)
	assert.Equal(t, domain.PayableStatusOverdue, stored.EffectiveStatus(time.Now()))
}

func TestUpdateTransaction_CardPurchaseCannotGainAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Acme")
	user := testutil.SeedUser(t, db, company.ID, "owner@acme.test")
	acct := testutil.SeedAccount(t, db, company.ID, "Checking", dec("1000.00"))
	card := testutil.SeedCard(t, db, company.ID, acct.ID, "Corporate Visa", 10, 20)
	accountID := acct.ID

	tx, _, err := svc.CreateCardExpense(ctx, ledger.CardExpenseRequest{
		CompanyID:    company.ID,
		UserID:       user.ID,
		Description:  "card purchase",
		TotalAmount:  dec("100.00"),
		CardID:       card.ID,
		PurchaseDate: time.Now(),
		Installments: 1,
	})
	require.NoError(t, err)

	_, err = svc.UpdateTransaction(ctx, tx.ID, company.ID, ledger.UpdateTransactionRequest{
		Description:   "card purchase",
		Amount:        dec("100.00"),
		Kind:          domain.KindOutflow,
		Date:          time.Now(),
		BankAccountID: &accountID,
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.True(t, testutil.GetAccountBalance(t, db, acct.ID).Equal(dec("1000.00")))
}
