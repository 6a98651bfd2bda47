package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/finledger/backend/internal/domain"
)

func SeedCompany(t *testing.T, db *sql.DB, name string) *domain.Company {
	t.Helper()

	c := &domain.Company{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO companies (id, name, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed company %s: %v", name, err)
	}
	return c
}

func SeedUser(t *testing.T, db *sql.DB, companyID uuid.UUID, email string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		CompanyID:    companyID,
		Email:        email,
		Name:         "Test User",
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = db.Exec(
		`INSERT INTO users (id, company_id, email, name, password_hash, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.CompanyID, u.Email, u.Name, u.PasswordHash, u.IsActive, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func SeedAccount(t *testing.T, db *sql.DB, companyID uuid.UUID, name string, balance decimal.Decimal) *domain.BankAccount {
	t.Helper()

	a := &domain.BankAccount{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      name,
		Type:      domain.AccountTypeChecking,
		Balance:   balance,
		Version:   0,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO bank_accounts (id, company_id, name, account_type, balance, version, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.CompanyID, a.Name, a.Type, a.Balance, a.Version, a.IsActive, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %s: %v", name, err)
	}
	return a
}

func SeedInactiveAccount(t *testing.T, db *sql.DB, companyID uuid.UUID, name string) *domain.BankAccount {
	t.Helper()

	a := SeedAccount(t, db, companyID, name, decimal.Zero)
	if _, err := db.Exec(`UPDATE bank_accounts SET is_active = FALSE WHERE id = $1`, a.ID); err != nil {
		t.Fatalf("deactivate account %s: %v", name, err)
	}
	a.IsActive = false
	return a
}

func SeedCard(t *testing.T, db *sql.DB, companyID, associatedAccountID uuid.UUID, name string, closingDay, dueDay int) *domain.CreditCard {
	t.Helper()

	c := &domain.CreditCard{
		ID:                  uuid.New(),
		CompanyID:           companyID,
		Name:                name,
		Brand:               "visa",
		LastDigits:          uuid.NewString()[:4],
		CreditLimit:         decimal.NewFromInt(10_000),
		ClosingDay:          closingDay,
		DueDay:              dueDay,
		AssociatedAccountID: associatedAccountID,
		IsActive:            true,
		CreatedAt:           time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO credit_cards (id, company_id, name, brand, last_digits, credit_limit,
			closing_day, due_day, associated_account_id, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.CompanyID, c.Name, c.Brand, c.LastDigits, c.CreditLimit,
		c.ClosingDay, c.DueDay, c.AssociatedAccountID, c.IsActive, c.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed card %s: %v", name, err)
	}
	return c
}

func SeedCategory(t *testing.T, db *sql.DB, companyID uuid.UUID, name string, kind domain.TransactionKind, dfc domain.DFCClassification) *domain.Category {
	t.Helper()

	c := &domain.Category{
		ID:                uuid.New(),
		CompanyID:         companyID,
		Name:              name,
		Kind:              kind,
		DFCClassification: dfc,
		DREClassification: "not_applicable",
		CreatedAt:         time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO categories (id, company_id, name, kind, dfc_classification, dre_classification, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.CompanyID, c.Name, c.Kind, c.DFCClassification, c.DREClassification, c.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	return c
}

func SeedCustomer(t *testing.T, db *sql.DB, companyID uuid.UUID, name string) *domain.Customer {
	t.Helper()

	c := &domain.Customer{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO customers (id, company_id, name, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.CompanyID, c.Name, c.IsActive, c.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed customer %s: %v", name, err)
	}
	return c
}

func SeedSupplier(t *testing.T, db *sql.DB, companyID uuid.UUID, name string) *domain.Supplier {
	t.Helper()

	s := &domain.Supplier{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO suppliers (id, company_id, name, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.CompanyID, s.Name, s.IsActive, s.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed supplier %s: %v", name, err)
	}
	return s
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM bank_accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func CountTransactions(t *testing.T, db *sql.DB, companyID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE company_id = $1`, companyID).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions for company %s: %v", companyID, err)
	}
	return count
}
