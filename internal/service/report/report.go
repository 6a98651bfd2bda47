// Package report answers read-only aggregation queries over committed ledger
// state. It never writes and never enforces invariants; those belong to the
// ledger service.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain"
)

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

type AccountBalance struct {
	AccountID uuid.UUID       `json:"account_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
}

// BalanceAsOf reconstructs each account's balance at the end of the given
// date. Balances are denormalized to "now", so the as-of value is the current
// balance minus the signed effects of transactions dated after the cutoff.
func (s *Service) BalanceAsOf(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]AccountBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.balance - COALESCE(SUM(
			CASE WHEN t.kind = 'inflow' THEN t.amount ELSE -t.amount END
		), 0) AS balance
		FROM bank_accounts a
		LEFT JOIN transactions t
			ON t.bank_account_id = a.id AND t.transaction_date > $2
		WHERE a.company_id = $1
		GROUP BY a.id, a.name
		ORDER BY a.name`,
		companyID, asOf,
	)
	if err != nil {
		return nil, fmt.Errorf("BalanceAsOf: %w", err)
	}
	defer rows.Close()

	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Name, &b.Balance); err != nil {
			return nil, fmt.Errorf("BalanceAsOf: scan: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("BalanceAsOf: rows: %w", err)
	}
	return balances, nil
}

type ClassificationFlow struct {
	Classification domain.DFCClassification `json:"classification"`
	Inflow         decimal.Decimal          `json:"inflow"`
	Outflow        decimal.Decimal          `json:"outflow"`
	Net            decimal.Decimal          `json:"net"`
}

// FlowByClassification totals transaction flow per cash-flow classification
// in the period. Transactions without a category land in the "none" bucket.
func (s *Service) FlowByClassification(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]ClassificationFlow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(c.dfc_classification, 'none') AS classification,
			COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'inflow'), 0) AS inflow,
			COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'outflow'), 0) AS outflow
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.company_id = $1
		  AND t.transaction_date >= $2
		  AND t.transaction_date <= $3
		GROUP BY classification
		ORDER BY classification`,
		companyID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("FlowByClassification: %w", err)
	}
	defer rows.Close()

	var flows []ClassificationFlow
	for rows.Next() {
		var f ClassificationFlow
		if err := rows.Scan(&f.Classification, &f.Inflow, &f.Outflow); err != nil {
			return nil, fmt.Errorf("FlowByClassification: scan: %w", err)
		}
		f.Net = f.Inflow.Sub(f.Outflow)
		flows = append(flows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FlowByClassification: rows: %w", err)
	}
	return flows, nil
}

type MonthFlow struct {
	Month   int             `json:"month"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// MonthlySummary returns inflow/outflow/net per calendar month of a year.
// Months with no transactions are omitted.
func (s *Service) MonthlySummary(ctx context.Context, companyID uuid.UUID, year int) ([]MonthFlow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT EXTRACT(MONTH FROM transaction_date)::int AS month,
			COALESCE(SUM(amount) FILTER (WHERE kind = 'inflow'), 0) AS inflow,
			COALESCE(SUM(amount) FILTER (WHERE kind = 'outflow'), 0) AS outflow
		FROM transactions
		WHERE company_id = $1 AND EXTRACT(YEAR FROM transaction_date) = $2
		GROUP BY month
		ORDER BY month`,
		companyID, year,
	)
	if err != nil {
		return nil, fmt.Errorf("MonthlySummary: %w", err)
	}
	defer rows.Close()

	var months []MonthFlow
	for rows.Next() {
		var m MonthFlow
		if err := rows.Scan(&m.Month, &m.Inflow, &m.Outflow); err != nil {
			return nil, fmt.Errorf("MonthlySummary: scan: %w", err)
		}
		m.Net = m.Inflow.Sub(m.Outflow)
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MonthlySummary: rows: %w", err)
	}
	return months, nil
}

type AgingBucket struct {
	Bucket string          `json:"bucket"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type Aging struct {
	Payables    []AgingBucket `json:"payables"`
	Receivables []AgingBucket `json:"receivables"`
}

// OpenItemAging buckets open payables and receivables by how far past due
// they are, relative to the given reference date.
func (s *Service) OpenItemAging(ctx context.Context, companyID uuid.UUID, today time.Time) (*Aging, error) {
	payables, err := s.agingFor(ctx, "payables", companyID, today)
	if err != nil {
		return nil, fmt.Errorf("OpenItemAging: %w", err)
	}
	receivables, err := s.agingFor(ctx, "receivables", companyID, today)
	if err != nil {
		return nil, fmt.Errorf("OpenItemAging: %w", err)
	}
	return &Aging{Payables: payables, Receivables: receivables}, nil
}

// table name is picked from a fixed set above, never from user input.
func (s *Service) agingFor(ctx context.Context, table string, companyID uuid.UUID, today time.Time) ([]AgingBucket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT CASE
			WHEN due_date >= $2 THEN 'current'
			WHEN due_date >= $2 - INTERVAL '30 days' THEN '1-30'
			WHEN due_date >= $2 - INTERVAL '60 days' THEN '31-60'
			ELSE '60+'
		END AS bucket, COUNT(*), COALESCE(SUM(amount), 0)
		FROM `+table+`
		WHERE company_id = $1 AND status = 'pending'
		GROUP BY bucket
		ORDER BY bucket`,
		companyID, today,
	)
	if err != nil {
		return nil, fmt.Errorf("agingFor %s: %w", table, err)
	}
	defer rows.Close()

	var buckets []AgingBucket
	for rows.Next() {
		var b AgingBucket
		if err := rows.Scan(&b.Bucket, &b.Count, &b.Total); err != nil {
			return nil, fmt.Errorf("agingFor %s: scan: %w", table, err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("agingFor %s: rows: %w", table, err)
	}
	return buckets, nil
}
