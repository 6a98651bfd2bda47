package money

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "positive two places", amount: "10.50"},
		{name: "positive integer", amount: "100"},
		{name: "smallest unit", amount: "0.01"},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-5.00", wantErr: true},
		{name: "three decimal places", amount: "1.005", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAmount(dec(tc.amount))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSplitInstallments(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{name: "exact division", total: "100.00", n: 4, want: []string{"25.00", "25.00", "25.00", "25.00"}},
		{name: "single installment", total: "99.99", n: 1, want: []string{"99.99"}},
		{name: "residual on first", total: "100.00", n: 3, want: []string{"33.34", "33.33", "33.33"}},
		{name: "residual of two cents", total: "200.00", n: 3, want: []string{"66.68", "66.66", "66.66"}},
		{name: "ten over three", total: "10.00", n: 3, want: []string{"3.34", "3.33", "3.33"}},
		{name: "one cent over two", total: "0.01", n: 2, want: []string{"0.01", "0.00"}},
		{name: "twelve installments", total: "1250.00", n: 12, want: []string{
			"104.24", "104.16", "104.16", "104.16", "104.16", "104.16",
			"104.16", "104.16", "104.16", "104.16", "104.16", "104.16",
		}},
		{name: "residual larger than one cent", total: "0.05", n: 3, want: []string{"0.03", "0.01", "0.01"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parts, err := SplitInstallments(dec(tc.total), tc.n)
			require.NoError(t, err)
			require.Len(t, parts, tc.n)

			sum := decimal.Zero
			for i, p := range parts {
				assert.True(t, dec(tc.want[i]).Equal(p), "part %d: want %s, got %s", i, tc.want[i], p)
				sum = sum.Add(p)
			}
			assert.True(t, dec(tc.total).Equal(sum), "sum %s != total %s", sum, tc.total)
		})
	}
}

func TestSplitInstallments_Rejects(t *testing.T) {
	_, err := SplitInstallments(dec("100.00"), 0)
	require.Error(t, err)

	_, err = SplitInstallments(dec("100.00"), -3)
	require.Error(t, err)

	_, err = SplitInstallments(dec("0"), 2)
	require.Error(t, err)

	_, err = SplitInstallments(dec("-10.00"), 2)
	require.Error(t, err)
}

// The sum law must hold for arbitrary totals and counts, with any residual
// landing on the first installment only.
func TestSplitInstallments_SumLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		cents := rng.Int63n(10_000_000) + 1
		total := decimal.New(cents, -2)
		n := rng.Intn(48) + 1

		parts, err := SplitInstallments(total, n)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, p := range parts {
			sum = sum.Add(p)
		}
		require.True(t, total.Equal(sum), "total=%s n=%d sum=%s", total, n, sum)

		for j := 1; j < n; j++ {
			require.True(t, parts[j].Equal(parts[1]), "non-first parts must be uniform")
			require.True(t, parts[0].GreaterThanOrEqual(parts[j]), "residual must be on the first part")
		}
	}
}
