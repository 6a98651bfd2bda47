package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		dueDay     int
		purchase   time.Time
		want       time.Time
	}{
		{
			name:       "before closing day stays in current cycle",
			closingDay: 10, dueDay: 20,
			purchase: date(2025, time.March, 9),
			want:     date(2025, time.March, 20),
		},
		{
			name:       "on closing day rolls to next cycle",
			closingDay: 10, dueDay: 20,
			purchase: date(2025, time.March, 10),
			want:     date(2025, time.April, 20),
		},
		{
			name:       "after closing day rolls to next cycle",
			closingDay: 10, dueDay: 20,
			purchase: date(2025, time.March, 25),
			want:     date(2025, time.April, 20),
		},
		{
			name:       "december rollover crosses the year",
			closingDay: 15, dueDay: 5,
			purchase: date(2025, time.December, 20),
			want:     date(2026, time.January, 5),
		},
		{
			name:       "due day 31 clamps in february",
			closingDay: 25, dueDay: 31,
			purchase: date(2025, time.February, 3),
			want:     date(2025, time.February, 28),
		},
		{
			name:       "due day 31 clamps in leap february",
			closingDay: 25, dueDay: 31,
			purchase: date(2024, time.February, 3),
			want:     date(2024, time.February, 29),
		},
		{
			name:       "due day 31 clamps in april after rollover",
			closingDay: 1, dueDay: 31,
			purchase: date(2025, time.March, 15),
			want:     date(2025, time.April, 30),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DueDate(tc.closingDay, tc.dueDay, tc.purchase)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDueDate_Rejects(t *testing.T) {
	_, err := DueDate(0, 20, date(2025, time.March, 1))
	require.Error(t, err)

	_, err = DueDate(10, 32, date(2025, time.March, 1))
	require.Error(t, err)
}

func TestCycleDueDate(t *testing.T) {
	got, err := CycleDueDate(20, 4, 2025)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.April, 20), got)

	got, err = CycleDueDate(31, 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.February, 28), got)

	_, err = CycleDueDate(20, 13, 2025)
	require.Error(t, err)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{name: "plain month advance", from: date(2025, time.January, 15), n: 1, want: date(2025, time.February, 15)},
		{name: "jan 31 clamps to feb 28", from: date(2025, time.January, 31), n: 1, want: date(2025, time.February, 28)},
		{name: "jan 31 clamps to leap feb 29", from: date(2024, time.January, 31), n: 1, want: date(2024, time.February, 29)},
		{name: "year boundary", from: date(2025, time.November, 10), n: 3, want: date(2026, time.February, 10)},
		{name: "several months keep original day", from: date(2025, time.January, 31), n: 2, want: date(2025, time.March, 31)},
		{name: "zero months", from: date(2025, time.June, 30), n: 0, want: date(2025, time.June, 30)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonths(tc.from, tc.n))
		})
	}
}
