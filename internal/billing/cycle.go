// Package billing computes credit-card billing cycles and due dates from a
// card's closing day and due day.
package billing

import (
	"fmt"
	"time"
)

// DueDate returns the due date of the bill a purchase belongs to. A purchase
// on or after the closing day rolls into the next cycle, so its bill falls
// due one month later than a purchase earlier in the same month. Due days
// that do not exist in the target month (say day 31 in February) clamp to the
// month's last day.
func DueDate(closingDay, dueDay int, purchase time.Time) (time.Time, error) {
	if closingDay < 1 || closingDay > 31 {
		return time.Time{}, fmt.Errorf("DueDate: closing day %d out of range", closingDay)
	}
	if dueDay < 1 || dueDay > 31 {
		return time.Time{}, fmt.Errorf("DueDate: due day %d out of range", dueDay)
	}

	months := 0
	if purchase.Day() >= closingDay {
		months = 1
	}
	return dayOfMonthClamped(purchase.Year(), purchase.Month(), dueDay, months), nil
}

// CycleDueDate returns the due date of the bill for a given calendar month
// and year, used when settling a whole bill at once.
func CycleDueDate(dueDay, month, year int) (time.Time, error) {
	if dueDay < 1 || dueDay > 31 {
		return time.Time{}, fmt.Errorf("CycleDueDate: due day %d out of range", dueDay)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("CycleDueDate: month %d out of range", month)
	}
	return dayOfMonthClamped(year, time.Month(month), dueDay, 0), nil
}

// AddMonths advances a date by n months keeping the day of month, clamped to
// the last valid day of the target month. This is deliberately not
// time.AddDate, which overflows Jan 31 + 1 month into March.
func AddMonths(t time.Time, n int) time.Time {
	return dayOfMonthClamped(t.Year(), t.Month(), t.Day(), n)
}

func dayOfMonthClamped(year int, month time.Month, day, addMonths int) time.Time {
	y, m := year, int(month)+addMonths
	for m > 12 {
		m -= 12
		y++
	}
	for m < 1 {
		m += 12
		y--
	}

	if last := daysInMonth(y, time.Month(m)); day > last {
		day = last
	}
	return time.Date(y, time.Month(m), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
