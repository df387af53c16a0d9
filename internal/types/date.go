package types

import (
	"time"

	ierr "github.com/autumnhq/autumn/internal/errors"
)

// NextBillingDate calculates the next billing date based on the given start
// time, billing period, and billing period count (the frequency multiplier).
// For example:
// - If billing period is MONTHLY and count is 2, we add two months.
// - If billing period is ANNUAL and count is 1, we add one year.
// - If billing period is WEEKLY and count is 3, we add 21 days (3 weeks).
// Month arithmetic clamps to the last valid day of the target month so an
// anchor on Jan 31 cycles to Feb 28/29, not Mar 2/3.
func NextBillingDate(start time.Time, count int, period BillingPeriod) (time.Time, error) {
	return shiftBillingDate(start, count, period, 1)
}

// PrevBillingDate is the inverse of NextBillingDate: it steps one billing
// interval backwards from the given date.
func PrevBillingDate(start time.Time, count int, period BillingPeriod) (time.Time, error) {
	return shiftBillingDate(start, count, period, -1)
}

func shiftBillingDate(start time.Time, count int, period BillingPeriod, sign int) (time.Time, error) {
	if count <= 0 {
		return start, ierr.NewError("invalid billing period count").
			WithHintf("Billing period count must be a positive integer, got %d", count).
			Mark(ierr.ErrValidation)
	}

	n := count * sign
	switch period {
	case BILLING_PERIOD_DAILY:
		return AddClampedDate(start, 0, 0, n), nil
	case BILLING_PERIOD_WEEKLY:
		return AddClampedDate(start, 0, 0, 7*n), nil
	case BILLING_PERIOD_MONTHLY:
		return AddClampedDate(start, 0, n, 0), nil
	case BILLING_PERIOD_QUARTERLY:
		return AddClampedDate(start, 0, 3*n, 0), nil
	case BILLING_PERIOD_HALF_YEAR:
		return AddClampedDate(start, 0, 6*n, 0), nil
	case BILLING_PERIOD_ANNUAL:
		return AddClampedDate(start, n, 0, 0), nil
	default:
		return start, ierr.NewError("invalid billing period").
			WithHintf("Unknown billing period type: %s", period).
			Mark(ierr.ErrValidation)
	}
}

// AddClampedDate adds the given years, months and days to t, clamping the
// day-of-month to the last valid day of the target month instead of letting
// the date normalize into the following month.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	// Pure day shifts never need month clamping
	if years == 0 && months == 0 {
		return t.AddDate(0, 0, days)
	}

	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	// Normalize month overflow/underflow into years, for example adding
	// 2 months to November lands on January of the next year.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the target month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.AddDate(0, 0, -1).Day()

	newD := d
	if newD > lastDay {
		newD = lastDay
	}

	shifted := time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
	if days != 0 {
		shifted = shifted.AddDate(0, 0, days)
	}
	return shifted
}
