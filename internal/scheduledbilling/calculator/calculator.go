// Package calculator computes the next recurring billing date from
// day-of-month and month rules.
package calculator

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrEmptyDaySet   = errors.New("empty_day_set")
	ErrEmptyMonthSet = errors.New("empty_month_set")
	// ErrNoInvoiceDate flags an exhausted scan. Unreachable with non-empty
	// inputs; surfaced loudly instead of being wrapped away.
	ErrNoInvoiceDate = errors.New("no_invoice_date_found")
)

// NextInvoiceDate returns the earliest date >= from whose month is in months
// and whose day equals a candidate from daysOfMonth clamped to the month
// length. An exact match on from is returned, not skipped.
//
// The scan walks forward month by month for up to 13 iterations: all 12
// calendar months plus wraparound back to the starting month in the next year.
func NextInvoiceDate(daysOfMonth, months []int, from time.Time) (time.Time, error) {
	if len(daysOfMonth) == 0 {
		return time.Time{}, ErrEmptyDaySet
	}
	if len(months) == 0 {
		return time.Time{}, ErrEmptyMonthSet
	}

	monthSet := make(map[int]struct{}, len(months))
	for _, m := range months {
		monthSet[m] = struct{}{}
	}

	days := append([]int(nil), daysOfMonth...)
	sort.Ints(days)

	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	year, month := from.Year(), int(from.Month())
	for i := 0; i < 13; i++ {
		if _, ok := monthSet[month]; ok {
			limit := daysInMonth(year, month)
			for _, day := range days {
				if day > limit {
					day = limit
				}
				candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
				if !candidate.Before(from) {
					return candidate, nil
				}
			}
		}
		month++
		if month > 12 {
			month = 1
			year++
		}
	}

	return time.Time{}, ErrNoInvoiceDate
}

func daysInMonth(year, month int) int {
	// day 0 of the next month is the last day of this month
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
