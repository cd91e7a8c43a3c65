// Package proration maps contract billing intervals to the accrual key and
// split factor used when dividing an annual contract amount into
// per-occurrence invoice amounts.
package proration

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Interval is one supported contract billing interval.
type Interval struct {
	Name string
	// AccrualKey is an opaque token consumed by the external accounting system.
	AccrualKey string
	// SplitFactor is the number of invoice occurrences per year.
	SplitFactor int64
}

var (
	Monthly    = Interval{Name: "Monthly", AccrualKey: "3001", SplitFactor: 12}
	Quarterly  = Interval{Name: "Quarterly", AccrualKey: "3002", SplitFactor: 4}
	HalfYearly = Interval{Name: "HalfYearly", AccrualKey: "3003", SplitFactor: 2}
	Yearly     = Interval{Name: "Yearly", AccrualKey: "3004", SplitFactor: 1}

	supported = []Interval{Monthly, Quarterly, HalfYearly, Yearly}
)

// ErrIntervalNotFound indicates a present but unrecognized interval type.
var ErrIntervalNotFound = errors.New("interval_not_found")

// Lookup resolves an external interval type by name. A nil input yields a nil
// result without error; an unrecognized value fails with ErrIntervalNotFound.
func Lookup(externalType *string) (*Interval, error) {
	if externalType == nil {
		return nil, nil
	}
	name := strings.TrimSpace(*externalType)
	for _, interval := range supported {
		if strings.EqualFold(interval.Name, name) {
			found := interval
			return &found, nil
		}
	}
	return nil, ErrIntervalNotFound
}

// PerOccurrenceAmount divides an annual contract amount by the split factor.
// Rounding policy: half-up to 2 decimal places. The remainder from rounding is
// absorbed by the accounting system via the accrual key, so occurrences do not
// need to sum exactly to the annual amount.
func (i Interval) PerOccurrenceAmount(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(decimal.NewFromInt(i.SplitFactor)).Round(2)
}
