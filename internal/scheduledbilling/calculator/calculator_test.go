package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextInvoiceDate_ExactMatchReturnedNotSkipped(t *testing.T) {
	got, err := NextInvoiceDate([]int{15}, []int{3}, date(2026, time.March, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 15), got)
}

func TestNextInvoiceDate_AdvancesWithinMonth(t *testing.T) {
	got, err := NextInvoiceDate([]int{5, 20}, []int{3}, date(2026, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 20), got)
}

func TestNextInvoiceDate_AdvancesToNextConfiguredMonth(t *testing.T) {
	got, err := NextInvoiceDate([]int{5}, []int{3, 9}, date(2026, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.September, 5), got)
}

func TestNextInvoiceDate_WrapsIntoNextYear(t *testing.T) {
	got, err := NextInvoiceDate([]int{5}, []int{1}, date(2026, time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2027, time.January, 5), got)
}

func TestNextInvoiceDate_ClampsDayToMonthLength(t *testing.T) {
	got, err := NextInvoiceDate([]int{31}, []int{2}, date(2026, time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.February, 28), got)
}

func TestNextInvoiceDate_ClampsToLeapDay(t *testing.T) {
	got, err := NextInvoiceDate([]int{30}, []int{2}, date(2028, time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2028, time.February, 29), got)
}

func TestNextInvoiceDate_UnsortedDaysStillEarliestCandidate(t *testing.T) {
	got, err := NextInvoiceDate([]int{25, 3, 14}, []int{6}, date(2026, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.June, 3), got)
}

func TestNextInvoiceDate_TimeOfDayIgnored(t *testing.T) {
	from := time.Date(2026, time.March, 15, 17, 45, 12, 0, time.UTC)
	got, err := NextInvoiceDate([]int{15}, []int{3}, from)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 15), got)
}

func TestNextInvoiceDate_EmptyInputs(t *testing.T) {
	_, err := NextInvoiceDate(nil, []int{1}, date(2026, time.January, 1))
	assert.ErrorIs(t, err, ErrEmptyDaySet)

	_, err = NextInvoiceDate([]int{1}, nil, date(2026, time.January, 1))
	assert.ErrorIs(t, err, ErrEmptyMonthSet)
}

func TestNextInvoiceDate_ResultNeverBeforeFrom(t *testing.T) {
	days := []int{1, 15, 28, 31}
	months := []int{1, 4, 7, 10}
	from := date(2026, time.January, 1)
	for i := 0; i < 400; i++ {
		got, err := NextInvoiceDate(days, months, from)
		require.NoError(t, err)
		assert.False(t, got.Before(from), "result %s before from %s", got, from)
		from = from.AddDate(0, 0, 1)
	}
}
