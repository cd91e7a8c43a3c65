package proration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_NilMeansNoInterval(t *testing.T) {
	interval, err := Lookup(nil)
	require.NoError(t, err)
	assert.Nil(t, interval)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	for raw, want := range map[string]Interval{
		"monthly":    Monthly,
		"QUARTERLY":  Quarterly,
		"halfyearly": HalfYearly,
		" Yearly ":   Yearly,
	} {
		raw := raw
		interval, err := Lookup(&raw)
		require.NoError(t, err)
		require.NotNil(t, interval)
		assert.Equal(t, want, *interval)
	}
}

func TestLookup_UnknownFails(t *testing.T) {
	raw := "Weekly"
	_, err := Lookup(&raw)
	assert.ErrorIs(t, err, ErrIntervalNotFound)
}

func TestIntervalTable(t *testing.T) {
	assert.Equal(t, "3001", Monthly.AccrualKey)
	assert.Equal(t, int64(12), Monthly.SplitFactor)
	assert.Equal(t, "3002", Quarterly.AccrualKey)
	assert.Equal(t, int64(4), Quarterly.SplitFactor)
	assert.Equal(t, "3003", HalfYearly.AccrualKey)
	assert.Equal(t, int64(2), HalfYearly.SplitFactor)
	assert.Equal(t, "3004", Yearly.AccrualKey)
	assert.Equal(t, int64(1), Yearly.SplitFactor)
}

func TestPerOccurrenceAmount(t *testing.T) {
	annual := decimal.NewFromInt(1200)

	assert.True(t, Monthly.PerOccurrenceAmount(annual).Equal(decimal.NewFromInt(100)))
	assert.True(t, Quarterly.PerOccurrenceAmount(annual).Equal(decimal.NewFromInt(300)))
	assert.True(t, HalfYearly.PerOccurrenceAmount(annual).Equal(decimal.NewFromInt(600)))
	assert.True(t, Yearly.PerOccurrenceAmount(annual).Equal(annual))
}

func TestPerOccurrenceAmount_RoundsHalfUpToCents(t *testing.T) {
	annual := decimal.NewFromInt(1000)

	// 1000 / 12 = 83.3333... rounds to 83.33
	assert.Equal(t, "83.33", Monthly.PerOccurrenceAmount(annual).StringFixed(2))

	// 100.03 / 2 = 50.015 rounds half-up to 50.02
	assert.Equal(t, "50.02", HalfYearly.PerOccurrenceAmount(decimal.RequireFromString("100.03")).StringFixed(2))
}
