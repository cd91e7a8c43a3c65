package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/billcollect/internal/jobstate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) domain.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.ScheduledJob{},
		&domain.Fallout{},
		&domain.History{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return Provide(Params{DB: db, GenID: node})
}

func TestLatest_EmptyTable(t *testing.T) {
	store := setupStore(t)

	job, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestSaveThenLatest(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	from := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	first, err := store.Save(ctx, from, to)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := store.Save(ctx, to, to.AddDate(0, 0, 1))
	require.NoError(t, err)

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, second.ToDate.Unix(), latest.ToDate.Unix())
}

func TestLatest_TiesBrokenByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	from := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	// Two saves inside the same timestamp granularity; the higher id wins.
	_, err := store.Save(ctx, from, from)
	require.NoError(t, err)
	second, err := store.Save(ctx, from, from.AddDate(0, 0, 1))
	require.NoError(t, err)

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestFallouts_RoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordFallout(ctx, &domain.Fallout{
		FamilyID:       "customer-invoice-form",
		FlowInstanceID: "flow-1",
		MunicipalityID: "0180",
		RequestID:      "req-1",
		Detail:         "party_not_found",
	}))
	require.NoError(t, store.RecordFallout(ctx, &domain.Fallout{
		FamilyID:       "internal-invoice-form",
		FlowInstanceID: "flow-2",
		MunicipalityID: "0180",
		RequestID:      "req-2",
		Detail:         "contract_not_found",
	}))

	fallouts, err := store.FalloutsFor(ctx, []string{"flow-1"})
	require.NoError(t, err)
	require.Len(t, fallouts, 1)
	assert.Equal(t, "party_not_found", fallouts[0].Detail)
}

func TestFalloutsFor_EmptyIDSetIssuesNoQuery(t *testing.T) {
	store := setupStore(t)

	fallouts, err := store.FalloutsFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, fallouts)

	histories, err := store.HistoryFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, histories)
}

func TestHistory_RoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordHistory(ctx, &domain.History{
		FamilyID:       "customer-invoice-form",
		FlowInstanceID: "flow-1",
		MunicipalityID: "0180",
		RequestID:      "req-1",
	}))

	entries, err := store.HistoryFor(ctx, []string{"flow-1", "flow-2"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "flow-1", entries[0].FlowInstanceID)
}
