package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-labs/recall-cli/internal/adapters/driven/storage/memory"
	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

func testPricing() staticPricing {
	return staticPricing{prices: map[domain.OperationKind]float64{
		domain.OpEmbedding:  0.001,
		domain.OpGeneration: 0.01,
		domain.OpStorage:    0,
	}}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLedger_RecordComputesCost(t *testing.T) {
	store := memory.NewStore(0)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 10})

	rec, err := ledger.Record(context.Background(), "proj", domain.OpGeneration, 500)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, rec.Cost, 1e-9)
	assert.Equal(t, int64(500), rec.Quantity)
	assert.Equal(t, domain.OpGeneration, rec.Kind)
	assert.NotEmpty(t, rec.ID)
}

func TestLedger_RecordRejectsInvalidInput(t *testing.T) {
	store := memory.NewStore(0)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{})

	_, err := ledger.Record(context.Background(), "proj", domain.OperationKind("mystery"), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ledger.Record(context.Background(), "proj", domain.OpEmbedding, -5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_RecordsImmutableAcrossPriceChange(t *testing.T) {
	store := memory.NewStore(0)
	pricing := staticPricing{prices: map[domain.OperationKind]float64{domain.OpGeneration: 0.01}}
	ledger := NewLedger(store, pricing, domain.BudgetConfig{})

	rec, err := ledger.Record(context.Background(), "proj", domain.OpGeneration, 100)
	require.NoError(t, err)
	require.InDelta(t, 1.0, rec.Cost, 1e-9)

	// A later price change never rewrites stored records.
	pricing.prices[domain.OpGeneration] = 99
	period := time.Now().UTC()
	from := time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, time.UTC)
	records, err := store.ListUsage(context.Background(), "proj", from, from.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 1.0, records[0].Cost, 1e-9)
}

func TestLedger_StatusUtilizationUncapped(t *testing.T) {
	store := memory.NewStore(0)
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 1}, WithClock(fixedClock(now)))

	// 150 generation tokens at 0.01 = 1.50 spend against a 1.00 limit.
	_, err := ledger.Record(context.Background(), "proj", domain.OpGeneration, 150)
	require.NoError(t, err)

	status, err := ledger.Status(context.Background(), "proj")
	require.NoError(t, err)
	assert.False(t, status.WithinBudget)
	assert.InDelta(t, 150.0, status.Utilization, 1e-9)
	assert.InDelta(t, 1.5, status.Spend, 1e-9)
}

func TestLedger_AlertsFireOncePerPeriod(t *testing.T) {
	store := memory.NewStore(0)
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 1}, WithClock(fixedClock(now)))
	ctx := context.Background()

	// 65% utilization: the 60% alert fires once.
	_, err := ledger.Record(ctx, "proj", domain.OpGeneration, 65)
	require.NoError(t, err)

	status, err := ledger.Status(ctx, "proj")
	require.NoError(t, err)
	require.Len(t, status.Alerts, 1)
	assert.Equal(t, 60, status.Alerts[0].Threshold)
	assert.Equal(t, "2026-08", status.Alerts[0].Period)

	// A second evaluation at the same utilization fires nothing.
	status, err = ledger.Status(ctx, "proj")
	require.NoError(t, err)
	assert.Empty(t, status.Alerts)
}

func TestLedger_JumpCrossingMultipleThresholds(t *testing.T) {
	store := memory.NewStore(0)
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 1}, WithClock(fixedClock(now)))
	ctx := context.Background()

	// 0% straight past 100%: all three thresholds fire in one evaluation.
	_, err := ledger.Record(ctx, "proj", domain.OpGeneration, 120)
	require.NoError(t, err)

	status, err := ledger.Status(ctx, "proj")
	require.NoError(t, err)
	require.Len(t, status.Alerts, 3)
	assert.Equal(t, 60, status.Alerts[0].Threshold)
	assert.Equal(t, 80, status.Alerts[1].Threshold)
	assert.Equal(t, 100, status.Alerts[2].Threshold)
}

func TestLedger_AlertLatchResetsAcrossPeriods(t *testing.T) {
	store := memory.NewStore(0)
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	clock := &now
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 1},
		WithClock(func() time.Time { return *clock }))
	ctx := context.Background()

	_, err := ledger.Record(ctx, "proj", domain.OpGeneration, 70)
	require.NoError(t, err)
	status, err := ledger.Status(ctx, "proj")
	require.NoError(t, err)
	require.Len(t, status.Alerts, 1)

	// Next month: the old spend is out of period and nothing fires
	// until spend accrues again.
	next := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	clock = &next
	status, err = ledger.Status(ctx, "proj")
	require.NoError(t, err)
	assert.Empty(t, status.Alerts)
	assert.Zero(t, status.Spend)

	_, err = ledger.Record(ctx, "proj", domain.OpGeneration, 70)
	require.NoError(t, err)
	status, err = ledger.Status(ctx, "proj")
	require.NoError(t, err)
	require.Len(t, status.Alerts, 1)
	assert.Equal(t, "2026-09", status.Alerts[0].Period)
}

func TestLedger_NoAlertsWithoutLimit(t *testing.T) {
	store := memory.NewStore(0)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{})
	ctx := context.Background()

	_, err := ledger.Record(ctx, "proj", domain.OpGeneration, 1000)
	require.NoError(t, err)

	status, err := ledger.Status(ctx, "proj")
	require.NoError(t, err)
	assert.True(t, status.WithinBudget)
	assert.Zero(t, status.Utilization)
	assert.Empty(t, status.Alerts)
}

func TestLedger_ProjectionLinear(t *testing.T) {
	store := memory.NewStore(0)

	// Day 10 of the month with 3.00 spent projects to 9.00 over 30 days.
	now := time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 100}, WithClock(fixedClock(now)))
	ctx := context.Background()

	_, err := ledger.Record(ctx, "proj", domain.OpGeneration, 300)
	require.NoError(t, err)

	status, err := ledger.Status(ctx, "proj")
	require.NoError(t, err)
	assert.InDelta(t, 9.0, status.Projected, 1e-9)
}

func TestLedger_ProjectionMinimumOneDay(t *testing.T) {
	store := memory.NewStore(0)

	// One hour into the month: elapsed time is floored to a full day so
	// early-period spend is not absurdly extrapolated.
	now := time.Date(2026, 8, 1, 1, 0, 0, 0, time.UTC)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 100}, WithClock(fixedClock(now)))
	ctx := context.Background()

	_, err := ledger.Record(ctx, "proj", domain.OpGeneration, 100)
	require.NoError(t, err)

	status, err := ledger.Status(ctx, "proj")
	require.NoError(t, err)
	assert.InDelta(t, 30.0, status.Projected, 1e-9)
}

func TestLedger_SetLimit(t *testing.T) {
	store := memory.NewStore(0)
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{}, WithClock(fixedClock(now)))
	ctx := context.Background()

	assert.ErrorIs(t, ledger.SetLimit(ctx, -1), domain.ErrInvalidInput)
	require.NoError(t, ledger.SetLimit(ctx, 2))

	_, err := ledger.Record(ctx, "proj", domain.OpGeneration, 100)
	require.NoError(t, err)

	status, err := ledger.Status(ctx, "proj")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, status.Limit, 1e-9)
	assert.InDelta(t, 50.0, status.Utilization, 1e-9)
}

func TestLedger_ResetClearsUsageAndLatches(t *testing.T) {
	store := memory.NewStore(0)
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 1}, WithClock(fixedClock(now)))
	ctx := context.Background()

	_, err := ledger.Record(ctx, "proj", domain.OpGeneration, 70)
	require.NoError(t, err)
	status, err := ledger.Status(ctx, "proj")
	require.NoError(t, err)
	require.Len(t, status.Alerts, 1)

	require.NoError(t, ledger.Reset(ctx, "proj"))

	// Spend is gone and the 60% latch is re-armed.
	status, err = ledger.Status(ctx, "proj")
	require.NoError(t, err)
	assert.Zero(t, status.Spend)

	_, err = ledger.Record(ctx, "proj", domain.OpGeneration, 70)
	require.NoError(t, err)
	status, err = ledger.Status(ctx, "proj")
	require.NoError(t, err)
	assert.Len(t, status.Alerts, 1)
}

func TestLedger_ResetLeavesOtherProjectLatchesAlone(t *testing.T) {
	store := memory.NewStore(0)
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 1}, WithClock(fixedClock(now)))
	ctx := context.Background()

	// Latch the 60% alert on both projects, including one whose ID is a
	// prefix of the other.
	for _, project := range []string{"proj", "proj2"} {
		_, err := ledger.Record(ctx, project, domain.OpGeneration, 70)
		require.NoError(t, err)
		status, err := ledger.Status(ctx, project)
		require.NoError(t, err)
		require.Len(t, status.Alerts, 1)
	}

	require.NoError(t, ledger.Reset(ctx, "proj"))

	// proj2 keeps its spend and its latch: no alert fires again.
	status, err := ledger.Status(ctx, "proj2")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, status.Spend, 1e-9)
	assert.Empty(t, status.Alerts)
}
