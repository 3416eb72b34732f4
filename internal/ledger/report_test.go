package ledger

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/controlcenter/internal/models"
)

func TestMonthlySummary_OnlyCurrentMonth(t *testing.T) {
	l, repo, _ := newTestLedger(t)
	ctx := context.Background()

	events := []models.ConsumptionEvent{
		{ID: 1, MaterialID: 1, QuantityGrams: grams(100), Cost: decimal.NewFromInt(100), Timestamp: fixedNow.AddDate(0, 0, -10)},
		{ID: 2, MaterialID: 1, QuantityGrams: grams(200), Cost: decimal.NewFromInt(200), Timestamp: fixedNow.Add(-time.Hour)},
		{ID: 3, MaterialID: 1, QuantityGrams: grams(50), Cost: decimal.NewFromInt(50), Timestamp: fixedNow.AddDate(0, -1, 0)},
	}
	materials := []models.Material{
		{ID: 1, Type: "PLA", Color: "Negro", WeightOnHand: kg("0.4")},
		{ID: 2, Type: "PLA", Color: "Azul", WeightOnHand: kg("0.5")},
		{ID: 3, Type: "ABS", Color: "Gris", WeightOnHand: kg("0")},
	}
	require.NoError(t, repo.SaveLedger(ctx, events, materials))

	s := l.MonthlySummary(ctx)

	assert.True(t, s.TotalCost.Equal(decimal.NewFromInt(300)), "cost %s", s.TotalCost)
	assert.True(t, s.TotalKg.Equal(kg("0.3")), "kg %s", s.TotalKg)
	assert.Equal(t, 2, s.EventCount)
	assert.Equal(t, 2, s.LowStockMaterials)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local), s.MonthStart)
}

func TestMonthlySummary_FirstInstantOfMonthCounts(t *testing.T) {
	l, repo, _ := newTestLedger(t)
	ctx := context.Background()
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local)

	require.NoError(t, repo.SaveLedger(ctx, []models.ConsumptionEvent{
		{ID: 1, Cost: decimal.NewFromInt(10), QuantityGrams: grams(1), Timestamp: start},
		{ID: 2, Cost: decimal.NewFromInt(20), QuantityGrams: grams(1), Timestamp: start.Add(-time.Nanosecond)},
	}, nil))

	s := l.MonthlySummary(ctx)
	assert.Equal(t, 1, s.EventCount)
	assert.True(t, s.TotalCost.Equal(decimal.NewFromInt(10)))
}

func TestListConsumption_SortedNewestFirstWithStableTies(t *testing.T) {
	l, repo, _ := newTestLedger(t)
	ctx := context.Background()
	orderID := int64(4)

	require.NoError(t, repo.SaveOrders(ctx, []models.Order{{ID: 4, Customer: "Ana"}}))
	require.NoError(t, repo.SaveLedger(ctx, []models.ConsumptionEvent{
		{ID: 1, MaterialID: 1, Timestamp: fixedNow.Add(-2 * time.Hour)},
		{ID: 2, MaterialID: 1, Timestamp: fixedNow.Add(-time.Hour), OrderID: &orderID},
		{ID: 3, MaterialID: 2, Timestamp: fixedNow.Add(-time.Hour)},
		{ID: 4, MaterialID: 1, Timestamp: fixedNow},
	}, []models.Material{{ID: 1, Type: "PLA", Color: "Negro"}}))

	views := slices.Collect(l.ListConsumption(ctx, Filter{}))

	ids := make([]int64, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []int64{4, 2, 3, 1}, ids)
	assert.Equal(t, "Ana", views[1].Customer)
	assert.Equal(t, models.DeletedMaterialLabel, views[2].MaterialLabel)
	assert.Equal(t, "PLA - Negro", views[3].MaterialLabel)
}

func TestListConsumption_WindowAndRestart(t *testing.T) {
	l, repo, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveLedger(ctx, []models.ConsumptionEvent{
		{ID: 1, Timestamp: fixedNow.AddDate(0, 0, -40)},
		{ID: 2, Timestamp: fixedNow.AddDate(0, 0, -20)},
		{ID: 3, Timestamp: fixedNow.AddDate(0, 0, -3)},
	}, nil))

	week := 7
	seq := l.ListConsumption(ctx, Filter{WindowDays: &week})
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(3), first[0].ID)

	month := 30
	assert.Len(t, slices.Collect(l.ListConsumption(ctx, Filter{WindowDays: &month})), 2)
	assert.Len(t, slices.Collect(l.ListConsumption(ctx, Filter{})), 3)

	// early break stops the sequence
	count := 0
	for range l.ListConsumption(ctx, Filter{}) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}
