package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/store"
)

var now = time.Date(2026, time.June, 20, 12, 0, 0, 0, time.UTC)

func newTestLedger() *Ledger {
	f := New(store.NewRepository(store.NewMemoryBackend()))
	f.now = func() time.Time { return now }
	return f
}

func TestMonthlyBalance(t *testing.T) {
	f := newTestLedger()
	ctx := context.Background()

	_, err := f.AddIncome(ctx, EntryInput{Category: "Ventas", Amount: decimal.NewFromInt(20000)})
	require.NoError(t, err)
	_, err = f.AddIncome(ctx, EntryInput{Category: "Ventas", Amount: decimal.NewFromInt(9000), Date: now.AddDate(0, -1, 0)})
	require.NoError(t, err)
	_, err = f.AddExpense(ctx, EntryInput{Category: "Filamento", Amount: decimal.NewFromInt(7500), Date: now.AddDate(0, 0, -5)})
	require.NoError(t, err)

	b := f.MonthlyBalance(ctx)
	assert.True(t, b.Income.Equal(decimal.NewFromInt(20000)))
	assert.True(t, b.Expenses.Equal(decimal.NewFromInt(7500)))
	assert.True(t, b.Balance.Equal(decimal.NewFromInt(12500)))
}

func TestEntries_NewestFirst(t *testing.T) {
	f := newTestLedger()
	ctx := context.Background()

	old, err := f.AddExpense(ctx, EntryInput{Category: "Luz", Amount: decimal.NewFromInt(1), Date: now.AddDate(0, 0, -2)})
	require.NoError(t, err)
	recent, err := f.AddIncome(ctx, EntryInput{Category: "Ventas", Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)

	entries := f.Entries(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, recent.ID, entries[0].ID)
	assert.Equal(t, models.Income, entries[0].Kind)
	assert.Equal(t, old.ID, entries[1].ID)
	assert.NotEqual(t, old.ID, recent.ID)
}

func TestAdd_Validation(t *testing.T) {
	f := newTestLedger()

	_, err := f.AddIncome(context.Background(), EntryInput{Amount: decimal.Zero})

	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "category")
	assert.Contains(t, verr.Fields, "amount")
}
