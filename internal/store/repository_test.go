package store

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
)

type failingBackend struct {
	getErr error
	putErr error
}

func (b failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, b.getErr
}

func (b failingBackend) PutMany(context.Context, map[string][]byte) error {
	return b.putErr
}

func TestLoadMissingCollectionIsEmpty(t *testing.T) {
	repo := NewRepository(NewMemoryBackend())

	materials := repo.Materials(context.Background())
	require.NotNil(t, materials)
	assert.Empty(t, materials)
}

func TestLoadCorruptCollectionIsEmpty(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.PutMany(context.Background(), map[string][]byte{"orders": []byte(`{not json`)}))

	assert.Empty(t, NewRepository(backend).Orders(context.Background()))
}

func TestLoadBackendFailureIsEmpty(t *testing.T) {
	repo := NewRepository(failingBackend{getErr: errors.New("io error")})

	assert.Empty(t, repo.Consumption(context.Background()))
}

func TestForUpdateReportsBackendFailure(t *testing.T) {
	repo := NewRepository(failingBackend{getErr: errors.New("io error")})

	events, err := repo.ConsumptionForUpdate(context.Background())

	var perr *apperror.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "consumption", perr.Collection)
	assert.Nil(t, events)
}

func TestForUpdateRejectsCollectionThatIsNotAnArray(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.PutMany(context.Background(), map[string][]byte{"orders": []byte(`{not json`)}))

	_, err := NewRepository(backend).OrdersForUpdate(context.Background())

	var perr *apperror.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "orders", perr.Collection)
}

func TestForUpdateMissingCollectionIsEmpty(t *testing.T) {
	products, err := NewRepository(NewMemoryBackend()).ProductsForUpdate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestWritten(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryBackend())

	written, err := repo.Written(ctx, Materials)
	require.NoError(t, err)
	assert.False(t, written)

	require.NoError(t, repo.SaveMaterials(ctx, nil))
	written, err = repo.Written(ctx, Materials)
	require.NoError(t, err)
	assert.True(t, written)
}

func TestLoadDropsCorruptMaterialsAndCoercesTheRest(t *testing.T) {
	backend := NewMemoryBackend()
	raw := `[
		{"id": 1, "type": "PLA", "color": "Rojo", "weightOnHand": 1.2, "unitCost": 9000},
		null,
		{"type": "no id"},
		"garbage",
		{"id": 2, "weightOnHand": "abc", "unitCost": "12000"}
	]`
	require.NoError(t, backend.PutMany(context.Background(), map[string][]byte{"materials": []byte(raw)}))

	materials := NewRepository(backend).Materials(context.Background())
	require.Len(t, materials, 2)

	assert.Equal(t, "PLA - Rojo", materials[0].Label())
	assert.True(t, materials[0].WeightOnHand.Equal(decimal.RequireFromString("1.2")))

	assert.Equal(t, models.DefaultMaterialType, materials[1].Type)
	assert.Equal(t, models.DefaultMaterialColor, materials[1].Color)
	assert.True(t, materials[1].WeightOnHand.IsZero())
	assert.True(t, materials[1].UnitCost.Equal(decimal.NewFromInt(12000)))
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryBackend())
	orderID := int64(4)

	events := []models.ConsumptionEvent{{
		ID:            1,
		MaterialID:    2,
		QuantityGrams: decimal.NewFromInt(250),
		Reason:        "Impresión",
		OrderID:       &orderID,
		Cost:          decimal.NewFromInt(2250),
		Timestamp:     time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}}
	materials := []models.Material{{ID: 2, Type: "PETG", Color: "Azul", WeightOnHand: decimal.RequireFromString("0.75"), UnitCost: decimal.NewFromInt(9000)}}

	require.NoError(t, repo.SaveLedger(ctx, events, materials))

	gotEvents := repo.Consumption(ctx)
	require.Len(t, gotEvents, 1)
	assert.Equal(t, orderID, *gotEvents[0].OrderID)
	assert.True(t, gotEvents[0].Timestamp.Equal(events[0].Timestamp))

	gotMaterials := repo.Materials(ctx)
	require.Len(t, gotMaterials, 1)
	assert.True(t, gotMaterials[0].WeightOnHand.Equal(decimal.RequireFromString("0.75")))
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	repo := NewRepository(failingBackend{putErr: errors.New("quota exceeded")})

	err := repo.SaveLedger(context.Background(), nil, nil)

	var perr *apperror.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "consumption+materials", perr.Collection)
}

func TestSettingsSingleton(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryBackend())

	_, ok := repo.Settings(ctx)
	assert.False(t, ok)

	s := models.DefaultSettings()
	s.BusinessName = "Taller"
	require.NoError(t, repo.SaveSettings(ctx, s))

	got, ok := repo.Settings(ctx)
	require.True(t, ok)
	assert.Equal(t, "Taller", got.BusinessName)
}

func TestSaveNilSliceWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	repo := NewRepository(backend)

	require.NoError(t, repo.SaveProducts(ctx, nil))

	data, ok, err := backend.Get(ctx, string(Products))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(data))
}
