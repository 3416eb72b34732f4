package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorListsFieldsSorted(t *testing.T) {
	err := Missing("printHours", "marginPercent", "weightPerPieceGrams")

	assert.Equal(t,
		"validation failed: marginPercent: required, printHours: required, weightPerPieceGrams: required",
		err.Error())
}

func TestToResponseMapsTypedErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", Missing("x"), http.StatusUnprocessableEntity},
		{"material", &MaterialNotFoundError{ID: 4}, http.StatusNotFound},
		{"not found", &NotFoundError{Resource: "order", ID: "9"}, http.StatusNotFound},
		{"stock", &InsufficientStockError{MaterialID: 1, AvailableKg: decimal.NewFromInt(1), RequestedKg: decimal.NewFromInt(2)}, http.StatusConflict},
		{"invalid", &InvalidInputError{Reason: "pieceCount must be greater than zero"}, http.StatusBadRequest},
		{"persistence", &PersistenceError{Collection: "materials", Err: errors.New("disk full")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := ToResponse(fmt.Errorf("wrapped: %w", tc.err))
			assert.Equal(t, tc.status, status)
		})
	}
}

func TestToResponseCarriesStockAmounts(t *testing.T) {
	_, body := ToResponse(&InsufficientStockError{
		MaterialID:  1,
		AvailableKg: decimal.RequireFromString("0.5"),
		RequestedKg: decimal.RequireFromString("0.501"),
	})

	require.NotNil(t, body.AvailableKg)
	require.NotNil(t, body.RequestedKg)
	assert.Equal(t, "0.5", body.AvailableKg.String())
	assert.Equal(t, "0.501", body.RequestedKg.String())
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := &PersistenceError{Collection: "consumption", Err: cause}

	assert.ErrorIs(t, err, cause)
}
