package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
)

func d(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

func nearlyEqual(t *testing.T, name string, got decimal.Decimal, want float64) {
	t.Helper()
	f, _ := got.Float64()
	assert.InDelta(t, want, f, 0.05, name)
}

func scenarioB() (Input, models.Material) {
	in := Input{
		MaterialID:          1,
		WeightPerPieceGrams: d(50),
		PieceCount:          d(2),
		WastePercent:        d(10),
		PrintHours:          d(3),
		Wattage:             d(120),
		EnergyCostPerKwh:    d(110),
		PrinterCost:         d(250000),
		AmortizationYears:   d(2),
		DailyUsageHours:     d(6),
		RepairPercent:       d(5),
		MarginPercent:       d(30),
		TaxPercent:          d(13),
		IncludeTax:          true,
	}
	material := models.Material{ID: 1, Type: "PLA", Color: "Negro", WeightOnHand: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(9000)}
	return in, material
}

func TestCalculate_FullBreakdown(t *testing.T) {
	in, material := scenarioB()

	result, err := Calculate(in, material)
	require.NoError(t, err)

	b := result.Breakdown
	assert.True(t, b.EffectiveWeightGrams.Equal(decimal.NewFromInt(110)), "effective weight %s", b.EffectiveWeightGrams)
	assert.True(t, b.MaterialCost.Equal(decimal.NewFromInt(990)), "material cost %s", b.MaterialCost)
	assert.True(t, b.EnergyKwh.Equal(decimal.RequireFromString("0.36")), "energy kwh %s", b.EnergyKwh)
	assert.True(t, b.EnergyCost.Equal(decimal.RequireFromString("39.6")), "energy cost %s", b.EnergyCost)
	assert.True(t, b.LifetimeHours.Equal(decimal.NewFromInt(4380)), "lifetime hours %s", b.LifetimeHours)
	assert.True(t, b.LaborCost.IsZero())
	assert.True(t, b.TaxAmount.IsPositive())

	nearlyEqual(t, "costPerHour", b.CostPerHour, 59.93)
	nearlyEqual(t, "depreciationCost", b.DepreciationCost, 179.79)
	nearlyEqual(t, "subtotal", b.Subtotal, 1209.39)
	nearlyEqual(t, "profit", b.Profit, 362.82)
	nearlyEqual(t, "priceBeforeTax", b.PriceBeforeTax, 1572.21)
	nearlyEqual(t, "taxAmount", b.TaxAmount, 204.39)
	nearlyEqual(t, "finalPrice", result.Totals.FinalPrice, 1776.60)
	nearlyEqual(t, "pricePerPiece", result.Totals.PricePerPiece, 888.30)
	assert.Equal(t, "PLA - Negro", result.MaterialLabel)
	assert.Equal(t, "Impresión 3D - 50g - 3h", result.Summary())
}

func TestCalculate_DefaultsApplied(t *testing.T) {
	in := Input{WeightPerPieceGrams: d(100), PrintHours: d(1), MarginPercent: d(0)}

	result, err := Calculate(in, models.Material{ID: 1, UnitCost: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	p := result.Params
	assert.True(t, p.PieceCount.Equal(decimal.NewFromInt(1)))
	assert.True(t, p.WastePercent.Equal(decimal.NewFromInt(5)))
	assert.True(t, p.FailureMarginPercent.Equal(decimal.NewFromInt(5)))
	assert.True(t, p.Wattage.Equal(decimal.NewFromInt(120)))
	assert.True(t, p.EnergyCostPerKwh.Equal(decimal.NewFromInt(110)))
	assert.True(t, p.PrinterCost.Equal(decimal.NewFromInt(250000)))
	assert.True(t, p.AmortizationYears.Equal(decimal.NewFromInt(2)))
	assert.True(t, p.DailyUsageHours.Equal(decimal.NewFromInt(6)))
	assert.True(t, p.RepairPercent.Equal(decimal.NewFromInt(5)))
	assert.True(t, p.TaxPercent.Equal(decimal.NewFromInt(13)))
	assert.False(t, p.IncludeTax)
	assert.True(t, result.Breakdown.TaxAmount.IsZero())
	assert.True(t, result.Totals.FinalPrice.Equal(result.Breakdown.PriceBeforeTax))
}

func TestCalculate_FailureMarginDoesNotChangeCost(t *testing.T) {
	in, material := scenarioB()
	in.PrepMinutes = d(30)
	in.PostMinutes = d(30)
	in.FailureMarginPercent = d(10)

	result, err := Calculate(in, material)
	require.NoError(t, err)

	nearlyEqual(t, "totalHours", result.Breakdown.TotalHours, 4)
	nearlyEqual(t, "hoursWithFailureMargin", result.Breakdown.HoursWithFailureMargin, 4.4)
	nearlyEqual(t, "energyCost", result.Breakdown.EnergyCost, 39.6)
	nearlyEqual(t, "depreciationCost", result.Breakdown.DepreciationCost, 179.79)
}

func TestCalculate_LaborPackagingAndDiscount(t *testing.T) {
	in := Input{
		WeightPerPieceGrams:   d(0),
		PieceCount:            d(4),
		PrintHours:            d(0),
		PrepMinutes:           d(30),
		PostMinutes:           d(15),
		PrepLaborRate:         d(1000),
		PostLaborRate:         d(2000),
		PackagingCostPerPiece: d(25),
		OtherCosts:            d(100),
		MarginPercent:         d(50),
		DiscountPercent:       d(10),
	}

	result, err := Calculate(in, models.Material{ID: 1})
	require.NoError(t, err)

	b := result.Breakdown
	nearlyEqual(t, "laborCost", b.LaborCost, 1000)
	nearlyEqual(t, "packagingCost", b.PackagingCost, 100)
	nearlyEqual(t, "otherCost", b.OtherCost, 100)
	nearlyEqual(t, "subtotal", b.Subtotal, 1200)
	nearlyEqual(t, "priceWithMargin", b.PriceWithMargin, 1800)
	nearlyEqual(t, "discountAmount", b.DiscountAmount, 180)
	nearlyEqual(t, "finalPrice", result.Totals.FinalPrice, 1620)
	nearlyEqual(t, "pricePerPiece", result.Totals.PricePerPiece, 405)
}

func TestCalculate_Idempotent(t *testing.T) {
	in, material := scenarioB()

	first, err := Calculate(in, material)
	require.NoError(t, err)
	second, err := Calculate(in, material)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculate_FinalPriceNeverBelowSubtotal(t *testing.T) {
	for _, margin := range []float64{0, 1, 30, 250} {
		for _, tax := range []bool{false, true} {
			in, material := scenarioB()
			in.MarginPercent = d(margin)
			in.IncludeTax = tax

			result, err := Calculate(in, material)
			require.NoError(t, err)
			assert.True(t, result.Totals.FinalPrice.GreaterThanOrEqual(result.Breakdown.Subtotal),
				"margin %v tax %v: final %s < subtotal %s", margin, tax, result.Totals.FinalPrice, result.Breakdown.Subtotal)
		}
	}
}

func TestCalculate_PerPieceTimesCountIsFinal(t *testing.T) {
	for _, count := range []int64{1, 2, 3, 7, 13} {
		in, material := scenarioB()
		in.PieceCount = decimal.NewNullDecimal(decimal.NewFromInt(count))

		result, err := Calculate(in, material)
		require.NoError(t, err)

		back := result.Totals.PricePerPiece.Mul(decimal.NewFromInt(count))
		assert.True(t, back.Sub(result.Totals.FinalPrice).Abs().LessThan(decimal.RequireFromString("0.000001")),
			"count %d: %s vs %s", count, back, result.Totals.FinalPrice)
	}
}

func TestCalculate_MissingRequiredFields(t *testing.T) {
	_, err := Calculate(Input{}, models.Material{ID: 1})

	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"weightPerPieceGrams": "required",
		"printHours":          "required",
		"marginPercent":       "required",
	}, verr.Fields)
}

func TestCalculate_NegativeAndFractionalFields(t *testing.T) {
	in, material := scenarioB()
	in.WastePercent = d(-1)
	in.PieceCount = d(1.5)

	_, err := Calculate(in, material)

	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "wastePercent")
	assert.Contains(t, verr.Fields, "pieceCount")
}

func TestCalculate_ZeroDivisorsAreInvalidInput(t *testing.T) {
	cases := map[string]func(*Input){
		"zero pieces":          func(in *Input) { in.PieceCount = d(0) },
		"zero years":           func(in *Input) { in.AmortizationYears = d(0) },
		"zero daily usage":     func(in *Input) { in.DailyUsageHours = d(0) },
		"zero pieces and year": func(in *Input) { in.PieceCount = d(0); in.AmortizationYears = d(0) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in, material := scenarioB()
			mutate(&in)

			_, err := Calculate(in, material)

			var ierr *apperror.InvalidInputError
			require.True(t, errors.As(err, &ierr), "got %v", err)
		})
	}
}

type stubMaterials map[int64]models.Material

func (s stubMaterials) FindMaterial(_ context.Context, id int64) (models.Material, error) {
	m, ok := s[id]
	if !ok {
		return models.Material{}, &apperror.MaterialNotFoundError{ID: id}
	}
	return m, nil
}

type stubSettings models.Settings

func (s stubSettings) Get(context.Context) models.Settings { return models.Settings(s) }

func TestCalculator_UnknownMaterial(t *testing.T) {
	calc := NewCalculator(stubMaterials{}, stubSettings(models.DefaultSettings()))
	in, _ := scenarioB()

	_, err := calc.Calculate(context.Background(), in)

	var nf *apperror.MaterialNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, int64(1), nf.ID)
	_, ok := calc.Last()
	assert.False(t, ok)
}

func TestCalculator_FillsLaborRatesAndRemembersLast(t *testing.T) {
	_, material := scenarioB()
	calc := NewCalculator(stubMaterials{1: material}, stubSettings(models.DefaultSettings()))
	in, _ := scenarioB()
	in.PrepMinutes = d(30)
	in.PostLaborRate = d(0)
	in.PostMinutes = d(30)

	result, err := calc.Calculate(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, result.Params.PrepLaborRate.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.Params.PostLaborRate.IsZero())
	nearlyEqual(t, "laborCost", result.Breakdown.LaborCost, 500)

	last, ok := calc.Last()
	require.True(t, ok)
	assert.Equal(t, result, last)
}
