package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/money"
)

// Input represents a print job specification. Optional numeric fields that are
// left unset take their value from Defaults.
type Input struct {
	MaterialID            int64               `json:"materialId"`
	PieceCount            decimal.NullDecimal `json:"pieceCount"`
	WeightPerPieceGrams   decimal.NullDecimal `json:"weightPerPieceGrams"`
	WastePercent          decimal.NullDecimal `json:"wastePercent"`
	PrintHours            decimal.NullDecimal `json:"printHours"`
	PrepMinutes           decimal.NullDecimal `json:"prepMinutes"`
	PostMinutes           decimal.NullDecimal `json:"postMinutes"`
	FailureMarginPercent  decimal.NullDecimal `json:"failureMarginPercent"`
	Wattage               decimal.NullDecimal `json:"wattage"`
	EnergyCostPerKwh      decimal.NullDecimal `json:"energyCostPerKwh"`
	PrepLaborRate         decimal.NullDecimal `json:"prepLaborRate"`
	PostLaborRate         decimal.NullDecimal `json:"postLaborRate"`
	PrinterCost           decimal.NullDecimal `json:"printerCost"`
	AmortizationYears     decimal.NullDecimal `json:"amortizationYears"`
	DailyUsageHours       decimal.NullDecimal `json:"dailyUsageHours"`
	RepairPercent         decimal.NullDecimal `json:"repairPercent"`
	PackagingCostPerPiece decimal.NullDecimal `json:"packagingCostPerPiece"`
	OtherCosts            decimal.NullDecimal `json:"otherCosts"`
	MarginPercent         decimal.NullDecimal `json:"marginPercent"`
	DiscountPercent       decimal.NullDecimal `json:"discountPercent"`
	TaxPercent            decimal.NullDecimal `json:"taxPercent"`
	IncludeTax            bool                `json:"includeTax"`
}

// Params holds every input after defaults were applied.
type Params struct {
	PieceCount            decimal.Decimal `json:"pieceCount"`
	WeightPerPieceGrams   decimal.Decimal `json:"weightPerPieceGrams"`
	WastePercent          decimal.Decimal `json:"wastePercent"`
	PrintHours            decimal.Decimal `json:"printHours"`
	PrepMinutes           decimal.Decimal `json:"prepMinutes"`
	PostMinutes           decimal.Decimal `json:"postMinutes"`
	FailureMarginPercent  decimal.Decimal `json:"failureMarginPercent"`
	Wattage               decimal.Decimal `json:"wattage"`
	EnergyCostPerKwh      decimal.Decimal `json:"energyCostPerKwh"`
	PrepLaborRate         decimal.Decimal `json:"prepLaborRate"`
	PostLaborRate         decimal.Decimal `json:"postLaborRate"`
	PrinterCost           decimal.Decimal `json:"printerCost"`
	AmortizationYears     decimal.Decimal `json:"amortizationYears"`
	DailyUsageHours       decimal.Decimal `json:"dailyUsageHours"`
	RepairPercent         decimal.Decimal `json:"repairPercent"`
	PackagingCostPerPiece decimal.Decimal `json:"packagingCostPerPiece"`
	OtherCosts            decimal.Decimal `json:"otherCosts"`
	MarginPercent         decimal.Decimal `json:"marginPercent"`
	DiscountPercent       decimal.Decimal `json:"discountPercent"`
	TaxPercent            decimal.Decimal `json:"taxPercent"`
	IncludeTax            bool            `json:"includeTax"`
}

// Defaults are applied to optional fields that are absent from the input.
var Defaults = struct {
	PieceCount           decimal.Decimal
	WastePercent         decimal.Decimal
	FailureMarginPercent decimal.Decimal
	Wattage              decimal.Decimal
	EnergyCostPerKwh     decimal.Decimal
	PrinterCost          decimal.Decimal
	AmortizationYears    decimal.Decimal
	DailyUsageHours      decimal.Decimal
	RepairPercent        decimal.Decimal
	TaxPercent           decimal.Decimal
}{
	PieceCount:           decimal.NewFromInt(1),
	WastePercent:         decimal.NewFromInt(5),
	FailureMarginPercent: decimal.NewFromInt(5),
	Wattage:              decimal.NewFromInt(120),
	EnergyCostPerKwh:     decimal.NewFromInt(110),
	PrinterCost:          decimal.NewFromInt(250000),
	AmortizationYears:    decimal.NewFromInt(2),
	DailyUsageHours:      decimal.NewFromInt(6),
	RepairPercent:        decimal.NewFromInt(5),
	TaxPercent:           decimal.NewFromInt(13),
}

// Breakdown contains all intermediate and line-item values of the calculation.
type Breakdown struct {
	EffectiveWeightGrams   decimal.Decimal `json:"effectiveWeightGrams"`
	MaterialCost           decimal.Decimal `json:"materialCost"`
	TotalHours             decimal.Decimal `json:"totalHours"`
	HoursWithFailureMargin decimal.Decimal `json:"hoursWithFailureMargin"`
	LaborCost              decimal.Decimal `json:"laborCost"`
	EnergyKwh              decimal.Decimal `json:"energyKwh"`
	EnergyCost             decimal.Decimal `json:"energyCost"`
	RepairCost             decimal.Decimal `json:"repairCost"`
	TotalEquipmentCost     decimal.Decimal `json:"totalEquipmentCost"`
	LifetimeHours          decimal.Decimal `json:"lifetimeHours"`
	CostPerHour            decimal.Decimal `json:"costPerHour"`
	DepreciationCost       decimal.Decimal `json:"depreciationCost"`
	PackagingCost          decimal.Decimal `json:"packagingCost"`
	OtherCost              decimal.Decimal `json:"otherCost"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	Profit                 decimal.Decimal `json:"profit"`
	PriceWithMargin        decimal.Decimal `json:"priceWithMargin"`
	DiscountAmount         decimal.Decimal `json:"discountAmount"`
	PriceBeforeTax         decimal.Decimal `json:"priceBeforeTax"`
	TaxAmount              decimal.Decimal `json:"taxAmount"`
}

// Totals contains roll-up values from the calculation.
type Totals struct {
	FinalPrice    decimal.Decimal `json:"finalPrice"`
	PricePerPiece decimal.Decimal `json:"pricePerPiece"`
}

// Result groups the full pricing output, including the resolved inputs.
type Result struct {
	MaterialID    int64     `json:"materialId"`
	MaterialLabel string    `json:"materialLabel"`
	Params        Params    `json:"params"`
	Breakdown     Breakdown `json:"breakdown"`
	Totals        Totals    `json:"totals"`
}

const daysPerYear = 365

// Calculate computes the price breakdown of a job made from material. It has
// no side effects.
func Calculate(in Input, material models.Material) (Result, error) {
	p, err := resolve(in)
	if err != nil {
		return Result{}, err
	}

	effectiveWeight := money.Grow(p.WeightPerPieceGrams.Mul(p.PieceCount), p.WastePercent)
	materialCost := money.GramsToKg(effectiveWeight).Mul(material.UnitCost)

	prepHours := money.MinutesToHours(p.PrepMinutes)
	postHours := money.MinutesToHours(p.PostMinutes)
	totalHours := p.PrintHours.Add(prepHours).Add(postHours)
	hoursWithFailureMargin := money.Grow(totalHours, p.FailureMarginPercent)

	laborCost := prepHours.Mul(p.PrepLaborRate).Add(postHours.Mul(p.PostLaborRate))

	energyKwh := p.Wattage.Div(decimal.NewFromInt(1000)).Mul(p.PrintHours)
	energyCost := energyKwh.Mul(p.EnergyCostPerKwh)

	repairCost := money.Percent(p.PrinterCost, p.RepairPercent)
	totalEquipmentCost := p.PrinterCost.Add(repairCost)
	lifetimeHours := p.AmortizationYears.Mul(decimal.NewFromInt(daysPerYear)).Mul(p.DailyUsageHours)
	if lifetimeHours.IsZero() {
		return Result{}, &apperror.InvalidInputError{Reason: "equipment lifetime hours must be greater than zero"}
	}
	costPerHour := totalEquipmentCost.Div(lifetimeHours)
	depreciationCost := costPerHour.Mul(p.PrintHours)

	packagingCost := p.PackagingCostPerPiece.Mul(p.PieceCount)
	otherCost := p.OtherCosts

	subtotal := materialCost.Add(laborCost).Add(energyCost).Add(depreciationCost).Add(packagingCost).Add(otherCost)

	profit := money.Percent(subtotal, p.MarginPercent)
	priceWithMargin := subtotal.Add(profit)

	discountAmount := money.Percent(priceWithMargin, p.DiscountPercent)
	priceBeforeTax := priceWithMargin.Sub(discountAmount)

	taxAmount := decimal.Zero
	if p.IncludeTax {
		taxAmount = money.Percent(priceBeforeTax, p.TaxPercent)
	}
	finalPrice := priceBeforeTax.Add(taxAmount)

	return Result{
		MaterialID:    material.ID,
		MaterialLabel: material.Label(),
		Params:        p,
		Breakdown: Breakdown{
			EffectiveWeightGrams:   effectiveWeight,
			MaterialCost:           materialCost,
			TotalHours:             totalHours,
			HoursWithFailureMargin: hoursWithFailureMargin,
			LaborCost:              laborCost,
			EnergyKwh:              energyKwh,
			EnergyCost:             energyCost,
			RepairCost:             repairCost,
			TotalEquipmentCost:     totalEquipmentCost,
			LifetimeHours:          lifetimeHours,
			CostPerHour:            costPerHour,
			DepreciationCost:       depreciationCost,
			PackagingCost:          packagingCost,
			OtherCost:              otherCost,
			Subtotal:               subtotal,
			Profit:                 profit,
			PriceWithMargin:        priceWithMargin,
			DiscountAmount:         discountAmount,
			PriceBeforeTax:         priceBeforeTax,
			TaxAmount:              taxAmount,
		},
		Totals: Totals{
			FinalPrice:    finalPrice,
			PricePerPiece: finalPrice.Div(p.PieceCount),
		},
	}, nil
}

func resolve(in Input) (Params, error) {
	var missing []string
	required := func(name string, v decimal.NullDecimal) decimal.Decimal {
		if !v.Valid {
			missing = append(missing, name)
			return decimal.Zero
		}
		return v.Decimal
	}
	or := func(v decimal.NullDecimal, def decimal.Decimal) decimal.Decimal {
		if v.Valid {
			return v.Decimal
		}
		return def
	}

	p := Params{
		WeightPerPieceGrams:   required("weightPerPieceGrams", in.WeightPerPieceGrams),
		PrintHours:            required("printHours", in.PrintHours),
		MarginPercent:         required("marginPercent", in.MarginPercent),
		PieceCount:            or(in.PieceCount, Defaults.PieceCount),
		WastePercent:          or(in.WastePercent, Defaults.WastePercent),
		PrepMinutes:           or(in.PrepMinutes, decimal.Zero),
		PostMinutes:           or(in.PostMinutes, decimal.Zero),
		FailureMarginPercent:  or(in.FailureMarginPercent, Defaults.FailureMarginPercent),
		Wattage:               or(in.Wattage, Defaults.Wattage),
		EnergyCostPerKwh:      or(in.EnergyCostPerKwh, Defaults.EnergyCostPerKwh),
		PrepLaborRate:         or(in.PrepLaborRate, decimal.Zero),
		PostLaborRate:         or(in.PostLaborRate, decimal.Zero),
		PrinterCost:           or(in.PrinterCost, Defaults.PrinterCost),
		AmortizationYears:     or(in.AmortizationYears, Defaults.AmortizationYears),
		DailyUsageHours:       or(in.DailyUsageHours, Defaults.DailyUsageHours),
		RepairPercent:         or(in.RepairPercent, Defaults.RepairPercent),
		PackagingCostPerPiece: or(in.PackagingCostPerPiece, decimal.Zero),
		OtherCosts:            or(in.OtherCosts, decimal.Zero),
		DiscountPercent:       or(in.DiscountPercent, decimal.Zero),
		TaxPercent:            or(in.TaxPercent, Defaults.TaxPercent),
		IncludeTax:            in.IncludeTax,
	}
	if len(missing) > 0 {
		return Params{}, apperror.Missing(missing...)
	}

	fields := map[string]string{}
	for name, v := range map[string]decimal.Decimal{
		"pieceCount":            p.PieceCount,
		"weightPerPieceGrams":   p.WeightPerPieceGrams,
		"wastePercent":          p.WastePercent,
		"printHours":            p.PrintHours,
		"prepMinutes":           p.PrepMinutes,
		"postMinutes":           p.PostMinutes,
		"failureMarginPercent":  p.FailureMarginPercent,
		"wattage":               p.Wattage,
		"energyCostPerKwh":      p.EnergyCostPerKwh,
		"prepLaborRate":         p.PrepLaborRate,
		"postLaborRate":         p.PostLaborRate,
		"printerCost":           p.PrinterCost,
		"amortizationYears":     p.AmortizationYears,
		"dailyUsageHours":       p.DailyUsageHours,
		"repairPercent":         p.RepairPercent,
		"packagingCostPerPiece": p.PackagingCostPerPiece,
		"otherCosts":            p.OtherCosts,
		"marginPercent":         p.MarginPercent,
		"discountPercent":       p.DiscountPercent,
		"taxPercent":            p.TaxPercent,
	} {
		if v.IsNegative() {
			fields[name] = "must be greater than or equal to 0"
		}
	}
	if p.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		fields["discountPercent"] = "must be between 0 and 100"
	}
	if !p.PieceCount.Equal(p.PieceCount.Truncate(0)) {
		fields["pieceCount"] = "must be a whole number"
	}
	if len(fields) > 0 {
		return Params{}, apperror.NewValidation(fields)
	}

	if p.PieceCount.IsZero() {
		return Params{}, &apperror.InvalidInputError{Reason: "pieceCount must be greater than zero"}
	}

	return p, nil
}

// Summary describes the job in one line with the weight of a single piece as
// entered, e.g. "Impresión 3D - 50g - 3h".
func (r Result) Summary() string {
	return "Impresión 3D - " + r.Params.WeightPerPieceGrams.Round(2).String() + "g - " +
		r.Params.PrintHours.Round(2).String() + "h"
}
