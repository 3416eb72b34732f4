package pricing

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/models"
)

// MaterialFinder resolves a material id. It returns
// *apperror.MaterialNotFoundError for unknown ids.
type MaterialFinder interface {
	FindMaterial(ctx context.Context, id int64) (models.Material, error)
}

// SettingsSource supplies the business configuration.
type SettingsSource interface {
	Get(ctx context.Context) models.Settings
}

// Calculator runs Calculate against stored materials and remembers the last
// successful result for promotion to a product or an order.
type Calculator struct {
	materials MaterialFinder
	settings  SettingsSource

	mu   sync.RWMutex
	last *Result
}

func NewCalculator(materials MaterialFinder, settings SettingsSource) *Calculator {
	return &Calculator{materials: materials, settings: settings}
}

// Calculate prices a job. Labor rates left unset are taken from the
// configured hourly labor rate.
func (c *Calculator) Calculate(ctx context.Context, in Input) (Result, error) {
	material, err := c.materials.FindMaterial(ctx, in.MaterialID)
	if err != nil {
		return Result{}, err
	}

	if !in.PrepLaborRate.Valid || !in.PostLaborRate.Valid {
		rate := c.settings.Get(ctx).LaborRatePerHour
		if !in.PrepLaborRate.Valid {
			in.PrepLaborRate = decimal.NewNullDecimal(rate)
		}
		if !in.PostLaborRate.Valid {
			in.PostLaborRate = decimal.NewNullDecimal(rate)
		}
	}

	res, err := Calculate(in, material)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	c.last = &res
	c.mu.Unlock()

	zerolog.Ctx(ctx).Debug().
		Int64("material_id", material.ID).
		Str("final_price", res.Totals.FinalPrice.StringFixed(2)).
		Msg("calculation done")
	return res, nil
}

// Last returns the most recent successful calculation.
func (c *Calculator) Last() (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Result{}, false
	}
	return *c.last, true
}
