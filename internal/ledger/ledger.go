// Package ledger tracks filament stock and the append-only log of
// consumption events that debit it.
package ledger

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/money"
	"github.com/Simplici0/controlcenter/internal/store"
)

// Ledger is the only writer of material stock. Every read-check-write of the
// materials collection happens under mu, so a debit is always validated
// against the state it is about to overwrite. mu is process-local: one
// server instance must own a given store.
type Ledger struct {
	repo *store.Repository
	now  func() time.Time
	mu   sync.Mutex
}

type Option func(*Ledger)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(repo *store.Repository, opts ...Option) *Ledger {
	l := &Ledger{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ConsumptionInput describes a debit request.
type ConsumptionInput struct {
	MaterialID    int64           `json:"materialId" validate:"required"`
	QuantityGrams decimal.Decimal `json:"quantityGrams" validate:"gt=0"`
	Reason        string          `json:"reason" validate:"required"`
	Description   string          `json:"description"`
	OrderID       *int64          `json:"orderId"`
}

func (in ConsumptionInput) validate() error {
	fields := map[string]string{}
	if !in.QuantityGrams.IsPositive() {
		fields["quantityGrams"] = "must be greater than 0"
	}
	if strings.TrimSpace(in.Reason) == "" {
		fields["reason"] = "required"
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields)
	}
	return nil
}

// RecordConsumption debits a material and appends the matching event. The
// event and the updated stock are persisted in one write.
func (l *Ledger) RecordConsumption(ctx context.Context, in ConsumptionInput) (models.ConsumptionEvent, error) {
	if err := in.validate(); err != nil {
		return models.ConsumptionEvent{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	materials, err := l.repo.MaterialsForUpdate(ctx)
	if err != nil {
		return models.ConsumptionEvent{}, err
	}
	idx, kg, err := checkStock(materials, in.MaterialID, in.QuantityGrams)
	if err != nil {
		return models.ConsumptionEvent{}, err
	}
	material := materials[idx]

	events, err := l.repo.ConsumptionForUpdate(ctx)
	if err != nil {
		return models.ConsumptionEvent{}, err
	}
	event := models.ConsumptionEvent{
		ID:            models.NextID(events, func(e models.ConsumptionEvent) int64 { return e.ID }),
		MaterialID:    material.ID,
		QuantityGrams: in.QuantityGrams,
		Reason:        strings.TrimSpace(in.Reason),
		Description:   strings.TrimSpace(in.Description),
		OrderID:       in.OrderID,
		Cost:          kg.Mul(material.UnitCost),
		Timestamp:     l.now(),
	}
	materials[idx].WeightOnHand = decimal.Max(decimal.Zero, material.WeightOnHand.Sub(kg))

	if err := l.repo.SaveLedger(ctx, append(events, event), materials); err != nil {
		return models.ConsumptionEvent{}, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("event_id", event.ID).
		Int64("material_id", material.ID).
		Str("grams", in.QuantityGrams.String()).
		Str("remaining_kg", materials[idx].WeightOnHand.String()).
		Msg("consumption recorded")
	return event, nil
}

// CheckAvailability reports whether quantityGrams could be debited right now,
// without writing anything.
func (l *Ledger) CheckAvailability(ctx context.Context, materialID int64, quantityGrams decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _, err := checkStock(l.repo.Materials(ctx), materialID, quantityGrams)
	return err
}

func checkStock(materials []models.Material, materialID int64, grams decimal.Decimal) (int, decimal.Decimal, error) {
	idx := slices.IndexFunc(materials, func(m models.Material) bool { return m.ID == materialID })
	if idx < 0 {
		return -1, decimal.Zero, &apperror.MaterialNotFoundError{ID: materialID}
	}
	kg := money.GramsToKg(grams)
	if kg.GreaterThan(materials[idx].WeightOnHand) {
		return -1, decimal.Zero, &apperror.InsufficientStockError{
			MaterialID:  materialID,
			AvailableKg: materials[idx].WeightOnHand,
			RequestedKg: kg,
		}
	}
	return idx, kg, nil
}
