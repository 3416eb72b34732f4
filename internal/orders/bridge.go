package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/ledger"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/money"
)

// PrintingReason is the consumption reason used for automatic debits.
const PrintingReason = "Printing"

// Notifier is asked before an automatic debit and told when one could not
// be applied.
type Notifier interface {
	Confirm(ctx context.Context, message string) bool
	Warn(ctx context.Context, message string)
}

// Proposal is an automatic debit waiting for a decision.
type Proposal struct {
	OrderID       int64           `json:"orderId"`
	MaterialID    int64           `json:"materialId"`
	QuantityGrams decimal.Decimal `json:"quantityGrams"`
	Description   string          `json:"description"`
	Message       string          `json:"message"`
}

// Propose returns the automatic debit a new order qualifies for: status
// Printing, a material and a positive weight.
func (m *Manager) Propose(ctx context.Context, o models.Order) (Proposal, bool) {
	if o.Status != models.OrderPrinting || o.MaterialID == nil || !o.WeightGrams.IsPositive() {
		return Proposal{}, false
	}
	label := ledger.LabelFor(m.repo.Materials(ctx), *o.MaterialID)
	return Proposal{
		OrderID:       o.ID,
		MaterialID:    *o.MaterialID,
		QuantityGrams: o.WeightGrams,
		Description:   "Consumo automático para pedido de " + o.Customer,
		Message:       fmt.Sprintf("¿Registrar automáticamente el consumo de %sg de %s para este pedido?", o.WeightGrams.String(), label),
	}, true
}

// Commit applies an accepted proposal. It goes through the ledger, so stock
// is checked again at write time.
func (m *Manager) Commit(ctx context.Context, p Proposal) (models.ConsumptionEvent, error) {
	orderID := p.OrderID
	return m.ledger.RecordConsumption(ctx, ledger.ConsumptionInput{
		MaterialID:    p.MaterialID,
		QuantityGrams: p.QuantityGrams,
		Reason:        PrintingReason,
		Description:   p.Description,
		OrderID:       &orderID,
	})
}

// Created is the outcome of Create.
type Created struct {
	Order       View                     `json:"order"`
	Consumption *models.ConsumptionEvent `json:"consumption,omitempty"`
}

// Create saves a new order and, when it qualifies and notifier confirms,
// debits its material. A debit that cannot be applied is reported through
// notifier.Warn; the order is kept either way.
func (m *Manager) Create(ctx context.Context, in Input, notifier Notifier) (Created, error) {
	var o models.Order
	if err := in.apply(&o); err != nil {
		return Created{}, err
	}
	o, err := m.insert(ctx, o)
	if err != nil {
		return Created{}, err
	}
	out := Created{Order: viewOf(o, m.repo.Materials(ctx))}

	p, ok := m.Propose(ctx, o)
	if !ok || !notifier.Confirm(ctx, p.Message) {
		return out, nil
	}

	event, err := m.Commit(ctx, p)
	var stockErr *apperror.InsufficientStockError
	var missingErr *apperror.MaterialNotFoundError
	switch {
	case err == nil:
		out.Consumption = &event
	case errors.As(err, &stockErr):
		notifier.Warn(ctx, fmt.Sprintf(
			"Advertencia: No hay suficiente material (%s disponibles, %s requeridos). El consumo debe registrarse manualmente.",
			money.FormatKg(stockErr.AvailableKg), money.FormatKg(stockErr.RequestedKg)))
	case errors.As(err, &missingErr):
		notifier.Warn(ctx, "Advertencia: el material del pedido ya no existe. El consumo no se registró.")
	default:
		// The order is already saved, so failing here would invite a duplicate on retry.
		zerolog.Ctx(ctx).Error().Err(err).Int64("order_id", o.ID).Msg("automatic consumption failed")
		notifier.Warn(ctx, "Advertencia: no se pudo registrar el consumo automático. Debe registrarse manualmente.")
	}
	return out, nil
}
