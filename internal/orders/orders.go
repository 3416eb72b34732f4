// Package orders manages customer orders and turns new printing orders into
// material consumption.
package orders

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/ledger"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/pricing"
	"github.com/Simplici0/controlcenter/internal/store"
)

type Manager struct {
	repo   *store.Repository
	ledger *ledger.Ledger
	now    func() time.Time
	mu     sync.Mutex
}

func NewManager(repo *store.Repository, l *ledger.Ledger) *Manager {
	return &Manager{repo: repo, ledger: l, now: time.Now}
}

// Input carries the editable fields of an order.
type Input struct {
	Customer    string             `json:"customer" validate:"required,max=120"`
	Description string             `json:"description" validate:"max=500"`
	MaterialID  *int64             `json:"materialId"`
	WeightGrams decimal.Decimal    `json:"weightGrams" validate:"gte=0"`
	Price       decimal.Decimal    `json:"price" validate:"gte=0"`
	Status      models.OrderStatus `json:"status"`
}

func (in Input) apply(o *models.Order) error {
	fields := map[string]string{}
	customer := strings.TrimSpace(in.Customer)
	if customer == "" {
		fields["customer"] = "required"
	}
	if in.WeightGrams.IsNegative() {
		fields["weightGrams"] = "must be greater than or equal to 0"
	}
	if in.Price.IsNegative() {
		fields["price"] = "must be greater than or equal to 0"
	}
	status := in.Status
	if status == "" {
		status = models.OrderPending
	}
	if !status.Valid() {
		fields["status"] = "unknown status"
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields)
	}

	o.Customer = customer
	o.Description = strings.TrimSpace(in.Description)
	o.MaterialID = in.MaterialID
	o.WeightGrams = in.WeightGrams
	o.Price = in.Price
	o.Status = status
	return nil
}

// View is an order with the label of its material resolved at read time.
type View struct {
	models.Order
	MaterialLabel string `json:"materialLabel,omitempty"`
}

func viewOf(o models.Order, materials []models.Material) View {
	v := View{Order: o}
	if o.MaterialID != nil {
		v.MaterialLabel = ledger.LabelFor(materials, *o.MaterialID)
	}
	return v
}

// List returns all orders, newest first.
func (m *Manager) List(ctx context.Context) []View {
	orders := m.repo.Orders(ctx)
	materials := m.repo.Materials(ctx)
	slices.SortStableFunc(orders, func(a, b models.Order) int { return b.Date.Compare(a.Date) })

	out := make([]View, 0, len(orders))
	for _, o := range orders {
		out = append(out, viewOf(o, materials))
	}
	return out
}

func (m *Manager) Find(ctx context.Context, id int64) (View, error) {
	for _, o := range m.repo.Orders(ctx) {
		if o.ID == id {
			return viewOf(o, m.repo.Materials(ctx)), nil
		}
	}
	return View{}, notFound(id)
}

func (m *Manager) insert(ctx context.Context, o models.Order) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.repo.OrdersForUpdate(ctx)
	if err != nil {
		return models.Order{}, err
	}
	o.ID = models.NextID(orders, func(o models.Order) int64 { return o.ID })
	o.Date = m.now()
	if err := m.repo.SaveOrders(ctx, append(orders, o)); err != nil {
		return models.Order{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("order_id", o.ID).Str("status", string(o.Status)).Msg("order created")
	return o, nil
}

// Update edits an existing order. Status changes on existing orders never
// debit stock.
func (m *Manager) Update(ctx context.Context, id int64, in Input) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.repo.OrdersForUpdate(ctx)
	if err != nil {
		return View{}, err
	}
	idx := slices.IndexFunc(orders, func(o models.Order) bool { return o.ID == id })
	if idx < 0 {
		return View{}, notFound(id)
	}
	o := orders[idx]
	if err := in.apply(&o); err != nil {
		return View{}, err
	}
	orders[idx] = o
	if err := m.repo.SaveOrders(ctx, orders); err != nil {
		return View{}, err
	}
	return viewOf(o, m.repo.Materials(ctx)), nil
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.repo.OrdersForUpdate(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(orders, func(o models.Order) bool { return o.ID == id })
	if idx < 0 {
		return notFound(id)
	}
	if err := m.repo.SaveOrders(ctx, slices.Delete(orders, idx, idx+1)); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Int64("order_id", id).Msg("order deleted")
	return nil
}

// PromoteCalculation creates a pending order from a calculation, priced at
// the rounded final price.
func (m *Manager) PromoteCalculation(ctx context.Context, res pricing.Result, customer string) (View, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return View{}, apperror.Missing("customer")
	}

	materialID := res.MaterialID
	o, err := m.insert(ctx, models.Order{
		Customer:    customer,
		Description: res.Summary(),
		MaterialID:  &materialID,
		WeightGrams: res.Breakdown.EffectiveWeightGrams,
		Price:       res.Totals.FinalPrice.Round(0),
		Status:      models.OrderPending,
	})
	if err != nil {
		return View{}, err
	}
	return viewOf(o, m.repo.Materials(ctx)), nil
}

func notFound(id int64) error {
	return &apperror.NotFoundError{Resource: "order", ID: strconv.FormatInt(id, 10)}
}
