package ledger

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/money"
)

// Filter narrows ListConsumption. Nil fields do not filter.
type Filter struct {
	MaterialID *int64
	WindowDays *int
}

// ConsumptionView is an event with the labels a listing shows next to it.
type ConsumptionView struct {
	models.ConsumptionEvent
	MaterialLabel string `json:"materialLabel"`
	Customer      string `json:"customer,omitempty"`
}

// ListConsumption returns the matching events, newest first. Events with the
// same timestamp keep their recording order. The sequence is computed over a
// snapshot taken at call time and may be ranged over any number of times.
func (l *Ledger) ListConsumption(ctx context.Context, f Filter) iter.Seq[ConsumptionView] {
	events := l.repo.Consumption(ctx)
	materials := l.repo.Materials(ctx)
	orders := l.repo.Orders(ctx)

	var since time.Time
	if f.WindowDays != nil {
		since = l.now().AddDate(0, 0, -*f.WindowDays)
	}

	slices.SortStableFunc(events, func(a, b models.ConsumptionEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	return func(yield func(ConsumptionView) bool) {
		for _, e := range events {
			if f.MaterialID != nil && e.MaterialID != *f.MaterialID {
				continue
			}
			if f.WindowDays != nil && e.Timestamp.Before(since) {
				continue
			}
			v := ConsumptionView{ConsumptionEvent: e, MaterialLabel: LabelFor(materials, e.MaterialID)}
			if e.OrderID != nil {
				if i := slices.IndexFunc(orders, func(o models.Order) bool { return o.ID == *e.OrderID }); i >= 0 {
					v.Customer = orders[i].Customer
				}
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Summary aggregates the consumption of the current calendar month.
type Summary struct {
	MonthStart        time.Time       `json:"monthStart"`
	TotalKg           decimal.Decimal `json:"totalKg"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	EventCount        int             `json:"eventCount"`
	LowStockMaterials int             `json:"lowStockMaterials"`
}

// MonthlySummary sums the events recorded since day 1 of the current month
// (local time) and counts materials under LowStockThresholdKg.
func (l *Ledger) MonthlySummary(ctx context.Context) Summary {
	now := l.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	s := Summary{MonthStart: start, TotalKg: decimal.Zero, TotalCost: decimal.Zero}
	for _, e := range l.repo.Consumption(ctx) {
		if e.Timestamp.Before(start) || !e.Timestamp.Before(end) {
			continue
		}
		s.TotalKg = s.TotalKg.Add(money.GramsToKg(e.QuantityGrams))
		s.TotalCost = s.TotalCost.Add(e.Cost)
		s.EventCount++
	}
	for _, m := range l.repo.Materials(ctx) {
		if m.WeightOnHand.LessThan(LowStockThresholdKg) {
			s.LowStockMaterials++
		}
	}
	return s
}
