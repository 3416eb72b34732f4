// Package dashboard computes the figures shown on the overview page.
package dashboard

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/ledger"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/store"
)

type Stats struct {
	TotalProducts     int             `json:"totalProducts"`
	TotalMaterials    int             `json:"totalMaterials"`
	ActiveOrders      int             `json:"activeOrders"`
	EstimatedEarnings decimal.Decimal `json:"estimatedEarnings"`
	InventoryValue    decimal.Decimal `json:"inventoryValue"`
	LowStockMaterials int             `json:"lowStockMaterials"`
	Consumption       ledger.Summary  `json:"consumption"`
}

type Service struct {
	repo   *store.Repository
	ledger *ledger.Ledger
}

func New(repo *store.Repository, l *ledger.Ledger) *Service {
	return &Service{repo: repo, ledger: l}
}

// Stats counts orders that are neither delivered nor cancelled as active.
// Estimated earnings add delivered order prices to the value of products in stock.
func (s *Service) Stats(ctx context.Context) Stats {
	st := Stats{EstimatedEarnings: decimal.Zero, InventoryValue: decimal.Zero}

	products := s.repo.Products(ctx)
	st.TotalProducts = len(products)
	for _, p := range products {
		st.EstimatedEarnings = st.EstimatedEarnings.Add(p.Price.Mul(decimal.NewFromInt(p.Stock)))
	}

	for _, o := range s.repo.Orders(ctx) {
		switch o.Status {
		case models.OrderDelivered:
			st.EstimatedEarnings = st.EstimatedEarnings.Add(o.Price)
		case models.OrderCancelled:
		default:
			st.ActiveOrders++
		}
	}

	materials := s.ledger.Materials(ctx)
	st.TotalMaterials = len(materials)
	for _, m := range materials {
		st.InventoryValue = st.InventoryValue.Add(m.InventoryValue)
	}

	st.Consumption = s.ledger.MonthlySummary(ctx)
	st.LowStockMaterials = st.Consumption.LowStockMaterials
	return st
}
