// Package billing issues invoices and quotes and renders invoices for print.
package billing

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/money"
	"github.com/Simplici0/controlcenter/internal/orders"
	"github.com/Simplici0/controlcenter/internal/store"
)

// SettingsSource supplies the business configuration.
type SettingsSource interface {
	Get(ctx context.Context) models.Settings
}

// OrderBook is the part of the order manager billing relies on.
type OrderBook interface {
	Find(ctx context.Context, id int64) (orders.View, error)
	Create(ctx context.Context, in orders.Input, notifier orders.Notifier) (orders.Created, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo     *store.Repository
	settings SettingsSource
	orders   OrderBook
	now      func() time.Time
	mu       sync.Mutex
}

func New(repo *store.Repository, settings SettingsSource, orders OrderBook) *Service {
	return &Service{repo: repo, settings: settings, orders: orders, now: time.Now}
}

// InvoiceInput describes a new invoice.
type InvoiceInput struct {
	Customer string            `json:"customer" validate:"required,max=120"`
	Phone    string            `json:"phone" validate:"max=40"`
	OrderID  *int64            `json:"orderId"`
	Items    []models.LineItem `json:"items" validate:"required,min=1,dive"`
}

func validateItems(items []models.LineItem, fields map[string]string) {
	if len(items) == 0 {
		fields["items"] = "required"
	}
	for i, it := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if strings.TrimSpace(it.Description) == "" {
			fields[prefix+"description"] = "required"
		}
		if it.Quantity < 1 {
			fields[prefix+"quantity"] = "must be at least 1"
		}
		if it.UnitPrice.IsNegative() {
			fields[prefix+"unitPrice"] = "must be greater than or equal to 0"
		}
	}
}

func itemsTotal(items []models.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount())
	}
	return total
}

// CreateInvoice numbers and stores an invoice. Tax is charged at the
// configured rate.
func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (models.Invoice, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Customer) == "" {
		fields["customer"] = "required"
	}
	validateItems(in.Items, fields)
	if len(fields) > 0 {
		return models.Invoice{}, apperror.NewValidation(fields)
	}

	taxPercent := s.settings.Get(ctx).TaxPercent

	s.mu.Lock()
	defer s.mu.Unlock()

	invoices, err := s.repo.InvoicesForUpdate(ctx)
	if err != nil {
		return models.Invoice{}, err
	}
	subtotal := itemsTotal(in.Items)
	tax := money.Percent(subtotal, taxPercent)
	inv := models.Invoice{
		ID:       models.NextID(invoices, func(i models.Invoice) int64 { return i.ID }),
		Number:   models.NextID(invoices, func(i models.Invoice) int64 { return i.Number }),
		OrderID:  in.OrderID,
		Customer: strings.TrimSpace(in.Customer),
		Phone:    strings.TrimSpace(in.Phone),
		Items:    in.Items,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
		IssuedAt: s.now(),
	}
	if err := s.repo.SaveInvoices(ctx, append(invoices, inv)); err != nil {
		return models.Invoice{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("invoice", inv.Number).Str("total", inv.Total.StringFixed(2)).Msg("invoice issued")
	return inv, nil
}

// InvoiceOrder bills an order as a single line at its price.
func (s *Service) InvoiceOrder(ctx context.Context, orderID int64, phone string) (models.Invoice, error) {
	o, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return models.Invoice{}, err
	}

	description := o.Description
	if description == "" {
		description = "Pedido #" + strconv.FormatInt(o.ID, 10)
	}
	return s.CreateInvoice(ctx, InvoiceInput{
		Customer: o.Customer,
		Phone:    phone,
		OrderID:  &o.ID,
		Items:    []models.LineItem{{Description: description, Quantity: 1, UnitPrice: o.Price}},
	})
}

// Invoices lists invoices, highest number first.
func (s *Service) Invoices(ctx context.Context) []models.Invoice {
	invoices := s.repo.Invoices(ctx)
	slices.SortFunc(invoices, func(a, b models.Invoice) int { return cmp.Compare(b.Number, a.Number) })
	return invoices
}

func (s *Service) Invoice(ctx context.Context, id int64) (models.Invoice, error) {
	for _, inv := range s.repo.Invoices(ctx) {
		if inv.ID == id {
			return inv, nil
		}
	}
	return models.Invoice{}, &apperror.NotFoundError{Resource: "invoice", ID: strconv.FormatInt(id, 10)}
}
