// Package customers keeps the client directory. Order statistics are not
// stored: they are computed from the orders placed under a customer's name.
package customers

import (
	"cmp"
	"context"
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
	"github.com/Simplici0/controlcenter/internal/store"
)

type Directory struct {
	repo *store.Repository
	now  func() time.Time
	mu   sync.Mutex
}

func New(repo *store.Repository) *Directory {
	return &Directory{repo: repo, now: time.Now}
}

// Input carries the editable fields of a customer. Active defaults to true.
type Input struct {
	Name   string `json:"name" validate:"required,max=120"`
	Email  string `json:"email" validate:"omitempty,email,max=120"`
	Phone  string `json:"phone" validate:"max=40"`
	Notes  string `json:"notes" validate:"max=500"`
	Active *bool  `json:"active"`
}

func (in Input) apply(c *models.Customer) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperror.Missing("name")
	}
	c.Name = name
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Notes = strings.TrimSpace(in.Notes)
	c.Active = in.Active == nil || *in.Active
	return nil
}

// View is a customer with the statistics of their orders.
type View struct {
	models.Customer
	OrderCount int             `json:"orderCount"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	LastOrder  *time.Time      `json:"lastOrder,omitempty"`
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// viewOf derives the order statistics of c. Cancelled orders count as
// orders but not as spending.
func viewOf(c models.Customer, orders []models.Order) View {
	v := View{Customer: c, TotalSpent: decimal.Zero}
	for _, o := range orders {
		if !sameName(o.Customer, c.Name) {
			continue
		}
		v.OrderCount++
		if o.Status != models.OrderCancelled {
			v.TotalSpent = v.TotalSpent.Add(o.Price)
		}
		if v.LastOrder == nil || o.Date.After(*v.LastOrder) {
			date := o.Date
			v.LastOrder = &date
		}
	}
	return v
}

// List returns all customers sorted by name.
func (d *Directory) List(ctx context.Context) []View {
	customers := d.repo.Customers(ctx)
	orders := d.repo.Orders(ctx)
	slices.SortStableFunc(customers, func(a, b models.Customer) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	out := make([]View, 0, len(customers))
	for _, c := range customers {
		out = append(out, viewOf(c, orders))
	}
	return out
}

func (d *Directory) Find(ctx context.Context, id int64) (View, error) {
	customers := d.repo.Customers(ctx)
	idx := slices.IndexFunc(customers, func(c models.Customer) bool { return c.ID == id })
	if idx < 0 {
		return View{}, notFound(id)
	}
	return viewOf(customers[idx], d.repo.Orders(ctx)), nil
}

// Summary aggregates the directory.
type Summary struct {
	Total        int             `json:"total"`
	Active       int             `json:"active"`
	AverageSpent decimal.Decimal `json:"averageSpent"`
}

func (d *Directory) Summary(ctx context.Context) Summary {
	views := d.List(ctx)
	s := Summary{Total: len(views), AverageSpent: decimal.Zero}
	spent := decimal.Zero
	for _, v := range views {
		if v.Active {
			s.Active++
		}
		spent = spent.Add(v.TotalSpent)
	}
	if s.Total > 0 {
		s.AverageSpent = money.Round(spent.Div(decimal.NewFromInt(int64(s.Total))))
	}
	return s
}

func (d *Directory) Create(ctx context.Context, in Input) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	customers, err := d.repo.CustomersForUpdate(ctx)
	if err != nil {
		return View{}, err
	}
	c := models.Customer{
		ID:           models.NextID(customers, func(c models.Customer) int64 { return c.ID }),
		RegisteredAt: d.now(),
	}
	if err := in.apply(&c); err != nil {
		return View{}, err
	}
	if err := checkUnique(customers, c); err != nil {
		return View{}, err
	}
	if err := d.repo.SaveCustomers(ctx, append(customers, c)); err != nil {
		return View{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("customer_id", c.ID).Str("name", c.Name).Msg("customer created")
	return viewOf(c, d.repo.Orders(ctx)), nil
}

func (d *Directory) Update(ctx context.Context, id int64, in Input) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	customers, err := d.repo.CustomersForUpdate(ctx)
	if err != nil {
		return View{}, err
	}
	idx := slices.IndexFunc(customers, func(c models.Customer) bool { return c.ID == id })
	if idx < 0 {
		return View{}, notFound(id)
	}
	c := customers[idx]
	if err := in.apply(&c); err != nil {
		return View{}, err
	}
	if err := checkUnique(customers, c); err != nil {
		return View{}, err
	}
	customers[idx] = c
	if err := d.repo.SaveCustomers(ctx, customers); err != nil {
		return View{}, err
	}
	return viewOf(c, d.repo.Orders(ctx)), nil
}

// Delete removes the customer record. Their orders are kept.
func (d *Directory) Delete(ctx context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	customers, err := d.repo.CustomersForUpdate(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(customers, func(c models.Customer) bool { return c.ID == id })
	if idx < 0 {
		return notFound(id)
	}
	return d.repo.SaveCustomers(ctx, slices.Delete(customers, idx, idx+1))
}

// checkUnique rejects a second customer with the same name, since orders are
// matched to customers by name.
func checkUnique(customers []models.Customer, c models.Customer) error {
	if slices.ContainsFunc(customers, func(o models.Customer) bool { return o.ID != c.ID && sameName(o.Name, c.Name) }) {
		return apperror.NewValidation(map[string]string{"name": "already exists"})
	}
	return nil
}

func notFound(id int64) error {
	return &apperror.NotFoundError{Resource: "customer", ID: strconv.FormatInt(id, 10)}
}
