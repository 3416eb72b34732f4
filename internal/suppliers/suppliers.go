// Package suppliers tracks suppliers and the purchases made from them.
package suppliers

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
	"github.com/Simplici0/controlcenter/internal/store"
)

// UnknownSupplier labels a purchase whose supplier was removed.
const UnknownSupplier = "N/A"

type Service struct {
	repo *store.Repository
	now  func() time.Time
	mu   sync.Mutex
}

func New(repo *store.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type Input struct {
	Name      string `json:"name" validate:"required,max=120"`
	Contact   string `json:"contact" validate:"max=200"`
	Specialty string `json:"specialty" validate:"max=120"`
}

func (in Input) apply(s *models.Supplier) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperror.Missing("name")
	}
	s.Name = name
	s.Contact = strings.TrimSpace(in.Contact)
	s.Specialty = strings.TrimSpace(in.Specialty)
	return nil
}

// View is a supplier with its purchase totals.
type View struct {
	models.Supplier
	PurchaseCount int             `json:"purchaseCount"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
}

func viewOf(s models.Supplier, purchases []models.Purchase) View {
	v := View{Supplier: s, TotalSpent: decimal.Zero}
	for _, p := range purchases {
		if p.SupplierID == s.ID {
			v.PurchaseCount++
			v.TotalSpent = v.TotalSpent.Add(p.Cost)
		}
	}
	return v
}

// List returns all suppliers sorted by name.
func (s *Service) List(ctx context.Context) []View {
	suppliers := s.repo.Suppliers(ctx)
	purchases := s.repo.Purchases(ctx)
	slices.SortStableFunc(suppliers, func(a, b models.Supplier) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	out := make([]View, 0, len(suppliers))
	for _, sup := range suppliers {
		out = append(out, viewOf(sup, purchases))
	}
	return out
}

func (s *Service) Create(ctx context.Context, in Input) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	suppliers, err := s.repo.SuppliersForUpdate(ctx)
	if err != nil {
		return View{}, err
	}
	sup := models.Supplier{
		ID:           models.NextID(suppliers, func(s models.Supplier) int64 { return s.ID }),
		RegisteredAt: s.now(),
	}
	if err := in.apply(&sup); err != nil {
		return View{}, err
	}
	if err := s.repo.SaveSuppliers(ctx, append(suppliers, sup)); err != nil {
		return View{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("supplier_id", sup.ID).Str("name", sup.Name).Msg("supplier created")
	return viewOf(sup, nil), nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	suppliers, err := s.repo.SuppliersForUpdate(ctx)
	if err != nil {
		return View{}, err
	}
	idx := slices.IndexFunc(suppliers, func(s models.Supplier) bool { return s.ID == id })
	if idx < 0 {
		return View{}, notFound(id)
	}
	sup := suppliers[idx]
	if err := in.apply(&sup); err != nil {
		return View{}, err
	}
	suppliers[idx] = sup
	if err := s.repo.SaveSuppliers(ctx, suppliers); err != nil {
		return View{}, err
	}
	return viewOf(sup, s.repo.Purchases(ctx)), nil
}

// Delete removes a supplier. Its purchases stay and are listed under
// UnknownSupplier.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	suppliers, err := s.repo.SuppliersForUpdate(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(suppliers, func(s models.Supplier) bool { return s.ID == id })
	if idx < 0 {
		return notFound(id)
	}
	return s.repo.SaveSuppliers(ctx, slices.Delete(suppliers, idx, idx+1))
}

// PurchaseInput records a buy. Date defaults to now.
type PurchaseInput struct {
	SupplierID  int64           `json:"supplierId" validate:"required"`
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int64           `json:"quantity" validate:"gte=1"`
	Cost        decimal.Decimal `json:"cost" validate:"gte=0"`
	Date        *time.Time      `json:"date"`
}

// PurchaseView is a purchase with its supplier name resolved at read time.
type PurchaseView struct {
	models.Purchase
	SupplierName string `json:"supplierName"`
}

// Purchases lists purchases, newest first.
func (s *Service) Purchases(ctx context.Context) []PurchaseView {
	purchases := s.repo.Purchases(ctx)
	suppliers := s.repo.Suppliers(ctx)
	slices.SortStableFunc(purchases, func(a, b models.Purchase) int { return b.Date.Compare(a.Date) })

	out := make([]PurchaseView, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, PurchaseView{Purchase: p, SupplierName: supplierName(suppliers, p.SupplierID)})
	}
	return out
}

func supplierName(suppliers []models.Supplier, id int64) string {
	if i := slices.IndexFunc(suppliers, func(s models.Supplier) bool { return s.ID == id }); i >= 0 {
		return suppliers[i].Name
	}
	return UnknownSupplier
}

// RecordPurchase appends a purchase for an existing supplier.
func (s *Service) RecordPurchase(ctx context.Context, in PurchaseInput) (PurchaseView, error) {
	fields := map[string]string{}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		fields["description"] = "required"
	}
	if in.Quantity < 1 {
		fields["quantity"] = "must be at least 1"
	}
	if in.Cost.IsNegative() {
		fields["cost"] = "must be greater than or equal to 0"
	}
	if len(fields) > 0 {
		return PurchaseView{}, apperror.NewValidation(fields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	suppliers := s.repo.Suppliers(ctx)
	if !slices.ContainsFunc(suppliers, func(sup models.Supplier) bool { return sup.ID == in.SupplierID }) {
		return PurchaseView{}, notFound(in.SupplierID)
	}
	purchases, err := s.repo.PurchasesForUpdate(ctx)
	if err != nil {
		return PurchaseView{}, err
	}
	date := s.now()
	if in.Date != nil {
		date = *in.Date
	}
	p := models.Purchase{
		ID:          models.NextID(purchases, func(p models.Purchase) int64 { return p.ID }),
		SupplierID:  in.SupplierID,
		Description: description,
		Quantity:    in.Quantity,
		Cost:        in.Cost,
		Date:        date,
	}
	if err := s.repo.SavePurchases(ctx, append(purchases, p)); err != nil {
		return PurchaseView{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("purchase_id", p.ID).Int64("supplier_id", p.SupplierID).Str("cost", p.Cost.String()).Msg("purchase recorded")
	return PurchaseView{Purchase: p, SupplierName: supplierName(suppliers, p.SupplierID)}, nil
}

func notFound(id int64) error {
	return &apperror.NotFoundError{Resource: "supplier", ID: strconv.FormatInt(id, 10)}
}
