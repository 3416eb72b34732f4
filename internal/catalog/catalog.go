// Package catalog manages the sellable products.
package catalog

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/pricing"
	"github.com/Simplici0/controlcenter/internal/store"
)

// CustomCategory is the category given to products promoted from a calculation.
const CustomCategory = "Personalizado"

type Catalog struct {
	repo *store.Repository
	mu   sync.Mutex
}

func New(repo *store.Repository) *Catalog {
	return &Catalog{repo: repo}
}

type Input struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Description string          `json:"description" validate:"max=500"`
	Category    string          `json:"category" validate:"max=60"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int64           `json:"stock" validate:"gte=0"`
}

func (in Input) apply(p *models.Product) error {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields["name"] = "required"
	}
	if in.Price.IsNegative() {
		fields["price"] = "must be greater than or equal to 0"
	}
	if in.Stock < 0 {
		fields["stock"] = "must be greater than or equal to 0"
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields)
	}

	p.Name = name
	p.Description = strings.TrimSpace(in.Description)
	p.Category = strings.TrimSpace(in.Category)
	p.Price = in.Price
	p.Stock = in.Stock
	return nil
}

func (c *Catalog) List(ctx context.Context) []models.Product {
	return c.repo.Products(ctx)
}

func (c *Catalog) Create(ctx context.Context, in Input) (models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	products, err := c.repo.ProductsForUpdate(ctx)
	if err != nil {
		return models.Product{}, err
	}
	p := models.Product{ID: models.NextID(products, func(p models.Product) int64 { return p.ID })}
	if err := in.apply(&p); err != nil {
		return models.Product{}, err
	}
	if err := c.repo.SaveProducts(ctx, append(products, p)); err != nil {
		return models.Product{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, nil
}

func (c *Catalog) Update(ctx context.Context, id int64, in Input) (models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	products, err := c.repo.ProductsForUpdate(ctx)
	if err != nil {
		return models.Product{}, err
	}
	idx := slices.IndexFunc(products, func(p models.Product) bool { return p.ID == id })
	if idx < 0 {
		return models.Product{}, notFound(id)
	}
	p := products[idx]
	if err := in.apply(&p); err != nil {
		return models.Product{}, err
	}
	products[idx] = p
	if err := c.repo.SaveProducts(ctx, products); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	products, err := c.repo.ProductsForUpdate(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(products, func(p models.Product) bool { return p.ID == id })
	if idx < 0 {
		return notFound(id)
	}
	return c.repo.SaveProducts(ctx, slices.Delete(products, idx, idx+1))
}

// PromoteCalculation adds a one-off product priced at the rounded final price
// of res.
func (c *Catalog) PromoteCalculation(ctx context.Context, res pricing.Result) (models.Product, error) {
	return c.Create(ctx, Input{
		Name:        "Pieza " + res.MaterialLabel,
		Description: res.Summary(),
		Category:    CustomCategory,
		Price:       res.Totals.FinalPrice.Round(0),
		Stock:       1,
	})
}

func notFound(id int64) error {
	return &apperror.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
}
