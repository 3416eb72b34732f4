package ledger

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
)

// StockStatus classifies a material by the weight it has left.
type StockStatus string

const (
	StockDepleted StockStatus = "Depleted"
	StockLow      StockStatus = "Low"
	StockMedium   StockStatus = "Medium"
	StockHigh     StockStatus = "High"
)

var (
	lowThresholdKg    = decimal.RequireFromString("0.2")
	mediumThresholdKg = decimal.RequireFromString("0.5")
)

// LowStockThresholdKg is the weight under which a material counts as low
// stock in summaries.
var LowStockThresholdKg = mediumThresholdKg

// Status classifies m: 0 kg is Depleted, under 0.2 kg Low, under 0.5 kg Medium.
func Status(m models.Material) StockStatus {
	switch {
	case m.WeightOnHand.Sign() <= 0:
		return StockDepleted
	case m.WeightOnHand.LessThan(lowThresholdKg):
		return StockLow
	case m.WeightOnHand.LessThan(mediumThresholdKg):
		return StockMedium
	default:
		return StockHigh
	}
}

// MaterialView is a material with its read-time derived fields.
type MaterialView struct {
	models.Material
	Label          string          `json:"label"`
	Status         StockStatus     `json:"status"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
}

func viewOf(m models.Material) MaterialView {
	return MaterialView{
		Material:       m,
		Label:          m.Label(),
		Status:         Status(m),
		InventoryValue: m.WeightOnHand.Mul(m.UnitCost),
	}
}

// MaterialInput carries the editable fields of a material. Editing the
// weight is how stock is replenished.
type MaterialInput struct {
	Type         string          `json:"type"`
	Color        string          `json:"color"`
	WeightOnHand decimal.Decimal `json:"weightOnHand" validate:"gte=0"`
	UnitCost     decimal.Decimal `json:"unitCost" validate:"gte=0"`
}

func (in MaterialInput) apply(m *models.Material) error {
	fields := map[string]string{}
	if in.WeightOnHand.IsNegative() {
		fields["weightOnHand"] = "must be greater than or equal to 0"
	}
	if in.UnitCost.IsNegative() {
		fields["unitCost"] = "must be greater than or equal to 0"
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields)
	}

	m.Type = strings.TrimSpace(in.Type)
	if m.Type == "" {
		m.Type = models.DefaultMaterialType
	}
	m.Color = strings.TrimSpace(in.Color)
	if m.Color == "" {
		m.Color = models.DefaultMaterialColor
	}
	m.WeightOnHand = in.WeightOnHand
	m.UnitCost = in.UnitCost
	return nil
}

// Materials lists every material in storage order.
func (l *Ledger) Materials(ctx context.Context) []MaterialView {
	materials := l.repo.Materials(ctx)
	out := make([]MaterialView, 0, len(materials))
	for _, m := range materials {
		out = append(out, viewOf(m))
	}
	return out
}

// FindMaterial returns the material with id or a *apperror.MaterialNotFoundError.
func (l *Ledger) FindMaterial(ctx context.Context, id int64) (models.Material, error) {
	for _, m := range l.repo.Materials(ctx) {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Material{}, &apperror.MaterialNotFoundError{ID: id}
}

func (l *Ledger) CreateMaterial(ctx context.Context, in MaterialInput) (MaterialView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	materials, err := l.repo.MaterialsForUpdate(ctx)
	if err != nil {
		return MaterialView{}, err
	}
	m := models.Material{ID: models.NextID(materials, func(m models.Material) int64 { return m.ID })}
	if err := in.apply(&m); err != nil {
		return MaterialView{}, err
	}
	if err := l.repo.SaveMaterials(ctx, append(materials, m)); err != nil {
		return MaterialView{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("material_id", m.ID).Str("label", m.Label()).Msg("material created")
	return viewOf(m), nil
}

func (l *Ledger) UpdateMaterial(ctx context.Context, id int64, in MaterialInput) (MaterialView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	materials, err := l.repo.MaterialsForUpdate(ctx)
	if err != nil {
		return MaterialView{}, err
	}
	idx := slices.IndexFunc(materials, func(m models.Material) bool { return m.ID == id })
	if idx < 0 {
		return MaterialView{}, &apperror.MaterialNotFoundError{ID: id}
	}
	m := materials[idx]
	if err := in.apply(&m); err != nil {
		return MaterialView{}, err
	}
	materials[idx] = m
	if err := l.repo.SaveMaterials(ctx, materials); err != nil {
		return MaterialView{}, err
	}
	return viewOf(m), nil
}

// DeleteMaterial removes a material. Past consumption events keep their
// material id and are listed with a placeholder label afterwards.
func (l *Ledger) DeleteMaterial(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	materials, err := l.repo.MaterialsForUpdate(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(materials, func(m models.Material) bool { return m.ID == id })
	if idx < 0 {
		return &apperror.NotFoundError{Resource: "material", ID: strconv.FormatInt(id, 10)}
	}
	if err := l.repo.SaveMaterials(ctx, slices.Delete(materials, idx, idx+1)); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Int64("material_id", id).Msg("material deleted")
	return nil
}

// LabelFor returns the display label of materialID among materials, or the
// deleted-material placeholder.
func LabelFor(materials []models.Material, materialID int64) string {
	for _, m := range materials {
		if m.ID == materialID {
			return m.Label()
		}
	}
	return models.DeletedMaterialLabel
}
