// Package settings owns the business configuration singleton.
package settings

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/store"
)

type Service struct {
	repo *store.Repository
}

func New(repo *store.Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored settings with defaults filled in for anything unset.
func (s *Service) Get(ctx context.Context) models.Settings {
	stored, ok := s.repo.Settings(ctx)
	if !ok {
		return models.DefaultSettings()
	}
	return withDefaults(stored)
}

// Input carries the editable settings. Zero amounts and a blank business name
// fall back to the defaults.
type Input struct {
	BusinessName         string          `json:"businessName" validate:"max=120"`
	Phone                string          `json:"phone" validate:"max=40"`
	Address              string          `json:"address" validate:"max=240"`
	LaborRatePerHour     decimal.Decimal `json:"laborRatePerHour" validate:"gte=0"`
	DefaultMarginPercent decimal.Decimal `json:"defaultMarginPercent" validate:"gte=0"`
	TaxPercent           decimal.Decimal `json:"taxPercent" validate:"gte=0,lte=100"`
}

func (s *Service) Save(ctx context.Context, in Input) (models.Settings, error) {
	fields := map[string]string{}
	for name, v := range map[string]decimal.Decimal{
		"laborRatePerHour":     in.LaborRatePerHour,
		"defaultMarginPercent": in.DefaultMarginPercent,
		"taxPercent":           in.TaxPercent,
	} {
		if v.IsNegative() {
			fields[name] = "must be greater than or equal to 0"
		}
	}
	if len(fields) > 0 {
		return models.Settings{}, apperror.NewValidation(fields)
	}

	out := withDefaults(models.Settings{
		BusinessName:         strings.TrimSpace(in.BusinessName),
		Phone:                strings.TrimSpace(in.Phone),
		Address:              strings.TrimSpace(in.Address),
		LaborRatePerHour:     in.LaborRatePerHour,
		DefaultMarginPercent: in.DefaultMarginPercent,
		TaxPercent:           in.TaxPercent,
	})
	if err := s.repo.SaveSettings(ctx, out); err != nil {
		return models.Settings{}, err
	}

	zerolog.Ctx(ctx).Info().Str("business", out.BusinessName).Msg("settings saved")
	return out, nil
}

func withDefaults(s models.Settings) models.Settings {
	def := models.DefaultSettings()
	if s.BusinessName == "" {
		s.BusinessName = def.BusinessName
	}
	if s.LaborRatePerHour.Sign() <= 0 {
		s.LaborRatePerHour = def.LaborRatePerHour
	}
	if s.DefaultMarginPercent.Sign() <= 0 {
		s.DefaultMarginPercent = def.DefaultMarginPercent
	}
	if s.TaxPercent.Sign() <= 0 {
		s.TaxPercent = def.TaxPercent
	}
	return s
}
