// Package equipment keeps the shop's machines and their maintenance log.
package equipment

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

// UnknownEquipment labels a maintenance whose equipment was removed.
const UnknownEquipment = "N/A"

type Service struct {
	repo *store.Repository
	now  func() time.Time
	mu   sync.Mutex
}

func New(repo *store.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Input carries the editable fields of a machine. Status defaults to
// Operational.
type Input struct {
	Name            string                 `json:"name" validate:"required,max=120"`
	Type            string                 `json:"type" validate:"max=60"`
	Model           string                 `json:"model" validate:"max=120"`
	Status          models.EquipmentStatus `json:"status"`
	Cost            decimal.Decimal        `json:"cost" validate:"gte=0"`
	NextMaintenance *time.Time             `json:"nextMaintenance"`
}

func (in Input) apply(e *models.Equipment) error {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields["name"] = "required"
	}
	if in.Cost.IsNegative() {
		fields["cost"] = "must be greater than or equal to 0"
	}
	status := in.Status
	if status == "" {
		status = models.EquipmentOperational
	}
	if !status.Valid() {
		fields["status"] = "must be one of Operational, Maintenance, OutOfService"
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields)
	}

	e.Name = name
	e.Type = strings.TrimSpace(in.Type)
	e.Model = strings.TrimSpace(in.Model)
	e.Status = status
	e.Cost = in.Cost
	e.NextMaintenance = in.NextMaintenance
	return nil
}

// List returns all equipment sorted by name.
func (s *Service) List(ctx context.Context) []models.Equipment {
	equipment := s.repo.Equipment(ctx)
	slices.SortStableFunc(equipment, func(a, b models.Equipment) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return equipment
}

// Due returns the equipment whose next maintenance date has been reached.
func (s *Service) Due(ctx context.Context) []models.Equipment {
	now := s.now()
	var due []models.Equipment
	for _, e := range s.List(ctx) {
		if e.Status != models.EquipmentOutOfService && e.NextMaintenance != nil && !e.NextMaintenance.After(now) {
			due = append(due, e)
		}
	}
	return due
}

func (s *Service) Create(ctx context.Context, in Input) (models.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	equipment, err := s.repo.EquipmentForUpdate(ctx)
	if err != nil {
		return models.Equipment{}, err
	}
	e := models.Equipment{ID: models.NextID(equipment, func(e models.Equipment) int64 { return e.ID })}
	if err := in.apply(&e); err != nil {
		return models.Equipment{}, err
	}
	if err := s.repo.SaveEquipment(ctx, append(equipment, e)); err != nil {
		return models.Equipment{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("equipment_id", e.ID).Str("name", e.Name).Msg("equipment created")
	return e, nil
}

// Update edits a machine. The last maintenance date is kept; it only moves
// when a maintenance is recorded.
func (s *Service) Update(ctx context.Context, id int64, in Input) (models.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	equipment, err := s.repo.EquipmentForUpdate(ctx)
	if err != nil {
		return models.Equipment{}, err
	}
	idx := slices.IndexFunc(equipment, func(e models.Equipment) bool { return e.ID == id })
	if idx < 0 {
		return models.Equipment{}, notFound(id)
	}
	e := equipment[idx]
	if err := in.apply(&e); err != nil {
		return models.Equipment{}, err
	}
	equipment[idx] = e
	if err := s.repo.SaveEquipment(ctx, equipment); err != nil {
		return models.Equipment{}, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	equipment, err := s.repo.EquipmentForUpdate(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(equipment, func(e models.Equipment) bool { return e.ID == id })
	if idx < 0 {
		return notFound(id)
	}
	return s.repo.SaveEquipment(ctx, slices.Delete(equipment, idx, idx+1))
}

// MaintenanceInput records a service. Date defaults to now; NextDate, when
// set, becomes the equipment's next maintenance.
type MaintenanceInput struct {
	EquipmentID int64           `json:"equipmentId" validate:"required"`
	Type        string          `json:"type" validate:"required,max=60"`
	Description string          `json:"description" validate:"max=500"`
	Cost        decimal.Decimal `json:"cost" validate:"gte=0"`
	Technician  string          `json:"technician" validate:"max=120"`
	Date        *time.Time      `json:"date"`
	NextDate    *time.Time      `json:"nextDate"`
}

// MaintenanceView is a maintenance with its equipment name resolved at read time.
type MaintenanceView struct {
	models.Maintenance
	EquipmentName string `json:"equipmentName"`
}

// Maintenances lists the log, newest first.
func (s *Service) Maintenances(ctx context.Context) []MaintenanceView {
	log := s.repo.Maintenances(ctx)
	equipment := s.repo.Equipment(ctx)
	slices.SortStableFunc(log, func(a, b models.Maintenance) int { return b.Date.Compare(a.Date) })

	out := make([]MaintenanceView, 0, len(log))
	for _, m := range log {
		out = append(out, MaintenanceView{Maintenance: m, EquipmentName: equipmentName(equipment, m.EquipmentID)})
	}
	return out
}

func equipmentName(equipment []models.Equipment, id int64) string {
	if i := slices.IndexFunc(equipment, func(e models.Equipment) bool { return e.ID == id }); i >= 0 {
		return equipment[i].Name
	}
	return UnknownEquipment
}

// RecordMaintenance appends to the log and moves the equipment's last
// maintenance date forward. Both are written together.
func (s *Service) RecordMaintenance(ctx context.Context, in MaintenanceInput) (MaintenanceView, error) {
	fields := map[string]string{}
	kind := strings.TrimSpace(in.Type)
	if kind == "" {
		fields["type"] = "required"
	}
	if in.Cost.IsNegative() {
		fields["cost"] = "must be greater than or equal to 0"
	}
	if len(fields) > 0 {
		return MaintenanceView{}, apperror.NewValidation(fields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	equipment, err := s.repo.EquipmentForUpdate(ctx)
	if err != nil {
		return MaintenanceView{}, err
	}
	idx := slices.IndexFunc(equipment, func(e models.Equipment) bool { return e.ID == in.EquipmentID })
	if idx < 0 {
		return MaintenanceView{}, notFound(in.EquipmentID)
	}
	log, err := s.repo.MaintenancesForUpdate(ctx)
	if err != nil {
		return MaintenanceView{}, err
	}

	date := s.now()
	if in.Date != nil {
		date = *in.Date
	}
	m := models.Maintenance{
		ID:          models.NextID(log, func(m models.Maintenance) int64 { return m.ID }),
		EquipmentID: in.EquipmentID,
		Type:        kind,
		Description: strings.TrimSpace(in.Description),
		Cost:        in.Cost,
		Technician:  strings.TrimSpace(in.Technician),
		Date:        date,
	}

	e := &equipment[idx]
	if e.LastMaintenance == nil || date.After(*e.LastMaintenance) {
		e.LastMaintenance = &date
	}
	if in.NextDate != nil {
		e.NextMaintenance = in.NextDate
	}
	if err := s.repo.SaveMaintenanceLog(ctx, append(log, m), equipment); err != nil {
		return MaintenanceView{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("maintenance_id", m.ID).Int64("equipment_id", e.ID).Str("type", m.Type).Msg("maintenance recorded")
	return MaintenanceView{Maintenance: m, EquipmentName: e.Name}, nil
}

func notFound(id int64) error {
	return &apperror.NotFoundError{Resource: "equipment", ID: strconv.FormatInt(id, 10)}
}
