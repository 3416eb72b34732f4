package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
)

// Repository gives typed access to the collections. Plain reads never fail: a
// missing or unreadable collection comes back empty and corrupt records are
// dropped. The ForUpdate reads, used before every write, report a read
// failure instead of an empty collection. Writes report a
// *apperror.PersistenceError.
type Repository struct {
	backend Backend
}

func NewRepository(backend Backend) *Repository {
	return &Repository{backend: backend}
}

var jsonNull = []byte("null")

// load is the lenient read used for display: every failure becomes an empty
// collection.
func load[T any](ctx context.Context, r *Repository, c Collection) []T {
	records, err := loadForUpdate[T](ctx, r, c)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("collection", string(c)).Msg("load collection failed, using empty collection")
		return []T{}
	}
	return records
}

// loadForUpdate is the read that feeds a write. A backend failure or a stored
// value that is not a JSON array is returned as a *apperror.PersistenceError,
// so the caller never overwrites a collection it could not read. Single
// corrupt records are still dropped.
func loadForUpdate[T any](ctx context.Context, r *Repository, c Collection) ([]T, error) {
	data, ok, err := r.backend.Get(ctx, string(c))
	if err != nil {
		return nil, &apperror.PersistenceError{Collection: string(c), Err: fmt.Errorf("read: %w", err)}
	}
	if !ok {
		return []T{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &apperror.PersistenceError{Collection: string(c), Err: fmt.Errorf("decode: %w", err)}
	}

	out := make([]T, 0, len(raw))
	for i, item := range raw {
		if bytes.Equal(bytes.TrimSpace(item), jsonNull) {
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("collection", string(c)).Int("index", i).Msg("skipping corrupt record")
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Written reports whether collection c was ever saved.
func (r *Repository) Written(ctx context.Context, c Collection) (bool, error) {
	_, ok, err := r.backend.Get(ctx, string(c))
	if err != nil {
		return false, &apperror.PersistenceError{Collection: string(c), Err: fmt.Errorf("read: %w", err)}
	}
	return ok, nil
}

func encode[T any](c Collection, records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, &apperror.PersistenceError{Collection: string(c), Err: fmt.Errorf("encode: %w", err)}
	}
	return data, nil
}

func (r *Repository) putMany(ctx context.Context, values map[string][]byte) error {
	if err := r.backend.PutMany(ctx, values); err != nil {
		name := strings.Join(slices.Sorted(maps.Keys(values)), "+")
		zerolog.Ctx(ctx).Error().Err(err).Str("collection", name).Msg("save collection failed")
		return &apperror.PersistenceError{Collection: name, Err: err}
	}
	return nil
}

func save[T any](ctx context.Context, r *Repository, c Collection, records []T) error {
	data, err := encode(c, records)
	if err != nil {
		return err
	}
	return r.putMany(ctx, map[string][]byte{string(c): data})
}

func (r *Repository) Materials(ctx context.Context) []models.Material {
	return load[models.Material](ctx, r, Materials)
}

func (r *Repository) MaterialsForUpdate(ctx context.Context) ([]models.Material, error) {
	return loadForUpdate[models.Material](ctx, r, Materials)
}

func (r *Repository) SaveMaterials(ctx context.Context, materials []models.Material) error {
	return save(ctx, r, Materials, materials)
}

func (r *Repository) Consumption(ctx context.Context) []models.ConsumptionEvent {
	return load[models.ConsumptionEvent](ctx, r, Consumption)
}

func (r *Repository) ConsumptionForUpdate(ctx context.Context) ([]models.ConsumptionEvent, error) {
	return loadForUpdate[models.ConsumptionEvent](ctx, r, Consumption)
}

// SaveLedger writes the consumption log and the materials in a single atomic
// backend write, so a debit and its audit record land together or not at all.
func (r *Repository) SaveLedger(ctx context.Context, events []models.ConsumptionEvent, materials []models.Material) error {
	eventData, err := encode(Consumption, events)
	if err != nil {
		return err
	}
	materialData, err := encode(Materials, materials)
	if err != nil {
		return err
	}
	return r.putMany(ctx, map[string][]byte{
		string(Consumption): eventData,
		string(Materials):   materialData,
	})
}

func (r *Repository) Orders(ctx context.Context) []models.Order {
	return load[models.Order](ctx, r, Orders)
}

func (r *Repository) OrdersForUpdate(ctx context.Context) ([]models.Order, error) {
	return loadForUpdate[models.Order](ctx, r, Orders)
}

func (r *Repository) SaveOrders(ctx context.Context, orders []models.Order) error {
	return save(ctx, r, Orders, orders)
}

func (r *Repository) Products(ctx context.Context) []models.Product {
	return load[models.Product](ctx, r, Products)
}

func (r *Repository) ProductsForUpdate(ctx context.Context) ([]models.Product, error) {
	return loadForUpdate[models.Product](ctx, r, Products)
}

func (r *Repository) SaveProducts(ctx context.Context, products []models.Product) error {
	return save(ctx, r, Products, products)
}

func (r *Repository) Invoices(ctx context.Context) []models.Invoice {
	return load[models.Invoice](ctx, r, Invoices)
}

func (r *Repository) InvoicesForUpdate(ctx context.Context) ([]models.Invoice, error) {
	return loadForUpdate[models.Invoice](ctx, r, Invoices)
}

func (r *Repository) SaveInvoices(ctx context.Context, invoices []models.Invoice) error {
	return save(ctx, r, Invoices, invoices)
}

func (r *Repository) Quotes(ctx context.Context) []models.Quote {
	return load[models.Quote](ctx, r, Quotes)
}

func (r *Repository) QuotesForUpdate(ctx context.Context) ([]models.Quote, error) {
	return loadForUpdate[models.Quote](ctx, r, Quotes)
}

func (r *Repository) SaveQuotes(ctx context.Context, quotes []models.Quote) error {
	return save(ctx, r, Quotes, quotes)
}

func (r *Repository) Income(ctx context.Context) []models.FinanceEntry {
	return load[models.FinanceEntry](ctx, r, Income)
}

func (r *Repository) IncomeForUpdate(ctx context.Context) ([]models.FinanceEntry, error) {
	return loadForUpdate[models.FinanceEntry](ctx, r, Income)
}

func (r *Repository) SaveIncome(ctx context.Context, entries []models.FinanceEntry) error {
	return save(ctx, r, Income, entries)
}

func (r *Repository) Expenses(ctx context.Context) []models.FinanceEntry {
	return load[models.FinanceEntry](ctx, r, Expenses)
}

func (r *Repository) ExpensesForUpdate(ctx context.Context) ([]models.FinanceEntry, error) {
	return loadForUpdate[models.FinanceEntry](ctx, r, Expenses)
}

func (r *Repository) SaveExpenses(ctx context.Context, entries []models.FinanceEntry) error {
	return save(ctx, r, Expenses, entries)
}

func (r *Repository) Customers(ctx context.Context) []models.Customer {
	return load[models.Customer](ctx, r, Customers)
}

func (r *Repository) CustomersForUpdate(ctx context.Context) ([]models.Customer, error) {
	return loadForUpdate[models.Customer](ctx, r, Customers)
}

func (r *Repository) SaveCustomers(ctx context.Context, customers []models.Customer) error {
	return save(ctx, r, Customers, customers)
}

func (r *Repository) Suppliers(ctx context.Context) []models.Supplier {
	return load[models.Supplier](ctx, r, Suppliers)
}

func (r *Repository) SuppliersForUpdate(ctx context.Context) ([]models.Supplier, error) {
	return loadForUpdate[models.Supplier](ctx, r, Suppliers)
}

func (r *Repository) SaveSuppliers(ctx context.Context, suppliers []models.Supplier) error {
	return save(ctx, r, Suppliers, suppliers)
}

func (r *Repository) Purchases(ctx context.Context) []models.Purchase {
	return load[models.Purchase](ctx, r, Purchases)
}

func (r *Repository) PurchasesForUpdate(ctx context.Context) ([]models.Purchase, error) {
	return loadForUpdate[models.Purchase](ctx, r, Purchases)
}

func (r *Repository) SavePurchases(ctx context.Context, purchases []models.Purchase) error {
	return save(ctx, r, Purchases, purchases)
}

func (r *Repository) Equipment(ctx context.Context) []models.Equipment {
	return load[models.Equipment](ctx, r, Equipment)
}

func (r *Repository) EquipmentForUpdate(ctx context.Context) ([]models.Equipment, error) {
	return loadForUpdate[models.Equipment](ctx, r, Equipment)
}

func (r *Repository) SaveEquipment(ctx context.Context, equipment []models.Equipment) error {
	return save(ctx, r, Equipment, equipment)
}

func (r *Repository) Maintenances(ctx context.Context) []models.Maintenance {
	return load[models.Maintenance](ctx, r, Maintenances)
}

func (r *Repository) MaintenancesForUpdate(ctx context.Context) ([]models.Maintenance, error) {
	return loadForUpdate[models.Maintenance](ctx, r, Maintenances)
}

// SaveMaintenanceLog writes the maintenance log and the equipment it touched
// in one atomic backend write.
func (r *Repository) SaveMaintenanceLog(ctx context.Context, maintenances []models.Maintenance, equipment []models.Equipment) error {
	logData, err := encode(Maintenances, maintenances)
	if err != nil {
		return err
	}
	equipmentData, err := encode(Equipment, equipment)
	if err != nil {
		return err
	}
	return r.putMany(ctx, map[string][]byte{
		string(Maintenances): logData,
		string(Equipment):    equipmentData,
	})
}

// Settings returns the stored configuration singleton; ok is false when none was saved yet.
func (r *Repository) Settings(ctx context.Context) (models.Settings, bool) {
	all := load[models.Settings](ctx, r, Config)
	if len(all) == 0 {
		return models.Settings{}, false
	}
	return all[0], true
}

func (r *Repository) SaveSettings(ctx context.Context, s models.Settings) error {
	return save(ctx, r, Config, []models.Settings{s})
}
