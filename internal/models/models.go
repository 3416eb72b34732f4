// Package models holds the flat records persisted in the store collections.
package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/money"
)

const (
	DefaultMaterialType  = "Sin tipo"
	DefaultMaterialColor = "Sin color"
	DeletedMaterialLabel = "Material eliminado"
)

// Material is a filament stock. WeightOnHand is in kilograms, UnitCost in currency per kilogram.
type Material struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"`
	Color        string          `json:"color"`
	WeightOnHand decimal.Decimal `json:"weightOnHand"`
	UnitCost     decimal.Decimal `json:"unitCost"`
}

// Label is the display name of a material, computed at read time.
func (m Material) Label() string {
	return m.Type + " - " + m.Color
}

var errMissingID = errors.New("record has no id")

// UnmarshalJSON applies the lenient load policy: records without an id are
// rejected, type and color get defaults and numeric fields fall back to zero.
func (m *Material) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           *int64          `json:"id"`
		Type         string          `json:"type"`
		Color        string          `json:"color"`
		WeightOnHand json.RawMessage `json:"weightOnHand"`
		UnitCost     json.RawMessage `json:"unitCost"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return errMissingID
	}

	*m = Material{
		ID:           *raw.ID,
		Type:         raw.Type,
		Color:        raw.Color,
		WeightOnHand: money.Lenient(raw.WeightOnHand),
		UnitCost:     money.Lenient(raw.UnitCost),
	}
	if m.Type == "" {
		m.Type = DefaultMaterialType
	}
	if m.Color == "" {
		m.Color = DefaultMaterialColor
	}
	if m.WeightOnHand.IsNegative() {
		m.WeightOnHand = decimal.Zero
	}
	if m.UnitCost.IsNegative() {
		m.UnitCost = decimal.Zero
	}
	return nil
}

// ConsumptionEvent is an immutable debit of a material.
type ConsumptionEvent struct {
	ID            int64           `json:"id"`
	MaterialID    int64           `json:"materialId"`
	QuantityGrams decimal.Decimal `json:"quantityGrams"`
	Reason        string          `json:"reason"`
	Description   string          `json:"description,omitempty"`
	OrderID       *int64          `json:"orderId,omitempty"`
	Cost          decimal.Decimal `json:"cost"`
	Timestamp     time.Time       `json:"timestamp"`
}

// OrderStatus is the lifecycle state of a customer order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderPrinting  OrderStatus = "Printing"
	OrderReady     OrderStatus = "Ready"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPrinting, OrderReady, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order is a customer order. The material is kept as a reference only.
type Order struct {
	ID          int64           `json:"id"`
	Customer    string          `json:"customer"`
	Description string          `json:"description"`
	MaterialID  *int64          `json:"materialId,omitempty"`
	WeightGrams decimal.Decimal `json:"weightGrams"`
	Price       decimal.Decimal `json:"price"`
	Status      OrderStatus     `json:"status"`
	Date        time.Time       `json:"date"`
}

// Product is a sellable item in the catalog.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
}

// LineItem is one line of an invoice or a quote.
type LineItem struct {
	Description string          `json:"description" validate:"required,max=200"`
	Quantity    int64           `json:"quantity" validate:"gte=1"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"gte=0"`
}

// Amount returns quantity * unit price.
func (li LineItem) Amount() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
}

// Invoice is an issued bill.
type Invoice struct {
	ID       int64           `json:"id"`
	Number   int64           `json:"number"`
	OrderID  *int64          `json:"orderId,omitempty"`
	Customer string          `json:"customer"`
	Phone    string          `json:"phone,omitempty"`
	Items    []LineItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	IssuedAt time.Time       `json:"issuedAt"`
}

// QuoteStatus is the state of a quote.
type QuoteStatus string

const (
	QuoteDraft     QuoteStatus = "Draft"
	QuoteConverted QuoteStatus = "Converted"
)

// Quote is a priced proposal that can later become an order.
type Quote struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	Customer    string          `json:"customer"`
	Description string          `json:"description"`
	Items       []LineItem      `json:"items"`
	Total       decimal.Decimal `json:"total"`
	Status      QuoteStatus     `json:"status"`
	Date        time.Time       `json:"date"`
	ValidUntil  time.Time       `json:"validUntil"`
	OrderID     *int64          `json:"orderId,omitempty"`
}

// EntryKind separates income from expenses.
type EntryKind string

const (
	Income  EntryKind = "Income"
	Expense EntryKind = "Expense"
)

// FinanceEntry is one income or expense movement.
type FinanceEntry struct {
	ID          string          `json:"id"`
	Kind        EntryKind       `json:"kind"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
}

// Customer is a registered client. Order statistics are derived from the
// orders placed under the same name.
type Customer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Supplier sells filament, parts or services to the shop.
type Supplier struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Contact      string    `json:"contact,omitempty"`
	Specialty    string    `json:"specialty,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Purchase is one buy from a supplier.
type Purchase struct {
	ID          int64           `json:"id"`
	SupplierID  int64           `json:"supplierId"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	Cost        decimal.Decimal `json:"cost"`
	Date        time.Time       `json:"date"`
}

// EquipmentStatus is the operating state of a machine.
type EquipmentStatus string

const (
	EquipmentOperational  EquipmentStatus = "Operational"
	EquipmentMaintenance  EquipmentStatus = "Maintenance"
	EquipmentOutOfService EquipmentStatus = "OutOfService"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentOperational, EquipmentMaintenance, EquipmentOutOfService:
		return true
	}
	return false
}

// Equipment is a printer or tool of the shop.
type Equipment struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type,omitempty"`
	Model           string          `json:"model,omitempty"`
	Status          EquipmentStatus `json:"status"`
	Cost            decimal.Decimal `json:"cost"`
	LastMaintenance *time.Time      `json:"lastMaintenance,omitempty"`
	NextMaintenance *time.Time      `json:"nextMaintenance,omitempty"`
}

// Maintenance is a service performed on a piece of equipment.
type Maintenance struct {
	ID          int64           `json:"id"`
	EquipmentID int64           `json:"equipmentId"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
	Technician  string          `json:"technician,omitempty"`
	Date        time.Time       `json:"date"`
}

// Settings is the business configuration singleton.
type Settings struct {
	BusinessName         string          `json:"businessName"`
	Phone                string          `json:"phone"`
	Address              string          `json:"address"`
	LaborRatePerHour     decimal.Decimal `json:"laborRatePerHour"`
	DefaultMarginPercent decimal.Decimal `json:"defaultMarginPercent"`
	TaxPercent           decimal.Decimal `json:"taxPercent"`
}

// DefaultSettings mirrors the values a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		BusinessName:         "3D Control Center",
		LaborRatePerHour:     decimal.NewFromInt(1000),
		DefaultMarginPercent: decimal.NewFromInt(30),
		TaxPercent:           decimal.NewFromInt(13),
	}
}

// NextID returns max(id)+1 over ids, or 1 when there are none.
func NextID[T any](records []T, id func(T) int64) int64 {
	var highest int64
	for _, r := range records {
		if v := id(r); v > highest {
			highest = v
		}
	}
	return highest + 1
}
