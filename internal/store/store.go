// Package store persists the application's collections. Every collection is a
// JSON array of flat records stored under a fixed key, and the Repository
// applies a lenient read policy on top of a pluggable Backend.
package store

import (
	"context"
	"fmt"
)

// Collection is the fixed key a group of records is stored under.
type Collection string

const (
	Products     Collection = "products"
	Materials    Collection = "materials"
	Orders       Collection = "orders"
	Invoices     Collection = "invoices"
	Config       Collection = "config"
	Customers    Collection = "customers"
	Quotes       Collection = "quotes"
	Suppliers    Collection = "suppliers"
	Purchases    Collection = "purchases"
	Equipment    Collection = "equipment"
	Maintenances Collection = "maintenances"
	Income       Collection = "income"
	Expenses     Collection = "expenses"
	Consumption  Collection = "consumption"
)

// AllCollections lists every known key.
var AllCollections = []Collection{
	Products, Materials, Orders, Invoices, Config, Customers, Quotes,
	Suppliers, Purchases, Equipment, Maintenances, Income, Expenses, Consumption,
}

// Backend is the raw key/value storage under the repository.
type Backend interface {
	// Get returns the stored bytes for key; ok is false when the key was never written.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// PutMany writes all values atomically.
	PutMany(ctx context.Context, values map[string][]byte) error
}

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// UnknownDriverError is returned for an unsupported STORAGE_DRIVER value.
type UnknownDriverError struct {
	Driver string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown storage driver %q", e.Driver)
}
