// Package apperror defines the typed errors returned by the core packages and
// the JSON envelope the HTTP layer uses to report them.
package apperror

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports missing or malformed input fields.
// Fields maps a field name to a short reason.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Missing builds a ValidationError for a list of required fields that were absent.
func Missing(names ...string) *ValidationError {
	fields := make(map[string]string, len(names))
	for _, n := range names {
		fields[n] = "required"
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// MaterialNotFoundError is returned when a material id does not resolve.
type MaterialNotFoundError struct {
	ID int64
}

func (e *MaterialNotFoundError) Error() string {
	return fmt.Sprintf("material %d not found", e.ID)
}

// InsufficientStockError is returned when a debit exceeds the stock on hand.
// Both amounts are in kilograms.
type InsufficientStockError struct {
	MaterialID  int64
	AvailableKg decimal.Decimal
	RequestedKg decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for material %d: available %skg, requested %skg",
		e.MaterialID, e.AvailableKg.String(), e.RequestedKg.String())
}

// InvalidInputError reports degenerate arithmetic input, such as a zero piece count.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// PersistenceError wraps a storage failure for one collection.
type PersistenceError struct {
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotFoundError is the generic lookup failure for records other than materials.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
