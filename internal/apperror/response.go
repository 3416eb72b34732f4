package apperror

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
)

// Response is the canonical error envelope for all 4xx/5xx HTTP responses.
type Response struct {
	Detail      string            `json:"detail"`
	Fields      map[string]string `json:"fields,omitempty"`
	AvailableKg *decimal.Decimal  `json:"availableKg,omitempty"`
	RequestedKg *decimal.Decimal  `json:"requestedKg,omitempty"`
}

// ToResponse maps an error returned by the core to an HTTP status and a safe body.
// Unknown errors become a 500 without leaking internal details.
func ToResponse(err error) (int, Response) {
	var (
		validation   *ValidationError
		materialNF   *MaterialNotFoundError
		notFound     *NotFoundError
		insufficient *InsufficientStockError
		invalid      *InvalidInputError
		persistence  *PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, Response{Detail: "Error de validación", Fields: validation.Fields}
	case errors.As(err, &materialNF):
		return http.StatusNotFound, Response{Detail: materialNF.Error()}
	case errors.As(err, &notFound):
		return http.StatusNotFound, Response{Detail: notFound.Error()}
	case errors.As(err, &insufficient):
		return http.StatusConflict, Response{
			Detail:      "No hay suficiente material",
			AvailableKg: &insufficient.AvailableKg,
			RequestedKg: &insufficient.RequestedKg,
		}
	case errors.As(err, &invalid):
		return http.StatusBadRequest, Response{Detail: invalid.Error()}
	case errors.As(err, &persistence):
		return http.StatusInternalServerError, Response{Detail: "No se pudieron guardar los datos"}
	default:
		return http.StatusInternalServerError, Response{Detail: "Error interno del servidor"}
	}
}
