package dto

import "net/http"

// Standard error codes returned by the API
const (
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeAlreadyExists:     http.StatusConflict,
	ErrCodeInvalidState:      http.StatusConflict,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeInternal:          http.StatusInternalServerError,

	// domain codes that do not need renaming at the boundary
	"DUPLICATE_CODE":         http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR":  http.StatusConflict,
	"DUPLICATE_ORDER_NUMBER": http.StatusConflict,
	"INVALID_QUANTITY":       http.StatusBadRequest,
	"INVALID_PRODUCT":        http.StatusBadRequest,
	"INVALID_NAME":           http.StatusBadRequest,
	"INVALID_CLIENT":         http.StatusBadRequest,
	"INVALID_ORDER_NUMBER":   http.StatusBadRequest,
	"INVALID_PIECES_PER_BOX": http.StatusBadRequest,
	"INVALID_BATCH_DATE":     http.StatusBadRequest,
	"INVALID_DESCRIPTION":    http.StatusBadRequest,
	"INVALID_MIN_STOCK":      http.StatusBadRequest,
	"INVALID_MOVEMENT":       http.StatusBadRequest,
	"INVALID_REASON":         http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
