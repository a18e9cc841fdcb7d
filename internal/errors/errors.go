// Package errors provides custom error types for the Topsheet API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Budget lifecycle errors.
var (
	ErrBudgetNotFound          = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrBudgetLocked            = &AppError{Code: "BUDGET_LOCKED", Message: "Budget is locked and cannot be modified", StatusCode: http.StatusLocked}
	ErrInvalidStatusTransition = &AppError{Code: "INVALID_STATUS_TRANSITION", Message: "Budget status can only move forward", StatusCode: http.StatusConflict}
)

// Category and line item errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Budget category not found", StatusCode: http.StatusNotFound}
	ErrLineItemNotFound    = &AppError{Code: "LINE_ITEM_NOT_FOUND", Message: "Line item not found", StatusCode: http.StatusNotFound}
	ErrTaxLineItemReadOnly = &AppError{Code: "TAX_LINE_ITEM_READ_ONLY", Message: "Tax line items are system-generated and cannot be edited or deleted", StatusCode: http.StatusBadRequest}
	ErrLineItemLocked      = &AppError{Code: "LINE_ITEM_LOCKED", Message: "Line item is locked", StatusCode: http.StatusBadRequest}
)

// Actuals errors.
var (
	ErrActualNotFound = &AppError{Code: "ACTUAL_NOT_FOUND", Message: "Actual not found", StatusCode: http.StatusNotFound}
)

// Daily sync errors.
var (
	ErrSyncConflict  = &AppError{Code: "SYNC_CONFLICT", Message: "A daily sync for this budget is already in progress", StatusCode: http.StatusConflict}
	ErrCalendarEmpty = &AppError{Code: "CALENDAR_EMPTY", Message: "Budget has no production days to distribute across", StatusCode: http.StatusBadRequest}
)

// Integrity errors. A recomputed subtotal disagreeing with its stored value
// is surfaced as a hard failure, never silently corrected.
var (
	ErrIntegrityViolation = &AppError{Code: "INTEGRITY_VIOLATION", Message: "Stored subtotal disagrees with recomputed line item sum", StatusCode: http.StatusInternalServerError}
)
