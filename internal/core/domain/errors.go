// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorCode identifies a class of failure surfaced to API callers.
type ErrorCode string

const (
	CodeValidation                 ErrorCode = "VALIDATION_ERROR"
	CodePermissionDenied           ErrorCode = "PERMISSION_DENIED"
	CodeNotFound                   ErrorCode = "NOT_FOUND"
	CodeInvalidState               ErrorCode = "INVALID_STATE"
	CodeInsufficientStock          ErrorCode = "INSUFFICIENT_STOCK"
	CodeInsufficientDamagedStock   ErrorCode = "INSUFFICIENT_DAMAGED_STOCK"
	CodeInsufficientUnderRepairQty ErrorCode = "INSUFFICIENT_UNDER_REPAIR_QUANTITY"
	CodeInsufficientRepairedQty    ErrorCode = "INSUFFICIENT_REPAIRED_QUANTITY"
	CodeInvalidSerials             ErrorCode = "INVALID_SERIALS"
	CodeInvalidFinalStatus         ErrorCode = "INVALID_FINAL_STATUS"
	CodeNoFaultyStock              ErrorCode = "NO_FAULTY_STOCK"
	CodeConflict                   ErrorCode = "CONFLICT"
	CodeInternal                   ErrorCode = "INTERNAL_ERROR"
)

// ErrConcurrentModification is returned by repositories when a versioned
// save finds the row changed since it was read.
var ErrConcurrentModification = errors.New("record was modified concurrently")

// AppError is an error with a stable code and the HTTP status it maps to.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Wrap records the underlying cause
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

func newAppError(code ErrorCode, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidationError(format string, args ...any) *AppError {
	return newAppError(CodeValidation, http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func NewPermissionDenied(capability Capability, scope Scope) *AppError {
	return newAppError(CodePermissionDenied, http.StatusForbidden,
		fmt.Sprintf("missing capability %s on %s", capability, scope)).
		WithDetail("capability", string(capability)).
		WithDetail("scope", scope.String())
}

func NewNotFound(resource string, id any) *AppError {
	return newAppError(CodeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("id", fmt.Sprint(id))
}

func NewInvalidState(format string, args ...any) *AppError {
	return newAppError(CodeInvalidState, http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func NewConflict(format string, args ...any) *AppError {
	return newAppError(CodeConflict, http.StatusConflict, fmt.Sprintf(format, args...))
}

func NewInternal(err error) *AppError {
	return newAppError(CodeInternal, http.StatusInternalServerError, "an internal error occurred").Wrap(err)
}

func insufficient(code ErrorCode, what string, available, requested int) *AppError {
	return newAppError(code, http.StatusBadRequest,
		fmt.Sprintf("insufficient %s: available %d, requested %d", what, available, requested)).
		WithDetail("available", available).
		WithDetail("requested", requested)
}

func NewInsufficientStock(available, requested int) *AppError {
	return insufficient(CodeInsufficientStock, "stock", available, requested)
}

func NewInsufficientDamagedStock(available, requested int) *AppError {
	return insufficient(CodeInsufficientDamagedStock, "damaged stock", available, requested)
}

func NewInsufficientUnderRepairQuantity(available, requested int) *AppError {
	return insufficient(CodeInsufficientUnderRepairQty, "under-repair quantity", available, requested)
}

func NewInsufficientRepairedQuantity(available, requested int) *AppError {
	return insufficient(CodeInsufficientRepairedQty, "repaired quantity", available, requested)
}

func NewInvalidFinalStatus(status string) *AppError {
	return newAppError(CodeInvalidFinalStatus, http.StatusBadRequest,
		fmt.Sprintf("final status %q must be one of repaired, irreparable", status))
}

func NewNoFaultyStock(productID any) *AppError {
	return newAppError(CodeNoFaultyStock, http.StatusBadRequest, "no faulty stock with damaged units for product").
		WithDetail("productId", fmt.Sprint(productID))
}

// NewInvalidSerials reports serial numbers that could not be used. Serials that
// do not exist are listed apart from those found in the wrong status.
func NewInvalidSerials(notFound []string, wrongStatus map[string]SerialStatus) *AppError {
	var parts []string
	if len(notFound) > 0 {
		parts = append(parts, "not found: "+strings.Join(notFound, ", "))
	}
	if len(wrongStatus) > 0 {
		keys := make([]string, 0, len(wrongStatus))
		for sn := range wrongStatus {
			keys = append(keys, sn)
		}
		sort.Strings(keys)
		described := make([]string, 0, len(keys))
		for _, sn := range keys {
			described = append(described, fmt.Sprintf("%s (%s)", sn, wrongStatus[sn]))
		}
		parts = append(parts, "wrong status: "+strings.Join(described, ", "))
	}

	e := newAppError(CodeInvalidSerials, http.StatusBadRequest, "invalid serial numbers: "+strings.Join(parts, "; "))
	if len(notFound) > 0 {
		e.WithDetail("notFound", notFound)
	}
	if len(wrongStatus) > 0 {
		e.WithDetail("wrongStatus", wrongStatus)
	}
	return e
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ToAppError maps any error onto the taxonomy. Unknown errors become internal.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, ErrConcurrentModification) {
		return NewConflict("stock record changed while processing, retry the request").Wrap(err)
	}
	return NewInternal(err)
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
