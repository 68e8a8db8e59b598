package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason is the machine readable code sent to clients next to the message.
type Reason string

const (
	ReasonPaymentInstrumentNotFound Reason = "PAYMENT_INSTRUMENT_NOT_FOUND"
	ReasonEmptyCart                 Reason = "EMPTY_CART"
	ReasonBonusOverLimit            Reason = "BONUS_OVER_LIMIT"
	ReasonInsufficientFunds         Reason = "INSUFFICIENT_FUNDS"
	ReasonInsufficientStock         Reason = "INSUFFICIENT_STOCK"
	ReasonConcurrentModification    Reason = "CONCURRENT_MODIFICATION"
	ReasonInvalidStateForDeletion   Reason = "INVALID_STATE_FOR_DELETION"
	ReasonNotFound                  Reason = "NOT_FOUND"
	ReasonForbidden                 Reason = "FORBIDDEN"
	ReasonUnauthorized              Reason = "UNAUTHORIZED"
	ReasonValidation                Reason = "VALIDATION"
	ReasonConflict                  Reason = "CONFLICT"
	ReasonTimeout                   Reason = "TIMEOUT"
	ReasonInternal                  Reason = "INTERNAL"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"-"`
	Reason  Reason `json:"reason"`
	Message string `json:"error"`
	Err     error  `json:"-"`

	// kind is the sentinel this error was derived from.
	kind *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches copies of the same sentinel, so an error produced by Wrap or
// WithMessage still satisfies errors.Is against it. Two sentinels sharing a
// reason stay distinct.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind != nil && t.kind == e.kind
}

// New creates a new Error
func New(code int, reason Reason, message string, err error) *Error {
	e := &Error{Code: code, Reason: reason, Message: message, Err: err}
	e.kind = e
	return e
}

// Wrap returns a copy of e with cause attached. Sentinels are never mutated.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// From extracts the first *Error in err's chain.
func From(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus maps any error onto a status code; unknown errors are 500.
func HTTPStatus(err error) int {
	if appErr, ok := From(err); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Checkout and ledger errors
var (
	ErrPaymentInstrumentNotFound = New(http.StatusBadRequest, ReasonPaymentInstrumentNotFound, "Payment card not found", nil)
	ErrEmptyCart                 = New(http.StatusBadRequest, ReasonEmptyCart, "Cart is empty", nil)
	ErrBonusOverLimit            = New(http.StatusBadRequest, ReasonBonusOverLimit, "Requested bonus points exceed the allowed limit", nil)
	ErrInsufficientFunds         = New(http.StatusPaymentRequired, ReasonInsufficientFunds, "Insufficient funds on card", nil)
	ErrInsufficientStock         = New(http.StatusPaymentRequired, ReasonInsufficientStock, "Insufficient stock", nil)
	ErrConcurrentModification    = New(http.StatusConflict, ReasonConcurrentModification, "Cart was modified concurrently, please retry", nil)
	ErrCheckoutTimeout           = New(http.StatusGatewayTimeout, ReasonTimeout, "Checkout timed out", nil)
)

// Order lifecycle errors
var (
	ErrInvalidStateForDeletion = New(http.StatusBadRequest, ReasonInvalidStateForDeletion, "Only completed orders can be deleted", nil)
)

// Generic errors
var (
	ErrValidation         = New(http.StatusBadRequest, ReasonValidation, "Validation error", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, ReasonUnauthorized, "Unauthorized", nil)
	ErrInvalidCredentials = New(http.StatusUnauthorized, ReasonUnauthorized, "Invalid credentials", nil)
	ErrForbidden          = New(http.StatusForbidden, ReasonForbidden, "Forbidden", nil)
	ErrNotFound           = New(http.StatusNotFound, ReasonNotFound, "Not found", nil)
	ErrConflict           = New(http.StatusConflict, ReasonConflict, "Conflict", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, ReasonInternal, "Internal server error", nil)
)
