package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ledger core. Callers match them with errors.Is;
// the HTTP layer maps them to status codes via the classifier helpers below.
var (
	// ErrOrderNotFound is returned when the referenced order id does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNoSuchParticipant is returned when a payment targets a user who
	// owns no line items in the order.
	ErrNoSuchParticipant = errors.New("user has no items in this order")

	// ErrOrderNotEditable is returned when a subtotal-affecting mutation
	// hits a locked or cancelled order.
	ErrOrderNotEditable = errors.New("order is locked or cancelled")

	// ErrNotAuthorized is returned when a creator-only operation is
	// attempted by someone else.
	ErrNotAuthorized = errors.New("only the order creator may do this")

	// ErrAlreadyCancelled is returned for any lifecycle transition on a
	// cancelled order. Cancellation is terminal.
	ErrAlreadyCancelled = errors.New("order is already cancelled")

	// ErrInvalidTransition is returned for redundant lifecycle transitions,
	// e.g. locking an already locked order.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidItem is returned when an item's quantity or unit price is
	// out of range.
	ErrInvalidItem = errors.New("invalid line item")

	// ErrInvalidDiscount is returned when a percent discount is outside [0, 1].
	ErrInvalidDiscount = errors.New("invalid discount")
)

// NotFoundError adds the missing id to ErrOrderNotFound.
type NotFoundError struct {
	OrderID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.OrderID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrOrderNotFound
}

// ValidationError carries the field and value that failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s=%v: %v", e.Field, e.Value, e.Wrapped)
}

func (e *ValidationError) Unwrap() error {
	return e.Wrapped
}

// IsNotFound reports whether the error indicates a missing order or participant.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrNoSuchParticipant)
}

// IsClientError reports whether the error is the caller's fault
// (bad input, forbidden state) rather than a store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrOrderNotEditable) ||
		errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidItem) ||
		errors.Is(err, ErrInvalidDiscount) ||
		IsNotFound(err)
}
