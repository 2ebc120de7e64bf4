package ledger

import (
	"github.com/sunny0223day/accountingbot/internal/models"
)

// Guard functions gate every order mutation on the current lifecycle status
// and, for creator-only operations, the acting user. They only inspect the
// order; callers run them inside the same transaction as the mutation so the
// status they see is the status the write lands on.

// CanAddItem reports whether new line items are accepted.
func CanAddItem(order *models.Order) error {
	if !order.Editable() {
		return ErrOrderNotEditable
	}
	return nil
}

// CanSetDiscount reports whether the pricing rule may change.
func CanSetDiscount(order *models.Order) error {
	if !order.Editable() {
		return ErrOrderNotEditable
	}
	return nil
}

// CanSetAdjustment reports whether the per-person adjustment may change.
// Creator-only.
func CanSetAdjustment(order *models.Order, actorID string) error {
	if order.CreatorID != actorID {
		return ErrNotAuthorized
	}
	if !order.Editable() {
		return ErrOrderNotEditable
	}
	return nil
}

// CanLock reports whether the order may transition open -> locked.
// Creator-only. Locking an already locked order is rejected as a redundant
// transition; a cancelled order reports the terminal state distinctly.
func CanLock(order *models.Order, actorID string) error {
	if order.Status == models.StatusCancelled {
		return ErrAlreadyCancelled
	}
	if order.CreatorID != actorID {
		return ErrNotAuthorized
	}
	if order.Status != models.StatusOpen {
		return ErrInvalidTransition
	}
	return nil
}

// CanUnlock reports whether the order may be reset to open. Creator-only.
// Any non-cancelled state may be reset; unlocking an open order is harmless.
func CanUnlock(order *models.Order, actorID string) error {
	if order.Status == models.StatusCancelled {
		return ErrAlreadyCancelled
	}
	if order.CreatorID != actorID {
		return ErrNotAuthorized
	}
	return nil
}

// CanCancel reports whether the order may be cancelled. Creator-only,
// reachable from open or locked, and irreversible.
func CanCancel(order *models.Order, actorID string) error {
	if order.Status == models.StatusCancelled {
		return ErrAlreadyCancelled
	}
	if order.CreatorID != actorID {
		return ErrNotAuthorized
	}
	return nil
}
