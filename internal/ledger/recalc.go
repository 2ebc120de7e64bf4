// Package ledger implements the participant recomputation algorithm and the
// order lifecycle rules. It is pure: everything here works on in-memory
// values, and the service layer applies the results inside a store
// transaction.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sunny0223day/accountingbot/internal/models"
)

// Recalculate derives the authoritative participant set for an order from its
// current line items and pricing rule.
//
// The function is idempotent: with the same inputs it returns the same rows.
// Payment state is carried over from existing rows untouched; users who no
// longer own any items are dropped. For a cancelled order the ledger is
// frozen and the existing rows are returned as-is.
//
// The result is sorted by user id for deterministic output.
func Recalculate(order *models.Order, items []models.LineItem, existing []models.Participant) []models.Participant {
	if order.Status == models.StatusCancelled {
		out := make([]models.Participant, len(existing))
		copy(out, existing)
		sortParticipants(out)
		return out
	}

	subtotals := Subtotals(items)

	prev := make(map[string]models.Participant, len(existing))
	for _, p := range existing {
		prev[p.UserID] = p
	}

	out := make([]models.Participant, 0, len(subtotals))
	for userID, subtotal := range subtotals {
		due := applyDiscount(order, subtotal) + order.Adjustment
		if due < 0 {
			due = 0
		}

		row := models.Participant{
			OrderID:  order.ID,
			UserID:   userID,
			TotalDue: due,
		}
		if old, ok := prev[userID]; ok {
			row.Paid = old.Paid
			row.PaidAt = old.PaidAt
			row.PaidTo = old.PaidTo
		}
		out = append(out, row)
	}

	sortParticipants(out)
	return out
}

// Subtotals groups line items by owner and sums their line totals.
func Subtotals(items []models.LineItem) map[string]int64 {
	subtotals := make(map[string]int64)
	for i := range items {
		subtotals[items[i].UserID] += items[i].LineTotal()
	}
	return subtotals
}

// applyDiscount applies the order's pricing rule to one subtotal.
//
// Percent discounts round half to even (decimal.RoundBank), matching the
// behavior bills have always been settled with. The "amount" kind is stored
// but not applied: there is no agreed rule for splitting a fixed discount
// across participants, so it stays a no-op rather than guessing one.
func applyDiscount(order *models.Order, subtotal int64) int64 {
	switch order.DiscountKind {
	case models.DiscountPercent:
		return decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromFloat(order.DiscountValue)).
			RoundBank(0).
			IntPart()
	case models.DiscountAmount:
		// TODO: decide allocation (proportional vs equal vs payer-only)
		// before wiring this up.
		return subtotal
	default:
		return subtotal
	}
}

// ValidateItem checks the ranges the store must never accept.
func ValidateItem(unitPrice, qty int64) error {
	if qty <= 0 {
		return &ValidationError{Field: "qty", Value: qty, Wrapped: ErrInvalidItem}
	}
	if unitPrice < 0 {
		return &ValidationError{Field: "unit_price", Value: unitPrice, Wrapped: ErrInvalidItem}
	}
	return nil
}

// ValidatePercent checks that a percent discount is within [0, 1].
func ValidatePercent(percent float64) error {
	if percent < 0 || percent > 1 {
		return &ValidationError{Field: "percent", Value: percent, Wrapped: ErrInvalidDiscount}
	}
	return nil
}

func sortParticipants(ps []models.Participant) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].UserID < ps[j].UserID })
}
