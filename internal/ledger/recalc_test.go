package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunny0223day/accountingbot/internal/models"
)

func openOrder() *models.Order {
	return &models.Order{
		ID:           1,
		Vendor:       "50嵐",
		CreatorID:    "user_A",
		PayerID:      "user_A",
		DiscountKind: models.DiscountNone,
		Status:       models.StatusOpen,
	}
}

func teaItems() []models.LineItem {
	return []models.LineItem{
		{ID: 1, OrderID: 1, UserID: "user_A", Name: "珍奶微糖", UnitPrice: 60, Qty: 1},
		{ID: 2, OrderID: 1, UserID: "user_B", Name: "紅茶去冰", UnitPrice: 40, Qty: 1},
		{ID: 3, OrderID: 1, UserID: "user_B", Name: "波霸", UnitPrice: 10, Qty: 1},
	}
}

func dueByUser(rows []models.Participant) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, p := range rows {
		out[p.UserID] = p.TotalDue
	}
	return out
}

func TestRecalculate_NoDiscount(t *testing.T) {
	rows := Recalculate(openOrder(), teaItems(), nil)

	require.Len(t, rows, 2)
	due := dueByUser(rows)
	assert.Equal(t, int64(60), due["user_A"])
	assert.Equal(t, int64(50), due["user_B"])
}

func TestRecalculate_PercentDiscount(t *testing.T) {
	order := openOrder()
	order.DiscountKind = models.DiscountPercent
	order.DiscountValue = 0.9

	due := dueByUser(Recalculate(order, teaItems(), nil))
	assert.Equal(t, int64(54), due["user_A"])
	assert.Equal(t, int64(45), due["user_B"])
}

func TestRecalculate_PercentRoundsHalfToEven(t *testing.T) {
	order := openOrder()
	order.DiscountKind = models.DiscountPercent
	order.DiscountValue = 0.5

	tests := []struct {
		subtotal int64
		want     int64
	}{
		{25, 12}, // 12.5 rounds down to the even 12
		{35, 18}, // 17.5 rounds up to the even 18
		{24, 12},
		{27, 14}, // 13.5 rounds up to the even 14
	}
	for _, tt := range tests {
		items := []models.LineItem{{OrderID: 1, UserID: "u", UnitPrice: tt.subtotal, Qty: 1}}
		due := dueByUser(Recalculate(order, items, nil))
		assert.Equal(t, tt.want, due["u"], "subtotal=%d", tt.subtotal)
	}
}

func TestRecalculate_AdjustmentAfterDiscount(t *testing.T) {
	order := openOrder()
	order.DiscountKind = models.DiscountPercent
	order.DiscountValue = 0.9
	order.Adjustment = 5

	due := dueByUser(Recalculate(order, teaItems(), nil))
	assert.Equal(t, int64(59), due["user_A"])
	assert.Equal(t, int64(50), due["user_B"])
}

func TestRecalculate_NegativeAdjustmentClampsToZero(t *testing.T) {
	order := openOrder()
	order.Adjustment = -100

	due := dueByUser(Recalculate(order, teaItems(), nil))
	assert.Equal(t, int64(0), due["user_A"])
	// user_B has subtotal 50, also clamped
	assert.Equal(t, int64(0), due["user_B"])
}

func TestRecalculate_AmountDiscountIsNoop(t *testing.T) {
	order := openOrder()
	order.DiscountKind = models.DiscountAmount
	order.DiscountValue = 30

	due := dueByUser(Recalculate(order, teaItems(), nil))
	assert.Equal(t, int64(60), due["user_A"])
	assert.Equal(t, int64(50), due["user_B"])
}

func TestRecalculate_PreservesPaymentState(t *testing.T) {
	order := openOrder()
	existing := []models.Participant{
		{OrderID: 1, UserID: "user_B", TotalDue: 50, Paid: true, PaidAt: 1700000000, PaidTo: "user_A"},
	}

	order.DiscountKind = models.DiscountPercent
	order.DiscountValue = 0.9
	rows := Recalculate(order, teaItems(), existing)

	due := dueByUser(rows)
	assert.Equal(t, int64(45), due["user_B"], "total_due follows the new rule")
	for _, p := range rows {
		if p.UserID == "user_B" {
			assert.True(t, p.Paid, "paid flag is sticky")
			assert.Equal(t, int64(1700000000), p.PaidAt)
			assert.Equal(t, "user_A", p.PaidTo)
		}
	}
}

func TestRecalculate_DropsUsersWithoutItems(t *testing.T) {
	existing := []models.Participant{
		{OrderID: 1, UserID: "user_C", TotalDue: 99},
	}

	rows := Recalculate(openOrder(), teaItems(), existing)

	for _, p := range rows {
		assert.NotEqual(t, "user_C", p.UserID, "row without items must be purged")
	}
	require.Len(t, rows, 2)
}

func TestRecalculate_RowPresenceMatchesItemOwnership(t *testing.T) {
	items := teaItems()
	rows := Recalculate(openOrder(), items, nil)

	owners := make(map[string]bool)
	for _, li := range items {
		owners[li.UserID] = true
	}
	require.Len(t, rows, len(owners))
	for _, p := range rows {
		assert.True(t, owners[p.UserID])
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	order := openOrder()
	order.DiscountKind = models.DiscountPercent
	order.DiscountValue = 0.7
	order.Adjustment = -3

	first := Recalculate(order, teaItems(), nil)
	second := Recalculate(order, teaItems(), first)
	assert.Equal(t, first, second)
}

func TestRecalculate_Conservation(t *testing.T) {
	// With no discount and no adjustment the participant totals must add up
	// to the raw item totals.
	items := []models.LineItem{
		{OrderID: 1, UserID: "a", UnitPrice: 13, Qty: 3},
		{OrderID: 1, UserID: "b", UnitPrice: 7, Qty: 2},
		{OrderID: 1, UserID: "c", UnitPrice: 120, Qty: 1},
		{OrderID: 1, UserID: "a", UnitPrice: 1, Qty: 9},
	}

	var wantSum int64
	for i := range items {
		wantSum += items[i].LineTotal()
	}

	var gotSum int64
	for _, p := range Recalculate(openOrder(), items, nil) {
		gotSum += p.TotalDue
	}
	assert.Equal(t, wantSum, gotSum)
}

func TestRecalculate_NonNegative(t *testing.T) {
	order := openOrder()
	order.DiscountKind = models.DiscountPercent
	order.DiscountValue = 0.1
	order.Adjustment = -1000000

	for _, p := range Recalculate(order, teaItems(), nil) {
		assert.GreaterOrEqual(t, p.TotalDue, int64(0))
	}
}

func TestRecalculate_CancelledOrderIsFrozen(t *testing.T) {
	order := openOrder()
	order.Status = models.StatusCancelled
	existing := []models.Participant{
		{OrderID: 1, UserID: "user_A", TotalDue: 60},
		{OrderID: 1, UserID: "user_B", TotalDue: 50, Paid: true, PaidAt: 1700000000, PaidTo: "user_A"},
	}

	// Items injected after cancellation must not change anything.
	items := append(teaItems(), models.LineItem{OrderID: 1, UserID: "user_C", UnitPrice: 999, Qty: 1})
	rows := Recalculate(order, items, existing)
	assert.Equal(t, existing, rows)
}

func TestRecalculate_SortedByUserID(t *testing.T) {
	items := []models.LineItem{
		{OrderID: 1, UserID: "zed", UnitPrice: 10, Qty: 1},
		{OrderID: 1, UserID: "amy", UnitPrice: 10, Qty: 1},
		{OrderID: 1, UserID: "mia", UnitPrice: 10, Qty: 1},
	}
	rows := Recalculate(openOrder(), items, nil)

	require.Len(t, rows, 3)
	assert.Equal(t, "amy", rows[0].UserID)
	assert.Equal(t, "mia", rows[1].UserID)
	assert.Equal(t, "zed", rows[2].UserID)
}

func TestValidateItem(t *testing.T) {
	assert.NoError(t, ValidateItem(0, 1))
	assert.NoError(t, ValidateItem(100, 3))
	assert.ErrorIs(t, ValidateItem(10, 0), ErrInvalidItem)
	assert.ErrorIs(t, ValidateItem(10, -1), ErrInvalidItem)
	assert.ErrorIs(t, ValidateItem(-1, 1), ErrInvalidItem)
}

func TestValidatePercent(t *testing.T) {
	assert.NoError(t, ValidatePercent(0))
	assert.NoError(t, ValidatePercent(0.9))
	assert.NoError(t, ValidatePercent(1))
	assert.ErrorIs(t, ValidatePercent(-0.1), ErrInvalidDiscount)
	assert.ErrorIs(t, ValidatePercent(1.1), ErrInvalidDiscount)
}
