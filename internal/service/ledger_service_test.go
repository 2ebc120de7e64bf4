package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunny0223day/accountingbot/internal/ledger"
	"github.com/sunny0223day/accountingbot/internal/models"
	"github.com/sunny0223day/accountingbot/internal/storage/sqlite"
)

func newServices(t *testing.T) (*LedgerService, *QueryService) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewLedgerService(store), NewQueryService(store)
}

// newTeaOrder builds the canonical test order: A owns one 60 item, B owns a
// 40 and a 10 item.
func newTeaOrder(t *testing.T, svc *LedgerService) int64 {
	t.Helper()
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, "50嵐", "user_A", "", "afternoon tea")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, orderID, "user_A", "珍奶微糖", 60, 1, "", "")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, orderID, "user_B", "紅茶去冰", 40, 1, "", "")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, orderID, "user_B", "波霸", 10, 1, "add-on", "")
	require.NoError(t, err)

	return orderID
}

func billTotals(t *testing.T, queries *QueryService, orderID int64) map[string]models.BillParticipant {
	t.Helper()
	bill, err := queries.GetBill(context.Background(), orderID)
	require.NoError(t, err)

	out := make(map[string]models.BillParticipant, len(bill.Participants))
	for _, p := range bill.Participants {
		out[p.UserID] = p
	}
	return out
}

func TestCreateOrderDefaultsPayerToCreator(t *testing.T) {
	svc, queries := newServices(t)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, "bento", "alice", "", "")
	require.NoError(t, err)

	bill, err := queries.GetBill(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "alice", bill.Order.PayerID)
	assert.Equal(t, models.StatusOpen, bill.Order.Status)
}

func TestAddItemRecomputesTotals(t *testing.T) {
	svc, queries := newServices(t)
	orderID := newTeaOrder(t, svc)

	totals := billTotals(t, queries, orderID)
	require.Len(t, totals, 2)
	assert.Equal(t, int64(60), totals["user_A"].TotalDue)
	assert.Equal(t, int64(50), totals["user_B"].TotalDue)
	assert.Equal(t, int64(60), totals["user_A"].Subtotal)
	assert.Equal(t, int64(50), totals["user_B"].Subtotal)
}

func TestAddItemValidation(t *testing.T) {
	svc, _ := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, orderID, "user_A", "bad", 10, 0, "", "")
	assert.ErrorIs(t, err, ledger.ErrInvalidItem)

	_, err = svc.AddItem(ctx, orderID, "user_A", "bad", -1, 1, "", "")
	assert.ErrorIs(t, err, ledger.ErrInvalidItem)

	_, err = svc.AddItem(ctx, 404, "user_A", "tea", 10, 1, "", "")
	assert.ErrorIs(t, err, ledger.ErrOrderNotFound)
}

func TestSetDiscountPercent(t *testing.T) {
	svc, queries := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.SetDiscountPercent(ctx, orderID, 0.9))

	totals := billTotals(t, queries, orderID)
	assert.Equal(t, int64(54), totals["user_A"].TotalDue)
	assert.Equal(t, int64(45), totals["user_B"].TotalDue)
	// Subtotals are untouched by the discount.
	assert.Equal(t, int64(60), totals["user_A"].Subtotal)
	assert.Equal(t, int64(50), totals["user_B"].Subtotal)
}

func TestSetDiscountPercentRejectsOutOfRange(t *testing.T) {
	svc, _ := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetDiscountPercent(ctx, orderID, 1.5), ledger.ErrInvalidDiscount)
	assert.ErrorIs(t, svc.SetDiscountPercent(ctx, orderID, -0.1), ledger.ErrInvalidDiscount)
}

func TestAdjustmentOnTopOfDiscount(t *testing.T) {
	svc, queries := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.SetDiscountPercent(ctx, orderID, 0.9))
	require.NoError(t, svc.SetAdjustment(ctx, orderID, 5, "user_A"))

	totals := billTotals(t, queries, orderID)
	assert.Equal(t, int64(59), totals["user_A"].TotalDue)
	assert.Equal(t, int64(50), totals["user_B"].TotalDue)
}

func TestNegativeAdjustmentClampsAtZero(t *testing.T) {
	svc, queries := newServices(t)
	orderID := newTeaOrder(t, svc)

	require.NoError(t, svc.SetAdjustment(context.Background(), orderID, -100, "user_A"))

	totals := billTotals(t, queries, orderID)
	assert.Equal(t, int64(0), totals["user_A"].TotalDue)
	assert.Equal(t, int64(0), totals["user_B"].TotalDue)
}

func TestSetAdjustmentCreatorOnly(t *testing.T) {
	svc, _ := newServices(t)
	orderID := newTeaOrder(t, svc)

	err := svc.SetAdjustment(context.Background(), orderID, 5, "user_B")
	assert.ErrorIs(t, err, ledger.ErrNotAuthorized)
}

func TestMarkPaidStickyAcrossRecompute(t *testing.T) {
	svc, queries := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.MarkPaid(ctx, orderID, "user_B", ""))

	before := billTotals(t, queries, orderID)["user_B"]
	require.True(t, before.Paid)
	require.NotZero(t, before.PaidAt)
	assert.Equal(t, "user_A", before.PaidTo, "paid_to defaults to the order payer")

	// Changing the discount recomputes total_due but leaves payment state alone.
	require.NoError(t, svc.SetDiscountPercent(ctx, orderID, 0.9))

	after := billTotals(t, queries, orderID)["user_B"]
	assert.Equal(t, int64(45), after.TotalDue)
	assert.True(t, after.Paid)
	assert.Equal(t, before.PaidAt, after.PaidAt)
	assert.Equal(t, before.PaidTo, after.PaidTo)
}

func TestMarkPaidThenAddItemKeepsPaidFlag(t *testing.T) {
	svc, queries := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.MarkPaid(ctx, orderID, "user_B", ""))
	_, err := svc.AddItem(ctx, orderID, "user_B", "cookie", 20, 1, "", "")
	require.NoError(t, err)

	p := billTotals(t, queries, orderID)["user_B"]
	assert.Equal(t, int64(70), p.TotalDue, "total follows the new subtotal")
	assert.True(t, p.Paid, "paid flag is not auto-reset")
}

func TestMarkPaidRequiresParticipant(t *testing.T) {
	svc, _ := newServices(t)
	orderID := newTeaOrder(t, svc)

	err := svc.MarkPaid(context.Background(), orderID, "user_C", "")
	assert.ErrorIs(t, err, ledger.ErrNoSuchParticipant)
}

func TestMarkPaidAllowedWhileLocked(t *testing.T) {
	svc, queries := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Lock(ctx, orderID, "user_A"))
	require.NoError(t, svc.MarkPaid(ctx, orderID, "user_B", ""))

	p := billTotals(t, queries, orderID)["user_B"]
	assert.True(t, p.Paid)
}

func TestLockBlocksMutations(t *testing.T) {
	svc, _ := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Lock(ctx, orderID, "user_A"))

	_, err := svc.AddItem(ctx, orderID, "user_A", "late", 10, 1, "", "")
	assert.ErrorIs(t, err, ledger.ErrOrderNotEditable)
	assert.ErrorIs(t, svc.SetDiscountPercent(ctx, orderID, 0.8), ledger.ErrOrderNotEditable)
	assert.ErrorIs(t, svc.SetAdjustment(ctx, orderID, 5, "user_A"), ledger.ErrOrderNotEditable)

	// Locking twice is a redundant transition.
	assert.ErrorIs(t, svc.Lock(ctx, orderID, "user_A"), ledger.ErrInvalidTransition)
}

func TestUnlockReopensOrder(t *testing.T) {
	svc, _ := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Lock(ctx, orderID, "user_A"))
	assert.ErrorIs(t, svc.Unlock(ctx, orderID, "user_B"), ledger.ErrNotAuthorized)
	require.NoError(t, svc.Unlock(ctx, orderID, "user_A"))

	_, err := svc.AddItem(ctx, orderID, "user_A", "again", 10, 1, "", "")
	assert.NoError(t, err)
}

func TestCancelFreezesOrder(t *testing.T) {
	svc, queries := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	before := billTotals(t, queries, orderID)

	assert.ErrorIs(t, svc.Cancel(ctx, orderID, "user_B"), ledger.ErrNotAuthorized)
	require.NoError(t, svc.Cancel(ctx, orderID, "user_A"))

	_, err := svc.AddItem(ctx, orderID, "user_A", "late", 10, 1, "", "")
	assert.ErrorIs(t, err, ledger.ErrOrderNotEditable)
	assert.ErrorIs(t, svc.SetDiscountPercent(ctx, orderID, 0.5), ledger.ErrOrderNotEditable)
	assert.ErrorIs(t, svc.Cancel(ctx, orderID, "user_A"), ledger.ErrAlreadyCancelled)
	assert.ErrorIs(t, svc.Lock(ctx, orderID, "user_A"), ledger.ErrAlreadyCancelled)
	assert.ErrorIs(t, svc.Unlock(ctx, orderID, "user_A"), ledger.ErrAlreadyCancelled)

	// Historical rows remain, untouched by the read-path recompute.
	after := billTotals(t, queries, orderID)
	assert.Equal(t, before["user_A"].TotalDue, after["user_A"].TotalDue)
	assert.Equal(t, before["user_B"].TotalDue, after["user_B"].TotalDue)
}

func TestCancelReachableFromLocked(t *testing.T) {
	svc, _ := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Lock(ctx, orderID, "user_A"))
	require.NoError(t, svc.Cancel(ctx, orderID, "user_A"))
}

func TestRecomputeIdempotentOnRepeatedReads(t *testing.T) {
	svc, queries := newServices(t)
	orderID := newTeaOrder(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.SetDiscountPercent(ctx, orderID, 0.9))
	require.NoError(t, svc.MarkPaid(ctx, orderID, "user_B", ""))

	// Each GetBill forces a recompute pass; the result must not drift.
	first, err := queries.GetBill(ctx, orderID)
	require.NoError(t, err)
	second, err := queries.GetBill(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, first.Participants, second.Participants)
}
