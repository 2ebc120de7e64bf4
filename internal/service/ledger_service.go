// Package service implements the ledger operations on top of a storage.Store.
// Every mutation runs as one transaction: lifecycle guard, write, and the
// participant recomputation it triggers all commit together or not at all.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sunny0223day/accountingbot/internal/ledger"
	"github.com/sunny0223day/accountingbot/internal/metrics"
	"github.com/sunny0223day/accountingbot/internal/models"
	"github.com/sunny0223day/accountingbot/internal/storage"
)

// LedgerService implements the mutation side: orders, items, pricing rules,
// lifecycle transitions and payments.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// recalcTx recomputes the participant rows of an order inside the current
// transaction. Derived totals are rewritten, payment state is left alone, and
// rows for users without items are purged. Cancelled orders are frozen: the
// pass is a deliberate no-op.
func recalcTx(ctx context.Context, tx storage.Tx, order *models.Order) error {
	if order.Status == models.StatusCancelled {
		return nil
	}

	start := time.Now()

	items, err := tx.ListItems(ctx, order.ID)
	if err != nil {
		return err
	}

	rows := ledger.Recalculate(order, items, nil)
	for _, row := range rows {
		if err := tx.UpsertParticipantTotal(ctx, order.ID, row.UserID, row.TotalDue); err != nil {
			return err
		}
	}
	if err := tx.DeleteStaleParticipants(ctx, order.ID); err != nil {
		return err
	}

	metrics.RecomputeTotal.Inc()
	metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	return nil
}

// CreateOrder opens a new order. PayerID defaults to the creator.
func (s *LedgerService) CreateOrder(ctx context.Context, vendor, creatorID, payerID, note string) (int64, error) {
	order := &models.Order{
		Vendor:    vendor,
		Note:      note,
		CreatorID: creatorID,
		PayerID:   payerID,
	}

	err := s.store.RunInTx(ctx, func(tx storage.Tx) error {
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		slog.Error("CreateOrder failed", "vendor", vendor, "creator_id", creatorID, "error", err)
		return 0, err
	}

	metrics.OrdersCreatedTotal.Inc()
	slog.Info("Order created", "order_id", order.ID, "vendor", vendor, "creator_id", creatorID)
	return order.ID, nil
}

// AddItem appends a line item to an open order and recomputes the ledger.
// CreatedBy defaults to the item owner.
func (s *LedgerService) AddItem(ctx context.Context, orderID int64, userID, name string, unitPrice, qty int64, note, createdBy string) (int64, error) {
	if err := ledger.ValidateItem(unitPrice, qty); err != nil {
		metrics.MutationsRejectedTotal.WithLabelValues("add_item").Inc()
		return 0, err
	}

	item := &models.LineItem{
		OrderID:   orderID,
		UserID:    userID,
		Name:      name,
		UnitPrice: unitPrice,
		Qty:       qty,
		Note:      note,
		CreatedBy: createdBy,
	}

	err := s.store.RunInTx(ctx, func(tx storage.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := ledger.CanAddItem(order); err != nil {
			return err
		}
		if err := tx.InsertItem(ctx, item); err != nil {
			return err
		}
		return recalcTx(ctx, tx, order)
	})
	if err != nil {
		if ledger.IsClientError(err) {
			metrics.MutationsRejectedTotal.WithLabelValues("add_item").Inc()
		}
		slog.Warn("AddItem rejected", "order_id", orderID, "user_id", userID, "error", err)
		return 0, err
	}

	metrics.ItemsAddedTotal.Inc()
	slog.Info("Item added",
		"order_id", orderID,
		"item_id", item.ID,
		"user_id", userID,
		"line_total", item.LineTotal(),
	)
	return item.ID, nil
}

// SetDiscountPercent sets the order-level percent discount (0.9 = pay 90%)
// and recomputes the ledger.
func (s *LedgerService) SetDiscountPercent(ctx context.Context, orderID int64, percent float64) error {
	if err := ledger.ValidatePercent(percent); err != nil {
		metrics.MutationsRejectedTotal.WithLabelValues("set_discount").Inc()
		return err
	}

	err := s.store.RunInTx(ctx, func(tx storage.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := ledger.CanSetDiscount(order); err != nil {
			return err
		}
		if err := tx.UpdateOrderDiscount(ctx, orderID, models.DiscountPercent, percent); err != nil {
			return err
		}
		order.DiscountKind = models.DiscountPercent
		order.DiscountValue = percent
		return recalcTx(ctx, tx, order)
	})
	if err != nil {
		if ledger.IsClientError(err) {
			metrics.MutationsRejectedTotal.WithLabelValues("set_discount").Inc()
		}
		slog.Warn("SetDiscountPercent rejected", "order_id", orderID, "percent", percent, "error", err)
		return err
	}

	slog.Info("Discount set", "order_id", orderID, "percent", percent)
	return nil
}

// SetAdjustment sets the flat per-person adjustment and recomputes the
// ledger. Creator-only.
func (s *LedgerService) SetAdjustment(ctx context.Context, orderID, adjustment int64, actorID string) error {
	err := s.store.RunInTx(ctx, func(tx storage.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := ledger.CanSetAdjustment(order, actorID); err != nil {
			return err
		}
		if err := tx.UpdateOrderAdjustment(ctx, orderID, adjustment); err != nil {
			return err
		}
		order.Adjustment = adjustment
		return recalcTx(ctx, tx, order)
	})
	if err != nil {
		if ledger.IsClientError(err) {
			metrics.MutationsRejectedTotal.WithLabelValues("set_adjustment").Inc()
		}
		slog.Warn("SetAdjustment rejected", "order_id", orderID, "actor_id", actorID, "error", err)
		return err
	}

	slog.Info("Adjustment set", "order_id", orderID, "adjustment", adjustment)
	return nil
}

// Lock closes an order for new items and pricing changes. Creator-only.
func (s *LedgerService) Lock(ctx context.Context, orderID int64, actorID string) error {
	return s.transition(ctx, orderID, actorID, models.StatusLocked, ledger.CanLock)
}

// Unlock resets a non-cancelled order back to open. Creator-only.
func (s *LedgerService) Unlock(ctx context.Context, orderID int64, actorID string) error {
	return s.transition(ctx, orderID, actorID, models.StatusOpen, ledger.CanUnlock)
}

// Cancel voids an order permanently. The ledger is frozen: no recomputation
// ever runs again, and the order drops out of debt and overview queries.
// Creator-only.
func (s *LedgerService) Cancel(ctx context.Context, orderID int64, actorID string) error {
	return s.transition(ctx, orderID, actorID, models.StatusCancelled, ledger.CanCancel)
}

func (s *LedgerService) transition(ctx context.Context, orderID int64, actorID string, to models.OrderStatus, guard func(*models.Order, string) error) error {
	err := s.store.RunInTx(ctx, func(tx storage.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := guard(order, actorID); err != nil {
			return err
		}
		return tx.UpdateOrderStatus(ctx, orderID, to)
	})
	if err != nil {
		if ledger.IsClientError(err) {
			metrics.MutationsRejectedTotal.WithLabelValues("transition").Inc()
		}
		slog.Warn("Status transition rejected", "order_id", orderID, "to", to, "actor_id", actorID, "error", err)
		return err
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues(string(to)).Inc()
	slog.Info("Status changed", "order_id", orderID, "to", to, "actor_id", actorID)
	return nil
}

// MarkPaid records that a user settled their share. PaidTo defaults to the
// order's payer. A recomputation pass runs first so the participant row
// exists before the check; payment is allowed regardless of lock status.
func (s *LedgerService) MarkPaid(ctx context.Context, orderID int64, userID, paidTo string) error {
	err := s.store.RunInTx(ctx, func(tx storage.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := recalcTx(ctx, tx, order); err != nil {
			return err
		}

		if paidTo == "" {
			paidTo = order.PayerID
		}

		ok, err := tx.MarkParticipantPaid(ctx, orderID, userID, paidTo, time.Now().Unix())
		if err != nil {
			return err
		}
		if !ok {
			return ledger.ErrNoSuchParticipant
		}
		return nil
	})
	if err != nil {
		if ledger.IsClientError(err) {
			metrics.MutationsRejectedTotal.WithLabelValues("mark_paid").Inc()
		}
		slog.Warn("MarkPaid rejected", "order_id", orderID, "user_id", userID, "error", err)
		return err
	}

	metrics.PaymentsMarkedTotal.Inc()
	slog.Info("Participant paid", "order_id", orderID, "user_id", userID, "paid_to", paidTo)
	return nil
}
