package service

import (
	"context"
	"log/slog"

	"github.com/sunny0223day/accountingbot/internal/ledger"
	"github.com/sunny0223day/accountingbot/internal/models"
	"github.com/sunny0223day/accountingbot/internal/storage"
)

// QueryService implements the read-side views. The single-order bill view
// forces a recomputation pass before serving, so derived totals are never
// stale on read.
type QueryService struct {
	store storage.Store
}

// NewQueryService creates a QueryService with the given storage backend.
func NewQueryService(store storage.Store) *QueryService {
	return &QueryService{store: store}
}

// GetBill returns the full bill of one order: metadata plus, per participant,
// subtotal, amount due, payment state, and their line items. Participants are
// ordered by user id.
func (s *QueryService) GetBill(ctx context.Context, orderID int64) (*models.Bill, error) {
	var bill models.Bill

	err := s.store.RunInTx(ctx, func(tx storage.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := recalcTx(ctx, tx, order); err != nil {
			return err
		}

		items, err := tx.ListItems(ctx, orderID)
		if err != nil {
			return err
		}
		participants, err := tx.ListParticipants(ctx, orderID)
		if err != nil {
			return err
		}

		bill = assembleBill(order, items, participants)
		return nil
	})
	if err != nil {
		if !ledger.IsNotFound(err) {
			slog.Error("GetBill failed", "order_id", orderID, "error", err)
		}
		return nil, err
	}
	return &bill, nil
}

// assembleBill joins participant rows with their items and an independently
// recomputed subtotal per user.
func assembleBill(order *models.Order, items []models.LineItem, participants []models.Participant) models.Bill {
	itemsByUser := make(map[string][]models.LineItem)
	for _, li := range items {
		itemsByUser[li.UserID] = append(itemsByUser[li.UserID], li)
	}
	subtotals := ledger.Subtotals(items)

	out := make([]models.BillParticipant, 0, len(participants))
	for _, p := range participants {
		out = append(out, models.BillParticipant{
			UserID:   p.UserID,
			Subtotal: subtotals[p.UserID],
			TotalDue: p.TotalDue,
			Paid:     p.Paid,
			PaidAt:   p.PaidAt,
			PaidTo:   p.PaidTo,
			Items:    itemsByUser[p.UserID],
		})
	}

	return models.Bill{Order: *order, Participants: out}
}

// GetUserDebt returns how much a user still owes across all non-cancelled
// orders, itemized newest order first. No debt is not an error: the result
// is simply empty.
func (s *QueryService) GetUserDebt(ctx context.Context, userID string) (*models.Debt, error) {
	entries, err := s.store.UnpaidByUser(ctx, userID, 0)
	if err != nil {
		slog.Error("GetUserDebt failed", "user_id", userID, "error", err)
		return nil, err
	}

	debt := &models.Debt{UserID: userID, Details: entries}
	for _, e := range entries {
		debt.TotalDebt += e.Amount
	}
	return debt, nil
}

// GetUserOverview returns a user's dashboard: unpaid participations, recent
// settlements, and orders they created, each capped at limit entries.
func (s *QueryService) GetUserOverview(ctx context.Context, userID string, limit int) (*models.Overview, error) {
	unpaid, err := s.store.UnpaidByUser(ctx, userID, limit)
	if err != nil {
		slog.Error("GetUserOverview failed", "user_id", userID, "error", err)
		return nil, err
	}
	paid, err := s.store.PaidRecentByUser(ctx, userID, limit)
	if err != nil {
		slog.Error("GetUserOverview failed", "user_id", userID, "error", err)
		return nil, err
	}
	mine, err := s.store.CreatedOrdersByUser(ctx, userID, limit)
	if err != nil {
		slog.Error("GetUserOverview failed", "user_id", userID, "error", err)
		return nil, err
	}

	return &models.Overview{
		UserID:     userID,
		Unpaid:     unpaid,
		PaidRecent: paid,
		MyOrders:   mine,
	}, nil
}

// SearchOrders lists non-cancelled orders for a picker, newest first. The
// keyword matches the order id as text or the vendor as a substring; empty
// matches everything.
func (s *QueryService) SearchOrders(ctx context.Context, keyword string, limit int) ([]models.Order, error) {
	orders, err := s.store.SearchOrders(ctx, keyword, limit)
	if err != nil {
		slog.Error("SearchOrders failed", "keyword", keyword, "error", err)
		return nil, err
	}
	return orders, nil
}
