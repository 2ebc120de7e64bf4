// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/sunny0223day/accountingbot/internal/models"
)

// Store defines the interface for order, item and participant persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, ...)
// without changing the service layer.
//
// Every mutation — including the recomputation it triggers — runs inside a
// single RunInTx call: it either commits fully or rolls back entirely.
// Concurrent transactions against the same order serialize on the database;
// the service layer holds no in-memory ledger state.
type Store interface {
	// RunInTx runs fn inside a transaction. If fn returns an error the
	// transaction is rolled back and the error is returned unchanged.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	// UnpaidByUser lists a user's unpaid participations across all
	// non-cancelled orders, newest order first. A zero limit means no limit.
	UnpaidByUser(ctx context.Context, userID string, limit int) ([]models.DebtEntry, error)

	// PaidRecentByUser lists a user's settled participations across all
	// non-cancelled orders, most recently paid first.
	PaidRecentByUser(ctx context.Context, userID string, limit int) ([]models.PaidEntry, error)

	// CreatedOrdersByUser lists non-cancelled orders the user created,
	// newest first, with people counts and post-discount totals.
	CreatedOrdersByUser(ctx context.Context, userID string, limit int) ([]models.CreatedOrderSummary, error)

	// SearchOrders lists non-cancelled orders whose id or vendor matches
	// the keyword as a substring, newest first. An empty keyword matches
	// everything.
	SearchOrders(ctx context.Context, keyword string, limit int) ([]models.Order, error)

	// Close releases any resources held by the store.
	Close() error
}

// Tx is the set of operations available inside a transaction.
type Tx interface {
	// CreateOrder persists a new order. ID and CreatedAt are assigned by
	// the store and written back into the model.
	CreateOrder(ctx context.Context, order *models.Order) error

	// GetOrder retrieves an order by id. Returns an error wrapping
	// ledger.ErrOrderNotFound if it does not exist.
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)

	// UpdateOrderStatus sets the lifecycle status.
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error

	// UpdateOrderDiscount sets the pricing rule.
	UpdateOrderDiscount(ctx context.Context, orderID int64, kind models.DiscountKind, value float64) error

	// UpdateOrderAdjustment sets the per-person flat adjustment.
	UpdateOrderAdjustment(ctx context.Context, orderID int64, adjustment int64) error

	// InsertItem persists a new line item. ID and CreatedAt are assigned
	// by the store and written back into the model.
	InsertItem(ctx context.Context, item *models.LineItem) error

	// ListItems returns all line items of an order, ordered by
	// (user id, item id).
	ListItems(ctx context.Context, orderID int64) ([]models.LineItem, error)

	// ListParticipants returns all participant rows of an order, ordered
	// by user id.
	ListParticipants(ctx context.Context, orderID int64) ([]models.Participant, error)

	// UpsertParticipantTotal writes a participant's recomputed TotalDue.
	// A new row starts unpaid; an existing row keeps its payment fields.
	UpsertParticipantTotal(ctx context.Context, orderID int64, userID string, totalDue int64) error

	// DeleteStaleParticipants removes participant rows for users who own
	// no line items in the order.
	DeleteStaleParticipants(ctx context.Context, orderID int64) error

	// MarkParticipantPaid sets the sticky payment fields on a participant
	// row. Returns false if the row does not exist.
	MarkParticipantPaid(ctx context.Context, orderID int64, userID, paidTo string, paidAt int64) (bool, error)
}
