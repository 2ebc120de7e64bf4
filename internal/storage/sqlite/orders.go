package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sunny0223day/accountingbot/internal/ledger"
	"github.com/sunny0223day/accountingbot/internal/models"
)

// orderColumns is the SELECT list shared by every order query; scanOrder
// must scan exactly these columns, in this sequence.
const orderColumns = `o.order_id, o.vendor, o.note, o.creator_id, o.payer_id,
	o.discount_type, o.discount_value, o.adjustment, o.status, o.created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner, o *models.Order, extra ...any) error {
	dest := []any{
		&o.ID, &o.Vendor, &o.Note, &o.CreatorID, &o.PayerID,
		&o.DiscountKind, &o.DiscountValue, &o.Adjustment, &o.Status, &o.CreatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

// CreateOrder persists a new order and writes the assigned ID and CreatedAt
// back into the model.
func (t *sqliteTx) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.CreatedAt == 0 {
		order.CreatedAt = time.Now().Unix()
	}
	if order.PayerID == "" {
		order.PayerID = order.CreatorID
	}
	if order.DiscountKind == "" {
		order.DiscountKind = models.DiscountNone
	}
	if order.Status == "" {
		order.Status = models.StatusOpen
	}

	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO orders (vendor, note, creator_id, payer_id, discount_type, discount_value, adjustment, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.Vendor, order.Note, order.CreatorID, order.PayerID,
		order.DiscountKind, order.DiscountValue, order.Adjustment, order.Status, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read order id: %w", err)
	}
	order.ID = id
	return nil
}

// GetOrder retrieves an order by id.
func (t *sqliteTx) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order := &models.Order{}
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.order_id = ?`, orderID)
	if err := scanOrder(row, order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ledger.NotFoundError{OrderID: orderID}
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// UpdateOrderStatus sets the lifecycle status.
func (t *sqliteTx) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	if _, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET status = ? WHERE order_id = ?", status, orderID); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// UpdateOrderDiscount sets the pricing rule.
func (t *sqliteTx) UpdateOrderDiscount(ctx context.Context, orderID int64, kind models.DiscountKind, value float64) error {
	if _, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET discount_type = ?, discount_value = ? WHERE order_id = ?",
		kind, value, orderID); err != nil {
		return fmt.Errorf("failed to update order discount: %w", err)
	}
	return nil
}

// UpdateOrderAdjustment sets the per-person flat adjustment.
func (t *sqliteTx) UpdateOrderAdjustment(ctx context.Context, orderID int64, adjustment int64) error {
	if _, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET adjustment = ? WHERE order_id = ?", adjustment, orderID); err != nil {
		return fmt.Errorf("failed to update order adjustment: %w", err)
	}
	return nil
}
