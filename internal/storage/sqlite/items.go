package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sunny0223day/accountingbot/internal/models"
)

// InsertItem persists a new line item and writes the assigned ID and
// CreatedAt back into the model.
func (t *sqliteTx) InsertItem(ctx context.Context, item *models.LineItem) error {
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}
	if item.CreatedBy == "" {
		item.CreatedBy = item.UserID
	}

	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO line_items (order_id, user_id, name, unit_price, qty, note, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.OrderID, item.UserID, item.Name, item.UnitPrice, item.Qty,
		item.Note, item.CreatedBy, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert line item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read item id: %w", err)
	}
	item.ID = id
	return nil
}

// ListItems returns all line items of an order, ordered by (user id, item id).
func (t *sqliteTx) ListItems(ctx context.Context, orderID int64) ([]models.LineItem, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT item_id, order_id, user_id, name, unit_price, qty, note, created_by, created_at
		 FROM line_items
		 WHERE order_id = ?
		 ORDER BY user_id, item_id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var li models.LineItem
		if err := rows.Scan(&li.ID, &li.OrderID, &li.UserID, &li.Name,
			&li.UnitPrice, &li.Qty, &li.Note, &li.CreatedBy, &li.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return items, nil
}
