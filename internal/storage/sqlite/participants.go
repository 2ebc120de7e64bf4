package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sunny0223day/accountingbot/internal/models"
)

// ListParticipants returns all participant rows of an order, ordered by user id.
func (t *sqliteTx) ListParticipants(ctx context.Context, orderID int64) ([]models.Participant, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT order_id, user_id, total_due, paid, paid_at, paid_to
		 FROM participants
		 WHERE order_id = ?
		 ORDER BY user_id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		var paidAt sql.NullInt64
		var paidTo sql.NullString
		if err := rows.Scan(&p.OrderID, &p.UserID, &p.TotalDue, &p.Paid, &paidAt, &paidTo); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.PaidAt = paidAt.Int64
		p.PaidTo = paidTo.String
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// UpsertParticipantTotal writes a recomputed TotalDue. New rows start unpaid;
// the ON CONFLICT clause updates total_due only, so payment fields on
// existing rows are never touched by recomputation.
func (t *sqliteTx) UpsertParticipantTotal(ctx context.Context, orderID int64, userID string, totalDue int64) error {
	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO participants (order_id, user_id, total_due, paid, paid_at, paid_to)
		 VALUES (?, ?, ?, 0, NULL, NULL)
		 ON CONFLICT(order_id, user_id)
		 DO UPDATE SET total_due = excluded.total_due`,
		orderID, userID, totalDue,
	); err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

// DeleteStaleParticipants removes rows for users who own no line items in
// the order.
func (t *sqliteTx) DeleteStaleParticipants(ctx context.Context, orderID int64) error {
	if _, err := t.tx.ExecContext(ctx,
		`DELETE FROM participants
		 WHERE order_id = ?
		   AND user_id NOT IN (
		     SELECT DISTINCT user_id FROM line_items WHERE order_id = ?
		   )`,
		orderID, orderID,
	); err != nil {
		return fmt.Errorf("failed to delete stale participants: %w", err)
	}
	return nil
}

// MarkParticipantPaid sets the sticky payment fields. Returns false if the
// participant row does not exist.
func (t *sqliteTx) MarkParticipantPaid(ctx context.Context, orderID int64, userID, paidTo string, paidAt int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE participants
		 SET paid = 1, paid_at = ?, paid_to = ?
		 WHERE order_id = ? AND user_id = ?`,
		paidAt, paidTo, orderID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark participant paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
