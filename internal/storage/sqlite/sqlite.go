// Package sqlite provides a SQLite-backed implementation of the storage.Store
// interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/sunny0223day/accountingbot/internal/models"
	"github.com/sunny0223day/accountingbot/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// _txlock=immediate makes write transactions take the database lock at
	// BEGIN, so concurrent mutations against the same order serialize at
	// transaction start instead of failing mid-way with SQLITE_BUSY.
	db, err := sql.Open("sqlite", dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RunInTx runs fn inside a single transaction, rolling back on error.
func (s *SQLiteStore) RunInTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqliteTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// sqliteTx implements storage.Tx on top of a *sql.Tx.
type sqliteTx struct {
	tx *sql.Tx
}

var _ storage.Tx = (*sqliteTx)(nil)

// UnpaidByUser lists a user's unpaid participations across non-cancelled
// orders, newest order first.
func (s *SQLiteStore) UnpaidByUser(ctx context.Context, userID string, limit int) ([]models.DebtEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.order_id, o.vendor, o.payer_id, o.created_at, p.total_due
		 FROM participants p
		 JOIN orders o ON o.order_id = p.order_id
		 WHERE p.user_id = ?
		   AND o.status != 'cancelled'
		   AND p.paid = 0
		 ORDER BY o.created_at DESC, o.order_id DESC
		 LIMIT ?`,
		userID, normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unpaid participations: %w", err)
	}
	defer rows.Close()

	var entries []models.DebtEntry
	for rows.Next() {
		var e models.DebtEntry
		if err := rows.Scan(&e.OrderID, &e.Vendor, &e.PayerID, &e.CreatedAt, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan debt entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debt entries: %w", err)
	}
	return entries, nil
}

// PaidRecentByUser lists a user's settled participations, most recently paid
// first, with order creation time breaking ties.
func (s *SQLiteStore) PaidRecentByUser(ctx context.Context, userID string, limit int) ([]models.PaidEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.order_id, o.vendor, o.payer_id, o.created_at, p.total_due, p.paid_at
		 FROM participants p
		 JOIN orders o ON o.order_id = p.order_id
		 WHERE p.user_id = ?
		   AND o.status != 'cancelled'
		   AND p.paid = 1
		 ORDER BY p.paid_at DESC, o.created_at DESC
		 LIMIT ?`,
		userID, normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query paid participations: %w", err)
	}
	defer rows.Close()

	var entries []models.PaidEntry
	for rows.Next() {
		var e models.PaidEntry
		var paidAt sql.NullInt64
		if err := rows.Scan(&e.OrderID, &e.Vendor, &e.PayerID, &e.CreatedAt, &e.Amount, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan paid entry: %w", err)
		}
		e.PaidAt = paidAt.Int64
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate paid entries: %w", err)
	}
	return entries, nil
}

// CreatedOrdersByUser lists non-cancelled orders created by the user, newest
// first, with distinct-owner counts and post-discount totals.
func (s *SQLiteStore) CreatedOrdersByUser(ctx context.Context, userID string, limit int) ([]models.CreatedOrderSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+`,
		        (SELECT COUNT(DISTINCT li.user_id)
		           FROM line_items li
		          WHERE li.order_id = o.order_id) AS people_count,
		        (SELECT COALESCE(SUM(p.total_due), 0)
		           FROM participants p
		          WHERE p.order_id = o.order_id) AS total_after_discount
		 FROM orders o
		 WHERE o.creator_id = ?
		   AND o.status != 'cancelled'
		 ORDER BY o.created_at DESC, o.order_id DESC
		 LIMIT ?`,
		userID, normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query created orders: %w", err)
	}
	defer rows.Close()

	var summaries []models.CreatedOrderSummary
	for rows.Next() {
		var summary models.CreatedOrderSummary
		if err := scanOrder(rows, &summary.Order, &summary.PeopleCount, &summary.TotalAfterDiscount); err != nil {
			return nil, fmt.Errorf("failed to scan created order: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate created orders: %w", err)
	}
	return summaries, nil
}

// SearchOrders lists non-cancelled orders matching the keyword against the
// order id or vendor, newest first. An empty keyword matches everything.
func (s *SQLiteStore) SearchOrders(ctx context.Context, keyword string, limit int) ([]models.Order, error) {
	kw := "%" + keyword + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 WHERE o.status != 'cancelled'
		   AND (CAST(o.order_id AS TEXT) LIKE ? OR o.vendor LIKE ?)
		 ORDER BY o.order_id DESC
		 LIMIT ?`,
		kw, kw, normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// normalizeLimit turns "no limit" into a value SQLite treats as unbounded.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
