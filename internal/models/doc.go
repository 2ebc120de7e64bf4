// Package models defines the core domain models for the accounting ledger.
//
// # Models
//
//   - Order: a group order with a pricing rule and a lifecycle status
//   - LineItem: a single purchased item, owned by one user within an order
//   - Participant: one user's derived share of an order
//
// Users are identified by opaque string IDs throughout. Resolving an ID to a
// display name is the front end's concern; this package never models user
// accounts.
//
// # Derived state
//
// Participant rows are a projection of the LineItems of an order: a row
// exists for an (order, user) pair exactly when that user owns at least one
// item in the order. TotalDue is recomputed from scratch on every pass
// (see the ledger package); the payment fields (Paid, PaidAt, PaidTo) are
// sticky and survive recomputation.
package models
