package models

// Read-side view rows returned by the query facade. These are join results,
// not stored entities.

// DebtEntry is one unpaid participation of a user, joined with its order.
type DebtEntry struct {
	OrderID   int64  `json:"order_id"`
	Vendor    string `json:"vendor"`
	PayerID   string `json:"payer_id"`
	CreatedAt int64  `json:"created_at"`
	Amount    int64  `json:"amount"`
}

// PaidEntry is one settled participation of a user, joined with its order.
type PaidEntry struct {
	OrderID   int64  `json:"order_id"`
	Vendor    string `json:"vendor"`
	PayerID   string `json:"payer_id"`
	CreatedAt int64  `json:"created_at"`
	Amount    int64  `json:"amount"`
	PaidAt    int64  `json:"paid_at"`
}

// CreatedOrderSummary is one order a user created, with aggregate figures.
type CreatedOrderSummary struct {
	Order

	// PeopleCount is the number of distinct item owners.
	PeopleCount int64 `json:"people_count"`

	// TotalAfterDiscount is the sum of participant TotalDue.
	TotalAfterDiscount int64 `json:"total_after_discount"`
}

// BillParticipant is one participant's slice of a bill view.
type BillParticipant struct {
	UserID   string     `json:"user_id"`
	Subtotal int64      `json:"subtotal"`
	TotalDue int64      `json:"total_due"`
	Paid     bool       `json:"paid"`
	PaidAt   int64      `json:"paid_at,omitempty"`
	PaidTo   string     `json:"paid_to,omitempty"`
	Items    []LineItem `json:"items"`
}

// Bill is the full single-order view: order metadata plus per-participant
// breakdown, participants ordered by user id.
type Bill struct {
	Order        Order             `json:"order"`
	Participants []BillParticipant `json:"participants"`
}

// Debt is a user's outstanding total with its itemization, newest order first.
type Debt struct {
	UserID    string      `json:"user_id"`
	TotalDebt int64       `json:"total_debt"`
	Details   []DebtEntry `json:"details"`
}

// Overview is a user's dashboard: open debts, recent settlements, and the
// orders they created. Cancelled orders never appear.
type Overview struct {
	UserID     string                `json:"user_id"`
	Unpaid     []DebtEntry           `json:"unpaid"`
	PaidRecent []PaidEntry           `json:"paid_recent"`
	MyOrders   []CreatedOrderSummary `json:"my_orders"`
}
