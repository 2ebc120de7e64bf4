package models

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// StatusOpen allows new items and pricing changes.
	StatusOpen OrderStatus = "open"
	// StatusLocked blocks items and pricing changes; payments are still allowed.
	StatusLocked OrderStatus = "locked"
	// StatusCancelled is terminal. The ledger is frozen and the order is
	// excluded from debt and overview queries.
	StatusCancelled OrderStatus = "cancelled"
)

// DiscountKind selects how the order-level discount is applied to each
// participant's subtotal.
type DiscountKind string

const (
	// DiscountNone leaves subtotals unchanged.
	DiscountNone DiscountKind = "none"
	// DiscountPercent multiplies each subtotal by the discount value
	// (0.9 means "pay 90%"), rounding half to even.
	DiscountPercent DiscountKind = "percent"
	// DiscountAmount is a fixed-amount discount. Allocation rules are
	// undecided (proportional? equal? payer-only?), so it is stored but
	// deliberately not applied.
	DiscountAmount DiscountKind = "amount"
)

// Order represents a group order.
type Order struct {
	// ID is the unique identifier, assigned by the store.
	ID int64 `json:"order_id"`

	// Vendor is the shop label (e.g., "50嵐").
	Vendor string `json:"vendor"`

	// Note is free text attached by the creator.
	Note string `json:"note"`

	// CreatorID is the user who opened the order. Lifecycle transitions
	// and adjustment changes are restricted to this user.
	CreatorID string `json:"creator_id"`

	// PayerID is the user who fronted the money. Defaults to CreatorID.
	// Payments are recorded against this user unless overridden.
	PayerID string `json:"payer_id"`

	// DiscountKind and DiscountValue form the order-level pricing rule.
	DiscountKind  DiscountKind `json:"discount_kind"`
	DiscountValue float64      `json:"discount_value"`

	// Adjustment is a flat signed amount added to every participant's
	// discounted subtotal (delivery fee split, rounding correction, ...).
	Adjustment int64 `json:"adjustment"`

	// Status is the lifecycle state.
	Status OrderStatus `json:"status"`

	// CreatedAt is the Unix timestamp when the order was created.
	CreatedAt int64 `json:"created_at"`
}

// Editable reports whether subtotal-affecting mutations (items, discount,
// adjustment) are currently permitted.
func (o *Order) Editable() bool {
	return o.Status == StatusOpen
}

// LineItem represents a single item within an order. Items are append-only:
// there is no edit or remove operation.
type LineItem struct {
	// ID is the unique identifier, assigned by the store.
	ID int64 `json:"item_id"`

	// OrderID is the parent order.
	OrderID int64 `json:"order_id"`

	// UserID is the user who owes for this item.
	UserID string `json:"user_id"`

	// Name describes the item (e.g., "珍奶微糖").
	Name string `json:"name"`

	// UnitPrice is the integer price per unit. Never negative.
	UnitPrice int64 `json:"unit_price"`

	// Qty is the unit count. Always positive.
	Qty int64 `json:"qty"`

	// Note is free text (e.g., "less ice").
	Note string `json:"note"`

	// CreatedBy is the user who entered the item; defaults to UserID.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the Unix timestamp when the item was added.
	CreatedAt int64 `json:"created_at"`
}

// LineTotal is the item's contribution to its owner's subtotal.
func (li *LineItem) LineTotal() int64 {
	return li.UnitPrice * li.Qty
}

// Participant is one user's derived share of an order, keyed by
// (OrderID, UserID).
type Participant struct {
	OrderID int64
	UserID  string

	// TotalDue is the derived amount owed: max(0, discount(subtotal) + adjustment).
	TotalDue int64

	// Paid, PaidAt and PaidTo are sticky payment state. They are set only
	// by the mark-paid operation and are never touched by recomputation.
	// PaidAt is a Unix timestamp, zero while unpaid. PaidTo is the user
	// who received the money, empty while unpaid.
	Paid   bool
	PaidAt int64
	PaidTo string
}
