package model

import "time"

// OrderStatus enumerates the states of the order preparation pipeline.
// Orders only ever move forward through the pipeline; cancellation is
// the single exception and is only reachable before the kitchen has
// finished the order.
type OrderStatus string

const (
    StatusPending   OrderStatus = "pending"   // created, kitchen has not started
    StatusPreparing OrderStatus = "preparing" // kitchen is working on it
    StatusReady     OrderStatus = "ready"     // kitchen finished, awaiting delivery
    StatusDelivered OrderStatus = "delivered" // handed off to the table
    StatusCancelled OrderStatus = "cancelled" // terminal, entered from pending or preparing
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
    switch s {
    case StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
        return true
    }
    return false
}

// CanAdvance reports whether moving from one status to target is a legal
// forward transition.  The transition graph is:
//
//  pending -> preparing -> ready -> delivered
//  pending -> cancelled
//  preparing -> cancelled
//
// Everything else, including any backwards move and any move out of a
// terminal state, is rejected.
func (s OrderStatus) CanAdvance(target OrderStatus) bool {
    switch s {
    case StatusPending:
        return target == StatusPreparing || target == StatusCancelled
    case StatusPreparing:
        return target == StatusReady || target == StatusCancelled
    case StatusReady:
        return target == StatusDelivered
    }
    return false
}

// IsActive reports whether an order in this status still occupies its
// table.  Table occupancy derivation counts exactly these statuses.
func (s OrderStatus) IsActive() bool {
    return s == StatusPending || s == StatusPreparing || s == StatusReady
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
    return s == StatusDelivered || s == StatusCancelled
}

// Rank maps a status to its position in the pipeline so that view caches
// can merge out-of-order updates: a status never overwrites one with a
// higher rank.  Both terminal statuses share the top rank, so a stale
// "preparing" event can never resurrect a delivered or cancelled order.
func (s OrderStatus) Rank() int {
    switch s {
    case StatusPending:
        return 0
    case StatusPreparing:
        return 1
    case StatusReady:
        return 2
    case StatusDelivered, StatusCancelled:
        return 3
    }
    return -1
}

// OrderItem is one line of an order.  Name and PriceCents are snapshots
// taken from the menu at order time; later menu edits never change what
// the customer was charged.
//
// Fields:
//  ID           - primary key identifier.
//  OrderID      - owning order (uuid).
//  MenuItemID   - menu item the line was priced from.
//  Name         - menu item name snapshot.
//  Quantity     - number of units, always >= 1.
//  PriceCents   - unit price snapshot in cents.
//  Instructions - free-text preparation notes ("no cilantro").
type OrderItem struct {
    ID           uint64      `json:"id"`
    OrderID      string      `json:"order_id"`
    MenuItemID   uint64      `json:"menu_item_id"`
    Name         string      `json:"name"`
    Quantity     uint32      `json:"quantity"`
    PriceCents   uint32      `json:"price_cents"`
    Instructions string      `json:"instructions,omitempty"`
}

// Order is the shared record the whole application synchronizes on.  The
// store-assigned uuid ID is the only identity used for lookups and event
// correlation; Number is a human-facing sequence printed on tickets and
// receipts, never used for correctness.
//
// Fields:
//  ID          - canonical identity (uuid).
//  Number      - display sequence number, monotonically increasing.
//  TableID     - table the order belongs to.
//  TableNumber - denormalized table number for display and event routing.
//  Status      - current pipeline status.
//  Items       - line items with price snapshots.
//  TotalCents  - sum of unit price x quantity, fixed at creation.
//  CreatedAt   - creation timestamp.
//  ReadyAt     - set exactly once when the kitchen finishes (nullable).
//  DeliveredAt - set exactly once on hand-off (nullable).
type Order struct {
    ID          string      `json:"id"`
    Number      uint64      `json:"number"`
    TableID     uint64      `json:"table_id"`
    TableNumber int         `json:"table_number"`
    Status      OrderStatus `json:"status"`
    Items       []OrderItem `json:"items"`
    TotalCents  uint32      `json:"total_cents"`
    CreatedAt   time.Time   `json:"created_at"`
    ReadyAt     *time.Time  `json:"ready_at,omitempty"`
    DeliveredAt *time.Time  `json:"delivered_at,omitempty"`
}
