// Package broadcast implements the push notification channel that fans
// lifecycle events out to connected clients.  Clients subscribe to
// named scopes for the lifetime of a single connection; nothing about
// membership survives a reconnect, so clients are expected to re-join
// and re-fetch after any gap.
package broadcast

import (
    "fmt"
    "time"

    "github.com/quangtd/restaurant-table-orders/internal/model"
)

// Event kinds delivered over the channel.
const (
    EventOrderCreated       = "order-created"
    EventOrderStatusChanged = "order-status-changed"
)

// Well-known scopes.  Customers join the scope of their table only.
const (
    ScopeKitchen = "kitchen"
    ScopeStaff   = "staff"
)

// TableScope returns the scope name for a specific table, e.g. "table:3".
func TableScope(number int) string {
    return fmt.Sprintf("table:%d", number)
}

// Event is the wire payload pushed to subscribers.  It always carries
// the full updated order so receivers can merge it without a follow-up
// fetch.
type Event struct {
    Type        string       `json:"type"`
    Order       *model.Order `json:"order"`
    TableNumber int          `json:"tableNumber"`
    Timestamp   string       `json:"timestamp"`
}

// NewEvent builds an event for the given order, stamped with the
// current UTC time in RFC3339.
func NewEvent(kind string, o *model.Order) Event {
    return Event{
        Type:        kind,
        Order:       o,
        TableNumber: o.TableNumber,
        Timestamp:   time.Now().UTC().Format(time.RFC3339),
    }
}

// Scopes returns the audiences an event of this kind fans out to.
// Order creation concerns the kitchen and waitstaff; status changes
// additionally concern the customers at the affected table.
func (e Event) Scopes() []string {
    switch e.Type {
    case EventOrderCreated:
        return []string{ScopeKitchen, ScopeStaff}
    case EventOrderStatusChanged:
        return []string{ScopeKitchen, ScopeStaff, TableScope(e.TableNumber)}
    }
    return nil
}
