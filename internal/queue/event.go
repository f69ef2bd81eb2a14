// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderEvent is published for every order lifecycle change. It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type OrderEvent struct {
    EventType        string `json:"event_type"` // order-created / order-status-changed
    OrderID          string `json:"order_id"`
    OrderNumber      uint64 `json:"order_number"`
    TableNumber      int    `json:"table_number"`
    Status           string `json:"status"`
    ItemCount        int    `json:"item_count"`
    TotalAmountCents uint32 `json:"total_amount_cents"`
    OccurredAt       string `json:"occurred_at"`
}
