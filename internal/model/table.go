package model

import "time"

// TableStatus enumerates the occupancy states of a dining table.
// Occupied is always derived from active orders; reserved is an
// administrative override that the derivation never overwrites.
type TableStatus string

const (
    TableAvailable TableStatus = "available" // no active order, no override
    TableOccupied  TableStatus = "occupied"  // at least one active order
    TableReserved  TableStatus = "reserved"  // manual override by staff/admin
)

// ValidTableStatus reports whether s is a known table status.
func ValidTableStatus(s TableStatus) bool {
    return s == TableAvailable || s == TableOccupied || s == TableReserved
}

// Table represents a physical dining table.  Tables are created at
// setup time and never deleted during normal operation; only their
// status and current order reference change.
//
// Fields:
//  ID             - primary key identifier.
//  Number         - unique, stable table number shown to guests.
//  Capacity       - number of seats.
//  Status         - occupancy status (see TableStatus).
//  CurrentOrderID - most recently placed active order (nullable).
//  CreatedAt      - creation timestamp.
//  UpdatedAt      - last update timestamp.
type Table struct {
    ID             uint64      `json:"id"`
    Number         int         `json:"table_number"`
    Capacity       int         `json:"capacity"`
    Status         TableStatus `json:"status"`
    CurrentOrderID *string     `json:"current_order_id,omitempty"`
    CreatedAt      time.Time   `json:"created_at"`
    UpdatedAt      time.Time   `json:"updated_at"`
}
