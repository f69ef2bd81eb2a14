// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// lifecycle service and handlers to distinguish between different
// failure scenarios without inspecting SQL errors. For example,
// ErrStaleStatus signals that a compare-and-swap status update lost a
// race against a concurrent writer, while the *NotFound values report
// that an identifier did not resolve to a row.
package repository

import (
    "errors"
    "strings"
)

// ErrTableNotFound is returned when a table identifier or number does
// not resolve to a row in the tables table.
var ErrTableNotFound = errors.New("table not found")

// ErrOrderNotFound is returned when an order uuid does not resolve.
var ErrOrderNotFound = errors.New("order not found")

// ErrMenuItemNotFound is returned when a menu item identifier does not
// resolve. Handlers translate this into an HTTP 404 response.
var ErrMenuItemNotFound = errors.New("menu item not found")

// ErrCategoryNotFound is returned when a menu category identifier does
// not resolve.
var ErrCategoryNotFound = errors.New("menu category not found")

// ErrStaleStatus is returned by OrderRepo.AdvanceStatus when the
// conditional UPDATE matched no row because the order's status changed
// between read and write. Callers re-read and re-validate; they never
// treat it as success.
var ErrStaleStatus = errors.New("stale order status")

// isDuplicate reports whether err is a MySQL duplicate-key error
// (error 1062). String matching keeps the driver dependency out of
// the repository API.
func isDuplicate(err error) bool {
    return err != nil && strings.Contains(err.Error(), "1062")
}
