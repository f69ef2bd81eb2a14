// Package lifecycle implements the order lifecycle service: the single
// authority for creating orders, advancing them through the
// preparation pipeline and deriving table occupancy.  No other
// component mutates Order.status or Table.status.
package lifecycle

import "errors"

// ErrInvalidArgument is returned for requests that fail validation
// before any persistence is attempted: empty carts, zero quantities,
// unknown target statuses.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidTransition is returned when the requested status is not a
// legal forward move from the order's current status.  The order is
// left unchanged.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNotAllowed is returned when the caller's role lacks the
// capability to drive the requested transition.
var ErrNotAllowed = errors.New("role not allowed to perform this transition")

// ErrConflict is returned after the bounded retry of the
// read-validate-swap loop is exhausted by concurrent writers.  The
// update was not applied; it is never dropped silently.
var ErrConflict = errors.New("concurrent update conflict")
