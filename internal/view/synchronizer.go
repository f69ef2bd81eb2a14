// Package view maintains role-scoped, de-duplicated client caches of
// orders.  A Synchronizer reconciles full fetches with push events
// arriving in any order; the merge rule is commutative and idempotent
// so replays and reordering can never regress a cached order.
package view

import (
    "sort"
    "sync"

    "github.com/quangtd/restaurant-table-orders/internal/broadcast"
    "github.com/quangtd/restaurant-table-orders/internal/model"
)

// Bucket names the mutually exclusive display lists each role splits
// its cache into.
type Bucket string

const (
    // Customer buckets.
    BucketActive  Bucket = "active"  // pending, preparing
    BucketHistory Bucket = "history" // ready, delivered

    // Staff buckets.
    BucketInProgress Bucket = "in_progress" // pending, preparing
    BucketReady      Bucket = "ready"       // ready for service
    BucketCompleted  Bucket = "completed"   // delivered

    // Kitchen buckets.
    BucketPending   Bucket = "pending"
    BucketPreparing Bucket = "preparing"
    BucketDone      Bucket = "done" // ready, delivered

    // Admin bucket: one aggregate list.
    BucketAll Bucket = "all"

    // bucketNone drops the order from display entirely (cancelled
    // orders for customers, other tables' orders, and so on).
    bucketNone Bucket = ""
)

// Synchronizer is a disposable local cache of orders for one role.
// It holds no authority: it can be thrown away and rebuilt from a
// fetch at any time, which is exactly what happens after a
// notification gap.
type Synchronizer struct {
    mu     sync.RWMutex
    role   string
    table  int // customer's own table; 0 for staff roles
    orders map[string]model.Order
    stale  bool
}

// NewSynchronizer builds a cache for a staff-side role (staff,
// kitchen, admin) covering all tables.
func NewSynchronizer(role string) *Synchronizer {
    return &Synchronizer{role: role, orders: make(map[string]model.Order)}
}

// NewCustomerSynchronizer builds a cache restricted to one table.
func NewCustomerSynchronizer(tableNumber int) *Synchronizer {
    return &Synchronizer{
        role:   model.RoleCustomer,
        table:  tableNumber,
        orders: make(map[string]model.Order),
    }
}

// ResetFromFetch replaces the cache wholesale with the result of an
// authoritative read and clears the stale flag.  Orders outside the
// role's scope are dropped on the way in.
func (s *Synchronizer) ResetFromFetch(orders []model.Order) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.orders = make(map[string]model.Order, len(orders))
    for _, o := range orders {
        if s.inScope(o) {
            s.orders[o.ID] = o
        }
    }
    s.stale = false
}

// ApplyEvent merges one push event into the cache.  Returns true when
// the cache changed.  Events outside the role's scope are ignored;
// out-of-order and duplicate events are no-ops thanks to the rank
// rule.
func (s *Synchronizer) ApplyEvent(ev broadcast.Event) bool {
    if ev.Order == nil {
        return false
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.inScope(*ev.Order) {
        return false
    }
    return s.merge(*ev.Order)
}

// ApplyFetched merges individually fetched orders without discarding
// the rest of the cache, using the same rank rule as events.  Used for
// incremental polls.
func (s *Synchronizer) ApplyFetched(orders []model.Order) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    changed := false
    for _, o := range orders {
        if !s.inScope(o) {
            continue
        }
        if s.merge(o) {
            changed = true
        }
    }
    return changed
}

// merge keeps, per order identity, the state furthest along the
// lifecycle.  A same-rank arrival still refreshes the record so late
// fields (timestamps, display number) are picked up.  Caller holds mu.
func (s *Synchronizer) merge(o model.Order) bool {
    cur, ok := s.orders[o.ID]
    if !ok {
        s.orders[o.ID] = o
        return true
    }
    if o.Status.Rank() < cur.Status.Rank() {
        return false // stale arrival, never regress
    }
    changed := o.Status != cur.Status
    s.orders[o.ID] = o // same-rank arrivals still refresh timestamps
    return changed
}

// inScope reports whether the order belongs in this role's cache.
func (s *Synchronizer) inScope(o model.Order) bool {
    if s.role == model.RoleCustomer {
        return o.TableNumber == s.table
    }
    return true
}

// MarkStale records a detected notification gap (reconnect, missed
// heartbeat).  The owner must follow up with ResetFromFetch before
// trusting the cache again.
func (s *Synchronizer) MarkStale() {
    s.mu.Lock()
    s.stale = true
    s.mu.Unlock()
}

// Stale reports whether the cache needs a reconciling fetch.
func (s *Synchronizer) Stale() bool {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return s.stale
}

// Order returns the cached copy of one order, if present.
func (s *Synchronizer) Order(id string) (model.Order, bool) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    o, ok := s.orders[id]
    return o, ok
}

// Len reports how many orders the cache holds.
func (s *Synchronizer) Len() int {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return len(s.orders)
}

// Buckets splits the cache into the role's display lists, newest
// first within each list.  Every cached order lands in at most one
// bucket.
func (s *Synchronizer) Buckets() map[Bucket][]model.Order {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make(map[Bucket][]model.Order)
    for _, o := range s.orders {
        b := s.bucketFor(o)
        if b == bucketNone {
            continue
        }
        out[b] = append(out[b], o)
    }
    for b := range out {
        sortNewestFirst(out[b])
    }
    return out
}

func (s *Synchronizer) bucketFor(o model.Order) Bucket {
    switch s.role {
    case model.RoleCustomer:
        switch o.Status {
        case model.StatusPending, model.StatusPreparing:
            return BucketActive
        case model.StatusReady, model.StatusDelivered:
            return BucketHistory
        }
        return bucketNone
    case model.RoleStaff:
        switch o.Status {
        case model.StatusPending, model.StatusPreparing:
            return BucketInProgress
        case model.StatusReady:
            return BucketReady
        case model.StatusDelivered:
            return BucketCompleted
        }
        return bucketNone
    case model.RoleKitchen:
        switch o.Status {
        case model.StatusPending:
            return BucketPending
        case model.StatusPreparing:
            return BucketPreparing
        case model.StatusReady, model.StatusDelivered:
            return BucketDone
        }
        return bucketNone
    case model.RoleAdmin:
        return BucketAll
    }
    return bucketNone
}

// OccupiedTables derives the set of table numbers with at least one
// active order, the client-side counterpart of the server's occupancy
// derivation.
func (s *Synchronizer) OccupiedTables() map[int]bool {
    s.mu.RLock()
    defer s.mu.RUnlock()
    occupied := make(map[int]bool)
    for _, o := range s.orders {
        if o.Status.IsActive() {
            occupied[o.TableNumber] = true
        }
    }
    return occupied
}

func sortNewestFirst(orders []model.Order) {
    sort.Slice(orders, func(i, j int) bool {
        return orders[i].CreatedAt.After(orders[j].CreatedAt)
    })
}
