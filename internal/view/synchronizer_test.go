package view

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/quangtd/restaurant-table-orders/internal/broadcast"
    "github.com/quangtd/restaurant-table-orders/internal/model"
)

func order(id string, table int, status model.OrderStatus) model.Order {
    return model.Order{
        ID:          id,
        TableNumber: table,
        Status:      status,
        CreatedAt:   time.Now().UTC(),
    }
}

func statusEvent(o model.Order) broadcast.Event {
    return broadcast.NewEvent(broadcast.EventOrderStatusChanged, &o)
}

func TestMergeNeverRegressesStatus(t *testing.T) {
    s := NewSynchronizer(model.RoleStaff)
    s.ResetFromFetch([]model.Order{order("a", 3, model.StatusReady)})

    // A stale preparing event for the same order arrives late.
    changed := s.ApplyEvent(statusEvent(order("a", 3, model.StatusPreparing)))
    assert.False(t, changed)

    got, ok := s.Order("a")
    require.True(t, ok)
    assert.Equal(t, model.StatusReady, got.Status)
}

func TestMergeIsCommutative(t *testing.T) {
    ready := order("a", 3, model.StatusReady)
    preparing := ready
    preparing.Status = model.StatusPreparing

    forward := NewSynchronizer(model.RoleStaff)
    forward.ApplyEvent(statusEvent(preparing))
    forward.ApplyEvent(statusEvent(ready))

    backward := NewSynchronizer(model.RoleStaff)
    backward.ApplyEvent(statusEvent(ready))
    backward.ApplyEvent(statusEvent(preparing))

    a, _ := forward.Order("a")
    b, _ := backward.Order("a")
    assert.Equal(t, a.Status, b.Status, "arrival order must not matter")
    assert.Equal(t, model.StatusReady, a.Status)
}

func TestMergeIsIdempotent(t *testing.T) {
    s := NewSynchronizer(model.RoleKitchen)
    ev := statusEvent(order("a", 3, model.StatusPreparing))

    assert.True(t, s.ApplyEvent(ev))
    assert.False(t, s.ApplyEvent(ev), "replaying the same event changes nothing")
    assert.Equal(t, 1, s.Len())
}

func TestMergeRefreshesTimestampsAtSameRank(t *testing.T) {
    s := NewSynchronizer(model.RoleStaff)
    bare := order("a", 3, model.StatusReady)
    s.ApplyEvent(statusEvent(bare))

    at := time.Now().UTC()
    withTime := bare
    withTime.ReadyAt = &at
    s.ApplyEvent(statusEvent(withTime))

    got, _ := s.Order("a")
    require.NotNil(t, got.ReadyAt)
    assert.Equal(t, at, *got.ReadyAt)
}

func TestCustomerScopeFiltersOtherTables(t *testing.T) {
    s := NewCustomerSynchronizer(3)

    // An event for table 5 leaks through a shared channel.
    changed := s.ApplyEvent(statusEvent(order("other", 5, model.StatusReady)))
    assert.False(t, changed)
    assert.Equal(t, 0, s.Len(), "table 5 traffic never lands in table 3's cache")

    changed = s.ApplyEvent(statusEvent(order("mine", 3, model.StatusPending)))
    assert.True(t, changed)
    assert.Equal(t, 1, s.Len())
}

func TestResetFromFetchDropsOutOfScopeOrders(t *testing.T) {
    s := NewCustomerSynchronizer(3)
    s.MarkStale()

    s.ResetFromFetch([]model.Order{
        order("mine", 3, model.StatusPending),
        order("other", 5, model.StatusPending),
    })

    assert.False(t, s.Stale())
    assert.Equal(t, 1, s.Len())
    _, ok := s.Order("other")
    assert.False(t, ok)
}

func TestBucketsAreMutuallyExclusive(t *testing.T) {
    roles := []string{model.RoleCustomer, model.RoleStaff, model.RoleKitchen, model.RoleAdmin}
    statuses := []model.OrderStatus{
        model.StatusPending, model.StatusPreparing, model.StatusReady,
        model.StatusDelivered, model.StatusCancelled,
    }
    for _, role := range roles {
        t.Run(role, func(t *testing.T) {
            var s *Synchronizer
            if role == model.RoleCustomer {
                s = NewCustomerSynchronizer(1)
            } else {
                s = NewSynchronizer(role)
            }
            var all []model.Order
            for i, st := range statuses {
                all = append(all, order(string(rune('a'+i)), 1, st))
            }
            s.ResetFromFetch(all)

            seen := make(map[string]int)
            for _, list := range s.Buckets() {
                for _, o := range list {
                    seen[o.ID]++
                }
            }
            for id, n := range seen {
                assert.Equal(t, 1, n, "order %s appears in more than one bucket", id)
            }
        })
    }
}

func TestKitchenBuckets(t *testing.T) {
    s := NewSynchronizer(model.RoleKitchen)
    s.ResetFromFetch([]model.Order{
        order("p1", 1, model.StatusPending),
        order("p2", 2, model.StatusPending),
        order("w1", 3, model.StatusPreparing),
        order("r1", 4, model.StatusReady),
        order("d1", 5, model.StatusDelivered),
        order("c1", 6, model.StatusCancelled),
    })

    b := s.Buckets()
    assert.Len(t, b[BucketPending], 2)
    assert.Len(t, b[BucketPreparing], 1)
    assert.Len(t, b[BucketDone], 2, "ready and delivered share the done tab")
    total := 0
    for _, list := range b {
        total += len(list)
    }
    assert.Equal(t, 5, total, "cancelled orders leave the kitchen display")
}

func TestStaffBuckets(t *testing.T) {
    s := NewSynchronizer(model.RoleStaff)
    s.ResetFromFetch([]model.Order{
        order("p1", 1, model.StatusPending),
        order("w1", 2, model.StatusPreparing),
        order("r1", 3, model.StatusReady),
        order("d1", 4, model.StatusDelivered),
    })

    b := s.Buckets()
    assert.Len(t, b[BucketInProgress], 2)
    assert.Len(t, b[BucketReady], 1)
    assert.Len(t, b[BucketCompleted], 1)
}

func TestCustomerBuckets(t *testing.T) {
    s := NewCustomerSynchronizer(3)
    s.ResetFromFetch([]model.Order{
        order("p1", 3, model.StatusPending),
        order("r1", 3, model.StatusReady),
        order("d1", 3, model.StatusDelivered),
        order("c1", 3, model.StatusCancelled),
    })

    b := s.Buckets()
    assert.Len(t, b[BucketActive], 1)
    assert.Len(t, b[BucketHistory], 2)
}

func TestOccupiedTablesTracksActiveOrdersOnly(t *testing.T) {
    s := NewSynchronizer(model.RoleStaff)
    s.ResetFromFetch([]model.Order{
        order("a", 3, model.StatusPreparing),
        order("b", 5, model.StatusDelivered),
    })

    occ := s.OccupiedTables()
    assert.True(t, occ[3])
    assert.False(t, occ[5], "delivered order no longer occupies table 5")

    // The last active order on table 3 closes.
    s.ApplyEvent(statusEvent(order("a", 3, model.StatusDelivered)))
    occ = s.OccupiedTables()
    assert.False(t, occ[3])
}

func TestStaleFlagRoundTrip(t *testing.T) {
    s := NewSynchronizer(model.RoleKitchen)
    assert.False(t, s.Stale())

    s.MarkStale()
    assert.True(t, s.Stale())

    s.ResetFromFetch(nil)
    assert.False(t, s.Stale(), "a full fetch clears the gap")
}
