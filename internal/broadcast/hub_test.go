package broadcast

import (
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/quangtd/restaurant-table-orders/internal/model"
)

// stubSub collects events and can be told to fail.
type stubSub struct {
    events []Event
    fail   bool
    closed bool
}

func (s *stubSub) Send(ev Event) error {
    if s.fail {
        return errors.New("boom")
    }
    s.events = append(s.events, ev)
    return nil
}

func (s *stubSub) Close() { s.closed = true }

func orderOnTable(n int) *model.Order {
    return &model.Order{
        ID:          "11111111-2222-3333-4444-555555555555",
        TableNumber: n,
        Status:      model.StatusPending,
        CreatedAt:   time.Now().UTC(),
    }
}

func TestEventScopes(t *testing.T) {
    created := NewEvent(EventOrderCreated, orderOnTable(3))
    assert.ElementsMatch(t, []string{"kitchen", "staff"}, created.Scopes())

    changed := NewEvent(EventOrderStatusChanged, orderOnTable(3))
    assert.ElementsMatch(t, []string{"kitchen", "staff", "table:3"}, changed.Scopes())
}

func TestPublishFansOutPerScope(t *testing.T) {
    hub := NewHub()
    kitchen := &stubSub{}
    staff := &stubSub{}
    table3 := &stubSub{}
    table5 := &stubSub{}
    hub.Join(kitchen, ScopeKitchen)
    hub.Join(staff, ScopeStaff)
    hub.Join(table3, TableScope(3))
    hub.Join(table5, TableScope(5))

    hub.Publish(NewEvent(EventOrderStatusChanged, orderOnTable(3)))

    require.Len(t, kitchen.events, 1)
    require.Len(t, staff.events, 1)
    require.Len(t, table3.events, 1)
    assert.Empty(t, table5.events, "table 5 must not see table 3 traffic")
}

func TestPublishDeliversOncePerSubscriber(t *testing.T) {
    hub := NewHub()
    admin := &stubSub{}
    // An admin dashboard joins both broad scopes.
    hub.Join(admin, ScopeKitchen, ScopeStaff)

    hub.Publish(NewEvent(EventOrderCreated, orderOnTable(1)))

    assert.Len(t, admin.events, 1)
}

func TestPublishIsolatesFailures(t *testing.T) {
    hub := NewHub()
    broken := &stubSub{fail: true}
    healthy := &stubSub{}
    hub.Join(broken, ScopeKitchen)
    hub.Join(healthy, ScopeKitchen)

    hub.Publish(NewEvent(EventOrderCreated, orderOnTable(2)))

    assert.Len(t, healthy.events, 1, "healthy subscriber still receives the event")
    assert.True(t, broken.closed, "failing subscriber is closed")
    assert.Equal(t, 1, hub.SubscriberCount(ScopeKitchen), "failing subscriber is evicted")

    // Next publish reaches only the survivor and does not re-fail.
    hub.Publish(NewEvent(EventOrderCreated, orderOnTable(2)))
    assert.Len(t, healthy.events, 2)
}

func TestLeaveEndsMembership(t *testing.T) {
    hub := NewHub()
    sub := &stubSub{}
    hub.Join(sub, ScopeStaff, TableScope(7))
    require.Equal(t, 1, hub.SubscriberCount(ScopeStaff))

    hub.Leave(sub)

    assert.Equal(t, 0, hub.SubscriberCount(ScopeStaff))
    assert.Equal(t, 0, hub.SubscriberCount(TableScope(7)))

    hub.Publish(NewEvent(EventOrderStatusChanged, orderOnTable(7)))
    assert.Empty(t, sub.events, "no delivery after leave")
}
