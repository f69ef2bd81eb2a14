package lifecycle

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/quangtd/restaurant-table-orders/internal/broadcast"
    "github.com/quangtd/restaurant-table-orders/internal/model"
    "github.com/quangtd/restaurant-table-orders/internal/repository"
)

// fakeOrders is an in-memory OrderStore with the same
// compare-and-swap semantics as the MySQL repository.
type fakeOrders struct {
    mu     sync.Mutex
    orders map[string]*model.Order
    nextNo uint64
}

func newFakeOrders() *fakeOrders {
    return &fakeOrders{orders: make(map[string]*model.Order), nextNo: 100}
}

func (f *fakeOrders) Create(_ context.Context, o *model.Order) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.nextNo++
    o.Number = f.nextNo
    o.CreatedAt = time.Now().UTC()
    cp := *o
    f.orders[o.ID] = &cp
    return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*model.Order, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    o, ok := f.orders[id]
    if !ok {
        return nil, repository.ErrOrderNotFound
    }
    cp := *o
    return &cp, nil
}

func (f *fakeOrders) List(_ context.Context, flt repository.OrderFilter) ([]model.Order, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    var out []model.Order
    for _, o := range f.orders {
        if flt.ActiveOnly && !o.Status.IsActive() {
            continue
        }
        if flt.TableID != nil && o.TableID != *flt.TableID {
            continue
        }
        out = append(out, *o)
    }
    return out, nil
}

func (f *fakeOrders) CountActiveByTable(_ context.Context, tableID uint64) (int, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    n := 0
    for _, o := range f.orders {
        if o.TableID == tableID && o.Status.IsActive() {
            n++
        }
    }
    return n, nil
}

func (f *fakeOrders) AdvanceStatus(_ context.Context, id string, from, to model.OrderStatus, at time.Time) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    o, ok := f.orders[id]
    if !ok {
        return repository.ErrOrderNotFound
    }
    if o.Status != from {
        return repository.ErrStaleStatus
    }
    o.Status = to
    switch to {
    case model.StatusReady:
        if o.ReadyAt == nil {
            t := at
            o.ReadyAt = &t
        }
    case model.StatusDelivered:
        if o.DeliveredAt == nil {
            t := at
            o.DeliveredAt = &t
        }
    }
    return nil
}

// fakeTables is an in-memory TableStore honoring the reserved override.
type fakeTables struct {
    mu     sync.Mutex
    byID   map[uint64]*model.Table
    byNum  map[int]uint64
    writes int
}

func newFakeTables(tables ...model.Table) *fakeTables {
    f := &fakeTables{byID: make(map[uint64]*model.Table), byNum: make(map[int]uint64)}
    for i := range tables {
        t := tables[i]
        f.byID[t.ID] = &t
        f.byNum[t.Number] = t.ID
    }
    return f
}

func (f *fakeTables) GetByNumber(_ context.Context, number int) (*model.Table, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    id, ok := f.byNum[number]
    if !ok {
        return nil, repository.ErrTableNotFound
    }
    cp := *f.byID[id]
    return &cp, nil
}

func (f *fakeTables) List(_ context.Context) ([]model.Table, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    var out []model.Table
    for _, t := range f.byID {
        out = append(out, *t)
    }
    return out, nil
}

func (f *fakeTables) ApplyDerivedStatus(_ context.Context, id uint64, occupied bool) (model.TableStatus, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    t, ok := f.byID[id]
    if !ok {
        return "", repository.ErrTableNotFound
    }
    switch {
    case occupied && t.Status != model.TableReserved && t.Status != model.TableOccupied:
        t.Status = model.TableOccupied
        f.writes++
    case !occupied && t.Status == model.TableOccupied:
        t.Status = model.TableAvailable
        t.CurrentOrderID = nil
        f.writes++
    }
    return t.Status, nil
}

func (f *fakeTables) SetCurrentOrder(_ context.Context, id uint64, orderID string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    t, ok := f.byID[id]
    if !ok {
        return repository.ErrTableNotFound
    }
    t.CurrentOrderID = &orderID
    return nil
}

// fakeMenu serves a fixed catalog.
type fakeMenu struct {
    items map[uint64]model.MenuItem
}

func (f *fakeMenu) GetItem(_ context.Context, id uint64) (*model.MenuItem, error) {
    mi, ok := f.items[id]
    if !ok {
        return nil, repository.ErrMenuItemNotFound
    }
    return &mi, nil
}

// capturePub records published events.
type capturePub struct {
    mu     sync.Mutex
    events []broadcast.Event
}

func (p *capturePub) Publish(ev broadcast.Event) {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
}

func (p *capturePub) byType(t string) []broadcast.Event {
    p.mu.Lock()
    defer p.mu.Unlock()
    var out []broadcast.Event
    for _, ev := range p.events {
        if ev.Type == t {
            out = append(out, ev)
        }
    }
    return out
}

func newTestService() (*Service, *fakeOrders, *fakeTables, *capturePub) {
    orders := newFakeOrders()
    tables := newFakeTables(
        model.Table{ID: 1, Number: 5, Capacity: 4, Status: model.TableAvailable},
        model.Table{ID: 2, Number: 6, Capacity: 2, Status: model.TableReserved},
    )
    menu := &fakeMenu{items: map[uint64]model.MenuItem{
        10: {ID: 10, Name: "Phở bò tái", PriceCents: 60000, IsAvailable: true},
        11: {ID: 11, Name: "Gỏi cuốn", PriceCents: 45000, IsAvailable: true},
        12: {ID: 12, Name: "Chả cá", PriceCents: 80000, IsAvailable: false},
    }}
    pub := &capturePub{}
    return New(orders, tables, menu, pub), orders, tables, pub
}

func TestPlaceOrderPricesFromMenu(t *testing.T) {
    svc, _, tables, pub := newTestService()
    ctx := context.Background()

    order, err := svc.PlaceOrder(ctx, 5, []LineItem{
        {MenuItemID: 10, Quantity: 2, Instructions: "ít hành"},
        {MenuItemID: 11, Quantity: 1},
    })
    require.NoError(t, err)

    assert.NotEmpty(t, order.ID)
    assert.NotZero(t, order.Number)
    assert.Equal(t, model.StatusPending, order.Status)
    assert.Equal(t, uint32(165000), order.TotalCents, "2x60000 + 1x45000, priced server side")
    require.Len(t, order.Items, 2)
    assert.Equal(t, "Phở bò tái", order.Items[0].Name)
    assert.Equal(t, uint32(60000), order.Items[0].PriceCents)

    tbl, err := tables.GetByNumber(ctx, 5)
    require.NoError(t, err)
    assert.Equal(t, model.TableOccupied, tbl.Status)
    require.NotNil(t, tbl.CurrentOrderID)
    assert.Equal(t, order.ID, *tbl.CurrentOrderID)

    created := pub.byType(broadcast.EventOrderCreated)
    require.Len(t, created, 1)
    assert.Equal(t, 5, created[0].TableNumber)
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
    svc, _, _, _ := newTestService()
    ctx := context.Background()

    _, err := svc.PlaceOrder(ctx, 5, nil)
    assert.ErrorIs(t, err, ErrInvalidArgument)

    _, err = svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 0}})
    assert.ErrorIs(t, err, ErrInvalidArgument)

    _, err = svc.PlaceOrder(ctx, 99, []LineItem{{MenuItemID: 10, Quantity: 1}})
    assert.ErrorIs(t, err, repository.ErrTableNotFound)

    _, err = svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 777, Quantity: 1}})
    assert.ErrorIs(t, err, repository.ErrMenuItemNotFound)

    _, err = svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 12, Quantity: 1}})
    assert.ErrorIs(t, err, repository.ErrMenuItemNotFound, "unavailable item cannot be ordered")
}

func TestPlaceOrderRejectsOverflowingTotal(t *testing.T) {
    svc, orders, _, _ := newTestService()
    ctx := context.Background()

    // 80000 x 60000 cents overflows uint32; the order must be rejected
    // outright, never persisted with a wrapped total.
    _, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 80000}})
    assert.ErrorIs(t, err, ErrInvalidArgument)
    assert.Empty(t, orders.orders, "nothing persisted")

    // Accumulation across lines is guarded too.
    _, err = svc.PlaceOrder(ctx, 5, []LineItem{
        {MenuItemID: 10, Quantity: 40000},
        {MenuItemID: 10, Quantity: 40000},
    })
    assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAdvanceStatusHappyPath(t *testing.T) {
    svc, _, _, pub := newTestService()
    ctx := context.Background()

    order, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 1}})
    require.NoError(t, err)

    order, err = svc.AdvanceStatus(ctx, order.ID, model.StatusPreparing, model.RoleKitchen)
    require.NoError(t, err)
    assert.Equal(t, model.StatusPreparing, order.Status)
    assert.Nil(t, order.ReadyAt)

    order, err = svc.AdvanceStatus(ctx, order.ID, model.StatusReady, model.RoleKitchen)
    require.NoError(t, err)
    require.NotNil(t, order.ReadyAt)
    readyAt := *order.ReadyAt

    order, err = svc.AdvanceStatus(ctx, order.ID, model.StatusDelivered, model.RoleStaff)
    require.NoError(t, err)
    assert.Equal(t, model.StatusDelivered, order.Status)
    require.NotNil(t, order.DeliveredAt)
    assert.Equal(t, readyAt, *order.ReadyAt, "ready_at is set once and never rewritten")

    changed := pub.byType(broadcast.EventOrderStatusChanged)
    assert.Len(t, changed, 3)
}

func TestAdvanceStatusRejectsIllegalMoves(t *testing.T) {
    svc, _, _, _ := newTestService()
    ctx := context.Background()

    order, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 1}})
    require.NoError(t, err)

    // Skipping a stage is illegal.
    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusReady, model.RoleKitchen)
    assert.ErrorIs(t, err, ErrInvalidTransition)

    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusPreparing, model.RoleKitchen)
    require.NoError(t, err)
    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusReady, model.RoleKitchen)
    require.NoError(t, err)

    // No moving backwards.
    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusPending, model.RoleAdmin)
    assert.ErrorIs(t, err, ErrInvalidTransition)

    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusDelivered, model.RoleStaff)
    require.NoError(t, err)

    // Terminal orders never move again.
    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusCancelled, model.RoleAdmin)
    assert.ErrorIs(t, err, ErrInvalidTransition)

    _, err = svc.AdvanceStatus(ctx, order.ID, "garbage", model.RoleAdmin)
    assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAdvanceStatusEnforcesRoleCapabilities(t *testing.T) {
    svc, _, _, _ := newTestService()
    ctx := context.Background()

    order, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 1}})
    require.NoError(t, err)

    // Waitstaff do not work the kitchen pipeline.
    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusPreparing, model.RoleStaff)
    assert.ErrorIs(t, err, ErrNotAllowed)

    // Customers drive nothing.
    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusCancelled, model.RoleCustomer)
    assert.ErrorIs(t, err, ErrNotAllowed)

    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusPreparing, model.RoleKitchen)
    require.NoError(t, err)
    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusReady, model.RoleKitchen)
    require.NoError(t, err)

    // The kitchen does not deliver to tables.
    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusDelivered, model.RoleKitchen)
    assert.ErrorIs(t, err, ErrNotAllowed)

    // Admin may drive any legal transition.
    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusDelivered, model.RoleAdmin)
    assert.NoError(t, err)
}

func TestStaffMayCancelActiveOrder(t *testing.T) {
    svc, _, tables, _ := newTestService()
    ctx := context.Background()

    order, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 1}})
    require.NoError(t, err)

    order, err = svc.AdvanceStatus(ctx, order.ID, model.StatusCancelled, model.RoleStaff)
    require.NoError(t, err)
    assert.Equal(t, model.StatusCancelled, order.Status)

    tbl, err := tables.GetByNumber(ctx, 5)
    require.NoError(t, err)
    assert.Equal(t, model.TableAvailable, tbl.Status, "cancelling the last active order frees the table")
    assert.Nil(t, tbl.CurrentOrderID)
}

func TestConcurrentAdvanceAppliesExactlyOnce(t *testing.T) {
    svc, _, _, pub := newTestService()
    ctx := context.Background()

    order, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 1}})
    require.NoError(t, err)

    // Two kitchen displays race to start the same ticket.
    const racers = 2
    errs := make(chan error, racers)
    var wg sync.WaitGroup
    for i := 0; i < racers; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            _, err := svc.AdvanceStatus(ctx, order.ID, model.StatusPreparing, model.RoleKitchen)
            errs <- err
        }()
    }
    wg.Wait()
    close(errs)

    var ok, rejected int
    for err := range errs {
        if err == nil {
            ok++
        } else {
            assert.ErrorIs(t, err, ErrInvalidTransition, "loser sees the move is no longer legal")
            rejected++
        }
    }
    assert.Equal(t, 1, ok, "exactly one racer wins")
    assert.Equal(t, racers-1, rejected)

    got, err := svc.Order(ctx, order.ID)
    require.NoError(t, err)
    assert.Equal(t, model.StatusPreparing, got.Status)
    assert.Len(t, pub.byType(broadcast.EventOrderStatusChanged), 1, "one event for one applied change")
}

func TestOccupancyDerivationIsIdempotent(t *testing.T) {
    svc, _, tables, _ := newTestService()
    ctx := context.Background()

    _, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 1}})
    require.NoError(t, err)

    before := tables.writes
    for i := 0; i < 3; i++ {
        status, err := svc.DeriveTableOccupancy(ctx, 1)
        require.NoError(t, err)
        assert.Equal(t, model.TableOccupied, status)
    }
    assert.Equal(t, before, tables.writes, "re-deriving an unchanged state writes nothing")
}

func TestOccupancyPreservesReservedOverride(t *testing.T) {
    svc, _, _, _ := newTestService()
    ctx := context.Background()

    // Table 6 is reserved; an order on it must not flip it to occupied,
    // and closing the order must not flip it to available.
    order, err := svc.PlaceOrder(ctx, 6, []LineItem{{MenuItemID: 11, Quantity: 1}})
    require.NoError(t, err)

    tbl, err := svc.Table(ctx, 6)
    require.NoError(t, err)
    assert.Equal(t, model.TableReserved, tbl.Status)

    _, err = svc.AdvanceStatus(ctx, order.ID, model.StatusCancelled, model.RoleStaff)
    require.NoError(t, err)

    tbl, err = svc.Table(ctx, 6)
    require.NoError(t, err)
    assert.Equal(t, model.TableReserved, tbl.Status)
}

func TestTableFreesOnlyWhenLastActiveOrderCloses(t *testing.T) {
    svc, _, _, _ := newTestService()
    ctx := context.Background()

    first, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 1}})
    require.NoError(t, err)
    second, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 11, Quantity: 1}})
    require.NoError(t, err)

    _, err = svc.AdvanceStatus(ctx, first.ID, model.StatusCancelled, model.RoleStaff)
    require.NoError(t, err)

    tbl, err := svc.Table(ctx, 5)
    require.NoError(t, err)
    assert.Equal(t, model.TableOccupied, tbl.Status, "second order still active")

    _, err = svc.AdvanceStatus(ctx, second.ID, model.StatusCancelled, model.RoleStaff)
    require.NoError(t, err)

    tbl, err = svc.Table(ctx, 5)
    require.NoError(t, err)
    assert.Equal(t, model.TableAvailable, tbl.Status)
}

func TestJournalFailureDoesNotFailTheCommand(t *testing.T) {
    svc, _, _, pub := newTestService()
    svc.WithJournal(func(context.Context, broadcast.Event) error {
        return assert.AnError
    })
    ctx := context.Background()

    order, err := svc.PlaceOrder(ctx, 5, []LineItem{{MenuItemID: 10, Quantity: 1}})
    require.NoError(t, err, "journal failure is logged, never propagated")
    require.NotNil(t, order)
    assert.Len(t, pub.byType(broadcast.EventOrderCreated), 1, "clients are still notified")
}
