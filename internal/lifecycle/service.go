package lifecycle

import (
    "context"
    "fmt"
    "log"
    "math"
    "time"

    "github.com/google/uuid"

    "github.com/quangtd/restaurant-table-orders/internal/broadcast"
    "github.com/quangtd/restaurant-table-orders/internal/model"
    "github.com/quangtd/restaurant-table-orders/internal/repository"
)

// casAttempts bounds the read-validate-swap retry loop for a single
// advanceStatus call.
const casAttempts = 3

// OrderStore is the slice of the order repository the service needs.
type OrderStore interface {
    Create(ctx context.Context, o *model.Order) error
    GetByID(ctx context.Context, id string) (*model.Order, error)
    List(ctx context.Context, f repository.OrderFilter) ([]model.Order, error)
    CountActiveByTable(ctx context.Context, tableID uint64) (int, error)
    AdvanceStatus(ctx context.Context, id string, from, to model.OrderStatus, at time.Time) error
}

// TableStore is the slice of the table repository the service needs.
type TableStore interface {
    GetByNumber(ctx context.Context, number int) (*model.Table, error)
    List(ctx context.Context) ([]model.Table, error)
    ApplyDerivedStatus(ctx context.Context, id uint64, occupied bool) (model.TableStatus, error)
    SetCurrentOrder(ctx context.Context, id uint64, orderID string) error
}

// MenuStore resolves and prices menu items at order time.
type MenuStore interface {
    GetItem(ctx context.Context, id uint64) (*model.MenuItem, error)
}

// Publisher fans lifecycle events out to connected clients.  The hub
// satisfies it; publishing never returns an error by contract.
type Publisher interface {
    Publish(broadcast.Event)
}

// Service owns the order state machine.  It is safe for concurrent
// use: calls for different orders run independently, while racing
// calls for the same order serialize through the store's
// compare-and-swap.
type Service struct {
    orders OrderStore
    tables TableStore
    menu   MenuStore
    pub    Publisher

    // journal records events on the durable queue; failures are logged
    // and ignored like broadcast failures.  May be nil.
    journal func(context.Context, broadcast.Event) error

    now func() time.Time
}

// New constructs a Service.  pub may be nil in tools that do not push
// to clients.
func New(orders OrderStore, tables TableStore, menu MenuStore, pub Publisher) *Service {
    return &Service{
        orders: orders,
        tables: tables,
        menu:   menu,
        pub:    pub,
        now:    func() time.Time { return time.Now().UTC() },
    }
}

// WithJournal sets the durable event journal hook.
func (s *Service) WithJournal(fn func(context.Context, broadcast.Event) error) *Service {
    s.journal = fn
    return s
}

// LineItem is one entry of the materialized cart submitted with
// placeOrder.  Prices are deliberately absent: the server prices every
// line from the current menu.
type LineItem struct {
    MenuItemID   uint64 `json:"menu_item_id"`
    Quantity     uint32 `json:"quantity"`
    Instructions string `json:"instructions"`
}

// PlaceOrder validates the cart, prices it from the menu, persists a
// pending order for the table and fans out an order-created event.
// The returned order carries its store-assigned uuid and display
// number.
func (s *Service) PlaceOrder(ctx context.Context, tableNumber int, items []LineItem) (*model.Order, error) {
    if len(items) == 0 {
        return nil, fmt.Errorf("%w: order has no items", ErrInvalidArgument)
    }
    for _, it := range items {
        if it.Quantity < 1 {
            return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidArgument)
        }
    }

    table, err := s.tables.GetByNumber(ctx, tableNumber)
    if err != nil {
        return nil, err
    }

    order := &model.Order{
        ID:          uuid.NewString(),
        TableID:     table.ID,
        TableNumber: table.Number,
        Status:      model.StatusPending,
        Items:       make([]model.OrderItem, 0, len(items)),
    }
    // Accumulate in uint64 so an absurd quantity cannot wrap the
    // uint32 total and persist a wrong immutable amount.
    var total uint64
    for _, it := range items {
        mi, err := s.menu.GetItem(ctx, it.MenuItemID)
        if err != nil {
            return nil, err
        }
        if !mi.IsAvailable {
            return nil, fmt.Errorf("%w: item %d is off the menu", repository.ErrMenuItemNotFound, it.MenuItemID)
        }
        total += uint64(mi.PriceCents) * uint64(it.Quantity)
        if total > math.MaxUint32 {
            return nil, fmt.Errorf("%w: order total out of range", ErrInvalidArgument)
        }
        order.Items = append(order.Items, model.OrderItem{
            MenuItemID:   mi.ID,
            Name:         mi.Name,
            Quantity:     it.Quantity,
            PriceCents:   mi.PriceCents,
            Instructions: it.Instructions,
        })
    }
    order.TotalCents = uint32(total)

    if err := s.orders.Create(ctx, order); err != nil {
        return nil, err
    }

    if err := s.tables.SetCurrentOrder(ctx, table.ID, order.ID); err != nil {
        log.Printf("lifecycle: set current order for table %d: %v", table.Number, err)
    }
    if _, err := s.DeriveTableOccupancy(ctx, table.ID); err != nil {
        log.Printf("lifecycle: derive occupancy for table %d: %v", table.Number, err)
    }

    s.emit(ctx, broadcast.NewEvent(broadcast.EventOrderCreated, order))
    return order, nil
}

// AdvanceStatus moves an order to target if that is a legal forward
// transition the caller's role may drive.  Racing calls for the same
// order serialize through the store's compare-and-swap; the loser
// re-reads, finds the transition no longer legal and receives
// ErrInvalidTransition rather than double-applying.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string, target model.OrderStatus, role string) (*model.Order, error) {
    if !model.ValidStatus(target) {
        return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, target)
    }

    var order *model.Order
    applied := false
    for attempt := 0; attempt < casAttempts; attempt++ {
        var err error
        order, err = s.orders.GetByID(ctx, orderID)
        if err != nil {
            return nil, err
        }
        if !order.Status.CanAdvance(target) {
            return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
        }
        if !roleMayDrive(role, order.Status, target) {
            return nil, fmt.Errorf("%w: %s may not move %s -> %s", ErrNotAllowed, role, order.Status, target)
        }
        err = s.orders.AdvanceStatus(ctx, orderID, order.Status, target, s.now())
        if err == nil {
            applied = true
            break
        }
        if err == repository.ErrStaleStatus {
            continue // lost the race; re-read and re-validate
        }
        return nil, err
    }
    if !applied {
        return nil, fmt.Errorf("%w: order %s", ErrConflict, orderID)
    }

    order, err := s.orders.GetByID(ctx, orderID)
    if err != nil {
        return nil, err
    }

    if _, err := s.DeriveTableOccupancy(ctx, order.TableID); err != nil {
        log.Printf("lifecycle: derive occupancy for table %d: %v", order.TableNumber, err)
    }

    s.emit(ctx, broadcast.NewEvent(broadcast.EventOrderStatusChanged, order))
    return order, nil
}

// roleMayDrive is the capability table for status transitions: the
// kitchen works the preparation pipeline, waitstaff deliver, staff and
// admin may cancel, and admin may drive anything as a manual override.
func roleMayDrive(role string, from, to model.OrderStatus) bool {
    if role == model.RoleAdmin {
        return true
    }
    if to == model.StatusCancelled {
        return role == model.RoleStaff
    }
    switch {
    case from == model.StatusPending && to == model.StatusPreparing,
        from == model.StatusPreparing && to == model.StatusReady:
        return role == model.RoleKitchen
    case from == model.StatusReady && to == model.StatusDelivered:
        return role == model.RoleStaff
    }
    return false
}

// DeriveTableOccupancy recomputes a table's status from its active
// orders.  It is idempotent, keeps the reserved override untouched and
// is safe to re-run at any time; table list reads re-run it to
// self-heal after missed events.
func (s *Service) DeriveTableOccupancy(ctx context.Context, tableID uint64) (model.TableStatus, error) {
    n, err := s.orders.CountActiveByTable(ctx, tableID)
    if err != nil {
        return "", err
    }
    return s.tables.ApplyDerivedStatus(ctx, tableID, n > 0)
}

// Orders returns orders matching the filter, newest first.
func (s *Service) Orders(ctx context.Context, f repository.OrderFilter) ([]model.Order, error) {
    return s.orders.List(ctx, f)
}

// Order returns a single order by its canonical uuid.
func (s *Service) Order(ctx context.Context, id string) (*model.Order, error) {
    return s.orders.GetByID(ctx, id)
}

// Table returns a single table by number, with freshly derived
// occupancy.
func (s *Service) Table(ctx context.Context, number int) (*model.Table, error) {
    table, err := s.tables.GetByNumber(ctx, number)
    if err != nil {
        return nil, err
    }
    status, err := s.DeriveTableOccupancy(ctx, table.ID)
    if err != nil {
        return nil, err
    }
    table.Status = status
    return table, nil
}

// ListTables returns all tables, re-deriving each table's occupancy
// defensively so a missed event can never leave a stale status on the
// floor plan.
func (s *Service) ListTables(ctx context.Context) ([]model.Table, error) {
    tables, err := s.tables.List(ctx)
    if err != nil {
        return nil, err
    }
    for i := range tables {
        status, err := s.DeriveTableOccupancy(ctx, tables[i].ID)
        if err != nil {
            return nil, err
        }
        tables[i].Status = status
    }
    return tables, nil
}

// emit pushes the event to connected clients and the durable journal.
// Neither failure reaches the caller: the command already succeeded.
func (s *Service) emit(ctx context.Context, ev broadcast.Event) {
    if s.pub != nil {
        s.pub.Publish(ev)
    }
    if s.journal != nil {
        if err := s.journal(ctx, ev); err != nil {
            log.Printf("lifecycle: journal %s for order %s: %v", ev.Type, ev.Order.ID, err)
        }
    }
}
