package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/quangtd/restaurant-table-orders/internal/model"
)

// OrderRepo provides persistence for orders and their line items.  The
// canonical identity of an order is its store-assigned uuid; the
// auto-increment order_number column exists purely for tickets and
// receipts and never appears in a lookup.  All timestamps are UTC.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle for cross-repository transactions.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// Create inserts an order together with its line items in one
// transaction and populates the generated order number and creation
// timestamp on the passed order.  The caller supplies the uuid, table
// reference, priced items and total; status must be pending.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const ins = `INSERT INTO orders (id, table_id, table_number, status, total_cents)
                 VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, ins, o.ID, o.TableID, o.TableNumber, o.Status, o.TotalCents)
    if err != nil {
        return err
    }
    // LastInsertId carries the auto-increment order_number even though
    // the primary key is the uuid.
    num, err := res.LastInsertId()
    if err != nil {
        return err
    }
    o.Number = uint64(num)

    if len(o.Items) > 0 {
        q := `INSERT INTO order_items (order_id, menu_item_id, name, quantity, price_cents, instructions) VALUES `
        args := make([]any, 0, len(o.Items)*6)
        for i := range o.Items {
            if i > 0 {
                q += ","
            }
            q += "(?, ?, ?, ?, ?, ?)"
            it := &o.Items[i]
            it.OrderID = o.ID
            args = append(args, o.ID, it.MenuItemID, it.Name, it.Quantity, it.PriceCents, it.Instructions)
        }
        if _, err := tx.ExecContext(ctx, q, args...); err != nil {
            return err
        }
    }

    if err := tx.QueryRowContext(ctx,
        `SELECT created_at FROM orders WHERE id = ?`, o.ID).Scan(&o.CreatedAt); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

const orderColumns = `id, order_number, table_id, table_number, status, total_cents, created_at, ready_at, delivered_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
    var o model.Order
    var ready, delivered sql.NullTime
    if err := row.Scan(&o.ID, &o.Number, &o.TableID, &o.TableNumber, &o.Status,
        &o.TotalCents, &o.CreatedAt, &ready, &delivered); err != nil {
        return nil, err
    }
    if ready.Valid {
        t := ready.Time
        o.ReadyAt = &t
    }
    if delivered.Valid {
        t := delivered.Time
        o.DeliveredAt = &t
    }
    o.Items = []model.OrderItem{}
    return &o, nil
}

// GetByID retrieves an order and its line items by uuid.  It returns
// ErrOrderNotFound when no row matches.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
    o, err := scanOrder(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrOrderNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadItems(ctx, []*model.Order{o}); err != nil {
        return nil, err
    }
    return o, nil
}

// OrderFilter narrows List.  Nil fields are ignored.  ActiveOnly keeps
// only pending/preparing/ready orders and wins over Status when both
// are set.
type OrderFilter struct {
    TableID     *uint64
    TableNumber *int
    Status      *model.OrderStatus
    ActiveOnly  bool
}

// List returns orders matching the filter, newest first, with their
// line items populated in a single follow-up query.
func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, error) {
    q := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
    args := make([]any, 0, 3)
    if f.TableID != nil {
        q += ` AND table_id = ?`
        args = append(args, *f.TableID)
    }
    if f.TableNumber != nil {
        q += ` AND table_number = ?`
        args = append(args, *f.TableNumber)
    }
    if f.ActiveOnly {
        q += ` AND status IN ('pending','preparing','ready')`
    } else if f.Status != nil {
        q += ` AND status = ?`
        args = append(args, *f.Status)
    }
    q += ` ORDER BY created_at DESC, order_number DESC`

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    orders := make([]model.Order, 0)
    for rows.Next() {
        o, err := scanOrder(rows)
        if err != nil {
            return nil, err
        }
        orders = append(orders, *o)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(orders) == 0 {
        return orders, nil
    }
    refs := make([]*model.Order, len(orders))
    for i := range orders {
        refs[i] = &orders[i]
    }
    if err := r.loadItems(ctx, refs); err != nil {
        return nil, err
    }
    return orders, nil
}

// loadItems populates the line items of all given orders in one query.
func (r *OrderRepo) loadItems(ctx context.Context, orders []*model.Order) error {
    ids := make([]any, 0, len(orders))
    placeholders := make([]string, 0, len(orders))
    index := make(map[string]*model.Order, len(orders))
    for _, o := range orders {
        ids = append(ids, o.ID)
        placeholders = append(placeholders, "?")
        index[o.ID] = o
    }
    q := `SELECT id, order_id, menu_item_id, name, quantity, price_cents, instructions
          FROM order_items
          WHERE order_id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY order_id, id`
    rows, err := r.db.QueryContext(ctx, q, ids...)
    if err != nil {
        return err
    }
    defer rows.Close()
    for rows.Next() {
        var it model.OrderItem
        var instructions sql.NullString
        if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name,
            &it.Quantity, &it.PriceCents, &instructions); err != nil {
            return err
        }
        if instructions.Valid {
            it.Instructions = instructions.String
        }
        if o, ok := index[it.OrderID]; ok {
            o.Items = append(o.Items, it)
        }
    }
    return rows.Err()
}

// CountActiveByTable counts orders for a table whose status still
// occupies it (pending, preparing or ready).  Occupancy derivation is
// built on this count.
func (r *OrderRepo) CountActiveByTable(ctx context.Context, tableID uint64) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM orders WHERE table_id = ? AND status IN ('pending','preparing','ready')`,
        tableID).Scan(&n)
    return n, err
}

// AdvanceStatus performs the compare-and-swap at the heart of the
// status state machine: the UPDATE only matches while the order still
// has the expected `from` status, so two racing writers cannot both
// succeed.  ready_at and delivered_at are guarded with COALESCE so a
// timestamp is written at most once and never cleared.  It returns
// ErrStaleStatus when the swap lost the race and ErrOrderNotFound when
// the uuid does not resolve at all.
func (r *OrderRepo) AdvanceStatus(ctx context.Context, id string, from, to model.OrderStatus, at time.Time) error {
    q := `UPDATE orders SET status = ?`
    args := []any{to}
    switch to {
    case model.StatusReady:
        q += `, ready_at = COALESCE(ready_at, ?)`
        args = append(args, at)
    case model.StatusDelivered:
        q += `, delivered_at = COALESCE(delivered_at, ?)`
        args = append(args, at)
    }
    q += ` WHERE id = ? AND status = ?`
    args = append(args, id, from)

    res, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Either the order vanished or a concurrent writer moved it.
        var exists bool
        if err := r.db.QueryRowContext(ctx,
            `SELECT EXISTS(SELECT 1 FROM orders WHERE id = ?)`, id).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return ErrOrderNotFound
        }
        return ErrStaleStatus
    }
    return nil
}
