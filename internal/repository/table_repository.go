package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/quangtd/restaurant-table-orders/internal/model"
)

// TableRepo provides persistence for dining tables.  Tables are seeded
// at setup time; at runtime only their status and current order
// reference are mutated, and only by the lifecycle service.  All
// timestamp columns are stored in UTC.
type TableRepo struct {
    db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *TableRepo) DB() *sql.DB { return r.db }

const tableColumns = `id, table_number, capacity, status, current_order_id, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*model.Table, error) {
    var t model.Table
    var current sql.NullString
    if err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Status, &current, &t.CreatedAt, &t.UpdatedAt); err != nil {
        return nil, err
    }
    if current.Valid {
        id := current.String
        t.CurrentOrderID = &id
    }
    return &t, nil
}

// Create inserts a new table with the given number and capacity.  The
// initial status is always available.  It returns ErrTableExists when
// the table number is already taken.
func (r *TableRepo) Create(ctx context.Context, number, capacity int) (*model.Table, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO tables (table_number, capacity, status) VALUES (?, ?, 'available')`,
        number, capacity)
    if err != nil {
        if isDuplicate(err) {
            return nil, ErrTableExists
        }
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    return r.GetByID(ctx, uint64(id))
}

// ErrTableExists is returned when creating a table whose number is
// already in use.
var ErrTableExists = errors.New("table number already exists")

// GetByID retrieves a table by its primary key.  It returns
// ErrTableNotFound when no row matches.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = ?`, id)
    t, err := scanTable(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrTableNotFound
    }
    return t, err
}

// GetByNumber retrieves a table by its human-facing table number.  It
// returns ErrTableNotFound when no row matches.
func (r *TableRepo) GetByNumber(ctx context.Context, number int) (*model.Table, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM tables WHERE table_number = ?`, number)
    t, err := scanTable(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrTableNotFound
    }
    return t, err
}

// List returns all tables ordered by table number.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT `+tableColumns+` FROM tables ORDER BY table_number`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    tables := make([]model.Table, 0)
    for rows.Next() {
        t, err := scanTable(rows)
        if err != nil {
            return nil, err
        }
        tables = append(tables, *t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return tables, nil
}

// SetStatus applies an administrative status override (reserved, or
// back to available).  Unlike ApplyDerivedStatus it writes
// unconditionally; it is only reachable through admin endpoints.
// Setting a table available also clears its current order reference.
func (r *TableRepo) SetStatus(ctx context.Context, id uint64, status model.TableStatus) error {
    var err error
    if status == model.TableAvailable {
        _, err = r.db.ExecContext(ctx,
            `UPDATE tables SET status = ?, current_order_id = NULL WHERE id = ?`, status, id)
    } else {
        _, err = r.db.ExecContext(ctx,
            `UPDATE tables SET status = ? WHERE id = ?`, status, id)
    }
    return err
}

// SetCurrentOrder points the table at its most recently placed order.
func (r *TableRepo) SetCurrentOrder(ctx context.Context, id uint64, orderID string) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE tables SET current_order_id = ? WHERE id = ?`, orderID, id)
    return err
}

// ApplyDerivedStatus writes the occupancy derived from active orders
// and returns the resulting status.  The conditional WHERE clauses make
// the write idempotent and keep the reserved override untouched:
// occupied is only set while the table is not reserved, and available
// only replaces occupied (never reserved).
func (r *TableRepo) ApplyDerivedStatus(ctx context.Context, id uint64, occupied bool) (model.TableStatus, error) {
    var err error
    if occupied {
        _, err = r.db.ExecContext(ctx,
            `UPDATE tables SET status = 'occupied' WHERE id = ? AND status <> 'reserved'`, id)
    } else {
        _, err = r.db.ExecContext(ctx,
            `UPDATE tables SET status = 'available', current_order_id = NULL WHERE id = ? AND status = 'occupied'`, id)
    }
    if err != nil {
        return "", err
    }
    var status model.TableStatus
    if err := r.db.QueryRowContext(ctx, `SELECT status FROM tables WHERE id = ?`, id).Scan(&status); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return "", ErrTableNotFound
        }
        return "", err
    }
    return status, nil
}
