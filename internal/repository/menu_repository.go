package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/quangtd/restaurant-table-orders/internal/model"
)

// MenuRepo provides persistence for menu categories and items.  The
// ordering core only ever reads from it (to price line items); the
// write methods back the admin menu management endpoints.
type MenuRepo struct {
    db *sql.DB
}

// NewMenuRepo returns a new MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// Categories returns all menu categories ordered by id.
func (r *MenuRepo) Categories(ctx context.Context) ([]model.MenuCategory, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, name, description FROM menu_categories ORDER BY id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    cats := make([]model.MenuCategory, 0)
    for rows.Next() {
        var c model.MenuCategory
        if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
            return nil, err
        }
        cats = append(cats, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return cats, nil
}

// CreateCategory inserts a menu category and returns its id.
func (r *MenuRepo) CreateCategory(ctx context.Context, name, description string) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO menu_categories (name, description) VALUES (?, ?)`, name, description)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ItemFilter narrows the result of Items.  A nil CategoryID means all
// categories; an empty Search means no text filter.  Unavailable items
// are excluded unless IncludeUnavailable is set (admin views want them).
type ItemFilter struct {
    CategoryID         *uint64
    Search             string
    IncludeUnavailable bool
}

const menuItemColumns = `id, category_id, name, description, price_cents, image_path, preparation_time_min, is_available, created_at`

func scanMenuItem(row interface{ Scan(...any) error }) (*model.MenuItem, error) {
    var m model.MenuItem
    var image sql.NullString
    if err := row.Scan(&m.ID, &m.CategoryID, &m.Name, &m.Description, &m.PriceCents,
        &image, &m.PrepTimeMin, &m.IsAvailable, &m.CreatedAt); err != nil {
        return nil, err
    }
    if image.Valid {
        m.ImagePath = image.String
    }
    return &m, nil
}

// Items returns menu items matching the filter, ordered by category
// then name.  Search matches name and description case-insensitively.
func (r *MenuRepo) Items(ctx context.Context, f ItemFilter) ([]model.MenuItem, error) {
    q := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE 1=1`
    args := make([]any, 0, 3)
    if f.CategoryID != nil {
        q += ` AND category_id = ?`
        args = append(args, *f.CategoryID)
    }
    if s := strings.TrimSpace(f.Search); s != "" {
        q += ` AND (name LIKE ? OR description LIKE ?)`
        pat := "%" + s + "%"
        args = append(args, pat, pat)
    }
    if !f.IncludeUnavailable {
        q += ` AND is_available = 1`
    }
    q += ` ORDER BY category_id, name`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]model.MenuItem, 0)
    for rows.Next() {
        m, err := scanMenuItem(rows)
        if err != nil {
            return nil, err
        }
        items = append(items, *m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}

// GetItem retrieves a single menu item by id.  It returns
// ErrMenuItemNotFound when no row matches.
func (r *MenuRepo) GetItem(ctx context.Context, id uint64) (*model.MenuItem, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id)
    m, err := scanMenuItem(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrMenuItemNotFound
    }
    return m, err
}

// CreateItem inserts a menu item after verifying the category exists.
func (r *MenuRepo) CreateItem(ctx context.Context, m *model.MenuItem) (*model.MenuItem, error) {
    var exists bool
    if err := r.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM menu_categories WHERE id = ?)`, m.CategoryID).Scan(&exists); err != nil {
        return nil, err
    }
    if !exists {
        return nil, ErrCategoryNotFound
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO menu_items (category_id, name, description, price_cents, image_path, preparation_time_min, is_available)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
        m.CategoryID, m.Name, m.Description, m.PriceCents, nullIfEmpty(m.ImagePath), m.PrepTimeMin, m.IsAvailable)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    return r.GetItem(ctx, uint64(id))
}

// UpdateItem overwrites the mutable fields of a menu item.  Existing
// orders are unaffected because they snapshot name and price.
func (r *MenuRepo) UpdateItem(ctx context.Context, m *model.MenuItem) (*model.MenuItem, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE menu_items SET category_id = ?, name = ?, description = ?, price_cents = ?,
                image_path = ?, preparation_time_min = ?, is_available = ?
         WHERE id = ?`,
        m.CategoryID, m.Name, m.Description, m.PriceCents, nullIfEmpty(m.ImagePath),
        m.PrepTimeMin, m.IsAvailable, m.ID)
    if err != nil {
        return nil, err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        // Either missing or a no-op update; distinguish with a lookup.
        if _, err := r.GetItem(ctx, m.ID); err != nil {
            return nil, err
        }
    }
    return r.GetItem(ctx, m.ID)
}

// DeleteItem removes a menu item.  Order lines keep their snapshots, so
// historical orders still render after the item is gone.
func (r *MenuRepo) DeleteItem(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        return ErrMenuItemNotFound
    }
    return nil
}

func nullIfEmpty(s string) any {
    if s == "" {
        return nil
    }
    return s
}
