package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/quangtd/restaurant-table-orders/internal/model"
    "github.com/quangtd/restaurant-table-orders/internal/utils"
)

// UserRepo persists staff accounts (staff, kitchen, admin).  Customers
// never get a row here; their sessions are table-scoped JWTs.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// ErrUsernameExists is returned when creating a user whose username is
// already taken.
var ErrUsernameExists = errors.New("username already exists")

const userColumns = `id, username, password_hash, name, role, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
    var u model.User
    err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt)
    return u, err
}

// Create inserts a staff account and returns its ID.  The password is
// bcrypt-hashed with the given cost before it touches the database.
func (r *UserRepo) Create(ctx context.Context, username, password, name, role string, cost int) (uint64, error) {
    username = strings.ToLower(strings.TrimSpace(username))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        `INSERT INTO users (username, password_hash, name, role) VALUES (?,?,?,?)`,
        username, hash, name, role)
    if err != nil {
        if isDuplicate(err) {
            return 0, ErrUsernameExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
    username = strings.ToLower(strings.TrimSpace(username))
    return scanUser(r.DB.QueryRowContext(ctx,
        `SELECT `+userColumns+` FROM users WHERE username=? LIMIT 1`, username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    return scanUser(r.DB.QueryRowContext(ctx,
        `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id))
}

// List returns every staff account ordered by id.  Admin-only.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
    rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    users := make([]model.User, 0)
    for rows.Next() {
        u, err := scanUser(rows)
        if err != nil {
            return nil, err
        }
        users = append(users, u)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return users, nil
}

// SetActive flips the is_active flag; deactivated accounts cannot log
// in but keep their history.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
    res, err := r.DB.ExecContext(ctx, `UPDATE users SET is_active=? WHERE id=?`, active, id)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        // Row may exist with the flag already set; verify existence.
        var exists bool
        if err := r.DB.QueryRowContext(ctx,
            `SELECT EXISTS(SELECT 1 FROM users WHERE id=?)`, id).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return sql.ErrNoRows
        }
    }
    return nil
}
