package model

import "time"

// Staff roles.  Customers never have accounts; they receive a
// table-scoped session token instead (see the auth handler), so the
// customer role only ever appears inside JWT claims.
const (
    RoleCustomer = "customer"
    RoleStaff    = "staff"
    RoleKitchen  = "kitchen"
    RoleAdmin    = "admin"
)

// ValidStaffRole reports whether role names an account-holding role.
func ValidStaffRole(role string) bool {
    return role == RoleStaff || role == RoleKitchen || role == RoleAdmin
}

// User represents a staff account as stored in the `users` table.
// The json tags are omitted because these structs are used internally
// by the repository layer; handlers define separate response types.
//
// Fields:
//  ID           - primary key identifier of the user.
//  Username     - unique login name.
//  PasswordHash - bcrypt hashed password.
//  Name         - display name shown in the UI.
//  Role         - one of staff, kitchen, admin.
//  IsActive     - whether the account may log in.
//  CreatedAt    - timestamp of creation.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    PasswordHash string    // users.password_hash
    Name         string    // users.name
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only its SHA-256 hash is stored.
//
// Fields:
//  ID        - primary key identifier.
//  UserID    - owner of the token.
//  TokenHash - SHA-256 hex digest of the token value.
//  ExpiresAt - expiration timestamp of the token.
//  RevokedAt - when the token was revoked (null if still active).
//  CreatedAt - timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
