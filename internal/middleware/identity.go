package middleware

// identity.go defines helper functions shared across middleware files.
// They read the identity values that JWTAuth stored in the Echo
// context; rate limiting keys on them so authenticated traffic is
// limited per principal rather than per IP alone.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// currentUserID extracts a stable principal identifier from the
// context. Staff tokens carry a numeric subject, table sessions a
// "table:<n>" subject. Returns "anon" for unauthenticated requests.
func currentUserID(c echo.Context) string {
    v := c.Get("user_id")
    if v == nil {
        return "anon"
    }
    switch s := v.(type) {
    case string:
        if s != "" {
            return s
        }
    case float64:
        return fmt.Sprintf("%.0f", s)
    }
    return "anon"
}

// SessionTable returns the table number bound to a customer session
// token, or false when the caller is not a table session.
func SessionTable(c echo.Context) (int, bool) {
    n, ok := c.Get("table_number").(int)
    return n, ok
}
