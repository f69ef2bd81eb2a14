package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole gates a route to the given roles (customer, staff,
// kitchen, admin), matched against the "role" claim JWTAuth stored in
// the context. This is the coarse route-level gate only; the
// per-transition capability check lives in the lifecycle service, so
// a kitchen token passing this gate can still be refused a staff-only
// transition.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get("role").(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
