package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/quangtd/restaurant-table-orders/internal/lifecycle"
    "github.com/quangtd/restaurant-table-orders/internal/repository"
)

// dbTimeout bounds every database call issued from a handler.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// writeErr maps domain errors onto HTTP responses with a
// human-readable message. Unknown errors become opaque 500s so
// internals never leak to clients.
func writeErr(c echo.Context, err error) error {
    switch {
    case errors.Is(err, lifecycle.ErrInvalidArgument):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, lifecycle.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": "this order can no longer be modified"})
    case errors.Is(err, lifecycle.ErrNotAllowed):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed for your role"})
    case errors.Is(err, lifecycle.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "order is being updated, try again"})
    case errors.Is(err, repository.ErrOrderNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
    case errors.Is(err, repository.ErrTableNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
    case errors.Is(err, repository.ErrMenuItemNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
    case errors.Is(err, repository.ErrCategoryNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
    case errors.Is(err, repository.ErrTableExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "table number already exists"})
    case errors.Is(err, repository.ErrUsernameExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}

// pathUint parses a numeric path parameter.
func pathUint(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}

// callerRole returns the role claim JWTAuth stored in the context.
func callerRole(c echo.Context) string {
    r, _ := c.Get("role").(string)
    return r
}
