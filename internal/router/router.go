package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/quangtd/restaurant-table-orders/internal/handler"
    "github.com/quangtd/restaurant-table-orders/internal/middleware"
    "github.com/quangtd/restaurant-table-orders/internal/model"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
    Auth   *handler.AuthHandler
    Menu   *handler.MenuHandler
    Tables *handler.TableHandler
    Orders *handler.OrderHandler
    Users  *handler.UserAdminHandler
    WS     *handler.WSHandler
}

// Register wires all routes onto the Echo instance. cached is the
// response-cache middleware applied to public read endpoints; pass a
// no-op middleware when Redis is unavailable.
func Register(e *echo.Echo, h Handlers, jwtSecret string, cached echo.MiddlewareFunc) {
    // Health check for load balancers and monitoring.
    e.GET("/healthz", handler.Health)

    // Public browsing: guests read the menu and floor plan before they
    // have any session. These responses are cacheable.
    pub := e.Group("/v1", cached)
    pub.GET("/menu/categories", h.Menu.Categories)
    pub.GET("/menu/items", h.Menu.Items)
    pub.GET("/menu/items/:id", h.Menu.GetItem)
    pub.GET("/tables", h.Tables.List)
    pub.GET("/tables/:number", h.Tables.Get)

    // Session bootstrap: staff login and anonymous table sessions.
    auth := e.Group("/v1/auth")
    auth.POST("/login", h.Auth.Login)
    auth.POST("/refresh", h.Auth.Refresh)
    auth.POST("/logout", h.Auth.Logout)
    auth.POST("/table-session", h.Auth.TableSession)

    // Everything below requires a valid token (staff or table session).
    v1 := e.Group("/v1")
    v1.Use(middleware.JWTAuth(jwtSecret))
    v1.GET("/me", h.Auth.Me)
    v1.GET("/ws", h.WS.Serve)

    // Placing orders: customer sessions and staff-side roles.
    v1.POST("/orders", h.Orders.Create)
    v1.GET("/my-orders", h.Orders.MyOrders,
        middleware.RequireRole(model.RoleCustomer))
    v1.GET("/orders/:id", h.Orders.Get)

    // Staff-side reads and the advance command. The lifecycle service
    // enforces per-transition capabilities beyond this coarse gate.
    staffSide := middleware.RequireRole(model.RoleStaff, model.RoleKitchen, model.RoleAdmin)
    v1.GET("/orders", h.Orders.List, staffSide)
    v1.PATCH("/orders/:id/status", h.Orders.Advance, staffSide)
    v1.PATCH("/tables/:number/status", h.Tables.SetStatus,
        middleware.RequireRole(model.RoleStaff, model.RoleAdmin))

    // Admin management surface.
    admin := e.Group("/v1/admin")
    admin.Use(middleware.JWTAuth(jwtSecret))
    admin.Use(middleware.RequireRole(model.RoleAdmin))
    admin.POST("/menu/categories", h.Menu.CreateCategory)
    admin.POST("/menu/items", h.Menu.CreateItem)
    admin.PUT("/menu/items/:id", h.Menu.UpdateItem)
    admin.DELETE("/menu/items/:id", h.Menu.DeleteItem)
    admin.POST("/tables", h.Tables.Create)
    admin.POST("/users", h.Users.Create)
    admin.GET("/users", h.Users.List)
    admin.PATCH("/users/:id/active", h.Users.SetActive)
}
