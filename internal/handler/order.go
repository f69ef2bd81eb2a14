package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/quangtd/restaurant-table-orders/internal/lifecycle"
    "github.com/quangtd/restaurant-table-orders/internal/middleware"
    "github.com/quangtd/restaurant-table-orders/internal/model"
    "github.com/quangtd/restaurant-table-orders/internal/repository"
)

// OrderHandler exposes the two lifecycle commands and the order read
// endpoints. All status/occupancy mutation happens inside the
// lifecycle service; handlers only translate HTTP.
type OrderHandler struct {
    Svc *lifecycle.Service
}

func NewOrderHandler(svc *lifecycle.Service) *OrderHandler { return &OrderHandler{Svc: svc} }

type createOrderReq struct {
    TableNumber int                  `json:"table_number"`
    Items       []lifecycle.LineItem `json:"items"`
}

// Create places an order. Customer sessions are pinned to their own
// table regardless of the submitted body; staff and admin may order on
// behalf of any table (phone orders, corrections).
func (h *OrderHandler) Create(c echo.Context) error {
    var req createOrderReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    tableNumber := req.TableNumber
    if tn, ok := middleware.SessionTable(c); ok {
        tableNumber = tn
    } else if role := callerRole(c); role != model.RoleStaff && role != model.RoleAdmin {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed for your role"})
    }
    if tableNumber < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    order, err := h.Svc.PlaceOrder(ctx, tableNumber, req.Items)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusCreated, order)
}

// MyOrders returns the session table's orders (customer only).
func (h *OrderHandler) MyOrders(c echo.Context) error {
    tn, ok := middleware.SessionTable(c)
    if !ok {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "table session required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    orders, err := h.Svc.Orders(ctx, repository.OrderFilter{TableNumber: &tn})
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// List returns orders for staff-side views. Filters: ?status=,
// ?table=, ?active=true.
func (h *OrderHandler) List(c echo.Context) error {
    var f repository.OrderFilter
    if v := c.QueryParam("status"); v != "" {
        st := model.OrderStatus(v)
        if !model.ValidStatus(st) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
        }
        f.Status = &st
    }
    if v := c.QueryParam("table"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table"})
        }
        f.TableNumber = &n
    }
    f.ActiveOnly = c.QueryParam("active") == "true"

    ctx, cancel := reqCtx(c)
    defer cancel()

    orders, err := h.Svc.Orders(ctx, f)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Get returns one order by uuid. Customer sessions may only read
// orders on their own table.
func (h *OrderHandler) Get(c echo.Context) error {
    id := c.Param("id")
    if id == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    order, err := h.Svc.Order(ctx, id)
    if err != nil {
        return writeErr(c, err)
    }
    if tn, ok := middleware.SessionTable(c); ok && order.TableNumber != tn {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
    }
    return c.JSON(http.StatusOK, order)
}

type advanceReq struct {
    Status model.OrderStatus `json:"status"`
}

// Advance drives one status transition. The lifecycle service owns
// both the legality of the move and the role capability check.
func (h *OrderHandler) Advance(c echo.Context) error {
    id := c.Param("id")
    if id == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req advanceReq
    if err := c.Bind(&req); err != nil || req.Status == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    order, err := h.Svc.AdvanceStatus(ctx, id, req.Status, callerRole(c))
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusOK, order)
}
