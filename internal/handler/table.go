package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/quangtd/restaurant-table-orders/internal/lifecycle"
    "github.com/quangtd/restaurant-table-orders/internal/model"
    "github.com/quangtd/restaurant-table-orders/internal/repository"
)

// TableHandler exposes the floor plan. Reads go through the lifecycle
// service so occupancy is re-derived on the way out; the reserved
// override is the only status staff set by hand.
type TableHandler struct {
    Svc    *lifecycle.Service
    Tables *repository.TableRepo
}

func NewTableHandler(svc *lifecycle.Service, t *repository.TableRepo) *TableHandler {
    return &TableHandler{Svc: svc, Tables: t}
}

// List returns every table with freshly derived occupancy.
func (h *TableHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    tables, err := h.Svc.ListTables(ctx)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

// Get returns one table by number.
func (h *TableHandler) Get(c echo.Context) error {
    number, err := strconv.Atoi(c.Param("number"))
    if err != nil || number < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table number"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    table, err := h.Svc.Table(ctx, number)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusOK, table)
}

type createTableReq struct {
    Number   int `json:"table_number"`
    Capacity int `json:"capacity"`
}

// Create adds a table to the floor plan (admin only).
func (h *TableHandler) Create(c echo.Context) error {
    var req createTableReq
    if err := c.Bind(&req); err != nil || req.Number < 1 || req.Capacity < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number and capacity required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    table, err := h.Tables.Create(ctx, req.Number, req.Capacity)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusCreated, table)
}

type setTableStatusReq struct {
    Status model.TableStatus `json:"status"`
}

// SetStatus applies a manual override (staff/admin). Setting reserved
// pins the table until it is cleared; setting available clears both
// the override and the current order pointer. Occupied cannot be set
// by hand, it is always derived.
func (h *TableHandler) SetStatus(c echo.Context) error {
    number, err := strconv.Atoi(c.Param("number"))
    if err != nil || number < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table number"})
    }
    var req setTableStatusReq
    if err := c.Bind(&req); err != nil || !model.ValidTableStatus(req.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
    }
    if req.Status == model.TableOccupied {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "occupied is derived from orders, not set by hand"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    table, err := h.Tables.GetByNumber(ctx, number)
    if err != nil {
        return writeErr(c, err)
    }
    if err := h.Tables.SetStatus(ctx, table.ID, req.Status); err != nil {
        return writeErr(c, err)
    }

    // Re-derive immediately: clearing a reservation on a table with
    // active orders should show occupied, not available.
    status, err := h.Svc.DeriveTableOccupancy(ctx, table.ID)
    if err != nil {
        return writeErr(c, err)
    }
    table.Status = status
    return c.JSON(http.StatusOK, table)
}
