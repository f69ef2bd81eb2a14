package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/quangtd/restaurant-table-orders/internal/model"
    "github.com/quangtd/restaurant-table-orders/internal/repository"
)

// MenuHandler serves menu browsing for guests and menu management for
// admins. Browsing endpoints sit behind the response cache; edits go
// straight to the database.
type MenuHandler struct {
    Menu *repository.MenuRepo
}

func NewMenuHandler(m *repository.MenuRepo) *MenuHandler { return &MenuHandler{Menu: m} }

// Categories lists all menu categories.
func (h *MenuHandler) Categories(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    cats, err := h.Menu.Categories(ctx)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}

// Items lists menu items, optionally filtered by ?category=, ?search=
// and ?include_unavailable=true (staff side).
func (h *MenuHandler) Items(c echo.Context) error {
    var f repository.ItemFilter
    if v := c.QueryParam("category"); v != "" {
        id, err := strconv.ParseUint(v, 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
        }
        f.CategoryID = &id
    }
    f.Search = strings.TrimSpace(c.QueryParam("search"))
    f.IncludeUnavailable = c.QueryParam("include_unavailable") == "true"

    ctx, cancel := reqCtx(c)
    defer cancel()

    items, err := h.Menu.Items(ctx, f)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetItem returns a single menu item.
func (h *MenuHandler) GetItem(c echo.Context) error {
    id, ok := pathUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    item, err := h.Menu.GetItem(ctx, id)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusOK, item)
}

// ----- admin CRUD -----

type categoryReq struct {
    Name        string `json:"name"`
    Description string `json:"description"`
}

// CreateCategory adds a menu category (admin only).
func (h *MenuHandler) CreateCategory(c echo.Context) error {
    var req categoryReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    id, err := h.Menu.CreateCategory(ctx, strings.TrimSpace(req.Name), req.Description)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

type itemReq struct {
    CategoryID  uint64 `json:"category_id"`
    Name        string `json:"name"`
    Description string `json:"description"`
    PriceCents  uint32 `json:"price_cents"`
    ImagePath   string `json:"image_path"`
    PrepTimeMin int    `json:"preparation_time"`
    IsAvailable *bool  `json:"is_available"`
}

func (r itemReq) toModel(id uint64) *model.MenuItem {
    available := true
    if r.IsAvailable != nil {
        available = *r.IsAvailable
    }
    return &model.MenuItem{
        ID:          id,
        CategoryID:  r.CategoryID,
        Name:        strings.TrimSpace(r.Name),
        Description: r.Description,
        PriceCents:  r.PriceCents,
        ImagePath:   r.ImagePath,
        PrepTimeMin: r.PrepTimeMin,
        IsAvailable: available,
    }
}

// CreateItem adds a menu item (admin only).
func (h *MenuHandler) CreateItem(c echo.Context) error {
    var req itemReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Name) == "" || req.CategoryID == 0 || req.PriceCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, category_id and price_cents required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    item, err := h.Menu.CreateItem(ctx, req.toModel(0))
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusCreated, item)
}

// UpdateItem replaces a menu item's fields (admin only). Orders placed
// earlier keep their snapshotted name and price.
func (h *MenuHandler) UpdateItem(c echo.Context) error {
    id, ok := pathUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req itemReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Name) == "" || req.CategoryID == 0 || req.PriceCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, category_id and price_cents required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    item, err := h.Menu.UpdateItem(ctx, req.toModel(id))
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusOK, item)
}

// DeleteItem removes a menu item (admin only). Prefer flipping
// is_available off; deletion is for items created by mistake.
func (h *MenuHandler) DeleteItem(c echo.Context) error {
    id, ok := pathUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Menu.DeleteItem(ctx, id); err != nil {
        return writeErr(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
