package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/quangtd/restaurant-table-orders/internal/config"
    "github.com/quangtd/restaurant-table-orders/internal/model"
    "github.com/quangtd/restaurant-table-orders/internal/repository"
)

// UserAdminHandler lets admins manage staff accounts. Customers have
// no accounts so there is nothing here for them.
type UserAdminHandler struct {
    Cfg   config.Config
    Users *repository.UserRepo
}

func NewUserAdminHandler(cfg config.Config, u *repository.UserRepo) *UserAdminHandler {
    return &UserAdminHandler{Cfg: cfg, Users: u}
}

type createUserReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
    Name     string `json:"name"`
    Role     string `json:"role"`
}

// Create adds a staff account.
func (h *UserAdminHandler) Create(c echo.Context) error {
    var req createUserReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.ToLower(strings.TrimSpace(req.Username))
    req.Role = strings.ToLower(strings.TrimSpace(req.Role))
    if req.Username == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, password and name required"})
    }
    if !model.ValidStaffRole(req.Role) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be staff, kitchen or admin"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    id, err := h.Users.Create(ctx, req.Username, req.Password, strings.TrimSpace(req.Name), req.Role, h.Cfg.BcryptCost)
    if err != nil {
        return writeErr(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":       id,
        "username": req.Username,
        "name":     req.Name,
        "role":     req.Role,
    })
}

// List returns all staff accounts without password hashes.
func (h *UserAdminHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    users, err := h.Users.List(ctx)
    if err != nil {
        return writeErr(c, err)
    }
    resp := make([]echo.Map, 0, len(users))
    for _, u := range users {
        resp = append(resp, echo.Map{
            "id": u.ID, "username": u.Username, "name": u.Name,
            "role": u.Role, "is_active": u.IsActive,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"users": resp})
}

type setActiveReq struct {
    IsActive *bool `json:"is_active"`
}

// SetActive enables or disables an account. Disabled accounts fail
// login and refresh but existing access tokens run out on their own.
func (h *UserAdminHandler) SetActive(c echo.Context) error {
    id, ok := pathUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req setActiveReq
    if err := c.Bind(&req); err != nil || req.IsActive == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_active required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Users.SetActive(ctx, id, *req.IsActive); err != nil {
        return writeErr(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
