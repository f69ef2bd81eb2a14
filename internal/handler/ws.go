package handler

import (
    "encoding/json"
    "net/http"
    "time"

    "github.com/gorilla/websocket"
    "github.com/labstack/echo/v4"

    "github.com/quangtd/restaurant-table-orders/internal/broadcast"
    "github.com/quangtd/restaurant-table-orders/internal/middleware"
    "github.com/quangtd/restaurant-table-orders/internal/model"
)

// helloWait bounds how long a freshly upgraded connection gets to send
// its scope declaration before being dropped.
const helloWait = 10 * time.Second

// WSHandler upgrades authenticated clients onto the broadcast hub.
// The first frame the client sends declares the scopes it wants, e.g.
// {"scopes":["kitchen"]}; the server intersects that with what the
// caller's role may see before joining.
type WSHandler struct {
    Hub      *broadcast.Hub
    upgrader websocket.Upgrader
}

func NewWSHandler(hub *broadcast.Hub) *WSHandler {
    return &WSHandler{
        Hub: hub,
        upgrader: websocket.Upgrader{
            ReadBufferSize:  1024,
            WriteBufferSize: 1024,
            // The API is same-origin in production; kiosks and the
            // kitchen display connect with tokens, not cookies.
            CheckOrigin: func(*http.Request) bool { return true },
        },
    }
}

type scopeHello struct {
    Scopes []string `json:"scopes"`
}

// Serve handles GET /v1/ws. JWTAuth has already run, so the role and
// (for customers) the table number are in the context.
func (h *WSHandler) Serve(c echo.Context) error {
    role := callerRole(c)
    allowed := allowedScopes(c, role)
    if len(allowed) == 0 {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "no scopes for role"})
    }

    conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
    if err != nil {
        return nil // Upgrade already wrote the error response
    }

    _ = conn.SetReadDeadline(time.Now().Add(helloWait))
    _, frame, err := conn.ReadMessage()
    if err != nil {
        _ = conn.Close()
        return nil
    }
    var hello scopeHello
    if err := json.Unmarshal(frame, &hello); err != nil || len(hello.Scopes) == 0 {
        _ = conn.WriteMessage(websocket.CloseMessage,
            websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "scope declaration required"))
        _ = conn.Close()
        return nil
    }

    scopes := make([]string, 0, len(hello.Scopes))
    for _, s := range hello.Scopes {
        if allowed[s] {
            scopes = append(scopes, s)
        }
    }
    if len(scopes) == 0 {
        _ = conn.WriteMessage(websocket.CloseMessage,
            websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "requested scopes not permitted"))
        _ = conn.Close()
        return nil
    }

    client := broadcast.NewWSClient(conn)
    h.Hub.Join(client, scopes...)
    c.Logger().Infof("ws: %s joined %v", role, scopes)

    // Read loop only detects disconnect; clients never send past the
    // hello frame.
    _ = conn.SetReadDeadline(time.Time{})
    for {
        if _, _, err := conn.ReadMessage(); err != nil {
            break
        }
    }
    h.Hub.Leave(client)
    client.Close()
    return nil
}

// allowedScopes maps a role onto the scopes it may subscribe to.
func allowedScopes(c echo.Context, role string) map[string]bool {
    switch role {
    case model.RoleKitchen:
        return map[string]bool{broadcast.ScopeKitchen: true}
    case model.RoleStaff:
        return map[string]bool{broadcast.ScopeStaff: true}
    case model.RoleAdmin:
        return map[string]bool{broadcast.ScopeKitchen: true, broadcast.ScopeStaff: true}
    case model.RoleCustomer:
        if tn, ok := middleware.SessionTable(c); ok {
            return map[string]bool{broadcast.TableScope(tn): true}
        }
    }
    return nil
}
