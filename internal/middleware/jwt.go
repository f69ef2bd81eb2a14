package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects its claims into the request context. The provided
// secret must match the one used when issuing tokens. Both staff
// access tokens and anonymous table-session tokens pass through here;
// handlers read the authenticated identity via c.Get("user_id"),
// c.Get("role"), c.Get("name") and, for customer sessions,
// c.Get("table_number").
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            raw := ""
            if strings.HasPrefix(auth, "Bearer ") {
                raw = strings.TrimPrefix(auth, "Bearer ")
            } else if t := c.QueryParam("token"); t != "" {
                // WebSocket clients cannot set headers from a browser,
                // so the upgrade endpoint accepts ?token=.
                raw = t
            }
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set("user_id", claims["sub"])
            c.Set("role", claims["role"])
            if name, ok := claims["name"].(string); ok {
                c.Set("name", name)
            }
            // table_number is present only on customer session tokens.
            // JSON numbers decode as float64.
            if tn, ok := claims["table_number"].(float64); ok {
                c.Set("table_number", int(tn))
            }
            return next(c)
        }
    }
}
