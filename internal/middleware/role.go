package middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the authenticated
// caller holds one of the listed roles.  Membership is exact: there is no
// implicit hierarchy, so an admin is not accepted where only superadmin is
// listed and vice versa.  Each endpoint declares its own allowed set.
//
// A request with no resolved identity is rejected with 401 so callers can
// distinguish "not authenticated" from "wrong role" (403).  It assumes
// Authenticate ran earlier in the chain and stored the role in the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    required := strings.Join(roles, ", ")
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(CtxRole).(string)
            if !ok || role == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
            }
            if !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{
                    "error": "access denied, required role: " + required,
                })
            }
            return next(c)
        }
    }
}
