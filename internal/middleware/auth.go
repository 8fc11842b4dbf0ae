package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/glossline/glossline/internal/utils" // token verification and cookie names
)

// Context keys under which the authenticated caller's claims are stored.
// Handlers and downstream middleware read them via c.Get().
const (
    CtxUserID = "user_id"
    CtxEmail  = "email"
    CtxRole   = "role"
)

// Authenticate returns an Echo middleware that resolves the caller's
// identity from an access token and injects its claims into the request
// context.  The token source precedence is fixed: the Authorization header
// ("Bearer <token>") wins over the accessToken cookie.  Absence of both
// yields 401 "no token provided"; a token that fails verification yields
// 401 "invalid or expired token".  The middleware performs no side effects
// beyond the context writes.
func Authenticate(accessSecret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := ""
            // Source 1: Authorization header.
            if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
                raw = strings.TrimPrefix(auth, "Bearer ")
            }
            // Source 2: access token cookie, only when no header was sent.
            if raw == "" {
                if ck, err := c.Cookie(utils.AccessCookieName); err == nil {
                    raw = ck.Value
                }
            }
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token provided"})
            }

            id, err := utils.VerifyToken(utils.TokenKindAccess, accessSecret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
            }

            c.Set(CtxUserID, id.UserID)
            c.Set(CtxEmail, id.Email)
            c.Set(CtxRole, id.Role)
            return next(c)
        }
    }
}

// CallerID returns the authenticated user's id from the context, or 0 when
// the request carries no resolved identity.
func CallerID(c echo.Context) uint64 {
    if v, ok := c.Get(CtxUserID).(uint64); ok {
        return v
    }
    return 0
}

// CallerEmail returns the authenticated user's email, or "".
func CallerEmail(c echo.Context) string {
    v, _ := c.Get(CtxEmail).(string)
    return v
}

// CallerRole returns the authenticated user's role, or "".
func CallerRole(c echo.Context) string {
    v, _ := c.Get(CtxRole).(string)
    return v
}
