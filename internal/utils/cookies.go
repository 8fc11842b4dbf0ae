package utils

// cookies.go implements the session cookie contract shared by every auth
// endpoint.  Both tokens ride in HTTP-only cookies with fixed security
// attributes; handlers only decide WHICH tokens to attach or whether to clear
// the pair.  SameSite is Strict everywhere, including the superadmin login
// flow, so the attribute set never depends on the call site.

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Cookie names used for the browser session.
const (
    AccessCookieName  = "accessToken"
    RefreshCookieName = "refreshToken"
)

func sessionCookie(name, value string, maxAge time.Duration, secure bool) *http.Cookie {
    return &http.Cookie{
        Name:     name,
        Value:    value,
        Path:     "/",
        MaxAge:   int(maxAge / time.Second),
        HttpOnly: true,
        Secure:   secure,
        SameSite: http.SameSiteStrictMode,
    }
}

// SetAccessCookie attaches the access token cookie to the response.  The
// max-age is derived from the token expiry so cookie and token lapse
// together.
func SetAccessCookie(c echo.Context, token SignedToken, secure bool) {
    ttl := time.Until(token.Exp)
    if ttl < 0 {
        ttl = 0
    }
    c.SetCookie(sessionCookie(AccessCookieName, token.Token, ttl, secure))
}

// SetRefreshCookie attaches the refresh token cookie to the response.
func SetRefreshCookie(c echo.Context, token SignedToken, secure bool) {
    ttl := time.Until(token.Exp)
    if ttl < 0 {
        ttl = 0
    }
    c.SetCookie(sessionCookie(RefreshCookieName, token.Token, ttl, secure))
}

// ClearSessionCookies expires both session cookies unconditionally.  Used on
// logout, including the failure path: even when the caller's access token no
// longer verifies, the browser state is wiped.
func ClearSessionCookies(c echo.Context, secure bool) {
    for _, name := range []string{AccessCookieName, RefreshCookieName} {
        c.SetCookie(&http.Cookie{
            Name:     name,
            Value:    "",
            Path:     "/",
            MaxAge:   -1,
            HttpOnly: true,
            Secure:   secure,
            SameSite: http.SameSiteStrictMode,
        })
    }
}
