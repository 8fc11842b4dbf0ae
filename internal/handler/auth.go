package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/glossline/glossline/internal/config"
    "github.com/glossline/glossline/internal/middleware"
    "github.com/glossline/glossline/internal/repository"
    "github.com/glossline/glossline/internal/utils"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
    Cfg      config.Config
    Users    UserStore
    Settings SettingsStore
}

func NewAuthHandler(cfg config.Config, users UserStore, settings SettingsStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: users, Settings: settings}
}

// ----- DTOs -----

type signupReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
    Role     string `json:"role"` // optional; defaults to "user"
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refreshToken"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type sessionResp struct {
    User    userResponse `json:"user"`
    Access  tokenPart    `json:"accessToken"`
    Refresh tokenPart    `json:"refreshToken"`
}

// issueSession creates the access/refresh pair, persists the refresh token
// as the user's single active session and attaches both cookies.
func (h *AuthHandler) issueSession(ctx context.Context, c echo.Context, u repository.User) (*sessionResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return nil, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, u.Email, u.Role, h.Cfg.RefreshTTLDays)
    if err != nil {
        return nil, err
    }
    if err := h.Users.SetRefreshToken(ctx, u.ID, refresh.Token); err != nil {
        return nil, err
    }
    utils.SetAccessCookie(c, access, h.Cfg.IsProd())
    utils.SetRefreshCookie(c, refresh, h.Cfg.IsProd())
    return &sessionResp{
        User:    toUserResponse(u),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Token, Expires: refresh.Exp},
    }, nil
}

// Signup creates a user account and opens a session immediately.  The
// superadmin role can never be requested here; provisioning the superadmin
// has its own privileged endpoint.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Name == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
    }
    if len(req.Password) < utils.MinPasswordLength {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
    }
    role := strings.ToLower(strings.TrimSpace(req.Role))
    if role == "" {
        role = repository.RoleUser
    }
    if role == repository.RoleSuperadmin {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "superadmin role cannot be requested"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    settings, err := h.Settings.Get(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load settings failed"})
    }
    if !settings.SignupsEnabled {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "signups are currently disabled"})
    }

    u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrEmailExists):
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        case errors.Is(err, repository.ErrRoleNotAllowed):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "superadmin role cannot be requested"})
        case errors.Is(err, repository.ErrInvalidRole):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    resp, err := h.issueSession(ctx, c, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
    }
    return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and opens a session.  A new login overwrites
// the stored refresh token, so any previous session's refresh token stops
// working immediately.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    if !u.IsActive {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "account is deactivated"})
    }

    resp, err := h.issueSession(ctx, c, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a valid refresh token for a new access token.  The
// refresh token is NOT rotated.  The presented token must textually match
// the single value stored on the user record, which rejects tokens from a
// superseded session even when they are cryptographically valid.
func (h *AuthHandler) Refresh(c echo.Context) error {
    raw := ""
    if ck, err := c.Cookie(utils.RefreshCookieName); err == nil {
        raw = ck.Value
    }
    if raw == "" {
        var req refreshReq
        _ = c.Bind(&req)
        raw = strings.TrimSpace(req.RefreshToken)
    }
    if raw == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh token required"})
    }

    id, err := utils.VerifyToken(utils.TokenKindRefresh, h.Cfg.RefreshSecret, raw)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByID(ctx, id.UserID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    if !u.RefreshToken.Valid || u.RefreshToken.String != raw {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }
    if !u.IsActive {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "account is deactivated"})
    }

    access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    utils.SetAccessCookie(c, access, h.Cfg.IsProd())
    return c.JSON(http.StatusOK, echo.Map{
        "accessToken": tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByID(ctx, middleware.CallerID(c))
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"user": toUserResponse(u)})
}

// Logout ends the session: the stored refresh token is cleared and both
// cookies are expired.  The handler resolves the access token itself rather
// than relying on the auth middleware so the cookies are wiped even when the
// token no longer verifies.  Already-issued access tokens stay valid until
// their expiry; logout only prevents the session from being refreshed.
func (h *AuthHandler) Logout(c echo.Context) error {
    raw := ""
    if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
        raw = strings.TrimPrefix(auth, "Bearer ")
    }
    if raw == "" {
        if ck, err := c.Cookie(utils.AccessCookieName); err == nil {
            raw = ck.Value
        }
    }

    utils.ClearSessionCookies(c, h.Cfg.IsProd())

    if raw == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token provided"})
    }
    id, err := utils.VerifyToken(utils.TokenKindAccess, h.Cfg.AccessSecret, raw)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Users.SetRefreshToken(ctx, id.UserID, ""); err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
