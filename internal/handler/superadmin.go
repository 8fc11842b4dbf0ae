package handler

import (
    "context"
    "errors"
    "fmt"
    "log"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/glossline/glossline/internal/config"
    "github.com/glossline/glossline/internal/middleware"
    "github.com/glossline/glossline/internal/queue"
    "github.com/glossline/glossline/internal/repository"
    "github.com/glossline/glossline/internal/utils"
)

// resetTokenTTL bounds how long a password-reset token stays redeemable.
const resetTokenTTL = 15 * time.Minute

// SuperadminHandler serves the privileged system-management endpoints:
// superadmin login and provisioning, user role management, system settings,
// backups and the credential lifecycle.  Except for login, provisioning and
// the password-reset pair, every route is guarded by
// RequireRole("superadmin").
type SuperadminHandler struct {
    Cfg      config.Config
    Users    UserStore
    Settings SettingsStore
    Stats    StatsStore
    Resets   ResetStore
    Audit    AuditSink
}

func NewSuperadminHandler(cfg config.Config, users UserStore, settings SettingsStore, stats StatsStore, resets ResetStore, audit AuditSink) *SuperadminHandler {
    return &SuperadminHandler{Cfg: cfg, Users: users, Settings: settings, Stats: stats, Resets: resets, Audit: audit}
}

// audit publishes an event and ignores delivery failures: auditing never
// fails the operation it records.
func (h *SuperadminHandler) audit(ctx context.Context, action string, actorID uint64, actorEmail string, targetID uint64, detail string) {
    _ = h.Audit.Publish(ctx, queue.AuditEvent{
        Action:     action,
        ActorID:    actorID,
        ActorEmail: actorEmail,
        TargetID:   targetID,
        Detail:     detail,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    })
}

// ----- DTOs -----

type provisionReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
}
type roleUpdateReq struct {
    Role string `json:"role"`
}
type activeUpdateReq struct {
    Active *bool `json:"active"`
}
type settingsUpdateReq struct {
    NotificationEmail string `json:"notificationEmail"`
    SignupsEnabled    *bool  `json:"signupsEnabled"`
    MaintenanceMode   *bool  `json:"maintenanceMode"`
}
type credentialDeleteReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type forgotPasswordReq struct {
    Email string `json:"email"`
}
type resetPasswordReq struct {
    Token       string `json:"token"`
    NewPassword string `json:"newPassword"`
}

type settingsResp struct {
    NotificationEmail string     `json:"notificationEmail"`
    APIKey            string     `json:"apiKey"`
    SignupsEnabled    bool       `json:"signupsEnabled"`
    MaintenanceMode   bool       `json:"maintenanceMode"`
    LastBackupAt      *time.Time `json:"lastBackupAt"`
    UpdatedAt         time.Time  `json:"updatedAt"`
}

func toSettingsResp(s repository.Settings) settingsResp {
    out := settingsResp{
        NotificationEmail: s.NotificationEmail,
        APIKey:            s.APIKey,
        SignupsEnabled:    s.SignupsEnabled,
        MaintenanceMode:   s.MaintenanceMode,
        UpdatedAt:         s.UpdatedAt,
    }
    if s.LastBackupAt.Valid {
        t := s.LastBackupAt.Time
        out.LastBackupAt = &t
    }
    return out
}

// Login authenticates the superadmin account and opens a session.  Any
// non-superadmin account is rejected with the same message as a bad
// password so the endpoint does not reveal which accounts exist.
func (h *SuperadminHandler) Login(c echo.Context) error {
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
    if u.Role != repository.RoleSuperadmin || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    if !u.IsActive {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "account is deactivated"})
    }

    access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, u.Email, u.Role, h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Users.SetRefreshToken(ctx, u.ID, refresh.Token); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }
    utils.SetAccessCookie(c, access, h.Cfg.IsProd())
    utils.SetRefreshCookie(c, refresh, h.Cfg.IsProd())

    h.audit(ctx, queue.ActionSuperadminLogin, u.ID, u.Email, u.ID, "")

    return c.JSON(http.StatusOK, sessionResp{
        User:    toUserResponse(u),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Token, Expires: refresh.Exp},
    })
}

// Provision creates the single superadmin account.  It succeeds at most
// once: the storage layer's unique slot makes a concurrent second call fail
// with ErrSuperadminExists rather than racing.
func (h *SuperadminHandler) Provision(c echo.Context) error {
    var req provisionReq
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

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.CreateSuperadmin(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrSuperadminExists):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "superadmin already exists"})
        case errors.Is(err, repository.ErrEmailExists):
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create superadmin failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"user": toUserResponse(u)})
}

// UpdateRole changes a user's role.  The superadmin account itself is
// protected: its role cannot be changed here, and nobody can be promoted to
// superadmin while the slot is taken.
func (h *SuperadminHandler) UpdateRole(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req roleUpdateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    role := strings.ToLower(strings.TrimSpace(req.Role))
    if role == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role is required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.ChangeRole(ctx, id, role)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrInvalidRole):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
        case errors.Is(err, repository.ErrUserNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        case errors.Is(err, repository.ErrProtectedRole):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "superadmin role is protected"})
        case errors.Is(err, repository.ErrSuperadminExists):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "superadmin already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
    }

    h.audit(ctx, queue.ActionRoleChanged, middleware.CallerID(c), middleware.CallerEmail(c), u.ID, "role="+role)
    return c.JSON(http.StatusOK, echo.Map{"user": toUserResponse(u)})
}

// UpdateActive toggles a user account's active flag.  Deactivated accounts
// cannot log in or refresh, but their issued access tokens remain valid
// until expiry.
func (h *SuperadminHandler) UpdateActive(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req activeUpdateReq
    if err := c.Bind(&req); err != nil || req.Active == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "active is required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.SetActive(ctx, id, *req.Active)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }

    h.audit(ctx, queue.ActionActiveChanged, middleware.CallerID(c), middleware.CallerEmail(c), u.ID,
        fmt.Sprintf("active=%t", *req.Active))
    return c.JSON(http.StatusOK, echo.Map{"user": toUserResponse(u)})
}

// GetStats returns aggregate user and content counts.
func (h *SuperadminHandler) GetStats(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    s, err := h.Stats.Counts(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "users": s.UsersByRole,
        "content": echo.Map{
            "celebrities":    s.Celebrities,
            "outfits":        s.Outfits,
            "reviews":        s.Reviews,
            "upcomingMovies": s.UpcomingMovies,
        },
    })
}

// GetSettings returns the system settings singleton, creating it with
// defaults on first access.
func (h *SuperadminHandler) GetSettings(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    s, err := h.Settings.Get(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load settings failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"settings": toSettingsResp(s)})
}

// UpdateSettings rewrites the mutable settings fields.  Omitted booleans
// keep their current values.
func (h *SuperadminHandler) UpdateSettings(c echo.Context) error {
    var req settingsUpdateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    email := strings.TrimSpace(req.NotificationEmail)
    if email != "" && !strings.Contains(email, "@") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification email"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    cur, err := h.Settings.Get(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load settings failed"})
    }
    signups := cur.SignupsEnabled
    if req.SignupsEnabled != nil {
        signups = *req.SignupsEnabled
    }
    maintenance := cur.MaintenanceMode
    if req.MaintenanceMode != nil {
        maintenance = *req.MaintenanceMode
    }
    if email == "" {
        email = cur.NotificationEmail
    }

    s, err := h.Settings.Update(ctx, email, signups, maintenance)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update settings failed"})
    }

    h.audit(ctx, queue.ActionSettingsUpdated, middleware.CallerID(c), middleware.CallerEmail(c), 0,
        fmt.Sprintf("signups=%t maintenance=%t", signups, maintenance))
    return c.JSON(http.StatusOK, echo.Map{"settings": toSettingsResp(s)})
}

// RotateAPIKey replaces the system API key and returns the new value.
func (h *SuperadminHandler) RotateAPIKey(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    key, err := h.Settings.RotateAPIKey(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rotate key failed"})
    }
    h.audit(ctx, queue.ActionAPIKeyRotated, middleware.CallerID(c), middleware.CallerEmail(c), 0, "")
    return c.JSON(http.StatusOK, echo.Map{"apiKey": key})
}

// RunBackup records a backup run and notifies the audit queue.  The actual
// dump is performed out of process by the operator tooling that consumes
// the event.
func (h *SuperadminHandler) RunBackup(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    at, err := h.Settings.StampBackup(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "backup failed"})
    }
    h.audit(ctx, queue.ActionBackupCompleted, middleware.CallerID(c), middleware.CallerEmail(c), 0, "")
    return c.JSON(http.StatusOK, echo.Map{"lastBackupAt": at})
}

// DeleteCredential deletes the superadmin account after re-verifying the
// current password.  This is the only removal path for the superadmin.
// The session cookies are cleared on success.
func (h *SuperadminHandler) DeleteCredential(c echo.Context) error {
    var req credentialDeleteReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Users.DeleteSuperadmin(ctx, req.Email, req.Password); err != nil {
        switch {
        case errors.Is(err, repository.ErrUserNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        case errors.Is(err, repository.ErrInvalidPassword):
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid password"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }

    utils.ClearSessionCookies(c, h.Cfg.IsProd())
    h.audit(ctx, queue.ActionCredentialDeleted, middleware.CallerID(c), middleware.CallerEmail(c), 0, req.Email)
    return c.JSON(http.StatusOK, echo.Map{"message": "superadmin credential deleted"})
}

// ForgotPassword issues a password-reset token for the superadmin account.
// The response is identical whether or not the email matches an account, so
// the endpoint cannot be used to enumerate accounts.
func (h *SuperadminHandler) ForgotPassword(c echo.Context) error {
    var req forgotPasswordReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    const okMsg = "if the account exists, a reset token has been issued"

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil || u.Role != repository.RoleSuperadmin {
        return c.JSON(http.StatusOK, echo.Map{"message": okMsg})
    }

    token, err := h.Resets.Issue(ctx, u.Email, resetTokenTTL)
    if err != nil {
        // Deliberately the same response: an unavailable reset store must
        // not reveal that the account exists.
        log.Printf("forgot-password: issue token failed: %v", err)
        return c.JSON(http.StatusOK, echo.Map{"message": okMsg})
    }
    // TODO: deliver the token over SMTP to the settings notification email
    // once the mailer integration lands.
    log.Printf("forgot-password: reset token issued for %s: %s", u.Email, token)
    return c.JSON(http.StatusOK, echo.Map{"message": okMsg})
}

// ResetPassword redeems a reset token and sets a new password.  The stored
// refresh token is cleared so existing sessions cannot be refreshed with
// the old credentials.
func (h *SuperadminHandler) ResetPassword(c echo.Context) error {
    var req resetPasswordReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Token = strings.TrimSpace(req.Token)
    if req.Token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
    }
    if len(req.NewPassword) < utils.MinPasswordLength {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    email, err := h.Resets.Consume(ctx, req.Token)
    if err != nil {
        if errors.Is(err, repository.ErrResetTokenInvalid) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
    }

    u, err := h.Users.GetByEmail(ctx, email)
    if err != nil || u.Role != repository.RoleSuperadmin {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset token"})
    }
    if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
    }
    _ = h.Users.SetRefreshToken(ctx, u.ID, "")

    h.audit(ctx, queue.ActionPasswordReset, u.ID, u.Email, u.ID, "")
    return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
