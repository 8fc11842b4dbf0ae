package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminHandler serves the admin-tier user listing.  Routes using it are
// guarded by RequireRole("admin", "superadmin").
type AdminHandler struct {
	Users UserStore
}

func NewAdminHandler(users UserStore) *AdminHandler { return &AdminHandler{Users: users} }

// ListUsers returns every user record.  Password hashes and stored refresh
// tokens are excluded by the response type.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
