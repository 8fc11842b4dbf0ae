package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRole(t *testing.T, callerRole string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if callerRole != "" {
		c.Set(CtxRole, callerRole)
	}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := RequireRole(allowed...)(next)(c)
	require.NoError(t, err)
	return rec
}

func TestRequireRole_NotAuthenticated(t *testing.T) {
	rec := runRole(t, "", "admin")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"not authenticated"}`, rec.Body.String())
}

func TestRequireRole_Allowed(t *testing.T) {
	rec := runRole(t, "admin", "admin", "superadmin")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_Denied(t *testing.T) {
	rec := runRole(t, "user", "admin", "superadmin")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"access denied, required role: admin, superadmin"}`, rec.Body.String())
}

// Membership is exact: no role outranks another.
func TestRequireRole_NoHierarchy(t *testing.T) {
	rec := runRole(t, "superadmin", "admin")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = runRole(t, "admin", "superadmin")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
