package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossline/glossline/internal/middleware"
	"github.com/glossline/glossline/internal/repository"
	"github.com/glossline/glossline/internal/utils"
)

func newAuthHandler() (*AuthHandler, *fakeUserStore, *fakeSettingsStore) {
	users := newFakeUserStore()
	settings := newFakeSettingsStore()
	return NewAuthHandler(testConfig(), users, settings), users, settings
}

// doJSON runs a handler against a JSON request and returns the recorder.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResp {
	t.Helper()
	var out sessionResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestSignup_CreatesUserAndSession(t *testing.T) {
	h, users, _ := newAuthHandler()
	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup",
		`{"name":"Ava","email":"Ava@Example.com","password":"secret1"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeSession(t, rec)
	assert.Equal(t, "ava@example.com", resp.User.Email)
	assert.Equal(t, repository.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.Access.Token)
	assert.NotEmpty(t, resp.Refresh.Token)

	// both cookies attached
	assert.NotNil(t, responseCookie(rec, utils.AccessCookieName))
	assert.NotNil(t, responseCookie(rec, utils.RefreshCookieName))

	// refresh token persisted as the single active session
	u, err := users.GetByEmail(context.Background(), "ava@example.com")
	require.NoError(t, err)
	assert.Equal(t, resp.Refresh.Token, u.RefreshToken.String)
	assert.NotEqual(t, "secret1", u.PasswordHash)
}

func TestSignup_Validation(t *testing.T) {
	h, _, _ := newAuthHandler()

	rec := doJSON(t, h.Signup, http.MethodPost, "/", `{"email":"a@b.c","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.Signup, http.MethodPost, "/", `{"name":"A","email":"a@b.c","password":"short"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 6 characters")
}

func TestSignup_SuperadminRoleForbidden(t *testing.T) {
	h, _, _ := newAuthHandler()
	rec := doJSON(t, h.Signup, http.MethodPost, "/",
		`{"name":"A","email":"a@b.c","password":"secret1","role":"superadmin"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"superadmin role cannot be requested"}`, rec.Body.String())
}

func TestSignup_DuplicateEmail(t *testing.T) {
	h, _, _ := newAuthHandler()
	body := `{"name":"A","email":"a@b.c","password":"secret1"}`
	rec := doJSON(t, h.Signup, http.MethodPost, "/", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h.Signup, http.MethodPost, "/", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"email already exists"}`, rec.Body.String())
}

func TestSignup_SignupsDisabled(t *testing.T) {
	h, _, settings := newAuthHandler()
	_, err := settings.Update(context.Background(), "", false, false)
	require.NoError(t, err)

	rec := doJSON(t, h.Signup, http.MethodPost, "/", `{"name":"A","email":"a@b.c","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"signups are currently disabled"}`, rec.Body.String())
}

func signupUser(t *testing.T, h *AuthHandler, email, password string) sessionResp {
	t.Helper()
	rec := doJSON(t, h.Signup, http.MethodPost, "/",
		`{"name":"U","email":"`+email+`","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeSession(t, rec)
}

func TestLogin_Success(t *testing.T) {
	h, _, _ := newAuthHandler()
	signupUser(t, h, "a@b.c", "secret1")

	rec := doJSON(t, h.Login, http.MethodPost, "/", `{"email":"a@b.c","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSession(t, rec)
	assert.Equal(t, "a@b.c", resp.User.Email)
	assert.NotNil(t, responseCookie(rec, utils.AccessCookieName))
	assert.NotNil(t, responseCookie(rec, utils.RefreshCookieName))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h, _, _ := newAuthHandler()
	signupUser(t, h, "a@b.c", "secret1")

	// wrong password and unknown email get the same answer
	for _, body := range []string{
		`{"email":"a@b.c","password":"wrong-1"}`,
		`{"email":"ghost@b.c","password":"secret1"}`,
	} {
		rec := doJSON(t, h.Login, http.MethodPost, "/", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())
	}
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	h, users, _ := newAuthHandler()
	s := signupUser(t, h, "a@b.c", "secret1")
	_, err := users.SetActive(context.Background(), s.User.ID, false)
	require.NoError(t, err)

	rec := doJSON(t, h.Login, http.MethodPost, "/", `{"email":"a@b.c","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"account is deactivated"}`, rec.Body.String())
}

// A second login overwrites the stored refresh token, so the first
// session's refresh token stops working even though it is still signed.
func TestLogin_OverwritesRefreshToken(t *testing.T) {
	h, _, _ := newAuthHandler()
	first := signupUser(t, h, "a@b.c", "secret1")

	rec := doJSON(t, h.Login, http.MethodPost, "/", `{"email":"a@b.c","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeSession(t, rec)
	require.NotEqual(t, first.Refresh.Token, second.Refresh.Token)

	rec = doJSON(t, h.Refresh, http.MethodPost, "/", `{"refreshToken":"`+first.Refresh.Token+`"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid refresh token"}`, rec.Body.String())

	rec = doJSON(t, h.Refresh, http.MethodPost, "/", `{"refreshToken":"`+second.Refresh.Token+`"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefresh_FromCookie(t *testing.T) {
	h, _, _ := newAuthHandler()
	s := signupUser(t, h, "a@b.c", "secret1")

	rec := doJSON(t, h.Refresh, http.MethodPost, "/", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: utils.RefreshCookieName, Value: s.Refresh.Token})
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Access tokenPart `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Access.Token)
	assert.NotNil(t, responseCookie(rec, utils.AccessCookieName))
	// the refresh token is not rotated
	assert.Nil(t, responseCookie(rec, utils.RefreshCookieName))
}

func TestRefresh_MissingAndInvalidToken(t *testing.T) {
	h, _, _ := newAuthHandler()

	rec := doJSON(t, h.Refresh, http.MethodPost, "/", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.Refresh, http.MethodPost, "/", `{"refreshToken":"garbage"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// An access token is never accepted on the refresh path.
func TestRefresh_RejectsAccessToken(t *testing.T) {
	h, _, _ := newAuthHandler()
	s := signupUser(t, h, "a@b.c", "secret1")

	rec := doJSON(t, h.Refresh, http.MethodPost, "/", `{"refreshToken":"`+s.Access.Token+`"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_DeactivatedAccount(t *testing.T) {
	h, users, _ := newAuthHandler()
	s := signupUser(t, h, "a@b.c", "secret1")
	_, err := users.SetActive(context.Background(), s.User.ID, false)
	require.NoError(t, err)

	rec := doJSON(t, h.Refresh, http.MethodPost, "/", `{"refreshToken":"`+s.Refresh.Token+`"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMe(t *testing.T) {
	h, _, _ := newAuthHandler()
	s := signupUser(t, h, "a@b.c", "secret1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, s.User.ID)
	require.NoError(t, h.Me(c))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@b.c"`)
	assert.NotContains(t, rec.Body.String(), "PasswordHash")
	assert.NotContains(t, rec.Body.String(), "refreshToken")
}

func TestLogout_ClearsSession(t *testing.T) {
	h, users, _ := newAuthHandler()
	s := signupUser(t, h, "a@b.c", "secret1")

	rec := doJSON(t, h.Logout, http.MethodPost, "/", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+s.Access.Token)
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"logged out"}`, rec.Body.String())

	for _, name := range []string{utils.AccessCookieName, utils.RefreshCookieName} {
		ck := responseCookie(rec, name)
		require.NotNil(t, ck)
		assert.Equal(t, -1, ck.MaxAge)
	}

	u, err := users.GetByID(context.Background(), s.User.ID)
	require.NoError(t, err)
	assert.False(t, u.RefreshToken.Valid)

	// the session can no longer be refreshed
	rec = doJSON(t, h.Refresh, http.MethodPost, "/", `{"refreshToken":"`+s.Refresh.Token+`"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Logout wipes the browser cookies even when the token no longer verifies.
func TestLogout_InvalidTokenStillClearsCookies(t *testing.T) {
	h, _, _ := newAuthHandler()

	rec := doJSON(t, h.Logout, http.MethodPost, "/", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	for _, name := range []string{utils.AccessCookieName, utils.RefreshCookieName} {
		ck := responseCookie(rec, name)
		require.NotNil(t, ck)
		assert.Equal(t, -1, ck.MaxAge)
	}
}

// Logout does not invalidate already-issued access tokens: authenticated
// endpoints keep accepting them until they expire.
func TestLogout_AccessTokenStaysValid(t *testing.T) {
	h, _, _ := newAuthHandler()
	s := signupUser(t, h, "a@b.c", "secret1")

	rec := doJSON(t, h.Logout, http.MethodPost, "/", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+s.Access.Token)
	})
	require.Equal(t, http.StatusOK, rec.Code)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+s.Access.Token)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)
	chain := middleware.Authenticate(testConfig().AccessSecret)(h.Me)
	require.NoError(t, chain(c))
	assert.Equal(t, http.StatusOK, rr.Code)
}
