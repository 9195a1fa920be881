package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/care-portal/internal/api"
	"github.com/mindwell/care-portal/internal/config"
	"github.com/mindwell/care-portal/internal/handler"
	"github.com/mindwell/care-portal/internal/model"
	"github.com/mindwell/care-portal/internal/router"
	"github.com/mindwell/care-portal/internal/session"
	"github.com/mindwell/care-portal/internal/store"
	"github.com/mindwell/care-portal/internal/testutil"
)

type portalFixture struct {
	echo    *echo.Echo
	tokens  *store.MemoryStore
	backend *testutil.Backend
}

func newPortal(t *testing.T, b *testutil.Backend) *portalFixture {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	st := store.NewMemoryStore()
	client := api.NewClient(srv.URL, func() string {
		creds, _ := st.Get()
		return creds.Access
	})
	log := logrus.New()
	log.SetOutput(io.Discard)
	m := session.NewManager(st, client, log)
	m.Bootstrap(context.Background())

	cfg := config.Config{
		CookieName:    "access_token",
		DefaultLocale: "en",
		Locales:       []string{"en", "pl"},
	}
	e := echo.New()
	sh := handler.NewSessionHandler(m, client, cfg.CookieName, 5*time.Second)
	nav := handler.NewNavigationHandler(m)
	team := handler.NewTeamHandler(m, client, 5*time.Second)
	router.Register(e, cfg, m, sh, nav, team)

	return &portalFixture{echo: e, tokens: st, backend: b}
}

func (f *portalFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginSynchronizesCookieWithStore(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	f := newPortal(t, b)

	rec := f.do(http.MethodPost, "/portal/login", `{"email":"owner@clinic.org","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookie := cookieNamed(rec, "access_token")
	require.NotNil(t, cookie, "login must mirror the token into the gate cookie")
	creds, _ := f.tokens.Get()
	assert.Equal(t, creds.Access, cookie.Value, "cookie and store must hold the same token")
	assert.True(t, cookie.HttpOnly)
}

func TestLoginPendingApprovalGetsDistinctError(t *testing.T) {
	b := testutil.NewBackend()
	b.AddPendingUser("new@clinic.org", "pw")
	f := newPortal(t, b)

	rec := f.do(http.MethodPost, "/portal/login", `{"email":"new@clinic.org","password":"pw"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending approval")
	assert.Nil(t, cookieNamed(rec, "access_token"))
}

func TestLoginBadCredentials(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	f := newPortal(t, b)

	rec := f.do(http.MethodPost, "/portal/login", `{"email":"owner@clinic.org","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestLogoutClearsCookieAndStore(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	f := newPortal(t, b)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/portal/login", `{"email":"owner@clinic.org","password":"pw"}`).Code)

	rec := f.do(http.MethodPost, "/portal/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	cookie := cookieNamed(rec, "access_token")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge, "cookie must be expired")

	creds, _ := f.tokens.Get()
	assert.True(t, creds.Empty())
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	b := testutil.NewBackend()
	f := newPortal(t, b)

	rec := f.do(http.MethodPost, "/portal/register",
		`{"email":"new@clinic.org","password":"pw","first_name":"New","last_name":"User"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "awaiting approval")
	assert.Nil(t, cookieNamed(rec, "access_token"))

	creds, _ := f.tokens.Get()
	assert.True(t, creds.Empty())
}

func TestRegisterWithInvitationAuthenticates(t *testing.T) {
	b := testutil.NewBackend()
	b.AddInvite("welcome-1", 9)
	f := newPortal(t, b)

	rec := f.do(http.MethodPost, "/portal/register-with-invitation",
		`{"email":"in@clinic.org","password":"pw","first_name":"In","last_name":"Vited","invitation_code":"welcome-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookie := cookieNamed(rec, "access_token")
	require.NotNil(t, cookie)
	creds, _ := f.tokens.Get()
	assert.Equal(t, creds.Access, cookie.Value)
	assert.NotEmpty(t, creds.Refresh)
}

func TestSessionEndpoint(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	f := newPortal(t, b)

	rec := f.do(http.MethodGet, "/portal/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		User    *model.User `json:"user"`
		Loading bool        `json:"loading"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.User)
	assert.False(t, body.Loading)

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/portal/login", `{"email":"owner@clinic.org","password":"pw"}`).Code)

	rec = f.do(http.MethodGet, "/portal/session", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.User)
	assert.Equal(t, "owner@clinic.org", body.User.Email)
}

func TestProfileRequiresSession(t *testing.T) {
	b := testutil.NewBackend()
	f := newPortal(t, b)

	rec := f.do(http.MethodPut, "/portal/profile", `{"first_name":"A","last_name":"B"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfileResynchronizesUser(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	f := newPortal(t, b)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/portal/login", `{"email":"owner@clinic.org","password":"pw"}`).Code)

	rec := f.do(http.MethodPut, "/portal/profile", `{"first_name":"Renamed","last_name":"Owner"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/portal/session", "")
	var body struct {
		User *model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.User)
	assert.Equal(t, "Renamed", body.User.FirstName)
}

func TestTeamRoutesAreRoleGated(t *testing.T) {
	b := testutil.NewBackend()
	orgID := int64(7)
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, &orgID)
	b.AddUser("member@clinic.org", "pw", model.RoleMember, &orgID)

	f := newPortal(t, b)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/portal/login", `{"email":"member@clinic.org","password":"pw"}`).Code)
	rec := f.do(http.MethodGet, "/portal/team", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "members must not see team management")

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/portal/login", `{"email":"owner@clinic.org","password":"pw"}`).Code)
	rec = f.do(http.MethodGet, "/portal/team", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "member@clinic.org")
}

func TestNavigationFollowsRole(t *testing.T) {
	b := testutil.NewBackend()
	orgID := int64(7)
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, &orgID)
	b.AddUser("member@clinic.org", "pw", model.RoleMember, &orgID)
	f := newPortal(t, b)

	rec := f.do(http.MethodGet, "/portal/navigation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Team", "anonymous visitors see no items")

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/portal/login", `{"email":"member@clinic.org","password":"pw"}`).Code)
	rec = f.do(http.MethodGet, "/portal/navigation", "")
	assert.Contains(t, rec.Body.String(), "Dashboard")
	assert.NotContains(t, rec.Body.String(), "Team")

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/portal/login", `{"email":"owner@clinic.org","password":"pw"}`).Code)
	rec = f.do(http.MethodGet, "/portal/navigation", "")
	assert.Contains(t, rec.Body.String(), "Team")
	assert.Contains(t, rec.Body.String(), "Locations")
}
