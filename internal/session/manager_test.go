package session_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/care-portal/internal/api"
	"github.com/mindwell/care-portal/internal/model"
	"github.com/mindwell/care-portal/internal/session"
	"github.com/mindwell/care-portal/internal/store"
	"github.com/mindwell/care-portal/internal/testutil"
)

func newTestSession(t *testing.T, b *testutil.Backend) (*session.Manager, *store.MemoryStore) {
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
	return session.NewManager(st, client, log), st
}

func TestBootstrapWithoutTokenMakesNoBackendCalls(t *testing.T) {
	b := testutil.NewBackend()
	m, st := newTestSession(t, b)

	assert.True(t, m.Loading(), "manager starts in the loading state")
	m.Bootstrap(context.Background())

	assert.False(t, m.Loading())
	assert.Nil(t, m.CurrentUser())
	assert.Zero(t, b.MeCalls(), "no stored token means no network traffic")

	creds, _ := st.Get()
	assert.True(t, creds.Empty())
}

func TestBootstrapResolvesStoredSession(t *testing.T) {
	b := testutil.NewBackend()
	user := b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	m, st := newTestSession(t, b)
	require.NoError(t, st.Set(b.TokenFor(user.Email), "refresh"))

	m.Bootstrap(context.Background())

	assert.False(t, m.Loading())
	require.NotNil(t, m.CurrentUser())
	assert.Equal(t, user.Email, m.CurrentUser().Email)
	assert.Equal(t, int64(1), b.MeCalls())
}

func TestBootstrapRejectedTokenClearsStore(t *testing.T) {
	b := testutil.NewBackend()
	m, st := newTestSession(t, b)
	require.NoError(t, st.Set("garbage-token", "garbage-refresh"))

	m.Bootstrap(context.Background())

	assert.False(t, m.Loading())
	assert.Nil(t, m.CurrentUser())
	creds, _ := st.Get()
	assert.True(t, creds.Empty(), "no stale token survives a failed resolution")
	assert.Empty(t, creds.Refresh)
}

func TestLoginThenLogoutEndsAnonymous(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	m, st := newTestSession(t, b)
	m.Bootstrap(context.Background())

	require.NoError(t, m.Login(context.Background(), "owner@clinic.org", "pw"))
	require.NotNil(t, m.CurrentUser())
	creds, _ := st.Get()
	assert.NotEmpty(t, creds.Access)
	assert.NotEmpty(t, creds.Refresh)

	m.Logout(context.Background())
	assert.Nil(t, m.CurrentUser())
	creds, _ = st.Get()
	assert.True(t, creds.Empty())
	assert.Empty(t, creds.Refresh)
}

func TestLoginWithBadCredentials(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	m, st := newTestSession(t, b)
	m.Bootstrap(context.Background())

	err := m.Login(context.Background(), "owner@clinic.org", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsAuthFailure(err))
	assert.Nil(t, m.CurrentUser())
	creds, _ := st.Get()
	assert.True(t, creds.Empty())
}

func TestLoginPendingApprovalIsDistinctAndKeepsState(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	b.AddPendingUser("new@clinic.org", "pw")
	m, _ := newTestSession(t, b)
	m.Bootstrap(context.Background())

	require.NoError(t, m.Login(context.Background(), "owner@clinic.org", "pw"))
	prior := m.CurrentUser()
	require.NotNil(t, prior)

	err := m.Login(context.Background(), "new@clinic.org", "pw")
	require.ErrorIs(t, err, session.ErrApprovalPending)
	assert.Contains(t, err.Error(), "pending approval")
	assert.Equal(t, prior, m.CurrentUser(), "failed login must not overwrite the session")
}

func TestRegisterNeverAuthenticates(t *testing.T) {
	b := testutil.NewBackend()
	m, st := newTestSession(t, b)
	m.Bootstrap(context.Background())

	user, err := m.Register(context.Background(), api.RegisterData{
		Email: "new@clinic.org", Password: "pw", FirstName: "New", LastName: "User",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Nil(t, m.CurrentUser())
	creds, _ := st.Get()
	assert.True(t, creds.Empty())

	// A failing registration (duplicate email) changes nothing either.
	_, err = m.Register(context.Background(), api.RegisterData{
		Email: "new@clinic.org", Password: "pw", FirstName: "New", LastName: "User",
	})
	require.Error(t, err)
	assert.Nil(t, m.CurrentUser())
	creds, _ = st.Get()
	assert.True(t, creds.Empty())
}

func TestRegisterWithInvitationAuthenticates(t *testing.T) {
	b := testutil.NewBackend()
	b.AddInvite("welcome-123", 42)
	m, st := newTestSession(t, b)
	m.Bootstrap(context.Background())

	err := m.RegisterWithInvitation(context.Background(), api.RegisterData{
		Email: "invited@clinic.org", Password: "pw", FirstName: "In", LastName: "Vited",
	}, "welcome-123")
	require.NoError(t, err)

	user := m.CurrentUser()
	require.NotNil(t, user)
	require.NotNil(t, user.OrganizationID)
	assert.Equal(t, int64(42), *user.OrganizationID)

	creds, _ := st.Get()
	assert.NotEmpty(t, creds.Access)
	assert.NotEmpty(t, creds.Refresh)
}

func TestRefreshUserIsIdempotent(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	m, _ := newTestSession(t, b)
	m.Bootstrap(context.Background())
	require.NoError(t, m.Login(context.Background(), "owner@clinic.org", "pw"))

	require.NoError(t, m.RefreshUser(context.Background()))
	first := m.CurrentUser()
	require.NoError(t, m.RefreshUser(context.Background()))
	second := m.CurrentUser()

	assert.Equal(t, first, second)
	assert.False(t, m.Loading(), "refresh must not re-enter the loading state")
}

func TestLogoutServerFailureStillTearsDown(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	b.FailLogout = true
	m, st := newTestSession(t, b)
	m.Bootstrap(context.Background())
	require.NoError(t, m.Login(context.Background(), "owner@clinic.org", "pw"))

	m.Logout(context.Background())

	assert.Nil(t, m.CurrentUser())
	creds, _ := st.Get()
	assert.True(t, creds.Empty())
}

func TestLogoutDuringBootstrapWins(t *testing.T) {
	b := testutil.NewBackend()
	user := b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	b.MeGate = make(chan struct{})
	m, st := newTestSession(t, b)
	require.NoError(t, st.Set(b.TokenFor(user.Email), "refresh"))

	done := make(chan struct{})
	go func() {
		m.Bootstrap(context.Background())
		close(done)
	}()

	// Wait for the bootstrap getMe to be in flight, then log out while it
	// is blocked.
	require.Eventually(t, func() bool { return b.MeCalls() == 1 }, time.Second, 5*time.Millisecond)
	m.Logout(context.Background())

	close(b.MeGate)
	<-done

	assert.Nil(t, m.CurrentUser(), "stale bootstrap result must be discarded")
	assert.False(t, m.Loading())
	creds, _ := st.Get()
	assert.True(t, creds.Empty())
}

func TestOnChangeNotifications(t *testing.T) {
	b := testutil.NewBackend()
	b.AddUser("owner@clinic.org", "pw", model.RoleOwner, nil)
	m, _ := newTestSession(t, b)
	m.Bootstrap(context.Background())

	var seen []*model.User
	m.OnChange(func(u *model.User) { seen = append(seen, u) })

	require.NoError(t, m.Login(context.Background(), "owner@clinic.org", "pw"))
	m.Logout(context.Background())

	require.Len(t, seen, 2)
	assert.NotNil(t, seen[0])
	assert.Nil(t, seen[1])
}
