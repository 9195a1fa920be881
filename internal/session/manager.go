package session // package session owns the portal's authentication state machine

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mindwell/care-portal/internal/api"
	"github.com/mindwell/care-portal/internal/model"
	"github.com/mindwell/care-portal/internal/store"
)

// ErrApprovalPending is returned by Login when the account exists but an
// administrator has not approved it yet.  Its message is user-presentable;
// pages show it verbatim instead of a wrong-password error.
var ErrApprovalPending = errors.New("account pending approval")

// Manager holds the current user and orchestrates the token store and the
// backend auth endpoints.  It starts in the bootstrapping state (Loading
// true, no user) and reaches a stable authenticated or anonymous state
// through the operations below.
//
// Every mutating operation is tagged with a generation; a result coming
// back from the network is applied only if no later operation has started
// in the meantime.  This is what keeps a logout issued during a slow
// bootstrap from being overwritten by the stale getMe result.
type Manager struct {
	tokens store.TokenStore
	api    *api.Client
	log    *logrus.Logger

	mu      sync.Mutex
	loading bool
	user    *model.User
	gen     uint64
	subs    []func(*model.User)
}

// NewManager wires the store and client.  The manager is in the loading
// state until Bootstrap runs; consumers must treat Loading()==true as
// "session unknown" and defer authorization decisions.
func NewManager(tokens store.TokenStore, client *api.Client, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		tokens:  tokens,
		api:     client,
		log:     log,
		loading: true,
	}
}

// begin starts a mutating operation and returns its generation.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	return m.gen
}

// current reports whether gen is still the newest operation.
func (m *Manager) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.gen
}

// setUser applies a user change if gen is still current and notifies
// subscribers.  It returns false when the result was stale and discarded.
func (m *Manager) setUser(gen uint64, u *model.User) bool {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return false
	}
	m.user = u
	subs := make([]func(*model.User), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
	return true
}

func (m *Manager) finishLoading() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
}

// Bootstrap resolves the stored session once at startup.  With no stored
// access token it settles anonymous without touching the network.  A token
// the backend rejects is cleared so no stale pair survives a failed
// resolution.  Loading ends false on every path.
func (m *Manager) Bootstrap(ctx context.Context) {
	defer m.finishLoading()

	gen := m.begin()
	creds, err := m.tokens.Get()
	if err != nil {
		// Storage unavailable is the headless equivalent of rendering
		// without a browser: settle anonymous rather than block.
		m.log.WithError(err).Warn("token store unavailable, starting anonymous")
		return
	}
	if creds.Empty() {
		return
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		m.log.WithError(err).Warn("session resolution failed, clearing tokens")
		if m.current(gen) {
			if err := m.tokens.Clear(); err != nil {
				m.log.WithError(err).Warn("token clear failed")
			}
		}
		m.setUser(gen, nil)
		return
	}
	m.setUser(gen, user)
}

// Login authenticates and, on success, atomically persists the token pair
// and publishes the user.  On failure the prior state is untouched.  An
// approval-pending rejection is re-signaled as ErrApprovalPending.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	gen := m.begin()
	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		if api.IsApprovalPending(err) {
			return ErrApprovalPending
		}
		return err
	}
	if !m.current(gen) {
		// A later operation (typically logout) superseded this login;
		// drop the result instead of resurrecting the session.
		return nil
	}
	if err := m.tokens.Set(res.Credentials.Access, res.Credentials.Refresh); err != nil {
		return err
	}
	m.setUser(gen, res.User)
	return nil
}

// Register creates a pending-approval account.  It never authenticates:
// user and tokens are untouched on success and failure alike.  The caller
// presents the pending-approval notice.
func (m *Manager) Register(ctx context.Context, data api.RegisterData) (*model.User, error) {
	return m.api.Register(ctx, data)
}

// RegisterWithInvitation is the one registration path that authenticates
// immediately: a valid invitation implies the account is pre-approved.
func (m *Manager) RegisterWithInvitation(ctx context.Context, data api.RegisterData, code string) error {
	gen := m.begin()
	res, err := m.api.RegisterWithInvitation(ctx, data, code)
	if err != nil {
		return err
	}
	if !m.current(gen) {
		return nil
	}
	if err := m.tokens.Set(res.Credentials.Access, res.Credentials.Refresh); err != nil {
		return err
	}
	m.setUser(gen, res.User)
	return nil
}

// Logout notifies the backend best-effort, then unconditionally clears the
// stored pair and the user.  Local teardown always succeeds; the server
// call failing is logged and swallowed.
func (m *Manager) Logout(ctx context.Context) {
	gen := m.begin()
	if err := m.api.Logout(ctx); err != nil {
		m.log.WithError(err).Warn("server-side logout failed")
	}
	if err := m.tokens.Clear(); err != nil {
		m.log.WithError(err).Warn("token clear failed")
	}
	m.setUser(gen, nil)
}

// RefreshUser re-resolves the user from the backend without toggling the
// loading flag, used after profile mutations to resynchronize.  An auth
// failure degrades to anonymous exactly like a failed bootstrap.
func (m *Manager) RefreshUser(ctx context.Context) error {
	gen := m.begin()
	creds, err := m.tokens.Get()
	if err != nil || creds.Empty() {
		m.setUser(gen, nil)
		return err
	}
	user, err := m.api.Me(ctx)
	if err != nil {
		if api.IsAuthFailure(err) {
			if m.current(gen) {
				if cerr := m.tokens.Clear(); cerr != nil {
					m.log.WithError(cerr).Warn("token clear failed")
				}
			}
			m.setUser(gen, nil)
			return err
		}
		// Transient backend trouble: keep the current user rather than
		// logging the operator out over a blip.
		return err
	}
	m.setUser(gen, user)
	return nil
}

// CurrentUser returns the user in the stable state, or nil when anonymous
// or still bootstrapping.
func (m *Manager) CurrentUser() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Loading reports whether the initial bootstrap has finished.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// OnChange registers fn to run after every applied user change.  fn is
// called outside the manager's lock; it receives nil on logout.
func (m *Manager) OnChange(fn func(*model.User)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}
