package testutil // testutil hosts the fake backend the portal tests run against

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mindwell/care-portal/internal/model"
)

// Backend is an in-memory stand-in for the REST API the portal consumes.
// It issues real HS256 access tokens so bearer round-trips behave like
// production, and exposes counters and failure switches for tests.
type Backend struct {
	Secret string

	// FailLogout makes POST /auth/logout return 500.
	FailLogout bool
	// MeGate, when non-nil, blocks GET /auth/me until the channel is
	// closed.  Used to stage races against in-flight bootstraps.
	MeGate chan struct{}

	meCalls atomic.Int64

	mu      sync.Mutex
	nextID  int64
	users   map[string]*account // by email
	invites map[string]int64    // code -> organization id
}

type account struct {
	user     model.User
	password string
	pending  bool
}

func NewBackend() *Backend {
	return &Backend{
		Secret:  "test-secret",
		users:   make(map[string]*account),
		invites: make(map[string]int64),
	}
}

// AddUser seeds an approved account and returns it.
func (b *Backend) AddUser(email, password string, role model.Role, orgID *int64) model.User {
	return b.addUser(email, password, role, orgID, false)
}

// AddPendingUser seeds an account still awaiting approval.
func (b *Backend) AddPendingUser(email, password string) model.User {
	return b.addUser(email, password, "", nil, true)
}

func (b *Backend) addUser(email, password string, role model.Role, orgID *int64, pending bool) model.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	acc := &account{
		user: model.User{
			ID:             b.nextID,
			Email:          email,
			FirstName:      "Test",
			LastName:       "User",
			Role:           role,
			OrganizationID: orgID,
		},
		password: password,
		pending:  pending,
	}
	b.users[email] = acc
	return acc.user
}

// AddInvite registers an invitation code joining the given organization.
func (b *Backend) AddInvite(code string, orgID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invites[code] = orgID
}

// MeCalls reports how many times GET /auth/me was hit.
func (b *Backend) MeCalls() int64 {
	return b.meCalls.Load()
}

// TokenFor mints a valid access token for the given email, for seeding
// token stores directly.
func (b *Backend) TokenFor(email string) string {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().UTC().Add(15 * time.Minute).Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(b.Secret))
	return tok
}

func randomToken() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Handler returns the HTTP surface for httptest.NewServer.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", b.login)
	mux.HandleFunc("POST /api/v1/auth/register", b.register)
	mux.HandleFunc("POST /api/v1/auth/register-with-invitation", b.registerWithInvitation)
	mux.HandleFunc("GET /api/v1/auth/me", b.me)
	mux.HandleFunc("PUT /api/v1/auth/me", b.updateMe)
	mux.HandleFunc("POST /api/v1/auth/change-password", b.changePassword)
	mux.HandleFunc("POST /api/v1/auth/logout", b.logout)
	mux.HandleFunc("POST /api/v1/invites/accept", b.acceptInvite)
	mux.HandleFunc("GET /api/v1/organizations/{org}/members", b.members)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// bearerEmail resolves the Authorization header to an account email.
func (b *Backend) bearerEmail(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimPrefix(auth, "Bearer ")
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(b.Secret), nil
	})
	if err != nil || !tok.Valid {
		return "", false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	email, _ := claims["sub"].(string)
	return email, email != ""
}

func (b *Backend) authResult(user model.User) map[string]any {
	return map[string]any{
		"access":  b.TokenFor(user.Email),
		"refresh": randomToken(),
		"user":    user,
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	acc, ok := b.users[req.Email]
	b.mu.Unlock()
	if !ok || acc.password != req.Password {
		detail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if acc.pending {
		detail(w, http.StatusForbidden, "account is pending approval")
		return
	}
	writeJSON(w, http.StatusOK, b.authResult(acc.user))
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	if _, exists := b.users[req.Email]; exists {
		b.mu.Unlock()
		detail(w, http.StatusConflict, "email already registered")
		return
	}
	b.mu.Unlock()

	user := b.addUser(req.Email, req.Password, "", nil, true)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	// No tokens: the account awaits approval.
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (b *Backend) registerWithInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email          string `json:"email"`
		Password       string `json:"password"`
		InvitationCode string `json:"invitation_code"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	orgID, ok := b.invites[req.InvitationCode]
	if ok {
		delete(b.invites, req.InvitationCode)
	}
	b.mu.Unlock()
	if !ok {
		detail(w, http.StatusBadRequest, "invalid invitation code")
		return
	}

	user := b.addUser(req.Email, req.Password, model.RoleMember, &orgID, false)
	writeJSON(w, http.StatusCreated, b.authResult(user))
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.meCalls.Add(1)
	if b.MeGate != nil {
		<-b.MeGate
	}
	email, ok := b.bearerEmail(r)
	if !ok {
		detail(w, http.StatusUnauthorized, "invalid token")
		return
	}
	b.mu.Lock()
	acc, found := b.users[email]
	b.mu.Unlock()
	if !found {
		detail(w, http.StatusUnauthorized, "invalid token")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) updateMe(w http.ResponseWriter, r *http.Request) {
	email, ok := b.bearerEmail(r)
	if !ok {
		detail(w, http.StatusUnauthorized, "invalid token")
		return
	}
	var req struct {
		FirstName string  `json:"first_name"`
		LastName  string  `json:"last_name"`
		Phone     *string `json:"phone"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	acc := b.users[email]
	acc.user.FirstName = req.FirstName
	acc.user.LastName = req.LastName
	acc.user.Phone = req.Phone
	user := acc.user
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}

func (b *Backend) changePassword(w http.ResponseWriter, r *http.Request) {
	email, ok := b.bearerEmail(r)
	if !ok {
		detail(w, http.StatusUnauthorized, "invalid token")
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.users[email]
	if acc.password != req.CurrentPassword {
		detail(w, http.StatusBadRequest, "current password incorrect")
		return
	}
	acc.password = req.NewPassword
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) logout(w http.ResponseWriter, _ *http.Request) {
	if b.FailLogout {
		detail(w, http.StatusInternalServerError, "logout unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) acceptInvite(w http.ResponseWriter, r *http.Request) {
	email, ok := b.bearerEmail(r)
	if !ok {
		detail(w, http.StatusUnauthorized, "invalid token")
		return
	}
	var req struct {
		Code string `json:"invitation_code"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	orgID, found := b.invites[req.Code]
	if !found {
		detail(w, http.StatusBadRequest, "invalid invitation code")
		return
	}
	delete(b.invites, req.Code)
	acc := b.users[email]
	acc.user.OrganizationID = &orgID
	acc.user.Role = model.RoleMember
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) members(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.bearerEmail(r); !ok {
		detail(w, http.StatusUnauthorized, "invalid token")
		return
	}
	b.mu.Lock()
	var results []model.OrganizationMember
	for _, acc := range b.users {
		if acc.user.OrganizationID != nil {
			results = append(results, model.OrganizationMember{
				ID:             acc.user.ID,
				UserID:         acc.user.ID,
				UserEmail:      acc.user.Email,
				OrganizationID: *acc.user.OrganizationID,
				Role:           acc.user.Role,
				IsActive:       true,
			})
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "results": results})
}
