package store // package store persists the bearer token pair across portal restarts

import (
	"sync"

	"github.com/mindwell/care-portal/internal/model"
)

// TokenStore is the durable home of the access/refresh pair.  The session
// manager is the only writer; every other component reads through it.
//
// Implementations must never expose a half-written pair: after Set either
// both tokens are visible or the previous pair is.  Absent tokens are
// returned as empty strings, not errors.  The store tracks no expiry; the
// backend alone decides when a token stops working.
type TokenStore interface {
	Set(access, refresh string) error
	Get() (model.Credentials, error)
	Clear() error
}

// MemoryStore keeps the pair in process memory.  Used by tests and by
// deployments that deliberately forget the session on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	creds model.Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = model.Credentials{Access: access, Refresh: refresh}
	return nil
}

func (s *MemoryStore) Get() (model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = model.Credentials{}
	return nil
}
