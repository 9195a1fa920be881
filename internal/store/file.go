package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mindwell/care-portal/internal/model"
)

// fileCreds is the on-disk shape.  The key names match the storage keys
// the browser portal used, which keeps the file greppable during support.
type fileCreds struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// FileStore persists the pair as a small JSON file.  Writes go through a
// temp file followed by a rename so a crash mid-write leaves the previous
// pair intact rather than one token of a new pair.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the parent directory if needed.  The file itself
// is created on the first Set.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create token dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Set(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(fileCreds{Access: access, Refresh: refresh})
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write tokens: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit tokens: %w", err)
	}
	return nil
}

func (s *FileStore) Get() (model.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Credentials{}, nil
		}
		return model.Credentials{}, fmt.Errorf("read tokens: %w", err)
	}
	var fc fileCreds
	if err := json.Unmarshal(data, &fc); err != nil {
		// A corrupt file is indistinguishable from no session; callers
		// will fall back to anonymous and re-authenticate.
		return model.Credentials{}, nil
	}
	return model.Credentials{Access: fc.Access, Refresh: fc.Refresh}, nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
