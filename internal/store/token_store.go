package store

import (
	"path/filepath"
	"sync"

	"restchat/internal/domain"
)

const tokenFilename = "token.json"

// TokenFileStore persists the session credential to disk. The token lives
// under a single fixed filename in the store's directory and is removed
// entirely on clear.
type TokenFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewTokenFileStore returns a TokenFileStore rooted at dir.
func NewTokenFileStore(dir string) *TokenFileStore {
	return &TokenFileStore{dir: dir}
}

// SaveToken writes the credential record.
func (s *TokenFileStore) SaveToken(rec domain.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.dir, tokenFilename), rec, 0o600)
}

// LoadToken retrieves the stored credential record, if any.
func (s *TokenFileStore) LoadToken() (domain.TokenRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec domain.TokenRecord
	found, err := readJSON(filepath.Join(s.dir, tokenFilename), &rec)
	if err != nil {
		return domain.TokenRecord{}, false, err
	}
	if !found || rec.AccessToken == "" {
		return domain.TokenRecord{}, false, nil
	}
	return rec, true, nil
}

// ClearToken removes the persisted credential.
func (s *TokenFileStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return removeFile(filepath.Join(s.dir, tokenFilename))
}

// Compile-time assertion that TokenFileStore implements domain.TokenStore.
var _ domain.TokenStore = (*TokenFileStore)(nil)
