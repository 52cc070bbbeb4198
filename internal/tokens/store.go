package tokens

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"eventscout/internal/domain"
)

// Store is the process-wide token slot. The durable scope is a JSON file
// that survives restarts; the session scope lives only for the process.
// Reads check the durable scope first, then the session scope, so a
// remember=false login keeps working mid-session. The slot is
// last-write-wins; the mutex only keeps concurrent handler access sane.
type Store struct {
	mu      sync.Mutex
	path    string
	session *domain.AuthTokens
	logger  *slog.Logger
}

// NewStore returns a Store whose durable scope is the file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Save writes the tokens to the durable scope when persist is true,
// otherwise to the session scope.
func (s *Store) Save(t domain.AuthTokens, persist bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !persist {
		copied := t
		s.session = &copied
		return nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the tokens from both scopes.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) && s.logger != nil {
		s.logger.Warn("failed to remove token file", "path", s.path, "err", err)
	}
}

func (s *Store) load() *domain.AuthTokens {
	data, err := os.ReadFile(s.path)
	if err == nil {
		var t domain.AuthTokens
		if json.Unmarshal(data, &t) == nil && t.AccessToken != "" {
			return &t
		}
	}
	return s.session
}

// AccessToken returns the stored access token, or "" when anonymous.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.load(); t != nil {
		return t.AccessToken
	}
	return ""
}

// RefreshToken returns the stored refresh token, if any.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.load(); t != nil {
		return t.RefreshToken
	}
	return ""
}

// ExpiresAt returns the stored expiry in epoch milliseconds, or 0.
func (s *Store) ExpiresAt() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.load(); t != nil {
		return t.ExpiresAt
	}
	return 0
}

// IsExpired reports whether the token expires within tolerance of now.
// A missing expiry means never expires and reports false.
func (s *Store) IsExpired(tolerance time.Duration) bool {
	expiresAt := s.ExpiresAt()
	if expiresAt == 0 {
		return false
	}
	return expiresAt-tolerance.Milliseconds() < time.Now().UnixMilli()
}

var _ domain.TokenStore = (*Store)(nil)
