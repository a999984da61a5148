// Package session owns the authentication token shared by every outgoing
// request. The token is a single explicitly-owned value: loaded from disk
// at startup, replaced wholesale on login, removed on logout. Components
// read it through the Session reference, never through ambient globals.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Session holds the bearer token for the current user.
type Session struct {
	mu    sync.RWMutex
	path  string
	token string
}

// DefaultPath returns the fixed on-disk location for the persisted token.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "dru", "token"), nil
}

// Open loads any previously persisted token from path. A missing or
// unreadable file simply yields an unauthenticated session.
func Open(path string) *Session {
	s := &Session{path: path}
	if data, err := os.ReadFile(path); err == nil {
		s.token = strings.TrimSpace(string(data))
	}
	return s
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken stores the token and persists it under the session path.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// Clear drops the token and removes the persisted copy.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
