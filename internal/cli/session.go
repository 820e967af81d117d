package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Session is the logged-in user remembered between CLI invocations.
type Session struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// SessionStore keeps the session in a single JSON file.
type SessionStore struct {
	path string
}

// NewSessionStore creates a store backed by path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load returns nil, nil when nobody is logged in. An unreadable file counts as
// logged out.
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil || session.UserID == "" {
		return nil, nil
	}
	return &session, nil
}

// Save writes the session next to the target and renames it into place.
func (s *SessionStore) Save(session Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing twice is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
