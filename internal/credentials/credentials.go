// Package credentials persists the KeyBot bearer token.
// The token is stored in ~/.config/keybot/credentials.toml.
package credentials

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/keybot/keybot/internal/api"
)

// Credentials is the on-disk layout.
type Credentials struct {
	AuthToken string    `toml:"auth_token"`
	SavedAt   time.Time `toml:"saved_at"`
}

const defaultCredentialsPath = "~/.config/keybot/credentials.toml"

// DefaultPath returns the default credentials file path.
func DefaultPath() string {
	return defaultCredentialsPath
}

// Store reads and writes the credentials file. The file is re-read on every
// Token call so a login from another process is picked up immediately.
type Store struct {
	mu   sync.RWMutex
	path string
	now  func() time.Time
}

// Ensure (*Store).Token satisfies api.TokenSource at compile time.
var _ api.TokenSource = (*Store)(nil).Token

// Open returns a Store for path, or the default path when empty.
func Open(path string) (*Store, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	return &Store{path: resolved, now: time.Now}, nil
}

// Path returns the resolved credentials file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored credentials. A missing or unreadable file yields
// empty credentials.
func (s *Store) Load() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := os.Open(s.path)
	if err != nil {
		return Credentials{}
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Credentials{}
	}
	var c Credentials
	if err := toml.Unmarshal(bytes, &c); err != nil {
		return Credentials{}
	}
	c.AuthToken = strings.TrimSpace(c.AuthToken)
	return c
}

// Token is an api.TokenSource.
func (s *Store) Token() (string, bool) {
	if s == nil {
		return "", false
	}
	tok := s.Load().AuthToken
	return tok, tok != ""
}

// Save stores token, creating directories as needed. The file is only
// readable by the current user.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	bytes, err := toml.Marshal(Credentials{AuthToken: token, SavedAt: s.now().UTC().Truncate(time.Second)})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, bytes, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing when nothing is stored is not an
// error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultCredentialsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
