package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FileStore persists the session as YAML. Every write replaces the file atomically.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileStore returns a store backed by path. A leading "~" expands to the home directory.
func NewFileStore(path string) (*FileStore, error) {
	expanded, err := expandHome(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	if expanded == "" {
		return nil, fmt.Errorf("session: path is required")
	}
	return &FileStore{path: expanded, now: time.Now}, nil
}

// Path returns the expanded file path.
func (s *FileStore) Path() string { return s.path }

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func (s *FileStore) load() (State, error) {
	var state State
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("reading session file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("decoding session file %s: %w", s.path, err)
	}
	return state, nil
}

func (s *FileStore) save(state State) error {
	raw, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

func (s *FileStore) update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return err
	}
	fn(&state)
	return s.save(state)
}

func (s *FileStore) read() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// BrowserID implements Store.
func (s *FileStore) BrowserID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return "", err
	}
	if state.BrowserID != "" {
		return state.BrowserID, nil
	}
	state.BrowserID = NewBrowserID(s.now())
	if err := s.save(state); err != nil {
		return "", err
	}
	return state.BrowserID, nil
}

// AccessToken implements Store.
func (s *FileStore) AccessToken(_ context.Context) (string, error) {
	state, err := s.read()
	return state.AccessToken, err
}

// SetAccessToken implements Store.
func (s *FileStore) SetAccessToken(_ context.Context, token string) error {
	return s.update(func(state *State) { state.AccessToken = token })
}

// AuthToken implements Store.
func (s *FileStore) AuthToken(_ context.Context) (string, error) {
	state, err := s.read()
	return state.AuthToken, err
}

// SetAuthToken implements Store.
func (s *FileStore) SetAuthToken(_ context.Context, token string) error {
	return s.update(func(state *State) { state.AuthToken = token })
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) error {
	return s.update(func(state *State) {
		state.AccessToken = ""
		state.AuthToken = ""
	})
}
