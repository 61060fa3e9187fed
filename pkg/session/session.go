// Package session keeps the per-device browser id and the user's tokens between calls.
package session

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const browserIDRandomLength = 22

// Store holds the identity of one device. Implementations are safe for concurrent use.
type Store interface {
	// BrowserID returns the stored browser id, generating and persisting one on first use.
	BrowserID(ctx context.Context) (string, error)
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	AuthToken(ctx context.Context) (string, error)
	SetAuthToken(ctx context.Context, token string) error
	// Clear forgets the tokens. The browser id is kept.
	Clear(ctx context.Context) error
}

// State is the persisted session content.
type State struct {
	BrowserID   string `yaml:"browser_id,omitempty"`
	AccessToken string `yaml:"access_token,omitempty"`
	AuthToken   string `yaml:"auth_token,omitempty"`
}

// NewBrowserID returns a random id followed by "." and the base-36 millisecond timestamp of now.
func NewBrowserID(now time.Time) string {
	var random strings.Builder
	for random.Len() < browserIDRandomLength {
		random.WriteString(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	return random.String()[:browserIDRandomLength] + "." + strconv.FormatInt(now.UnixMilli(), 36)
}

// MemoryStore keeps the session in memory.
type MemoryStore struct {
	mu    sync.Mutex
	state State
	now   func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// BrowserID implements Store.
func (s *MemoryStore) BrowserID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.BrowserID == "" {
		s.state.BrowserID = NewBrowserID(s.now())
	}
	return s.state.BrowserID, nil
}

// AccessToken implements Store.
func (s *MemoryStore) AccessToken(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken, nil
}

// SetAccessToken implements Store.
func (s *MemoryStore) SetAccessToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = token
	return nil
}

// AuthToken implements Store.
func (s *MemoryStore) AuthToken(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AuthToken, nil
}

// SetAuthToken implements Store.
func (s *MemoryStore) SetAuthToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AuthToken = token
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = ""
	s.state.AuthToken = ""
	return nil
}
