package session

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var browserIDPattern = regexp.MustCompile(`^[0-9a-f]{22}\.[0-9a-z]+$`)

func TestNewBrowserID(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1600000000000)
	id := NewBrowserID(now)
	assert.Regexp(t, browserIDPattern, id)

	parts := strings.SplitN(id, ".", 2)
	ms, err := strconv.ParseInt(parts[1], 36, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), ms)

	assert.NotEqual(t, id, NewBrowserID(now))
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	bid, err := s.BrowserID(ctx)
	require.NoError(t, err)
	assert.Regexp(t, browserIDPattern, bid)
	again, err := s.BrowserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, bid, again)

	token, err := s.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.SetAccessToken(ctx, "access"))
	require.NoError(t, s.SetAuthToken(ctx, "auth"))
	token, err = s.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access", token)
	token, err = s.AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "auth", token)

	require.NoError(t, s.Clear(ctx))
	token, err = s.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	token, err = s.AuthToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	kept, err := s.BrowserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, bid, kept)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreConcurrentBrowserID(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ids := make([]string, 16)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], _ = s.BrowserID(context.Background())
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "browser_id:")
	assert.NotContains(t, string(raw), "access_token")

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetAccessToken(context.Background(), "persisted"))
	token, err := reopened.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreErrors(t *testing.T) {
	t.Parallel()

	_, err := NewFileStore(" ")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browser_id: [unterminated"), 0o600))
	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s.AccessToken(context.Background())
	assert.ErrorContains(t, err, "decoding session file")
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandHome("~/.virtusize/session.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".virtusize", "session.yaml"), got)

	got, err = expandHome("/tmp/s.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/s.yaml", got)
}
