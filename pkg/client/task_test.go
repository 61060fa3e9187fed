package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/virtusize/virtusize-go/pkg/parser"
	"github.com/virtusize/virtusize-go/pkg/request"
)

func respondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newTestTask(t *testing.T, opts ...TaskOption) *Task {
	t.Helper()
	task, err := NewTask(TaskConfig{Timeout: 5 * time.Second}, opts...)
	require.NoError(t, err)
	return task
}

func mustBuild(t *testing.T, b request.Builder) request.Request {
	t.Helper()
	req, err := b.Build()
	require.NoError(t, err)
	return req
}

type countingDecoder struct {
	calls atomic.Int32
}

func (d *countingDecoder) decode() parser.Decoder[parser.Object] {
	return func(body []byte) (parser.Object, error) {
		d.calls.Add(1)
		return parser.DecodeObject(body)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string]string
}

func (o *recordingObserver) ObserveRequest(endpoint, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]string{}
	}
	o.outcomes[endpoint] = outcome
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskConfig{})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, task.cfg.Timeout)
	assert.Equal(t, defaultUserAgent, task.cfg.UserAgent)
	assert.NotNil(t, task.http)

	_, err = NewTask(TaskConfig{Timeout: -time.Second})
	assert.Error(t, err)
}

func TestExecuteSuccess(t *testing.T) {
	t.Parallel()

	var gotQuery, gotAuth, gotBid, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotBid = r.Header.Get("x-vs-bid")
		gotUA = r.Header.Get("User-Agent")
		respondJSON(w, http.StatusOK, `{"name":"ok"}`)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	task, err := NewTask(TaskConfig{BrowserID: "bid-1", UserAgent: "test-agent"}, WithObserver(obs))
	require.NoError(t, err)

	req := mustBuild(t, request.NewBuilder(request.GET, srv.URL+"/a/api/v3/store-products/42").
		WithParam("format", "json").
		WithAuth(request.Auth{Token: "access"}))

	resp := Execute[parser.Object](context.Background(), task, req, parser.DecodeObject)
	require.True(t, resp.OK(), "unexpected error: %v", resp.Err)
	assert.Equal(t, "ok", resp.Value.String("name", ""))
	assert.Equal(t, `{"name":"ok"}`, resp.RawBody)
	assert.Equal(t, "format=json", gotQuery)
	assert.Equal(t, "Token access", gotAuth)
	assert.Equal(t, "bid-1", gotBid)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, map[string]string{"/a/api/v3/store-products/{id}": outcomeOK}, obs.outcomes)
}

func TestExecuteSendsJSONBody(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	req := mustBuild(t, request.NewBuilder(request.POST, srv.URL+"/a/api/v3/orders").
		WithParam("externalOrderId", "888400111032"))

	resp := Execute(context.Background(), newTestTask(t), req, parser.Discard())
	require.True(t, resp.OK())
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]any{"externalOrderId": "888400111032"}, gotBody)
}

func TestExecuteHTTPErrorSkipsDecoder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusInternalServerError, `{"detail":"boom"}`)
	}))
	defer srv.Close()

	dec := &countingDecoder{}
	req := mustBuild(t, request.NewBuilder(request.GET, srv.URL+"/product/check"))
	resp := Execute(context.Background(), newTestTask(t), req, dec.decode())

	require.NotNil(t, resp.Err)
	assert.Equal(t, KindHTTP, resp.Err.Kind)
	assert.Equal(t, http.StatusInternalServerError, resp.Err.StatusCode())
	assert.Equal(t, `{"detail":"boom"}`, resp.Err.Body)
	assert.Equal(t, int32(0), dec.calls.Load())

	_, err := resp.Result()
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindHTTP, kind)
}

func TestExecuteParsingError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `[1,2,3]`)
	}))
	defer srv.Close()

	req := mustBuild(t, request.NewBuilder(request.GET, srv.URL+"/product/check"))
	resp := Execute(context.Background(), newTestTask(t), req, parser.ProductCheckBody())

	require.NotNil(t, resp.Err)
	assert.Equal(t, KindParsing, resp.Err.Kind)
	assert.ErrorIs(t, resp.Err, parser.ErrNotObject)
	assert.Equal(t, `[1,2,3]`, resp.RawBody)
}

func TestExecuteInvalidInputSendsNothing(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp := Execute(context.Background(), newTestTask(t), request.Request{}, parser.Discard())
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindInvalidInput, resp.Err.Kind)
	assert.ErrorIs(t, resp.Err, request.ErrInvalid)

	req := mustBuild(t, request.NewBuilder(request.GET, srv.URL))
	resp = Execute[struct{}](context.Background(), newTestTask(t), req, nil)
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindInvalidInput, resp.Err.Kind)
	assert.Equal(t, int32(0), hits.Load())
}

func TestExecuteNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	req := mustBuild(t, request.NewBuilder(request.GET, url+"/product/check"))
	resp := Execute(context.Background(), newTestTask(t), req, parser.Discard())
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindNetwork, resp.Err.Kind)
	assert.Zero(t, resp.Err.Status)
}

func TestExecuteTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	task, err := NewTask(TaskConfig{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	req := mustBuild(t, request.NewBuilder(request.GET, srv.URL))
	resp := Execute(context.Background(), task, req, parser.Discard())
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindNetwork, resp.Err.Kind)
	assert.Equal(t, "request timed out", resp.Err.Message)
	assert.True(t, errors.Is(resp.Err, context.DeadlineExceeded))
}

func TestExecuteLimiter(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	task := newTestTask(t, WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))
	req := mustBuild(t, request.NewBuilder(request.GET, srv.URL))

	require.True(t, Execute(context.Background(), task, req, parser.Discard()).OK())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	resp := Execute(ctx, task, req, parser.Discard())
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindNetwork, resp.Err.Kind)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	t.Run("delivers one response", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			respondJSON(w, http.StatusOK, `{"productId":"694"}`)
		}))
		defer srv.Close()

		req := mustBuild(t, request.NewBuilder(request.GET, srv.URL))
		ch := Dispatch(context.Background(), newTestTask(t), req, parser.ProductCheckBody())
		resp, ok := <-ch
		require.True(t, ok)
		require.True(t, resp.OK())
		assert.Equal(t, "694", resp.Value.ProductID)
		_, ok = <-ch
		assert.False(t, ok)
	})

	t.Run("cancellation delivers nothing", func(t *testing.T) {
		t.Parallel()
		started := make(chan struct{})
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(started)
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		req := mustBuild(t, request.NewBuilder(request.GET, srv.URL))
		ch := Dispatch(ctx, newTestTask(t), req, parser.Discard())
		<-started
		cancel()

		select {
		case _, ok := <-ch:
			assert.False(t, ok)
		case <-time.After(5 * time.Second):
			t.Fatal("dispatch channel was not closed")
		}
	})
}

func TestExecuteNeverLogsTokens(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusUnauthorized, `{"id":"session-secret","x-vs-auth":"auth-secret"}`)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	task := newTestTask(t, WithLogger(logger))

	req := mustBuild(t, request.NewBuilder(request.GET, srv.URL+"/a/api/v3/stores/api-key/store-key").
		WithParam("apiKey", "store-key").
		WithAuth(request.Auth{Token: "access-secret"}))
	resp := Execute(context.Background(), task, req, parser.Discard())
	require.NotNil(t, resp.Err)

	logged := buf.String()
	assert.Contains(t, logged, "request finished")
	assert.Contains(t, logged, "/a/api/v3/stores/api-key/{apiKey}")
	for _, secret := range []string{"access-secret", "store-key", "auth-secret"} {
		assert.NotContains(t, logged, secret)
	}
}

func TestEndpointLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/a/api/v3/store-products/{id}", endpointLabel("/a/api/v3/store-products/7110384"))
	assert.Equal(t, "/a/api/v3/stores/api-key/{apiKey}", endpointLabel("/a/api/v3/stores/api-key/abc"))
	assert.Equal(t, "/product/check", endpointLabel("/product/check"))
	assert.Equal(t, "", endpointLabel(""))
}

func TestClassifyNetworkError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "request cancelled", classifyNetworkError(context.Canceled))
	assert.Equal(t, "connection refused", classifyNetworkError(errors.New("dial tcp: connection refused")))
	assert.Equal(t, "host not found", classifyNetworkError(errors.New("lookup x: no such host")))
	assert.Equal(t, "transport failure", classifyNetworkError(errors.New("eof")))
}

func TestExecuteRejectsOversizedBodies(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		if r.URL.Path == "/fail" {
			status = http.StatusBadGateway
		}
		respondJSON(w, status, `{"detail":"0123456789"}`)
	}))
	t.Cleanup(srv.Close)

	task := newTestTask(t)
	task.maxBody = 8

	t.Run("2xx body is not decoded", func(t *testing.T) {
		t.Parallel()
		dec := &countingDecoder{}
		resp := Execute(context.Background(), task, mustBuild(t, request.NewBuilder(request.GET, srv.URL+"/ok")), dec.decode())
		require.NotNil(t, resp.Err)
		assert.Equal(t, KindParsing, resp.Err.Kind)
		assert.ErrorIs(t, resp.Err, ErrBodyTooLarge)
		assert.Contains(t, resp.Err.Error(), "response body exceeds 8 bytes")
		assert.Zero(t, dec.calls.Load())
	})

	t.Run("http error keeps the status and marks the truncation", func(t *testing.T) {
		t.Parallel()
		resp := Execute[parser.Object](context.Background(), task, mustBuild(t, request.NewBuilder(request.GET, srv.URL+"/fail")), parser.DecodeObject)
		require.NotNil(t, resp.Err)
		assert.Equal(t, KindHTTP, resp.Err.Kind)
		assert.Equal(t, http.StatusBadGateway, resp.Err.Status)
		assert.ErrorIs(t, resp.Err, ErrBodyTooLarge)
		assert.Equal(t, `{"detail`, resp.Err.Body)
		assert.Contains(t, resp.Err.Error(), "truncated")
	})

	t.Run("body at the limit is accepted", func(t *testing.T) {
		t.Parallel()
		exact := newTestTask(t)
		exact.maxBody = int64(len(`{"detail":"0123456789"}`))
		resp := Execute[parser.Object](context.Background(), exact, mustBuild(t, request.NewBuilder(request.GET, srv.URL+"/ok")), parser.DecodeObject)
		require.Nil(t, resp.Err)
		assert.Equal(t, "0123456789", resp.Value.String("detail", ""))
	})
}
