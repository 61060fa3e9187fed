// Package client executes Virtusize request descriptors and exposes a typed SDK client.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/virtusize/virtusize-go/internal/logging"
	"github.com/virtusize/virtusize-go/pkg/parser"
	"github.com/virtusize/virtusize-go/pkg/request"
)

const (
	defaultTimeout   = 80 * time.Second
	defaultUserAgent = "virtusize-go"
	maxBodyBytes     = 10 << 20
	tracerName       = "github.com/virtusize/virtusize-go/pkg/client"
	spanName         = "virtusize.request"
	headerBrowserID  = "x-vs-bid"
	outcomeOK        = "ok"
)

// Observer receives one observation per executed request.
type Observer interface {
	ObserveRequest(endpoint, outcome string, duration time.Duration)
}

// TaskConfig holds transport configuration.
type TaskConfig struct {
	// HTTPClient sends the requests. Defaults to a new http.Client.
	HTTPClient *http.Client
	// Timeout bounds every request. Defaults to 80s.
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
	// BrowserID is sent as x-vs-bid unless the request already carries one.
	BrowserID string
}

// TaskOption customizes a Task.
type TaskOption func(*Task)

// WithLogger sets the task logger.
func WithLogger(logger zerolog.Logger) TaskOption {
	return func(t *Task) { t.log = logger }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer trace.Tracer) TaskOption {
	return func(t *Task) { t.tracer = tracer }
}

// WithLimiter makes every request wait on limiter before it is sent.
func WithLimiter(limiter *rate.Limiter) TaskOption {
	return func(t *Task) { t.limiter = limiter }
}

// WithObserver reports request outcomes to o.
func WithObserver(o Observer) TaskOption {
	return func(t *Task) { t.observer = o }
}

// Task performs single HTTP round-trips. It holds no per-call state and is safe for concurrent use.
type Task struct {
	cfg      TaskConfig
	http     *http.Client
	log      zerolog.Logger
	tracer   trace.Tracer
	limiter  *rate.Limiter
	observer Observer
	maxBody  int64
}

// NewTask returns a task with defaults applied.
func NewTask(cfg TaskConfig, opts ...TaskOption) (*Task, error) {
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("client: Timeout must not be negative")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	t := &Task{
		cfg:     cfg,
		http:    httpClient,
		log:     zerolog.Nop(),
		tracer:  otel.Tracer(tracerName),
		maxBody: maxBodyBytes,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With().Str("component", "task").Logger()
	return t, nil
}

// Execute sends req once and decodes a 2xx body with decode. A non-2xx status never reaches the
// decoder.
func Execute[T any](ctx context.Context, t *Task, req request.Request, decode parser.Decoder[T]) Response[T] {
	label := endpointLabel(req.Path())
	started := time.Now()

	ctx, span := t.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", string(req.Method())),
		attribute.String("virtusize.endpoint", label),
	)

	resp := execute(ctx, t, req, decode)

	outcome := outcomeOK
	if resp.Err != nil {
		outcome = string(resp.Err.Kind)
		span.RecordError(resp.Err)
		span.SetStatus(codes.Error, resp.Err.Message)
	}
	if resp.Err == nil || resp.Err.Status != 0 {
		status := http.StatusOK
		if resp.Err != nil {
			status = resp.Err.Status
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	elapsed := time.Since(started)
	if t.observer != nil {
		t.observer.ObserveRequest(label, outcome, elapsed)
	}

	event := t.log.Debug()
	if resp.Err != nil {
		event = t.log.Warn().
			Str("kind", string(resp.Err.Kind)).
			Int("status", resp.Err.Status).
			Int("body_bytes", len(resp.RawBody)).
			Str("error", logging.Redact(resp.Err.Message))
	}
	event.
		Str("method", string(req.Method())).
		Str("endpoint", label).
		Dur("duration", elapsed).
		Msg("request finished")
	return resp
}

func execute[T any](ctx context.Context, t *Task, req request.Request, decode parser.Decoder[T]) Response[T] {
	if err := req.Validate(); err != nil {
		return Response[T]{Err: newError(KindInvalidInput, err, "%v", err)}
	}
	if decode == nil {
		return Response[T]{Err: newError(KindInvalidInput, nil, "decoder is required")}
	}
	rawURL, err := req.EncodedURL()
	if err != nil {
		return Response[T]{Err: newError(KindInvalidInput, err, "%v", err)}
	}
	body, err := req.Body()
	if err != nil {
		return Response[T]{Err: newError(KindInvalidInput, err, "%v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return Response[T]{Err: networkError(ctx, err)}
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method()), rawURL, reader)
	if err != nil {
		return Response[T]{Err: newError(KindInvalidInput, err, "building http request: %v", err)}
	}
	httpReq.Header.Set("User-Agent", t.cfg.UserAgent)
	httpReq.Header.Set("Accept", "application/json")
	if t.cfg.BrowserID != "" {
		httpReq.Header.Set(headerBrowserID, t.cfg.BrowserID)
	}
	for name, value := range req.Headers() {
		httpReq.Header.Set(name, value)
	}
	if auth, ok := req.Auth(); ok && auth.QueryParam == "" {
		httpReq.Header.Set("Authorization", auth.HeaderValue())
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := t.http.Do(httpReq)
	if err != nil {
		return Response[T]{Err: networkError(ctx, err)}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, t.maxBody+1))
	if err != nil {
		return Response[T]{Err: networkError(ctx, err)}
	}
	tooLarge := int64(len(raw)) > t.maxBody
	if tooLarge {
		raw = raw[:t.maxBody]
	}
	rawBody := string(raw)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		e := newError(KindHTTP, nil, "unexpected status %d", httpResp.StatusCode)
		e.Status = httpResp.StatusCode
		e.Body = rawBody
		if tooLarge {
			e.Err = ErrBodyTooLarge
			e.Message += fmt.Sprintf("; response body exceeds %d bytes and was truncated", t.maxBody)
		}
		return Response[T]{RawBody: rawBody, Err: e}
	}
	if tooLarge {
		return Response[T]{Err: newError(KindParsing, ErrBodyTooLarge, "response body exceeds %d bytes", t.maxBody)}
	}

	value, err := decode(raw)
	if err != nil {
		e := newError(KindParsing, err, "decoding response: %v", err)
		e.Body = rawBody
		return Response[T]{RawBody: rawBody, Err: e}
	}
	return Response[T]{Value: value, RawBody: rawBody}
}

// Dispatch runs Execute on its own goroutine. The channel yields at most one response and is
// closed without a value when ctx is cancelled.
func Dispatch[T any](ctx context.Context, t *Task, req request.Request, decode parser.Decoder[T]) <-chan Response[T] {
	out := make(chan Response[T], 1)
	go func() {
		defer close(out)
		resp := Execute(ctx, t, req, decode)
		if ctx.Err() != nil {
			return
		}
		out <- resp
	}()
	return out
}

func networkError(ctx context.Context, err error) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return newError(KindNetwork, err, "%s", classifyNetworkError(err))
}

func classifyNetworkError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "request timed out"
	case strings.Contains(msg, "connection refused"):
		return "connection refused"
	case strings.Contains(msg, "connection reset"):
		return "connection reset"
	case strings.Contains(msg, "no such host"):
		return "host not found"
	default:
		return "transport failure"
	}
}

// endpointLabel hides ids and API keys in a URL path.
func endpointLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		switch {
		case i > 0 && segments[i-1] == "api-key":
			segments[i] = "{apiKey}"
		case isDigits(seg):
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
