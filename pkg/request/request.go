// Package request defines the declarative HTTP request descriptor executed by the client task.
package request

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// Method is an HTTP method supported by the Virtusize API.
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	DELETE Method = "DELETE"
)

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, DELETE:
		return true
	default:
		return false
	}
}

// HasBody reports whether params are sent as a JSON body rather than a query string.
func (m Method) HasBody() bool {
	return m != GET
}

// DefaultAuthScheme is the Authorization scheme used for Virtusize access tokens.
const DefaultAuthScheme = "Token"

// Auth is the credential attached to a request.
type Auth struct {
	Token string
	// Scheme prefixes the token in the Authorization header. Defaults to DefaultAuthScheme.
	Scheme string
	// QueryParam sends the token as this query parameter instead of a header.
	QueryParam string
}

// HeaderValue returns the Authorization header value.
func (a Auth) HeaderValue() string {
	scheme := a.Scheme
	if scheme == "" {
		scheme = DefaultAuthScheme
	}
	return scheme + " " + a.Token
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid request")

// ValidationError describes a malformed request descriptor.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalid) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Request is an immutable request descriptor. Build one with NewBuilder.
type Request struct {
	method  Method
	url     string
	headers map[string]string
	params  map[string]any
	auth    *Auth
}

// Method returns the HTTP method.
func (r Request) Method() Method { return r.method }

// URL returns the target URL without the encoded params.
func (r Request) URL() string { return r.url }

// Headers returns a copy of the request headers.
func (r Request) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

// Params returns a deep copy of the params. Nested maps and slices are copied too.
func (r Request) Params() map[string]any {
	return cloneParams(r.params)
}

// Auth returns the credential, if any.
func (r Request) Auth() (Auth, bool) {
	if r.auth == nil {
		return Auth{}, false
	}
	return *r.auth, true
}

// Path returns the URL path, for logging and metrics.
func (r Request) Path() string {
	u, err := url.Parse(r.url)
	if err != nil {
		return ""
	}
	return u.Path
}

// Validate reports whether the descriptor can be sent.
func (r Request) Validate() error {
	if !r.method.Valid() {
		return &ValidationError{Field: "method", Reason: fmt.Sprintf("%q is not supported", r.method)}
	}
	if strings.TrimSpace(r.url) == "" {
		return &ValidationError{Field: "url", Reason: "is required"}
	}
	u, err := url.Parse(r.url)
	if err != nil {
		return &ValidationError{Field: "url", Reason: fmt.Sprintf("is malformed: %v", err)}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "url", Reason: "must be an absolute http or https url"}
	}
	for name := range r.headers {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Field: "headers", Reason: "contain an empty name"}
		}
	}
	for key := range r.params {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Field: "params", Reason: "contain an empty key"}
		}
	}
	if r.auth != nil && strings.TrimSpace(r.auth.Token) == "" {
		return &ValidationError{Field: "auth", Reason: "token is required"}
	}
	return nil
}

// Builder configures a Request. Every method returns a new builder and leaves the receiver
// untouched.
type Builder struct {
	req Request
}

// NewBuilder starts a request.
func NewBuilder(method Method, rawURL string) Builder {
	return Builder{req: Request{method: method, url: strings.TrimSpace(rawURL)}}
}

// WithHeader sets a header.
func (b Builder) WithHeader(name, value string) Builder {
	headers := b.req.Headers()
	headers[name] = value
	b.req.headers = headers
	return b
}

// WithParam sets one param.
func (b Builder) WithParam(key string, value any) Builder {
	params := b.req.Params()
	params[key] = cloneValue(value)
	b.req.params = params
	return b
}

// WithParams merges params.
func (b Builder) WithParams(values map[string]any) Builder {
	params := b.req.Params()
	for k, v := range values {
		params[k] = cloneValue(v)
	}
	b.req.params = params
	return b
}

// WithAuth attaches a credential.
func (b Builder) WithAuth(auth Auth) Builder {
	b.req.auth = &auth
	return b
}

// Build validates and returns the descriptor.
func (b Builder) Build() (Request, error) {
	req := Request{
		method:  b.req.method,
		url:     b.req.url,
		headers: b.req.Headers(),
		params:  b.req.Params(),
	}
	if b.req.auth != nil {
		auth := *b.req.auth
		req.auth = &auth
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func cloneParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies maps and slices at any depth. Other values are returned as is.
func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	return cloneReflect(reflect.ValueOf(v)).Interface()
}

func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneReflect(v.Elem()))
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	default:
		return v
	}
}
