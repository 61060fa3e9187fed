package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{MetricsEnabled: true}, "test")
}

func serve(t *testing.T, s *Server, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndVersion(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := serve(t, s, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, http.MethodGet, "/version", nil, nil)
	assert.Equal(t, "test", decode(t, rec)["version"])
}

func TestProductCheck(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/services/product/check?apiKey=test_apiKey&externalId=694&version=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "694", body["productId"])
	assert.Equal(t, true, body["data"].(map[string]any)["validProduct"])

	rec = serve(t, s, http.MethodGet, "/services/product/check?apiKey=test_apiKey&externalId=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["data"].(map[string]any)["validProduct"])

	rec = serve(t, s, http.MethodGet, "/services/product/check?apiKey=wrong&externalId=694", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStoreRoutes(t *testing.T) {
	t.Parallel()

	s := New(Config{APIKey: "my-key"}, "test")

	rec := serve(t, s, http.MethodGet, "/a/api/v3/stores/api-key/my-key?format=json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "my-key", decode(t, rec)["apiKey"])

	rec = serve(t, s, http.MethodGet, "/a/api/v3/stores/api-key/other", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, s, http.MethodGet, "/a/api/v3/store-products/7110384?format=json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "694", decode(t, rec)["externalId"])

	rec = serve(t, s, http.MethodGet, "/a/api/v3/store-products/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, s, http.MethodGet, "/services/a/api/v3/product-types", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "["))
}

func TestSessionsAndAuthorizedRoutes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/a/api/v3/user-products", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, s, http.MethodPost, "/a/api/v3/sessions", nil, map[string]string{"x-vs-bid": "bid-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode(t, rec)
	access := session["id"].(string)
	auth := session["x-vs-auth"].(string)
	assert.NotEmpty(t, access)
	assert.Equal(t, "bid-1", session["user"].(map[string]any)["bid"])

	rec = serve(t, s, http.MethodPost, "/a/api/v3/sessions", nil, map[string]string{"x-vs-auth": auth})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, auth, decode(t, rec)["x-vs-auth"])

	authHeader := map[string]string{"Authorization": "Token " + access}
	rec = serve(t, s, http.MethodGet, "/a/api/v3/user-products", nil, authHeader)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, s, http.MethodGet, "/a/api/v3/user-body-measurements", nil, authHeader)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, http.MethodDelete, "/a/api/v3/users/me", nil, authHeader)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(t, s, http.MethodGet, "/a/api/v3/user-products", nil, authHeader)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrdersAndEvents(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := serve(t, s, http.MethodPost, "/a/api/v3/orders", map[string]any{
		"apiKey":          "test_apiKey",
		"externalOrderId": "888400111032",
		"items":           []any{map[string]any{"size": "L"}},
	}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(t, s, http.MethodPost, "/a/api/v3/orders", map[string]any{"apiKey": "test_apiKey"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, s.Orders(), 1)
	assert.Equal(t, "888400111032", s.Orders()[0]["externalOrderId"])

	rec = serve(t, s, http.MethodPost, "/events", map[string]any{"name": "user-opened-widget"}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = serve(t, s, http.MethodPost, "/events", map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"user-opened-widget"}, s.Events())
}

func TestContentRoutes(t *testing.T) {
	t.Parallel()

	s := New(Config{AoyamaVersion: "3.6.1"}, "test")

	rec := serve(t, s, http.MethodGet, "/static/a/aoyama/latest.txt", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3.6.1", strings.TrimSpace(rec.Body.String()))

	rec = serve(t, s, http.MethodGet, "/i18n/bundle-payloads/aoyama/ja", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, s, http.MethodGet, "/i18n/bundle-payloads/aoyama/fr", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, s, http.MethodPost, "/size-recommendation/item", map[string]any{"items": []any{}}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, s, http.MethodPost, "/services/item", map[string]any{"bodyData": map[string]any{}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "38", decode(t, rec)["sizeName"])

	rec = serve(t, s, http.MethodPost, "/rest-api/v1/product-meta-data-hints",
		map[string]any{"api_key": "test_apiKey", "image_url": "https://example.com/p.jpg", "external_id": "694"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/p.jpg", decode(t, rec)["imageUrl"])
}

func TestMetricsAndRequestLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := New(Config{MetricsEnabled: true}, "test", WithLogger(zerolog.New(&buf)))

	serve(t, s, http.MethodGet, "/a/api/v3/stores/api-key/test_apiKey", nil, nil)
	serve(t, s, http.MethodGet, "/services/product/check?apiKey=test_apiKey&externalId=694", nil, nil)

	rec := serve(t, s, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/a/api/v3/stores/api-key/{apiKey}"`)

	assert.Contains(t, buf.String(), "request handled")
	assert.NotContains(t, buf.String(), "test_apiKey")

	disabled := New(Config{}, "test")
	rec = serve(t, disabled, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
