package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/virtusize/virtusize-go/pkg/endpoint"
)

const (
	headerBrowserID = "x-vs-bid"
	headerAuth      = "x-vs-auth"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]any{"detail": detail, "status": status})
}

func decodeBody(r *http.Request) (map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		return nil, err
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

func (s *Server) fixture(name string) ([]byte, error) {
	raw, err := fixtures.ReadFile("fixtures/" + name)
	if err != nil {
		return nil, err
	}
	return []byte(strings.ReplaceAll(string(raw), "{{apiKey}}", s.cfg.APIKey)), nil
}

func (s *Server) fixtureHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body, err := s.fixture(name)
		if err != nil {
			s.log.Error().Err(err).Str("fixture", name).Msg("fixture missing")
			respondError(w, http.StatusInternalServerError, "fixture missing")
			return
		}
		respondRaw(w, http.StatusOK, "application/json", body)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleProductCheck(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("apiKey") != s.cfg.APIKey {
		respondError(w, http.StatusForbidden, "invalid api key")
		return
	}
	externalID := strings.TrimSpace(query.Get("externalId"))
	if externalID == "" {
		respondError(w, http.StatusBadRequest, "externalId is required")
		return
	}

	data := map[string]any{
		"validProduct":  false,
		"fetchMetaData": false,
		"storeId":       2,
		"storeName":     "virtusize",
		"userData":      map[string]any{"should_see_ph_tooltip": false},
	}
	if externalID == knownExternalID {
		data["validProduct"] = true
		data["productDataId"] = 7110384
		data["productTypeId"] = 8
		data["productTypeName"] = "jacket"
		data["userData"] = map[string]any{"should_see_ph_tooltip": true, "wardrobeActive": false}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":      data,
		"name":      "backend-checked-product",
		"productId": externalID,
	})
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "apiKey") != s.cfg.APIKey {
		respondError(w, http.StatusForbidden, "invalid api key")
		return
	}
	s.fixtureHandler("store.json")(w, r)
}

func (s *Server) handleStoreProduct(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "id") != knownStoreProductID {
		respondError(w, http.StatusNotFound, "store product not found")
		return
	}
	s.fixtureHandler("store_product.json")(w, r)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if body["apiKey"] != s.cfg.APIKey {
		respondError(w, http.StatusForbidden, "invalid api key")
		return
	}
	items, _ := body["items"].([]any)
	if id, _ := body["externalOrderId"].(string); id == "" || len(items) == 0 {
		respondError(w, http.StatusBadRequest, "externalOrderId and items are required")
		return
	}

	s.mu.Lock()
	s.orders = append(s.orders, body)
	s.mu.Unlock()
	respondJSON(w, http.StatusCreated, map[string]any{})
}

func (s *Server) handleProductMetaDataHints(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"apiKey":             body["api_key"],
		"imageUrl":           body["image_url"],
		"cloudinaryPublicId": "hint_" + knownExternalID,
		"externalProductId":  body["external_id"],
	})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	name, _ := body["name"].(string)
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	s.events = append(s.events, name)
	s.mu.Unlock()
	respondJSON(w, http.StatusCreated, map[string]any{})
}

// handleSessions issues a new access token. A known x-vs-auth header keeps its auth token.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get(headerAuth)
	s.mu.Lock()
	known := false
	for _, a := range s.sessions {
		if auth != "" && a == auth {
			known = true
			break
		}
	}
	if !known {
		auth = "auth-" + uuid.NewString()
	}
	access := uuid.NewString()
	s.sessions[access] = auth
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{
		"id":        access,
		"x-vs-auth": auth,
		"user":      map[string]any{"bid": r.Header.Get(headerBrowserID)},
	})
}

func accessToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Token") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessToken(r)
		s.mu.Lock()
		_, ok := s.sessions[token]
		s.mu.Unlock()
		if token == "" || !ok {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.sessions, accessToken(r))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecommendationV1(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if _, ok := body["bodyData"]; !ok {
		respondError(w, http.StatusBadRequest, "bodyData is required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"sizeName": "38"})
}

func (s *Server) handleLatestAoyamaVersion(w http.ResponseWriter, _ *http.Request) {
	respondRaw(w, http.StatusOK, "text/plain", []byte(s.cfg.AoyamaVersion+"\n"))
}

func (s *Server) handleI18n(w http.ResponseWriter, r *http.Request) {
	lang := endpoint.Language(chi.URLParam(r, "lang"))
	if lang != endpoint.English && lang != endpoint.Japanese && lang != endpoint.Korean {
		respondError(w, http.StatusNotFound, "unknown language")
		return
	}
	// Every language serves the English bundle.
	s.fixtureHandler("i18n_en.json")(w, r)
}
