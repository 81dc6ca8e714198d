package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/galoya-api/internal/auth"
	"github.com/yourusername/galoya-api/internal/catalog"
	"github.com/yourusername/galoya-api/internal/contact"
	"github.com/yourusername/galoya-api/internal/metrics"
	"github.com/yourusername/galoya-api/internal/password"
	"github.com/yourusername/galoya-api/internal/session"
	"github.com/yourusername/galoya-api/internal/users"
)

const testOrigin = "http://localhost:5173"

type testServer struct {
	router  *gin.Engine
	catalog *catalog.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	userStore := users.NewMemoryStore()
	hasher := password.NewHasher(bcrypt.MinCost)
	_, err := users.Provision(context.Background(), userStore, hasher, "admin", "correct-horse")
	require.NoError(t, err)

	sessions := session.NewManager(session.NewMemoryStore(), session.Options{
		Cookie: session.CookieOptions{Name: "galoya.sid", SameSite: http.SameSiteLaxMode},
		TTL:    time.Hour,
		Secret: []byte("test-secret"),
	}, logger)
	m := metrics.New()
	gateway := auth.NewGateway(userStore, hasher, sessions, auth.LockoutPolicy{MaxAttempts: 5, Window: time.Minute, Lock: time.Minute}, m, logger)
	repo := catalog.NewMemoryRepository()

	router, err := NewRouter(Options{
		Logger:         logger,
		AllowedOrigins: []string{testOrigin},
		Sessions:       sessions,
		Gateway:        gateway,
		Catalog:        repo,
		Contact:        contact.NewLogNotifier(logger),
		Metrics:        m,
	})
	require.NoError(t, err)
	return &testServer{router: router, catalog: repo}
}

func (s *testServer) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "galoya.sid" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	_, err := NewRouter(Options{AllowedOrigins: []string{testOrigin}})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"galoya-api"}`, rec.Body.String())
}

func TestAdminProductLifecycle(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t)

	rec := s.do(http.MethodPost, "/api/products", map[string]any{
		"name":            "Galoya Reserve",
		"abv":             "40%",
		"image":           "/attached_assets/reserve.png",
		"description":     "Aged in halmilla casks",
		"ingredients":     "Coconut sap",
		"tastingNotes":    "Vanilla, toasted coconut",
		"longDescription": "A long description",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "galoya-reserve", created["slug"])

	rec = s.do(http.MethodGet, "/api/products/galoya-reserve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decodeBody(t, rec)["id"])

	// Cookie なしの削除は弾かれ、データは残る
	rec = s.do(http.MethodDelete, "/api/products/"+id, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":"UNAUTHORIZED","message":"Unauthorized"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/products/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/products/"+id, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// ログアウト後は同じ Cookie で更新できない
	rec = s.do(http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/api/products", map[string]any{"name": "x"}, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicReadsAndGuardedWrites(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/portfolio", "/api/products", "/api/awards"} {
		rec := s.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, rec.Body.String(), path)

		rec = s.do(http.MethodPost, path, map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		rec = s.do(http.MethodPut, path+"/some-id", map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	products, err := s.catalog.Products.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestMeWithoutSession(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":"UNAUTHENTICATED","message":"Not authenticated"}`, rec.Body.String())
}

func TestContactIsPublic(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/contact", map[string]string{
		"name":    "Nimal",
		"email":   "nimal@example.com",
		"message": "Do you ship to Japan?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Message sent successfully","success":true}`, rec.Body.String())
}

func TestCORSPreflightAllowsCredentials(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	rec := s.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"NOT_FOUND","message":"Not found"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `galoya_login_attempts_total{result="success"} 1`)
	assert.Contains(t, rec.Body.String(), `galoya_http_requests_total{method="POST",route="/api/auth/login",status="200"} 1`)
}
