package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/products/:slugOrId", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/products/a", "/api/products/b", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/products/:slugOrId", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestObservers(t *testing.T) {
	m := New()
	m.ObserveLogin("success")
	m.ObserveLogin("invalid_credentials")
	m.ObserveLogin("invalid_credentials")
	m.ObserveContact("delivered")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.contactMessages.WithLabelValues("delivered")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveLogin("locked")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `galoya_login_attempts_total{result="locked"} 1`)
}
