package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/products", nil)

	Respond(ctx, zaptest.NewLogger(t), err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestRespondStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid request", InvalidRequest("Username and password required"), http.StatusBadRequest, "INVALID_REQUEST"},
		{"validation", Validation("VALIDATION_ERROR", "name is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"credentials", InvalidCredentials(), http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unauthenticated", Unauthenticated(), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"unauthorized", Unauthorized(), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not found", NotFound("Product not found"), http.StatusNotFound, "NOT_FOUND"},
		{"locked", TooManyRequests(), http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS"},
		{"notification", NotificationFailure(errors.New("smtp down")), http.StatusInternalServerError, "NOTIFICATION_FAILED"},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("Award not found")), http.StatusNotFound, "NOT_FOUND"},
		{"canceled", context.Canceled, http.StatusRequestTimeout, "REQUEST_CANCELED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, payload := respond(t, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, payload["code"])
		})
	}
}

func TestRespondHidesBackendDetail(t *testing.T) {
	rec, payload := respond(t, errors.New(`pq: relation "products" does not exist`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", payload["code"])
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestNotificationFailureUnwraps(t *testing.T) {
	cause := errors.New("smtp down")
	err := NotificationFailure(cause)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Message, "smtp")
}
