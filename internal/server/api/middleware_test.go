package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamikazebr/iskra-desktop/internal/server/services"
	"github.com/kamikazebr/iskra-desktop/internal/testutil"
	"github.com/kamikazebr/iskra-desktop/pkg/utils"
)

const testSecret = "test-secret-key-for-testing"

type secretValidator string

func (s secretValidator) ValidateToken(token string) (*utils.Claims, error) {
	return utils.ValidateJWT(token, string(s))
}

func TestAuthMiddleware(t *testing.T) {
	token, _, err := utils.GenerateJWT(42, "user@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	var seen *utils.Claims
	handler := AuthMiddleware(secretValidator(testSecret))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserClaims(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"extra parts", "Bearer a b", http.StatusUnauthorized},
		{"bad token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, int64(42), seen.UserID)
				assert.Equal(t, "user@example.com", seen.Email)
			} else {
				assert.Nil(t, seen)
				assert.Contains(t, rec.Body.String(), `"error":"Unauthorized"`)
			}
		})
	}
}

func TestGetUserClaims_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetUserClaims(req))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggingMiddleware_CountsByRoute(t *testing.T) {
	metrics := services.NewMetrics()
	handler := LoggingMiddleware(testutil.DiscardLogger(), metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `iskra_http_requests_total{method="GET",route="/health",status="418"} 1`)
}
