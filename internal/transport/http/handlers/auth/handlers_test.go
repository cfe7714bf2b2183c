package authhandler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpay/internal/domain/auth"
	"netpay/internal/transport/http/middleware"
)

const testSecret = "test-signing-secret"

func newRouter(t *testing.T, secret string) chi.Router {
	t.Helper()
	hash, err := auth.HashSecret("s3cret")
	require.NoError(t, err)
	clients := auth.Clients{
		"payroll": {ID: "payroll", SecretHash: hash, Permissions: []string{auth.PermCalculate}},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Auth(secret))
	NewHandler(clients, secret, time.Hour).RegisterRoutes(r)
	return r
}

func postToken(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleToken(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{name: "valid credentials", body: `{"client_id":"payroll","client_secret":"s3cret"}`, want: http.StatusOK},
		{name: "wrong secret", body: `{"client_id":"payroll","client_secret":"nope"}`, want: http.StatusUnauthorized, code: "invalid_credentials"},
		{name: "unknown client", body: `{"client_id":"other","client_secret":"s3cret"}`, want: http.StatusUnauthorized, code: "invalid_credentials"},
		{name: "missing secret", body: `{"client_id":"payroll"}`, want: http.StatusBadRequest, code: "validation_error"},
		{name: "malformed json", body: `{"client_id":`, want: http.StatusBadRequest, code: "invalid_json"},
	}

	r := newRouter(t, testSecret)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postToken(r, tc.body)
			require.Equal(t, tc.want, rec.Code)
			if tc.code != "" {
				assert.Contains(t, rec.Body.String(), `"code":"`+tc.code+`"`)
			}
		})
	}
}

func TestIssuedTokenAuthenticatesRequests(t *testing.T) {
	r := newRouter(t, testSecret)

	rec := postToken(r, `{"client_id":"payroll","client_secret":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data tokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.Token)
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.True(t, env.Data.ExpiresAt.After(time.Now()))

	claims, err := auth.ParseToken(testSecret, env.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "payroll", claims.ClientID)
	assert.Equal(t, []string{auth.PermCalculate}, claims.Permissions)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+env.Data.Token)
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"clientId":"payroll"`)
}

func TestHandleMeRequiresToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, testSecret).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleTokenWithoutSigningSecret(t *testing.T) {
	rec := postToken(newRouter(t, ""), `{"client_id":"payroll","client_secret":"s3cret"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
