package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpay/internal/domain/auth"
	"netpay/internal/platform/metrics"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequestIDPropagatesHeader(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	handler := RequestID(noContent)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestAuthSetsClient(t *testing.T) {
	token, _, err := auth.GenerateToken("secret", auth.Client{ID: "ui", Permissions: []string{auth.PermCalculate}}, time.Hour)
	require.NoError(t, err)

	var client auth.ClientContext
	var ok bool
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client, ok = GetClient(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, "ui", client.ClientID)
	assert.Equal(t, []string{auth.PermCalculate}, client.Permissions)
}

func TestAuthIgnoresBadToken(t *testing.T) {
	var ok bool
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = GetClient(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, ok)
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name    string
		enforce bool
		client  *auth.ClientContext
		want    int
	}{
		{name: "anonymous allowed", enforce: false, want: http.StatusNoContent},
		{name: "anonymous rejected", enforce: true, want: http.StatusUnauthorized},
		{
			name:    "client with permission",
			enforce: true,
			client:  &auth.ClientContext{ClientID: "ui", Permissions: []string{auth.PermCalculate}},
			want:    http.StatusNoContent,
		},
		{
			name:    "client without permission",
			enforce: false,
			client:  &auth.ClientContext{ClientID: "ui", Permissions: []string{auth.PermAuditRead}},
			want:    http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.client != nil {
				req = req.WithContext(WithClient(req.Context(), *tt.client))
			}
			rec := httptest.NewRecorder()
			RequirePermission(auth.PermCalculate, tt.enforce)(noContent).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRateLimitKeysByClientBeforeIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent)

	send := func(remote string, client *auth.ClientContext) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/calculate", nil)
		req.RemoteAddr = remote
		if client != nil {
			req = req.WithContext(WithClient(req.Context(), *client))
		}
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	ui := &auth.ClientContext{ClientID: "ui"}
	assert.Equal(t, http.StatusNoContent, send("198.51.100.11:2222", ui))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.12:3333", ui), "same client from another IP")
	assert.Equal(t, http.StatusNoContent, send("198.51.100.11:4444", nil), "anonymous caller has its own bucket")
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.11:5555", nil))
}

func TestRateLimitWindowResets(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limited := RateLimit(1, time.Minute, withClock(func() time.Time { return now }))(noContent)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.10:1000"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send().Code)
	throttled := send()
	assert.Equal(t, http.StatusTooManyRequests, throttled.Code)
	assert.Equal(t, "60", throttled.Header().Get("Retry-After"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusNoContent, send().Code)
}

func TestRecovererReturnsGenericError(t *testing.T) {
	handler := RequestID(Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"internal_error"`)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestBodyLimit(t *testing.T) {
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		_, err := r.Body.Read(buf)
		for err == nil {
			_, err = r.Body.Read(buf)
		}
		var maxErr *http.MaxBytesError
		if assert.ErrorAs(t, err, &maxErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}
	}))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789abcdef"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	collector := metrics.New()
	router := chi.NewRouter()
	router.Use(Metrics(collector))
	router.Get("/items/{id}", noContent)

	for _, id := range []string{"1", "2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `netpay_http_requests_total{method="GET",route="/items/{id}",status="204"} 2`)
}

func TestSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(true)(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
