package middleware

import (
	"net/http"
	"slices"

	"netpay/internal/transport/http/api"
)

// RequirePermission rejects callers without permission. When enforce is false anonymous
// callers are let through, but an authenticated client still needs the permission.
func RequirePermission(permission string, enforce bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client, ok := GetClient(r.Context())
			if !ok {
				if !enforce {
					next.ServeHTTP(w, r)
					return
				}
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !slices.Contains(client.Permissions, permission) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
