package middleware

import (
	"context"
	"net/http"
	"strings"

	"netpay/internal/domain/auth"
)

type ctxKey string

const ctxKeyClient ctxKey = "client"

// Auth attaches the client from a valid bearer token. Requests without one pass through
// anonymously; RequirePermission decides whether that is acceptable.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || secret == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				log.WithField("requestId", GetRequestID(r.Context())).WithError(err).Debug("bearer token rejected")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), auth.ClientContext{
				ClientID:    claims.ClientID,
				Permissions: claims.Permissions,
			})))
		})
	}
}

func WithClient(ctx context.Context, client auth.ClientContext) context.Context {
	return context.WithValue(ctx, ctxKeyClient, client)
}

func GetClient(ctx context.Context) (auth.ClientContext, bool) {
	client, ok := ctx.Value(ctxKeyClient).(auth.ClientContext)
	return client, ok
}
