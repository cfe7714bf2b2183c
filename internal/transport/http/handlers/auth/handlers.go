package authhandler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"netpay/internal/domain/auth"
	"netpay/internal/requestctx"
	"netpay/internal/transport/http/api"
	"netpay/internal/transport/http/middleware"
	"netpay/internal/transport/http/shared"
)

var log = logrus.WithField("module", "auth")

type Handler struct {
	Clients auth.Clients
	Secret  string
	TTL     time.Duration
}

func NewHandler(clients auth.Clients, secret string, ttl time.Duration) *Handler {
	return &Handler{Clients: clients, Secret: secret, TTL: ttl}
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	Token       string    `json:"token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Permissions []string  `json:"permissions"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", h.HandleToken)
		r.Get("/me", h.HandleMe)
	})
}

// HandleToken exchanges client credentials for a bearer token.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	if h.Secret == "" {
		api.Fail(w, http.StatusServiceUnavailable, "auth_disabled", "token issuance is not configured", requestID)
		return
	}

	var payload tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload", requestID)
		return
	}
	payload.ClientID = strings.TrimSpace(payload.ClientID)

	v := shared.NewValidator()
	v.Required("client_id", payload.ClientID, "is required")
	v.Required("client_secret", payload.ClientSecret, "is required")
	if v.Reject(w, requestID) {
		return
	}

	client, err := h.Clients.Verify(payload.ClientID, payload.ClientSecret)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.WithError(err).WithField("requestId", requestID).Error("verify client failed")
		}
		log.WithField("clientId", payload.ClientID).Info("token request rejected")
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}

	token, expiresAt, err := auth.GenerateToken(h.Secret, client, h.TTL)
	if err != nil {
		log.WithError(err).WithField("requestId", requestID).Error("issue token failed")
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to issue token", requestID)
		return
	}

	api.Success(w, tokenResponse{
		Token:       token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Permissions: client.Permissions,
	}, requestID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	client, ok := middleware.GetClient(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, client, requestctx.GetRequestID(r.Context()))
}
