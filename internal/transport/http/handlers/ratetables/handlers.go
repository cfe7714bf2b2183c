package ratetablehandler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"netpay/internal/domain/auth"
	"netpay/internal/domain/ratetable"
	"netpay/internal/transport/http/api"
	"netpay/internal/transport/http/middleware"
)

var log = logrus.WithField("module", "ratetables")

const contentTypeYAML = "application/yaml"

// Store is the persisted set of rate tables keyed by year.
type Store interface {
	Load(ctx context.Context, year int) (*ratetable.Table, error)
	Save(ctx context.Context, document []byte) (int, error)
	ListYears(ctx context.Context) ([]int, error)
}

// Handler serves the active table and, when a database is configured, the stored ones.
// Saved tables are picked up by the engine on the next start.
type Handler struct {
	Active       *ratetable.Table
	Store        Store
	AuthRequired bool
}

func NewHandler(active *ratetable.Table, store Store, authRequired bool) *Handler {
	return &Handler{Active: active, Store: store, AuthRequired: authRequired}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rate-tables", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermRateTablesRead, h.AuthRequired))
			r.Get("/", h.handleList)
			r.Get("/active", h.handleActive)
			r.Get("/{year}", h.handleGet)
		})
		r.With(middleware.RequirePermission(auth.PermRateTablesWrite, true)).Put("/", h.handleSave)
	})
}

type listResponse struct {
	Active int   `json:"active"`
	Stored []int `json:"stored"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	resp := listResponse{Active: h.Active.Year, Stored: []int{}}
	if h.Store != nil {
		years, err := h.Store.ListYears(r.Context())
		if err != nil {
			log.WithError(err).Error("list rate tables failed")
			api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list rate tables", middleware.GetRequestID(r.Context()))
			return
		}
		if years != nil {
			resp.Stored = years
		}
	}
	api.Success(w, resp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	h.writeDocument(w, r, h.Active)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be a number", requestID)
		return
	}
	if h.Store == nil {
		if year != h.Active.Year {
			api.Fail(w, http.StatusNotFound, "not_found", "rate table not found", requestID)
			return
		}
		h.writeDocument(w, r, h.Active)
		return
	}

	table, err := h.Store.Load(r.Context(), year)
	switch {
	case errors.Is(err, ratetable.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "rate table not found", requestID)
		return
	case err != nil:
		log.WithError(err).WithField("year", year).Error("load rate table failed")
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to load rate table", requestID)
		return
	}
	h.writeDocument(w, r, table)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.Store == nil {
		api.Fail(w, http.StatusServiceUnavailable, "storage_unavailable", "rate tables are not stored in a database", requestID)
		return
	}

	document, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read request body", requestID)
		return
	}

	year, err := h.Store.Save(r.Context(), document)
	if errors.Is(err, ratetable.ErrInvalidTable) {
		api.FailWithDetails(w, http.StatusBadRequest, "invalid_rate_table", "rate table rejected", map[string]any{"reason": err.Error()}, requestID)
		return
	}
	if err != nil {
		log.WithError(err).Error("save rate table failed")
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to save rate table", requestID)
		return
	}

	client, _ := middleware.GetClient(r.Context())
	log.WithFields(logrus.Fields{"year": year, "clientId": client.ClientID}).Info("rate table saved")
	api.Success(w, map[string]any{"year": year, "active": year == h.Active.Year}, requestID)
}

func (h *Handler) writeDocument(w http.ResponseWriter, r *http.Request, table *ratetable.Table) {
	body, err := ratetable.Encode(table)
	if err != nil {
		log.WithError(err).WithField("year", table.Year).Error("encode rate table failed")
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to encode rate table", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", contentTypeYAML)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
