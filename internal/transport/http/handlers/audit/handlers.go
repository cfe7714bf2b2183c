package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"netpay/internal/domain/audit"
	"netpay/internal/domain/auth"
	"netpay/internal/transport/http/api"
	"netpay/internal/transport/http/middleware"
	"netpay/internal/transport/http/shared"
)

var log = logrus.WithField("module", "audit")

const exportLimit = 10000

// Store is the read side of the audit log.
type Store interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, includeResult bool, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes mounts the audit endpoints. They always require a token with audit.read.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermAuditRead, true))
		r.Get("/calculations", h.handleListEvents)
		r.Get("/calculations/export", h.handleExportEvents)
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	includeResult := r.URL.Query().Get("includeResult") == "true"

	total, countErr := h.Store.Count(r.Context(), filter)
	if countErr != nil {
		log.WithError(countErr).WithField("requestId", requestID).Warn("audit count failed")
	}
	events, err := h.Store.List(r.Context(), filter, includeResult, page.Limit, page.Offset)
	if err != nil {
		log.WithError(err).WithField("requestId", requestID).Error("audit list failed")
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", requestID)
		return
	}

	// Without a count the header is left out rather than reporting zero.
	if countErr == nil {
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
	}
	api.Success(w, events, requestID)
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	events, err := h.Store.List(r.Context(), filter, false, exportLimit, 0)
	if err != nil {
		log.WithError(err).WithField("requestId", requestID).Error("audit export failed")
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=calculation-audit.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "request_id", "client_id", "scenario", "outcome", "rule", "rate_table_year", "gross_income", "net_income", "total_deductions", "created_at"}); err != nil {
		log.WithError(err).Warn("audit export header failed")
	}
	for _, evt := range events {
		row := []string{
			evt.ID, evt.RequestID, evt.ClientID, evt.Scenario, evt.Outcome, evt.Rule,
			strconv.Itoa(evt.RateTableYear),
			formatAmount(evt.GrossIncome), formatAmount(evt.NetIncome), formatAmount(evt.TotalDeductions),
			evt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			log.WithError(err).Warn("audit export row failed")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.WithError(err).Warn("audit export flush failed")
	}
}

// parseFilter reads scenario, outcome, from and to. A date-only "to" includes that whole day.
func parseFilter(w http.ResponseWriter, r *http.Request) (audit.Filter, bool) {
	q := r.URL.Query()
	filter := audit.Filter{
		Scenario: strings.TrimSpace(q.Get("scenario")),
		Outcome:  strings.TrimSpace(q.Get("outcome")),
	}

	v := shared.NewValidator()
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		filter.From, _ = v.Date("from", raw)
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		if to, ok := v.Date("to", raw); ok {
			if len(raw) == len("2006-01-02") {
				to = to.AddDate(0, 0, 1)
			}
			filter.To = to
		}
	}
	v.DateOrder("from", filter.From, "to", filter.To)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return audit.Filter{}, false
	}
	return filter, true
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
