package calculatorhandler

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"netpay/internal/domain/audit"
	"netpay/internal/domain/auth"
	"netpay/internal/domain/ratetable"
	"netpay/internal/domain/reports"
	"netpay/internal/domain/tax"
	"netpay/internal/platform/metrics"
	"netpay/internal/transport/http/api"
	"netpay/internal/transport/http/middleware"
	"netpay/internal/transport/http/shared"
)

var log = logrus.WithField("module", "calculator")

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	Engine       *tax.Engine
	Audit        audit.Recorder
	Metrics      *metrics.Collector
	AuthRequired bool
	Now          func() time.Time
}

func NewHandler(engine *tax.Engine, recorder audit.Recorder, collector *metrics.Collector, authRequired bool) *Handler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Handler{Engine: engine, Audit: recorder, Metrics: collector, AuthRequired: authRequired, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/calculator", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermCalculate, h.AuthRequired))
			r.Post("/calculate", h.handleCalculate)
			r.Post("/calculate/pdf", h.handleCalculatePDF)
			r.Post("/calculate/xlsx", h.handleCalculateXLSX)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermRateTablesRead, h.AuthRequired))
			r.Get("/tax-brackets", h.handleTaxBrackets)
			r.Get("/constants", h.handleConstants)
		})
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	result, ok := h.calculate(w, r)
	if !ok {
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalculatePDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "pdf", contentTypePDF, reports.BuildPDF)
}

func (h *Handler) handleCalculateXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", contentTypeXLSX, reports.BuildXLSX)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, format, contentType string, build func(reports.Statement) ([]byte, error)) {
	result, ok := h.calculate(w, r)
	if !ok {
		return
	}
	table := h.Engine.Table()
	stmt := reports.NewStatement(result, table.Year, table.Currency, h.now())
	body, err := build(stmt)
	if err != nil {
		h.Metrics.RecordExport(format, metrics.OutcomeError)
		log.WithError(err).WithFields(logrus.Fields{"format": format, "requestId": middleware.GetRequestID(r.Context())}).Error("statement export failed")
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to render statement", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordExport(format, metrics.OutcomeSuccess)
	api.Attachment(w, contentType, stmt.FileName(format), body)
}

// calculate decodes, validates and runs one calculation. On failure it has already
// written the error response.
func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) (tax.CalculationResult, bool) {
	requestID := middleware.GetRequestID(r.Context())

	var payload calculatePayload
	if status, err := decode(r, &payload); err != nil {
		h.Metrics.RecordCalculation("", metrics.OutcomeValidation)
		if status == http.StatusRequestEntityTooLarge {
			api.Fail(w, status, "payload_too_large", "request body too large", requestID)
		} else {
			api.Fail(w, status, "invalid_json", "invalid JSON payload", requestID)
		}
		return tax.CalculationResult{}, false
	}

	v := shared.NewValidator()
	req := payload.toRequest(v)
	if v.HasIssues() {
		h.finish(r, req, tax.CalculationResult{}, metrics.OutcomeValidation, "")
		shared.FailValidation(w, requestID, v.Issues())
		return tax.CalculationResult{}, false
	}

	result, err := h.Engine.Calculate(req)
	if err != nil {
		h.fail(w, r, req, err)
		return tax.CalculationResult{}, false
	}
	h.finish(r, req, result, metrics.OutcomeSuccess, "")
	return result, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, req tax.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	entry := log.WithFields(logrus.Fields{"scenario": req.Scenario, "requestId": requestID})

	var validation *tax.ValidationError
	var rule *tax.RuleError
	switch {
	case errors.As(err, &validation):
		entry.WithField("field", validation.Field).Info("calculation rejected")
		h.finish(r, req, tax.CalculationResult{}, metrics.OutcomeValidation, "")
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: validation.Field, Reason: validation.Reason}})
	case errors.As(err, &rule):
		entry.WithField("rule", rule.Rule).Info("calculation rejected")
		h.finish(r, req, tax.CalculationResult{}, metrics.OutcomeBusinessRule, rule.Rule)
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "business_rule_violation", rule.Message, map[string]any{"rule": rule.Rule}, requestID)
	default:
		entry.WithError(err).Error("calculation failed")
		h.finish(r, req, tax.CalculationResult{}, metrics.OutcomeError, "")
		api.Fail(w, http.StatusInternalServerError, "internal_error", "calculation failed", requestID)
	}
}

// finish records the outcome in metrics and the audit log. Audit failures are logged and
// never change the response.
func (h *Handler) finish(r *http.Request, req tax.Request, result tax.CalculationResult, outcome, rule string) {
	scenario := string(req.Scenario)
	if !slices.Contains(scenarios, scenario) {
		scenario = ""
	}
	h.Metrics.RecordCalculation(scenario, outcome)

	evt := audit.Event{
		RequestID:     middleware.GetRequestID(r.Context()),
		Scenario:      scenario,
		Outcome:       outcome,
		Rule:          rule,
		RateTableYear: h.Engine.Table().Year,
		CreatedAt:     h.now(),
	}
	if client, ok := middleware.GetClient(r.Context()); ok {
		evt.ClientID = client.ClientID
	}
	if outcome == metrics.OutcomeSuccess {
		evt.GrossIncome = result.GrossIncome
		evt.NetIncome = result.NetIncome
		evt.TotalDeductions = result.Deductions.Total
		if raw, err := json.Marshal(result); err == nil {
			evt.Result = raw
		}
	}
	if err := h.Audit.Record(r.Context(), evt); err != nil {
		log.WithError(err).WithField("requestId", evt.RequestID).Warn("audit record failed")
	}
}

func (h *Handler) handleTaxBrackets(w http.ResponseWriter, r *http.Request) {
	table := h.Engine.Table()
	api.Success(w, map[string]any{
		"year":       table.Year,
		"currency":   table.Currency,
		"period":     tax.PeriodMonthly,
		"income_tax": table.IncomeTax,
	}, middleware.GetRequestID(r.Context()))
}

type constantsView struct {
	Year            int                       `json:"year"`
	Currency        string                    `json:"currency"`
	Period          tax.Period                `json:"period"`
	SocialInsurance ratetable.SocialInsurance `json:"social_insurance"`
	Pension         ratetable.Pension         `json:"pension"`
	CreditPoints    ratetable.CreditPoints    `json:"credit_points"`
	ChildCredits    ratetable.ChildCredits    `json:"child_credits"`
	VAT             ratetable.VAT             `json:"vat"`
}

func (h *Handler) handleConstants(w http.ResponseWriter, r *http.Request) {
	table := h.Engine.Table()
	api.Success(w, constantsView{
		Year:            table.Year,
		Currency:        table.Currency,
		Period:          tax.PeriodMonthly,
		SocialInsurance: table.SocialInsurance,
		Pension:         table.Pension,
		CreditPoints:    table.CreditPoints,
		ChildCredits:    table.ChildCredits,
		VAT:             table.VAT,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func decode(r *http.Request, dst any) (int, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return http.StatusBadRequest, err
	}
	return 0, nil
}
