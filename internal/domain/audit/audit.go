package audit

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Event is one calculation attempt. Result is the serialized CalculationResult for
// successful calculations and empty otherwise.
type Event struct {
	ID              string          `json:"id"`
	RequestID       string          `json:"requestId"`
	ClientID        string          `json:"clientId"`
	Scenario        string          `json:"scenario"`
	Outcome         string          `json:"outcome"`
	Rule            string          `json:"rule,omitempty"`
	RateTableYear   int             `json:"rateTableYear"`
	GrossIncome     float64         `json:"grossIncome"`
	NetIncome       float64         `json:"netIncome"`
	TotalDeductions float64         `json:"totalDeductions"`
	Result          json.RawMessage `json:"result,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Filter narrows audit queries. Zero values match everything; To is exclusive.
type Filter struct {
	Scenario string
	Outcome  string
	From     time.Time
	To       time.Time
}

// Recorder is what handlers depend on; Service writes to postgres and Nop discards.
type Recorder interface {
	Record(ctx context.Context, evt Event) error
}

type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, evt Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	var result []byte
	if len(evt.Result) > 0 {
		result = evt.Result
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO calculation_audit (id, request_id, client_id, scenario, outcome, rule, rate_table_year, gross_income, net_income, total_deductions, result_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
  `, evt.ID, evt.RequestID, evt.ClientID, evt.Scenario, evt.Outcome, evt.Rule, evt.RateTableYear,
		money(evt.GrossIncome), money(evt.NetIncome), money(evt.TotalDeductions), result)
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// List returns events newest first. Result payloads are only loaded when includeResult is set.
func (s *Service) List(ctx context.Context, filter Filter, includeResult bool, limit, offset int) ([]Event, error) {
	selectCols := "id::text, request_id, client_id, scenario, outcome, rule, rate_table_year, COALESCE(gross_income, 0)::float8, COALESCE(net_income, 0)::float8, COALESCE(total_deductions, 0)::float8, created_at"
	if includeResult {
		selectCols += ", result_json"
	}
	query, args := buildBaseQuery("SELECT "+selectCols, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		dest := []any{&evt.ID, &evt.RequestID, &evt.ClientID, &evt.Scenario, &evt.Outcome, &evt.Rule, &evt.RateTableYear,
			&evt.GrossIncome, &evt.NetIncome, &evt.TotalDeductions, &evt.CreatedAt}
		var result []byte
		if includeResult {
			dest = append(dest, &result)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		evt.Result = result
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM calculation_audit WHERE 1=1"
	var args []any
	if filter.Scenario != "" {
		args = append(args, filter.Scenario)
		query += fmt.Sprintf(" AND scenario = $%d", len(args))
	}
	if filter.Outcome != "" {
		args = append(args, filter.Outcome)
		query += fmt.Sprintf(" AND outcome = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	return query, args
}

// money renders an amount as a fixed two-decimal string for a NUMERIC column.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
