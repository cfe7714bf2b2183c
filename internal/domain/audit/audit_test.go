package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildBaseQuery(t *testing.T) {
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    Filter
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "no filter",
			wantQuery: "SELECT COUNT(1) FROM calculation_audit WHERE 1=1",
		},
		{
			name:      "scenario",
			filter:    Filter{Scenario: "combined"},
			wantQuery: "SELECT COUNT(1) FROM calculation_audit WHERE 1=1 AND scenario = $1",
			wantArgs:  []any{"combined"},
		},
		{
			name:      "scenario and outcome",
			filter:    Filter{Scenario: "employee", Outcome: "success"},
			wantQuery: "SELECT COUNT(1) FROM calculation_audit WHERE 1=1 AND scenario = $1 AND outcome = $2",
			wantArgs:  []any{"employee", "success"},
		},
		{
			name:      "outcome only",
			filter:    Filter{Outcome: "business_rule_violation"},
			wantQuery: "SELECT COUNT(1) FROM calculation_audit WHERE 1=1 AND outcome = $1",
			wantArgs:  []any{"business_rule_violation"},
		},
		{
			name:      "date range",
			filter:    Filter{Outcome: "success", From: day, To: day.AddDate(0, 0, 1)},
			wantQuery: "SELECT COUNT(1) FROM calculation_audit WHERE 1=1 AND outcome = $1 AND created_at >= $2 AND created_at < $3",
			wantArgs:  []any{"success", day, day.AddDate(0, 0, 1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildBaseQuery("SELECT COUNT(1)", tt.filter)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "12905.37", money(12905.37))
	assert.Equal(t, "0.00", money(0))
	assert.Equal(t, "18000.00", money(18000))
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	assert.NoError(t, r.Record(context.Background(), Event{Scenario: "employee"}))
}
