package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestValidatorNumericChecks(t *testing.T) {
	v := NewValidator()
	v.Range("pension_rate", floatPtr(6), 0, 100)
	v.Range("expense_rate", floatPtr(100.5), 0, 100)
	v.Range("fraction", nil, 0, 1)
	v.IntRange("age", intPtr(17), 18, 120)
	v.IntRange("children", intPtr(3), 0, 20)
	v.NonNegative("revenue", floatPtr(-0.01))
	v.NonNegative("spouse_income", floatPtr(0))

	assert.Equal(t, []ValidationIssue{
		{Field: "age", Reason: "must be between 18 and 120"},
		{Field: "expense_rate", Reason: "must be between 0 and 100"},
		{Field: "revenue", Reason: "must not be negative"},
	}, v.Issues())
}

func TestValidatorEnumIgnoresCaseAndEmpty(t *testing.T) {
	v := NewValidator()
	allowed := []string{"joint_filing", "separate_filing"}
	v.Enum("filing_mode", " Joint_Filing ", allowed, "bad")
	v.Enum("filing_mode", "", allowed, "bad")
	assert.False(t, v.HasIssues())

	v.Enum("filing_mode", "shared", allowed, "bad")
	assert.True(t, v.HasIssues())
}

func TestValidatorDates(t *testing.T) {
	v := NewValidator()
	from, ok := v.Date("from", "2025-03-10")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), from)

	to, ok := v.Date("to", "2025-03-01T00:00:00Z")
	require.True(t, ok)
	v.DateOrder("from", from, "to", to)

	_, ok = v.Date("other", "10/03/2025")
	assert.False(t, ok)
	assert.Len(t, v.Issues(), 3)
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.False(t, NewValidator().Reject(rec, "req-1"))

	v := NewValidator()
	v.Add("age", "is required")
	assert.True(t, v.Reject(rec, "req-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"validation_error"`)
	assert.Contains(t, rec.Body.String(), `"field":"age"`)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{query: "", wantLimit: 100},
		{query: "limit=20&offset=40", wantLimit: 20, wantOffset: 40},
		{query: "limit=9999", wantLimit: 500},
		{query: "limit=-1&offset=-5", wantLimit: 100},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
			page := ParsePagination(r, 100, 500)
			assert.Equal(t, tc.wantLimit, page.Limit)
			assert.Equal(t, tc.wantOffset, page.Offset)
		})
	}
}
