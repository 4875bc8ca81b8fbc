package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SelectAllColumns(t *testing.T) {
	stmt := From("loan_changes").Build()

	assert.Equal(t, "SELECT * FROM loan_changes", stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestBuilder_ChangeHistoryQuery(t *testing.T) {
	stmt := From("loan_changes").
		Select("change_id", "model_path", "prior_json", "next_json").
		Where(Eq("loan_id", "L-1")).
		Where(StartsWith("model_path", "Loan.Applications")).
		OrderBy("recorded_at", Asc).
		OrderBy("change_id", Asc).
		Limit(100).
		Build()

	assert.Equal(t, "SELECT change_id, model_path, prior_json, next_json FROM loan_changes"+
		" WHERE loan_id = @p0 AND STARTS_WITH(model_path, @p1)"+
		" ORDER BY recorded_at ASC, change_id ASC LIMIT @limit", stmt.SQL)
	assert.Equal(t, map[string]any{
		"p0":    "L-1",
		"p1":    "Loan.Applications",
		"limit": int64(100),
	}, stmt.Params)
}

func TestBuilder_ParametersSkipUnboundConditions(t *testing.T) {
	stmt := From("loans").
		Where(IsNotNull("patch_json")).
		Where(Eq("loan_id", "L-1")).
		Where(In("status", []string{"open", "locked"})).
		Build()

	assert.Equal(t, "SELECT * FROM loans WHERE patch_json IS NOT NULL AND loan_id = @p0 AND status IN UNNEST(@p1)", stmt.SQL)
	assert.Equal(t, map[string]any{"p0": "L-1", "p1": []string{"open", "locked"}}, stmt.Params)
}

func TestBuilder_OrderDesc(t *testing.T) {
	stmt := From("loan_changes").Select("change_id").OrderBy("recorded_at", Desc).Build()

	assert.Equal(t, "SELECT change_id FROM loan_changes ORDER BY recorded_at DESC", stmt.SQL)
}

func TestBuilder_LimitAndOffset(t *testing.T) {
	stmt := From("loan_changes").Select("change_id").Limit(10).Offset(20).Build()

	assert.Equal(t, "SELECT change_id FROM loan_changes LIMIT @limit OFFSET @offset", stmt.SQL)
	assert.Equal(t, map[string]any{"limit": int64(10), "offset": int64(20)}, stmt.Params)
}

func TestBuilder_Count(t *testing.T) {
	b := From("loan_changes").
		Select("change_id").
		Where(Eq("loan_id", "L-1")).
		OrderBy("recorded_at", Desc).
		Limit(5)

	count := b.Count().Build()
	assert.Equal(t, "SELECT COUNT(*) FROM loan_changes WHERE loan_id = @p0", count.SQL)
	assert.Equal(t, map[string]any{"p0": "L-1"}, count.Params)

	assert.Equal(t, "SELECT change_id FROM loan_changes WHERE loan_id = @p0 ORDER BY recorded_at DESC LIMIT @limit", b.Build().SQL)
}

func TestBuilder_Immutability(t *testing.T) {
	base := From("loans").Select("loan_id")

	first := base.Where(Eq("status", "open")).Build()
	second := base.Where(Eq("ref_id", "R-9")).Build()

	assert.Equal(t, "SELECT loan_id FROM loans WHERE status = @p0", first.SQL)
	assert.Equal(t, "SELECT loan_id FROM loans WHERE ref_id = @p0", second.SQL)
	assert.Equal(t, "SELECT loan_id FROM loans", base.Build().SQL)
}

func TestConditions(t *testing.T) {
	tests := []struct {
		name   string
		cond   Condition
		sql    string
		params map[string]any
	}{
		{"eq", Eq("loan_id", "L-1"), "loan_id = @p3", map[string]any{"p3": "L-1"}},
		{"starts with", StartsWith("model_path", "Loan."), "STARTS_WITH(model_path, @p3)", map[string]any{"p3": "Loan."}},
		{"is null", IsNull("patch_json"), "patch_json IS NULL", nil},
		{"is not null", IsNotNull("patch_json"), "patch_json IS NOT NULL", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params := tt.cond.SQL(3)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestBuilder_String(t *testing.T) {
	str := From("loans").Where(Eq("loan_id", "L-1")).String()
	require.NotEmpty(t, str)
	assert.Contains(t, str, "SQL: SELECT * FROM loans")
	assert.Contains(t, str, "Params: map[p0:L-1]")
}
