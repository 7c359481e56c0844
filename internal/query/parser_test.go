package query

import (
	"testing"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

func TestParseSimpleSelectAll(t *testing.T) {
	q, err := Parse("SELECT * FROM diagnostics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Select.Kind != SelectAll {
		t.Fatalf("expected SelectAll, got %v", q.Select.Kind)
	}
	if q.From != FromDiagnostics {
		t.Fatalf("expected FromDiagnostics, got %v", q.From)
	}
}

func TestParseSelectCount(t *testing.T) {
	q, err := Parse("SELECT COUNT(*) FROM files")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Select.Kind != SelectCount {
		t.Fatalf("expected SelectCount, got %v", q.Select.Kind)
	}
	if q.From != FromFiles {
		t.Fatalf("expected FromFiles, got %v", q.From)
	}
}

func TestParseFieldList(t *testing.T) {
	q, err := Parse("SELECT path, severity, line FROM diagnostics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Select.Kind != SelectFields {
		t.Fatalf("expected SelectFields, got %v", q.Select.Kind)
	}
	want := []string{"path", "severity", "line"}
	if len(q.Select.Fields) != len(want) {
		t.Fatalf("field count mismatch: got %v", q.Select.Fields)
	}
	for i, f := range want {
		if q.Select.Fields[i] != f {
			t.Fatalf("field %d mismatch: got %q want %q", i, q.Select.Fields[i], f)
		}
	}
}

func TestParseSeverityFilter(t *testing.T) {
	q, err := Parse(`SELECT * FROM diagnostics WHERE severity = "error"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(q.Filters))
	}
	f := q.Filters[0]
	if f.Kind != FilterSeverity || f.Severity != diagnostic.Error {
		t.Fatalf("expected error severity filter, got %+v", f)
	}
}

func TestParseFileFilterWithLike(t *testing.T) {
	q, err := Parse(`SELECT * FROM diagnostics WHERE file LIKE "%.go"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Filters) != 1 || q.Filters[0].Kind != FilterFile || q.Filters[0].Pattern != "%.go" {
		t.Fatalf("unexpected filters: %+v", q.Filters)
	}
}

func TestParseAggregationWithGroupBy(t *testing.T) {
	q, err := Parse("SELECT category, COUNT(*) FROM diagnostics GROUP BY category")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Select.Aggregations) != 1 {
		t.Fatalf("expected 1 aggregation, got %+v", q.Select.Aggregations)
	}
	if q.Select.Aggregations[0].Func != AggCount {
		t.Fatalf("expected COUNT, got %v", q.Select.Aggregations[0].Func)
	}
	if q.GroupBy == nil || len(q.GroupBy.Fields) != 1 || q.GroupBy.Fields[0] != "category" {
		t.Fatalf("unexpected group by: %+v", q.GroupBy)
	}
}

func TestParseRelativeTimeRange(t *testing.T) {
	q, err := Parse("SELECT * FROM history WHERE LAST 7 days")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TimeRange == nil || q.TimeRange.Relative == nil {
		t.Fatalf("expected a relative time range, got %+v", q.TimeRange)
	}
	if q.TimeRange.Relative.Unit != UnitDays || q.TimeRange.Relative.Value != 7 {
		t.Fatalf("unexpected relative time: %+v", q.TimeRange.Relative)
	}
	if got := q.TimeRange.Relative.Hours(); got != 168 {
		t.Fatalf("expected 168 hours, got %d", got)
	}
}

func TestParseSinceFilterHoistsIntoTimeRange(t *testing.T) {
	q, err := Parse(`SELECT * FROM diagnostics WHERE since = "2026-01-01"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Filters) != 0 {
		t.Fatalf("since should not appear as a plain filter, got %+v", q.Filters)
	}
	if q.TimeRange == nil || q.TimeRange.Start == nil {
		t.Fatalf("expected a since-bounded time range, got %+v", q.TimeRange)
	}
}

func TestParseComplexMultiClauseQuery(t *testing.T) {
	src := `SELECT path, severity FROM diagnostics WHERE severity = "error" AND file LIKE "%.rs" ` +
		`ORDER BY path DESC LIMIT 50`
	q, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %+v", q.Filters)
	}
	if q.OrderBy == nil || q.OrderBy.Field != "path" || q.OrderBy.Direction != Desc {
		t.Fatalf("unexpected order by: %+v", q.OrderBy)
	}
	if q.Limit == nil || *q.Limit != 50 {
		t.Fatalf("unexpected limit: %+v", q.Limit)
	}
}

func TestParseCustomFieldFilter(t *testing.T) {
	q, err := Parse(`SELECT * FROM diagnostics WHERE category = "lint"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Filters) != 1 || q.Filters[0].Kind != FilterCustom ||
		q.Filters[0].Field != "category" || q.Filters[0].Value != "lint" {
		t.Fatalf("unexpected filter: %+v", q.Filters)
	}
}

func TestParseRejectsUnknownTable(t *testing.T) {
	_, err := Parse("SELECT * FROM nonsense")
	if err == nil {
		t.Fatal("expected an error for an unrecognized table name")
	}
}

func TestParseRejectsMissingComparisonOperator(t *testing.T) {
	_, err := Parse(`SELECT * FROM diagnostics WHERE severity "error"`)
	if err == nil {
		t.Fatal("expected an error for a missing comparison operator")
	}
}
