package query

import (
	"testing"
	"time"
)

func u32(n uint32) *uint32 { return &n }

func TestValidatorAcceptsValidQuery(t *testing.T) {
	v := NewValidator()
	q := Query{
		Select: SelectClause{Kind: SelectFields, Fields: []string{"path", "severity"}},
		From:   FromDiagnostics,
		Limit:  u32(100),
	}
	if errs := v.Validate(&q); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidatorRejectsUnknownField(t *testing.T) {
	v := NewValidator()
	q := Query{
		Select: SelectClause{Kind: SelectFields, Fields: []string{"nonexistent_field"}},
		From:   FromDiagnostics,
	}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error for an unrecognized field")
	}
}

func TestValidatorAcceptsCustomField(t *testing.T) {
	v := NewValidator()
	v.AddValidField("custom_metric")
	q := Query{
		Select: SelectClause{Kind: SelectFields, Fields: []string{"custom_metric"}},
		From:   FromDiagnostics,
	}
	if errs := v.Validate(&q); len(errs) != 0 {
		t.Fatalf("expected no errors after registering a custom field, got %v", errs)
	}
}

func TestValidatorRejectsZeroLimit(t *testing.T) {
	v := NewValidator()
	q := Query{Select: SelectClause{Kind: SelectAll}, From: FromDiagnostics, Limit: u32(0)}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error for a zero limit")
	}
}

func TestValidatorRejectsLimitOverTenThousand(t *testing.T) {
	v := NewValidator()
	q := Query{Select: SelectClause{Kind: SelectAll}, From: FromDiagnostics, Limit: u32(10001)}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error for a limit over 10,000")
	}
}

func TestValidatorRejectsTrendsQueryWithDisallowedField(t *testing.T) {
	v := NewValidator()
	q := Query{
		Select: SelectClause{Kind: SelectFields, Fields: []string{"path"}},
		From:   FromTrends,
	}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error: trends only supports timestamp/count/category/trend")
	}
}

func TestValidatorAcceptsTrendsQueryWithAllowedFields(t *testing.T) {
	v := NewValidator()
	q := Query{
		Select: SelectClause{Kind: SelectFields, Fields: []string{"timestamp", "count", "trend"}},
		From:   FromTrends,
	}
	if errs := v.Validate(&q); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidatorRejectsFilesQueryWithDiagnosticField(t *testing.T) {
	v := NewValidator()
	q := Query{
		Select: SelectClause{Kind: SelectFields, Fields: []string{"severity"}},
		From:   FromFiles,
	}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error: files data source forbids diagnostic-specific fields")
	}
}

func TestValidatorRejectsNonNumericAggregationField(t *testing.T) {
	v := NewValidator()
	q := Query{
		Select: SelectClause{
			Kind:         SelectFields,
			Fields:       []string{"avg(path)"},
			Aggregations: []Aggregation{{Func: AggAvg, Field: "path"}},
		},
		From: FromDiagnostics,
	}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error: AVG over a non-numeric field")
	}
}

func TestValidatorAcceptsCountOnAnyField(t *testing.T) {
	v := NewValidator()
	q := Query{
		Select: SelectClause{
			Kind:         SelectFields,
			Fields:       []string{"count(path)"},
			Aggregations: []Aggregation{{Func: AggCount, Field: "path"}},
		},
		From: FromDiagnostics,
	}
	if errs := v.Validate(&q); len(errs) != 0 {
		t.Fatalf("COUNT should be valid on any field, got %v", errs)
	}
}

func TestValidatorRequiresGroupByForMultipleAggregations(t *testing.T) {
	v := NewValidator()
	q := Query{
		Select: SelectClause{
			Kind: SelectFields,
			Aggregations: []Aggregation{
				{Func: AggSum, Field: "count"},
				{Func: AggAvg, Field: "count"},
			},
		},
		From: FromDiagnostics,
	}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error: multiple aggregations require GROUP BY")
	}
}

func TestValidatorRejectsConflictingTimeRange(t *testing.T) {
	v := NewValidator()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := Query{
		Select:    SelectClause{Kind: SelectAll},
		From:      FromDiagnostics,
		TimeRange: &TimeRange{Start: &now, Relative: &RelativeTime{Unit: UnitDays, Value: 1}},
	}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error: absolute and relative time ranges conflict")
	}
}

func TestValidatorRejectsRelativeSpanOverOneYear(t *testing.T) {
	v := NewValidator()
	q := Query{
		Select:    SelectClause{Kind: SelectAll},
		From:      FromDiagnostics,
		TimeRange: &TimeRange{Relative: &RelativeTime{Unit: UnitWeeks, Value: 53}},
	}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error: relative span exceeds 8760 hours")
	}
}

func TestValidatorRejectsInvertedAbsoluteTimeRange(t *testing.T) {
	v := NewValidator()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	q := Query{
		Select:    SelectClause{Kind: SelectAll},
		From:      FromDiagnostics,
		TimeRange: &TimeRange{Start: &start, End: &end},
	}
	if errs := v.Validate(&q); len(errs) == 0 {
		t.Fatal("expected an error: start time must be before end time")
	}
}
