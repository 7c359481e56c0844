package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

// SelectKind discriminates the shape of a SelectClause, grounded on
// ast.rs's SelectClause referenced throughout grammar/rules/clause_rules.rs.
type SelectKind int

const (
	SelectAll SelectKind = iota
	SelectCount
	SelectFields
)

// AggregationFunc names an aggregation keyword.
type AggregationFunc int

const (
	AggCount AggregationFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (f AggregationFunc) String() string {
	switch f {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	default:
		return "COUNT"
	}
}

// Aggregation is one `fn(field)` call appearing in a SELECT field list.
type Aggregation struct {
	Func  AggregationFunc
	Field string // "*" permitted for COUNT
}

// Token renders the aggregation the way it appears as a synthesized field
// name, e.g. "count(*)", matching the original's `"fn(arg)"` field tokens.
func (a Aggregation) Token() string {
	return fmt.Sprintf("%s(%s)", strings.ToLower(a.Func.String()), a.Field)
}

// SelectClause is `SELECT *` | `SELECT COUNT(*)` | `SELECT f1, f2, …`. A
// field list may mix plain field names and aggregation calls; Aggregations
// holds the parsed calls found among Fields, keyed by their synthesized
// token so validators and executors can tell a plain field from a call.
type SelectClause struct {
	Kind         SelectKind
	Fields       []string
	Aggregations []Aggregation
}

// FromSource names the fixed table set a query can read from.
type FromSource string

const (
	FromDiagnostics FromSource = "diagnostics"
	FromFiles       FromSource = "files"
	FromSymbols     FromSource = "symbols"
	FromReferences  FromSource = "references"
	FromProjects    FromSource = "projects"
	FromHistory     FromSource = "history"
	FromTrends      FromSource = "trends"
)

// FilterKind discriminates a QueryFilter's shape.
type FilterKind int

const (
	FilterSeverity FilterKind = iota
	FilterFile
	FilterSymbol
	FilterCustom
)

// QueryFilter is one WHERE-clause predicate. TimeRange predicates
// (since/before/after/LAST) are hoisted onto Query.TimeRange instead of
// appearing here, matching parse_where_clause's split of filters from the
// time range it also discovers while scanning.
type QueryFilter struct {
	Kind     FilterKind
	Severity diagnostic.Severity // valid when Kind == FilterSeverity
	Pattern  string              // valid when Kind == FilterFile or FilterSymbol
	Field    string              // valid when Kind == FilterCustom
	Value    string              // valid when Kind == FilterCustom
}

// RelativeUnit is the unit of a RelativeTime span.
type RelativeUnit int

const (
	UnitHours RelativeUnit = iota
	UnitDays
	UnitWeeks
)

// RelativeTime is a `LAST n (hours|days|weeks)` span.
type RelativeTime struct {
	Unit  RelativeUnit
	Value uint32
}

// Hours returns the span's length expressed in hours.
func (r RelativeTime) Hours() uint64 {
	switch r.Unit {
	case UnitDays:
		return uint64(r.Value) * 24
	case UnitWeeks:
		return uint64(r.Value) * 24 * 7
	default:
		return uint64(r.Value)
	}
}

// TimeRange is either an absolute [Start,End) edge pair or a relative
// span. The struct can hold both; Validator rejects a TimeRange with both
// Start and Relative set, matching the original's ConflictingTimeRange
// validation rule.
type TimeRange struct {
	Start    *time.Time
	End      *time.Time
	Relative *RelativeTime
}

// Since builds a TimeRange with only a lower (inclusive) bound.
func Since(t time.Time) TimeRange { return TimeRange{Start: &t} }

// Before builds a TimeRange with only an upper bound.
func Before(t time.Time) TimeRange { return TimeRange{End: &t} }

// After is an alias for Since, matching the original's distinct
// `after`/`since` filter keywords that both produce a lower bound.
func After(t time.Time) TimeRange { return TimeRange{Start: &t} }

// Relative builds a TimeRange from a relative span.
func Relative(r RelativeTime) TimeRange { return TimeRange{Relative: &r} }

// GroupByClause names the fields a result set is grouped by.
type GroupByClause struct {
	Fields []string
}

// OrderDirection is the sort direction of an ORDER BY clause.
type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

// OrderByClause sorts by a single field or aggregation token.
type OrderByClause struct {
	Field     string
	Direction OrderDirection
}

// Query is the complete parsed statement: `select from (where)? (group
// by)? (order by)? (limit)?`.
type Query struct {
	Select    SelectClause
	From      FromSource
	Filters   []QueryFilter
	TimeRange *TimeRange
	GroupBy   *GroupByClause
	OrderBy   *OrderByClause
	Limit     *uint32
}
