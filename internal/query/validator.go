package query

import (
	"github.com/lspbridge/lspbridge/internal/lsperrors"
)

// defaultValidFields is the fixed schema a query's SELECT/GROUP BY/ORDER BY
// fields are checked against, grounded on errors.rs's QueryValidator::new.
var defaultValidFields = map[string]struct{}{
	"path":       {},
	"severity":   {},
	"message":    {},
	"category":   {},
	"line":       {},
	"column":     {},
	"source":     {},
	"timestamp":  {},
	"file_count": {},
	"files":      {},

	"file_path": {},
	"file_size": {},
	"file_type": {},
	"language":  {},

	"time":       {},
	"created_at": {},
	"updated_at": {},
}

// numericFields names the fields SUM/AVG/MIN/MAX may aggregate over.
var numericFields = map[string]struct{}{
	"line":       {},
	"column":     {},
	"file_size":  {},
	"file_count": {},
	"count":      {},
	"duration":   {},
	"size":       {},
}

// Validator performs semantic analysis over a parsed Query, grounded on
// errors.rs's QueryValidator.
type Validator struct {
	validFields map[string]struct{}
}

// NewValidator constructs a Validator with the default field schema.
func NewValidator() *Validator {
	fields := make(map[string]struct{}, len(defaultValidFields))
	for f := range defaultValidFields {
		fields[f] = struct{}{}
	}
	return &Validator{validFields: fields}
}

// AddValidField extends the schema with a custom field name.
func (v *Validator) AddValidField(field string) {
	v.validFields[field] = struct{}{}
}

// ValidFields returns the current set of recognized field names.
func (v *Validator) ValidFields() []string {
	out := make([]string, 0, len(v.validFields))
	for f := range v.validFields {
		out = append(out, f)
	}
	return out
}

// Validate runs every semantic rule against query rather than stopping at
// the first failing rule. Field-name checking reports every unknown field;
// each other rule reports only its first violation.
func (v *Validator) Validate(query *Query) []error {
	var errs []error

	if err := v.validateDataSourceCompatibility(query); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, v.validateFieldNames(query)...)
	if err := v.validateAggregations(query); err != nil {
		errs = append(errs, err)
	}
	if err := v.validateTimeRanges(query); err != nil {
		errs = append(errs, err)
	}
	if err := v.validateLimits(query); err != nil {
		errs = append(errs, err)
	}
	if err := v.validateClauseCompatibility(query); err != nil {
		errs = append(errs, err)
	}

	return errs
}

// validateClauseCompatibility checks structural constraints between
// clauses, grounded on query_rules.rs's validate_clause_compatibility.
func (v *Validator) validateClauseCompatibility(query *Query) error {
	if query.GroupBy != nil && query.Select.Kind == SelectAll {
		return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
			"query.validate_clause_compatibility", "cannot use SELECT * with GROUP BY", nil)
	}

	if query.OrderBy != nil && query.Select.Kind == SelectFields {
		found := false
		for _, f := range query.Select.Fields {
			if f == query.OrderBy.Field {
				found = true
				break
			}
		}
		if !found {
			return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
				"query.validate_clause_compatibility", "ORDER BY field not present in SELECT fields: "+
					query.OrderBy.Field, nil)
		}
	}

	return nil
}

func (v *Validator) validateDataSourceCompatibility(query *Query) error {
	if query.Select.Kind != SelectFields {
		return nil
	}

	switch query.From {
	case FromTrends:
		for _, field := range query.Select.Fields {
			switch field {
			case "timestamp", "count", "category", "trend":
				continue
			default:
				return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
					"query.validate_data_source", "trends data source only supports "+
						"timestamp, count, category, and trend fields: "+field, nil)
			}
		}
	case FromFiles:
		for _, field := range query.Select.Fields {
			if hasPrefix(field, "message") || hasPrefix(field, "severity") {
				return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
					"query.validate_data_source", "files data source does not support "+
						"diagnostic-specific field: "+field, nil)
			}
		}
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func (v *Validator) validateFieldNames(query *Query) []error {
	var errs []error

	check := func(field string) {
		if field == "" {
			return
		}
		if query.From == FromTrends {
			switch field {
			case "timestamp", "count", "category", "trend":
				return
			}
		}
		if _, ok := v.validFields[field]; !ok {
			errs = append(errs, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
				"query.validate_field_names", "unknown field: "+field, nil))
		}
	}

	if query.Select.Kind == SelectFields {
		for _, field := range query.Select.Fields {
			// Synthesized aggregation tokens like "count(*)" are never part
			// of the plain-field schema; only validate plain identifiers.
			if !isAggregationToken(query.Select.Aggregations, field) {
				check(field)
			}
		}
	}

	if query.GroupBy != nil {
		for _, field := range query.GroupBy.Fields {
			if !isAggregationToken(query.Select.Aggregations, field) {
				check(field)
			}
		}
	}

	if query.OrderBy != nil && !isAggregationToken(query.Select.Aggregations, query.OrderBy.Field) {
		check(query.OrderBy.Field)
	}

	return errs
}

func isAggregationToken(aggs []Aggregation, field string) bool {
	for _, a := range aggs {
		if a.Token() == field {
			return true
		}
	}
	return false
}

func (v *Validator) validateAggregations(query *Query) error {
	if query.Select.Kind != SelectFields || len(query.Select.Aggregations) == 0 {
		return nil
	}

	for _, agg := range query.Select.Aggregations {
		switch agg.Func {
		case AggSum, AggAvg, AggMin, AggMax:
			if agg.Field != "*" {
				if _, ok := numericFields[agg.Field]; !ok {
					return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
						"query.validate_aggregations", "aggregation function can only be "+
							"applied to numeric fields: "+agg.Token(), nil)
				}
			}
		case AggCount:
			// COUNT is valid on any field.
		}
	}

	if len(query.Select.Aggregations) > 1 && query.GroupBy == nil {
		return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
			"query.validate_aggregations", "multiple aggregations require a GROUP BY clause", nil)
	}

	return nil
}

func (v *Validator) validateTimeRanges(query *Query) error {
	tr := query.TimeRange
	if tr == nil {
		return nil
	}

	if tr.Start != nil && tr.Relative != nil {
		return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
			"query.validate_time_ranges", "cannot specify both absolute and relative time ranges", nil)
	}

	if tr.Relative != nil {
		hours := tr.Relative.Hours()
		if hours == 0 {
			return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
				"query.validate_time_ranges", "time range cannot be zero", nil)
		}
		if hours > 8760 {
			return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
				"query.validate_time_ranges", "time range cannot exceed 1 year (8760 hours)", nil)
		}
	}

	if tr.Start != nil && tr.End != nil {
		if !tr.Start.Before(*tr.End) {
			return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
				"query.validate_time_ranges", "start time must be before end time", nil)
		}
	}

	return nil
}

func (v *Validator) validateLimits(query *Query) error {
	if query.Limit == nil {
		return nil
	}
	limit := *query.Limit
	if limit == 0 {
		return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
			"query.validate_limits", "LIMIT cannot be zero", nil)
	}
	if limit > 10000 {
		return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonValidation,
			"query.validate_limits", "LIMIT cannot exceed 10,000 for performance reasons", nil)
	}
	return nil
}
