package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
	"github.com/lspbridge/lspbridge/internal/lsperrors"
)

// dateTimeFormats is tried in order when parsing a since/before/after
// value, grounded on filter_rules.rs's parse_datetime.
var dateTimeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
	time.RFC3339,
}

// Parser is a recursive-descent parser over a token stream, following
// `query = select from (where)? (group by)? (order by)? (limit)?`, grounded
// on grammar/parser.rs and grammar/rules/*.rs.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser constructs a Parser over a pre-lexed token stream.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes and parses a query string in one step.
func Parse(input string) (Query, error) {
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return Query{}, err
	}
	return NewParser(tokens).ParseQuery()
}

// ParseQuery drives the full grammar.
func (p *Parser) ParseQuery() (Query, error) {
	sel, err := p.parseSelectClause()
	if err != nil {
		return Query{}, err
	}
	from, err := p.parseFromClause()
	if err != nil {
		return Query{}, err
	}

	q := Query{Select: sel, From: from}

	if p.check(TokWhere) {
		p.advance()
		filters, tr, err := p.parseWhereClause()
		if err != nil {
			return Query{}, err
		}
		q.Filters = filters
		q.TimeRange = tr
	}

	if p.check(TokGroup) {
		p.advance()
		gb, err := p.parseGroupByClause()
		if err != nil {
			return Query{}, err
		}
		q.GroupBy = &gb
	}

	if p.check(TokOrder) {
		p.advance()
		ob, err := p.parseOrderByClause()
		if err != nil {
			return Query{}, err
		}
		q.OrderBy = &ob
	}

	if p.check(TokLimit) {
		p.advance()
		n, err := p.parseLimitClause()
		if err != nil {
			return Query{}, err
		}
		q.Limit = &n
	}

	return q, nil
}

// parseSelectClause: SELECT (* | COUNT(*) | field_list)
func (p *Parser) parseSelectClause() (SelectClause, error) {
	if err := p.consume(TokSelect, "SELECT"); err != nil {
		return SelectClause{}, err
	}

	if p.match(TokAsterisk) {
		return SelectClause{Kind: SelectAll}, nil
	}

	if p.check(TokCount) {
		save := p.pos
		p.advance()
		if p.check(TokLeftParen) {
			p.advance()
			if err := p.consume(TokAsterisk, "*"); err != nil {
				return SelectClause{}, err
			}
			if err := p.consume(TokRightParen, ")"); err != nil {
				return SelectClause{}, err
			}
			return SelectClause{Kind: SelectCount}, nil
		}
		p.pos = save
	}

	if p.checkFieldListStart() {
		fields, aggs, err := p.parseFieldList()
		if err != nil {
			return SelectClause{}, err
		}
		return SelectClause{Kind: SelectFields, Fields: fields, Aggregations: aggs}, nil
	}

	return SelectClause{}, p.unexpected("*, COUNT(*), or field list")
}

func (p *Parser) checkFieldListStart() bool {
	return p.check(TokIdentifier) || p.check(TokCount) || p.check(TokSum) ||
		p.check(TokAvg) || p.check(TokMin) || p.check(TokMax) ||
		p.check(TokErrors) || p.check(TokWarnings) || p.check(TokFiles) ||
		p.check(TokDiagnostics) || p.check(TokHistory) || p.check(TokTrends)
}

// parseFieldList parses a comma-separated list of plain fields and
// aggregation calls (`fn(field|*)`), producing field tokens "fn(arg)" for
// the latter, per spec §4.8.
func (p *Parser) parseFieldList() ([]string, []Aggregation, error) {
	var fields []string
	var aggs []Aggregation

	for {
		if fn, ok := p.aggregationFuncAhead(); ok {
			p.advance()
			if err := p.consume(TokLeftParen, "("); err != nil {
				return nil, nil, err
			}
			var arg string
			if p.match(TokAsterisk) {
				arg = "*"
			} else if p.check(TokIdentifier) {
				arg = p.advance().Lexeme
			} else {
				return nil, nil, p.unexpected("field name or *")
			}
			if err := p.consume(TokRightParen, ")"); err != nil {
				return nil, nil, err
			}
			agg := Aggregation{Func: fn, Field: arg}
			aggs = append(aggs, agg)
			fields = append(fields, agg.Token())
		} else if p.checkFieldListStart() {
			fields = append(fields, p.advance().Lexeme)
		} else {
			return nil, nil, p.unexpected("field name")
		}

		if p.match(TokComma) {
			continue
		}
		break
	}

	return fields, aggs, nil
}

func (p *Parser) aggregationFuncAhead() (AggregationFunc, bool) {
	switch p.peek().Kind {
	case TokSum:
		return AggSum, true
	case TokAvg:
		return AggAvg, true
	case TokMin:
		return AggMin, true
	case TokMax:
		return AggMax, true
	case TokCount:
		return AggCount, true
	default:
		return 0, false
	}
}

// parseFromClause: FROM table_name
func (p *Parser) parseFromClause() (FromSource, error) {
	if err := p.consume(TokFrom, "FROM"); err != nil {
		return "", err
	}

	switch p.peek().Kind {
	case TokDiagnostics:
		p.advance()
		return FromDiagnostics, nil
	case TokFiles:
		p.advance()
		return FromFiles, nil
	case TokHistory:
		p.advance()
		return FromHistory, nil
	case TokTrends:
		p.advance()
		return FromTrends, nil
	case TokIdentifier:
		tok := p.advance()
		switch strings.ToLower(tok.Lexeme) {
		case "diagnostics":
			return FromDiagnostics, nil
		case "files":
			return FromFiles, nil
		case "symbols":
			return FromSymbols, nil
		case "references":
			return FromReferences, nil
		case "projects":
			return FromProjects, nil
		case "history":
			return FromHistory, nil
		case "trends":
			return FromTrends, nil
		default:
			return "", lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar, "query.parse_from",
				tok.Lexeme, nil)
		}
	default:
		return "", p.unexpected("table name")
	}
}

// parseWhereClause: filter_expression ((AND|OR) filter_expression)*
func (p *Parser) parseWhereClause() ([]QueryFilter, *TimeRange, error) {
	var filters []QueryFilter
	var tr *TimeRange

	for {
		if p.check(TokLast) {
			rel, err := p.parseRelativeTimeFilter()
			if err != nil {
				return nil, nil, err
			}
			tr = rel
		} else if p.check(TokIdentifier) {
			field := p.advance().Lexeme
			filter, rel, err := p.parseFieldFilter(field)
			if err != nil {
				return nil, nil, err
			}
			if rel != nil {
				tr = rel
			} else {
				filters = append(filters, filter)
			}
		} else {
			return nil, nil, p.unexpected("filter expression")
		}

		if p.match(TokAnd) || p.match(TokOr) {
			continue
		}
		break
	}

	return filters, tr, nil
}

func (p *Parser) parseFieldFilter(field string) (QueryFilter, *TimeRange, error) {
	switch strings.ToLower(field) {
	case "severity":
		f, err := p.parseSeverityFilter()
		return f, nil, err
	case "file":
		f, err := p.parseFileFilter()
		return f, nil, err
	case "symbol":
		f, err := p.parseSymbolFilter()
		return f, nil, err
	case "since", "before", "after":
		tr, err := p.parseTimeFilter(strings.ToLower(field))
		return QueryFilter{}, tr, err
	default:
		f, err := p.parseCustomFilter(field)
		return f, nil, err
	}
}

func (p *Parser) parseSeverityFilter() (QueryFilter, error) {
	if err := p.parseComparisonOperator(); err != nil {
		return QueryFilter{}, err
	}
	value, err := p.parseStringOrIdentifier()
	if err != nil {
		return QueryFilter{}, err
	}
	sev, ok := diagnostic.ParseSeverity(value)
	if !ok {
		return QueryFilter{}, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar,
			"query.parse_severity_filter", value, nil)
	}
	return QueryFilter{Kind: FilterSeverity, Severity: sev}, nil
}

func (p *Parser) parseFileFilter() (QueryFilter, error) {
	if err := p.parseComparisonOperator(); err != nil {
		return QueryFilter{}, err
	}
	pattern, err := p.parseStringOrIdentifier()
	if err != nil {
		return QueryFilter{}, err
	}
	if pattern == "" {
		return QueryFilter{}, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar,
			"query.parse_file_filter", "empty pattern", nil)
	}
	return QueryFilter{Kind: FilterFile, Pattern: pattern}, nil
}

func (p *Parser) parseSymbolFilter() (QueryFilter, error) {
	if err := p.parseComparisonOperator(); err != nil {
		return QueryFilter{}, err
	}
	pattern, err := p.parseStringOrIdentifier()
	if err != nil {
		return QueryFilter{}, err
	}
	if pattern == "" {
		return QueryFilter{}, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar,
			"query.parse_symbol_filter", "empty pattern", nil)
	}
	return QueryFilter{Kind: FilterSymbol, Pattern: pattern}, nil
}

func (p *Parser) parseTimeFilter(field string) (*TimeRange, error) {
	if err := p.parseComparisonOperator(); err != nil {
		return nil, err
	}
	value, err := p.parseStringOrIdentifier()
	if err != nil {
		return nil, err
	}
	dt, err := parseDateTime(value)
	if err != nil {
		return nil, err
	}

	var tr TimeRange
	switch field {
	case "since", "after":
		tr = Since(dt)
	case "before":
		tr = Before(dt)
	}
	return &tr, nil
}

func (p *Parser) parseRelativeTimeFilter() (*TimeRange, error) {
	if err := p.consume(TokLast, "LAST"); err != nil {
		return nil, err
	}
	numTok, err := p.consumeKind(TokNumber, "number after LAST")
	if err != nil {
		return nil, err
	}
	value, err := strconv.ParseFloat(numTok.Lexeme, 64)
	if err != nil {
		return nil, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar,
			"query.parse_relative_time", numTok.Lexeme, err)
	}
	n := uint32(value)
	if n == 0 {
		return nil, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar,
			"query.parse_relative_time", "value must be greater than 0", nil)
	}

	var unit RelativeUnit
	switch p.peek().Kind {
	case TokHours:
		p.advance()
		unit = UnitHours
	case TokDays:
		p.advance()
		unit = UnitDays
	case TokWeeks:
		p.advance()
		unit = UnitWeeks
	default:
		return nil, p.unexpected("time unit (hours, days, weeks)")
	}

	tr := Relative(RelativeTime{Unit: unit, Value: n})
	return &tr, nil
}

func (p *Parser) parseCustomFilter(field string) (QueryFilter, error) {
	if err := p.parseComparisonOperator(); err != nil {
		return QueryFilter{}, err
	}
	value, err := p.parseStringOrIdentifier()
	if err != nil {
		return QueryFilter{}, err
	}
	return QueryFilter{Kind: FilterCustom, Field: field, Value: value}, nil
}

func (p *Parser) parseComparisonOperator() error {
	for _, k := range []TokenKind{TokEqual, TokNotEqual, TokLike, TokGreater, TokLess, TokGreaterEqual, TokLessEqual} {
		if p.match(k) {
			return nil
		}
	}
	return p.unexpected("comparison operator (=, !=, LIKE, >, <, >=, <=)")
}

func (p *Parser) parseStringOrIdentifier() (string, error) {
	if p.check(TokString) {
		return p.advance().Lexeme, nil
	}
	if p.check(TokIdentifier) {
		return p.advance().Lexeme, nil
	}
	return "", p.unexpected("string or identifier")
}

func parseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar,
		"query.parse_datetime", value, nil)
}

// parseGroupByClause: GROUP (already consumed by caller check) BY field_list
func (p *Parser) parseGroupByClause() (GroupByClause, error) {
	if err := p.consume(TokBy, "BY"); err != nil {
		return GroupByClause{}, err
	}
	fields, _, err := p.parseFieldList()
	if err != nil {
		return GroupByClause{}, err
	}
	if len(fields) == 0 {
		return GroupByClause{}, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar,
			"query.parse_group_by", "empty GROUP BY", nil)
	}
	return GroupByClause{Fields: fields}, nil
}

// parseOrderByClause: ORDER (already consumed by caller check) BY field (ASC|DESC)?
func (p *Parser) parseOrderByClause() (OrderByClause, error) {
	if err := p.consume(TokBy, "BY"); err != nil {
		return OrderByClause{}, err
	}

	if fn, ok := p.aggregationFuncAhead(); ok {
		p.advance()
		if err := p.consume(TokLeftParen, "("); err != nil {
			return OrderByClause{}, err
		}
		var arg string
		if p.match(TokAsterisk) {
			arg = "*"
		} else if p.check(TokIdentifier) {
			arg = p.advance().Lexeme
		} else {
			return OrderByClause{}, p.unexpected("field name or *")
		}
		if err := p.consume(TokRightParen, ")"); err != nil {
			return OrderByClause{}, err
		}
		field := Aggregation{Func: fn, Field: arg}.Token()
		return p.finishOrderBy(field)
	}

	if !p.checkFieldListStart() {
		return OrderByClause{}, p.unexpected("field name")
	}
	field := p.advance().Lexeme
	return p.finishOrderBy(field)
}

func (p *Parser) finishOrderBy(field string) (OrderByClause, error) {
	if field == "" {
		return OrderByClause{}, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar,
			"query.parse_order_by", "empty ORDER BY field", nil)
	}
	dir := Asc
	if p.match(TokDesc) {
		dir = Desc
	} else {
		p.match(TokAsc)
	}
	return OrderByClause{Field: field, Direction: dir}, nil
}

// parseLimitClause: LIMIT (already consumed by caller check) number
func (p *Parser) parseLimitClause() (uint32, error) {
	tok, err := p.consumeKind(TokNumber, "number after LIMIT")
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return 0, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar,
			"query.parse_limit", tok.Lexeme, err)
	}
	return uint32(value), nil
}

// --- token stream primitives ---

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(k TokenKind) bool { return p.peek().Kind == k }

func (p *Parser) match(k TokenKind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(k TokenKind, expected string) error {
	if p.check(k) {
		p.advance()
		return nil
	}
	return p.unexpected(expected)
}

func (p *Parser) consumeKind(k TokenKind, expected string) (Token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	return Token{}, p.unexpected(expected)
}

func (p *Parser) unexpected(expected string) error {
	tok := p.peek()
	return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar, "query.parse",
		"expected "+expected+", found '"+tok.Lexeme+"' at "+
			strconv.Itoa(tok.Line)+":"+strconv.Itoa(tok.Column), nil)
}
