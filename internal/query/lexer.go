// Package query implements the SQL-like diagnostic query language: a
// lexer, recursive-descent parser, semantic validator, and a pure-advice
// optimizer, grounded on
// original_source/src/query/parser/{lexer,mod,errors}.rs and
// grammar/{parser,types,utilities,rules/*}.rs.
package query

import (
	"strings"

	"github.com/lspbridge/lspbridge/internal/lsperrors"
)

// TokenKind enumerates every lexical category the query language emits.
type TokenKind int

const (
	TokSelect TokenKind = iota
	TokFrom
	TokWhere
	TokAnd
	TokOr
	TokGroup
	TokBy
	TokOrder
	TokLimit

	TokCount
	TokSum
	TokAvg
	TokMin
	TokMax

	TokEqual
	TokNotEqual
	TokGreater
	TokGreaterEqual
	TokLess
	TokLessEqual
	TokIn
	TokLike

	TokLast
	TokDays
	TokHours
	TokWeeks

	TokErrors
	TokWarnings
	TokFiles
	TokDiagnostics
	TokHistory
	TokTrends

	TokAsc
	TokDesc

	TokLeftParen
	TokRightParen
	TokComma
	TokSemicolon
	TokAsterisk
	TokDot

	TokNumber
	TokString
	TokIdentifier

	TokEOF
)

var keywords = map[string]TokenKind{
	"select": TokSelect,
	"from":   TokFrom,
	"where":  TokWhere,
	"and":    TokAnd,
	"or":     TokOr,
	"group":  TokGroup,
	"by":     TokBy,
	"order":  TokOrder,
	"limit":  TokLimit,

	"count":   TokCount,
	"sum":     TokSum,
	"avg":     TokAvg,
	"average": TokAvg,
	"min":     TokMin,
	"max":     TokMax,

	"in":   TokIn,
	"like": TokLike,

	"last":  TokLast,
	"days":  TokDays,
	"hours": TokHours,
	"weeks": TokWeeks,

	"errors":      TokErrors,
	"warnings":    TokWarnings,
	"files":       TokFiles,
	"diagnostics": TokDiagnostics,
	"history":     TokHistory,
	"trends":      TokTrends,

	"asc":        TokAsc,
	"desc":       TokDesc,
	"ascending":  TokAsc,
	"descending": TokDesc,
}

// Token is one lexical unit with its source position, grounded on
// lexer.rs's Token.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}

// Lexer performs a single-pass character scan over a query string.
type Lexer struct {
	input  []rune
	pos    int
	line   int
	column int
}

// NewLexer constructs a Lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input), line: 1, column: 1}
}

// Tokenize scans the entire input, returning every token plus a trailing
// EOF, or the first lexical error encountered.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for !l.atEnd() {
		l.skipWhitespace()
		if l.atEnd() {
			break
		}
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	tokens = append(tokens, Token{Kind: TokEOF, Line: l.line, Column: l.column})
	return tokens, nil
}

func (l *Lexer) next() (Token, error) {
	startLine, startColumn := l.line, l.column
	ch := l.advance()

	switch {
	case ch == '(':
		return Token{TokLeftParen, string(ch), startLine, startColumn}, nil
	case ch == ')':
		return Token{TokRightParen, string(ch), startLine, startColumn}, nil
	case ch == ',':
		return Token{TokComma, string(ch), startLine, startColumn}, nil
	case ch == ';':
		return Token{TokSemicolon, string(ch), startLine, startColumn}, nil
	case ch == '*':
		return Token{TokAsterisk, string(ch), startLine, startColumn}, nil
	case ch == '.':
		return Token{TokDot, string(ch), startLine, startColumn}, nil
	case ch == '=':
		return Token{TokEqual, string(ch), startLine, startColumn}, nil
	case ch == '!' && l.peek() == '=':
		l.advance()
		return Token{TokNotEqual, "!=", startLine, startColumn}, nil
	case ch == '>' && l.peek() == '=':
		l.advance()
		return Token{TokGreaterEqual, ">=", startLine, startColumn}, nil
	case ch == '>':
		return Token{TokGreater, string(ch), startLine, startColumn}, nil
	case ch == '<' && l.peek() == '=':
		l.advance()
		return Token{TokLessEqual, "<=", startLine, startColumn}, nil
	case ch == '<':
		return Token{TokLess, string(ch), startLine, startColumn}, nil
	case ch == '"' || ch == '\'':
		lit, err := l.scanString(ch, startLine, startColumn)
		if err != nil {
			return Token{}, err
		}
		return Token{TokString, lit, startLine, startColumn}, nil
	case ch >= '0' && ch <= '9':
		lexeme, err := l.scanNumber(ch, startLine, startColumn)
		if err != nil {
			return Token{}, err
		}
		return Token{TokNumber, lexeme, startLine, startColumn}, nil
	case isAlpha(ch):
		ident := l.scanIdentifier(ch)
		kind, ok := keywords[strings.ToLower(ident)]
		if !ok {
			kind = TokIdentifier
		}
		return Token{kind, ident, startLine, startColumn}, nil
	default:
		return Token{}, lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar, "query.lex",
			string(ch), nil)
	}
}

func (l *Lexer) scanString(quote rune, startLine, startColumn int) (string, error) {
	var sb strings.Builder
	for l.peek() != quote && !l.atEnd() {
		if l.peek() == '\n' {
			l.line++
			l.column = 1
		}
		sb.WriteRune(l.advance())
	}
	if l.atEnd() {
		return "", lsperrors.New(lsperrors.KindParse, lsperrors.ReasonGrammar, "query.lex",
			"unterminated string", nil)
	}
	l.advance() // closing quote
	_ = startLine
	_ = startColumn
	return sb.String(), nil
}

func (l *Lexer) scanNumber(first rune, startLine, startColumn int) (string, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for isDigit(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		sb.WriteRune(l.advance())
		for isDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
	}
	_ = startLine
	_ = startColumn
	return sb.String(), nil
}

func (l *Lexer) scanIdentifier(first rune) string {
	var sb strings.Builder
	sb.WriteRune(first)
	for isAlphaNumeric(l.peek()) {
		sb.WriteRune(l.advance())
	}
	return sb.String()
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.line++
			l.column = 1
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.input) }

func (l *Lexer) advance() rune {
	ch := l.input[l.pos]
	l.pos++
	l.column++
	return ch
}

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isAlphaNumeric(ch rune) bool { return isAlpha(ch) || isDigit(ch) }
