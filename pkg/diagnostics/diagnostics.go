// Package diagnostics defines lisp0 error codes and diagnostic formatting for parse and evaluation errors.
package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Code identifies a parse or evaluation error. It is the integer payload of
// an Error-tagged value.
type Code int64

// Parse error codes.
const (
	OK Code = iota
	UnbalancedParen
	BareSymbol
	EmptyParen
	TooManyForms
	UnterminatedString
	IntegerTooLow
	IntegerTooHigh
)

// Evaluation error codes.
const (
	Exit Code = iota + 100
	NullExpr
	MalformedExpr
	UndefinedSymbol
	UndefinedType
	UndefinedBuiltin
	UndefinedFunction
	IllegalPair
	TooFewArgs
	TooManyArgs
	BadArgType
	NeedNumber
	NotSymbol
	FixnumUnderflow
	FixnumOverflow
	DivideByZero
	EmptyElse
	NonterminalElse
	NotCallable
	MissingProcedure
	BadSyntax
	BadSymbol
)

// IO is reported by the CLI when a source file cannot be read.
const IO Code = 200

type codeInfo struct {
	name    string
	message string
}

var codes = map[Code]codeInfo{
	OK:                 {"E_OK", "no error"},
	UnbalancedParen:    {"E_UNBALANCED_PAREN", "unbalanced parentheses"},
	BareSymbol:         {"E_BARE_SYMBOL", "atom outside of a list"},
	EmptyParen:         {"E_EMPTY_PAREN", "empty expression ()"},
	TooManyForms:       {"E_TOO_MANY_FORMS", "trailing content after a complete expression"},
	UnterminatedString: {"E_UNTERMINATED_STRING", "unterminated string literal"},
	IntegerTooLow:      {"E_INTEGER_TOO_LOW", "integer literal below fixnum range"},
	IntegerTooHigh:     {"E_INTEGER_TOO_HIGH", "integer literal above fixnum range"},

	Exit:              {"E_EXIT", "exit requested"},
	NullExpr:          {"E_NULL_EXPR", "null expression"},
	MalformedExpr:     {"E_MALFORMED_EXPR", "malformed expression"},
	UndefinedSymbol:   {"E_UNDEFINED_SYMBOL", "symbol has no value"},
	UndefinedType:     {"E_UNDEFINED_TYPE", "value of unknown type"},
	UndefinedBuiltin:  {"E_UNDEFINED_BUILTIN", "unknown builtin"},
	UndefinedFunction: {"E_UNDEFINED_FUNCTION", "unknown function"},
	IllegalPair:       {"E_ILLEGAL_PAIR", "dotted pair where a list was expected"},
	TooFewArgs:        {"E_TOO_FEW_ARGS", "too few arguments"},
	TooManyArgs:       {"E_TOO_MANY_ARGS", "too many arguments"},
	BadArgType:        {"E_BAD_ARG_TYPE", "argument of wrong type"},
	NeedNumber:        {"E_NEED_NUMBER", "number expected"},
	NotSymbol:         {"E_NOT_SYMBOL", "symbol expected"},
	FixnumUnderflow:   {"E_FIXNUM_UNDERFLOW", "fixnum underflow"},
	FixnumOverflow:    {"E_FIXNUM_OVERFLOW", "fixnum overflow"},
	DivideByZero:      {"E_DIVIDE_BY_ZERO", "division by zero"},
	EmptyElse:         {"E_EMPTY_ELSE", "else clause without a body"},
	NonterminalElse:   {"E_NONTERMINAL_ELSE", "else clause must be last"},
	NotCallable:       {"E_NOT_CALLABLE", "value is not callable"},
	MissingProcedure:  {"E_MISSING_PROCEDURE", "missing procedure in ()"},
	BadSyntax:         {"E_BAD_SYNTAX", "bad syntax"},
	BadSymbol:         {"E_BAD_SYMBOL", "symbol was never declared"},

	IO: {"E_IO", "i/o error"},
}

// String returns the stable E_... name of the code.
func (c Code) String() string {
	if info, ok := codes[c]; ok {
		return info.name
	}
	return fmt.Sprintf("E_UNKNOWN(%d)", int64(c))
}

// Message returns a short human readable description of the code.
func (c Code) Message() string {
	if info, ok := codes[c]; ok {
		return info.message
	}
	return "unknown error"
}

// IsParse reports whether c belongs to the parse error family.
func (c Code) IsParse() bool {
	return c > OK && c < Exit
}

// MarshalText renders the code by name so diagnostics serialize as "E_...".
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Span locates a diagnostic in source text. Lines and columns are 1-based.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Diagnostic represents a parse or runtime diagnostic.
type Diagnostic struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Span    *Span  `json:"span,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code Code, message string, span *Span, hint string) Diagnostic {
	if message == "" {
		message = code.Message()
	}
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	out := fmt.Sprintf("error[%s]: %s", d.Code, d.Message)
	if d.Span != nil {
		out += fmt.Sprintf("\n  --> %s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}

// Error carries a Code through ordinary Go error returns.
type Error struct {
	Code Code
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Code.Message())
}

// AsCode extracts the Code from err, if err wraps an *Error.
func AsCode(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return OK, false
}
