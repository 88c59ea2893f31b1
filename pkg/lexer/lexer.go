// Package lexer implements the lisp0 tokenizer. It classifies characters into
// parentheses, whitespace, string literals and atoms ("other" characters) and
// hands the parser one token per class change.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thomasrohde/lisp0/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	TokLParen TokenType = iota // (
	TokRParen                  // )
	TokAtom                    // symbol or number text
	TokString                  // "..."
	TokEOF
)

var tokenNames = []string{
	TokLParen: "'('",
	TokRParen: "')'",
	TokAtom:   "atom",
	TokString: "string",
	TokEOF:    "end of input",
}

func (t TokenType) String() string {
	if int(t) < 0 || int(t) >= len(tokenNames) {
		return "unknown"
	}
	return tokenNames[t]
}

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  diagnostics.Span
}

// LexError is returned when the input cannot be tokenized.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) diagnostics.Span {
	return diagnostics.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) lexError(code diagnostics.Code, startLine, startCol int, msg string) *LexError {
	sp := s.span(startLine, startCol)
	return &LexError{Diag: diagnostics.MakeDiag(code, msg, &sp, "")}
}

// IsSpace reports whether ch separates atoms.
func IsSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v'
}

// IsDelimiter reports whether ch ends an atom.
func IsDelimiter(ch byte) bool {
	return IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == ';'
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		if IsSpace(ch) {
			s.advance()
		} else if ch == ';' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			break
		}
	}
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	s.advance() // opening "

	var buf strings.Builder
	for !s.atEnd() {
		ch := s.peek()
		if ch == '"' {
			s.advance()
			return Token{Type: TokString, Value: buf.String(), Span: s.span(startLine, startCol)}, nil
		}
		if ch == '\\' {
			s.advance()
			if s.atEnd() {
				break
			}
			esc := s.advance()
			switch esc {
			case '"':
				buf.WriteByte('"')
			case '\\':
				buf.WriteByte('\\')
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case 'r':
				buf.WriteByte('\r')
			default:
				buf.WriteByte('\\')
				buf.WriteByte(esc)
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(s.source[s.pos:])
		buf.WriteRune(r)
		for i := 0; i < size; i++ {
			s.advance()
		}
	}
	return Token{}, s.lexError(diagnostics.UnterminatedString, startLine, startCol, "unterminated string literal")
}

func (s *scanner) scanAtom() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos
	for !s.atEnd() && !IsDelimiter(s.peek()) {
		s.advance()
	}
	return Token{Type: TokAtom, Value: s.source[startPos:s.pos], Span: s.span(startLine, startCol)}
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespaceAndComments()

	startLine, startCol := s.line, s.col
	if s.atEnd() {
		return Token{Type: TokEOF, Span: s.span(startLine, startCol)}, nil
	}

	switch ch := s.peek(); ch {
	case '(':
		s.advance()
		return Token{Type: TokLParen, Value: "(", Span: s.span(startLine, startCol)}, nil
	case ')':
		s.advance()
		return Token{Type: TokRParen, Value: ")", Span: s.span(startLine, startCol)}, nil
	case '"':
		return s.scanString()
	}
	return s.scanAtom(), nil
}

// Tokenize breaks source code into a slice of tokens ending with TokEOF.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Describe renders a token for diagnostics.
func Describe(tok Token) string {
	switch tok.Type {
	case TokAtom:
		return fmt.Sprintf("atom '%s'", tok.Value)
	case TokString:
		return fmt.Sprintf("string %q", tok.Value)
	default:
		return tok.Type.String()
	}
}
