// Package parser implements the lisp0 reader: a state machine that turns
// source text into cons-cell trees.
//
// Parsing is transactional. Symbols first seen during a parse are installed
// in a temporary table indexed above the permanent table and are merged
// only when the whole input parses; on failure the permanent environment is
// left exactly as it was.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/env"
	"github.com/thomasrohde/lisp0/pkg/lexer"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

type state int

const (
	stateStart      state = iota // before the first form
	stateNewSExpr                // just opened a list
	stateReady                   // inside a list with at least one element
	stateReadSymbol              // resolving an atom
	stateFinish                  // a top-level form is complete
	stateError                   // terminal
)

// frame is one open list level.
type frame struct {
	head *sexpr.Cell
	tail *sexpr.Cell // last filled node, nil while the list is empty
	open diagnostics.Span
}

func (f *frame) append(v *sexpr.Value) {
	if f.tail == nil {
		f.head.Car = v
		f.tail = f.head
		return
	}
	next := &sexpr.Cell{Car: v}
	f.tail.Cdr = sexpr.List(next)
	f.tail = next
}

func (f *frame) close() {
	if f.tail != nil {
		f.tail.Cdr = sexpr.Empty()
	}
}

type parser struct {
	tokens []lexer.Token
	pos    int
	single bool

	perm  *env.Environment
	tmp   *env.SymbolTable
	stack []*frame
	forms []*sexpr.Value

	state state
	diag  diagnostics.Diagnostic
}

// Parse reads exactly one form from source. It returns the form as an SExpr
// value (the empty list for blank input) or an Error value.
func Parse(source string, e *env.Environment) *sexpr.Value {
	forms, diags := run(source, "", e, true)
	if len(diags) > 0 {
		return sexpr.Err(diags[0].Code)
	}
	if len(forms) == 0 {
		return sexpr.Empty()
	}
	return forms[0]
}

// ParseAll reads every top-level form in source. Either all forms are
// returned and their new symbols committed to e, or a diagnostic is returned
// and e is untouched.
func ParseAll(source, filename string, e *env.Environment) ([]*sexpr.Value, []diagnostics.Diagnostic) {
	return run(source, filename, e, false)
}

// ParseOne is like Parse but reports a diagnostic with a source span.
func ParseOne(source, filename string, e *env.Environment) (*sexpr.Value, []diagnostics.Diagnostic) {
	forms, diags := run(source, filename, e, true)
	if len(diags) > 0 {
		return nil, diags
	}
	if len(forms) == 0 {
		return sexpr.Empty(), nil
	}
	return forms[0], nil
}

// Incomplete reports whether source ends inside an open list or string, in
// which case an interactive reader should ask for more input.
func Incomplete(source string) bool {
	tokens, err := lexer.Tokenize(source, "")
	if err != nil {
		var le *lexer.LexError
		return errors.As(err, &le) && le.Diag.Code == diagnostics.UnterminatedString
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TokLParen:
			depth++
		case lexer.TokRParen:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth > 0
}

func run(source, filename string, e *env.Environment, single bool) ([]*sexpr.Value, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		var le *lexer.LexError
		if errors.As(err, &le) {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.UnterminatedString, err.Error(), nil, "")}
	}

	p := &parser{
		tokens: tokens,
		single: single,
		perm:   e,
		tmp:    env.NewSymbolTable(e.Symbols.Offset() + e.Symbols.Len()),
		state:  stateStart,
	}
	p.parse()
	if p.state == stateError {
		p.discard()
		return nil, []diagnostics.Diagnostic{p.diag}
	}
	e.Merge(p.tmp)
	return p.forms, nil
}

func (p *parser) fail(code diagnostics.Code, tok lexer.Token, msg string) {
	sp := tok.Span
	p.diag = diagnostics.MakeDiag(code, msg, &sp, "")
	p.state = stateError
}

// discard releases every cell built during a failed attempt.
func (p *parser) discard() {
	for _, f := range p.forms {
		f.Cell.Release(true)
	}
	if len(p.stack) > 0 {
		p.stack[0].head.Release(true)
	}
	p.forms, p.stack, p.tmp = nil, nil, nil
}

func (p *parser) parse() {
	for p.state != stateError {
		tok := p.tokens[p.pos]
		p.pos++

		switch p.state {
		case stateStart, stateFinish:
			p.stepTopLevel(tok)
		case stateNewSExpr, stateReady:
			p.stepInList(tok)
		}
		if tok.Type == lexer.TokEOF {
			return
		}
	}
}

func (p *parser) stepTopLevel(tok lexer.Token) {
	switch tok.Type {
	case lexer.TokEOF:
	case lexer.TokLParen:
		if p.state == stateFinish && p.single {
			p.fail(diagnostics.TooManyForms, tok, "unexpected '(' after a complete expression")
			return
		}
		p.open(tok)
	case lexer.TokRParen:
		p.fail(diagnostics.UnbalancedParen, tok, "unexpected ')'")
	default:
		if p.state == stateFinish && p.single {
			p.fail(diagnostics.TooManyForms, tok, fmt.Sprintf("unexpected %s after a complete expression", lexer.Describe(tok)))
			return
		}
		p.fail(diagnostics.BareSymbol, tok, fmt.Sprintf("%s outside of a list", lexer.Describe(tok)))
	}
}

func (p *parser) stepInList(tok lexer.Token) {
	switch tok.Type {
	case lexer.TokEOF:
		top := p.stack[len(p.stack)-1]
		p.fail(diagnostics.UnbalancedParen, lexer.Token{Span: top.open}, "missing ')'")
	case lexer.TokLParen:
		p.open(tok)
	case lexer.TokRParen:
		p.closeList(tok)
	default:
		p.state = stateReadSymbol
		v, ok := p.readAtom(tok)
		if !ok {
			return
		}
		p.stack[len(p.stack)-1].append(v)
		p.state = stateReady
	}
}

// open pushes a fresh cell and links it into the enclosing list.
func (p *parser) open(tok lexer.Token) {
	f := &frame{head: &sexpr.Cell{}, open: tok.Span}
	if n := len(p.stack); n > 0 {
		p.stack[n-1].append(sexpr.List(f.head))
	}
	p.stack = append(p.stack, f)
	p.state = stateNewSExpr
}

func (p *parser) closeList(tok lexer.Token) {
	n := len(p.stack)
	top := p.stack[n-1]
	if n == 1 && top.tail == nil {
		p.fail(diagnostics.EmptyParen, lexer.Token{Span: top.open}, "empty expression ()")
		return
	}
	top.close()
	p.stack = p.stack[:n-1]
	if n == 1 {
		p.forms = append(p.forms, sexpr.List(top.head))
		p.state = stateFinish
		return
	}
	p.state = stateReady
}

func (p *parser) readAtom(tok lexer.Token) (*sexpr.Value, bool) {
	if tok.Type == lexer.TokString {
		return sexpr.String(tok.Value), true
	}
	text := tok.Value
	if isInteger(text) {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			if text[0] == '-' {
				p.fail(diagnostics.IntegerTooLow, tok, fmt.Sprintf("integer literal %s is below the fixnum range", text))
			} else {
				p.fail(diagnostics.IntegerTooHigh, tok, fmt.Sprintf("integer literal %s is above the fixnum range", text))
			}
			return nil, false
		}
		return sexpr.Fixnum(n), true
	}
	return p.resolve(text), true
}

// resolve finds name in the permanent environment, then in this attempt's
// temporary table, and otherwise declares it there as undefined.
func (p *parser) resolve(name string) *sexpr.Value {
	if entry, ok := p.perm.LookupByName(name); ok {
		return sexpr.Sym(int64(entry.Index), entry.Name)
	}
	entry, ok := p.tmp.Lookup(name)
	if !ok {
		entry = p.tmp.Install(name, nil)
	}
	return sexpr.Sym(int64(entry.Index), entry.Name)
}

func isInteger(s string) bool {
	i := 0
	if len(s) > 1 && (s[0] == '-' || s[0] == '+') {
		i = 1
	}
	if i >= len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
