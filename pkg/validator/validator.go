// Package validator implements static checks over parsed lisp0 forms: the
// shape of special forms, builtin arity and references to symbols that can
// never have a value. Nothing is evaluated.
package validator

import (
	"fmt"

	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/env"
	"github.com/thomasrohde/lisp0/pkg/evaluator"
	"github.com/thomasrohde/lisp0/pkg/formatter"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
	"github.com/thomasrohde/lisp0/pkg/stdlib"
)

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	if s.bindings[name] {
		return true
	}
	if s.parent != nil {
		return s.parent.has(name)
	}
	return false
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

type validator struct {
	diags  []diagnostics.Diagnostic
	global *env.Environment
	form   int
}

// Validate checks forms, as returned by parser.ParseAll into e, and returns
// diagnostics. e must already hold the builtins.
func Validate(forms []*sexpr.Value, e *env.Environment) []diagnostics.Diagnostic {
	v := &validator{global: e}
	top := newScope(nil)
	for _, f := range forms {
		v.collectDefines(f, top)
	}
	for i, f := range forms {
		v.form = i + 1
		v.validateExpr(f, top)
	}
	return v.diags
}

func (v *validator) addDiag(code diagnostics.Code, msg string, at *sexpr.Value) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code,
		fmt.Sprintf("form %d: %s", v.form, msg), nil, "in "+formatter.Format(at, nil)))
}

// builtinFor returns the builtin op names, unless a local binding shadows it.
func (v *validator) builtinFor(op *sexpr.Value, sc *scope) (*stdlib.Builtin, bool) {
	if op.Tag != sexpr.TagSymbol || sc.has(op.Str) {
		return nil, false
	}
	entry, ok := v.global.LookupByName(op.Str)
	if !ok || entry.Value.Tag != sexpr.TagBuiltin {
		return nil, false
	}
	return stdlib.Default().Get(stdlib.Code(entry.Value.Num))
}

// collectDefines records the names a form defines in the scope it runs in,
// so later forms (and recursive bodies) may refer to them.
func (v *validator) collectDefines(f *sexpr.Value, sc *scope) {
	if f.Tag != sexpr.TagSExpr || !f.Cell.IsProperList() || f.Cell.IsEmpty() {
		return
	}
	parts, _ := f.Cell.Slice()
	b, ok := v.builtinFor(parts[0], sc)
	if !ok {
		return
	}
	switch b.Code {
	case stdlib.Define:
		if len(parts) < 2 {
			return
		}
		switch target := parts[1]; target.Tag {
		case sexpr.TagSymbol:
			sc.add(target.Str)
		case sexpr.TagSExpr:
			if !target.Cell.IsEmpty() && target.Cell.Car.Tag == sexpr.TagSymbol {
				sc.add(target.Cell.Car.Str)
			}
		}
	case stdlib.Begin, stdlib.If:
		for _, p := range parts[1:] {
			v.collectDefines(p, sc)
		}
	case stdlib.Cond:
		for _, clause := range parts[1:] {
			if clause.Tag != sexpr.TagSExpr {
				continue
			}
			body, ok := clause.Cell.Slice()
			if !ok {
				continue
			}
			for _, p := range body {
				v.collectDefines(p, sc)
			}
		}
	}
}

func (v *validator) validateExpr(x *sexpr.Value, sc *scope) {
	switch x.Tag {
	case sexpr.TagSymbol:
		v.checkBound(x, sc, x)
	case sexpr.TagSExpr:
		v.validateList(x, sc)
	}
}

func (v *validator) checkBound(sym *sexpr.Value, sc *scope, at *sexpr.Value) {
	if sc.has(sym.Str) {
		return
	}
	if entry, ok := v.global.LookupByName(sym.Str); ok && entry.Value.Tag != sexpr.TagUndefined {
		return
	}
	v.addDiag(diagnostics.UndefinedSymbol, fmt.Sprintf("symbol '%s' has no value", sym.Str), at)
}

func (v *validator) validateList(x *sexpr.Value, sc *scope) {
	if x.Cell.IsEmpty() {
		v.addDiag(diagnostics.MissingProcedure, "() cannot be called", x)
		return
	}
	parts, ok := x.Cell.Slice()
	if !ok {
		v.addDiag(diagnostics.IllegalPair, "call with a dotted argument list", x)
		return
	}
	op, args := parts[0], parts[1:]

	b, ok := v.builtinFor(op, sc)
	if !ok {
		switch op.Tag {
		case sexpr.TagFixnum, sexpr.TagBool, sexpr.TagString:
			v.addDiag(diagnostics.NotCallable, fmt.Sprintf("%s is not callable", formatter.Format(op, nil)), x)
		default:
			v.validateExpr(op, sc)
		}
		for _, a := range args {
			v.validateExpr(a, sc)
		}
		return
	}

	if !v.checkArity(b, len(args), x) {
		return
	}
	if b.Special {
		v.validateSpecial(b, args, sc, x)
		return
	}
	for _, a := range args {
		v.validateExpr(a, sc)
	}
}

func (v *validator) checkArity(b *stdlib.Builtin, n int, at *sexpr.Value) bool {
	if n < b.Min {
		v.addDiag(diagnostics.TooFewArgs, fmt.Sprintf("%s needs at least %d argument(s), got %d", b.Name, b.Min, n), at)
		return false
	}
	if b.Max != stdlib.Variadic && n > b.Max {
		v.addDiag(diagnostics.TooManyArgs, fmt.Sprintf("%s takes at most %d argument(s), got %d", b.Name, b.Max, n), at)
		return false
	}
	return true
}

func (v *validator) validateSpecial(b *stdlib.Builtin, args []*sexpr.Value, sc *scope, at *sexpr.Value) {
	switch b.Code {
	case stdlib.Quote:
		// data, not code

	case stdlib.Define:
		switch target := args[0]; target.Tag {
		case sexpr.TagSymbol:
			if len(args) > 2 {
				v.addDiag(diagnostics.TooManyArgs, "define of a symbol takes exactly one value", at)
				return
			}
			sc.add(target.Str)
			v.validateExpr(args[1], sc)
		case sexpr.TagSExpr:
			if target.Cell.IsEmpty() || target.Cell.IsPair() || target.Cell.Car.Tag != sexpr.TagSymbol {
				v.addDiag(diagnostics.BadSyntax, "define needs a name before its parameters", at)
				return
			}
			sc.add(target.Cell.Car.Str)
			params := target.Cell.Cdr
			if params == nil {
				params = sexpr.Empty()
			}
			v.validateClosure(params, args[1:], sc, at)
		default:
			v.addDiag(diagnostics.NotSymbol, "define target must be a symbol or (name params...)", at)
		}

	case stdlib.SetBang:
		if args[0].Tag != sexpr.TagSymbol {
			v.addDiag(diagnostics.NotSymbol, "set! target must be a symbol", at)
			return
		}
		v.checkBound(args[0], sc, at)
		v.validateExpr(args[1], sc)

	case stdlib.Lambda:
		v.validateClosure(args[0], args[1:], sc, at)

	case stdlib.Cond:
		if code := evaluator.CheckCond(args); code != diagnostics.OK {
			v.addDiag(code, code.Message(), at)
			return
		}
		for _, clause := range args {
			parts, _ := clause.Cell.Slice()
			start := 0
			if evaluator.IsElse(parts[0]) {
				start = 1
			}
			for _, p := range parts[start:] {
				v.validateExpr(p, sc)
			}
		}

	default:
		for _, a := range args {
			v.validateExpr(a, sc)
		}
	}
}

func (v *validator) validateClosure(params *sexpr.Value, body []*sexpr.Value, sc *scope, at *sexpr.Value) {
	if params.Tag != sexpr.TagSExpr {
		v.addDiag(diagnostics.BadSyntax, "parameters must be a list", at)
		return
	}
	names, ok := params.Cell.Slice()
	if !ok {
		v.addDiag(diagnostics.BadSyntax, "parameters must be a proper list", at)
		return
	}
	inner := newScope(sc)
	for _, p := range names {
		if p.Tag != sexpr.TagSymbol {
			v.addDiag(diagnostics.NotSymbol, fmt.Sprintf("parameter %s is not a symbol", formatter.Format(p, nil)), at)
			return
		}
		inner.add(p.Str)
	}
	for _, f := range body {
		v.collectDefines(f, inner)
	}
	for _, f := range body {
		v.validateExpr(f, inner)
	}
}
