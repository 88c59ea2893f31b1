package evaluator

import (
	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/env"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
	"github.com/thomasrohde/lisp0/pkg/stdlib"
)

// ElseName is the symbol cond accepts as the predicate of its last clause.
const ElseName = "else"

func evalSpecial(b *stdlib.Builtin, args *sexpr.Value, e *env.Environment) *sexpr.Value {
	raw, err := collectArguments(args, e, b.Min, b.Max, false)
	if err != nil {
		return err
	}
	switch b.Code {
	case stdlib.Define:
		return evalDefine(raw, e)
	case stdlib.SetBang:
		return evalSet(raw, e)
	case stdlib.Lambda:
		return makeClosure("", raw[0], raw[1:], e)
	case stdlib.And:
		return evalAnd(raw, e)
	case stdlib.Or:
		return evalOr(raw, e)
	case stdlib.Cond:
		return evalCond(raw, e)
	case stdlib.Quote:
		return raw[0]
	case stdlib.If:
		return evalIf(raw, e)
	case stdlib.Begin:
		return evalBody(raw, e)
	}
	return sexpr.Err(diagnostics.UndefinedBuiltin)
}

// (define sym expr) binds in the current scope; (define (name params...)
// body...) binds a named closure.
func evalDefine(args []*sexpr.Value, e *env.Environment) *sexpr.Value {
	target := args[0]
	switch target.Tag {
	case sexpr.TagSymbol:
		if len(args) > 2 {
			return sexpr.Err(diagnostics.TooManyArgs)
		}
		if !e.Declared(target) {
			return sexpr.Err(diagnostics.BadSymbol)
		}
		val := Evaluate(args[1], e)
		if val.IsError() {
			return val
		}
		nameClosure(val, target.Str, e)
		e.Install(target.Str, val)
		return sexpr.Void()

	case sexpr.TagSExpr:
		head := target.Cell
		if head.IsEmpty() || head.IsPair() || head.Car.Tag != sexpr.TagSymbol {
			return sexpr.Err(diagnostics.BadSyntax)
		}
		if !e.Declared(head.Car) {
			return sexpr.Err(diagnostics.BadSymbol)
		}
		name := head.Car.Str
		params := head.Cdr
		if params == nil {
			params = sexpr.Empty()
		}
		fn := makeClosure(name, params, args[1:], e)
		if fn.IsError() {
			return fn
		}
		e.Install(name, fn)
		return sexpr.Void()
	}
	return sexpr.Err(diagnostics.NotSymbol)
}

func evalSet(args []*sexpr.Value, e *env.Environment) *sexpr.Value {
	target := args[0]
	if target.Tag != sexpr.TagSymbol {
		return sexpr.Err(diagnostics.NotSymbol)
	}
	val := Evaluate(args[1], e)
	if val.IsError() {
		return val
	}
	return e.Set(target, val)
}

// makeClosure registers a closure over e and returns its Function value.
// Duplicate parameter names are accepted; the later one wins when bound.
func makeClosure(name string, params *sexpr.Value, body []*sexpr.Value, e *env.Environment) *sexpr.Value {
	names, err := parameterNames(params)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return sexpr.Err(diagnostics.BadSyntax)
	}
	fn := e.AddFunction(name, names, e, sexpr.List(sexpr.FromSlice(body)))
	return sexpr.Function(int64(fn.Index))
}

func parameterNames(params *sexpr.Value) ([]string, *sexpr.Value) {
	if params.Tag != sexpr.TagSExpr {
		return nil, sexpr.Err(diagnostics.BadSyntax)
	}
	vals, ok := params.Cell.Slice()
	if !ok {
		return nil, sexpr.Err(diagnostics.BadSyntax)
	}
	names := make([]string, len(vals))
	for i, v := range vals {
		if v.Tag != sexpr.TagSymbol {
			return nil, sexpr.Err(diagnostics.NotSymbol)
		}
		names[i] = v.Str
	}
	return names, nil
}

// nameClosure gives an anonymous closure the name it is being bound to.
func nameClosure(v *sexpr.Value, name string, e *env.Environment) {
	if v.Tag != sexpr.TagFunction {
		return
	}
	if fn, ok := e.Function(int(v.Num)); ok && fn.Name == "" {
		fn.Name = name
	}
}

func evalAnd(args []*sexpr.Value, e *env.Environment) *sexpr.Value {
	result := sexpr.Bool(true)
	for _, a := range args {
		result = Evaluate(a, e)
		if result.IsError() || result.IsFalse() {
			return result
		}
	}
	return result
}

func evalOr(args []*sexpr.Value, e *env.Environment) *sexpr.Value {
	result := sexpr.Bool(false)
	for _, a := range args {
		result = Evaluate(a, e)
		if result.IsError() || !result.IsFalse() {
			return result
		}
	}
	return result
}

// IsElse reports whether v is the else keyword.
func IsElse(v *sexpr.Value) bool {
	return v != nil && v.Tag == sexpr.TagSymbol && v.Str == ElseName
}

// CheckCond validates the clause shapes of a cond form before any clause
// is evaluated.
func CheckCond(clauses []*sexpr.Value) diagnostics.Code {
	for i, clause := range clauses {
		if clause.Tag != sexpr.TagSExpr || clause.Cell.IsEmpty() || !clause.Cell.IsProperList() {
			return diagnostics.BadSyntax
		}
		if !IsElse(clause.Cell.Car) {
			continue
		}
		if i != len(clauses)-1 {
			return diagnostics.NonterminalElse
		}
		if clause.Cell.Len() < 2 {
			return diagnostics.EmptyElse
		}
	}
	return diagnostics.OK
}

func evalCond(clauses []*sexpr.Value, e *env.Environment) *sexpr.Value {
	if code := CheckCond(clauses); code != diagnostics.OK {
		return sexpr.Err(code)
	}
	for _, clause := range clauses {
		parts, _ := clause.Cell.Slice()
		if IsElse(parts[0]) {
			return evalBody(parts[1:], e)
		}
		test := Evaluate(parts[0], e)
		if test.IsError() {
			return test
		}
		if test.IsFalse() {
			continue
		}
		if len(parts) == 1 {
			return test
		}
		return evalBody(parts[1:], e)
	}
	return sexpr.Void()
}

func evalIf(args []*sexpr.Value, e *env.Environment) *sexpr.Value {
	test := Evaluate(args[0], e)
	if test.IsError() {
		return test
	}
	if !test.IsFalse() {
		return Evaluate(args[1], e)
	}
	if len(args) == 3 {
		return Evaluate(args[2], e)
	}
	return sexpr.Void()
}
