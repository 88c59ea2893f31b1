// Package evaluator implements the lisp0 tree-walking evaluator.
//
// Evaluation never panics on user input. Every failure is returned as an
// Error-tagged value and forwarded unchanged by the caller; there is no
// separate error channel.
package evaluator

import (
	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/env"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
	"github.com/thomasrohde/lisp0/pkg/stdlib"
)

// Evaluate evaluates v in e.
func Evaluate(v *sexpr.Value, e *env.Environment) *sexpr.Value {
	if v == nil {
		return sexpr.Err(diagnostics.NullExpr)
	}
	switch v.Tag {
	case sexpr.TagUndefined:
		return sexpr.Err(diagnostics.UndefinedSymbol)
	case sexpr.TagSymbol:
		return e.ValueOf(v)
	case sexpr.TagSExpr:
		return evalSExpr(v.Cell, e)
	case sexpr.TagError, sexpr.TagVoid, sexpr.TagFixnum, sexpr.TagBool,
		sexpr.TagBuiltin, sexpr.TagFunction, sexpr.TagString:
		return v.Copy()
	}
	return sexpr.Err(diagnostics.UndefinedType)
}

func evalSExpr(c *sexpr.Cell, e *env.Environment) *sexpr.Value {
	if c == nil {
		return sexpr.Err(diagnostics.NullExpr)
	}
	if c.IsEmpty() {
		return sexpr.Err(diagnostics.MissingProcedure)
	}
	if c.Car == nil {
		return sexpr.Err(diagnostics.MalformedExpr)
	}

	op := Evaluate(c.Car, e)
	switch op.Tag {
	case sexpr.TagError:
		return op
	case sexpr.TagBuiltin:
		return evalBuiltin(stdlib.Code(op.Num), c.Cdr, e)
	case sexpr.TagFunction:
		return evalFunction(int(op.Num), c.Cdr, e)
	}
	return sexpr.Err(diagnostics.NotCallable)
}

// collectArguments walks the argument spine args. With evaluate set each
// element is evaluated left to right and the first error is returned at
// once; otherwise the raw elements are deep-copied. max may be
// stdlib.Variadic.
func collectArguments(args *sexpr.Value, e *env.Environment, min, max int, evaluate bool) ([]*sexpr.Value, *sexpr.Value) {
	var c *sexpr.Cell
	if args != nil {
		if args.Tag != sexpr.TagSExpr {
			return nil, sexpr.Err(diagnostics.IllegalPair)
		}
		c = args.Cell
	}
	if !c.IsProperList() {
		return nil, sexpr.Err(diagnostics.IllegalPair)
	}

	var out []*sexpr.Value
	for ; !c.IsEmpty(); c = c.Next() {
		if max != stdlib.Variadic && len(out) == max {
			return nil, sexpr.Err(diagnostics.TooManyArgs)
		}
		if !evaluate {
			out = append(out, c.Car.DeepCopy())
			continue
		}
		v := Evaluate(c.Car, e)
		if v.IsError() {
			return nil, v
		}
		out = append(out, v)
	}
	if len(out) < min {
		return nil, sexpr.Err(diagnostics.TooFewArgs)
	}
	return out, nil
}

func evalBuiltin(code stdlib.Code, args *sexpr.Value, e *env.Environment) *sexpr.Value {
	b, ok := stdlib.Default().Get(code)
	if !ok {
		return sexpr.Err(diagnostics.UndefinedBuiltin)
	}
	if b.Special {
		return evalSpecial(b, args, e)
	}
	vals, err := collectArguments(args, e, b.Min, b.Max, true)
	if err != nil {
		return err
	}
	return b.Execute(vals)
}

// evalFunction applies the closure with the given index. Arguments are bound
// in a fresh scope enclosed by the closure's defining environment.
func evalFunction(index int, args *sexpr.Value, e *env.Environment) *sexpr.Value {
	fn, ok := e.Function(index)
	if !ok {
		return sexpr.Err(diagnostics.UndefinedFunction)
	}
	n := len(fn.Params)
	vals, err := collectArguments(args, e, n, n, true)
	if err != nil {
		return err
	}

	scope := fn.Env.Child()
	for i, name := range fn.Params {
		scope.Install(name, vals[i])
	}
	body, ok := fn.Body.Cell.Slice()
	if !ok {
		return sexpr.Err(diagnostics.MalformedExpr)
	}
	return evalBody(body, scope)
}

// evalBody evaluates forms in order and returns the last value, Void when
// there are none.
func evalBody(forms []*sexpr.Value, e *env.Environment) *sexpr.Value {
	result := sexpr.Void()
	for _, f := range forms {
		result = Evaluate(f, e)
		if result.IsError() {
			return result
		}
	}
	return result
}
