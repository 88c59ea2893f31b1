package stdlib

import (
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// not x → #t only for #f
func builtinNot(args []*sexpr.Value) *sexpr.Value {
	return sexpr.Bool(args[0].IsFalse())
}

func predicate(test func(*sexpr.Value) bool) func([]*sexpr.Value) *sexpr.Value {
	return func(args []*sexpr.Value) *sexpr.Value {
		return sexpr.Bool(test(args[0]))
	}
}

func hasTag(tag sexpr.Tag) func(*sexpr.Value) bool {
	return func(v *sexpr.Value) bool { return v.Tag == tag }
}

func isPair(v *sexpr.Value) bool {
	return v.Tag == sexpr.TagSExpr && !v.Cell.IsEmpty()
}

func isList(v *sexpr.Value) bool {
	return v.Tag == sexpr.TagSExpr && v.Cell.IsProperList()
}

func isProcedure(v *sexpr.Value) bool {
	return v.Tag == sexpr.TagBuiltin || v.Tag == sexpr.TagFunction
}
