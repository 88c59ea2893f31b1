package stdlib

import (
	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// cons a b → list node when b is a list, dotted pair otherwise
func builtinCons(args []*sexpr.Value) *sexpr.Value {
	car, cdr := args[0].DeepCopy(), args[1].DeepCopy()
	return sexpr.List(sexpr.Cons(car, cdr))
}

// nonEmpty returns the cell of a non-empty SExpr argument.
func nonEmpty(v *sexpr.Value) (*sexpr.Cell, bool) {
	if v.Tag != sexpr.TagSExpr || v.Cell.IsEmpty() {
		return nil, false
	}
	return v.Cell, true
}

// car l → first element
func builtinCar(args []*sexpr.Value) *sexpr.Value {
	c, ok := nonEmpty(args[0])
	if !ok || c.Car == nil {
		return sexpr.Err(diagnostics.BadArgType)
	}
	return c.Car.DeepCopy()
}

// cdr l → rest of the list, or the cdr of a pair
func builtinCdr(args []*sexpr.Value) *sexpr.Value {
	c, ok := nonEmpty(args[0])
	if !ok {
		return sexpr.Err(diagnostics.BadArgType)
	}
	if c.Cdr == nil {
		return sexpr.Empty()
	}
	return c.Cdr.DeepCopy()
}

// list a... → proper list
func builtinList(args []*sexpr.Value) *sexpr.Value {
	items := make([]*sexpr.Value, len(args))
	for i, a := range args {
		items[i] = a.DeepCopy()
	}
	return sexpr.List(sexpr.FromSlice(items))
}

// length l → number of elements
func builtinLength(args []*sexpr.Value) *sexpr.Value {
	if !isList(args[0]) {
		return sexpr.Err(diagnostics.BadArgType)
	}
	return sexpr.Fixnum(int64(args[0].Cell.Len()))
}

// append l... → one list holding the elements of every argument
func builtinAppend(args []*sexpr.Value) *sexpr.Value {
	var items []*sexpr.Value
	for _, a := range args {
		if !isList(a) {
			return sexpr.Err(diagnostics.BadArgType)
		}
		vals, _ := a.Cell.Slice()
		for _, v := range vals {
			items = append(items, v.DeepCopy())
		}
	}
	return sexpr.List(sexpr.FromSlice(items))
}

// reverse l → list in reverse order
func builtinReverse(args []*sexpr.Value) *sexpr.Value {
	if !isList(args[0]) {
		return sexpr.Err(diagnostics.BadArgType)
	}
	vals, _ := args[0].Cell.Slice()
	items := make([]*sexpr.Value, len(vals))
	for i, v := range vals {
		items[len(vals)-1-i] = v.DeepCopy()
	}
	return sexpr.List(sexpr.FromSlice(items))
}
