// Package sexpr defines the lisp0 tagged values and cons cells shared by the
// parser and the evaluator.
//
// A compound value (SExpr) exclusively owns the cell chain it points to. Code
// that keeps a value beyond the call that produced it must DeepCopy it first;
// Copy only duplicates the payload reference and leaves ownership to the
// caller.
package sexpr

import (
	"github.com/thomasrohde/lisp0/pkg/diagnostics"
)

// Tag discriminates the payload of a Value.
type Tag uint8

const (
	TagUndefined Tag = iota
	TagError
	TagVoid
	TagFixnum
	TagBool
	TagBuiltin
	TagSymbol
	TagSExpr
	TagFunction
	TagString
)

var tagNames = []string{
	TagUndefined: "undefined",
	TagError:     "error",
	TagVoid:      "void",
	TagFixnum:    "fixnum",
	TagBool:      "bool",
	TagBuiltin:   "builtin",
	TagSymbol:    "symbol",
	TagSExpr:     "sexpr",
	TagFunction:  "function",
	TagString:    "string",
}

func (t Tag) String() string {
	if int(t) >= len(tagNames) {
		return "invalid"
	}
	return tagNames[t]
}

// IsAtomic reports whether values of this tag have a plain integer payload
// that is always safe to duplicate.
func (t Tag) IsAtomic() bool {
	return t != TagSExpr && t != TagString
}

// Value is a tagged value.
//
// Num holds fixnums, booleans (0 or 1), error codes and builtin, symbol and
// function indices. Cell is the payload of SExpr values and Str the payload of
// String values. Symbol values also carry their name in Str.
type Value struct {
	Tag  Tag
	Num  int64
	Cell *Cell
	Str  string
}

// New constructs a compound value owning cell.
func New(tag Tag, cell *Cell) *Value {
	return &Value{Tag: tag, Cell: cell}
}

// Atom constructs a value with an integer payload.
func Atom(tag Tag, n int64) *Value {
	return &Value{Tag: tag, Num: n}
}

// Fixnum constructs a fixnum.
func Fixnum(n int64) *Value {
	return Atom(TagFixnum, n)
}

// Bool constructs a boolean.
func Bool(b bool) *Value {
	if b {
		return Atom(TagBool, 1)
	}
	return Atom(TagBool, 0)
}

// Err constructs an Error-tagged value carrying code.
func Err(code diagnostics.Code) *Value {
	return Atom(TagError, int64(code))
}

// Void constructs the value returned by forms evaluated for effect.
func Void() *Value {
	return Atom(TagVoid, 0)
}

// Undefined constructs a placeholder value for a declared but unassigned symbol.
func Undefined() *Value {
	return Atom(TagUndefined, 0)
}

// Builtin constructs a reference to builtin code.
func Builtin(code int64) *Value {
	return Atom(TagBuiltin, code)
}

// Function constructs a reference to a closure record.
func Function(index int64) *Value {
	return Atom(TagFunction, index)
}

// Sym constructs a reference to the symbol table entry index named name.
func Sym(index int64, name string) *Value {
	return &Value{Tag: TagSymbol, Num: index, Str: name}
}

// String constructs a string value.
func String(s string) *Value {
	return &Value{Tag: TagString, Str: s}
}

// List wraps cell in an SExpr value.
func List(cell *Cell) *Value {
	return New(TagSExpr, cell)
}

// Empty constructs a fresh empty list.
func Empty() *Value {
	return List(&Cell{})
}

// Copy duplicates v including its payload reference. For SExpr values the
// copy aliases the same cells.
func (v *Value) Copy() *Value {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// DeepCopy duplicates v and, for SExpr values, the whole cell graph it owns.
func (v *Value) DeepCopy() *Value {
	if v == nil {
		return nil
	}
	c := *v
	if v.Tag == TagSExpr && v.Cell != nil {
		c.Cell = v.Cell.DeepCopy()
	}
	return &c
}

// IsError reports whether v is an Error-tagged value.
func (v *Value) IsError() bool {
	return v != nil && v.Tag == TagError
}

// Code returns the error code of an Error-tagged value.
func (v *Value) Code() diagnostics.Code {
	if !v.IsError() {
		return diagnostics.OK
	}
	return diagnostics.Code(v.Num)
}

// IsFalse reports whether v is the #f literal, the only false value.
func (v *Value) IsFalse() bool {
	return v != nil && v.Tag == TagBool && v.Num == 0
}

// IsEmptyList reports whether v is an SExpr holding the empty list.
func (v *Value) IsEmptyList() bool {
	return v != nil && v.Tag == TagSExpr && v.Cell.IsEmpty()
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagSExpr:
		return equalCells(a.Cell, b.Cell)
	case TagString:
		return a.Str == b.Str
	default:
		return a.Num == b.Num
	}
}

func equalCells(a, b *Cell) bool {
	for {
		if a.IsEmpty() || b.IsEmpty() {
			return a.IsEmpty() && b.IsEmpty()
		}
		if !Equal(a.Car, b.Car) {
			return false
		}
		if a.IsPair() || b.IsPair() {
			return Equal(a.Cdr, b.Cdr)
		}
		a, b = a.Next(), b.Next()
	}
}
