// Package formatter renders lisp0 values as text for the REPL and the CLI.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thomasrohde/lisp0/pkg/env"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
	"github.com/thomasrohde/lisp0/pkg/stdlib"
)

// Format renders v the way it would be written in source. e is used to name
// closures and may be nil.
func Format(v *sexpr.Value, e *env.Environment) string {
	var sb strings.Builder
	write(&sb, v, e)
	return sb.String()
}

func write(sb *strings.Builder, v *sexpr.Value, e *env.Environment) {
	if v == nil {
		sb.WriteString("#<null>")
		return
	}
	switch v.Tag {
	case sexpr.TagUndefined:
		sb.WriteString("#<undefined>")
	case sexpr.TagError:
		fmt.Fprintf(sb, "#<error %s>", v.Code())
	case sexpr.TagVoid:
		sb.WriteString("#<void>")
	case sexpr.TagFixnum:
		sb.WriteString(strconv.FormatInt(v.Num, 10))
	case sexpr.TagBool:
		if v.Num != 0 {
			sb.WriteString("#t")
		} else {
			sb.WriteString("#f")
		}
	case sexpr.TagBuiltin:
		sb.WriteString("#<builtin:" + BuiltinName(v) + ">")
	case sexpr.TagSymbol:
		if v.Str != "" {
			sb.WriteString(v.Str)
		} else {
			fmt.Fprintf(sb, "#<symbol:%d>", v.Num)
		}
	case sexpr.TagFunction:
		if name := ProcedureName(v, e); name != "" {
			sb.WriteString("#<procedure:" + name + ">")
		} else {
			sb.WriteString("#<procedure>")
		}
	case sexpr.TagString:
		sb.WriteString(strconv.Quote(v.Str))
	case sexpr.TagSExpr:
		writeList(sb, v.Cell, e)
	default:
		fmt.Fprintf(sb, "#<tag %d>", v.Tag)
	}
}

func writeList(sb *strings.Builder, c *sexpr.Cell, e *env.Environment) {
	sb.WriteByte('(')
	first := true
	for !c.IsEmpty() {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		write(sb, c.Car, e)
		if c.IsPair() {
			sb.WriteString(" . ")
			write(sb, c.Cdr, e)
			break
		}
		c = c.Next()
	}
	sb.WriteByte(')')
}

// BuiltinName returns the name of a Builtin value.
func BuiltinName(v *sexpr.Value) string {
	if b, ok := stdlib.Default().Get(stdlib.Code(v.Num)); ok {
		return b.Name
	}
	return strconv.FormatInt(v.Num, 10)
}

// ProcedureName returns the name of a closure, or "" when it is anonymous
// or e is nil.
func ProcedureName(v *sexpr.Value, e *env.Environment) string {
	if e == nil {
		return ""
	}
	if fn, ok := e.Function(int(v.Num)); ok {
		return fn.Name
	}
	return ""
}
