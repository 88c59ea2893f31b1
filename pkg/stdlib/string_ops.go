package stdlib

import (
	"strings"
	"unicode/utf8"

	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

func stringArgs(args []*sexpr.Value) ([]string, *sexpr.Value) {
	out := make([]string, len(args))
	for i, a := range args {
		if a.Tag != sexpr.TagString {
			return nil, sexpr.Err(diagnostics.BadArgType)
		}
		out[i] = a.Str
	}
	return out, nil
}

// string-append s... → string
func builtinStringAppend(args []*sexpr.Value) *sexpr.Value {
	parts, err := stringArgs(args)
	if err != nil {
		return err
	}
	return sexpr.String(strings.Join(parts, ""))
}

// string-length s → number of characters
func builtinStringLength(args []*sexpr.Value) *sexpr.Value {
	parts, err := stringArgs(args)
	if err != nil {
		return err
	}
	return sexpr.Fixnum(int64(utf8.RuneCountInString(parts[0])))
}

// string=? s... → bool
func builtinStringEq(args []*sexpr.Value) *sexpr.Value {
	parts, err := stringArgs(args)
	if err != nil {
		return err
	}
	for i := 1; i < len(parts); i++ {
		if parts[i] != parts[0] {
			return sexpr.Bool(false)
		}
	}
	return sexpr.Bool(true)
}

// symbol->string sym → string
func builtinSymbolToString(args []*sexpr.Value) *sexpr.Value {
	if args[0].Tag != sexpr.TagSymbol {
		return sexpr.Err(diagnostics.NotSymbol)
	}
	return sexpr.String(args[0].Str)
}
