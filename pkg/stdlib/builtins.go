package stdlib

import (
	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// RegisterDefaults adds all builtins and special forms.
func RegisterDefaults(r *Registry) {
	// Arithmetic
	r.Register(Builtin{Code: Add, Name: "+", Min: 0, Max: Variadic, Execute: builtinAdd, Doc: "sum of the arguments, 0 with none"})
	r.Register(Builtin{Code: Sub, Name: "-", Min: 1, Max: Variadic, Execute: builtinSub, Doc: "difference left to right; negation with one argument"})
	r.Register(Builtin{Code: Mul, Name: "*", Min: 0, Max: Variadic, Execute: builtinMul, Doc: "product of the arguments, 1 with none"})
	r.Register(Builtin{Code: Div, Name: "/", Min: 1, Max: Variadic, Execute: builtinDiv, Doc: "truncating quotient left to right; 1/n with one argument"})

	// Comparisons
	r.Register(Builtin{Code: NumEq, Name: "=", Min: 2, Max: Variadic, Execute: compare(func(a, b int64) bool { return a == b }), Doc: "true if all arguments are equal"})
	r.Register(Builtin{Code: Less, Name: "<", Min: 2, Max: Variadic, Execute: compare(func(a, b int64) bool { return a < b }), Doc: "true if the arguments are strictly increasing"})
	r.Register(Builtin{Code: Greater, Name: ">", Min: 2, Max: Variadic, Execute: compare(func(a, b int64) bool { return a > b }), Doc: "true if the arguments are strictly decreasing"})
	r.Register(Builtin{Code: LessEq, Name: "<=", Min: 2, Max: Variadic, Execute: compare(func(a, b int64) bool { return a <= b }), Doc: "true if the arguments are non-decreasing"})
	r.Register(Builtin{Code: GreaterEq, Name: ">=", Min: 2, Max: Variadic, Execute: compare(func(a, b int64) bool { return a >= b }), Doc: "true if the arguments are non-increasing"})

	// List ops
	r.Register(Builtin{Code: Cons, Name: "cons", Min: 2, Max: 2, Execute: builtinCons, Doc: "new cell with the given car and cdr"})
	r.Register(Builtin{Code: Car, Name: "car", Min: 1, Max: 1, Execute: builtinCar, Doc: "first element of a non-empty list or pair"})
	r.Register(Builtin{Code: Cdr, Name: "cdr", Min: 1, Max: 1, Execute: builtinCdr, Doc: "rest of a non-empty list, or the cdr of a pair"})
	r.Register(Builtin{Code: List, Name: "list", Min: 0, Max: Variadic, Execute: builtinList, Doc: "fresh proper list of the arguments"})
	r.Register(Builtin{Code: Length, Name: "length", Min: 1, Max: 1, Execute: builtinLength, Doc: "number of elements of a proper list"})
	r.Register(Builtin{Code: Append, Name: "append", Min: 0, Max: Variadic, Execute: builtinAppend, Doc: "concatenation of proper lists"})
	r.Register(Builtin{Code: Reverse, Name: "reverse", Min: 1, Max: 1, Execute: builtinReverse, Doc: "proper list in reverse order"})

	// Predicates
	r.Register(Builtin{Code: Not, Name: "not", Min: 1, Max: 1, Execute: builtinNot, Doc: "#t only for #f"})
	r.Register(Builtin{Code: IsPair, Name: "pair?", Min: 1, Max: 1, Execute: predicate(isPair), Doc: "non-empty cons cell"})
	r.Register(Builtin{Code: IsList, Name: "list?", Min: 1, Max: 1, Execute: predicate(isList), Doc: "proper list, including the empty list"})
	r.Register(Builtin{Code: IsNumber, Name: "number?", Min: 1, Max: 1, Execute: predicate(hasTag(sexpr.TagFixnum)), Doc: "fixnum"})
	r.Register(Builtin{Code: IsBoolean, Name: "boolean?", Min: 1, Max: 1, Execute: predicate(hasTag(sexpr.TagBool)), Doc: "#t or #f"})
	r.Register(Builtin{Code: IsVoid, Name: "void?", Min: 1, Max: 1, Execute: predicate(hasTag(sexpr.TagVoid)), Doc: "the void value"})
	r.Register(Builtin{Code: IsProcedure, Name: "procedure?", Min: 1, Max: 1, Execute: predicate(isProcedure), Doc: "builtin or closure"})
	r.Register(Builtin{Code: IsNull, Name: "null?", Min: 1, Max: 1, Execute: predicate((*sexpr.Value).IsEmptyList), Doc: "the empty list"})
	r.Register(Builtin{Code: IsSymbol, Name: "symbol?", Min: 1, Max: 1, Execute: predicate(hasTag(sexpr.TagSymbol)), Doc: "symbol"})
	r.Register(Builtin{Code: IsString, Name: "string?", Min: 1, Max: 1, Execute: predicate(hasTag(sexpr.TagString)), Doc: "string"})

	// String ops
	r.Register(Builtin{Code: StringAppend, Name: "string-append", Min: 0, Max: Variadic, Execute: builtinStringAppend, Doc: "concatenation of strings"})
	r.Register(Builtin{Code: StringLength, Name: "string-length", Min: 1, Max: 1, Execute: builtinStringLength, Doc: "length of a string in characters"})
	r.Register(Builtin{Code: StringEq, Name: "string=?", Min: 2, Max: Variadic, Execute: builtinStringEq, Doc: "true if all strings are equal"})
	r.Register(Builtin{Code: SymbolToString, Name: "symbol->string", Min: 1, Max: 1, Execute: builtinSymbolToString, Doc: "name of a symbol"})

	r.Register(Builtin{Code: Exit, Name: "exit", Min: 0, Max: 0, Execute: builtinExit, Doc: "end the session"})

	// Special forms are dispatched by the evaluator
	r.Register(Builtin{Code: Define, Name: "define", Min: 2, Max: Variadic, Special: true, Doc: "(define sym expr) or (define (name params...) body...)"})
	r.Register(Builtin{Code: SetBang, Name: "set!", Min: 2, Max: 2, Special: true, Doc: "(set! sym expr) replaces an existing binding"})
	r.Register(Builtin{Code: Lambda, Name: "lambda", Min: 2, Max: Variadic, Special: true, Doc: "(lambda (params...) body...)"})
	r.Register(Builtin{Code: And, Name: "and", Min: 0, Max: Variadic, Special: true, Doc: "first #f or the last value; #t with no arguments"})
	r.Register(Builtin{Code: Or, Name: "or", Min: 0, Max: Variadic, Special: true, Doc: "first non-#f value; #f with no arguments"})
	r.Register(Builtin{Code: Cond, Name: "cond", Min: 0, Max: Variadic, Special: true, Doc: "(cond (pred body...) ... (else body...))"})
	r.Register(Builtin{Code: Quote, Name: "quote", Min: 1, Max: 1, Special: true, Doc: "(quote datum) returns datum unevaluated"})
	r.Register(Builtin{Code: If, Name: "if", Min: 2, Max: 3, Special: true, Doc: "(if test then [else])"})
	r.Register(Builtin{Code: Begin, Name: "begin", Min: 0, Max: Variadic, Special: true, Doc: "(begin body...) returns the last value"})
}

func builtinExit(args []*sexpr.Value) *sexpr.Value {
	return sexpr.Err(diagnostics.Exit)
}
