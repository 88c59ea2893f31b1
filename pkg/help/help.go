// Package help holds the lisp0 quick reference and help topics shown by
// `lisp0 help`.
package help

import (
	"fmt"
	"strings"

	"github.com/thomasrohde/lisp0/pkg/stdlib"
)

// QUICKREF is printed by `lisp0 help` with no topic.
const QUICKREF = `lisp0 v0.1 - a small Lisp interpreter

USAGE
  lisp0                          start the REPL
  lisp0 run <file|-> [--json] [--pretty] [--trace]
  lisp0 check <file|-> [--pretty]
  lisp0 trace <file.jsonl> [--json|--text]
  lisp0 help [topic] [--index]

TOPICS
  syntax       lists, atoms, comments and strings
  types        fixnums, booleans, strings, symbols, lists and pairs
  forms        define, set!, lambda, if, cond, and, or, quote, begin
  builtins     procedures available in every program
  errors       E_* codes and exit status
  repl         interactive use
  examples     short programs

Run "lisp0 help builtins --index" for one line per builtin.
`

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax":   syntaxTopic,
	"types":    typesTopic,
	"forms":    formsTopic,
	"builtins": builtinsTopic,
	"errors":   errorsTopic,
	"repl":     replTopic,
	"examples": examplesTopic,
}

// TopicList is the display order of Topics.
var TopicList = []string{"syntax", "types", "forms", "builtins", "errors", "repl", "examples"}

// MatchTopic resolves an exact topic name or a unique prefix of one.
func MatchTopic(query string) (string, string, error) {
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", query)
	default:
		return "", "", fmt.Errorf("ambiguous help topic %q: %s", query, strings.Join(matches, ", "))
	}
}

// BuiltinIndex lists every builtin with its arity and doc line.
func BuiltinIndex() string {
	var sb strings.Builder
	var procs, forms []*stdlib.Builtin
	for _, b := range stdlib.Default().All() {
		if b.Special {
			forms = append(forms, b)
		} else {
			procs = append(procs, b)
		}
	}
	sb.WriteString("PROCEDURES\n")
	for _, b := range procs {
		fmt.Fprintf(&sb, "  %-16s %-6s %s\n", b.Name, arity(b), b.Doc)
	}
	sb.WriteString("\nSPECIAL FORMS\n")
	for _, b := range forms {
		fmt.Fprintf(&sb, "  %-16s %-6s %s\n", b.Name, arity(b), b.Doc)
	}
	fmt.Fprintf(&sb, "\nTotal: %d builtins (%d procedures, %d special forms)\n", len(procs)+len(forms), len(procs), len(forms))
	return sb.String()
}

func arity(b *stdlib.Builtin) string {
	switch {
	case b.Max == stdlib.Variadic:
		return fmt.Sprintf("%d+", b.Min)
	case b.Min == b.Max:
		return fmt.Sprintf("%d", b.Min)
	default:
		return fmt.Sprintf("%d-%d", b.Min, b.Max)
	}
}

const syntaxTopic = `SYNTAX

A program is a sequence of parenthesized forms:

  (define x 10)
  (+ x 1)

Atoms:
  42  -7        fixnums (64-bit signed)
  #t  #f        booleans
  "text"        strings; escapes are \" \\ \n \t \r
  foo  list?    symbols

A bare atom at top level is an error (E_BARE_SYMBOL), and so is a
top-level () (E_EMPTY_PAREN). There is no dotted-pair syntax; pairs
are built with cons and print as (a . b).

Comments run from ; to the end of the line.
`

const typesTopic = `TYPES

  fixnum      signed 64-bit integer; overflow is an error, never a wrap
  boolean     #t and #f; only #f is false
  string      immutable text
  symbol      a name; evaluates to its binding
  list        () or a chain of cells ending in ()
  pair        a cell whose tail is not a list, e.g. (cons 1 2)
  procedure   a builtin or a closure made by lambda or define
  void        the result of define, set! and an unmatched cond

Values are copied when stored, so (set! a b) never aliases b.
`

const formsTopic = `SPECIAL FORMS

  (define name expr)             bind name in the current scope
  (define (name params...) body...)
  (set! name expr)               update the nearest existing binding
  (lambda (params...) body...)   make a closure over the current scope
  (if test then [else])
  (cond (test body...) ... (else body...))
  (and expr...)  (or expr...)    short-circuit, return the deciding value
  (quote datum)                  datum unevaluated
  (begin expr...)                evaluate in order, return the last

Arguments of special forms are not evaluated before the form runs.
`

const builtinsTopic = `BUILTINS

  arithmetic   + - * /
  comparison   = < > <= >=
  lists        cons car cdr list length append reverse
  predicates   not pair? list? number? boolean? void? procedure?
               null? symbol? string?
  strings      string-append string-length string=? symbol->string
  control      exit

Arithmetic is checked: E_FIXNUM_OVERFLOW, E_FIXNUM_UNDERFLOW and
E_DIVIDE_BY_ZERO are errors. Division truncates toward zero.
`

const errorsTopic = `ERRORS

Errors are values. The first error stops the form being evaluated and
becomes its result.

Parse errors (exit status 2):
  E_UNBALANCED_PAREN E_BARE_SYMBOL E_EMPTY_PAREN E_TOO_MANY_FORMS
  E_UNTERMINATED_STRING E_INTEGER_TOO_LOW E_INTEGER_TOO_HIGH

Evaluation errors (exit status 4):
  E_UNDEFINED_SYMBOL E_TOO_FEW_ARGS E_TOO_MANY_ARGS E_BAD_ARG_TYPE
  E_NEED_NUMBER E_NOT_SYMBOL E_FIXNUM_OVERFLOW E_FIXNUM_UNDERFLOW
  E_DIVIDE_BY_ZERO E_EMPTY_ELSE E_NONTERMINAL_ELSE E_NOT_CALLABLE
  E_MISSING_PROCEDURE E_BAD_SYNTAX E_BAD_SYMBOL E_ILLEGAL_PAIR ...

(exit) returns E_EXIT, which ends the REPL and makes run exit 0.
"lisp0 check" reports what it can find without evaluating.
`

const replTopic = `REPL

Start with "lisp0". Input continues on a "....>" prompt until the
parentheses balance. History is kept in ~/.lisp0_history.

  Ctrl-C   abandon the current input
  Ctrl-D   leave the REPL
  (exit)   leave the REPL

Definitions persist for the whole session.
`

const examplesTopic = `EXAMPLES

  (define (fact n)
    (if (= n 0) 1 (* n (fact (- n 1)))))
  (fact 10)                          ; 3628800

  (define (make-counter)
    (define count 0)
    (lambda () (set! count (+ count 1)) count))
  (define next (make-counter))
  (next) (next)                      ; 2

  (cond ((< 3 2) "less") (else "more"))   ; "more"
  (reverse (list 1 2 3))             ; (3 2 1)
`
