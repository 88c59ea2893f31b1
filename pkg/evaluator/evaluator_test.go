package evaluator_test

import (
	"testing"

	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/env"
	"github.com/thomasrohde/lisp0/pkg/evaluator"
	"github.com/thomasrohde/lisp0/pkg/parser"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// --- helpers ---

// newEnv returns a global environment seeded with the builtins.
func newEnv() *env.Environment {
	e := env.NewGlobal()
	evaluator.SetupEnvironment(e)
	return e
}

// evalIn parses every form of src into e and evaluates them in order,
// returning the last value. Evaluation stops at the first error value.
func evalIn(t *testing.T, e *env.Environment, src string) *sexpr.Value {
	t.Helper()
	forms, diags := parser.ParseAll(src, "test.scm", e)
	if len(diags) > 0 {
		t.Fatalf("parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
	}
	result := sexpr.Void()
	for _, f := range forms {
		result = evaluator.Evaluate(f, e)
		if result.IsError() {
			return result
		}
	}
	return result
}

// run evaluates src in a fresh environment.
func run(t *testing.T, src string) *sexpr.Value {
	t.Helper()
	return evalIn(t, newEnv(), src)
}

// expectFixnum asserts v is a Fixnum with the expected value.
func expectFixnum(t *testing.T, v *sexpr.Value, expected int64) {
	t.Helper()
	if v.Tag != sexpr.TagFixnum {
		t.Fatalf("expected fixnum, got %s (%s)", v.Tag, v.Code())
	}
	if v.Num != expected {
		t.Errorf("got %d, want %d", v.Num, expected)
	}
}

// expectBool asserts v is a Bool with the expected value.
func expectBool(t *testing.T, v *sexpr.Value, expected bool) {
	t.Helper()
	if v.Tag != sexpr.TagBool {
		t.Fatalf("expected bool, got %s (%s)", v.Tag, v.Code())
	}
	if (v.Num != 0) != expected {
		t.Errorf("got %v, want %v", v.Num != 0, expected)
	}
}

// expectError asserts v is an Error value with the expected code.
func expectError(t *testing.T, v *sexpr.Value, expected diagnostics.Code) {
	t.Helper()
	if !v.IsError() {
		t.Fatalf("expected error %s, got %s %d", expected, v.Tag, v.Num)
	}
	if v.Code() != expected {
		t.Errorf("error code = %s, want %s", v.Code(), expected)
	}
}

// expectList asserts v is a proper list of the given fixnums.
func expectList(t *testing.T, v *sexpr.Value, expected ...int64) {
	t.Helper()
	if v.Tag != sexpr.TagSExpr {
		t.Fatalf("expected list, got %s (%s)", v.Tag, v.Code())
	}
	vals, ok := v.Cell.Slice()
	if !ok {
		t.Fatalf("expected proper list")
	}
	if len(vals) != len(expected) {
		t.Fatalf("got %d elements, want %d", len(vals), len(expected))
	}
	for i, want := range expected {
		if vals[i].Tag != sexpr.TagFixnum || vals[i].Num != want {
			t.Errorf("element %d = %s %d, want %d", i, vals[i].Tag, vals[i].Num, want)
		}
	}
}

// --- 1. End-to-end scenarios ---

func TestScenarios(t *testing.T) {
	expectFixnum(t, run(t, "(+ 1 2 3 4)"), 10)
	expectList(t, run(t, "(cons 1 (cons 2 null))"), 1, 2)
	expectFixnum(t, run(t, "(define (double x) (* x 2)) (double 21)"), 42)
	expectError(t, run(t, "(/ 5 0)"), diagnostics.DivideByZero)
	expectFixnum(t, run(t, "(cond (#f 1) (else 2))"), 2)
	expectBool(t, run(t, "(pair? null)"), false)
}

// --- 2. Dispatch ---

func TestEvaluate_Atoms(t *testing.T) {
	e := newEnv()
	expectFixnum(t, evaluator.Evaluate(sexpr.Fixnum(7), e), 7)
	expectBool(t, evaluator.Evaluate(sexpr.Bool(true), e), true)
	expectError(t, evaluator.Evaluate(sexpr.Undefined(), e), diagnostics.UndefinedSymbol)
	expectError(t, evaluator.Evaluate(sexpr.Err(diagnostics.BadSyntax), e), diagnostics.BadSyntax)
	if v := evaluator.Evaluate(sexpr.Void(), e); v.Tag != sexpr.TagVoid {
		t.Errorf("void evaluated to %s", v.Tag)
	}
	if v := evaluator.Evaluate(sexpr.String("s"), e); v.Tag != sexpr.TagString || v.Str != "s" {
		t.Errorf("string evaluated to %+v", v)
	}
	expectError(t, evaluator.Evaluate(nil, e), diagnostics.NullExpr)
}

func TestEvaluate_EmptyList(t *testing.T) {
	expectError(t, evaluator.Evaluate(sexpr.Empty(), newEnv()), diagnostics.MissingProcedure)
}

func TestEvaluate_MalformedCell(t *testing.T) {
	v := sexpr.List(&sexpr.Cell{Cdr: sexpr.Empty()})
	expectError(t, evaluator.Evaluate(v, newEnv()), diagnostics.MalformedExpr)
}

func TestEvaluate_IllegalPair(t *testing.T) {
	e := newEnv()
	plus, _ := e.LookupByName("+")
	form := sexpr.List(sexpr.Cons(sexpr.Sym(int64(plus.Index), "+"), sexpr.Fixnum(1)))
	expectError(t, evaluator.Evaluate(form, e), diagnostics.IllegalPair)
}

func TestEvaluate_NotCallable(t *testing.T) {
	expectError(t, run(t, "(1 2 3)"), diagnostics.NotCallable)
	expectError(t, run(t, "(#t)"), diagnostics.NotCallable)
}

func TestEvaluate_UndefinedSymbol(t *testing.T) {
	expectError(t, run(t, "(+ nope 1)"), diagnostics.UndefinedSymbol)
	expectError(t, run(t, "(else)"), diagnostics.UndefinedSymbol)
}

func TestEvaluate_OperatorErrorPropagates(t *testing.T) {
	expectError(t, run(t, "((car null) 1)"), diagnostics.BadArgType)
}

// --- 3. Arithmetic ---

func TestArithmetic_Identities(t *testing.T) {
	expectFixnum(t, run(t, "(+)"), 0)
	expectFixnum(t, run(t, "(*)"), 1)
	expectFixnum(t, run(t, "(- 5)"), -5)
	expectFixnum(t, run(t, "(/ 2)"), 0)
}

func TestArithmetic_Nested(t *testing.T) {
	expectFixnum(t, run(t, "(- (* 3 (+ 1 2)) (/ 10 5))"), 7)
}

func TestArithmetic_NestedErrorBeforeZeroCheck(t *testing.T) {
	expectError(t, run(t, "(/ (car null) 0)"), diagnostics.BadArgType)
}

func TestArithmetic_Overflow(t *testing.T) {
	expectError(t, run(t, "(+ 9223372036854775807 1)"), diagnostics.FixnumOverflow)
	expectError(t, run(t, "(- -9223372036854775808 1)"), diagnostics.FixnumUnderflow)
	expectError(t, run(t, "(* 4611686018427387904 2)"), diagnostics.FixnumOverflow)
}

func TestArithmetic_TypeError(t *testing.T) {
	expectError(t, run(t, "(+ 1 #t)"), diagnostics.NeedNumber)
	expectError(t, run(t, "(-)"), diagnostics.TooFewArgs)
}

// --- 4. Comparisons ---

func TestComparison_Chained(t *testing.T) {
	expectBool(t, run(t, "(< 1 2 3)"), true)
	expectBool(t, run(t, "(< 1 3 2)"), false)
	expectBool(t, run(t, "(= 2 2 2)"), true)
	expectBool(t, run(t, "(>= 3 3 1)"), true)
}

func TestComparison_Arity(t *testing.T) {
	expectError(t, run(t, "(< 1)"), diagnostics.TooFewArgs)
}

func TestComparison_LateTypeError(t *testing.T) {
	expectError(t, run(t, "(< 2 1 null)"), diagnostics.NeedNumber)
}

// --- 5. Short-circuit ---

func TestAnd_ShortCircuit(t *testing.T) {
	expectError(t, run(t, "(and (/ 1 0) #f)"), diagnostics.DivideByZero)
	expectBool(t, run(t, "(and #f (/ 1 0))"), false)
	expectFixnum(t, run(t, "(and 1 2 3)"), 3)
	expectBool(t, run(t, "(and)"), true)
}

func TestOr_ShortCircuit(t *testing.T) {
	expectBool(t, run(t, "(or #t (/ 1 0))"), true)
	expectFixnum(t, run(t, "(or #f 7)"), 7)
	expectBool(t, run(t, "(or #f #f)"), false)
	expectBool(t, run(t, "(or)"), false)
}

func TestNot_OnlyFalseIsFalse(t *testing.T) {
	expectBool(t, run(t, "(not #f)"), true)
	expectBool(t, run(t, "(not 0)"), false)
	expectBool(t, run(t, "(not null)"), false)
}

// --- 6. define / set! / scoping ---

func TestDefine_Variable(t *testing.T) {
	e := newEnv()
	if v := evalIn(t, e, "(define x 10)"); v.Tag != sexpr.TagVoid {
		t.Fatalf("define returned %s", v.Tag)
	}
	expectFixnum(t, evalIn(t, e, "(+ x 1)"), 11)
	evalIn(t, e, "(define x 20)")
	expectFixnum(t, evalIn(t, e, "(+ x 1)"), 21)
}

func TestDefine_FunctionIsNamed(t *testing.T) {
	e := newEnv()
	evalIn(t, e, "(define (sq x) (* x x))")
	f := evalIn(t, e, "(begin sq)")
	if f.Tag != sexpr.TagFunction {
		t.Fatalf("sq is %s", f.Tag)
	}
	fn, ok := e.Function(int(f.Num))
	if !ok || fn.Name != "sq" {
		t.Errorf("closure record = %+v", fn)
	}

	evalIn(t, e, "(define cube (lambda (x) (* x x x)))")
	c := evalIn(t, e, "(begin cube)")
	if fn, _ := e.Function(int(c.Num)); fn.Name != "cube" {
		t.Errorf("lambda bound by define should take its name, got %q", fn.Name)
	}
}

func TestDefine_Errors(t *testing.T) {
	expectError(t, run(t, "(define 1 2)"), diagnostics.NotSymbol)
	expectError(t, run(t, "(define x)"), diagnostics.TooFewArgs)
	expectError(t, run(t, "(define x 1 2)"), diagnostics.TooManyArgs)
	expectError(t, run(t, "(define (1 x) x)"), diagnostics.BadSyntax)
	expectError(t, run(t, "(define (f 1) 1)"), diagnostics.NotSymbol)
	expectError(t, run(t, "(define x (/ 1 0))"), diagnostics.DivideByZero)
}

func TestDefine_UndeclaredTarget(t *testing.T) {
	e := newEnv()
	define, _ := e.LookupByName("define")
	form := sexpr.List(sexpr.FromSlice([]*sexpr.Value{
		sexpr.Sym(int64(define.Index), "define"),
		sexpr.Sym(9999, "ghost"),
		sexpr.Fixnum(1),
	}))
	expectError(t, evaluator.Evaluate(form, e), diagnostics.BadSymbol)
}

func TestScoping_InnerDefineShadows(t *testing.T) {
	e := newEnv()
	evalIn(t, e, "(define a 1)")
	evalIn(t, e, "(define (f) (cond (#t (define a 2) a)))")
	expectFixnum(t, evalIn(t, e, "(f)"), 2)
	expectFixnum(t, evalIn(t, e, "(begin a)"), 1)
}

func TestScoping_SetMutatesGlobal(t *testing.T) {
	e := newEnv()
	evalIn(t, e, "(define a 1)")
	evalIn(t, e, "(define (g) (cond (#t (set! a 2) a)))")
	expectFixnum(t, evalIn(t, e, "(g)"), 2)
	expectFixnum(t, evalIn(t, e, "(begin a)"), 2)
}

func TestScoping_Lexical(t *testing.T) {
	e := newEnv()
	evalIn(t, e, "(define (adder n) (lambda (x) (+ x n)))")
	evalIn(t, e, "(define add5 (adder 5))")
	evalIn(t, e, "(define n 100)")
	expectFixnum(t, evalIn(t, e, "(add5 1)"), 6)
}

func TestScoping_ParametersDoNotLeak(t *testing.T) {
	e := newEnv()
	evalIn(t, e, "(define (id y) y)")
	expectFixnum(t, evalIn(t, e, "(id 3)"), 3)
	expectError(t, evalIn(t, e, "(begin y)"), diagnostics.UndefinedSymbol)
}

func TestScoping_Counter(t *testing.T) {
	e := newEnv()
	evalIn(t, e, `
(define (make-counter)
  (define count 0)
  (lambda () (set! count (+ count 1)) count))
(define c1 (make-counter))
(define c2 (make-counter))
(c1)
(c1)`)
	expectFixnum(t, evalIn(t, e, "(c1)"), 3)
	expectFixnum(t, evalIn(t, e, "(c2)"), 1)
}

func TestSet_Errors(t *testing.T) {
	expectError(t, run(t, "(set! 1 2)"), diagnostics.NotSymbol)
	expectError(t, run(t, "(set! fresh 2)"), diagnostics.UndefinedSymbol)
	expectError(t, run(t, "(set! x)"), diagnostics.TooFewArgs)
}

func TestSet_ReturnsVoid(t *testing.T) {
	if v := run(t, "(define x 1) (set! x 5)"); v.Tag != sexpr.TagVoid {
		t.Errorf("set! returned %s", v.Tag)
	}
}

func TestPartialSideEffectsKept(t *testing.T) {
	e := newEnv()
	expectError(t, evalIn(t, e, "(begin (define kept 1) (car null))"), diagnostics.BadArgType)
	expectFixnum(t, evalIn(t, e, "(begin kept)"), 1)
}

// --- 7. Closures ---

func TestLambda_Immediate(t *testing.T) {
	expectFixnum(t, run(t, "((lambda (x y) (+ x y)) 3 4)"), 7)
	expectFixnum(t, run(t, "((lambda () 9))"), 9)
}

func TestLambda_MultipleBodyForms(t *testing.T) {
	expectFixnum(t, run(t, "((lambda (x) (+ x 1) (* x 10)) 2)"), 20)
}

func TestLambda_Arity(t *testing.T) {
	expectError(t, run(t, "((lambda (x y) x) 1)"), diagnostics.TooFewArgs)
	expectError(t, run(t, "((lambda (x y) x) 1 2 3)"), diagnostics.TooManyArgs)
}

func TestLambda_DuplicateParamsLaterWins(t *testing.T) {
	expectFixnum(t, run(t, "((lambda (x x) x) 1 2)"), 2)
}

func TestLambda_BadParams(t *testing.T) {
	expectError(t, run(t, "(lambda x x)"), diagnostics.BadSyntax)
	expectError(t, run(t, "(lambda (1) 1)"), diagnostics.NotSymbol)
	expectError(t, run(t, "(lambda (x))"), diagnostics.TooFewArgs)
}

func TestLambda_Recursion(t *testing.T) {
	src := `
(define (fact n)
  (if (= n 0) 1 (* n (fact (- n 1)))))
(fact 10)`
	expectFixnum(t, run(t, src), 3628800)
}

func TestLambda_HigherOrder(t *testing.T) {
	src := `
(define (map f l)
  (cond ((null? l) null)
        (else (cons (f (car l)) (map f (cdr l))))))
(map (lambda (x) (* x x)) (list 1 2 3))`
	expectList(t, run(t, src), 1, 4, 9)
}

func TestLambda_ArgumentErrorStopsCall(t *testing.T) {
	e := newEnv()
	evalIn(t, e, "(define hits 0)")
	evalIn(t, e, "(define (touch) (set! hits (+ hits 1)) hits)")
	expectError(t, evalIn(t, e, "((lambda (a b c) a) (touch) (/ 1 0) (touch))"), diagnostics.DivideByZero)
	expectFixnum(t, evalIn(t, e, "(begin hits)"), 1)
}

func TestLambda_ArgumentsAreCopies(t *testing.T) {
	e := newEnv()
	evalIn(t, e, "(define l (list 1 2))")
	evalIn(t, e, "(define (clobber x) (set! x 0) x)")
	expectFixnum(t, evalIn(t, e, "(clobber l)"), 0)
	expectList(t, evalIn(t, e, "(begin l)"), 1, 2)
}

// --- 8. Arity enforcement for builtins ---

func TestBuiltin_Arity(t *testing.T) {
	expectError(t, run(t, "(car)"), diagnostics.TooFewArgs)
	expectError(t, run(t, "(car (cons 1 2) (cons 3 4))"), diagnostics.TooManyArgs)
	expectError(t, run(t, "(quote)"), diagnostics.TooFewArgs)
	expectError(t, run(t, "(exit 1)"), diagnostics.TooManyArgs)
}

// --- 9. cond ---

func TestCond_FirstTruthyWins(t *testing.T) {
	expectFixnum(t, run(t, "(cond (#f 1) (0 2) (#t 3))"), 2)
}

func TestCond_PredicateOnlyClause(t *testing.T) {
	expectFixnum(t, run(t, "(cond (#f) (42))"), 42)
}

func TestCond_NoMatchIsVoid(t *testing.T) {
	if v := run(t, "(cond (#f 1))"); v.Tag != sexpr.TagVoid {
		t.Errorf("got %s, want void", v.Tag)
	}
	if v := run(t, "(cond)"); v.Tag != sexpr.TagVoid {
		t.Errorf("empty cond: got %s, want void", v.Tag)
	}
}

func TestCond_ElseErrors(t *testing.T) {
	expectError(t, run(t, "(cond (else 1) (#t 2))"), diagnostics.NonterminalElse)
	expectError(t, run(t, "(cond (#t 1) (else))"), diagnostics.EmptyElse)
}

func TestCond_ValidatedBeforeEvaluation(t *testing.T) {
	e := newEnv()
	evalIn(t, e, "(define x 1)")
	expectError(t, evalIn(t, e, "(cond ((set! x 2) 1) (else) )"), diagnostics.EmptyElse)
	expectFixnum(t, evalIn(t, e, "(begin x)"), 1)
}

func TestCond_BadClause(t *testing.T) {
	expectError(t, run(t, "(cond 1)"), diagnostics.BadSyntax)
}

func TestCond_MultipleBodies(t *testing.T) {
	expectFixnum(t, run(t, "(cond (#t 1 2 3))"), 3)
}

// --- 10. quote / if / begin ---

func TestQuote(t *testing.T) {
	expectList(t, run(t, "(quote (1 2 3))"), 1, 2, 3)
	v := run(t, "(quote foo)")
	if v.Tag != sexpr.TagSymbol || v.Str != "foo" {
		t.Errorf("(quote foo) = %+v", v)
	}
	expectBool(t, run(t, "(symbol? (quote foo))"), true)
}

func TestQuote_IsACopy(t *testing.T) {
	e := newEnv()
	evalIn(t, e, "(define (q) (quote (1 2)))")
	first := evalIn(t, e, "(q)")
	first.Cell.Car.Num = 99
	expectList(t, evalIn(t, e, "(q)"), 1, 2)
}

func TestIf(t *testing.T) {
	expectFixnum(t, run(t, "(if #t 1 2)"), 1)
	expectFixnum(t, run(t, "(if #f 1 2)"), 2)
	expectFixnum(t, run(t, "(if 0 1 2)"), 1)
	if v := run(t, "(if #f 1)"); v.Tag != sexpr.TagVoid {
		t.Errorf("one-armed if: got %s", v.Tag)
	}
	expectFixnum(t, run(t, "(if #t 1 (/ 1 0))"), 1)
}

func TestBegin(t *testing.T) {
	expectFixnum(t, run(t, "(begin 1 2 3)"), 3)
	if v := run(t, "(begin)"); v.Tag != sexpr.TagVoid {
		t.Errorf("empty begin: got %s", v.Tag)
	}
}

// --- 11. Lists and predicates ---

func TestList(t *testing.T) {
	expectList(t, run(t, "(list 1 (+ 1 1) 3)"), 1, 2, 3)
	expectList(t, run(t, "(cdr (list 1 2 3))"), 2, 3)
	expectFixnum(t, run(t, "(car (cdr (list 1 2 3)))"), 2)
	expectBool(t, run(t, "(null? (cdr (list 1)))"), true)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"(pair? (cons 1 2))", true},
		{"(list? (cons 1 2))", false},
		{"(list? (list 1 2))", true},
		{"(list? null)", true},
		{"(null? null)", true},
		{"(number? 1)", true},
		{"(boolean? #f)", true},
		{"(void? (define z 1))", true},
		{"(procedure? car)", true},
		{"(procedure? (lambda (x) x))", true},
		{"(procedure? 1)", false},
		{`(string? "s")`, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expectBool(t, run(t, tt.src), tt.want)
		})
	}
}

// --- 12. Environment setup ---

func TestSetupEnvironment_Idempotent(t *testing.T) {
	e := newEnv()
	n := e.Symbols.Len()
	evaluator.SetupEnvironment(e)
	if e.Symbols.Len() != n {
		t.Errorf("second setup grew the table from %d to %d", n, e.Symbols.Len())
	}
	for _, name := range []string{"+", "cond", "null", "#t", "#f", "else"} {
		if _, ok := e.LookupByName(name); !ok {
			t.Errorf("%s not installed", name)
		}
	}
	entry, _ := e.LookupByName("else")
	if entry.Value.Tag != sexpr.TagUndefined {
		t.Errorf("else should be undefined, got %s", entry.Value.Tag)
	}
}

func TestExit(t *testing.T) {
	expectError(t, run(t, "(exit)"), diagnostics.Exit)
}
