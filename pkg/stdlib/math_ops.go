package stdlib

import (
	"math"

	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// fixnums extracts the integer payloads, failing on the first non-number.
func fixnums(args []*sexpr.Value) ([]int64, *sexpr.Value) {
	ns := make([]int64, len(args))
	for i, a := range args {
		if a.Tag != sexpr.TagFixnum {
			return nil, sexpr.Err(diagnostics.NeedNumber)
		}
		ns[i] = a.Num
	}
	return ns, nil
}

type checkedOp func(a, b int64) (int64, diagnostics.Code)

// fold reduces ns left to right starting from acc, stopping at the first
// failing step.
func fold(acc int64, ns []int64, op checkedOp) *sexpr.Value {
	for _, n := range ns {
		var code diagnostics.Code
		acc, code = op(acc, n)
		if code != diagnostics.OK {
			return sexpr.Err(code)
		}
	}
	return sexpr.Fixnum(acc)
}

// + → sum
func builtinAdd(args []*sexpr.Value) *sexpr.Value {
	ns, err := fixnums(args)
	if err != nil {
		return err
	}
	return fold(0, ns, CheckedAdd)
}

// - n → negation, - a b... → difference
func builtinSub(args []*sexpr.Value) *sexpr.Value {
	ns, err := fixnums(args)
	if err != nil {
		return err
	}
	if len(ns) == 1 {
		return fold(0, ns, CheckedSub)
	}
	return fold(ns[0], ns[1:], CheckedSub)
}

// * → product
func builtinMul(args []*sexpr.Value) *sexpr.Value {
	ns, err := fixnums(args)
	if err != nil {
		return err
	}
	return fold(1, ns, CheckedMul)
}

// / n → 1/n, / a b... → quotient; both truncate toward zero
func builtinDiv(args []*sexpr.Value) *sexpr.Value {
	ns, err := fixnums(args)
	if err != nil {
		return err
	}
	if len(ns) == 1 {
		return fold(1, ns, CheckedDiv)
	}
	return fold(ns[0], ns[1:], CheckedDiv)
}

// CheckedAdd returns a+b or the range error the sum would cause.
func CheckedAdd(a, b int64) (int64, diagnostics.Code) {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return 0, diagnostics.FixnumOverflow
	case b < 0 && a < math.MinInt64-b:
		return 0, diagnostics.FixnumUnderflow
	}
	return a + b, diagnostics.OK
}

// CheckedSub returns a-b or the range error the difference would cause.
func CheckedSub(a, b int64) (int64, diagnostics.Code) {
	switch {
	case b < 0 && a > math.MaxInt64+b:
		return 0, diagnostics.FixnumOverflow
	case b > 0 && a < math.MinInt64+b:
		return 0, diagnostics.FixnumUnderflow
	}
	return a - b, diagnostics.OK
}

// CheckedMul returns a*b or the range error the product would cause.
func CheckedMul(a, b int64) (int64, diagnostics.Code) {
	if a == 0 || b == 0 {
		return 0, diagnostics.OK
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		if (a < 0) != (b < 0) {
			return 0, diagnostics.FixnumUnderflow
		}
		return 0, diagnostics.FixnumOverflow
	}
	return r, diagnostics.OK
}

// CheckedDiv returns a/b truncated toward zero, DivideByZero, or the
// overflow of MinInt64 / -1.
func CheckedDiv(a, b int64) (int64, diagnostics.Code) {
	if b == 0 {
		return 0, diagnostics.DivideByZero
	}
	if a == math.MinInt64 && b == -1 {
		return 0, diagnostics.FixnumOverflow
	}
	return a / b, diagnostics.OK
}

// compare builds a chained comparison. Every argument must be a number;
// adjacent pairs are then tested left to right.
func compare(rel func(a, b int64) bool) func([]*sexpr.Value) *sexpr.Value {
	return func(args []*sexpr.Value) *sexpr.Value {
		ns, err := fixnums(args)
		if err != nil {
			return err
		}
		for i := 1; i < len(ns); i++ {
			if !rel(ns[i-1], ns[i]) {
				return sexpr.Bool(false)
			}
		}
		return sexpr.Bool(true)
	}
}
