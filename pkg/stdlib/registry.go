// Package stdlib provides the lisp0 builtin registry: every builtin and
// special form, its code, name and arity, and the primitive procedures that
// operate on already evaluated arguments.
package stdlib

import (
	"sort"

	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// Code identifies a builtin. It is the payload of a Builtin-tagged value.
type Code int64

const (
	Add Code = iota
	Sub
	Mul
	Div
	NumEq
	Less
	Greater
	LessEq
	GreaterEq
	Cons
	Car
	Cdr
	List
	Not
	IsPair
	IsList
	IsNumber
	IsBoolean
	IsVoid
	IsProcedure
	IsNull
	IsSymbol
	IsString
	Length
	Append
	Reverse
	StringAppend
	StringLength
	StringEq
	SymbolToString
	Exit

	// Special forms receive their arguments unevaluated.
	Define
	SetBang
	Lambda
	And
	Or
	Cond
	Quote
	If
	Begin
)

// Variadic marks a builtin without an upper argument bound.
const Variadic = -1

// Builtin describes one builtin procedure or special form.
type Builtin struct {
	Code    Code
	Name    string
	Min     int
	Max     int // Variadic for no bound
	Special bool
	Doc     string
	Execute func(args []*sexpr.Value) *sexpr.Value // nil for special forms
}

// Value returns the Builtin-tagged value referring to b.
func (b *Builtin) Value() *sexpr.Value {
	return sexpr.Builtin(int64(b.Code))
}

// Registry holds registered builtins.
type Registry struct {
	fns    map[Code]*Builtin
	byName map[string]*Builtin
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns:    make(map[Code]*Builtin),
		byName: make(map[string]*Builtin),
	}
}

// Register adds a builtin to the registry.
func (r *Registry) Register(b Builtin) {
	r.fns[b.Code] = &b
	r.byName[b.Name] = &b
}

// Get retrieves a builtin by code.
func (r *Registry) Get(code Code) (*Builtin, bool) {
	b, ok := r.fns[code]
	return b, ok
}

// Lookup retrieves a builtin by name.
func (r *Registry) Lookup(name string) (*Builtin, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// All returns every registered builtin ordered by code.
func (r *Registry) All() []*Builtin {
	out := make([]*Builtin, 0, len(r.fns))
	for _, b := range r.fns {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

var defaults = newDefaultRegistry()

// Default returns the shared registry holding every lisp0 builtin. It must
// not be modified.
func Default() *Registry {
	return defaults
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
