package env

import (
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// Function is a closure record. Env is the defining scope, shared and not
// owned. Body is owned by the record.
type Function struct {
	Index  int
	Name   string
	Params []string
	Env    *Environment
	Body   *sexpr.Value
}

// FunctionTable holds every closure created during a session.
type FunctionTable struct {
	offset int
	fns    []*Function
}

// NewFunctionTable creates an empty table whose first index is offset.
func NewFunctionTable(offset int) *FunctionTable {
	return &FunctionTable{offset: offset}
}

// Add registers a new closure. The body is deep-copied.
func (t *FunctionTable) Add(name string, params []string, defining *Environment, body *sexpr.Value) *Function {
	fn := &Function{
		Index:  t.offset + len(t.fns),
		Name:   name,
		Params: append([]string(nil), params...),
		Env:    defining,
		Body:   body.DeepCopy(),
	}
	t.fns = append(t.fns, fn)
	return fn
}

// Get returns the closure with the given index.
func (t *FunctionTable) Get(index int) (*Function, bool) {
	i := index - t.offset
	if i < 0 || i >= len(t.fns) {
		return nil, false
	}
	return t.fns[i], true
}

// Len returns the number of closures.
func (t *FunctionTable) Len() int {
	return len(t.fns)
}
