// Package env implements lisp0 environments: symbol tables, the global
// function table and the lexical scope chain.
package env

import (
	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// Environment is a scope. The global environment has no Enclosing scope and
// owns the function table; every other scope shares it.
type Environment struct {
	Symbols   *SymbolTable
	Functions *FunctionTable
	Enclosing *Environment
}

// New creates an environment with empty tables whose indices start at the
// given offsets. A nil enclosing environment makes a global environment.
func New(symOffset, fnOffset int, enclosing *Environment) *Environment {
	e := &Environment{
		Symbols:   NewSymbolTable(symOffset),
		Enclosing: enclosing,
	}
	if enclosing == nil {
		e.Functions = NewFunctionTable(fnOffset)
	} else {
		e.Functions = enclosing.Root().Functions
	}
	return e
}

// NewGlobal creates an empty global environment.
func NewGlobal() *Environment {
	return New(0, 0, nil)
}

// Child creates a call scope enclosed by e. Its symbol indices start past
// every index currently visible from e.
func (e *Environment) Child() *Environment {
	return New(e.nextIndex(), 0, e)
}

func (e *Environment) nextIndex() int {
	n := 0
	for s := e; s != nil; s = s.Enclosing {
		if next := s.Symbols.Offset() + s.Symbols.Len(); next > n {
			n = next
		}
	}
	return n
}

// Root returns the global environment at the end of the scope chain.
func (e *Environment) Root() *Environment {
	for e.Enclosing != nil {
		e = e.Enclosing
	}
	return e
}

// IsGlobal reports whether e has no enclosing scope.
func (e *Environment) IsGlobal() bool {
	return e.Enclosing == nil
}

// Install binds name to a deep copy of value in e's own table, creating the
// entry if needed, and returns a Symbol value referencing it.
func (e *Environment) Install(name string, value *sexpr.Value) *sexpr.Value {
	entry := e.Symbols.Install(name, value)
	return sexpr.Sym(int64(entry.Index), entry.Name)
}

// LookupByName finds the nearest entry called name along the scope chain.
func (e *Environment) LookupByName(name string) (*Entry, bool) {
	for s := e; s != nil; s = s.Enclosing {
		if entry, ok := s.Symbols.Lookup(name); ok {
			return entry, true
		}
	}
	return nil, false
}

// LookupByIndex finds the nearest entry with the given index along the scope chain.
func (e *Environment) LookupByIndex(index int) (*Entry, bool) {
	for s := e; s != nil; s = s.Enclosing {
		if entry, ok := s.Symbols.LookupIndex(index); ok {
			return entry, true
		}
	}
	return nil, false
}

// resolve finds the entry a Symbol value refers to as seen from e. Names are
// resolved lexically so that bindings in inner scopes shadow outer ones.
func (e *Environment) resolve(sym *sexpr.Value) (*Entry, bool) {
	name := sym.Str
	if name == "" {
		entry, ok := e.LookupByIndex(int(sym.Num))
		if !ok {
			return nil, false
		}
		name = entry.Name
	}
	return e.LookupByName(name)
}

// ValueOf dereferences a Symbol value to a copy of its current binding.
func (e *Environment) ValueOf(sym *sexpr.Value) *sexpr.Value {
	if sym.Tag != sexpr.TagSymbol {
		return sexpr.Err(diagnostics.NotSymbol)
	}
	entry, ok := e.resolve(sym)
	if !ok {
		return sexpr.Err(diagnostics.BadSymbol)
	}
	if entry.Value.Tag == sexpr.TagUndefined {
		return sexpr.Err(diagnostics.UndefinedSymbol)
	}
	return entry.Value.DeepCopy()
}

// Declared reports whether sym names an entry visible from e.
func (e *Environment) Declared(sym *sexpr.Value) bool {
	_, ok := e.resolve(sym)
	return ok
}

// Set replaces the binding sym refers to, in whichever scope owns it.
// It returns an Error value when the binding does not exist or was never
// assigned.
func (e *Environment) Set(sym *sexpr.Value, value *sexpr.Value) *sexpr.Value {
	entry, ok := e.resolve(sym)
	if !ok {
		return sexpr.Err(diagnostics.BadSymbol)
	}
	if entry.Value.Tag == sexpr.TagUndefined {
		return sexpr.Err(diagnostics.UndefinedSymbol)
	}
	entry.replace(value)
	return sexpr.Void()
}

// AddFunction registers a closure in the global function table.
func (e *Environment) AddFunction(name string, params []string, defining *Environment, body *sexpr.Value) *Function {
	return e.Functions.Add(name, params, defining, body)
}

// Function returns the closure record with the given index.
func (e *Environment) Function(index int) (*Function, bool) {
	return e.Functions.Get(index)
}

// Merge commits the entries of a temporary table into e's own table. The
// temporary table must have been created with an offset at e's current
// length so indices are already disjoint.
func (e *Environment) Merge(tmp *SymbolTable) {
	for _, entry := range tmp.entries {
		e.Symbols.adopt(entry)
	}
}
