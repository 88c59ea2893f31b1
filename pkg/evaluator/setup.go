package evaluator

import (
	"github.com/thomasrohde/lisp0/pkg/env"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
	"github.com/thomasrohde/lisp0/pkg/stdlib"
)

// SetupEnvironment seeds the global environment of e with every builtin and
// the constants null, #t, #f and else. Calling it again restores the same
// bindings.
func SetupEnvironment(e *env.Environment) {
	root := e.Root()
	for _, b := range stdlib.Default().All() {
		root.Install(b.Name, b.Value())
	}
	root.Install("null", sexpr.Empty())
	root.Install("#t", sexpr.Bool(true))
	root.Install("#f", sexpr.Bool(false))
	root.Install(ElseName, sexpr.Undefined())
}
