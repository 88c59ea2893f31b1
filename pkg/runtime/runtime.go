// Package runtime provides the top-level lisp0 runtime orchestrator. A
// Runtime owns one global environment; definitions made by one Run are
// visible to the next.
package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/env"
	"github.com/thomasrohde/lisp0/pkg/evaluator"
	"github.com/thomasrohde/lisp0/pkg/formatter"
	"github.com/thomasrohde/lisp0/pkg/parser"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
	"github.com/thomasrohde/lisp0/pkg/stdlib"
	"github.com/thomasrohde/lisp0/pkg/validator"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart   TraceEventType = "run_start"
	TraceRunEnd     TraceEventType = "run_end"
	TraceFormStart  TraceEventType = "form_start"
	TraceFormEnd    TraceEventType = "form_end"
	TraceParseError TraceEventType = "parse_error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Form      int               `json:"form,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Result holds the outcome of a Run.
type Result struct {
	Value *sexpr.Value // value of the last evaluated form
	Forms int          // number of forms evaluated
}

// Runtime wires together the lisp0 components for program execution.
type Runtime struct {
	env      *env.Environment
	runID    string
	trace    func(event TraceEvent)
	disabled []string
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithEnvironment makes the runtime evaluate in e instead of a fresh
// global environment.
func WithEnvironment(e *env.Environment) Option {
	return func(rt *Runtime) {
		rt.env = e
	}
}

// WithDisabled leaves the named builtins unbound, so using one is an
// E_UNDEFINED_SYMBOL error.
func WithDisabled(names ...string) Option {
	return func(rt *Runtime) {
		rt.disabled = append(rt.disabled, names...)
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options. The environment is
// seeded with the builtins.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		runID: "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.env == nil {
		rt.env = env.NewGlobal()
	}
	rt.seed(rt.env)
	return rt
}

func (rt *Runtime) seed(e *env.Environment) {
	evaluator.SetupEnvironment(e)
	for _, name := range rt.disabled {
		if _, ok := stdlib.Default().Lookup(name); ok {
			e.Root().Install(name, sexpr.Undefined())
		}
	}
}

// Env returns the runtime's global environment.
func (rt *Runtime) Env() *env.Environment {
	return rt.env
}

func (rt *Runtime) emit(event TraceEventType, form int, data map[string]string) {
	if rt.trace != nil {
		rt.trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     rt.runID,
			Event:     event,
			Form:      form,
			Data:      data,
		})
	}
}

// Run parses every form of source and evaluates them in order. A parse
// failure returns a *DiagnosticError and evaluates nothing. An evaluation
// error stops the run and is returned as a *diagnostics.Error together with
// a Result holding the error value; definitions made by earlier forms are
// kept. ctx is checked between forms.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (*Result, error) {
	return rt.RunEach(ctx, source, filename, nil)
}

// RunEach is Run, calling each (when non-nil) with the value of every
// evaluated form, including an error value that stops the run.
func (rt *Runtime) RunEach(ctx context.Context, source, filename string, each func(*sexpr.Value)) (*Result, error) {
	rt.emit(TraceRunStart, 0, map[string]string{"file": filename})

	forms, diags := parser.ParseAll(source, filename, rt.env)
	if len(diags) > 0 {
		rt.emit(TraceParseError, 0, map[string]string{"code": diags[0].Code.String(), "message": diags[0].Message})
		return nil, &DiagnosticError{Diagnostics: diags}
	}

	res := &Result{Value: sexpr.Void()}
	for i, f := range forms {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := i + 1
		rt.emit(TraceFormStart, n, map[string]string{"form": formatter.Format(f, nil)})
		res.Value = evaluator.Evaluate(f, rt.env)
		res.Forms = n
		rt.emit(TraceFormEnd, n, map[string]string{"value": rt.Format(res.Value)})
		if each != nil {
			each(res.Value)
		}
		if res.Value.IsError() {
			return res, &diagnostics.Error{Code: res.Value.Code()}
		}
	}

	rt.emit(TraceRunEnd, 0, nil)
	return res, nil
}

// Check parses and validates source without evaluating it. It works on a
// scratch environment so the runtime's own bindings are untouched.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	scratch := env.NewGlobal()
	rt.seed(scratch)
	forms, diags := parser.ParseAll(source, filename, scratch)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(forms, scratch)
}

// Format renders v, naming closures from the runtime's environment.
func (rt *Runtime) Format(v *sexpr.Value) string {
	return formatter.Format(v, rt.env)
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
