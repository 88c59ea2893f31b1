// Command lisp0 is the lisp0 interpreter: an interactive REPL plus run,
// check, trace, help and config subcommands.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/thomasrohde/lisp0/pkg/config"
	"github.com/thomasrohde/lisp0/pkg/diagnostics"
	"github.com/thomasrohde/lisp0/pkg/formatter"
	"github.com/thomasrohde/lisp0/pkg/help"
	"github.com/thomasrohde/lisp0/pkg/parser"
	"github.com/thomasrohde/lisp0/pkg/runtime"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

const (
	banner     = "lisp0 v0.1 - (exit) or Ctrl-D to leave, \"lisp0 help\" for the quick reference"
	promptMain = "lisp0> "
	promptCont = "....> "
)

// loadConfig is replaced in tests.
var loadConfig = func() (*config.Config, *config.File) {
	cwd, _ := os.Getwd()
	return config.Load(cwd)
}

func main() {
	os.Exit(dispatch(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func dispatch(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, cfgFile := loadConfig()
	if len(args) == 0 {
		return cmdRepl(cfg, stdout, stderr)
	}
	switch args[0] {
	case "repl":
		return cmdRepl(cfg, stdout, stderr)
	case "run":
		return cmdRun(cfg, args[1:], stdin, stdout, stderr)
	case "check":
		return cmdCheck(cfg, args[1:], stdin, stdout, stderr)
	case "trace":
		return cmdTrace(args[1:], stdout, stderr)
	case "help", "--help", "-h":
		return cmdHelp(args[1:], stdout, stderr)
	case "config":
		return cmdConfig(cfgFile, stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		fmt.Fprintln(stderr, "commands: repl, run, check, trace, help, config")
		return 1
	}
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(cfg *config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var file string
	pretty := cfg.Pretty
	jsonOutput := false
	traceEnabled := false

	for _, arg := range args {
		switch arg {
		case "--pretty":
			pretty = true
		case "--json":
			jsonOutput = true
		case "--trace":
			traceEnabled = true
		default:
			if arg == "-" || !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(stderr, "usage: lisp0 run <file|-> [--json] [--pretty] [--trace]")
		return 1
	}

	source, filename, exitCode := readSource(file, stdin, stderr, pretty)
	if exitCode != 0 {
		return exitCode
	}

	opts := []runtime.Option{runtime.WithDisabled(cfg.DisabledNames()...)}
	if traceEnabled {
		enc := json.NewEncoder(stderr)
		opts = append(opts,
			runtime.WithRunID(fmt.Sprintf("run-%d", time.Now().UnixNano())),
			runtime.WithTrace(func(ev runtime.TraceEvent) { _ = enc.Encode(ev) }),
		)
	}
	rt := runtime.New(opts...)
	ctx := context.Background()

	if done, code := loadPrelude(ctx, rt, cfg.Prelude, stderr, pretty); done {
		return code
	}

	result, execErr := rt.Run(ctx, source, filename)
	if execErr != nil {
		return reportRunError(execErr, result, filename, stderr, pretty)
	}

	if jsonOutput {
		b, err := formatter.ValueToJSON(result.Value, rt.Env())
		if err != nil {
			fmt.Fprintf(stderr, "error serializing result: %s\n", err)
			return 4
		}
		fmt.Fprintln(stdout, string(b))
	} else if result.Value.Tag != sexpr.TagVoid {
		fmt.Fprintln(stdout, rt.Format(result.Value))
	}
	return 0
}

// -----------------------------------------------------------------------------
// check
// -----------------------------------------------------------------------------

func cmdCheck(cfg *config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var file string
	pretty := cfg.Pretty

	for _, arg := range args {
		switch arg {
		case "--pretty":
			pretty = true
		default:
			if arg == "-" || !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(stderr, "usage: lisp0 check <file|-> [--pretty]")
		return 1
	}

	source, filename, exitCode := readSource(file, stdin, stderr, pretty)
	if exitCode != 0 {
		return exitCode
	}

	rt := runtime.New(runtime.WithDisabled(cfg.DisabledNames()...))
	diags := rt.Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 2
	}

	if pretty {
		fmt.Fprintln(stdout, "No errors found.")
	} else {
		fmt.Fprintln(stdout, "[]")
	}
	return 0
}

// -----------------------------------------------------------------------------
// trace
// -----------------------------------------------------------------------------

func cmdTrace(args []string, stdout, stderr io.Writer) int {
	var file string
	textOutput := false

	for _, arg := range args {
		switch arg {
		case "--json":
			textOutput = false
		case "--text":
			textOutput = true
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(stderr, "usage: lisp0 trace <file.jsonl> [--json|--text]")
		return 1
	}

	f, err := os.Open(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.IO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, false))
		return 1
	}
	defer f.Close()

	summary := computeTraceSummary(f)
	if textOutput {
		printTraceSummaryText(stdout, summary)
	} else {
		b, _ := json.Marshal(summary)
		fmt.Fprintln(stdout, string(b))
	}
	return 0
}

// TraceSummary aggregates an NDJSON trace written by "lisp0 run --trace".
type TraceSummary struct {
	RunID        string         `json:"runId"`
	TotalEvents  int            `json:"totalEvents"`
	Forms        int            `json:"forms"`
	ParseErrors  int            `json:"parseErrors"`
	Errors       int            `json:"errors"`
	ErrorsByCode map[string]int `json:"errorsByCode"`
	StartTime    string         `json:"startTime,omitempty"`
	EndTime      string         `json:"endTime,omitempty"`
	DurationMs   float64        `json:"durationMs"`
}

func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		ErrorsByCode: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event runtime.TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}
		if summary.StartTime == "" {
			summary.StartTime = event.Timestamp
		}
		summary.EndTime = event.Timestamp

		switch event.Event {
		case runtime.TraceFormStart:
			summary.Forms++
		case runtime.TraceFormEnd:
			if code, ok := errorCode(event.Data["value"]); ok {
				summary.Errors++
				summary.ErrorsByCode[code]++
			}
		case runtime.TraceParseError:
			summary.ParseErrors++
			summary.ErrorsByCode[event.Data["code"]]++
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}
	return summary
}

// errorCode extracts E_X from a formatted "#<error E_X>" value.
func errorCode(formatted string) (string, bool) {
	const prefix = "#<error "
	if !strings.HasPrefix(formatted, prefix) || !strings.HasSuffix(formatted, ">") {
		return "", false
	}
	return formatted[len(prefix) : len(formatted)-1], true
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Forms: %d\n", s.Forms)
	fmt.Fprintf(w, "Errors: %d (%d parse)\n", s.Errors+s.ParseErrors, s.ParseErrors)
	codes := make([]string, 0, len(s.ErrorsByCode))
	for code := range s.ErrorsByCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %s: %d\n", code, s.ErrorsByCode[code])
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}

// -----------------------------------------------------------------------------
// help
// -----------------------------------------------------------------------------

func cmdHelp(args []string, stdout, stderr io.Writer) int {
	showIndex := false
	topic := ""
	for _, arg := range args {
		if arg == "--index" {
			showIndex = true
		} else if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if showIndex {
		if topic != "" && topic != "builtins" {
			fmt.Fprintln(stderr, "error: --index is only supported for the builtins topic")
			return 1
		}
		fmt.Fprint(stdout, help.BuiltinIndex())
		return 0
	}

	if topic == "" {
		fmt.Fprint(stdout, help.QUICKREF)
		return 0
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return 1
	}
	fmt.Fprint(stdout, content)
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(cfg *config.Config, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, banner)

	histPath := cfg.HistoryFile
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	rt := runtime.New(runtime.WithRunID("repl"), runtime.WithDisabled(cfg.DisabledNames()...))
	if done, code := loadPrelude(ctx, rt, cfg.Prelude, stderr, true); done {
		return code
	}
	for {
		src, ok := readByParseProbe(ln)
		if !ok || ctx.Err() != nil {
			fmt.Fprintln(stdout)
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if evalInput(ctx, rt, src, stdout, stderr) {
			return 0
		}
	}
}

// readByParseProbe reads lines until they form complete input. It returns
// false at end of input. Ctrl-C discards what has been typed so far.
func readByParseProbe(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if src := b.String(); !parser.Incomplete(src) {
			return src, true
		}
	}
}

// evalInput evaluates one REPL entry and prints every result. It reports
// whether the session should end.
func evalInput(ctx context.Context, rt *runtime.Runtime, src string, stdout, stderr io.Writer) bool {
	_, err := rt.RunEach(ctx, src, "<repl>", func(v *sexpr.Value) {
		if v.Tag != sexpr.TagVoid && !v.IsError() {
			fmt.Fprintln(stdout, rt.Format(v))
		}
	})
	if err == nil {
		return false
	}
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, true))
		return false
	}
	code, ok := diagnostics.AsCode(err)
	if !ok {
		fmt.Fprintln(stderr, err.Error())
		return ctx.Err() != nil
	}
	if code == diagnostics.Exit {
		return true
	}
	fmt.Fprintln(stderr, diagnostics.FormatDiagnostic(diagnostics.MakeDiag(code, "", nil, ""), true))
	return false
}

// -----------------------------------------------------------------------------
// config
// -----------------------------------------------------------------------------

func cmdConfig(f *config.File, stdout io.Writer) int {
	if f == nil {
		fmt.Fprintln(stdout, "{}")
		return 0
	}
	b, _ := json.MarshalIndent(f, "", "  ")
	fmt.Fprintln(stdout, string(b))
	return 0
}

// loadPrelude runs the configured prelude files in order. It reports
// whether the caller should stop, and with which exit code.
func loadPrelude(ctx context.Context, rt *runtime.Runtime, paths []string, stderr io.Writer, pretty bool) (bool, int) {
	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			diag := diagnostics.MakeDiag(diagnostics.IO, fmt.Sprintf("cannot read prelude: %s", path), nil, "")
			fmt.Fprintln(stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
			return true, 1
		}
		result, err := rt.Run(ctx, string(source), path)
		if err != nil {
			return true, reportRunError(err, result, path, stderr, pretty)
		}
	}
	return false, 0
}

// reportRunError prints a failed Run and returns the exit code: 2 for parse
// errors, 4 for evaluation errors and 0 for (exit).
func reportRunError(err error, result *runtime.Result, filename string, stderr io.Writer, pretty bool) int {
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
		return 2
	}
	code, ok := diagnostics.AsCode(err)
	if !ok {
		fmt.Fprintln(stderr, err.Error())
		return 4
	}
	if code == diagnostics.Exit {
		return 0
	}
	diag := diagnostics.MakeDiag(code, "", nil, fmt.Sprintf("in form %d of %s", result.Forms, filename))
	fmt.Fprintln(stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
	return 4
}

func readSource(file string, stdin io.Reader, stderr io.Writer, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "error reading stdin: %s\n", err)
			return "", "", 1
		}
		return string(data), "<stdin>", 0
	}

	source, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.IO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return "", "", 1
	}
	return string(source), file, 0
}
