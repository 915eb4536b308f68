package interp

import (
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"graphrlm.dev/core/internal/tools"
)

// DefaultOutputTruncationLimit is the default cap on combined stdout+stderr
// per spec §4.3 ("default 10 000 chars").
const DefaultOutputTruncationLimit = 10_000

// DefaultExecTimeout bounds a single Execute call against a runaway script.
// Not named by the spec directly, but required for the "not thread-safe,
// one interpreter per run" contract to fail safely rather than hang.
const DefaultExecTimeout = 10 * time.Second

// terminationSignal is panicked by the SUBMIT/FINAL/FINAL_VAR bindings to
// unwind goja's script execution immediately; Execute recovers it and
// converts it to a Terminal outcome. Any other recovered panic is treated
// as a driver-crash (spec §7, "interpreter exceptions outside user code").
type terminationSignal struct {
	payload map[string]any
}

// Interp is one run's persistent JavaScript evaluation namespace (C3).
// Not safe for concurrent use; spec §4.3 requires one interpreter per run.
type Interp struct {
	vm                *goja.Runtime
	truncationLimit   int
	execTimeout       time.Duration
	stdout            *strings.Builder
	stderr            *strings.Builder
	started           bool
}

// New constructs an interpreter with the given output truncation limit and
// per-Execute timeout (zero or less selects the defaults). Start binds the
// tool definitions and must be called before Execute.
func New(truncationLimit int, execTimeout time.Duration) *Interp {
	if truncationLimit <= 0 {
		truncationLimit = DefaultOutputTruncationLimit
	}
	if execTimeout <= 0 {
		execTimeout = DefaultExecTimeout
	}
	return &Interp{
		truncationLimit: truncationLimit,
		execTimeout:     execTimeout,
		stdout:          &strings.Builder{},
		stderr:          &strings.Builder{},
	}
}

// Start initialises the namespace: binds every tool definition, the
// termination callables, and the print/console output shims. Idempotent.
func (it *Interp) Start(defs []tools.Definition) error {
	if it.started {
		return nil
	}
	vm := goja.New()

	for _, def := range defs {
		if err := vm.Set(def.Name, def.Fn); err != nil {
			return fmt.Errorf("binding tool %q: %w", def.Name, err)
		}
	}
	it.bindTermination(vm)
	it.bindOutput(vm)

	it.vm = vm
	it.started = true
	return nil
}

// bindTermination wires SUBMIT(fields), FINAL(text), and FINAL_VAR(name) —
// spec §4.3's alternative termination forms, all collapsing to the same
// TerminalOutcome.
func (it *Interp) bindTermination(vm *goja.Runtime) {
	vm.Set("SUBMIT", func(fields map[string]any) {
		panic(terminationSignal{payload: fields})
	})
	vm.Set("FINAL", func(text string) {
		panic(terminationSignal{payload: map[string]any{"text": text}})
	})
	vm.Set("FINAL_VAR", func(name string) {
		v := vm.Get(name)
		if v == nil || goja.IsUndefined(v) {
			panic(terminationSignal{payload: map[string]any{
				"error":   "undefined-variable",
				"message": fmt.Sprintf("FINAL_VAR: %q is undefined", name),
			}})
		}
		panic(terminationSignal{payload: map[string]any{"text": fmt.Sprint(v.Export())}})
	})
}

// bindOutput gives scripts a print(...) and a console.log/console.error
// shim; goja's runtime has no real stdout, so these write into the
// interpreter's captured buffers instead.
func (it *Interp) bindOutput(vm *goja.Runtime) {
	print := func(args ...any) {
		writeArgs(it.stdout, args)
	}
	vm.Set("print", print)

	console := vm.NewObject()
	console.Set("log", func(args ...any) { writeArgs(it.stdout, args) })
	console.Set("error", func(args ...any) { writeArgs(it.stderr, args) })
	vm.Set("console", console)
}

func writeArgs(b *strings.Builder, args []any) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n")
}

// Execute updates the namespace with variables, then runs code. err is
// non-nil only for driver-crash-class failures (interpreter lifecycle
// failure outside user code); script-level failures come back as a
// RecoverableError Outcome, never as err.
func (it *Interp) Execute(code string, variables map[string]any) (outcome Outcome, err error) {
	if !it.started {
		return Outcome{}, fmt.Errorf("driver-crashed: interpreter not started")
	}

	it.stdout.Reset()
	it.stderr.Reset()

	for name, value := range variables {
		if setErr := it.vm.Set(name, value); setErr != nil {
			return Outcome{}, fmt.Errorf("driver-crashed: setting variable %q: %w", name, setErr)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(terminationSignal); ok {
				outcome = terminalOutcome(sig.payload)
				return
			}
			err = fmt.Errorf("driver-crashed: unexpected interpreter panic: %v", r)
		}
	}()

	timer := time.AfterFunc(it.execTimeout, func() {
		it.vm.Interrupt("execution-timeout")
	})
	_, runErr := it.vm.RunString(code)
	timer.Stop()

	if runErr != nil {
		if interrupted, ok := runErr.(*goja.InterruptedError); ok {
			return recoverableErrorOutcome(ErrorClassTimeout, interrupted.Error()), nil
		}
		return recoverableErrorOutcome(ErrorClassScript, runErr.Error()), nil
	}

	output, truncated := it.truncate(it.combinedOutput())
	return textOutcome(output, truncated), nil
}

// combinedOutput renders stdout/stderr per spec §4.3 ("stderr prefixed as
// [stderr] … [stdout] …").
func (it *Interp) combinedOutput() string {
	switch {
	case it.stderr.Len() > 0 && it.stdout.Len() > 0:
		return "[stderr] " + it.stderr.String() + "[stdout] " + it.stdout.String()
	case it.stderr.Len() > 0:
		return "[stderr] " + it.stderr.String()
	default:
		return it.stdout.String()
	}
}

// truncate caps output at the configured limit with a visible marker, per
// spec §4.3 ("[...truncated at N chars]").
func (it *Interp) truncate(output string) (string, bool) {
	if len(output) <= it.truncationLimit {
		return output, false
	}
	return fmt.Sprintf("%s[...truncated at %d chars]", output[:it.truncationLimit], it.truncationLimit), true
}

// Shutdown clears the namespace. The Interp is unusable after this; callers
// construct a new one for the next run.
func (it *Interp) Shutdown() {
	it.vm = nil
	it.started = false
	it.stdout.Reset()
	it.stderr.Reset()
}
