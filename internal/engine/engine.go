// Package engine compiles and runs untrusted script text against the
// per-run capability surface, and turns every possible outcome into a
// terminal Result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/loykin/apiscript/internal/bridge"
	"github.com/loykin/apiscript/internal/common"
	"github.com/loykin/apiscript/internal/state"
)

const (
	// DefaultTimeout bounds one run's wall-clock time.
	DefaultTimeout = 10 * time.Second

	// maxCallStackSize limits VM stack depth to stop runaway recursion.
	maxCallStackSize = 512

	timeoutInterrupt = "timeout"
	cancelInterrupt  = "cancelled"
)

// Engine executes script runs. It holds no per-run state, so one Engine
// value is safe to use from many goroutines; every run gets a fresh VM and
// fresh working copies.
type Engine struct {
	// Timeout bounds a single run; zero or negative means DefaultTimeout.
	Timeout time.Duration
}

// New returns an Engine with the default run timeout.
func New() *Engine {
	return &Engine{Timeout: DefaultTimeout}
}

// Run executes script against the context and returns a terminal Result.
// The engine never lets an exception cross its boundary: compile errors,
// uncaught top-level throws, timeouts and caller cancellation all come back
// as a Result with Succeeded=false and a classified ErrorKind.
func (e *Engine) Run(ctx context.Context, script string, sc state.Context, kind state.Kind) state.Result {
	logger := common.GetLogger().WithComponent("engine")

	// Empty scripts short-circuit without touching the compiler.
	if strings.TrimSpace(script) == "" {
		req, env, vars := sc.Snapshot()
		return assemble(req, env, vars, []state.LogEntry{}, emptyOutcomes(kind), true, "", "")
	}

	prog, err := goja.Compile("script", script, false)
	if err != nil {
		logger.Debug("script failed to compile", "error", err)
		return e.discarded(sc, kind, nil, state.ErrorKindCompile, err.Error())
	}

	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallStackSize)
	harden(vm)

	br := bridge.New(vm, sc, kind)
	if err := br.Install(); err != nil {
		return e.discarded(sc, kind, nil, state.ErrorKindRuntime, fmt.Sprintf("failed to install capability surface: %v", err))
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.AfterFunc(timeout, func() { vm.Interrupt(timeoutInterrupt) })
	defer timer.Stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(cancelInterrupt)
		case <-done:
		}
	}()

	value, runErr := vm.RunProgram(prog)
	if runErr == nil {
		// Clear any interrupt that raced with a normal completion.
		vm.ClearInterrupt()
		runErr = rejectionError(value)
	}
	if runErr != nil {
		var intr *goja.InterruptedError
		if errors.As(runErr, &intr) {
			// Interrupted runs discard their working copies entirely.
			if fmt.Sprintf("%v", intr.Value()) == cancelInterrupt {
				logger.Debug("script run cancelled")
				return e.discarded(sc, kind, br, state.ErrorKindCancelled, "script run cancelled")
			}
			logger.Warn("script run timed out", "timeout", timeout)
			return e.discarded(sc, kind, br, state.ErrorKindTimeout, fmt.Sprintf("script run exceeded %s", timeout))
		}
		// A fatal throw keeps partial mutation visible: no rollback.
		msg := bridge.ExceptionMessage(runErr)
		logger.Debug("script failed", "error", msg)
		return assembleFrom(br, kind, false, state.ErrorKindRuntime, msg)
	}
	return assembleFrom(br, kind, true, "", "")
}

// discarded builds a failure Result from a clean re-snapshot of the input
// context. Captured logs and outcomes are still reported when a bridge
// exists; state mutations are not.
func (e *Engine) discarded(sc state.Context, kind state.Kind, br *bridge.Bridge, ek state.ErrorKind, msg string) state.Result {
	req, env, vars := sc.Snapshot()
	logs := []state.LogEntry{}
	outcomes := emptyOutcomes(kind)
	if br != nil {
		logs = br.Logs()
		if kind == state.KindTests {
			outcomes = br.Outcomes()
		}
	}
	return assemble(req, env, vars, logs, outcomes, false, ek, msg)
}

// rejectionError surfaces a top-level rejected promise as a fatal error.
// goja drains the microtask queue before RunProgram returns, so a resolved
// promise has already run its callbacks by this point.
func rejectionError(v goja.Value) error {
	if v == nil {
		return nil
	}
	p, ok := v.Export().(*goja.Promise)
	if !ok || p.State() != goja.PromiseStateRejected {
		return nil
	}
	res := p.Result()
	if obj, ok := res.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return fmt.Errorf("unhandled promise rejection: %s", msg.String())
		}
	}
	return fmt.Errorf("unhandled promise rejection: %s", res.String())
}

// harden removes the dynamic-evaluation escape hatches. goja itself binds
// no ambient I/O, so with eval and the Function constructor gone the
// installed bridge is the only reachable host state.
func harden(vm *goja.Runtime) {
	_ = vm.Set("eval", goja.Undefined())
	_ = vm.Set("Function", goja.Undefined())
	_, _ = vm.RunString(`(function() {
	try {
		Object.defineProperty(Function.prototype, 'constructor', {
			value: function() { throw new TypeError('Function constructor is disabled'); },
			writable: false,
			configurable: false
		});
	} catch (e) {}
})();`)
}
