// Package bridge materializes the capability surface a script may touch:
// private working copies of the request and both variable scopes, the pm
// object, and the console surrogate. Every operation reads from or writes
// to the copies only; the caller's context is never reachable from inside
// the runtime.
package bridge

import (
	"math/rand"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/loykin/apiscript/internal/state"
)

// Bridge binds one run's working copies into a goja runtime.
type Bridge struct {
	vm   *goja.Runtime
	req  *state.Request
	env  state.Map
	vars state.Map
	resp *state.Response

	logs     []state.LogEntry
	outcomes []state.TestOutcome

	rnd *rand.Rand
}

// New snapshots the context into working copies and prepares a bridge for
// the given runtime. The response is only exposed for tests runs.
func New(vm *goja.Runtime, sc state.Context, kind state.Kind) *Bridge {
	req, env, vars := sc.Snapshot()
	b := &Bridge{
		vm:   vm,
		req:  &req,
		env:  env,
		vars: vars,
		// Each run gets its own source; no process-wide generator state.
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if kind == state.KindTests {
		b.resp = sc.Response
	}
	return b
}

// Install binds pm, console and the legacy response globals into the
// runtime. These are the only visible names a script gets.
func (b *Bridge) Install() error {
	pm := b.vm.NewObject()
	if err := pm.Set("environment", b.scopeObject(b.env)); err != nil {
		return err
	}
	if err := pm.Set("variables", b.variablesObject()); err != nil {
		return err
	}
	if err := pm.Set("request", b.requestObject()); err != nil {
		return err
	}
	if b.resp != nil {
		if err := pm.Set("response", b.responseObject()); err != nil {
			return err
		}
	}
	if err := pm.Set("test", b.testFunc); err != nil {
		return err
	}
	if err := pm.Set("expect", b.expectFunc); err != nil {
		return err
	}
	if err := b.vm.Set("pm", pm); err != nil {
		return err
	}
	if err := b.vm.Set("console", b.consoleObject()); err != nil {
		return err
	}
	return b.installLegacyGlobals()
}

// installLegacyGlobals binds the read-only compatibility values older test
// scripts expect: raw body, status code, response time and headers.
func (b *Bridge) installLegacyGlobals() error {
	if b.resp == nil {
		return nil
	}
	if err := b.vm.Set("responseBody", b.resp.Body); err != nil {
		return err
	}
	if err := b.vm.Set("responseCode", b.resp.StatusCode); err != nil {
		return err
	}
	if err := b.vm.Set("responseTime", b.resp.TimeMS); err != nil {
		return err
	}
	return b.vm.Set("responseHeaders", b.resp.HeaderMap())
}

// scopeObject exposes get/set/unset/has over one working map. Values are
// coerced to string on write.
func (b *Bridge) scopeObject(m state.Map) *goja.Object {
	obj := b.vm.NewObject()
	_ = obj.Set("get", func(key string) goja.Value {
		if v, ok := m.Get(key); ok {
			return b.vm.ToValue(v)
		}
		return goja.Undefined()
	})
	_ = obj.Set("set", func(key string, value goja.Value) {
		m.Set(key, value.String())
	})
	_ = obj.Set("unset", func(key string) {
		m.Unset(key)
	})
	_ = obj.Set("has", func(key string) bool {
		return m.Has(key)
	})
	return obj
}

// variablesObject is the variable scope plus its generator utilities.
func (b *Bridge) variablesObject() *goja.Object {
	obj := b.scopeObject(b.vars)
	_ = obj.Set("freshId", func() string {
		return uuid.NewString()
	})
	_ = obj.Set("now", func() int64 {
		return time.Now().UnixMilli()
	})
	_ = obj.Set("randomInt", func(min, max int64) goja.Value {
		if max < min {
			panic(b.vm.NewTypeError("randomInt: min %d is greater than max %d", min, max))
		}
		// The inclusive span can overflow int64 for wide bounds, and Int63n
		// panics on a non-positive argument.
		span := max - min
		if span < 0 || span+1 < 0 {
			panic(b.vm.NewTypeError("randomInt: range [%d, %d] is too wide", min, max))
		}
		return b.vm.ToValue(min + b.rnd.Int63n(span+1))
	})
	return obj
}

// testFunc implements pm.test: run the callback, record pass or fail, and
// keep going. A throwing callback never aborts the run.
func (b *Bridge) testFunc(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(b.vm.NewTypeError("test(%q) requires a callback function", name))
	}
	outcome := state.TestOutcome{Name: name, Passed: true}
	if _, err := fn(goja.Undefined()); err != nil {
		outcome.Passed = false
		outcome.FailureMessage = ExceptionMessage(err)
	}
	b.outcomes = append(b.outcomes, outcome)
	return goja.Undefined()
}

// Logs returns the console entries captured so far, in call order.
func (b *Bridge) Logs() []state.LogEntry {
	if b.logs == nil {
		return []state.LogEntry{}
	}
	return b.logs
}

// Outcomes returns the recorded test outcomes in call order.
func (b *Bridge) Outcomes() []state.TestOutcome {
	if b.outcomes == nil {
		return []state.TestOutcome{}
	}
	return b.outcomes
}

// Request returns the request working copy in its current state.
func (b *Bridge) Request() state.Request { return *b.req }

// Environment returns the environment working copy.
func (b *Bridge) Environment() state.Map { return b.env }

// Variables returns the variable working copy.
func (b *Bridge) Variables() state.Map { return b.vars }
