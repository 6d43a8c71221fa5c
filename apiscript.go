// Package apiscript is an embeddable sandboxed script engine for
// API-testing tools. Pre-request scripts may rewrite the pending request
// and environment state before it is sent; test scripts get read-only
// access to the received response and record individual pass/fail
// outcomes. Every run operates on private working copies and returns them
// wholesale, so a caller applies the result directly over its own state.
package apiscript

import (
	"context"

	"github.com/loykin/apiscript/internal/engine"
	"github.com/loykin/apiscript/internal/state"
)

// Re-export commonly used types for the public API

// Request is the pending HTTP request a script run observes.
type Request = state.Request

// Header is a single ordered request header.
type Header = state.Header

// Response is the received HTTP response supplied to test runs.
type Response = state.Response

// Map is a flat string map used for the environment and variable scopes.
type Map = state.Map

// Context is the caller-owned input of a script run; it is never mutated.
type Context = state.Context

// Result is the terminal outcome of a script run.
type Result = state.Result

// LogEntry is one captured console call.
type LogEntry = state.LogEntry

// TestOutcome is the recorded result of one pm.test invocation.
type TestOutcome = state.TestOutcome

// Kind selects the capability surface of a run.
type Kind = state.Kind

// ErrorKind classifies a failed run.
type ErrorKind = state.ErrorKind

const (
	KindPreRequest = state.KindPreRequest
	KindTests      = state.KindTests

	ErrorKindCompile   = state.ErrorKindCompile
	ErrorKindRuntime   = state.ErrorKindRuntime
	ErrorKindTimeout   = state.ErrorKindTimeout
	ErrorKindCancelled = state.ErrorKindCancelled
)

// Engine executes script runs; construct one to tune the run timeout.
type Engine = engine.Engine

// DefaultTimeout is the wall-clock bound applied to a run when the engine's
// timeout is unset.
const DefaultTimeout = engine.DefaultTimeout

// NewEngine returns an engine with the default run timeout.
func NewEngine() *Engine { return engine.New() }

// RunScript executes script against the context with the default engine.
// It always returns a terminal Result; errors of every class are reported
// through Result.FatalError, never as a Go error.
func RunScript(ctx context.Context, script string, sc Context, kind Kind) Result {
	return engine.New().Run(ctx, script, sc, kind)
}

// RunPreRequest runs a pre-request script. The returned working copies are
// meant to overwrite the caller's request/environment/variable state before
// the request is transmitted.
func RunPreRequest(ctx context.Context, script string, req Request, env, vars Map) Result {
	sc := Context{Request: req, Environment: env, Variables: vars}
	return RunScript(ctx, script, sc, KindPreRequest)
}

// RunTests runs a test script with the response populated. The caller
// renders Logs and TestOutcomes and persists the updated environment and
// variable maps.
func RunTests(ctx context.Context, script string, req Request, resp Response, env, vars Map) Result {
	sc := Context{Request: req, Response: &resp, Environment: env, Variables: vars}
	return RunScript(ctx, script, sc, KindTests)
}
