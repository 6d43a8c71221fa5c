package engine

import (
	"github.com/loykin/apiscript/internal/bridge"
	"github.com/loykin/apiscript/internal/state"
)

// assemble maps the final working copies, captured logs and recorded
// outcomes to the caller-facing Result. It computes nothing; the separation
// keeps the executor's control flow independent of the result shape.
func assemble(req state.Request, env, vars state.Map, logs []state.LogEntry, outcomes []state.TestOutcome, succeeded bool, ek state.ErrorKind, fatal string) state.Result {
	return state.Result{
		Succeeded:    succeeded,
		ErrorKind:    ek,
		FatalError:   fatal,
		Logs:         logs,
		Environment:  env,
		Variables:    vars,
		Request:      req,
		TestOutcomes: outcomes,
	}
}

// assembleFrom reads the run's bridge back into a Result. Test outcomes are
// only carried for tests runs; pre-request runs report them as absent.
func assembleFrom(br *bridge.Bridge, kind state.Kind, succeeded bool, ek state.ErrorKind, fatal string) state.Result {
	var outcomes []state.TestOutcome
	if kind == state.KindTests {
		outcomes = br.Outcomes()
	}
	return assemble(br.Request(), br.Environment(), br.Variables(), br.Logs(), outcomes, succeeded, ek, fatal)
}

// emptyOutcomes returns the outcome slice an empty or discarded run
// reports: present-but-empty for tests runs, absent otherwise.
func emptyOutcomes(kind state.Kind) []state.TestOutcome {
	if kind == state.KindTests {
		return []state.TestOutcome{}
	}
	return nil
}
