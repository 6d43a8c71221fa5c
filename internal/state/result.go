package state

// Kind selects which capability surface a run gets: pre-request runs may
// rewrite the pending request, tests runs additionally see the response and
// record per-test outcomes.
type Kind string

const (
	KindPreRequest Kind = "pre-request"
	KindTests      Kind = "tests"
)

// ErrorKind classifies why a run failed. Assertion failures inside
// pm.test callbacks are recorded as test outcomes and never appear here.
type ErrorKind string

const (
	ErrorKindCompile   ErrorKind = "compile"
	ErrorKindRuntime   ErrorKind = "runtime"
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindCancelled ErrorKind = "cancelled"
)

// LogEntry is one console call made by a script, in call order.
type LogEntry struct {
	Channel string `json:"channel"`
	Values  []any  `json:"values"`
}

// TestOutcome is the recorded result of one pm.test invocation.
type TestOutcome struct {
	Name           string `json:"name"`
	Passed         bool   `json:"passed"`
	FailureMessage string `json:"failure_message,omitempty"`
}

// Result is the terminal outcome of a script run. Environment, Variables and
// Request are complete working copies, never partial diffs, so a caller can
// assign them directly over its own state. TestOutcomes is non-nil exactly
// when the run kind was KindTests, even if no tests were recorded.
type Result struct {
	Succeeded    bool          `json:"succeeded"`
	ErrorKind    ErrorKind     `json:"error_kind,omitempty"`
	FatalError   string        `json:"fatal_error,omitempty"`
	Logs         []LogEntry    `json:"logs"`
	Environment  Map           `json:"environment"`
	Variables    Map           `json:"variables"`
	Request      Request       `json:"request"`
	TestOutcomes []TestOutcome `json:"test_outcomes"`
}
