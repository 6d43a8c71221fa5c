package bridge

import (
	"strings"
	"testing"

	"github.com/dop251/goja"

	"github.com/loykin/apiscript/internal/state"
)

func newBridge(t *testing.T, sc state.Context, kind state.Kind) (*goja.Runtime, *Bridge) {
	t.Helper()
	vm := goja.New()
	b := New(vm, sc, kind)
	if err := b.Install(); err != nil {
		t.Fatalf("install bridge: %v", err)
	}
	return vm, b
}

func run(t *testing.T, vm *goja.Runtime, src string) goja.Value {
	t.Helper()
	v, err := vm.RunString(src)
	if err != nil {
		t.Fatalf("script error: %v", err)
	}
	return v
}

func TestEnvironment_SetGetUnsetHas(t *testing.T) {
	sc := state.Context{Environment: state.Map{"BASE_URL": "https://api.example.com"}}
	vm, b := newBridge(t, sc, state.KindPreRequest)

	run(t, vm, `pm.environment.set("K", "V")`)
	if v := run(t, vm, `pm.environment.get("K")`); v.String() != "V" {
		t.Fatalf("expected V, got %q", v.String())
	}
	if v := run(t, vm, `pm.environment.has("BASE_URL")`); !v.ToBoolean() {
		t.Fatalf("expected has(BASE_URL)=true")
	}
	if v := run(t, vm, `pm.environment.has("ABSENT")`); v.ToBoolean() {
		t.Fatalf("expected has(ABSENT)=false")
	}
	run(t, vm, `pm.environment.unset("BASE_URL")`)
	if v := run(t, vm, `pm.environment.has("BASE_URL")`); v.ToBoolean() {
		t.Fatalf("expected has=false after unset")
	}
	if b.Environment().Has("BASE_URL") {
		t.Fatalf("unset must reach the working copy")
	}
}

func TestEnvironment_GetMissingIsUndefined(t *testing.T) {
	vm, _ := newBridge(t, state.Context{}, state.KindPreRequest)
	if v := run(t, vm, `pm.environment.get("nope") === undefined`); !v.ToBoolean() {
		t.Fatalf("expected undefined for missing key")
	}
}

func TestVariables_NumericValueCoercedToString(t *testing.T) {
	vm, b := newBridge(t, state.Context{}, state.KindPreRequest)
	run(t, vm, `pm.variables.set("NUM", 42)`)
	if v, _ := b.Variables().Get("NUM"); v != "42" {
		t.Fatalf("expected stored string \"42\", got %q", v)
	}
}

func TestVariables_Generators(t *testing.T) {
	vm, _ := newBridge(t, state.Context{}, state.KindPreRequest)
	if v := run(t, vm, `pm.variables.freshId() !== pm.variables.freshId()`); !v.ToBoolean() {
		t.Fatalf("freshId must be unique per call")
	}
	if v := run(t, vm, `pm.variables.now() > 0`); !v.ToBoolean() {
		t.Fatalf("now must be a positive timestamp")
	}
	// Inclusive bounds: a degenerate range always yields its single value
	if v := run(t, vm, `pm.variables.randomInt(7, 7)`); v.ToInteger() != 7 {
		t.Fatalf("expected randomInt(7,7)=7, got %d", v.ToInteger())
	}
	if v := run(t, vm, `var n = pm.variables.randomInt(1, 6); n >= 1 && n <= 6`); !v.ToBoolean() {
		t.Fatalf("randomInt out of range")
	}
	if _, err := vm.RunString(`pm.variables.randomInt(6, 1)`); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}

func TestVariables_RandomIntWideRangeThrows(t *testing.T) {
	vm, _ := newBridge(t, state.Context{}, state.KindPreRequest)
	// [-2^62, 2^62]: the span itself overflows int64.
	if _, err := vm.RunString(`pm.variables.randomInt(-4611686018427387904, 4611686018427387904)`); err == nil {
		t.Fatalf("expected error for a range wider than int64")
	}
	// [-2^63, -1]: the span is MaxInt64, so the inclusive span overflows.
	if _, err := vm.RunString(`pm.variables.randomInt(-9223372036854775808, -1)`); err == nil {
		t.Fatalf("expected error when the inclusive span overflows")
	}
	// A wide-range failure stays catchable inside the script.
	v := run(t, vm, `(function() {
		try { pm.variables.randomInt(-4611686018427387904, 4611686018427387904); return "no-throw"; }
		catch (e) { return e instanceof TypeError ? "type-error" : "other"; }
	})()`)
	if v.String() != "type-error" {
		t.Fatalf("expected catchable TypeError, got %q", v.String())
	}
}

func TestRequest_AccessorsAndHeaders(t *testing.T) {
	sc := state.Context{Request: state.Request{
		Method:  "GET",
		URL:     "https://api.example.com/v1",
		Headers: []state.Header{{Name: "Accept", Value: "application/json"}},
	}}
	vm, b := newBridge(t, sc, state.KindPreRequest)

	if v := run(t, vm, `pm.request.url`); v.String() != "https://api.example.com/v1" {
		t.Fatalf("url getter: %q", v.String())
	}
	run(t, vm, `pm.request.url = "https://staging.example.com/v1"`)
	run(t, vm, `pm.request.method = "POST"`)
	run(t, vm, `pm.request.body = JSON.stringify({name: "demo"})`)
	run(t, vm, `pm.request.headers.add("X-Trace", "abc")`)
	run(t, vm, `pm.request.headers.remove("Accept")`)

	req := b.Request()
	if req.URL != "https://staging.example.com/v1" || req.Method != "POST" {
		t.Fatalf("mutations not applied: %+v", req)
	}
	if req.Body != `{"name":"demo"}` {
		t.Fatalf("unexpected body: %q", req.Body)
	}
	if _, ok := req.GetHeader("Accept"); ok {
		t.Fatalf("Accept should be removed")
	}
	if v, _ := req.GetHeader("X-Trace"); v != "abc" {
		t.Fatalf("X-Trace missing, got %q", v)
	}

	if v := run(t, vm, `pm.request.headers.get("X-Trace")`); v.String() != "abc" {
		t.Fatalf("headers.get: %q", v.String())
	}
	if v := run(t, vm, `pm.request.headers.get("gone") === undefined`); !v.ToBoolean() {
		t.Fatalf("headers.get on absent name must be undefined")
	}
	if v := run(t, vm, `pm.request.headers.asMap()["X-Trace"]`); v.String() != "abc" {
		t.Fatalf("asMap: %q", v.String())
	}
}

func TestRequest_OriginalContextUntouched(t *testing.T) {
	sc := state.Context{
		Request:     state.Request{URL: "https://api.example.com"},
		Environment: state.Map{"K": "orig"},
	}
	vm, _ := newBridge(t, sc, state.KindPreRequest)
	run(t, vm, `pm.request.url = "https://evil.example.com"`)
	run(t, vm, `pm.environment.set("K", "mutated")`)
	if sc.Request.URL != "https://api.example.com" {
		t.Fatalf("bridge aliased the caller's request")
	}
	if sc.Environment["K"] != "orig" {
		t.Fatalf("bridge aliased the caller's environment")
	}
}

func testsContext(body string) state.Context {
	return state.Context{
		Request: state.Request{Method: "GET", URL: "https://api.example.com"},
		Response: &state.Response{
			StatusCode: 200,
			StatusText: "OK",
			TimeMS:     12.5,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       body,
		},
		Environment: state.Map{},
		Variables:   state.Map{},
	}
}

func TestResponse_ReadOnlyAccessors(t *testing.T) {
	vm, _ := newBridge(t, testsContext(`{"id": 7}`), state.KindTests)
	if v := run(t, vm, `pm.response.code`); v.ToInteger() != 200 {
		t.Fatalf("code: %d", v.ToInteger())
	}
	if v := run(t, vm, `pm.response.status`); v.String() != "OK" {
		t.Fatalf("status: %q", v.String())
	}
	if v := run(t, vm, `pm.response.responseTime`); v.ToFloat() != 12.5 {
		t.Fatalf("responseTime: %v", v.ToFloat())
	}
	if v := run(t, vm, `pm.response.headers["Content-Type"]`); v.String() != "application/json" {
		t.Fatalf("headers: %q", v.String())
	}
	if v := run(t, vm, `pm.response.text()`); v.String() != `{"id": 7}` {
		t.Fatalf("text: %q", v.String())
	}
	if v := run(t, vm, `pm.response.json().id`); v.ToInteger() != 7 {
		t.Fatalf("json().id: %d", v.ToInteger())
	}
}

func TestResponse_JSONParseFailureIsCatchable(t *testing.T) {
	vm, _ := newBridge(t, testsContext("not json"), state.KindTests)
	v := run(t, vm, `
		var caught = "";
		try { pm.response.json(); } catch (e) { caught = e.message; }
		caught
	`)
	if !strings.Contains(v.String(), "not valid JSON") {
		t.Fatalf("caught message must explain the parse failure, got %q", v.String())
	}
}

func TestResponse_AbsentForPreRequestRuns(t *testing.T) {
	sc := testsContext(`{}`)
	vm, _ := newBridge(t, sc, state.KindPreRequest)
	if v := run(t, vm, `pm.response === undefined && typeof responseBody === "undefined"`); !v.ToBoolean() {
		t.Fatalf("pre-request runs must not see the response")
	}
}

func TestLegacyGlobals_BoundForTestsRuns(t *testing.T) {
	vm, _ := newBridge(t, testsContext(`{"ok":true}`), state.KindTests)
	if v := run(t, vm, `responseBody`); v.String() != `{"ok":true}` {
		t.Fatalf("responseBody: %q", v.String())
	}
	if v := run(t, vm, `responseCode`); v.ToInteger() != 200 {
		t.Fatalf("responseCode: %d", v.ToInteger())
	}
	if v := run(t, vm, `responseTime`); v.ToFloat() != 12.5 {
		t.Fatalf("responseTime: %v", v.ToFloat())
	}
	if v := run(t, vm, `responseHeaders["Content-Type"]`); v.String() != "application/json" {
		t.Fatalf("responseHeaders: %q", v.String())
	}
}

func TestTest_FailureRecordedAndExecutionContinues(t *testing.T) {
	vm, b := newBridge(t, testsContext(`{}`), state.KindTests)
	run(t, vm, `
		pm.test("A", function () { pm.expect(true).to.be.true; });
		pm.test("B", function () { pm.expect(false).to.be.true; });
		pm.test("C", function () { pm.expect(true).to.be.true; });
	`)
	got := b.Outcomes()
	if len(got) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got))
	}
	want := []bool{true, false, true}
	for i, outcome := range got {
		if outcome.Passed != want[i] {
			t.Fatalf("outcome %d: passed=%v want %v", i, outcome.Passed, want[i])
		}
	}
	if got[1].Name != "B" || got[1].FailureMessage == "" {
		t.Fatalf("failed outcome must carry name and message: %+v", got[1])
	}
}

func TestTest_NonFunctionCallbackThrows(t *testing.T) {
	vm, _ := newBridge(t, state.Context{}, state.KindTests)
	if _, err := vm.RunString(`pm.test("A", "not a function")`); err == nil {
		t.Fatalf("expected type error for non-function callback")
	}
}

func TestExpect_ChainPredicates(t *testing.T) {
	vm, _ := newBridge(t, state.Context{}, state.KindTests)
	// All of these must pass silently
	run(t, vm, `
		pm.expect(5).to.equal(5);
		pm.expect(200).to.be.below(300);
		pm.expect(200).to.be.above(100);
		pm.expect("ready").to.be.ok;
		pm.expect(true).to.be.true;
		pm.expect(false).to.be.false;
		pm.expect({id: 1}).to.have.property("id");
		pm.expect("hello world").to.include("world");
		pm.expect([1, 2, 3]).to.include(2);
	`)
	// And the failing forms must throw with both values named
	_, err := vm.RunString(`pm.expect(5).to.equal(6)`)
	if err == nil {
		t.Fatalf("expected assertion failure")
	}
	msg := ExceptionMessage(err)
	if !strings.Contains(msg, "5") || !strings.Contains(msg, "6") {
		t.Fatalf("failure must name actual and expected: %q", msg)
	}
	if _, err := vm.RunString(`pm.expect(0).to.be.ok`); err == nil {
		t.Fatalf("expected truthiness failure for 0")
	}
	if _, err := vm.RunString(`pm.expect(42).to.include(4)`); err == nil {
		t.Fatalf("expected type error for include on a number")
	}
}

func TestConsole_CapturesChannelsInOrder(t *testing.T) {
	vm, b := newBridge(t, state.Context{}, state.KindPreRequest)
	run(t, vm, `
		console.log("first", 1);
		console.error("second");
		console.warn("third", true);
		console.info("fourth");
	`)
	logs := b.Logs()
	if len(logs) != 4 {
		t.Fatalf("expected 4 log entries, got %d", len(logs))
	}
	wantChannels := []string{"log", "error", "warn", "info"}
	for i, entry := range logs {
		if entry.Channel != wantChannels[i] {
			t.Fatalf("entry %d: channel %q want %q", i, entry.Channel, wantChannels[i])
		}
	}
	if logs[0].Values[0] != "first" || logs[0].Values[1] != int64(1) {
		t.Fatalf("unexpected values for first entry: %#v", logs[0].Values)
	}
}

func TestConsole_InterleavesWithMutations(t *testing.T) {
	vm, b := newBridge(t, state.Context{Environment: state.Map{}}, state.KindPreRequest)
	run(t, vm, `
		console.log(pm.environment.has("K"));
		pm.environment.set("K", "V");
		console.log(pm.environment.has("K"));
	`)
	logs := b.Logs()
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	if logs[0].Values[0] != false || logs[1].Values[0] != true {
		t.Fatalf("log ordering does not reflect statement order: %#v", logs)
	}
}
