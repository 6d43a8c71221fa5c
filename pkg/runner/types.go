package runner

import (
	"fmt"
	"strings"

	"github.com/loykin/apiscript/internal/state"
	"github.com/tidwall/gjson"
)

// RequestSpec describes the outgoing HTTP request of a request file.
type RequestSpec struct {
	Method   string         `yaml:"method"`
	URL      string         `yaml:"url"`
	Headers  []state.Header `yaml:"headers"`
	Body     string         `yaml:"body"`
	BodyFile string         `yaml:"body_file"`
}

// AuthSpec selects a registered auth provider and carries its raw config.
type AuthSpec struct {
	Type string                 `yaml:"type"`
	Spec map[string]interface{} `yaml:"spec"`
}

// ResponseSpec declares the expectations on the HTTP response and which
// values to lift into the environment afterwards.
type ResponseSpec struct {
	ResultCode []int             `yaml:"result_code"`
	EnvFrom    map[string]string `yaml:"env_from"`
	// EnvMissing controls behavior when a configured EnvFrom mapping cannot
	// be extracted from the response body.
	// Allowed values: "skip" (default) – ignore missing variables; "fail" – treat as error.
	EnvMissing string `yaml:"env_missing"`
}

// ValidateStatus checks whether the status code is allowed.
// An empty ResultCode list accepts every status.
func (r ResponseSpec) ValidateStatus(status int) error {
	if len(r.ResultCode) == 0 {
		return nil
	}
	for _, c := range r.ResultCode {
		if c == status {
			return nil
		}
	}
	return fmt.Errorf("status %d not in allowed set %v", status, r.ResultCode)
}

// ExtractEnv extracts variables from a JSON response body using EnvFrom
// mappings. Paths are evaluated with tidwall/gjson.
func (r ResponseSpec) ExtractEnv(body []byte) (state.Map, error) {
	extracted := state.Map{}
	if len(r.EnvFrom) == 0 || len(body) == 0 {
		return extracted, nil
	}

	policy := strings.ToLower(strings.TrimSpace(r.EnvMissing))
	if policy == "" {
		policy = "skip"
	}

	parsed := gjson.ParseBytes(body)
	for key, path := range r.EnvFrom {
		p := strings.TrimSpace(path)
		if p == "" {
			continue
		}
		res := parsed.Get(p)
		if !res.Exists() {
			if policy == "fail" {
				return extracted, fmt.Errorf("missing env_from for key '%s' at path '%s'", key, p)
			}
			continue
		}
		extracted[key] = anyToString(res.Value())
	}

	return extracted, nil
}

// RequestFile is one executable unit: a request plus the scripts that run
// around it.
type RequestFile struct {
	Name             string       `yaml:"name"`
	Auth             *AuthSpec    `yaml:"auth"`
	Request          RequestSpec  `yaml:"request"`
	PreRequestScript string       `yaml:"pre_request_script"`
	TestScript       string       `yaml:"test_script"`
	Response         ResponseSpec `yaml:"response"`
}

// RunResult collects everything one request file execution produced.
type RunResult struct {
	Name         string
	PreRequest   *state.Result
	Tests        *state.Result
	StatusCode   int
	ResponseBody string
	ExtractedEnv state.Map
}

// Passed reports whether the execution succeeded end to end: both scripts
// ran to completion and every recorded test passed.
func (r *RunResult) Passed() bool {
	if r.PreRequest != nil && !r.PreRequest.Succeeded {
		return false
	}
	if r.Tests != nil {
		if !r.Tests.Succeeded {
			return false
		}
		for _, o := range r.Tests.TestOutcomes {
			if !o.Passed {
				return false
			}
		}
	}
	return true
}
