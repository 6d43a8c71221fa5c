// Package runner executes request files: YAML documents pairing an HTTP
// request with the pre-request and test scripts that run around it.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/apiscript/internal/auth"
	"github.com/loykin/apiscript/internal/common"
	"github.com/loykin/apiscript/internal/engine"
	"github.com/loykin/apiscript/internal/httpc"
	"github.com/loykin/apiscript/internal/state"
	"gopkg.in/yaml.v3"
)

// Runner executes request files against a shared engine and HTTP client.
// Environment and variable scopes persist across sequential executions so
// a file can consume values its predecessors extracted or set.
type Runner struct {
	Engine *engine.Engine
	Client *resty.Client
	Env    state.Map
	Vars   state.Map
}

// New returns a Runner with a default engine, HTTP client and empty scopes.
func New() *Runner {
	h := &httpc.Httpc{}
	return &Runner{
		Engine: engine.New(),
		Client: h.New(),
		Env:    state.Map{},
		Vars:   state.Map{},
	}
}

// clone returns a Runner sharing the engine and client but owning copies
// of the scopes. Used for parallel collection runs.
func (r *Runner) clone() *Runner {
	return &Runner{
		Engine: r.Engine,
		Client: r.Client,
		Env:    r.Env.Clone(),
		Vars:   r.Vars.Clone(),
	}
}

// LoadFile loads a RequestFile from a YAML file path.
func LoadFile(path string) (*RequestFile, error) {
	clean := filepath.Clean(path)
	// #nosec G304 -- path is provided by controlled collection listing
	f, err := os.Open(clean)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return decodeRequestFile(f)
}

func decodeRequestFile(r io.Reader) (*RequestFile, error) {
	dec := yaml.NewDecoder(r)
	var rf RequestFile
	if err := dec.Decode(&rf); err != nil {
		return nil, fmt.Errorf("failed to decode request file: %w", err)
	}
	return &rf, nil
}

// ExecuteFile loads and executes a single request file.
func (r *Runner) ExecuteFile(ctx context.Context, path string) (*RunResult, error) {
	rf, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if rf.Name == "" {
		rf.Name = filepath.Base(path)
	}
	return r.Execute(ctx, rf)
}

// Execute runs one request file: auth injection, pre-request script, the
// HTTP call, the test script, then response extraction. Script failures
// and unexpected status codes are returned as errors alongside the partial
// result; network failures return a nil result.
func (r *Runner) Execute(ctx context.Context, rf *RequestFile) (*RunResult, error) {
	logger := common.GetLogger().WithComponent("runner")
	logger.Debug("executing request file", "name", rf.Name, "method", rf.Request.Method, "url", rf.Request.URL)

	result := &RunResult{Name: rf.Name, ExtractedEnv: state.Map{}}

	req, err := r.buildRequest(ctx, rf)
	if err != nil {
		return nil, err
	}

	pre := r.Engine.Run(ctx, rf.PreRequestScript, state.Context{
		Request:     req,
		Environment: r.Env,
		Variables:   r.Vars,
	}, state.KindPreRequest)
	result.PreRequest = &pre
	r.Env = pre.Environment
	r.Vars = pre.Variables
	if !pre.Succeeded {
		logger.Warn("pre-request script failed", "kind", pre.ErrorKind, "error", pre.FatalError)
		return result, fmt.Errorf("pre-request script failed: %s", pre.FatalError)
	}
	req = pre.Request

	reqLogger := logger.WithRequest(req.Method, req.URL)
	reqLogger.Debug("sending request", "headers", common.GetMasker().MaskHeaders(req.HeaderMap()))
	resp, err := r.send(ctx, req)
	if err != nil {
		reqLogger.Error("HTTP request failed", "error", err)
		return nil, err
	}

	sresp := state.Response{
		StatusCode: resp.StatusCode(),
		StatusText: resp.Status(),
		TimeMS:     float64(resp.Time().Microseconds()) / 1000.0,
		Headers:    flattenHeaders(resp.Header()),
		Body:       string(resp.Body()),
	}
	result.StatusCode = sresp.StatusCode
	result.ResponseBody = sresp.Body
	logger.Debug("received HTTP response", "status_code", sresp.StatusCode, "response_size", len(sresp.Body))

	tests := r.Engine.Run(ctx, rf.TestScript, state.Context{
		Request:     req,
		Response:    &sresp,
		Environment: r.Env,
		Variables:   r.Vars,
	}, state.KindTests)
	result.Tests = &tests
	r.Env = tests.Environment
	r.Vars = tests.Variables
	if !tests.Succeeded {
		logger.Warn("test script failed", "kind", tests.ErrorKind, "error", tests.FatalError)
		return result, fmt.Errorf("test script failed: %s", tests.FatalError)
	}

	extracted, eerr := rf.Response.ExtractEnv(resp.Body())
	for k, v := range extracted {
		r.Env.Set(k, v)
	}
	result.ExtractedEnv = extracted
	if eerr != nil {
		return result, eerr
	}

	if err := rf.Response.ValidateStatus(sresp.StatusCode); err != nil {
		logger.Warn("response status validation failed", "status_code", sresp.StatusCode, "error", err)
		return result, err
	}

	return result, nil
}

// buildRequest assembles the initial request handed to the pre-request
// script, including the body file and the auth header when configured.
func (r *Runner) buildRequest(ctx context.Context, rf *RequestFile) (state.Request, error) {
	req := state.Request{
		Method:  strings.ToUpper(strings.TrimSpace(rf.Request.Method)),
		URL:     rf.Request.URL,
		Headers: append([]state.Header(nil), rf.Request.Headers...),
		Body:    rf.Request.Body,
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	if strings.TrimSpace(rf.Request.BodyFile) != "" {
		data, err := os.ReadFile(filepath.Clean(rf.Request.BodyFile))
		if err != nil {
			return state.Request{}, fmt.Errorf("failed to read body file: %w", err)
		}
		req.Body = string(data)
	}

	if rf.Auth != nil {
		value, err := auth.Acquire(ctx, rf.Auth.Type, rf.Auth.Spec)
		if err != nil {
			return state.Request{}, fmt.Errorf("auth acquisition failed: %w", err)
		}
		req.SetHeader("Authorization", value)
	}

	return req, nil
}

func (r *Runner) send(ctx context.Context, req state.Request) (*resty.Response, error) {
	rr := r.Client.R().SetContext(ctx).SetHeaders(req.HeaderMap())
	if strings.TrimSpace(req.Body) != "" {
		if _, ok := req.GetHeader("Content-Type"); !ok && isJSON(req.Body) {
			rr.SetHeader("Content-Type", "application/json")
		}
		rr.SetBody([]byte(req.Body))
	}
	return execByMethod(rr, req.Method, req.URL)
}

func execByMethod(req *resty.Request, method, url string) (*resty.Response, error) {
	switch method {
	case http.MethodGet:
		return req.Get(url)
	case http.MethodPost:
		return req.Post(url)
	case http.MethodPut:
		return req.Put(url)
	case http.MethodPatch:
		return req.Patch(url)
	case http.MethodDelete:
		return req.Delete(url)
	case http.MethodHead:
		return req.Head(url)
	case http.MethodOptions:
		return req.Options(url)
	default:
		return nil, fmt.Errorf("runner: unsupported method: %s", method)
	}
}

func isJSON(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if (strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")) || (strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]")) {
		var js json.RawMessage
		return json.Unmarshal([]byte(t), &js) == nil
	}
	return false
}

// flattenHeaders keeps the first value of each response header.
func flattenHeaders(h http.Header) map[string]string {
	m := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			m[name] = values[0]
		}
	}
	return m
}

func anyToString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case float64:
		// Avoid scientific notation for integers
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		b = bytes.TrimSpace(b)
		if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
			return string(b[1 : len(b)-1])
		}
		return string(b)
	}
}
