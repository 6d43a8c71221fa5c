package common

import (
	"strings"
	"testing"
)

func TestMaskValue_SensitiveKeys(t *testing.T) {
	m := NewMasker()
	for _, key := range []string{"password", "Authorization", "API_KEY", "client_secret"} {
		if got := m.MaskValue(key, "hunter2"); got != "***MASKED***" {
			t.Fatalf("key %s: expected masked value, got %q", key, got)
		}
	}
	if got := m.MaskValue("username", "alice"); got != "alice" {
		t.Fatalf("non-sensitive key must pass through, got %q", got)
	}
}

func TestMaskString_InlineCredentials(t *testing.T) {
	m := NewMasker()
	in := "calling with Bearer eyJhbGciOiJIUzI1NiJ9.abc.def and Basic dXNlcjpwYXNz"
	out := m.MaskString(in)
	if strings.Contains(out, "eyJhbGciOiJIUzI1NiJ9") || strings.Contains(out, "dXNlcjpwYXNz") {
		t.Fatalf("credentials leaked: %q", out)
	}
	if !strings.Contains(out, "Bearer ***MASKED***") {
		t.Fatalf("expected masked bearer, got %q", out)
	}
}

func TestMaskHeaders_CopiesAndMasks(t *testing.T) {
	m := NewMasker()
	in := map[string]string{"Authorization": "Bearer tok", "Accept": "application/json"}
	out := m.MaskHeaders(in)
	if out["Authorization"] != "***MASKED***" || out["Accept"] != "application/json" {
		t.Fatalf("unexpected masking: %#v", out)
	}
	if in["Authorization"] != "Bearer tok" {
		t.Fatalf("input map must not be mutated")
	}
}

func TestMasker_Disabled(t *testing.T) {
	m := NewMasker()
	m.SetEnabled(false)
	if got := m.MaskValue("password", "hunter2"); got != "hunter2" {
		t.Fatalf("disabled masker must pass values through, got %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"error":   LogLevelError,
		"warn":    LogLevelWarn,
		"warning": LogLevelWarn,
		"debug":   LogLevelDebug,
		"info":    LogLevelInfo,
		"":        LogLevelInfo,
		"bogus":   LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// FuzzMaskString ensures masking never panics and never leaves a bearer
// credential intact.
func FuzzMaskString(f *testing.F) {
	f.Add("Bearer abc123")
	f.Add("nothing to hide")
	f.Add("Basic dXNlcjpwYXNz trailing")

	m := NewMasker()
	f.Fuzz(func(t *testing.T, s string) {
		out := m.MaskString(s)
		if strings.Contains(strings.ToLower(out), "bearer ") {
			rest := out[strings.Index(strings.ToLower(out), "bearer ")+len("bearer "):]
			if rest != "" && !strings.HasPrefix(rest, "***MASKED***") && isTokenLike(rest) {
				t.Fatalf("bearer credential survived masking: %q", out)
			}
		}
	})
}

func isTokenLike(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
			strings.ContainsRune("-._~+/=", r)) {
			return false
		}
	}
	return true
}
