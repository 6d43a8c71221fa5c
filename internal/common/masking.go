package common

import (
	"regexp"
	"strings"
)

const maskedValue = "***MASKED***"

// sensitiveKeys are attribute/header/env names whose values are always
// masked before logging, compared case-insensitively.
var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"token", "access_token", "auth_token", "refresh_token",
	"api_key", "apikey", "api-key",
	"secret", "client_secret", "client-secret",
	"authorization",
}

// credentialPatterns match inline credentials embedded in free-form text.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
	regexp.MustCompile(`(?i)Basic\s+[A-Za-z0-9+/]+=*`),
}

// Masker hides credential-looking values in log output. Scripts routinely
// set Authorization headers and token variables; those must not leak into
// the host log stream.
type Masker struct {
	enabled bool
}

// NewMasker returns an enabled masker with the default key set.
func NewMasker() *Masker {
	return &Masker{enabled: true}
}

// SetEnabled enables or disables masking.
func (m *Masker) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// IsEnabled reports whether masking is active.
func (m *Masker) IsEnabled() bool {
	return m.enabled
}

// MaskValue masks value when its key names a credential, and scrubs inline
// Bearer/Basic credentials from string values otherwise.
func (m *Masker) MaskValue(key, value string) string {
	if !m.enabled {
		return value
	}
	lower := strings.ToLower(key)
	for _, k := range sensitiveKeys {
		if lower == k {
			return maskedValue
		}
	}
	return m.MaskString(value)
}

// MaskString scrubs inline credentials from free-form text.
func (m *Masker) MaskString(s string) string {
	if !m.enabled {
		return s
	}
	for _, re := range credentialPatterns {
		s = re.ReplaceAllStringFunc(s, func(match string) string {
			fields := strings.Fields(match)
			return fields[0] + " " + maskedValue
		})
	}
	return s
}

// MaskHeaders returns a copy of headers with credential values hidden.
func (m *Masker) MaskHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = m.MaskValue(k, v)
	}
	return out
}

// Global masker shared by the loggers.
var globalMasker = NewMasker()

// GetMasker returns the global masker instance.
func GetMasker() *Masker {
	return globalMasker
}
