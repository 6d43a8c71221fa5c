package auth

import (
	"context"
	"errors"
	"strings"
)

// BearerConfig holds configuration for a static bearer token.
type BearerConfig struct {
	Token string `mapstructure:"token"`
}

// Acquire returns the configured token as a Bearer header value.
// Tokens that already carry a scheme prefix are passed through unchanged.
func (c BearerConfig) Acquire(_ context.Context) (string, error) {
	t := strings.TrimSpace(c.Token)
	if t == "" {
		return "", errors.New("bearer: token is required")
	}
	if strings.Contains(t, " ") {
		return t, nil
	}
	return "Bearer " + t, nil
}
