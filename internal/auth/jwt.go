package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultJWTLifetime = time.Hour

// JWTConfig holds configuration for locally signed HS256 tokens.
// Extra claims are merged into the payload; registered claims built from
// Issuer/Subject/Audience win over entries of the same name in Claims.
type JWTConfig struct {
	Secret   string                 `mapstructure:"secret"`
	Issuer   string                 `mapstructure:"issuer"`
	Subject  string                 `mapstructure:"subject"`
	Audience string                 `mapstructure:"audience"`
	Lifetime time.Duration          `mapstructure:"lifetime"`
	Claims   map[string]interface{} `mapstructure:"claims"`
}

// Acquire signs a fresh token with the configured secret and returns it
// as a Bearer header value.
func (c JWTConfig) Acquire(_ context.Context) (string, error) {
	secret := strings.TrimSpace(c.Secret)
	if secret == "" {
		return "", errors.New("jwt: secret is required")
	}

	lifetime := c.Lifetime
	if lifetime <= 0 {
		lifetime = defaultJWTLifetime
	}
	now := time.Now()

	claims := jwt.MapClaims{}
	for k, v := range c.Claims {
		claims[k] = v
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(lifetime).Unix()
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}
	if c.Subject != "" {
		claims["sub"] = c.Subject
	}
	if c.Audience != "" {
		claims["aud"] = c.Audience
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("jwt: signing failed: %w", err)
	}
	return "Bearer " + signed, nil
}
