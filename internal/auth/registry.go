package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Method is the plugin interface for an authentication method.
// Implementations should be lightweight wrappers around configuration
// that can acquire a header value. Header placement is externalized.
// Acquire returns only the value to inject (e.g., "Basic ..." or "Bearer ...").
type Method interface {
	Acquire(ctx context.Context) (value string, err error)
}

// Factory builds a Method instance from a loosely-typed spec map.
// Decoding into a concrete config struct is the typical responsibility of a Factory.
type Factory func(spec map[string]interface{}) (Method, error)

// In-memory registry of provider factories keyed by normalized type.
var providers = map[string]Factory{}

// normalizeKey lower-cases and trims provider type keys.
func normalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register registers an auth provider factory under a type key (e.g., "oauth2", "basic").
// The key is normalized to lower-case.
func Register(typ string, f Factory) {
	key := normalizeKey(typ)
	if key == "" {
		return
	}
	if f == nil {
		return
	}
	providers[key] = f
}

// Acquire builds a Method from the provider type and spec and acquires
// the header value to inject into the outgoing request.
func Acquire(ctx context.Context, typ string, spec map[string]interface{}) (string, error) {
	f, ok := providers[normalizeKey(typ)]
	if !ok {
		return "", errors.New("auth: unsupported provider type: " + typ)
	}
	m, err := f(spec)
	if err != nil {
		return "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return m.Acquire(ctx)
}

// Built-in provider registrations
func init() {
	Register("basic", func(spec map[string]interface{}) (Method, error) {
		var c BasicConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return c, nil
	})

	Register("bearer", func(spec map[string]interface{}) (Method, error) {
		var c BearerConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return c, nil
	})

	Register("jwt", func(spec map[string]interface{}) (Method, error) {
		var c JWTConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return c, nil
	})

	Register("oauth2", func(spec map[string]interface{}) (Method, error) {
		var c OAuth2Config
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return c, nil
	})
}
