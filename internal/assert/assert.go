// Package assert implements the small fixed predicate set behind
// pm.expect. Each predicate either returns nil or a descriptive error
// naming the actual and expected values; nothing here has side effects.
package assert

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Equal checks strict equality. Numeric values are compared by value
// regardless of the concrete Go type the script runtime exported them as.
func Equal(actual, expected any) error {
	if looseEqual(actual, expected) {
		return nil
	}
	return fmt.Errorf("expected %s to equal %s", describe(actual), describe(expected))
}

// Below checks actual < bound for numeric actual.
func Below(actual any, bound float64) error {
	n, ok := toNumber(actual)
	if !ok {
		return fmt.Errorf("expected %s to be a number for below(%v)", describe(actual), bound)
	}
	if n >= bound {
		return fmt.Errorf("expected %v to be below %v", n, bound)
	}
	return nil
}

// Above checks actual > bound for numeric actual.
func Above(actual any, bound float64) error {
	n, ok := toNumber(actual)
	if !ok {
		return fmt.Errorf("expected %s to be a number for above(%v)", describe(actual), bound)
	}
	if n <= bound {
		return fmt.Errorf("expected %v to be above %v", n, bound)
	}
	return nil
}

// Ok checks truthiness under script-language rules: nil, false, zero and
// the empty string are falsy, everything else is truthy.
func Ok(actual any) error {
	if truthy(actual) {
		return nil
	}
	return fmt.Errorf("expected %s to be truthy", describe(actual))
}

// True checks exact boolean identity with true.
func True(actual any) error {
	if b, ok := actual.(bool); ok && b {
		return nil
	}
	return fmt.Errorf("expected %s to be true", describe(actual))
}

// False checks exact boolean identity with false.
func False(actual any) error {
	if b, ok := actual.(bool); ok && !b {
		return nil
	}
	return fmt.Errorf("expected %s to be false", describe(actual))
}

// Property checks that actual is a keyed structure containing name.
func Property(actual any, name string) error {
	rv := reflect.ValueOf(actual)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return fmt.Errorf("expected %s to be an object with property %q", describe(actual), name)
	}
	for _, k := range rv.MapKeys() {
		if fmt.Sprintf("%v", k.Interface()) == name {
			return nil
		}
	}
	return fmt.Errorf("expected %s to have property %q", describe(actual), name)
}

// Include checks substring containment for strings and membership for
// sequences; any other actual is a type error.
func Include(actual, value any) error {
	switch a := actual.(type) {
	case string:
		sub, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected a string to search for in %s, got %s", describe(actual), describe(value))
		}
		if strings.Contains(a, sub) {
			return nil
		}
		return fmt.Errorf("expected %s to include %s", describe(actual), describe(value))
	}
	rv := reflect.ValueOf(actual)
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		for i := 0; i < rv.Len(); i++ {
			if looseEqual(rv.Index(i).Interface(), value) {
				return nil
			}
		}
		return fmt.Errorf("expected %s to include %s", describe(actual), describe(value))
	}
	return fmt.Errorf("include is not supported for %s", describe(actual))
}

// looseEqual compares values after normalizing numbers, so 5 and 5.0
// exported as different Go types still compare equal.
func looseEqual(a, b any) bool {
	if an, aok := toNumber(a); aok {
		bn, bok := toNumber(b)
		return bok && an == bn
	}
	return reflect.DeepEqual(a, b)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if n, ok := toNumber(v); ok {
		return n != 0
	}
	return true
}

// describe renders a value for failure messages, quoting strings so empty
// and whitespace values stay visible.
func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "undefined"
	case string:
		return strconv.Quote(t)
	}
	return fmt.Sprintf("%v", v)
}
