package assert

import (
	"strings"
	"testing"
)

func TestEqual_NumbersAcrossTypes(t *testing.T) {
	if err := Equal(int64(5), int64(5)); err != nil {
		t.Fatalf("expected equal, got %v", err)
	}
	// Script runtimes export numbers as different Go types
	if err := Equal(int64(5), float64(5)); err != nil {
		t.Fatalf("expected 5 == 5.0, got %v", err)
	}
	err := Equal(int64(5), int64(6))
	if err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(err.Error(), "5") || !strings.Contains(err.Error(), "6") {
		t.Fatalf("message must name both values: %q", err.Error())
	}
}

func TestEqual_StringsAndMismatch(t *testing.T) {
	if err := Equal("a", "a"); err != nil {
		t.Fatalf("expected equal, got %v", err)
	}
	if err := Equal("a", "b"); err == nil {
		t.Fatalf("expected failure")
	}
	// A number never equals its string rendering
	if err := Equal(int64(5), "5"); err == nil {
		t.Fatalf("expected 5 != \"5\"")
	}
}

func TestBelowAbove(t *testing.T) {
	if err := Below(int64(200), 300); err != nil {
		t.Fatalf("expected 200 below 300, got %v", err)
	}
	if err := Below(int64(300), 300); err == nil {
		t.Fatalf("below is strict; 300 is not below 300")
	}
	if err := Above(float64(1.5), 1); err != nil {
		t.Fatalf("expected 1.5 above 1, got %v", err)
	}
	if err := Above(int64(1), 1); err == nil {
		t.Fatalf("above is strict; 1 is not above 1")
	}
	if err := Below("fast", 300); err == nil {
		t.Fatalf("expected type error for non-numeric actual")
	}
}

func TestOk_Truthiness(t *testing.T) {
	for _, v := range []any{int64(1), "x", true, float64(0.1), map[string]any{}} {
		if err := Ok(v); err != nil {
			t.Fatalf("expected %v to be truthy: %v", v, err)
		}
	}
	for _, v := range []any{nil, false, int64(0), float64(0), ""} {
		if err := Ok(v); err == nil {
			t.Fatalf("expected %v to be falsy", v)
		}
	}
}

func TestTrueFalse_Identity(t *testing.T) {
	if err := True(true); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := True(int64(1)); err == nil {
		t.Fatalf("1 is truthy but not true")
	}
	if err := False(false); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := False(""); err == nil {
		t.Fatalf("empty string is falsy but not false")
	}
}

func TestProperty(t *testing.T) {
	obj := map[string]any{"id": int64(1)}
	if err := Property(obj, "id"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := Property(obj, "name"); err == nil {
		t.Fatalf("expected missing property failure")
	}
	if err := Property("not an object", "id"); err == nil {
		t.Fatalf("expected type failure for non-map actual")
	}
}

func TestInclude(t *testing.T) {
	if err := Include("hello world", "world"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := Include("hello", "bye"); err == nil {
		t.Fatalf("expected substring failure")
	}
	seq := []any{int64(1), "two", int64(3)}
	if err := Include(seq, "two"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := Include(seq, float64(3)); err != nil {
		t.Fatalf("numeric membership should normalize types: %v", err)
	}
	if err := Include(seq, int64(4)); err == nil {
		t.Fatalf("expected membership failure")
	}
	if err := Include(int64(42), int64(4)); err == nil {
		t.Fatalf("expected type error for non-string non-sequence actual")
	}
}
