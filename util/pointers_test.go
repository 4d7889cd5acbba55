package util

import "testing"

func TestPtr_OptionalParameters(t *testing.T) {
	temp := Ptr(0.7)
	tokens := Ptr(256)
	if *temp != 0.7 || *tokens != 256 {
		t.Errorf("got %v, %v", *temp, *tokens)
	}
	if Ptr(1) == Ptr(1) {
		t.Error("each call must return a fresh pointer")
	}
}

func TestDeref(t *testing.T) {
	var unset *int
	if got := Deref(unset); got != 0 {
		t.Errorf("Deref(nil) = %d, want 0", got)
	}
	if got := Deref(Ptr("deepseek-chat")); got != "deepseek-chat" {
		t.Errorf("Deref = %q", got)
	}
}

func TestDerefOr(t *testing.T) {
	if DerefOr[float64](nil, 0.7) != 0.7 {
		t.Error("expected default for nil pointer")
	}
	v := 0.0
	if DerefOr(&v, 0.7) != 0 {
		t.Error("expected pointed-to zero value, not the default")
	}
}

func TestClone(t *testing.T) {
	if Clone[int](nil) != nil {
		t.Error("expected nil clone of nil pointer")
	}
	v := 42
	c := Clone(&v)
	*c = 7
	if v != 42 {
		t.Error("clone must not alias the original")
	}
}
