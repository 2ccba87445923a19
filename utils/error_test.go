package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
		name string
	}{
		{NotFoundf("practice %s", "bp-1"), IsNotFound, "NotFound"},
		{InvalidStatef("not benchmarked"), IsInvalidState, "InvalidState"},
		{Conflictf("already copied"), IsConflict, "Conflict"},
		{IntegrityFailuref("rebuild mismatch"), IsIntegrityFailure, "IntegrityFailure"},
	}
	for _, tc := range cases {
		if !tc.pred(tc.err) {
			t.Errorf("%s predicate rejected its own error %v", tc.name, tc.err)
		}
	}

	if IsNotFound(Conflictf("x")) {
		t.Error("Conflict error classified as NotFound")
	}
	if IsConflict(nil) {
		t.Error("nil classified as Conflict")
	}
}

func TestErrorsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("recording copy: %w", Conflictf("plant %s already copied", "plant-a"))
	if !IsConflict(err) {
		t.Errorf("wrapped error lost its class: %v", err)
	}
	if !errors.Is(err, ErrConflict) {
		t.Errorf("errors.Is failed on wrapped error: %v", err)
	}
}

func TestErrorMessageKeepsDetail(t *testing.T) {
	err := NotFoundf("practice %s not found", "bp-9")
	want := "not found: practice bp-9 not found"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}
