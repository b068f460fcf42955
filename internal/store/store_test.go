package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrDuplicateKey, ErrInvalidReference}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestSentinelErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("payment pay_1: %w", ErrDuplicateKey)
	if !errors.Is(wrapped, ErrDuplicateKey) {
		t.Errorf("expected wrapped error to match ErrDuplicateKey, got %v", wrapped)
	}
}
