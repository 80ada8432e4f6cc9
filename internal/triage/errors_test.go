package triage

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindRetryable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind Kind
		want bool
	}{
		{KindConfiguration, false},
		{KindTimeout, true},
		{KindTransport, true},
		{KindMalformedResponse, true},
	}
	for _, tc := range cases {
		if got := tc.kind.Retryable(); got != tc.want {
			t.Errorf("%s.Retryable() = %v, want %v", tc.kind, got, tc.want)
		}
	}
}

func TestErrorfWrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := Errorf(KindTransport, cause, "inference call failed")

	if !errors.Is(err, cause) {
		t.Error("expected cause to survive in the chain")
	}
	if got := err.Error(); got != "triage transport: inference call failed: dial tcp: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorWithoutCause(t *testing.T) {
	t.Parallel()

	err := Errorf(KindMalformedResponse, nil, "missing required field %s", "reply_draft")
	if got := err.Error(); got != "triage malformed_response: missing required field reply_draft" {
		t.Errorf("Error() = %q", got)
	}
	if err.Unwrap() != nil {
		t.Error("Unwrap() should be nil without a cause")
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("run triage: %w", Errorf(KindTimeout, nil, "deadline exceeded"))
	kind, ok := KindOf(wrapped)
	if !ok || kind != KindTimeout {
		t.Errorf("KindOf(wrapped) = (%v, %v), want (timeout, true)", kind, ok)
	}

	if kind, ok := KindOf(errors.New("plain")); ok {
		t.Errorf("KindOf(plain) = (%v, true), want unclassified", kind)
	}
	if _, ok := KindOf(nil); ok {
		t.Error("KindOf(nil) should be unclassified")
	}
}
