package triage

import (
	"errors"
	"fmt"
)

// Kind classifies a triage failure. Each kind is surfaced to the caller
// distinctly; the orchestrator never recovers from any of them by guessing.
type Kind string

const (
	// KindConfiguration means a required credential or endpoint is missing
	// or rejected. Not retryable without operator intervention.
	KindConfiguration Kind = "configuration"

	// KindTimeout means the deadline expired waiting on the external call.
	KindTimeout Kind = "timeout"

	// KindTransport means the external service could not be reached.
	KindTransport Kind = "transport"

	// KindMalformedResponse means the service replied but the content could
	// not be validated into a Result.
	KindMalformedResponse Kind = "malformed_response"
)

// Retryable reports whether the caller may reasonably retry the triage.
func (k Kind) Retryable() bool {
	return k != KindConfiguration
}

// Error is a classified triage failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("triage %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("triage %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified error wrapping cause (which may be nil).
func Errorf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf extracts the classification from an error chain.
// Unclassified errors report ok=false.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}
