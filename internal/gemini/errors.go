package gemini

import (
	"errors"
	"fmt"
)

// FailureKind classifies how a generative call failed. Callers branch on the
// kind, never on error strings.
type FailureKind string

const (
	// KindMissingCredential: no API key configured; raised before any network
	// access is attempted.
	KindMissingCredential FailureKind = "missing-credential"
	// KindMalformedResponse: the service answered but the payload did not
	// parse against the expected shape even after cleanup.
	KindMalformedResponse FailureKind = "malformed-response"
	// KindEmptyAsset: an image call succeeded but carried no usable bytes.
	// Soft failure; call sites yield a placeholder instead of erroring.
	KindEmptyAsset FailureKind = "empty-asset"
	// KindTimeout: the per-call deadline elapsed.
	KindTimeout FailureKind = "timeout"
	// KindTransport: anything else the underlying call surfaced.
	KindTransport FailureKind = "transport"
)

// CallError is the one error type the generative client returns.
type CallError struct {
	Op   string
	Kind FailureKind
	Err  error
}

func (e *CallError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gemini %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("gemini %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, defaulting to transport for errors that
// did not come out of this package.
func KindOf(err error) FailureKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindTransport
}
