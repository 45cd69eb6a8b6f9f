package auth

import (
	"errors"
	"fmt"
)

// FailureKind classifies token verification failures. The taxonomy exists for
// server-side logging and diagnosis only; every kind maps to the same generic
// unauthorized outcome at the HTTP boundary so callers cannot distinguish a
// bad token from a deleted subject.
type FailureKind string

const (
	// FailureMalformed covers undecodable tokens, bad signatures, algorithm
	// mismatches and expired tokens.
	FailureMalformed FailureKind = "MALFORMED"
	// FailureMissingSubject means the token decoded but carries no subject claim.
	FailureMissingSubject FailureKind = "MISSING_SUBJECT"
	// FailureSubjectNotFound means the subject claim resolved to nothing in the
	// credential store.
	FailureSubjectNotFound FailureKind = "SUBJECT_NOT_FOUND"
	// FailureRevoked means the token was explicitly revoked before expiry.
	FailureRevoked FailureKind = "REVOKED"
)

// Failure is a typed token verification error. Verification failures are never
// retried; a malformed or expired token cannot become valid.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("token %s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("token %s", f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure builds a Failure of the given kind wrapping an optional cause.
func NewFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

// FailureKindOf extracts the failure kind from an error chain, or empty string
// when the error is not a verification failure.
func FailureKindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
