package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNoCases           = errors.New("no cases awaiting review")
	ErrInvalidIdentity   = errors.New("identity must not be empty")
	ErrMissingReviewer   = errors.New("reviewer id is required")
	ErrCaseNotHeld       = errors.New("case is not held by this reviewer")
	ErrDuplicateIdentity = errors.New("identity is already queued")
	ErrQueueClosed       = errors.New("queue is closed")
	ErrMissingAttribute  = errors.New("record is missing a required attribute")
	ErrUnknownLocation   = errors.New("location could not be resolved")
)

// MissingAttributeError names the attribute a worker needed but did not find.
// It matches ErrMissingAttribute under errors.Is.
type MissingAttributeError struct {
	Key string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("missing attribute %q", e.Key)
}

func (e *MissingAttributeError) Is(target error) bool {
	return target == ErrMissingAttribute
}

// TransientError marks a failure of an external call that is worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure that will not go away by retrying the same call.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Permanent wraps err as non-retryable. A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsTransient reports whether any error in err's chain is a *TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsPermanent reports whether any error in err's chain is a *PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
