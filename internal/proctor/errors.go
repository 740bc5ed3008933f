package proctor

import (
	"errors"
	"fmt"
)

// ===== ENGINE ERRORS =====

var (
	// ErrOutOfOrder indicates an answer was submitted for a question that is
	// not the session's current question. The client and authority have
	// desynchronized and the session should be abandoned, not repaired.
	ErrOutOfOrder = errors.New("answer submitted for non-current question")

	// ErrConflict indicates a session is already active, or a submission is
	// already in flight.
	ErrConflict = errors.New("session conflict")

	ErrNotFound       = errors.New("interview not found")
	ErrSessionClosed  = errors.New("session is no longer accepting input")
	ErrSessionStarted = errors.New("session already started")

	// ErrUnauthorized indicates the authority rejected the caller's
	// credentials. Retrying with the same token cannot succeed.
	ErrUnauthorized = errors.New("authority rejected credentials")
)

// DeviceError reports a camera or microphone that is unavailable or denied.
// It blocks the dependent capability but never the whole interview.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s unavailable: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// TransportError wraps a network failure on a remote call. Telemetry callers
// swallow it; everything else surfaces it so the candidate can retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ===== ERROR HELPERS =====

func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsOutOfOrder(err error) bool { return errors.Is(err, ErrOutOfOrder) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
