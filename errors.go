package redq

import "errors"

var (
	// ErrConnectionClosed reports an operation on a connection that was
	// closed, locally or by the peer. Outstanding operations fail with it
	// instead of hanging.
	ErrConnectionClosed = errors.New("redq: connection closed")

	// ErrDriverStopped reports an operation submitted after Terminate.
	ErrDriverStopped = errors.New("redq: driver stopped")

	// ErrGroupClosed reports a submission to a loop group that was shut down.
	ErrGroupClosed = errors.New("redq: loop group closed")
)

// AuthError reports a failed authentication handshake during connection
// establishment. The underlying server reply is available via Unwrap.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "redq: authentication failed: " + e.Err.Error() }

func (e *AuthError) Unwrap() error { return e.Err }
