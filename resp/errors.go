package resp

import "errors"

// ErrIncomplete reports that a buffer holds only a prefix of a value.
// It is a control signal, not a failure: append more bytes and retry.
var ErrIncomplete = errors.New("resp: incomplete value")

// ParseError reports bytes that do not conform to the wire grammar at all:
// an unrecognized leading marker, a corrupt length prefix, a missing CRLF.
// The connection it came from must be considered broken.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "resp: " + e.Message + ": " + e.Err.Error()
	}
	return "resp: " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// TypeMismatchError reports a well-framed reply whose shape does not match
// what the caller asked a Value to narrow to.
type TypeMismatchError struct {
	Want Type
	Got  Type
	Null bool // the value had the right marker but was null
}

func (e *TypeMismatchError) Error() string {
	if e.Null {
		return "resp: type mismatch: want " + e.Want.String() + ", got null " + e.Got.String()
	}
	return "resp: type mismatch: want " + e.Want.String() + ", got " + e.Got.String()
}

// ReplyError is a failure reported by the server inside the protocol
// (an error value). The connection itself is still healthy.
type ReplyError struct {
	Message string
}

func (e *ReplyError) Error() string { return "resp: server error: " + e.Message }
