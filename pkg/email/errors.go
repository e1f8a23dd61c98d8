package email

import "errors"

// ErrDisabled is returned by Send when email.enabled is false, so callers
// can record the attempt as skipped rather than failed.
var ErrDisabled = errors.New("email: sending is disabled")

// ErrInvalidMessage is a message or config the client refuses before dialing.
type ErrInvalidMessage struct{ Reason string }

func (e ErrInvalidMessage) Error() string { return "email: invalid message: " + e.Reason }

// SendError wraps a failure reported by the SMTP server or the connection.
type SendError struct{ Err error }

func (e SendError) Error() string { return "email: smtp: " + e.Err.Error() }
func (e SendError) Unwrap() error { return e.Err }
