package patient

import "errors"

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrDisplayNameNeeded = errors.New("display name is required")
)
