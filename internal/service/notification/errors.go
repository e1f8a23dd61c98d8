package notification

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNoRecipients     = errors.New("no recipients found")
	ErrUnknownKind      = errors.New("unknown notification kind")
	ErrPatientRequired  = errors.New("patient is required for this notification kind")
	ErrSubjectNotFound  = errors.New("notification subject not found")
	ErrSubjectMismatch  = errors.New("notification subject belongs to another patient")
	ErrNoChannels       = errors.New("no notification channels configured")
	ErrNoDestination    = errors.New("recipient has no address for this channel")
	ErrPublisherStopped = errors.New("notification publisher is stopped")
)

// DeliveryError is one failed send; its message is what the log row keeps.
type DeliveryError struct {
	RecipientID uuid.UUID
	Channel     string
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s to %s: %v", e.Channel, e.RecipientID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
