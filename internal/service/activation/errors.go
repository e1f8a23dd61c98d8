package activation

import "errors"

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrAlreadyActivated   = errors.New("patient account is already activated")
	ErrProvisioningFailed = errors.New("could not provision a login for this patient")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInviteThrottled    = errors.New("an invite was sent recently, try again later")
	ErrDeliveryFailed     = errors.New("invite email could not be delivered")
)
