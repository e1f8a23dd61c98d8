package identity

import "errors"

var (
	ErrIdentityExists     = errors.New("an identity with this email already exists")
	ErrNotFound           = errors.New("identity not found")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidRole        = errors.New("invalid identity role")
	ErrEmptyPassword      = errors.New("password is required")
)
