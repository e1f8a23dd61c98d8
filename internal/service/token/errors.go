package token

import "errors"

var (
	ErrNotFound    = errors.New("token not found")
	ErrExpired     = errors.New("token has expired")
	ErrAlreadyUsed = errors.New("token has already been used")
	ErrRevoked     = errors.New("share link has been revoked")
	// ErrUnavailable marks store failures that are worth retrying.
	ErrUnavailable = errors.New("token store unavailable")

	ErrUnknownKind       = errors.New("unknown token kind")
	ErrTTLRequired       = errors.New("activation tokens require a positive ttl")
	ErrUnsupportedPolicy = errors.New("share tokens cannot be single-use")
)
