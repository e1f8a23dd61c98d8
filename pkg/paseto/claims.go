package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

// TokenType separates short-lived access tokens from the refresh tokens that
// mint them; a refresh token presented as a bearer is rejected.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is what Verify hands back after the footer, signature and time
// checks pass. Role is the login role, not a casbin role.
type Claims struct {
	Type      TokenType
	UserID    uuid.UUID
	Role      string
	SessionID *uuid.UUID

	Issuer    string
	Audience  string
	Subject   string
	TokenID   string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}

// Claims satisfies reqctx.Caller.

func (c *Claims) GetUserID() uuid.UUID     { return c.UserID }
func (c *Claims) GetRole() string          { return c.Role }
func (c *Claims) GetSessionID() *uuid.UUID { return c.SessionID }
