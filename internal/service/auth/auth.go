// Package auth runs staff and patient login sessions: PASETO access and
// refresh tokens bound to a server-side session in Redis, so logout takes
// effect before the tokens expire.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/simorq_portal/internal/service/identity"
	pasetotoken "github.com/Alijeyrad/simorq_portal/pkg/paseto"
)

// ---- DTOs ----

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token's lifetime in seconds.
	ExpiresIn int64
	Role      string
}

// ---- Service ----

type Service interface {
	Login(ctx context.Context, email, password string) (*AuthTokens, error)
	// RefreshTokens issues a new access token; the refresh token is reused
	// until logout.
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	// Authenticate checks a bearer access token and its session.
	Authenticate(ctx context.Context, accessToken string) (*pasetotoken.Claims, error)
}

type authService struct {
	identities identity.Service
	tokens     *pasetotoken.Manager
	sessions   sessions
}

func New(rdb *redis.Client, identities identity.Service, tokens *pasetotoken.Manager) Service {
	return &authService{
		identities: identities,
		tokens:     tokens,
		sessions:   sessions{rdb: rdb, ttl: tokens.RefreshTTL()},
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	li, err := s.identities.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrInvalidEmail):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	sid, err := s.sessions.open(ctx, li.ID)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccess(li.ID, li.Role, &sid)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(li.ID, li.Role, &sid)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	slog.InfoContext(ctx, "auth: session opened", "identity_id", li.ID, "role", li.Role, "session_id", sid)
	return s.bundle(access, refresh, li.Role), nil
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.verify(refreshToken, pasetotoken.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	alive, err := s.sessions.touch(ctx, *claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("extend session: %w", err)
	}
	if !alive {
		return nil, ErrSessionNotFound
	}

	access, err := s.tokens.IssueAccess(claims.UserID, claims.Role, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return s.bundle(access, refreshToken, claims.Role), nil
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	closed, err := s.sessions.close(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if !closed {
		slog.DebugContext(ctx, "auth: logout of an expired session", "session_id", sessionID)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*pasetotoken.Claims, error) {
	claims, err := s.verify(accessToken, pasetotoken.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.check(ctx, *claims.SessionID); err != nil {
		return nil, err
	}
	return claims, nil
}

// verify accepts only tokens of the wanted type that carry a session id.
func (s *authService) verify(raw string, want pasetotoken.TokenType) (*pasetotoken.Claims, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil || claims.Type != want || claims.SessionID == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) bundle(access, refresh, role string) *AuthTokens {
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		Role:         role,
	}
}
