// Package pasetotoken issues and verifies the v4 PASETO access and refresh
// tokens behind staff and patient sessions.
package pasetotoken

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// custom claim names
const (
	claimType    = "typ"
	claimUser    = "uid"
	claimRole    = "role"
	claimSession = "sid"
)

type Config struct {
	Mode       Mode
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Implicit is bound into every token without being transmitted.
	Implicit []byte
}

type Manager struct {
	cfg    Config
	sealer sealer
	parser paseto.Parser
}

func New(cfg Config, keys Keys) (*Manager, error) {
	switch {
	case cfg.Mode != keys.Mode:
		return nil, ErrConfig{Msg: "config mode and key mode differ"}
	case cfg.Issuer == "":
		return nil, ErrConfig{Msg: "issuer is required"}
	case cfg.Audience == "":
		return nil, ErrConfig{Msg: "audience is required"}
	}
	s, err := keys.sealer()
	if err != nil {
		return nil, err
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}

	// Time rules read the clock on every parse.
	p := paseto.NewParser()
	p.AddRule(paseto.IssuedBy(cfg.Issuer))
	p.AddRule(paseto.ForAudience(cfg.Audience))
	p.AddRule(paseto.NotExpired())
	p.AddRule(paseto.NotBeforeNbf())

	return &Manager{cfg: cfg, sealer: s, parser: p}, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.cfg.AccessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

func (m *Manager) IssueAccess(userID uuid.UUID, role string, sessionID *uuid.UUID) (string, error) {
	return m.issue(TokenTypeAccess, userID, role, sessionID, m.cfg.AccessTTL)
}

func (m *Manager) IssueRefresh(userID uuid.UUID, role string, sessionID *uuid.UUID) (string, error) {
	return m.issue(TokenTypeRefresh, userID, role, sessionID, m.cfg.RefreshTTL)
}

func (m *Manager) issue(typ TokenType, userID uuid.UUID, role string, sessionID *uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(newJTI())
	tok.SetSubject(userID.String())
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(ttl))

	tok.SetString(claimType, string(typ))
	tok.SetString(claimUser, userID.String())
	tok.SetString(claimRole, role)
	if sessionID != nil {
		tok.SetString(claimSession, sessionID.String())
	}
	return m.sealer.seal(&tok, m.cfg.Implicit)
}

// Verify checks signature or encryption plus issuer, audience and time
// window. Every failure is an ErrInvalidToken.
func (m *Manager) Verify(raw string) (*Claims, error) {
	tok, err := m.sealer.open(&m.parser, raw, m.cfg.Implicit)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	c, err := readClaims(tok)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	c.Issuer, c.Audience = m.cfg.Issuer, m.cfg.Audience
	return c, nil
}

func newJTI() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// claimReader keeps the first error so the reads below stay linear.
type claimReader struct {
	tok *paseto.Token
	err error
}

func (r *claimReader) str(fn func() (string, error)) string {
	if r.err != nil {
		return ""
	}
	v, err := fn()
	r.err = err
	return v
}

func (r *claimReader) when(fn func() (time.Time, error)) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	v, err := fn()
	r.err = err
	return v
}

func (r *claimReader) custom(key string) string {
	return r.str(func() (string, error) { return r.tok.GetString(key) })
}

func (r *claimReader) id(key string) uuid.UUID {
	s := r.custom(key)
	if r.err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	r.err = err
	return id
}

func readClaims(tok *paseto.Token) (*Claims, error) {
	r := &claimReader{tok: tok}
	c := &Claims{
		TokenID:   r.str(tok.GetJti),
		Subject:   r.str(tok.GetSubject),
		IssuedAt:  r.when(tok.GetIssuedAt),
		NotBefore: r.when(tok.GetNotBefore),
		ExpiresAt: r.when(tok.GetExpiration),
		Type:      TokenType(r.custom(claimType)),
		UserID:    r.id(claimUser),
		Role:      r.custom(claimRole),
	}
	if r.err != nil {
		return nil, r.err
	}

	// sid is optional, but a present one must parse.
	if raw, err := tok.GetString(claimSession); err == nil {
		sid, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		c.SessionID = &sid
	}
	return c, nil
}
