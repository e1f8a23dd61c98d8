package pasetotoken

import (
	"strings"

	paseto "aidanwoods.dev/go-paseto"
)

type Mode string

const (
	ModeLocal  Mode = "local"  // v4.local, encrypted with a shared key
	ModePublic Mode = "public" // v4.public, signed with ed25519
)

// Keys holds the key material for one mode. In public mode a verify-only
// deployment carries just the public half.
type Keys struct {
	Mode Mode

	Symmetric *paseto.V4SymmetricKey
	Secret    *paseto.V4AsymmetricSecretKey
	Public    *paseto.V4AsymmetricPublicKey
}

type KeyStrings struct {
	Mode         Mode
	SymmetricHex string
	SecretHex    string
	PublicHex    string
}

func LoadKeys(in KeyStrings) (Keys, error) {
	switch in.Mode {
	case ModeLocal:
		return loadLocal(strings.TrimSpace(in.SymmetricHex))
	case ModePublic:
		return loadPublic(strings.TrimSpace(in.SecretHex), strings.TrimSpace(in.PublicHex))
	}
	return Keys{}, ErrConfig{Msg: "mode must be local or public, got " + string(in.Mode)}
}

func loadLocal(h string) (Keys, error) {
	if h == "" {
		return Keys{}, ErrConfig{Msg: "local mode needs local_key_hex"}
	}
	k, err := paseto.V4SymmetricKeyFromHex(h)
	if err != nil {
		return Keys{}, ErrConfig{Msg: "local_key_hex: " + err.Error()}
	}
	return Keys{Mode: ModeLocal, Symmetric: &k}, nil
}

func loadPublic(secretHex, publicHex string) (Keys, error) {
	if secretHex == "" && publicHex == "" {
		return Keys{}, ErrConfig{Msg: "public mode needs secret_key_hex or public_key_hex"}
	}
	out := Keys{Mode: ModePublic}
	if secretHex != "" {
		sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(secretHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "secret_key_hex: " + err.Error()}
		}
		pk := sk.Public()
		out.Secret, out.Public = &sk, &pk
	}
	// An explicit public key wins over the derived one.
	if publicHex != "" {
		pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(publicHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "public_key_hex: " + err.Error()}
		}
		out.Public = &pk
	}
	return out, nil
}

func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Mode: ModeLocal, Symmetric: &k}
}

func NewPublicKeys() Keys {
	sk := paseto.NewV4AsymmetricSecretKey()
	pk := sk.Public()
	return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}
}

// sealer turns a token into its wire form and back.
type sealer interface {
	seal(tok *paseto.Token, implicit []byte) (string, error)
	open(p *paseto.Parser, raw string, implicit []byte) (*paseto.Token, error)
}

type localSealer struct{ key paseto.V4SymmetricKey }

func (s localSealer) seal(tok *paseto.Token, implicit []byte) (string, error) {
	return tok.V4Encrypt(s.key, implicit), nil
}

func (s localSealer) open(p *paseto.Parser, raw string, implicit []byte) (*paseto.Token, error) {
	return p.ParseV4Local(s.key, raw, implicit)
}

type publicSealer struct {
	secret *paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
}

func (s publicSealer) seal(tok *paseto.Token, implicit []byte) (string, error) {
	if s.secret == nil {
		return "", ErrConfig{Msg: "verify-only key set cannot issue tokens"}
	}
	return tok.V4Sign(*s.secret, implicit), nil
}

func (s publicSealer) open(p *paseto.Parser, raw string, implicit []byte) (*paseto.Token, error) {
	return p.ParseV4Public(s.public, raw, implicit)
}

func (k Keys) sealer() (sealer, error) {
	switch k.Mode {
	case ModeLocal:
		if k.Symmetric == nil {
			return nil, ErrConfig{Msg: "local mode without a symmetric key"}
		}
		return localSealer{key: *k.Symmetric}, nil
	case ModePublic:
		if k.Public == nil {
			return nil, ErrConfig{Msg: "public mode without a public key"}
		}
		return publicSealer{secret: k.Secret, public: *k.Public}, nil
	}
	return nil, ErrConfig{Msg: "unknown mode " + string(k.Mode)}
}
