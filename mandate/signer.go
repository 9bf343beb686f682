package mandate

import (
	"crypto/rsa"
	"time"

	jwtengine "github.com/amdoi7/anp-go/common/jwt"
	"github.com/amdoi7/anp-go/common/keycodec"
)

// Signer is the capability builders need: turn claims into a signed token
// with a bounded lifetime. Builders hold no key material themselves.
type Signer interface {
	SignClaims(claims map[string]any, ttl time.Duration) (string, error)
}

// JWTSigner signs mandate claims as JWTs with standard iss/iat/exp claims
// and an optional aud claim and kid header.
type JWTSigner struct {
	alg      jwtengine.Algorithm
	key      any
	issuer   string
	keyID    string
	audience string
	now      func() time.Time
}

// SignerOption configures a JWTSigner.
type SignerOption func(*JWTSigner)

// WithAudience adds an aud claim to every token.
func WithAudience(audience string) SignerOption {
	return func(s *JWTSigner) {
		s.audience = audience
	}
}

// WithKeyID overrides the kid header. The ES256K default is
// "<issuerDID>#key-1".
func WithKeyID(keyID string) SignerOption {
	return func(s *JWTSigner) {
		s.keyID = keyID
	}
}

// WithSignerClock overrides the iat/exp clock.
func WithSignerClock(now func() time.Time) SignerOption {
	return func(s *JWTSigner) {
		s.now = now
	}
}

// NewES256KSigner creates a signer for a DID-held secp256k1 key.
func NewES256KSigner(key *keycodec.KeyMaterial, issuerDID string, opts ...SignerOption) *JWTSigner {
	s := &JWTSigner{
		alg:    jwtengine.ES256K,
		key:    key,
		issuer: issuerDID,
		keyID:  issuerDID + "#key-1",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRS256Signer creates a signer backed by an RSA key.
func NewRS256Signer(key *rsa.PrivateKey, issuer string, opts ...SignerOption) *JWTSigner {
	s := &JWTSigner{
		alg:    jwtengine.RS256,
		key:    key,
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignClaims implements Signer.
func (s *JWTSigner) SignClaims(claims map[string]any, ttl time.Duration) (string, error) {
	now := s.now().UTC()

	merged := make(map[string]any, len(claims)+4)
	for k, v := range claims {
		merged[k] = v
	}
	merged["iss"] = s.issuer
	merged["iat"] = now.Unix()
	merged["exp"] = now.Add(ttl).Unix()
	if s.audience != "" {
		merged["aud"] = s.audience
	}

	var headerExtras map[string]any
	if s.keyID != "" {
		headerExtras = map[string]any{"kid": s.keyID}
	}
	return jwtengine.Sign(merged, s.key, s.alg, headerExtras)
}
