package auth

import (
	"context"
	"crypto/rsa"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/amdoi7/anp-go/common/crypto"
	jwtengine "github.com/amdoi7/anp-go/common/jwt"
	"github.com/amdoi7/anp-go/didwba"
)

// Result is the outcome of a successful verification.
type Result struct {
	// DID that authenticated the request: the header's did for DIDWba,
	// the sub claim for Bearer tokens.
	DID string
}

// Verifier checks incoming Authorization headers. Nonce replay state and
// the DID document cache live in injected collaborators; the Verifier
// itself holds no mutable state and is safe for concurrent use.
type Verifier struct {
	resolver  *didwba.Resolver
	nonces    NonceStore
	bearerKey *rsa.PublicKey

	maxSkew  time.Duration
	nonceTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithNonceStore enables replay defense through the given store.
func WithNonceStore(store NonceStore) VerifierOption {
	return func(v *Verifier) {
		v.nonces = store
	}
}

// WithBearerKey enables the Bearer branch, verifying RS256 access tokens
// against the given public key.
func WithBearerKey(key *rsa.PublicKey) VerifierOption {
	return func(v *Verifier) {
		v.bearerKey = key
	}
}

// WithMaxTimestampSkew overrides the accepted timestamp window.
func WithMaxTimestampSkew(skew time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.maxSkew = skew
	}
}

// WithNonceTTL overrides how long nonces are retained.
func WithNonceTTL(ttl time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.nonceTTL = ttl
	}
}

// WithVerifierClock overrides the verification clock.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// WithVerifierLogger sets the logger for verification outcomes.
func WithVerifierLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// NewVerifier creates a Verifier resolving DID documents through resolver.
func NewVerifier(resolver *didwba.Resolver, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		resolver: resolver,
		maxSkew:  DefaultMaxTimestampSkew,
		nonceTTL: DefaultNonceTTL,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyRequest verifies r's Authorization header, taking the service
// identity from the request Host.
func (v *Verifier) VerifyRequest(ctx context.Context, r *http.Request) (*Result, error) {
	return v.Verify(ctx, r.Header, hostOnly(r.Host))
}

// Verify checks the Authorization header in headers against the service
// host the request was addressed to. Each step short-circuits to a tagged
// *Error; there are no retries at this layer.
func (v *Verifier) Verify(ctx context.Context, headers http.Header, service string) (*Result, error) {
	raw := headers.Get(AuthorizationHeader)
	if raw == "" {
		return nil, errCodef(CodeMissingHeader, "no %s header", AuthorizationHeader)
	}

	scheme, params, _ := strings.Cut(raw, " ")
	switch scheme {
	case SchemeBearer:
		return v.verifyBearer(params)
	case SchemeDIDWba:
		// Handled below.
	default:
		return nil, errCodef(CodeUnsupportedScheme, "scheme %q", scheme)
	}

	values, err := ParseHeader(params)
	if err != nil {
		return nil, errCode(CodeInvalidHeaderFormat, err)
	}

	if err := v.checkTimestamp(values.Timestamp); err != nil {
		return nil, err
	}

	if v.nonces != nil {
		fresh, err := v.nonces.TestAndSet(ctx, values.DID+":"+values.Nonce, v.nonceTTL)
		if err != nil {
			return nil, errCodef(CodeVerificationFailed, "nonce store: %w", err)
		}
		if !fresh {
			return nil, errCodef(CodeNonceReused, "nonce %q already used by %s", values.Nonce, values.DID)
		}
	}

	doc, err := v.resolver.Resolve(ctx, values.DID)
	if err != nil {
		return nil, errCodef(CodeVerificationFailed, "DID resolution: %w", err)
	}

	vm, err := doc.SelectVerificationMethod(values.VerificationMethod)
	if err != nil {
		return nil, errCode(CodeVMNotFound, err)
	}
	pub, err := vm.PublicKey()
	if err != nil {
		return nil, errCodef(CodeVerificationFailed, "verification method key: %w", err)
	}

	digest, err := payloadDigest(values.Nonce, values.Timestamp, service, values.DID)
	if err != nil {
		return nil, errCode(CodeVerificationFailed, err)
	}
	signature, err := decodeSignature(values.Signature)
	if err != nil {
		return nil, errCode(CodeInvalidSignature, err)
	}
	if !crypto.Verify(pub, digest, signature) {
		return nil, errCodef(CodeInvalidSignature, "signature does not verify for %s", values.DID)
	}

	v.logger.Debug("verified DIDWba header", "did", values.DID, "service", service)
	return &Result{DID: values.DID}, nil
}

// checkTimestamp parses the RFC3339 timestamp and enforces the skew
// window, inclusive at both edges.
func (v *Verifier) checkTimestamp(timestamp string) error {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return errCodef(CodeInvalidTimestamp, "timestamp %q is not RFC3339: %w", timestamp, err)
	}
	skew := v.now().Sub(ts)
	if skew < 0 {
		skew = -skew
	}
	if skew > v.maxSkew {
		return errCodef(CodeInvalidTimestamp, "timestamp %s outside ±%s window", timestamp, v.maxSkew)
	}
	return nil
}

// verifyBearer validates an RS256 access token and requires a sub claim.
func (v *Verifier) verifyBearer(token string) (*Result, error) {
	if v.bearerKey == nil {
		return nil, errCodef(CodeUnsupportedScheme, "bearer tokens not accepted: no verification key configured")
	}
	claims, err := jwtengine.Verify(token, v.bearerKey, jwtengine.RS256, &jwtengine.VerifyOptions{Now: v.now})
	if err != nil {
		return nil, errCode(CodeInvalidJWT, err)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errCodef(CodeInvalidJWTSub, "token has no sub claim")
	}
	return &Result{DID: sub}, nil
}

// hostOnly strips a port from a Host header value.
func hostOnly(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}
