// Package jwt is the token engine for the SDK: RS256 for bearer access
// tokens, ES256K for everything signed with a DID key. Both algorithms are
// driven through golang-jwt; ES256K is registered as a custom signing
// method because mainstream JOSE stacks do not carry secp256k1.
package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// VerifyOptions control claim validation during Verify.
type VerifyOptions struct {
	// Audience, when non-empty, must intersect the token's aud claim
	// (string or array of strings).
	Audience string

	// Now overrides the clock used for exp/nbf validation. Defaults to
	// time.Now.
	Now func() time.Time
}

// Sign builds and signs a token. The header always carries typ=JWT and the
// algorithm name; headerExtras (e.g. kid) are merged on top.
func Sign(claims map[string]any, key any, alg Algorithm, headerExtras map[string]any) (string, error) {
	if err := alg.checkSigningKey(key); err != nil {
		return "", err
	}
	method, err := alg.signingMethod()
	if err != nil {
		return "", err
	}

	token := gojwt.NewWithClaims(method, gojwt.MapClaims(claims))
	token.Header["typ"] = "JWT"
	for k, v := range headerExtras {
		token.Header[k] = v
	}

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}
	return signed, nil
}

// Verify checks the token signature against key under exactly the given
// algorithm and validates exp, nbf and (if requested) aud. It returns the
// payload claims on success.
func Verify(tokenString string, key any, alg Algorithm, opts *VerifyOptions) (map[string]any, error) {
	if opts == nil {
		opts = &VerifyOptions{}
	}
	if err := alg.checkVerificationKey(key); err != nil {
		return nil, err
	}

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	// The alg header is checked before any parsing so that a mismatch is
	// reported as such rather than as a broken signature.
	headerAlg, err := peekAlgorithm(parts[0])
	if err != nil {
		return nil, err
	}
	if headerAlg != alg.Name() {
		return nil, fmt.Errorf("%w: token uses %q, verifier expects %q", ErrAlgorithmMismatch, headerAlg, alg.Name())
	}

	parserOpts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{alg.Name()}),
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, gojwt.WithAudience(opts.Audience))
	}
	if opts.Now != nil {
		parserOpts = append(parserOpts, gojwt.WithTimeFunc(opts.Now))
	}

	parser := gojwt.NewParser(parserOpts...)
	claims := gojwt.MapClaims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*gojwt.Token) (any, error) {
		return key, nil
	}); err != nil {
		return nil, translateParseError(err)
	}
	return map[string]any(claims), nil
}

// peekAlgorithm decodes only the header segment and extracts alg.
func peekAlgorithm(headerSegment string) (string, error) {
	headerBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(headerSegment, "="))
	if err != nil {
		return "", fmt.Errorf("%w: invalid header encoding: %w", ErrMalformedToken, err)
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return "", fmt.Errorf("%w: invalid header JSON: %w", ErrMalformedToken, err)
	}
	if header.Alg == "" {
		return "", fmt.Errorf("%w: header has no alg", ErrMalformedToken)
	}
	return header.Alg, nil
}

// translateParseError maps golang-jwt failures onto this package's named
// errors, preserving the original as the wrapped cause.
func translateParseError(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, gojwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %w", ErrTokenNotYetValid, err)
	case errors.Is(err, gojwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %w", ErrAudienceMismatch, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid), errors.Is(err, gojwt.ErrSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, gojwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	case errors.Is(err, ErrInvalidKeyType):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
}

// DecodePayload extracts the payload claims of a token without verifying
// it. Callers must treat the result as untrusted.
func DecodePayload(tokenString string) (map[string]any, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid payload encoding: %w", ErrMalformedToken, err)
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: invalid payload JSON: %w", ErrMalformedToken, err)
	}
	return claims, nil
}
