package jwt

import "errors"

// Verification failures are distinct, named errors rather than a boolean
// result, matching the fail-fast propagation policy of the wider SDK.
var (
	ErrMalformedToken    = errors.New("jwt: malformed token")
	ErrAlgorithmMismatch = errors.New("jwt: algorithm mismatch")
	ErrTokenExpired      = errors.New("jwt: token expired")
	ErrTokenNotYetValid  = errors.New("jwt: token not yet valid")
	ErrAudienceMismatch  = errors.New("jwt: audience mismatch")
	ErrInvalidSignature  = errors.New("jwt: invalid signature")
	ErrInvalidKeyType    = errors.New("jwt: invalid key type")
	ErrUnknownAlgorithm  = errors.New("jwt: unknown algorithm")
	ErrSigningFailed     = errors.New("jwt: signing failed")
)
