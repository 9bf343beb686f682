// Package auth implements the DID-WBA Authorization header protocol:
// the Authenticator builds signed headers for outgoing requests and the
// Verifier checks incoming ones (timestamp skew, nonce replay, DID
// resolution, verification-method match, signature).
package auth

import "time"

// Authentication schemes carried in the Authorization header.
const (
	SchemeDIDWba = "DIDWba"
	SchemeBearer = "Bearer"
)

// AuthorizationHeader is the HTTP header the protocol reads and writes.
const AuthorizationHeader = "Authorization"

// Default protocol windows.
const (
	// DefaultMaxTimestampSkew is the accepted distance between the header
	// timestamp and the verifier clock, inclusive at both edges.
	DefaultMaxTimestampSkew = 5 * time.Minute

	// DefaultNonceTTL is how long a (did, nonce) pair is held for replay
	// detection; it must exceed the timestamp window.
	DefaultNonceTTL = 6 * time.Minute

	// DefaultHeaderCacheTTL bounds reuse of a signed header for identical
	// (method, url) calls.
	DefaultHeaderCacheTTL = 30 * time.Second
)
