// Package anp provides DID-WBA request authentication and the AP2
// payment-mandate chain for agent-to-agent commerce.
//
// The auth package signs and verifies DIDWba Authorization headers, the
// didwba package resolves did:wba identifiers to hosted DID documents, and
// the mandate package issues and verifies the hash-linked cart, payment,
// and webhook-credential tokens. Shared building blocks (RFC 8785
// canonicalization, secp256k1 compact signatures, key encoding, and the
// ES256K JWT method) live under common.
package anp
