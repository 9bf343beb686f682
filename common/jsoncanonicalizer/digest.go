package jsoncanonicalizer

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Digest returns the SHA-256 digest of data.
func Digest(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ToBase64URL encodes bytes as unpadded base64url.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// ContentHash canonicalizes v and returns the base64url-encoded SHA-256
// digest of the canonical form. This is the hash anchor format used by the
// mandate chain (cart_hash, pmt_hash, cred_hash).
func ContentHash(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize content: %w", err)
	}
	return ToBase64URL(Digest(canonical)), nil
}
