// Package crypto provides the secp256k1 sign/verify primitive used by the
// auth header protocol and the JWT engine. Signatures are 64-byte compact
// r||s values over a 32-byte digest, deterministic per RFC 6979, and
// verification enforces canonical low-S form.
package crypto

import (
	"crypto/sha256"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/amdoi7/anp-go/common/keycodec"
)

// SignatureSize is the length of a compact r||s signature.
const SignatureSize = 64

// Digest hashes a signing payload with SHA-256.
func Digest(payload []byte) []byte {
	sum := sha256.Sum256(payload)
	return sum[:]
}

// Sign produces a 64-byte compact signature over a 32-byte digest. The
// recovery byte of the underlying recoverable signature is dropped.
func Sign(key *keycodec.KeyMaterial, digest []byte) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("crypto: key material is nil")
	}
	if len(digest) != sha256.Size {
		return nil, fmt.Errorf("crypto: digest must be %d bytes, got %d", sha256.Size, len(digest))
	}

	priv, err := ethcrypto.ToECDSA(key.PrivateScalar())
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid private key: %w", err)
	}

	signature, err := ethcrypto.Sign(digest, priv)
	if err != nil {
		return nil, fmt.Errorf("crypto: sign failed: %w", err)
	}
	if len(signature) != SignatureSize+1 {
		return nil, fmt.Errorf("crypto: unexpected signature length %d", len(signature))
	}
	return signature[:SignatureSize], nil
}

// Verify checks a compact signature over a digest. It is total over
// untrusted input: any malformed signature, digest, or key yields false.
// Signatures with a non-canonical (high) S are rejected to prevent
// malleability.
func Verify(pub *keycodec.PublicKeyMaterial, digest, signature []byte) bool {
	if pub == nil || len(digest) != sha256.Size || len(signature) != SignatureSize {
		return false
	}
	if !isCanonicalS(signature[32:]) {
		return false
	}
	return ethcrypto.VerifySignature(pub.Compressed(), digest, signature)
}

// isCanonicalS reports whether s is a valid scalar in the lower half of the
// curve order.
func isCanonicalS(sBytes []byte) bool {
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(sBytes); overflow {
		return false
	}
	return !s.IsZero() && !s.IsOverHalfOrder()
}

// VerifyKeyPair reports whether the public point belongs to the private
// scalar.
func VerifyKeyPair(key *keycodec.KeyMaterial, pub *keycodec.PublicKeyMaterial) (bool, error) {
	if key == nil || pub == nil {
		return false, fmt.Errorf("crypto: key material is nil")
	}
	probe := Digest([]byte("anp-go key pair probe"))
	signature, err := Sign(key, probe)
	if err != nil {
		return false, err
	}
	return Verify(pub, probe, signature), nil
}
