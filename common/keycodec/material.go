package keycodec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
)

// KeyMaterial holds a validated secp256k1 private scalar together with its
// derived public point. Instances are immutable; accessors return copies.
type KeyMaterial struct {
	privateScalar []byte // 32 bytes
	publicPoint   []byte // uncompressed, 65 bytes (0x04 || X || Y)
}

// NewKeyMaterial validates a 32-byte scalar in [1, n-1] and derives its
// public point.
func NewKeyMaterial(scalar []byte) (*KeyMaterial, error) {
	if err := validateScalar(scalar); err != nil {
		return nil, err
	}
	return &KeyMaterial{
		privateScalar: append([]byte(nil), scalar...),
		publicPoint:   derivePublicPoint(scalar),
	}, nil
}

// KeyMaterialFromHex parses a hex-encoded private scalar, with or without a
// 0x prefix.
func KeyMaterialFromHex(privHex string) (*KeyMaterial, error) {
	scalar, err := hex.DecodeString(strings.TrimPrefix(privHex, "0x"))
	if err != nil {
		return nil, &KeyFormatError{Reason: "private key is not valid hex", Err: err}
	}
	return NewKeyMaterial(scalar)
}

// GenerateKeyMaterial creates fresh key material from crypto/rand.
func GenerateKeyMaterial() (*KeyMaterial, error) {
	for {
		scalar := make([]byte, ScalarSize)
		if _, err := rand.Read(scalar); err != nil {
			return nil, fmt.Errorf("failed to read randomness: %w", err)
		}
		km, err := NewKeyMaterial(scalar)
		if err == nil {
			return km, nil
		}
		// Out-of-range draw; vanishingly rare, retry.
	}
}

// PrivateScalar returns a copy of the 32-byte private scalar.
func (k *KeyMaterial) PrivateScalar() []byte {
	return append([]byte(nil), k.privateScalar...)
}

// PublicPoint returns a copy of the uncompressed 65-byte public point.
func (k *KeyMaterial) PublicPoint() []byte {
	return append([]byte(nil), k.publicPoint...)
}

// Public returns the public half as validated PublicKeyMaterial.
func (k *KeyMaterial) Public() *PublicKeyMaterial {
	return &PublicKeyMaterial{point: append([]byte(nil), k.publicPoint...)}
}

// PublicKeyMaterial is a validated secp256k1 public point. It is only
// constructed from bytes that parse as a point on the curve, so consumers
// never handle duck-typed key blobs.
type PublicKeyMaterial struct {
	point []byte // uncompressed, 65 bytes
}

// NewPublicKeyMaterial accepts a compressed (33-byte) or uncompressed
// (65-byte) SEC1 point encoding and normalizes it to uncompressed form.
func NewPublicKeyMaterial(encoded []byte) (*PublicKeyMaterial, error) {
	pub, err := btcec.ParsePubKey(encoded)
	if err != nil {
		return nil, &KeyFormatError{Reason: "invalid secp256k1 public key", Err: err}
	}
	return &PublicKeyMaterial{point: pub.SerializeUncompressed()}, nil
}

// PublicKeyMaterialFromHex parses a hex-encoded point, with or without a 0x
// prefix.
func PublicKeyMaterialFromHex(pubHex string) (*PublicKeyMaterial, error) {
	encoded, err := hex.DecodeString(strings.TrimPrefix(pubHex, "0x"))
	if err != nil {
		return nil, &KeyFormatError{Reason: "public key is not valid hex", Err: err}
	}
	return NewPublicKeyMaterial(encoded)
}

// Uncompressed returns a copy of the 65-byte uncompressed encoding.
func (p *PublicKeyMaterial) Uncompressed() []byte {
	return append([]byte(nil), p.point...)
}

// Compressed returns the 33-byte compressed encoding.
func (p *PublicKeyMaterial) Compressed() []byte {
	pub, err := btcec.ParsePubKey(p.point)
	if err != nil {
		// The point was validated at construction.
		panic(fmt.Sprintf("keycodec: corrupt public key material: %v", err))
	}
	return pub.SerializeCompressed()
}
