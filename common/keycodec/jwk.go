package keycodec

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// JWK key type and curve names for secp256k1 keys.
const (
	JWKTypeEC         = "EC"
	JWKCurveSecp256k1 = "secp256k1"
)

// JWK is the JSON Web Key form of a secp256k1 public key, as published in
// DID document verification methods.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	Kid string `json:"kid,omitempty"`
}

// NewJWK builds the JWK form of a public key.
func NewJWK(pub *PublicKeyMaterial) *JWK {
	point := pub.Uncompressed()
	return &JWK{
		Kty: JWKTypeEC,
		Crv: JWKCurveSecp256k1,
		X:   base64.RawURLEncoding.EncodeToString(point[1:33]),
		Y:   base64.RawURLEncoding.EncodeToString(point[33:65]),
	}
}

// PublicKeyMaterial converts the JWK back into a validated public point.
func (j *JWK) PublicKeyMaterial() (*PublicKeyMaterial, error) {
	if j.Kty != JWKTypeEC {
		return nil, &KeyFormatError{Reason: fmt.Sprintf("unsupported JWK kty %q, want %q", j.Kty, JWKTypeEC)}
	}
	if j.Crv != JWKCurveSecp256k1 {
		return nil, &KeyFormatError{Reason: fmt.Sprintf("unsupported JWK crv %q, want %q", j.Crv, JWKCurveSecp256k1)}
	}
	x, err := decodeCoordinate(j.X)
	if err != nil {
		return nil, &KeyFormatError{Reason: "invalid JWK x coordinate", Err: err}
	}
	y, err := decodeCoordinate(j.Y)
	if err != nil {
		return nil, &KeyFormatError{Reason: "invalid JWK y coordinate", Err: err}
	}

	point := make([]byte, 0, 65)
	point = append(point, 0x04)
	point = append(point, x...)
	point = append(point, y...)
	return NewPublicKeyMaterial(point)
}

// decodeCoordinate decodes a base64url coordinate, left-padding to 32 bytes
// as RFC 7518 permits stripping leading zero octets.
func decodeCoordinate(encoded string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, err
	}
	if len(raw) > 32 {
		return nil, fmt.Errorf("coordinate is %d bytes, want at most 32", len(raw))
	}
	padded := make([]byte, 32)
	copy(padded[32-len(raw):], raw)
	return padded, nil
}
