package jwt

import (
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/amdoi7/anp-go/common/crypto"
	"github.com/amdoi7/anp-go/common/keycodec"
)

// signingMethodES256K implements ES256K (secp256k1 over SHA-256) for
// golang-jwt: signature = compact r||s over SHA-256 of the signing input.
type signingMethodES256K struct{}

// SigningMethodES256K is the ES256K signing method instance.
var SigningMethodES256K = &signingMethodES256K{}

func init() {
	gojwt.RegisterSigningMethod(SigningMethodES256K.Alg(), func() gojwt.SigningMethod {
		return SigningMethodES256K
	})
}

// Alg returns the algorithm name.
func (m *signingMethodES256K) Alg() string {
	return "ES256K"
}

// Sign signs the signing input with a secp256k1 private key.
func (m *signingMethodES256K) Sign(signingString string, key interface{}) ([]byte, error) {
	material, ok := key.(*keycodec.KeyMaterial)
	if !ok {
		return nil, fmt.Errorf("%w: ES256K requires *keycodec.KeyMaterial, got %T", ErrInvalidKeyType, key)
	}
	return crypto.Sign(material, crypto.Digest([]byte(signingString)))
}

// Verify checks the compact signature against the signing input.
func (m *signingMethodES256K) Verify(signingString string, signature []byte, key interface{}) error {
	pub, ok := key.(*keycodec.PublicKeyMaterial)
	if !ok {
		return fmt.Errorf("%w: ES256K requires *keycodec.PublicKeyMaterial, got %T", ErrInvalidKeyType, key)
	}
	if !crypto.Verify(pub, crypto.Digest([]byte(signingString)), signature) {
		return gojwt.ErrSignatureInvalid
	}
	return nil
}
