package jwt

import (
	"crypto/rsa"
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/amdoi7/anp-go/common/keycodec"
)

// Algorithm is the closed set of token algorithms this engine supports.
// Adding an algorithm means extending every switch below; there is no
// string-typed dispatch.
type Algorithm uint8

const (
	// RS256 delegates to the standard RSA-PKCS1v1.5/SHA-256 signer.
	RS256 Algorithm = iota
	// ES256K signs over secp256k1, which mainstream JOSE stacks do not
	// ship; the signing method is implemented in this package.
	ES256K
)

// Name returns the JOSE "alg" header value.
func (a Algorithm) Name() string {
	switch a {
	case RS256:
		return "RS256"
	case ES256K:
		return "ES256K"
	default:
		return fmt.Sprintf("Algorithm(%d)", a)
	}
}

func (a Algorithm) signingMethod() (gojwt.SigningMethod, error) {
	switch a {
	case RS256:
		return gojwt.SigningMethodRS256, nil
	case ES256K:
		return SigningMethodES256K, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, a.Name())
	}
}

// checkSigningKey validates the key type expected by the algorithm before
// any signing is attempted.
func (a Algorithm) checkSigningKey(key any) error {
	switch a {
	case RS256:
		if _, ok := key.(*rsa.PrivateKey); !ok {
			return fmt.Errorf("%w: RS256 requires *rsa.PrivateKey, got %T", ErrInvalidKeyType, key)
		}
	case ES256K:
		if _, ok := key.(*keycodec.KeyMaterial); !ok {
			return fmt.Errorf("%w: ES256K requires *keycodec.KeyMaterial, got %T", ErrInvalidKeyType, key)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, a.Name())
	}
	return nil
}

// checkVerificationKey validates the key type expected for verification.
func (a Algorithm) checkVerificationKey(key any) error {
	switch a {
	case RS256:
		if _, ok := key.(*rsa.PublicKey); !ok {
			return fmt.Errorf("%w: RS256 requires *rsa.PublicKey, got %T", ErrInvalidKeyType, key)
		}
	case ES256K:
		if _, ok := key.(*keycodec.PublicKeyMaterial); !ok {
			return fmt.Errorf("%w: ES256K requires *keycodec.PublicKeyMaterial, got %T", ErrInvalidKeyType, key)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, a.Name())
	}
	return nil
}
