package keycodec

import (
	"bytes"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

const testScalarHex = "c6f8cf675b77523c3d3157d322b3c7c4cc14874f290407398361be1a4c1ed7d0"

// encodePKCS8PEM builds a PKCS#8 fixture around a SEC1 ECPrivateKey.
func encodePKCS8PEM(t *testing.T, scalar []byte, withPublic bool) []byte {
	t.Helper()

	inner := sec1PrivateKey{Version: 1, PrivateKey: scalar}
	if withPublic {
		priv, _ := btcec.PrivKeyFromBytes(scalar)
		point := priv.PubKey().SerializeUncompressed()
		inner.NamedCurveOID = oidSecp256k1
		inner.PublicKey = asn1.BitString{Bytes: point, BitLength: len(point) * 8}
	}
	innerDER, err := asn1.Marshal(inner)
	require.NoError(t, err)

	params, err := asn1.Marshal(oidSecp256k1)
	require.NoError(t, err)

	outerDER, err := asn1.Marshal(pkcs8Info{
		Version: 0,
		Algorithm: pkix.AlgorithmIdentifier{
			Algorithm:  oidECPublicKey,
			Parameters: asn1.RawValue{FullBytes: params},
		},
		PrivateKey: innerDER,
	})
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: outerDER})
}

func mustScalar(t *testing.T) []byte {
	t.Helper()
	scalar, err := hex.DecodeString(testScalarHex)
	require.NoError(t, err)
	return scalar
}

func TestDecodePKCS8(t *testing.T) {
	scalar := mustScalar(t)

	for _, withPublic := range []bool{true, false} {
		km, err := DecodePKCS8(encodePKCS8PEM(t, scalar, withPublic))
		require.NoError(t, err)
		require.Equal(t, scalar, km.PrivateScalar())

		priv, _ := btcec.PrivKeyFromBytes(scalar)
		require.Equal(t, priv.PubKey().SerializeUncompressed(), km.PublicPoint())
	}
}

func TestDecodePKCS8RejectsMalformedInput(t *testing.T) {
	scalar := mustScalar(t)

	cases := map[string][]byte{
		"not PEM":        []byte("garbage"),
		"wrong PEM type": pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{0x30, 0x00}}),
		"truncated DER": func() []byte {
			block, _ := pem.Decode(encodePKCS8PEM(t, scalar, true))
			return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: block.Bytes[:len(block.Bytes)/2]})
		}(),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePKCS8(input)
			var kfe *KeyFormatError
			require.ErrorAs(t, err, &kfe)
		})
	}
}

func TestDecodeRejectsBadScalars(t *testing.T) {
	short := bytes.Repeat([]byte{0x01}, 31)
	zero := make([]byte, 32)
	overflow := bytes.Repeat([]byte{0xff}, 32)

	for name, scalar := range map[string][]byte{
		"short": short, "zero": zero, "over order": overflow,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewKeyMaterial(scalar)
			var kfe *KeyFormatError
			require.ErrorAs(t, err, &kfe)
		})
	}
}

func TestSEC1PEMRoundTrip(t *testing.T) {
	scalar := mustScalar(t)

	pemBytes, err := EncodeSEC1PEM(scalar)
	require.NoError(t, err)
	require.Contains(t, string(pemBytes), "BEGIN EC PRIVATE KEY")

	km, err := DecodePrivateKeyPEM(pemBytes)
	require.NoError(t, err)
	require.Equal(t, scalar, km.PrivateScalar())

	priv, _ := btcec.PrivKeyFromBytes(scalar)
	require.Equal(t, priv.PubKey().SerializeUncompressed(), km.PublicPoint())
}

func TestSEC1PEMRoundTripGeneratedKeys(t *testing.T) {
	for i := 0; i < 8; i++ {
		km, err := GenerateKeyMaterial()
		require.NoError(t, err)

		pemBytes, err := EncodeSEC1PEM(km.PrivateScalar())
		require.NoError(t, err)

		decoded, err := DecodePrivateKeyPEM(pemBytes)
		require.NoError(t, err)
		require.Equal(t, km.PublicPoint(), decoded.PublicPoint())
	}
}

func TestDecodeSEC1RejectsMismatchedEmbeddedPublicKey(t *testing.T) {
	scalar := mustScalar(t)
	other, err := GenerateKeyMaterial()
	require.NoError(t, err)

	der, err := asn1.Marshal(sec1PrivateKey{
		Version:       1,
		PrivateKey:    scalar,
		NamedCurveOID: oidSecp256k1,
		PublicKey: asn1.BitString{
			Bytes:     other.PublicPoint(),
			BitLength: len(other.PublicPoint()) * 8,
		},
	})
	require.NoError(t, err)

	_, err = DecodePrivateKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
	var kfe *KeyFormatError
	require.ErrorAs(t, err, &kfe)
}

func TestPublicKeyMaterialNormalizesCompressed(t *testing.T) {
	km, err := KeyMaterialFromHex("0x" + testScalarHex)
	require.NoError(t, err)

	pub := km.Public()
	fromCompressed, err := NewPublicKeyMaterial(pub.Compressed())
	require.NoError(t, err)
	require.Equal(t, pub.Uncompressed(), fromCompressed.Uncompressed())

	_, err = NewPublicKeyMaterial([]byte{0x04, 0x01})
	require.Error(t, err)
}

func TestJWKRoundTrip(t *testing.T) {
	km, err := KeyMaterialFromHex(testScalarHex)
	require.NoError(t, err)

	jwk := NewJWK(km.Public())
	require.Equal(t, JWKTypeEC, jwk.Kty)
	require.Equal(t, JWKCurveSecp256k1, jwk.Crv)

	pub, err := jwk.PublicKeyMaterial()
	require.NoError(t, err)
	require.Equal(t, km.PublicPoint(), pub.Uncompressed())
}

func TestJWKRejectsWrongCurve(t *testing.T) {
	km, err := KeyMaterialFromHex(testScalarHex)
	require.NoError(t, err)

	jwk := NewJWK(km.Public())
	jwk.Crv = "P-256"
	_, err = jwk.PublicKeyMaterial()
	require.Error(t, err)
	require.True(t, errors.As(err, new(*KeyFormatError)))
}
