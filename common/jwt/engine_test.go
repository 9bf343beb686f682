package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amdoi7/anp-go/common/keycodec"
)

const testScalarHex = "c6f8cf675b77523c3d3157d322b3c7c4cc14874f290407398361be1a4c1ed7d0"

func testKey(t *testing.T) *keycodec.KeyMaterial {
	t.Helper()
	km, err := keycodec.KeyMaterialFromHex(testScalarHex)
	require.NoError(t, err)
	return km
}

func futureClaims(extra map[string]any) map[string]any {
	claims := map[string]any{
		"iss": "did:wba:example.com",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return claims
}

func TestES256KSignVerifyRoundTrip(t *testing.T) {
	km := testKey(t)

	token, err := Sign(futureClaims(map[string]any{"cart_hash": "abc"}), km, ES256K, map[string]any{"kid": "did:wba:example.com#key-1"})
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	claims, err := Verify(token, km.Public(), ES256K, nil)
	require.NoError(t, err)
	require.Equal(t, "abc", claims["cart_hash"])
	require.Equal(t, "did:wba:example.com", claims["iss"])
}

func TestES256KRejectsWrongKey(t *testing.T) {
	km := testKey(t)
	other, err := keycodec.GenerateKeyMaterial()
	require.NoError(t, err)

	token, err := Sign(futureClaims(nil), km, ES256K, nil)
	require.NoError(t, err)

	_, err = Verify(token, other.Public(), ES256K, nil)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestES256KRejectsTamperedPayload(t *testing.T) {
	km := testKey(t)
	token, err := Sign(futureClaims(map[string]any{"amount": "10.00"}), km, ES256K, nil)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1][:len(parts[1])-2] + "AA" + "." + parts[2]
	_, err = Verify(tampered, km.Public(), ES256K, nil)
	require.Error(t, err)
}

func TestRS256SignVerifyRoundTrip(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token, err := Sign(futureClaims(map[string]any{"sub": "did:wba:client.example.com"}), rsaKey, RS256, nil)
	require.NoError(t, err)

	claims, err := Verify(token, &rsaKey.PublicKey, RS256, nil)
	require.NoError(t, err)
	require.Equal(t, "did:wba:client.example.com", claims["sub"])
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	km := testKey(t)
	for _, token := range []string{"", "onlyone", "two.segments", "a.b.c.d"} {
		_, err := Verify(token, km.Public(), ES256K, nil)
		require.ErrorIs(t, err, ErrMalformedToken, "token %q", token)
	}
}

func TestVerifyRejectsAlgorithmMismatch(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token, err := Sign(futureClaims(nil), rsaKey, RS256, nil)
	require.NoError(t, err)

	km := testKey(t)
	_, err = Verify(token, km.Public(), ES256K, nil)
	require.ErrorIs(t, err, ErrAlgorithmMismatch)
}

func TestVerifyEnforcesExpiry(t *testing.T) {
	km := testKey(t)
	claims := map[string]any{
		"iss": "did:wba:example.com",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
		"aud": "merchant-1",
	}
	token, err := Sign(claims, km, ES256K, nil)
	require.NoError(t, err)

	// Expiry wins regardless of a matching audience.
	_, err = Verify(token, km.Public(), ES256K, &VerifyOptions{Audience: "merchant-1"})
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyEnforcesNotBefore(t *testing.T) {
	km := testKey(t)
	claims := futureClaims(map[string]any{"nbf": time.Now().Add(time.Hour).Unix()})
	token, err := Sign(claims, km, ES256K, nil)
	require.NoError(t, err)

	_, err = Verify(token, km.Public(), ES256K, nil)
	require.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestVerifyAudience(t *testing.T) {
	km := testKey(t)
	token, err := Sign(futureClaims(map[string]any{"aud": "merchant-1"}), km, ES256K, nil)
	require.NoError(t, err)

	claims, err := Verify(token, km.Public(), ES256K, &VerifyOptions{Audience: "merchant-1"})
	require.NoError(t, err)
	require.NotNil(t, claims)

	_, err = Verify(token, km.Public(), ES256K, &VerifyOptions{Audience: "merchant-2"})
	require.ErrorIs(t, err, ErrAudienceMismatch)
}

func TestVerifyAudienceArray(t *testing.T) {
	km := testKey(t)
	token, err := Sign(futureClaims(map[string]any{"aud": []string{"merchant-1", "merchant-2"}}), km, ES256K, nil)
	require.NoError(t, err)

	_, err = Verify(token, km.Public(), ES256K, &VerifyOptions{Audience: "merchant-2"})
	require.NoError(t, err)

	_, err = Verify(token, km.Public(), ES256K, &VerifyOptions{Audience: "merchant-3"})
	require.ErrorIs(t, err, ErrAudienceMismatch)
}

func TestSignRejectsWrongKeyType(t *testing.T) {
	_, err := Sign(futureClaims(nil), "not a key", ES256K, nil)
	require.ErrorIs(t, err, ErrInvalidKeyType)

	km := testKey(t)
	_, err = Sign(futureClaims(nil), km, RS256, nil)
	require.ErrorIs(t, err, ErrInvalidKeyType)
}

func TestDecodePayloadIsUnverified(t *testing.T) {
	km := testKey(t)
	token, err := Sign(futureClaims(map[string]any{"cart_hash": "h1"}), km, ES256K, nil)
	require.NoError(t, err)

	claims, err := DecodePayload(token)
	require.NoError(t, err)
	require.Equal(t, "h1", claims["cart_hash"])
}
