package mandate

import (
	"fmt"

	jwtengine "github.com/amdoi7/anp-go/common/jwt"
	"github.com/amdoi7/anp-go/common/jsoncanonicalizer"
	"github.com/amdoi7/anp-go/common/keycodec"
)

// VerifyCartMandate checks the merchant signature and that the signed
// cart_hash still matches the (possibly tampered) contents.
func VerifyCartMandate(m *CartMandate, merchantKey *keycodec.PublicKeyMaterial, opts *jwtengine.VerifyOptions) (map[string]any, error) {
	if merchantKey == nil {
		return nil, &VerificationError{Err: ErrInvalidKey}
	}
	claims, err := jwtengine.Verify(m.MerchantAuthorization, merchantKey, jwtengine.ES256K, opts)
	if err != nil {
		return nil, &VerificationError{Err: err}
	}

	recomputed, err := m.Hash()
	if err != nil {
		return nil, &VerificationError{Err: err}
	}
	signed, _ := claims[claimCartHash].(string)
	if signed != recomputed {
		return nil, &VerificationError{Err: fmt.Errorf("%w: signed %q, recomputed %q", ErrCartHashMismatch, signed, recomputed)}
	}
	return claims, nil
}

// VerifyPaymentMandate checks the user signature, the recomputed pmt_hash,
// and — when expectedCartHash is non-empty — the cart linkage.
func VerifyPaymentMandate(m *PaymentMandate, userKey *keycodec.PublicKeyMaterial, expectedCartHash string, opts *jwtengine.VerifyOptions) (map[string]any, error) {
	if userKey == nil {
		return nil, &VerificationError{Err: ErrInvalidKey}
	}
	claims, err := jwtengine.Verify(m.UserAuthorization, userKey, jwtengine.ES256K, opts)
	if err != nil {
		return nil, &VerificationError{Err: err}
	}

	pair, err := transactionData(claims, 2)
	if err != nil {
		return nil, &VerificationError{Err: err}
	}
	if expectedCartHash != "" && pair[0] != expectedCartHash {
		return nil, &VerificationError{Err: fmt.Errorf("%w: signed %q, expected %q", ErrCartHashMismatch, pair[0], expectedCartHash)}
	}

	recomputed, err := m.Hash()
	if err != nil {
		return nil, &VerificationError{Err: err}
	}
	if pair[1] != recomputed {
		return nil, &VerificationError{Err: fmt.Errorf("%w: signed %q, recomputed %q", ErrPaymentHashMismatch, pair[1], recomputed)}
	}
	return claims, nil
}

// VerifyWebhookCredential checks the merchant signature and the full
// transaction triple against the upstream hashes and the credential
// contents.
func VerifyWebhookCredential(c *WebhookCredential, merchantKey *keycodec.PublicKeyMaterial, cartHash, pmtHash string, opts *jwtengine.VerifyOptions) (map[string]any, error) {
	if merchantKey == nil {
		return nil, &VerificationError{Err: ErrInvalidKey}
	}
	claims, err := jwtengine.Verify(c.MerchantAuthorization, merchantKey, jwtengine.ES256K, opts)
	if err != nil {
		return nil, &VerificationError{Err: err}
	}

	if signedType, _ := claims[claimCredentialType].(string); signedType != string(c.CredentialType) {
		return nil, &VerificationError{Err: fmt.Errorf("credential_type claim %q does not match credential %q", signedType, c.CredentialType)}
	}

	triple, err := transactionData(claims, 3)
	if err != nil {
		return nil, &VerificationError{Err: err}
	}
	if triple[0] != cartHash {
		return nil, &VerificationError{Err: fmt.Errorf("%w: signed %q, expected %q", ErrCartHashMismatch, triple[0], cartHash)}
	}
	if triple[1] != pmtHash {
		return nil, &VerificationError{Err: fmt.Errorf("%w: signed %q, expected %q", ErrPaymentHashMismatch, triple[1], pmtHash)}
	}

	recomputed, err := jsoncanonicalizer.ContentHash(map[string]any(c.Contents))
	if err != nil {
		return nil, &VerificationError{Err: err}
	}
	if triple[2] != recomputed {
		return nil, &VerificationError{Err: fmt.Errorf("%w: signed %q, recomputed %q", ErrCredentialHashMismatch, triple[2], recomputed)}
	}
	return claims, nil
}

// transactionData extracts the transaction_data claim as a string slice of
// exactly the wanted length.
func transactionData(claims map[string]any, want int) ([]string, error) {
	raw, ok := claims[claimTransactionData].([]any)
	if !ok {
		return nil, fmt.Errorf("missing or malformed %s claim", claimTransactionData)
	}
	if len(raw) != want {
		return nil, fmt.Errorf("%s has %d entries, want %d", claimTransactionData, len(raw), want)
	}
	hashes := make([]string, want)
	for i, entry := range raw {
		s, ok := entry.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%s[%d] is not a non-empty string", claimTransactionData, i)
		}
		hashes[i] = s
	}
	return hashes, nil
}
