// Package mandate implements the AP2 payment-mandate chain: a cart
// mandate, a payment mandate, and a webhook credential, each independently
// signed and linked by recomputable canonical-JSON hashes
// (cart_hash → [cart_hash, pmt_hash] → [cart_hash, pmt_hash, cred_hash]).
package mandate

// Contents is the free-form JSON body of a mandate stage. Hash anchors are
// computed over its RFC 8785 canonical form, so key order never matters.
type Contents map[string]any

// CartMandate binds cart contents to a merchant signature over their hash.
type CartMandate struct {
	Contents              Contents `json:"contents"`
	MerchantAuthorization string   `json:"merchant_authorization"`
}

// PaymentMandate binds payment contents to a user signature over the
// (cart_hash, pmt_hash) pair.
type PaymentMandate struct {
	PaymentMandateContents Contents `json:"payment_mandate_contents"`
	UserAuthorization      string   `json:"user_authorization"`
}

// CredentialType discriminates webhook credentials.
type CredentialType string

const (
	CredentialTypePaymentReceipt     CredentialType = "PaymentReceipt"
	CredentialTypeFulfillmentReceipt CredentialType = "FulfillmentReceipt"
)

// WebhookCredential closes the chain: a merchant signature over the full
// (cart_hash, pmt_hash, cred_hash) triple.
type WebhookCredential struct {
	CredentialType        CredentialType `json:"credential_type"`
	Contents              Contents       `json:"contents"`
	MerchantAuthorization string         `json:"merchant_authorization"`
}

// Claim keys used in mandate authorization tokens.
const (
	claimCartHash        = "cart_hash"
	claimTransactionData = "transaction_data"
	claimCredentialType  = "credential_type"
	claimJTI             = "jti"
)
