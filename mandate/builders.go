package mandate

import (
	"time"

	"github.com/google/uuid"

	"github.com/amdoi7/anp-go/common/jsoncanonicalizer"
)

// Default token lifetimes. Carts are short-lived offers; payment mandates
// and receipts are records that must outlive the checkout.
const (
	DefaultCartTTL       = 15 * time.Minute
	DefaultPaymentTTL    = 7 * 24 * time.Hour
	DefaultCredentialTTL = 30 * 24 * time.Hour
)

// CartBuilder issues merchant-signed cart mandates.
type CartBuilder struct {
	signer Signer
	ttl    time.Duration
}

// NewCartBuilder creates a builder. ttl <= 0 selects DefaultCartTTL.
func NewCartBuilder(signer Signer, ttl time.Duration) *CartBuilder {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &CartBuilder{signer: signer, ttl: ttl}
}

// Build validates contents, anchors them with cart_hash, and signs.
func (b *CartBuilder) Build(contents Contents) (*CartMandate, error) {
	if err := validateContents(contents, cartContentsSchema); err != nil {
		return nil, &BuildError{Err: err}
	}
	cartHash, err := jsoncanonicalizer.ContentHash(map[string]any(contents))
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	token, err := b.signer.SignClaims(map[string]any{claimCartHash: cartHash}, b.ttl)
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	return &CartMandate{Contents: contents, MerchantAuthorization: token}, nil
}

// Hash recomputes the cart_hash anchor of the mandate contents.
func (m *CartMandate) Hash() (string, error) {
	return jsoncanonicalizer.ContentHash(map[string]any(m.Contents))
}

// PaymentBuilder issues user-signed payment mandates referencing a cart.
type PaymentBuilder struct {
	signer Signer
	ttl    time.Duration
}

// NewPaymentBuilder creates a builder. ttl <= 0 selects DefaultPaymentTTL.
func NewPaymentBuilder(signer Signer, ttl time.Duration) *PaymentBuilder {
	if ttl <= 0 {
		ttl = DefaultPaymentTTL
	}
	return &PaymentBuilder{signer: signer, ttl: ttl}
}

// Build anchors contents with pmt_hash and signs the
// [cart_hash, pmt_hash] transaction pair.
func (b *PaymentBuilder) Build(contents Contents, cartHash string) (*PaymentMandate, error) {
	if err := validateContents(contents, paymentContentsSchema); err != nil {
		return nil, &BuildError{Err: err}
	}
	pmtHash, err := jsoncanonicalizer.ContentHash(map[string]any(contents))
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	token, err := b.signer.SignClaims(map[string]any{
		claimTransactionData: []any{cartHash, pmtHash},
	}, b.ttl)
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	return &PaymentMandate{PaymentMandateContents: contents, UserAuthorization: token}, nil
}

// Hash recomputes the pmt_hash anchor of the mandate contents.
func (m *PaymentMandate) Hash() (string, error) {
	return jsoncanonicalizer.ContentHash(map[string]any(m.PaymentMandateContents))
}

// WebhookBuilder issues merchant-signed credentials that close the chain.
type WebhookBuilder struct {
	signer Signer
	ttl    time.Duration
}

// NewWebhookBuilder creates a builder. ttl <= 0 selects
// DefaultCredentialTTL.
func NewWebhookBuilder(signer Signer, ttl time.Duration) *WebhookBuilder {
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	return &WebhookBuilder{signer: signer, ttl: ttl}
}

// BuildPaymentReceipt signs a PaymentReceipt credential over the full
// transaction triple.
func (b *WebhookBuilder) BuildPaymentReceipt(contents Contents, cartHash, pmtHash string) (*WebhookCredential, error) {
	return b.build(CredentialTypePaymentReceipt, contents, cartHash, pmtHash)
}

// BuildFulfillmentReceipt signs a FulfillmentReceipt credential over the
// full transaction triple.
func (b *WebhookBuilder) BuildFulfillmentReceipt(contents Contents, cartHash, pmtHash string) (*WebhookCredential, error) {
	return b.build(CredentialTypeFulfillmentReceipt, contents, cartHash, pmtHash)
}

func (b *WebhookBuilder) build(credType CredentialType, contents Contents, cartHash, pmtHash string) (*WebhookCredential, error) {
	if err := validateContents(contents, paymentContentsSchema); err != nil {
		return nil, &BuildError{Err: err}
	}
	credHash, err := jsoncanonicalizer.ContentHash(map[string]any(contents))
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	token, err := b.signer.SignClaims(map[string]any{
		claimJTI:             uuid.NewString(),
		claimCredentialType:  string(credType),
		claimTransactionData: []any{cartHash, pmtHash, credHash},
	}, b.ttl)
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	return &WebhookCredential{
		CredentialType:        credType,
		Contents:              contents,
		MerchantAuthorization: token,
	}, nil
}
