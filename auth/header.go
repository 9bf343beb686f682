package auth

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/amdoi7/anp-go/common/crypto"
	"github.com/amdoi7/anp-go/common/jsoncanonicalizer"
)

// HeaderValues are the fields of a DIDWba Authorization header.
type HeaderValues struct {
	DID                string
	Nonce              string
	Timestamp          string
	VerificationMethod string
	Signature          string // base64url, 64 raw bytes
}

// FormatHeader renders the header value in the wire order. Verifiers do not
// depend on the order.
func FormatHeader(v HeaderValues) string {
	return fmt.Sprintf(
		`%s did=%q, nonce=%q, timestamp=%q, verification_method=%q, signature=%q`,
		SchemeDIDWba, v.DID, v.Nonce, v.Timestamp, v.VerificationMethod, v.Signature,
	)
}

// headerPairPattern matches one comma-separated key="value" pair.
var headerPairPattern = regexp.MustCompile(`(\w+)="([^"]*)"`)

// ParseHeader extracts the DIDWba fields from an Authorization header value
// (scheme already stripped). Unknown keys are ignored; missing or empty
// required fields fail.
func ParseHeader(params string) (*HeaderValues, error) {
	fields := map[string]string{}
	for _, match := range headerPairPattern.FindAllStringSubmatch(params, -1) {
		fields[match[1]] = match[2]
	}

	v := &HeaderValues{
		DID:                fields["did"],
		Nonce:              fields["nonce"],
		Timestamp:          fields["timestamp"],
		VerificationMethod: fields["verification_method"],
		Signature:          fields["signature"],
	}
	for name, value := range map[string]string{
		"did":                 v.DID,
		"nonce":               v.Nonce,
		"timestamp":           v.Timestamp,
		"verification_method": v.VerificationMethod,
		"signature":           v.Signature,
	} {
		if value == "" {
			return nil, fmt.Errorf("missing or empty %q field", name)
		}
	}
	return v, nil
}

// signingPayload is the canonical structure covered by the header
// signature.
type signingPayload struct {
	Nonce     string `json:"nonce"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	DID       string `json:"did"`
}

// payloadDigest canonicalizes the signed structure and hashes it.
func payloadDigest(nonce, timestamp, service, did string) ([]byte, error) {
	canonical, err := jsoncanonicalizer.Canonicalize(signingPayload{
		Nonce:     nonce,
		Timestamp: timestamp,
		Service:   service,
		DID:       did,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize signing payload: %w", err)
	}
	return crypto.Digest(canonical), nil
}

// decodeSignature accepts padded or unpadded base64url.
func decodeSignature(encoded string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, fmt.Errorf("signature is not valid base64url: %w", err)
	}
	return raw, nil
}
