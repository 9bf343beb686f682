// Package didwba implements the did:wba method surface used by the auth
// protocol: identifier-to-URL mapping, the DID document model, and a
// caching HTTP resolver.
package didwba

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amdoi7/anp-go/common/keycodec"
)

// DIDPrefix is the method prefix for web-based-authentication DIDs.
const DIDPrefix = "did:wba:"

// Verification method types accepted for secp256k1 signature checks.
const (
	VMTypeEcdsaSecp256k1VerificationKey2019 = "EcdsaSecp256k1VerificationKey2019"
	VMTypeEcdsaSecp256k1RecoveryMethod2020  = "EcdsaSecp256k1RecoveryMethod2020"
)

// Contexts published in generated DID documents.
const (
	ContextDIDV1         = "https://www.w3.org/ns/did/v1"
	ContextSecp256k12019 = "https://w3id.org/security/suites/secp256k1-2019/v1"
)

// DefaultVMFragment is the fragment of the first authentication key.
const DefaultVMFragment = "keys-1"

// VerificationMethod is one key entry of a DID document. Keys are published
// either as JWK or as hex; PublicKey normalizes both.
type VerificationMethod struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	Controller   string        `json:"controller"`
	PublicKeyJwk *keycodec.JWK `json:"publicKeyJwk,omitempty"`
	PublicKeyHex string        `json:"publicKeyHex,omitempty"`
}

// PublicKey returns the validated public point of the method.
func (vm *VerificationMethod) PublicKey() (*keycodec.PublicKeyMaterial, error) {
	switch {
	case vm.PublicKeyJwk != nil:
		return vm.PublicKeyJwk.PublicKeyMaterial()
	case vm.PublicKeyHex != "":
		return keycodec.PublicKeyMaterialFromHex(vm.PublicKeyHex)
	default:
		return nil, fmt.Errorf("verification method %q carries no public key", vm.ID)
	}
}

// Document is a resolved DID document. The core treats it as read-only
// input.
type Document struct {
	Context            json.RawMessage      `json:"@context,omitempty"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication,omitempty"`
}

// SelectVerificationMethod finds the method whose id matches vmID (bare
// fragment ids in the document are qualified with the document id first)
// and whose type is one of the accepted secp256k1 types.
func (d *Document) SelectVerificationMethod(vmID string) (*VerificationMethod, error) {
	want := d.qualify(vmID)
	for i := range d.VerificationMethod {
		vm := &d.VerificationMethod[i]
		if d.qualify(vm.ID) != want {
			continue
		}
		switch vm.Type {
		case VMTypeEcdsaSecp256k1VerificationKey2019, VMTypeEcdsaSecp256k1RecoveryMethod2020:
			return vm, nil
		default:
			return nil, fmt.Errorf("verification method %q has unsupported type %q", vm.ID, vm.Type)
		}
	}
	return nil, fmt.Errorf("verification method %q not found in DID document %q", vmID, d.ID)
}

func (d *Document) qualify(id string) string {
	if strings.HasPrefix(id, "#") {
		return d.ID + id
	}
	return id
}

// NewDocument builds a minimal did:wba document publishing one secp256k1
// authentication key as JWK. Callers host the result as did.json.
func NewDocument(did string, pub *keycodec.PublicKeyMaterial) *Document {
	vmID := did + "#" + DefaultVMFragment
	contexts, _ := json.Marshal([]string{ContextDIDV1, ContextSecp256k12019})
	return &Document{
		Context: contexts,
		ID:      did,
		VerificationMethod: []VerificationMethod{{
			ID:           vmID,
			Type:         VMTypeEcdsaSecp256k1VerificationKey2019,
			Controller:   did,
			PublicKeyJwk: keycodec.NewJWK(pub),
		}},
		Authentication: []string{vmID},
	}
}
