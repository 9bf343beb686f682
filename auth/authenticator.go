package auth

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/amdoi7/anp-go/common/crypto"
	"github.com/amdoi7/anp-go/common/keycodec"
	"github.com/amdoi7/anp-go/didwba"
)

// Authenticator builds DIDWba Authorization headers for outgoing requests.
// A short-TTL cache keyed by (method, url) returns the prior header
// verbatim for bursts of identical calls; single-flight collapses
// concurrent misses to one signature.
type Authenticator struct {
	did        string
	key        *keycodec.KeyMaterial
	vmFragment string

	cache *ttlcache.Cache[string, string]
	group singleflight.Group
	now   func() time.Time
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithHeaderCacheTTL overrides the header reuse window.
func WithHeaderCacheTTL(ttl time.Duration) AuthenticatorOption {
	return func(a *Authenticator) {
		a.cache = ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](ttl),
		)
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) {
		a.now = now
	}
}

// WithVerificationMethodFragment selects which published key the header
// names. Defaults to the did:wba default fragment.
func WithVerificationMethodFragment(fragment string) AuthenticatorOption {
	return func(a *Authenticator) {
		a.vmFragment = fragment
	}
}

// NewAuthenticator creates an Authenticator for a DID and its signing key.
func NewAuthenticator(did string, key *keycodec.KeyMaterial, opts ...AuthenticatorOption) (*Authenticator, error) {
	if did == "" {
		return nil, fmt.Errorf("auth: DID is required")
	}
	if key == nil {
		return nil, fmt.Errorf("auth: key material is required")
	}
	a := &Authenticator{
		did:        did,
		key:        key,
		vmFragment: didwba.DefaultVMFragment,
		cache: ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](DefaultHeaderCacheTTL),
		),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// CreateHeader builds (or reuses) the Authorization header value for a
// request to rawURL with the given method.
func (a *Authenticator) CreateHeader(method, rawURL string) (string, error) {
	cacheKey := method + " " + rawURL
	if item := a.cache.Get(cacheKey); item != nil {
		return item.Value(), nil
	}

	header, err, _ := a.group.Do(cacheKey, func() (any, error) {
		value, err := a.buildHeader(rawURL)
		if err != nil {
			return "", err
		}
		a.cache.Set(cacheKey, value, ttlcache.DefaultTTL)
		return value, nil
	})
	if err != nil {
		return "", err
	}
	return header.(string), nil
}

func (a *Authenticator) buildHeader(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("auth: invalid request URL %q: %w", rawURL, err)
	}
	service := u.Hostname()
	if service == "" {
		return "", fmt.Errorf("auth: request URL %q has no host", rawURL)
	}

	nonce := uuid.NewString()
	timestamp := a.now().UTC().Format(time.RFC3339)

	digest, err := payloadDigest(nonce, timestamp, service, a.did)
	if err != nil {
		return "", err
	}
	signature, err := crypto.Sign(a.key, digest)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign header payload: %w", err)
	}

	return FormatHeader(HeaderValues{
		DID:                a.did,
		Nonce:              nonce,
		Timestamp:          timestamp,
		VerificationMethod: a.did + "#" + a.vmFragment,
		Signature:          base64.RawURLEncoding.EncodeToString(signature),
	}), nil
}
