package didwba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// WellKnownDIDPath hosts documents for DIDs without path segments.
	WellKnownDIDPath = "/.well-known/did.json"
	// DIDDocumentFilename terminates the URL for DIDs with path segments.
	DIDDocumentFilename = "did.json"

	// DefaultDocumentTTL bounds how long resolved documents are cached.
	DefaultDocumentTTL = 15 * time.Minute
	// defaultFetchTimeout bounds a single document fetch.
	defaultFetchTimeout = 10 * time.Second

	maxDocumentBytes = 1 << 20
)

// URLForDID maps a did:wba identifier to the HTTPS URL of its DID document.
// The first segment is the host (a percent-encoded colon carries a port);
// remaining segments become the path.
func URLForDID(did string) (string, error) {
	if !strings.HasPrefix(did, DIDPrefix) {
		return "", fmt.Errorf("invalid DID %q: must start with %q", did, DIDPrefix)
	}
	segments := strings.Split(strings.TrimPrefix(did, DIDPrefix), ":")
	for i, segment := range segments {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			return "", fmt.Errorf("invalid DID segment %q: %w", segment, err)
		}
		if decoded == "" {
			return "", fmt.Errorf("invalid DID %q: empty segment", did)
		}
		segments[i] = decoded
	}

	host := segments[0]
	if len(segments) == 1 {
		return "https://" + host + WellKnownDIDPath, nil
	}
	return "https://" + host + "/" + strings.Join(segments[1:], "/") + "/" + DIDDocumentFilename, nil
}

// Resolver fetches and caches DID documents. Fetching is the only I/O in
// the verification path; callers bound it through the injected client's
// timeout or the request context.
type Resolver struct {
	client *http.Client
	cache  *ttlcache.Cache[string, *Document]
	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithDocumentTTL overrides the document cache TTL.
func WithDocumentTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.cache = ttlcache.New[string, *Document](
			ttlcache.WithTTL[string, *Document](ttl),
		)
	}
}

// WithLogger sets the logger used for resolution events.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver with an otel-instrumented HTTP client and
// a TTL document cache.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultFetchTimeout,
		},
		cache: ttlcache.New[string, *Document](
			ttlcache.WithTTL[string, *Document](DefaultDocumentTTL),
		),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the DID document for did, from cache when fresh.
func (r *Resolver) Resolve(ctx context.Context, did string) (*Document, error) {
	if item := r.cache.Get(did); item != nil {
		return item.Value(), nil
	}

	doc, err := r.fetch(ctx, did)
	if err != nil {
		return nil, err
	}
	r.cache.Set(did, doc, ttlcache.DefaultTTL)
	return doc, nil
}

func (r *Resolver) fetch(ctx context.Context, did string) (*Document, error) {
	docURL, err := URLForDID(did)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build DID document request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch DID document from %s: %w", docURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DID document fetch returned %s for %s", resp.Status, docURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read DID document body: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DID document JSON: %w", err)
	}
	if doc.ID != did {
		return nil, fmt.Errorf("DID document id %q does not match requested DID %q", doc.ID, did)
	}

	r.logger.DebugContext(ctx, "resolved DID document", "did", did, "url", docURL)
	return &doc, nil
}
