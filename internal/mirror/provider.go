// Package mirror implements the cache.Provider/Order/Job/Channel/Properties
// contracts against real HTTP upstream mirrors, plus the disk-scan
// InitializeCache collaborator hook.
package mirror

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mirrorproxy/flexo/internal/cache"
)

// sharedTransport is reused by every HTTPProvider so idle upstream
// connections are actually kept alive across orders, the in-process
// analogue of spec.md's "reuse open upstream connections" requirement.
var sharedTransport = &http.Transport{
	MaxIdleConnsPerHost: 8,
	IdleConnTimeout:     90 * time.Second,
}

// HTTPProvider is one upstream mirror reachable over HTTP(S).
type HTTPProvider struct {
	// BaseURL is the mirror's root, e.g. "https://mirror.example.org/archlinux/".
	BaseURL string
	// Rank is the static rank supplied by internal/discovery; lower is
	// more preferred.
	Rank int64

	client *http.Client
}

// NewHTTPProvider builds an HTTPProvider with a client bound to the shared
// keep-alive transport.
func NewHTTPProvider(baseURL string, rank int64) HTTPProvider {
	return HTTPProvider{
		BaseURL: baseURL,
		Rank:    rank,
		client:  &http.Client{Transport: sharedTransport},
	}
}

// NewJob builds an HTTPJob that will attempt to serve order via this
// provider.
func (p HTTPProvider) NewJob(properties cache.Properties, order cache.Order) cache.Job {
	httpOrder, _ := order.(HTTPOrder)
	return &HTTPJob{provider: p, order: httpOrder}
}

// InitialScore is p's static rank.
func (p HTTPProvider) InitialScore() int64 { return p.Rank }

// Description is the provider's base URL, used in log lines.
func (p HTTPProvider) Description() string { return p.BaseURL }

// FetchDirect issues a plain GET for relPath against this provider without
// touching the disk cache, for Uncacheable orders that spec.md §4.5 step 1
// requires be proxied straight through. The caller owns the response body.
func (p HTTPProvider) FetchDirect(ctx context.Context, relPath string) (*http.Response, error) {
	url := strings.TrimRight(p.BaseURL, "/") + "/" + strings.TrimLeft(relPath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return p.httpClient().Do(req)
}

func (p HTTPProvider) httpClient() *http.Client {
	if p.client != nil {
		return p.client
	}
	return &http.Client{Transport: sharedTransport}
}

// Properties carries the on-disk cache root and request timeout through to
// every collaborator call. It is opaque to internal/cache.
type Properties struct {
	CacheDir       string
	RequestTimeout time.Duration
}

// Clone returns a copy of p; Properties has no mutable shared state, so
// this is a plain value copy.
func (p Properties) Clone() cache.Properties { return p }
