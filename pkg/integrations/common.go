package integrations

import (
	"errors"
	"net/http"
	"time"

	"github.com/matzehuels/cratepatch/pkg/buildinfo"
	"github.com/matzehuels/cratepatch/pkg/httputil"
)

const httpTimeout = 10 * time.Second

// DefaultCacheTTL is how long registry responses stay fresh.
const DefaultCacheTTL = 24 * time.Hour

var (
	// ErrNotFound is returned when a package doesn't exist in the registry.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// UserAgent identifies cratepatch to registries that require one.
// crates.io rejects anonymous clients.
var UserAgent = buildinfo.UserAgent()

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewCache opens the default file cache with the given TTL.
// See [httputil.NewCache] for the location.
func NewCache(ttl time.Duration) (*httputil.Cache, error) {
	return httputil.NewCache("", ttl)
}
