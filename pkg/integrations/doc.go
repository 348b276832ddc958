// Package integrations provides the HTTP client shared by registry API
// clients.
//
// [Client] adds what every registry call needs: a timeout, default headers,
// retries for transient failures via [httputil.Retry], an optional file
// cache via [httputil.Cache], and [observability] HTTP and cache events.
//
// Registry-specific clients live in subpackages and embed [Client]:
//
//   - [crates]: crates.io, used to expand the exclusion set with the
//     injected crate's own dependencies.
//
// Errors: a 404 maps to [ErrNotFound]; timeouts, 429 and 5xx responses map to
// [ErrNetwork] wrapped in [httputil.RetryableError].
//
// [crates]: github.com/matzehuels/cratepatch/pkg/integrations/crates
// [observability]: github.com/matzehuels/cratepatch/pkg/observability
package integrations
