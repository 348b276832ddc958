// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries call the registered hooks at well-defined points; main decides
// what, if anything, listens. The defaults are no-ops, so instrumented code
// pays nothing when observability is off and no backend is imported here.
//
// Register hooks once at startup:
//
//	observability.SetPatchHooks(observability.NewLogHooks(logger))
//
// Emit events from library code:
//
//	observability.Patch().OnManifestStart(ctx, path)
//	// ... isolate, inject, repair ...
//	observability.Patch().OnManifestComplete(ctx, path, step, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Patch Hooks
// =============================================================================

// PatchHooks receives events from the patch pipeline.
type PatchHooks interface {
	// Root phase: inject into the root manifest, then vendor.
	OnRootStart(ctx context.Context, manifest string)
	OnVendorComplete(ctx context.Context, vendorDir string, duration time.Duration, err error)

	// Per-manifest phase. step names the operation that failed when err is
	// non-nil and is empty on success.
	OnManifestStart(ctx context.Context, manifest string)
	OnManifestComplete(ctx context.Context, manifest, step string, duration time.Duration, err error)

	// OnRunComplete summarizes a finished run.
	OnRunComplete(ctx context.Context, patched, failed, excluded int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the registry response cache.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	OnCacheSet(ctx context.Context, key string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from registry HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response received).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPatchHooks is a no-op implementation of PatchHooks.
type NoopPatchHooks struct{}

func (NoopPatchHooks) OnRootStart(context.Context, string)                                      {}
func (NoopPatchHooks) OnVendorComplete(context.Context, string, time.Duration, error)           {}
func (NoopPatchHooks) OnManifestStart(context.Context, string)                                  {}
func (NoopPatchHooks) OnManifestComplete(context.Context, string, string, time.Duration, error) {}
func (NoopPatchHooks) OnRunComplete(context.Context, int, int, int, time.Duration)              {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}
func (NoopCacheHooks) OnCacheSet(context.Context, string)  {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	patchHooks PatchHooks = NoopPatchHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetPatchHooks registers patch hooks. Nil is ignored.
func SetPatchHooks(h PatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		patchHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Patch returns the registered patch hooks.
func Patch() PatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return patchHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	patchHooks = NoopPatchHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
