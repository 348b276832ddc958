// Package crates provides an HTTP client for the crates.io API.
//
// The patcher uses it to learn which crates the injected dependency pulls
// in, so those can be kept out of the patch set:
//
//	client := crates.NewClient(cache)
//	info, err := client.FetchCrate(ctx, "atomic-core", false)
//	// info.Dependencies == ["critical-section", ...]
//
// Only normal, non-optional dependencies of the latest version are
// reported. Responses are cached under the "crates:" namespace; pass
// refresh=true to bypass the cache.
package crates
