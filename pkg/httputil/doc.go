// Package httputil holds the HTTP plumbing shared by registry clients.
//
// [Cache] persists decoded responses as JSON files under the user cache
// directory (see [DefaultDir]) with a time-to-live. Use [Cache.Namespace]
// to keep registries apart:
//
//	c, err := httputil.NewCache("", 24*time.Hour)
//	crates := c.Namespace("crates:")
//	ok, err := crates.Get("serde", &info)
//
// [Retry] re-runs a request that failed with a [RetryableError], doubling
// the delay between attempts. [RetryWithBackoff] uses three attempts and a
// one second initial delay.
//
// The cache can be inspected and emptied with `cratepatch cache path` and
// `cratepatch cache clear`.
package httputil
