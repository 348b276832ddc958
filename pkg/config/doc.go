// Package config loads cratepatch settings.
//
// Sources are merged in increasing order of precedence:
//
//  1. built-in defaults ([DefaultConfig])
//  2. cratepatch.toml from --config, else the working directory, else
//     [ConfigDir]
//  3. CRATEPATCH_* environment variables (CRATEPATCH_JOBS,
//     CRATEPATCH_CARGO_TIMEOUT, CRATEPATCH_EXCLUSIONS_NAMES=a,b)
//  4. command-line flags the user set explicitly
//
// A config file looks like:
//
//	jobs = 8
//	vendor_dir = "vendor"
//
//	[dependency]
//	name = "atomic-core"
//	alias = "core"
//	features = ["critical-section"]
//
//	[exclusions]
//	names = ["atomic-core", "critical-section", "portable-atomic"]
//	resolve = true
//
//	[cargo]
//	timeout = "10m"
//
// [WriteFile] produces such a file from a [Config].
package config
