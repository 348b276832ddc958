// Package pkg provides the libraries behind cratepatch, which injects one
// dependency into a Rust project and into every crate it vendors.
//
// # Overview
//
// Cargo resolves a vendored crate's dependencies from its own manifest, so a
// crate that must be visible to the whole tree (for example atomic-core,
// renamed to core) has to be added to every vendored manifest as well as the
// root. The pkg directory is organized into four areas:
//
//  1. [pipeline] - Orchestration (root inject, vendor, discover, patch)
//  2. Cargo state: [cargo], [manifest], [ledger], [vendor]
//  3. [integrations] - The crates.io client used to resolve exclusions
//  4. Support: [config], [report], [errors], [httputil], [observability], [buildinfo]
//
// # Architecture
//
// The data flow of a patch run:
//
//	root Cargo.toml
//	     ↓
//	[cargo] add the dependency, then cargo vendor
//	     ↓
//	[vendor] discover vendored manifests, apply exclusions
//	     ↓
//	per manifest, in parallel:
//	     [manifest] append [workspace]
//	     [cargo] add the dependency
//	     [ledger] clear the checksum file table
//	     ↓
//	[pipeline.Result] → [report] (text, JSON, DOT, SVG)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/cratepatch/pkg/cargo"
//	    "github.com/matzehuels/cratepatch/pkg/pipeline"
//	)
//
//	func main() {
//	    root, err := pipeline.ResolveRootManifest("")
//	    if err != nil {
//	        panic(err)
//	    }
//	    runner := pipeline.NewRunner(cargo.NewCLI("", 0), nil)
//	    result, err := runner.Run(context.Background(), root, pipeline.DefaultOptions())
//	    if err != nil {
//	        panic(err)
//	    }
//	    for _, o := range result.Failures() {
//	        println(o.Package, o.Step, o.Error)
//	    }
//	}
//
// # Error Handling
//
// Errors carry a [errors.Code] such as IO_ERROR or PARSE_ERROR:
//
//	if errors.Is(err, errors.ErrCodeExecution) {
//	    // cargo exited unsuccessfully
//	}
//
// [pipeline]: github.com/matzehuels/cratepatch/pkg/pipeline
// [cargo]: github.com/matzehuels/cratepatch/pkg/cargo
// [manifest]: github.com/matzehuels/cratepatch/pkg/manifest
// [ledger]: github.com/matzehuels/cratepatch/pkg/ledger
// [vendor]: github.com/matzehuels/cratepatch/pkg/vendor
// [integrations]: github.com/matzehuels/cratepatch/pkg/integrations
// [config]: github.com/matzehuels/cratepatch/pkg/config
// [report]: github.com/matzehuels/cratepatch/pkg/report
// [errors]: github.com/matzehuels/cratepatch/pkg/errors
// [errors.Code]: github.com/matzehuels/cratepatch/pkg/errors#Code
// [httputil]: github.com/matzehuels/cratepatch/pkg/httputil
// [observability]: github.com/matzehuels/cratepatch/pkg/observability
// [buildinfo]: github.com/matzehuels/cratepatch/pkg/buildinfo
// [pipeline.Result]: github.com/matzehuels/cratepatch/pkg/pipeline#Result
package pkg
