// Package cargo wraps the two cargo capabilities the patch pipeline uses.
//
// # Overview
//
// The pipeline treats cargo strictly as an external service with a narrow
// contract, expressed by [Tool]:
//
//   - [Tool.Add]: cargo add, injecting one [Dependency] into one manifest
//   - [Tool.Vendor]: cargo vendor, materializing every resolved crate
//
// [CLI] implements Tool by running the cargo binary as a subprocess. Failed
// invocations return an EXECUTION_FAILED error from
// [github.com/matzehuels/cratepatch/pkg/errors] wrapping an
// [errors.ExecutionError] that carries cargo's stderr.
//
// # Usage
//
//	tool := cargo.NewCLI("", 0)
//	dep := cargo.Dependency{
//	    Name:     "atomic-core",
//	    Alias:    "core",
//	    Source:   cargo.CratesIO,
//	    Features: []string{"critical-section"},
//	}
//	if err := tool.Add(ctx, "/path/Cargo.toml", dep); err != nil {
//	    return err
//	}
//
// Resolution, compilation and vendoring logic stay inside cargo; this package
// only builds argument vectors and reports exit status.
package cargo
