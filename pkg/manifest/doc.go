// Package manifest reads Cargo.toml files and isolates them from enclosing
// workspaces.
//
// Decoding uses [github.com/BurntSushi/toml] and only models the fields the
// patcher inspects: the package name, the dependency tables, and whether a
// [workspace] table exists.
//
// [IsolateWorkspace] appends "[workspace]" to a manifest opened append-only.
// It is idempotent: a manifest that already declares a workspace is left
// untouched, so running the patcher twice over one vendor tree does not
// produce duplicate tables.
package manifest
