// Package report renders plans and run results for people and tools.
//
// # Formats
//
//   - text: a lipgloss table of packages and their status
//   - json: the [pipeline.Plan] or [pipeline.Result] as indented JSON
//   - dot: Graphviz DOT source with the root manifest pointing at every
//     vendored package
//   - svg: the DOT graph rendered in-process
//
// # Usage
//
//	format, err := report.ParseFormat("svg")
//	err = report.WriteResult(ctx, os.Stdout, result, format)
//
// # DOT
//
// Excluded packages are drawn dashed and grey, failed packages are filled
// red with the failing step in their label. The DOT can be saved and fed to
// external Graphviz tools.
//
// # Dependencies
//
// SVG rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly, so no system install is needed.
package report
