package report

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cratepatch/pkg/pipeline"
	"github.com/matzehuels/cratepatch/pkg/vendor"
)

// node is one vendored package in the graph.
type node struct {
	id       string
	label    string
	excluded bool
	failed   bool
}

// PlanDOT converts a plan to Graphviz DOT: the root manifest with an edge to
// every discovered package.
func PlanDOT(p *pipeline.Plan) string {
	nodes := make([]node, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		nodes = append(nodes, candidateNode(c))
	}
	return toDOT(rootLabel(p.RootManifest, p.Dependency), nodes)
}

// ResultDOT converts a run result to Graphviz DOT, marking failed packages.
func ResultDOT(r *pipeline.Result) string {
	nodes := make([]node, 0, len(r.Outcomes)+len(r.Excluded))
	for _, o := range r.Outcomes {
		n := node{id: o.Path, label: o.Package}
		if o.Status == pipeline.StatusFailed {
			n.failed = true
			n.label += "\n" + string(o.Step) + " failed"
		}
		nodes = append(nodes, n)
	}
	for _, c := range r.Excluded {
		nodes = append(nodes, candidateNode(c))
	}
	return toDOT(rootLabel(r.RootManifest, r.Dependency), nodes)
}

func candidateNode(c vendor.Candidate) node {
	label := c.Name()
	if c.DirName != label {
		label += "\n" + c.DirName
	}
	return node{id: c.Path, label: label, excluded: c.Excluded}
}

func rootLabel(manifest, dep string) string {
	return filepath.Base(filepath.Dir(manifest)) + "\n+ " + dep
}

func toDOT(root string, nodes []node) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  \"root\" [label=%q, fillcolor=lightblue];\n", root)
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.id, strings.Join(fmtAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		if n.excluded {
			fmt.Fprintf(&buf, "  \"root\" -> %q [style=dashed, color=grey];\n", n.id)
			continue
		}
		fmt.Fprintf(&buf, "  \"root\" -> %q;\n", n.id)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.label)}
	switch {
	case n.excluded:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case n.failed:
		attrs = append(attrs, "fillcolor=\"#f4b6b6\"")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one sized
// from the viewBox, so browsers scale the image.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
