package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/cratepatch/pkg/errors"
	"github.com/matzehuels/cratepatch/pkg/pipeline"
	"github.com/matzehuels/cratepatch/pkg/vendor"
)

func samplePlan() *pipeline.Plan {
	return &pipeline.Plan{
		RootManifest: "/src/app/Cargo.toml",
		VendorDir:    "/src/app/vendor",
		Dependency:   "atomic-core as core [critical-section]",
		Exclusions:   vendor.DefaultExclusions,
		Candidates: []vendor.Candidate{
			{Path: "/src/app/vendor/alpha/Cargo.toml", DirName: "alpha", Package: "alpha"},
			{Path: "/src/app/vendor/atomic-core/Cargo.toml", DirName: "atomic-core", Package: "atomic-core", Excluded: true, Reason: vendor.ReasonDirName},
			{Path: "/src/app/vendor/serde-1.0.200/Cargo.toml", DirName: "serde-1.0.200", Package: "serde"},
		},
		Injected: []string{"/src/app/vendor/serde-1.0.200/Cargo.toml"},
	}
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		RunID:        "0b6c2a5e-7d7b-4a8e-9a43-1f0d8d2f8e11",
		RootManifest: "/src/app/Cargo.toml",
		VendorDir:    "/src/app/vendor",
		Dependency:   "atomic-core as core [critical-section]",
		Outcomes: []pipeline.Outcome{
			{Path: "/src/app/vendor/alpha/Cargo.toml", Package: "alpha", Status: pipeline.StatusPatched, WorkspaceAppended: true, LedgerCleared: 4},
			{Path: "/src/app/vendor/beta/Cargo.toml", Package: "beta", Status: pipeline.StatusFailed, Step: pipeline.StepInject, Error: "cargo add exited 101"},
		},
		Excluded: []vendor.Candidate{
			{Path: "/src/app/vendor/critical-section/Cargo.toml", DirName: "critical-section", Package: "critical-section", Excluded: true, Reason: vendor.ReasonDirName},
		},
		Stats: pipeline.Stats{Discovered: 3, Patched: 1, Failed: 1, Excluded: 1},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{" dot ", FormatDOT},
		{"svg", FormatSVG},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("png"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for png, got %v", err)
	}
}

func TestPlanDOT(t *testing.T) {
	dot := PlanDOT(samplePlan())

	for _, want := range []string{
		"digraph G {",
		`"root" [label="app\n+ atomic-core as core [critical-section]"`,
		`"/src/app/vendor/alpha/Cargo.toml" [label="alpha"];`,
		`"/src/app/vendor/serde-1.0.200/Cargo.toml" [label="serde\nserde-1.0.200"];`,
		`"root" -> "/src/app/vendor/alpha/Cargo.toml";`,
		`"root" -> "/src/app/vendor/atomic-core/Cargo.toml" [style=dashed, color=grey];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if !strings.Contains(dot, `fillcolor=lightgrey`) {
		t.Error("excluded node should be grey")
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT should end with closing brace")
	}
}

func TestResultDOT(t *testing.T) {
	dot := ResultDOT(sampleResult())

	if !strings.Contains(dot, `[label="beta\ninject failed", fillcolor="#f4b6b6"]`) {
		t.Errorf("failed node not marked:\n%s", dot)
	}
	if !strings.Contains(dot, `"root" -> "/src/app/vendor/critical-section/Cargo.toml" [style=dashed, color=grey];`) {
		t.Errorf("excluded edge not dashed:\n%s", dot)
	}
}

func TestWriteResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResult(context.Background(), &buf, sampleResult(), FormatJSON); err != nil {
		t.Fatal(err)
	}

	var got struct {
		RunID    string `json:"run_id"`
		Outcomes []struct {
			Package string `json:"package"`
			Status  string `json:"status"`
			Step    string `json:"step"`
		} `json:"outcomes"`
		Excluded []struct {
			Reason string `json:"reason"`
		} `json:"excluded"`
		Stats struct {
			Failed int `json:"failed"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.RunID == "" || len(got.Outcomes) != 2 || got.Outcomes[1].Step != "inject" {
		t.Errorf("unexpected result JSON: %+v", got)
	}
	if len(got.Excluded) != 1 || got.Excluded[0].Reason != "directory" {
		t.Errorf("excluded = %+v", got.Excluded)
	}
	if got.Stats.Failed != 1 {
		t.Errorf("stats.failed = %d", got.Stats.Failed)
	}
}

func TestWritePlan_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlan(context.Background(), &buf, samplePlan(), FormatText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"PACKAGE", "alpha", "serde-1.0.200", "excluded", "by directory", "already injected"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestResultTable(t *testing.T) {
	out := ResultTable(sampleResult())
	for _, want := range []string{"STATUS", "patched", "failed", "inject: cargo add exited 101", "critical-section"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	svg, err := RenderSVG(context.Background(), PlanDOT(samplePlan()))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("alpha")) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}
