package ledger

import (
	"encoding/json"
	goerrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/cratepatch/pkg/errors"
)

func writeLedger(t *testing.T, content string) (manifest string) {
	t.Helper()
	dir := t.TempDir()
	manifest = filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(manifest, []byte("[package]\nname = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return manifest
}

func decode(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("rewritten ledger is not valid JSON: %v", err)
	}
	return v
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantDropped int
		wantPackage any
	}{
		{
			name:        "registry package",
			content:     `{"files":{"src/lib.rs":"ab12","Cargo.toml":"cd34"},"package":"ef56"}`,
			wantDropped: 2,
			wantPackage: "ef56",
		},
		{
			name:        "null package",
			content:     `{"files":{"a":"1"},"package":null}`,
			wantDropped: 1,
			wantPackage: nil,
		},
		{
			name:        "already empty",
			content:     `{"files":{},"package":"ef56"}`,
			wantDropped: 0,
			wantPackage: "ef56",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest := writeLedger(t, tt.content)

			dropped, err := Repair(manifest)
			if err != nil {
				t.Fatalf("Repair failed: %v", err)
			}
			if dropped != tt.wantDropped {
				t.Errorf("dropped = %d, want %d", dropped, tt.wantDropped)
			}

			got := decode(t, PathFor(manifest))
			files, ok := got["files"].(map[string]any)
			if !ok || len(files) != 0 {
				t.Errorf("files = %v, want empty object", got["files"])
			}
			if got["package"] != tt.wantPackage {
				t.Errorf("package = %v, want %v", got["package"], tt.wantPackage)
			}
		})
	}
}

func TestRepair_PreservesUnknownFields(t *testing.T) {
	manifest := writeLedger(t, `{"files":{"a":"1"},"package":"p","extra":{"nested":[1,2]}}`)

	if _, err := Repair(manifest); err != nil {
		t.Fatal(err)
	}

	got := decode(t, PathFor(manifest))
	extra, ok := got["extra"].(map[string]any)
	if !ok {
		t.Fatalf("extra field lost: %v", got)
	}
	if nested, _ := extra["nested"].([]any); len(nested) != 2 {
		t.Errorf("extra.nested = %v, want [1 2]", extra["nested"])
	}
}

func TestRepair_AddsMissingFiles(t *testing.T) {
	manifest := writeLedger(t, `{"package":"p"}`)

	if _, err := Repair(manifest); err != nil {
		t.Fatal(err)
	}
	got := decode(t, PathFor(manifest))
	if files, ok := got["files"].(map[string]any); !ok || len(files) != 0 {
		t.Errorf("files = %v, want {}", got["files"])
	}
}

func TestRepair_Errors(t *testing.T) {
	t.Run("missing ledger", func(t *testing.T) {
		manifest := filepath.Join(t.TempDir(), "Cargo.toml")
		_, err := Repair(manifest)
		if !errors.Is(err, errors.ErrCodeIO) {
			t.Errorf("expected IO_ERROR, got %v", err)
		}
		if !goerrors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist in chain, got %v", err)
		}
	})

	for name, content := range map[string]string{
		"invalid json": `{"files":`,
		"array":        `[1,2,3]`,
		"null":         `null`,
		"bad files":    `{"files":[1]}`,
	} {
		t.Run(name, func(t *testing.T) {
			manifest := writeLedger(t, content)
			_, err := Repair(manifest)
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("expected PARSE_ERROR, got %v", err)
			}
			data, _ := os.ReadFile(PathFor(manifest))
			if string(data) != content {
				t.Error("ledger must be untouched on parse failure")
			}
		})
	}
}

func TestRead(t *testing.T) {
	manifest := writeLedger(t, `{"files":{"b":"2","a":"1"},"package":"p","z":true}`)

	l, err := Read(PathFor(manifest))
	if err != nil {
		t.Fatal(err)
	}
	if !l.Verified() {
		t.Error("Verified() = false for populated ledger")
	}
	if got := l.FileNames(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("FileNames() = %v", got)
	}
	if got := l.Fields(); !slices.Equal(got, []string{"files", "package", "z"}) {
		t.Errorf("Fields() = %v", got)
	}
	if l.Package == nil || *l.Package != "p" {
		t.Errorf("Package = %v, want p", l.Package)
	}

	l.Clear()
	if l.Verified() {
		t.Error("Verified() = true after Clear")
	}
	out, err := l.Indent()
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]any
	if err := json.Unmarshal(out, &v); err != nil {
		t.Fatalf("Indent output invalid: %v", err)
	}
}
