package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cratepatch/pkg/errors"
)

const sampleManifest = `[package]
name = "my-crate"
version = "0.1.0"

[dependencies]
serde = "1.0"
core = { package = "atomic-core", version = "0.1", features = ["critical-section"] }

[dev-dependencies]
pretty_assertions = "1.0"

[build-dependencies]
cc = "1"
`

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sampleManifest)

	m, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if m.Name() != "my-crate" {
		t.Errorf("Name() = %q, want my-crate", m.Name())
	}
	if m.Package.Version != "0.1.0" {
		t.Errorf("Version = %q, want 0.1.0", m.Package.Version)
	}
	if !m.HasDependency("core") {
		t.Error("expected renamed dependency core")
	}
	if m.HasDependency("atomic-core") {
		t.Error("HasDependency matches local keys only")
	}
	if m.HasWorkspace() {
		t.Error("HasWorkspace() = true, want false")
	}
}

func TestRead_Errors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := Read(filepath.Join(t.TempDir(), FileName))
		if !errors.Is(err, errors.ErrCodeIO) {
			t.Errorf("expected IO_ERROR, got %v", err)
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "[package\nname = ")
		_, err := Read(path)
		if !errors.Is(err, errors.ErrCodeParse) {
			t.Errorf("expected PARSE_ERROR, got %v", err)
		}
	})
}

func TestIsolateWorkspace(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sampleManifest)

	appended, err := IsolateWorkspace(path)
	if err != nil {
		t.Fatalf("IsolateWorkspace failed: %v", err)
	}
	if !appended {
		t.Error("expected first call to append")
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), sampleManifest) {
		t.Error("original content must be preserved")
	}
	if !strings.HasSuffix(string(data), WorkspaceDeclaration) {
		t.Errorf("expected trailing workspace declaration, got %q", data)
	}

	m, err := Read(path)
	if err != nil {
		t.Fatalf("patched manifest must stay valid TOML: %v", err)
	}
	if !m.HasWorkspace() {
		t.Error("HasWorkspace() = false after isolation")
	}
}

func TestIsolateWorkspace_Idempotent(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sampleManifest)

	for i := range 3 {
		if _, err := IsolateWorkspace(path); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	data, _ := os.ReadFile(path)
	if n := strings.Count(string(data), "[workspace]"); n != 1 {
		t.Errorf("found %d [workspace] tables, want 1", n)
	}
}

func TestIsolateWorkspace_ExistingWorkspace(t *testing.T) {
	content := sampleManifest + "\n[workspace]\nmembers = []\n"
	path := writeManifest(t, t.TempDir(), content)

	appended, err := IsolateWorkspace(path)
	if err != nil {
		t.Fatal(err)
	}
	if appended {
		t.Error("expected no append when [workspace] exists")
	}
	data, _ := os.ReadFile(path)
	if string(data) != content {
		t.Error("manifest should be unchanged")
	}
}

func TestIsolateWorkspace_Missing(t *testing.T) {
	_, err := IsolateWorkspace(filepath.Join(t.TempDir(), FileName))
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("expected IO_ERROR, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, sampleManifest)

	if err := Resolve(path); err != nil {
		t.Errorf("Resolve(%q) = %v", path, err)
	}
	if err := Resolve(filepath.Join(dir, "missing", FileName)); !errors.Is(err, errors.ErrCodePathResolution) {
		t.Errorf("expected PATH_RESOLUTION for missing file, got %v", err)
	}
	if err := Resolve(dir); !errors.Is(err, errors.ErrCodePathResolution) {
		t.Errorf("expected PATH_RESOLUTION for directory, got %v", err)
	}
	other := filepath.Join(dir, "other.toml")
	_ = os.WriteFile(other, []byte(""), 0o644)
	if err := Resolve(other); !errors.Is(err, errors.ErrCodePathResolution) {
		t.Errorf("expected PATH_RESOLUTION for wrong name, got %v", err)
	}
}
