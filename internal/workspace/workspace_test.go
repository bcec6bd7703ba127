package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_EphemeralMode(t *testing.T) {
	tempBase := t.TempDir()
	mgr := NewManager(tempBase)

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	wsPath := mgr.GetPath()
	if wsPath == "" {
		t.Fatal("GetPath() returned empty string")
	}

	if !strings.HasPrefix(filepath.Base(wsPath), "odata4gen-") {
		t.Errorf("Expected odata4gen- prefixed directory, got: %s", wsPath)
	}

	if _, err := os.Stat(wsPath); os.IsNotExist(err) {
		t.Errorf("Workspace directory does not exist: %s", wsPath)
	}

	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	if _, err := os.Stat(wsPath); !os.IsNotExist(err) {
		t.Errorf("Workspace directory still exists after cleanup: %s", wsPath)
	}
}

func TestManager_EphemeralDirectoriesAreUnique(t *testing.T) {
	tempBase := t.TempDir()
	a, b := NewManager(tempBase), NewManager(tempBase)

	if err := a.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := b.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if a.GetPath() == b.GetPath() {
		t.Errorf("Expected distinct workspaces, both got %s", a.GetPath())
	}
}

func TestManager_PersistentMode(t *testing.T) {
	tempBase := t.TempDir()
	mgr := NewPersistentManager(tempBase, "work")

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	wsPath := mgr.GetPath()
	expectedPath := filepath.Join(tempBase, "work")

	if wsPath != expectedPath {
		t.Errorf("Expected path %s, got: %s", expectedPath, wsPath)
	}

	markerFile := filepath.Join(wsPath, "marker.txt")
	if err := os.WriteFile(markerFile, []byte("persistent"), 0o600); err != nil {
		t.Fatalf("Failed to create marker file: %v", err)
	}

	// Cleanup should NOT remove directory in persistent mode
	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	if _, err := os.Stat(markerFile); os.IsNotExist(err) {
		t.Errorf("Marker file was removed from persistent workspace")
	}
}

func TestManager_DefaultSubdirName(t *testing.T) {
	tempBase := t.TempDir()
	mgr := NewPersistentManager(tempBase, "")

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	expectedPath := filepath.Join(tempBase, "work")
	if mgr.GetPath() != expectedPath {
		t.Errorf("Expected default subdir 'work', got: %s", mgr.GetPath())
	}
}

func TestManager_CreateFile(t *testing.T) {
	mgr := NewManager(t.TempDir())

	if _, err := mgr.CreateFile("x-*.xml"); err == nil {
		t.Fatal("expected error before Create()")
	}

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	f, err := mgr.CreateFile("metadata-*.xml")
	if err != nil {
		t.Fatalf("CreateFile() failed: %v", err)
	}
	defer f.Close()

	if filepath.Dir(f.Name()) != mgr.GetPath() {
		t.Errorf("file %s not inside workspace %s", f.Name(), mgr.GetPath())
	}
	if !strings.HasSuffix(f.Name(), ".xml") {
		t.Errorf("unexpected file name %s", f.Name())
	}
}

func TestManager_PersistentCreateFileReusesName(t *testing.T) {
	mgr := NewPersistentManager(t.TempDir(), "metadata")
	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	for _, content := range []string{"first run, longer content", "second"} {
		f, err := mgr.CreateFile("metadata-*.xml")
		if err != nil {
			t.Fatalf("CreateFile() failed: %v", err)
		}
		if filepath.Base(f.Name()) != "metadata.xml" {
			t.Errorf("Expected metadata.xml, got: %s", f.Name())
		}
		if _, err := f.WriteString(content); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		_ = f.Close()
	}

	entries, err := os.ReadDir(mgr.GetPath())
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected one file in persistent workspace, got %d", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(mgr.GetPath(), "metadata.xml"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Expected file to be truncated, got: %q", data)
	}
}

func TestFixedName(t *testing.T) {
	cases := map[string]string{
		"metadata-*.xml": "metadata.xml",
		"plain.xml":      "plain.xml",
		"*.xml":          "workspace.xml",
		"doc_*":          "doc",
	}
	for in, want := range cases {
		if got := fixedName(in); got != want {
			t.Errorf("fixedName(%q) = %q, want %q", in, got, want)
		}
	}
}
