package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()
	tmpDir := t.TempDir()

	testPath := filepath.Join(tmpDir, "clip.gif")
	testData := []byte("GIF89a")

	if err := fs.WriteFile(testPath, testData); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()

	testPath := filepath.Join(t.TempDir(), "exports", "2026", "clip.gif")
	if err := fs.WriteFile(testPath, []byte("test")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	exists, err := fs.Exists(testPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist")
	}
}

func TestFileSystem_MkdirAll(t *testing.T) {
	fs := New()

	testPath := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := fs.MkdirAll(testPath); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	exists, err := fs.Exists(testPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected directory to exist")
	}
}

func TestFileSystem_Exists(t *testing.T) {
	fs := New()
	tmpDir := t.TempDir()

	testPath := filepath.Join(tmpDir, "clip.gif")
	os.WriteFile(testPath, []byte("test"), 0644)

	exists, err := fs.Exists(testPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist")
	}

	exists, err = fs.Exists(filepath.Join(tmpDir, "nonexistent.gif"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected file to not exist")
	}
}

func TestFileSystem_Remove(t *testing.T) {
	fs := New()
	tmpDir := t.TempDir()

	testPath := filepath.Join(tmpDir, "clip.gif.part")
	os.WriteFile(testPath, []byte("test"), 0644)

	if err := fs.Remove(testPath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	exists, _ := fs.Exists(testPath)
	if exists {
		t.Error("expected file to be removed")
	}
}

func TestFileSystem_Rename(t *testing.T) {
	fs := New()
	tmpDir := t.TempDir()

	// The export pipeline writes to a .part file and renames into place.
	partPath := filepath.Join(tmpDir, "clip.gif.part")
	finalPath := filepath.Join(tmpDir, "clip.gif")
	os.WriteFile(partPath, []byte("GIF89a"), 0644)

	if err := fs.Rename(partPath, finalPath); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if exists, _ := fs.Exists(partPath); exists {
		t.Error("expected part file to be gone")
	}
	data, err := fs.ReadFile(finalPath)
	if err != nil {
		t.Fatalf("ReadFile after rename failed: %v", err)
	}
	if string(data) != "GIF89a" {
		t.Errorf("unexpected content after rename: %q", data)
	}
}

func TestFileSystem_RenameMissingSource(t *testing.T) {
	fs := New()
	tmpDir := t.TempDir()

	err := fs.Rename(filepath.Join(tmpDir, "missing.part"), filepath.Join(tmpDir, "out.gif"))
	if err == nil {
		t.Error("expected error renaming a missing file")
	}
}
