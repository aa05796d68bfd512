package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckInputDir_OK(t *testing.T) {
	result := CheckInputDir(t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckInputDir_NotExist(t *testing.T) {
	result := CheckInputDir(filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckInputDir_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckInputDir(f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDir_MissingUsesAncestor(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bids", "nested")
	result := CheckOutputDir(out, 0)
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
}

func TestCheckOutputDir_FileInPath(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckOutputDir(filepath.Join(f, "out"), 0); result.Passed {
		t.Fatal("expected failure when a path component is a file")
	}
}

func TestCheckOutputDir_FreeSpace(t *testing.T) {
	original := statfs
	t.Cleanup(func() { statfs = original })
	statfs = func(string) (uint64, error) { return 1000, nil }

	dir := t.TempDir()
	if result := CheckOutputDir(dir, 500); !result.Passed {
		t.Fatalf("expected pass with enough space, got: %s", result.Detail)
	}
	result := CheckOutputDir(dir, 5000)
	if result.Passed {
		t.Fatal("expected failure when space is short")
	}
	if !strings.Contains(result.Detail, "required") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestRunAll(t *testing.T) {
	results := RunAll(Request{InputDir: t.TempDir(), OutputDir: t.TempDir()})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}

	results = RunAll(Request{InputDir: filepath.Join(t.TempDir(), "missing")})
	if len(results) != 1 || len(Failed(results)) != 1 {
		t.Fatalf("expected single failed input check, got %+v", results)
	}
}
