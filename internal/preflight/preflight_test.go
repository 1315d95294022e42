package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"usecasesync/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryTree_Missing(t *testing.T) {
	result := CheckDirectoryTree("logs", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected creatable dir to pass, got: %s", result.Detail)
	}
}

func TestCheckDestination(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "useCases.json")
	if err := os.WriteFile(existing, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		pass bool
	}{
		{"existing file", existing, true},
		{"new file in new dir", filepath.Join(dir, "src", "data", "out.json"), true},
		{"directory as file", dir, false},
		{"parent is a file", filepath.Join(blocker, "out.json"), false},
		{"empty path", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckDestination("catalog", tt.path)
			if result.Passed != tt.pass {
				t.Fatalf("passed=%v want %v (%s)", result.Passed, tt.pass, result.Detail)
			}
		})
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "export.csv")
	if err := os.WriteFile(file, []byte("Title\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckFileReadable("source", file); !r.Passed {
		t.Fatalf("expected readable file to pass: %s", r.Detail)
	}
	if r := CheckFileReadable("source", filepath.Join(dir, "missing.csv")); r.Passed {
		t.Fatal("expected missing file to fail")
	}
	if r := CheckFileReadable("source", dir); r.Passed {
		t.Fatal("expected directory to fail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil, Options{}); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_RegistryMode(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Source = filepath.Join(base, "export.csv")
	cfg.Paths.Catalog = filepath.Join(base, "src", "data", "useCases.json")
	cfg.Paths.Registry = filepath.Join(base, "src", "data", "id_mapping.json")
	cfg.Paths.LogDir = ""
	if err := os.WriteFile(cfg.Paths.Source, []byte("Title\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg, Options{})
	// Source, catalog and registry.
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if err := Err(results); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}

	dry := RunAll(&cfg, Options{SkipDestinations: true})
	if len(dry) != 1 || dry[0].Name != "Source" {
		t.Fatalf("dry run should only check the source, got %+v", dry)
	}
}

func TestRunAll_SnapshotSkipsRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Source = ""
	cfg.Paths.LogDir = ""
	cfg.Paths.Catalog = filepath.Join(t.TempDir(), "useCases.json")
	cfg.Registry.Mode = config.ModeSnapshot

	results := RunAll(&cfg, Options{})
	if len(results) != 1 || results[0].Name != "Catalog" {
		t.Fatalf("expected catalog check only, got %+v", results)
	}
}

func TestErrCollectsFailures(t *testing.T) {
	err := Err([]Result{
		{Name: "Source", Detail: "missing"},
		{Name: "Catalog", Passed: true},
	})
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("expected ErrCheckFailed, got %v", err)
	}
	if Err(nil) != nil {
		t.Fatal("no results should not fail")
	}
}
