package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vinyl/internal/testsupport"
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

func TestCheckFreeSpace(t *testing.T) {
	result := CheckFreeSpace("space", t.TempDir())
	if !strings.Contains(result.Detail, "free") {
		t.Fatalf("expected free-space detail, got: %s", result.Detail)
	}

	missing := CheckFreeSpace("space", filepath.Join(t.TempDir(), "nope"))
	if missing.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckStore(t *testing.T) {
	if result := CheckStore(context.Background(), nil); result.Passed {
		t.Fatal("expected failure for nil store")
	}

	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)

	result := CheckStore(context.Background(), st)
	if !result.Passed {
		t.Fatalf("expected store ping to pass, got: %s", result.Detail)
	}
	if result.Detail != st.Path() {
		t.Fatalf("expected store path detail, got: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReadyConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)

	results := RunAll(context.Background(), cfg, st)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	for _, name := range []string{"Data directory", "Download directory"} {
		if !byName[name].Passed {
			t.Errorf("check %q failed: %s", name, byName[name].Detail)
		}
	}
	if _, ok := byName["Free space"]; !ok {
		t.Error("expected a free space check")
	}
	if !byName["Playlist store"].Passed {
		t.Errorf("store check failed: %s", byName["Playlist store"].Detail)
	}
}

func TestCheckSystemDeps_StubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("yt-dlp", "mpv", "ffmpeg"))

	statuses := CheckSystemDeps(context.Background(), cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Errorf("dependency %q unavailable: %s", status.Name, status.Detail)
		}
	}
}
