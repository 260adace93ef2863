package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\necho \"present 2025.08.01\"\necho \"extra line\"\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	reqs := []Requirement{
		{Name: "Present", Command: present, VersionArgs: []string{"--version"}},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unconfigured", Command: ""},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Version != "present 2025.08.01" {
		t.Fatalf("expected first output line as version, got %q", results[0].Version)
	}

	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}

	if results[2].Available {
		t.Fatal("expected unconfigured command to be unavailable")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %s", results[2].Detail)
	}
}

func TestCheckBinariesSkipsProbeWithoutArgs(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "quiet")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := CheckBinaries(context.Background(), []Requirement{{Name: "Quiet", Command: present}})
	if !results[0].Available {
		t.Fatalf("expected availability, got %#v", results[0])
	}
	if results[0].Version != "" {
		t.Fatalf("expected no version without probe args, got %q", results[0].Version)
	}
}

func TestProbeVersionFailureIsEmpty(t *testing.T) {
	binDir := t.TempDir()
	broken := filepath.Join(binDir, "broken")
	if err := os.WriteFile(broken, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	if got := probeVersion(context.Background(), broken, []string{"--version"}); got != "" {
		t.Fatalf("expected empty version for failing probe, got %q", got)
	}
}
