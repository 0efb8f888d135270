package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestMainVersion(t *testing.T) {
	var out bytes.Buffer
	if err := execute([]string{"sitesctl", "--version"}, &out, &out); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if !strings.Contains(out.String(), Version) {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

func TestMainUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := execute([]string{"sitesctl", "unknown"}, &out, &out)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunMainSuccess(t *testing.T) {
	var out bytes.Buffer
	called := false
	runMain([]string{"sitesctl", "--version"}, &out, &out, func(code int) {
		called = true
	})
	if called {
		t.Fatalf("unexpected exit")
	}
}

func TestRunMainError(t *testing.T) {
	var out bytes.Buffer
	code := 0
	runMain([]string{"sitesctl", "unknown"}, &out, &out, func(exitCode int) {
		code = exitCode
	})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("expected error output, got %q", out.String())
	}
}

func TestVersionString(t *testing.T) {
	origVersion, origCommit, origBuild := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = origVersion, origCommit, origBuild })

	Version, Commit, BuildDate = "v1.2.0", "unknown", "unknown"
	if got := versionString(); got != "v1.2.0" {
		t.Fatalf("versionString() = %q", got)
	}
	Commit, BuildDate = "abc123", "2026-10-01"
	if got := versionString(); got != "v1.2.0 (commit abc123, built 2026-10-01)" {
		t.Fatalf("versionString() = %q", got)
	}
}
