package install

import (
	"strings"
	"testing"
)

func TestNormalizeDiffMaxLines_DefaultAndPositive(t *testing.T) {
	if got := normalizeDiffMaxLines(0); got != DefaultDiffMaxLines {
		t.Fatalf("normalizeDiffMaxLines(0) = %d, want %d", got, DefaultDiffMaxLines)
	}
	if got := normalizeDiffMaxLines(-1); got != DefaultDiffMaxLines {
		t.Fatalf("normalizeDiffMaxLines(-1) = %d, want %d", got, DefaultDiffMaxLines)
	}
	if got := normalizeDiffMaxLines(7); got != 7 {
		t.Fatalf("normalizeDiffMaxLines(7) = %d, want 7", got)
	}
}

func TestRenderTruncatedUnifiedDiff(t *testing.T) {
	from := "a\nb\nc\n"
	to := "a\nx\ny\nz\n"
	diff, truncated := renderTruncatedUnifiedDiff("from.txt", "to.txt", from, to, 2)
	if !truncated {
		t.Fatal("expected truncated diff")
	}
	if !strings.Contains(diff, "truncated to 2 lines") {
		t.Fatalf("expected truncation note in diff:\n%s", diff)
	}
	if got := strings.Count(diff, "\n"); got != 3 {
		t.Fatalf("expected 2 diff lines plus the note, got %d:\n%s", got, diff)
	}
}

func TestRenderTruncatedUnifiedDiff_FitsLimit(t *testing.T) {
	diff, truncated := renderTruncatedUnifiedDiff("from.txt", "to.txt", "a\n", "b\n", 100)
	if truncated {
		t.Fatalf("did not expect truncation:\n%s", diff)
	}
	if !strings.Contains(diff, "-a") || !strings.Contains(diff, "+b") {
		t.Fatalf("expected both sides in diff:\n%s", diff)
	}
	if !strings.HasSuffix(diff, "\n") {
		t.Fatalf("expected trailing newline, got %q", diff)
	}
}

func TestBuildDiffPreview_IgnoresLineEndings(t *testing.T) {
	preview := buildDiffPreview("index.config.php", []byte("<?php\r\nreturn [];\r\n"), []byte("<?php\nreturn [];\n"), 0)
	if preview.UnifiedDiff != "" {
		t.Fatalf("expected empty diff for CRLF-only change, got:\n%s", preview.UnifiedDiff)
	}
	if preview.Truncated {
		t.Fatal("empty diff must not be truncated")
	}
	if preview.Path != "index.config.php" {
		t.Fatalf("Path = %q", preview.Path)
	}
}

func TestBuildDiffPreview_LabelsSides(t *testing.T) {
	preview := buildDiffPreview("sites.json", []byte("{}\n"), []byte("{\"sites\": []}\n"), 0)
	if !strings.Contains(preview.UnifiedDiff, "sites.json (current)") {
		t.Fatalf("missing current label:\n%s", preview.UnifiedDiff)
	}
	if !strings.Contains(preview.UnifiedDiff, "sites.json (bundled)") {
		t.Fatalf("missing bundled label:\n%s", preview.UnifiedDiff)
	}
}

func TestSplitDiffLines(t *testing.T) {
	if got := splitDiffLines("\n\n"); len(got) != 0 {
		t.Fatalf("expected no lines, got %v", got)
	}
	if got := splitDiffLines("a\nb\n"); len(got) != 2 {
		t.Fatalf("expected 2 lines, got %v", got)
	}
	if got := ensureTrailingNewline(""); got != "" {
		t.Fatalf("ensureTrailingNewline(\"\") = %q", got)
	}
}
