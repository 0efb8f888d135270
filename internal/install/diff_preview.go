package install

import (
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/kongondo/SitesManager-sub001/internal/messages"
)

// DefaultDiffMaxLines is the default maximum number of diff lines shown per file.
const DefaultDiffMaxLines = 40

// DiffPreview is a per-file unified diff between a kept file and its bundled copy.
type DiffPreview struct {
	Path        string
	UnifiedDiff string
	Truncated   bool
}

func normalizeDiffMaxLines(value int) int {
	if value <= 0 {
		return DefaultDiffMaxLines
	}
	return value
}

func buildDiffPreview(path string, current []byte, bundled []byte, maxLines int) DiffPreview {
	rendered, truncated := renderTruncatedUnifiedDiff(
		path+messages.InstallDiffFromSuffix,
		path+messages.InstallDiffToSuffix,
		normalizeContent(string(current)),
		normalizeContent(string(bundled)),
		maxLines,
	)
	return DiffPreview{Path: path, UnifiedDiff: rendered, Truncated: truncated}
}

func renderTruncatedUnifiedDiff(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := normalizeDiffMaxLines(maxLines)
	diff := udiff.Unified(fromName, toName, fromContent, toContent)
	lines := splitDiffLines(diff)
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := append(lines[:limit:limit], fmt.Sprintf(messages.InstallDiffTruncatedFmt, limit))
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

// normalizeContent folds CRLF line endings so files edited on Windows compare equal.
func normalizeContent(content string) string {
	return strings.ReplaceAll(content, "\r\n", "\n")
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" {
		return ""
	}
	if strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
