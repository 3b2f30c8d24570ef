// Package document replaces a marked region of a text document with a
// rendered block, leaving everything outside the markers untouched.
package document

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"GasSentinel/internal/fsutil"
)

const (
	DefaultBeginMarker = "<!-- gassentinel:start -->"
	DefaultEndMarker   = "<!-- gassentinel:end -->"
)

var ErrMarkerMismatch = errors.New("section markers are missing or out of order")

// ReplaceSection substitutes everything strictly between begin and end with
// block. When neither marker exists the section is appended at the end of
// doc. Applying the same block twice yields the same document.
func ReplaceSection(doc, begin, end, block string) (string, error) {
	if begin == "" || end == "" || begin == end {
		return "", fmt.Errorf("%w: markers must be distinct and non-empty", ErrMarkerMismatch)
	}
	body := "\n" + strings.TrimRight(block, "\n") + "\n"

	bi := strings.Index(doc, begin)
	ei := strings.Index(doc, end)
	switch {
	case bi < 0 && ei < 0:
		var b strings.Builder
		b.WriteString(doc)
		if doc != "" && !strings.HasSuffix(doc, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(begin + body + end + "\n")
		return b.String(), nil
	case bi < 0 || ei < 0:
		return "", fmt.Errorf("%w: found begin=%t end=%t", ErrMarkerMismatch, bi >= 0, ei >= 0)
	}

	contentStart := bi + len(begin)
	// The end marker must follow the begin marker.
	rel := strings.Index(doc[contentStart:], end)
	if rel < 0 {
		return "", fmt.Errorf("%w: end marker precedes begin marker", ErrMarkerMismatch)
	}
	contentEnd := contentStart + rel

	return doc[:contentStart] + body + doc[contentEnd:], nil
}

// PatchFile applies ReplaceSection to the file at path and writes the
// result atomically. It reports whether the file changed; an unchanged
// document is not rewritten. A missing file is treated as empty.
func PatchFile(path, begin, end, block string) (bool, error) {
	current, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("read document: %w", err)
	}

	next, err := ReplaceSection(string(current), begin, end, block)
	if err != nil {
		return false, err
	}
	if next == string(current) {
		return false, nil
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fsutil.WriteFileAtomic(path, []byte(next), perm); err != nil {
		return false, fmt.Errorf("write document: %w", err)
	}
	return true, nil
}
