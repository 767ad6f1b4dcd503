// Package diffout renders rewrite results as unified diffs.
package diffout

import (
	"path"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// Unified returns the unified diff between a file's original and transformed
// text, with "a/<path>" and "b/<path>" headers. Identical texts produce an
// empty string so unmodified files emit nothing.
func Unified(filePath, original, transformed string) (string, error) {
	if original == transformed {
		return "", nil
	}

	name := path.Clean(filepath.ToSlash(filePath))
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(transformed),
		FromFile: path.Join("a", name),
		ToFile:   path.Join("b", name),
		Context:  contextLines,
	}
	return difflib.GetUnifiedDiffString(diff)
}
