package rewrite

import "strings"

// Block describes the exact line range of one top-level function definition:
// the def line plus its indented body. End is exclusive. A Block is only ever
// produced with exact boundaries; there is no partially valid form.
type Block struct {
	Start  int
	End    int
	Indent int
}

// Lines returns the block's lines from the slice it was extracted from.
func (b Block) Lines(lines []string) []string {
	return lines[b.Start:b.End]
}

// ExtractBlock locates the function definition following the decorator at
// headerIdx. The definition must begin on the very next line at column zero;
// anything else fails extraction so the candidate is skipped rather than
// partially rewritten. The body is the maximal contiguous run of lines that
// are blank or indented past the definition line, ending at the first line
// whose indentation falls back to the definition's level (or end of input).
//
// Lines may carry their trailing newline; only leading characters are
// inspected.
func ExtractBlock(lines []string, headerIdx int) (Block, bool) {
	defIdx := headerIdx + 1
	if defIdx >= len(lines) || !strings.HasPrefix(lines[defIdx], "def ") {
		return Block{}, false
	}

	end := defIdx + 1
	for end < len(lines) {
		line := lines[end]
		if strings.TrimSpace(line) == "" {
			end++
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			break
		}
		end++
	}

	// Blank lines trailing the last indented statement separate the function
	// from what follows; they stay outside the block.
	for end > defIdx+1 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	return Block{Start: defIdx, End: end, Indent: 0}, true
}
