package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the block extractor:
// - Extract a simple def block following its decorator
// - Interior blank lines belong to the block, trailing ones do not
// - Extraction fails when the next line is not a zero-indent def
// - Extraction fails at end of input
// - The block ends at the first line back at column zero

func TestExtractBlockSimple(t *testing.T) {
	t.Parallel()

	lines := []string{
		"@app.after_request\n",
		"def handler(response):\n",
		"    do_something()\n",
		"    return response\n",
		"\n",
		"x = 1\n",
	}
	block, ok := ExtractBlock(lines, 0)
	require.True(t, ok)
	assert.Equal(t, 1, block.Start)
	assert.Equal(t, 4, block.End)
	assert.Equal(t, lines[1:4], block.Lines(lines))
}

func TestExtractBlockInteriorBlankLines(t *testing.T) {
	t.Parallel()

	lines := []string{
		"@app.after_request\n",
		"def handler(response):\n",
		"    first()\n",
		"\n",
		"    second()\n",
		"def next_one():\n",
	}
	block, ok := ExtractBlock(lines, 0)
	require.True(t, ok)
	assert.Equal(t, 5, block.End)
}

func TestExtractBlockRequiresZeroIndentDef(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"@app.after_request\n", "    def method(self):\n", "        pass\n"},
		{"@app.after_request\n", "class Thing:\n", "    pass\n"},
		{"@app.after_request\n", "defer = 1\n"},
		{"@app.after_request\n"}, // decorator at end of input
	}
	for _, lines := range cases {
		_, ok := ExtractBlock(lines, 0)
		assert.False(t, ok, "lines %q must not extract", lines)
	}
}

func TestExtractBlockStopsAtDedent(t *testing.T) {
	t.Parallel()

	lines := []string{
		"@app.after_request\n",
		"def handler(response):\n",
		"    return response\n",
		"def other():\n",
		"    pass\n",
	}
	block, ok := ExtractBlock(lines, 0)
	require.True(t, ok)
	assert.Equal(t, 3, block.End)
}
