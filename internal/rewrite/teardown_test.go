package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concolato/flask-upgrade/internal/pyfront"
)

// Test Plan for teardown detection:
// - A pure pass-through handler is demoted: decorator renamed, return line
//   dropped, parameter renamed to exception
// - Decorator prefixes (@app., @mod.app_) and trailing whitespace survive
// - Handlers with two returns, compound return expressions, or extra uses of
//   the parameter are left byte-identical
// - Indented decorators and non-def followers never match
// - Multiple handlers in one file all get rewritten (fixed-point scan)
// - Unparseable bodies fail closed
// - The rename only touches whole-word occurrences; longer identifiers that
//   contain the parameter stay intact
// - Only the parsed return statement is dropped; a string-literal line that
//   starts with "return" survives
// - The pass is idempotent

func newTeardown(t *testing.T) *TeardownPass {
	t.Helper()
	f := pyfront.NewPython()
	require.NoError(t, pyfront.Probe(f))
	return NewTeardownPass(f)
}

func TestTeardownPositive(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"@app.after_request",
		"def close_connection(response):",
		"    do_something()",
		"    return response",
		"",
		"x = 1",
		"",
	}, "\n")
	want := strings.Join([]string{
		"@app.teardown_request",
		"def close_connection(exception):",
		"    do_something()",
		"",
		"x = 1",
		"",
	}, "\n")

	assert.Equal(t, want, newTeardown(t).Apply(in))
}

func TestTeardownRenamesRemainingOccurrences(t *testing.T) {
	t.Parallel()

	// The parameter appears only in the def line and the return, so the
	// rename touches the def line; a comment mentioning the name is renamed
	// too, exactly like a textual pass should.
	in := strings.Join([]string{
		"@app.after_request",
		"def handler(response):",
		"    # tidy up before the response goes out",
		"    cleanup()",
		"    return response",
		"",
	}, "\n")
	out := newTeardown(t).Apply(in)
	assert.Contains(t, out, "def handler(exception):")
	assert.Contains(t, out, "# tidy up before the exception goes out")
	assert.NotContains(t, out, "return")
}

func TestTeardownDecoratorPrefixPreserved(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"@mod.app_after_request",
		"def handler(response):",
		"    return response",
		"",
	}, "\n")
	out := newTeardown(t).Apply(in)
	assert.Contains(t, out, "@mod.app_teardown_request\n")
}

func TestTeardownNegativeCases(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"two returns": strings.Join([]string{
			"@app.after_request",
			"def handler(response):",
			"    if bad():",
			"        return response",
			"    return response",
			"",
		}, "\n"),
		"attribute return": strings.Join([]string{
			"@app.after_request",
			"def handler(response):",
			"    return response.headers",
			"",
		}, "\n"),
		"parameter used elsewhere": strings.Join([]string{
			"@app.after_request",
			"def handler(response):",
			"    response.headers['X-Foo'] = '1'",
			"    return response",
			"",
		}, "\n"),
		"two parameters": strings.Join([]string{
			"@app.after_request",
			"def handler(response, extra):",
			"    return response",
			"",
		}, "\n"),
		"nested redeclaration": strings.Join([]string{
			"@app.after_request",
			"def handler(response):",
			"    def inner(response):",
			"        return response",
			"    return response",
			"",
		}, "\n"),
		"returns a different name": strings.Join([]string{
			"@app.after_request",
			"def handler(response):",
			"    other = make()",
			"    return other",
			"",
		}, "\n"),
		"indented decorator": strings.Join([]string{
			"    @app.after_request",
			"    def method(response):",
			"        return response",
			"",
		}, "\n"),
		"decorator with arguments": strings.Join([]string{
			"@app.after_request(priority=1)",
			"def handler(response):",
			"    return response",
			"",
		}, "\n"),
		"unparseable body": strings.Join([]string{
			"@app.after_request",
			"def handler(response):",
			"    return response ++",
			"",
		}, "\n"),
	}

	pass := newTeardown(t)
	for name, in := range cases {
		assert.Equal(t, in, pass.Apply(in), "case %q must produce no change", name)
	}
}

func TestTeardownRenameIsWholeWord(t *testing.T) {
	t.Parallel()

	// response_code contains the parameter name but is a different
	// identifier; the rename must not touch it.
	in := strings.Join([]string{
		"@app.after_request",
		"def handler(resp):",
		"    log(response_code)",
		"    return resp",
		"",
	}, "\n")
	out := newTeardown(t).Apply(in)
	assert.Contains(t, out, "def handler(exception):")
	assert.Contains(t, out, "log(response_code)")
	assert.NotContains(t, out, "return resp")
}

func TestTeardownKeepsReturnInsideStringLiteral(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"@app.after_request",
		"def handler(response):",
		"    note = '''",
		"    return codes are logged",
		"    '''",
		"    log(note)",
		"    return response",
		"",
	}, "\n")
	out := newTeardown(t).Apply(in)
	assert.Contains(t, out, "@app.teardown_request")
	assert.Contains(t, out, "    return codes are logged\n")
	assert.NotContains(t, out, "return response")
}

func TestTeardownMultipleHandlers(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"@app.after_request",
		"def first(response):",
		"    return response",
		"",
		"@app.after_request",
		"def second(resp):",
		"    log()",
		"    return resp",
		"",
	}, "\n")
	out := newTeardown(t).Apply(in)
	assert.Equal(t, 2, strings.Count(out, "@app.teardown_request"))
	assert.Contains(t, out, "def first(exception):")
	assert.Contains(t, out, "def second(exception):")
	assert.NotContains(t, out, "return")
}

func TestTeardownIdempotent(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"@app.after_request",
		"def handler(response):",
		"    return response",
		"",
	}, "\n")
	pass := newTeardown(t)
	once := pass.Apply(in)
	assert.Equal(t, once, pass.Apply(once))
}
