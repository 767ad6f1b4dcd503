package rewrite

import (
	"regexp"
	"strings"

	"github.com/concolato/flask-upgrade/internal/pyfront"
)

// exceptionName is the parameter name a demoted handler receives: teardown
// handlers are passed the propagated exception (or None) instead of the
// response.
const exceptionName = "exception"

// TeardownPass demotes pass-through after_request handlers to
// teardown_request handlers. A handler qualifies only when the structural
// predicate can fully vouch for it; anything ambiguous is left untouched.
type TeardownPass struct {
	frontend pyfront.Frontend

	// decorator matches an after_request decorator anchored at column zero
	// with no arguments, e.g. "@app.after_request" or
	// "@mod.app_after_request". Submatches: the decorator prefix including
	// any app_ qualifier, the hook name, and the trailing whitespace (kept
	// verbatim on rewrite).
	decorator *regexp.Regexp
}

// NewTeardownPass creates the pass over the given structural frontend.
func NewTeardownPass(frontend pyfront.Frontend) *TeardownPass {
	return &TeardownPass{
		frontend:  frontend,
		decorator: regexp.MustCompile(`^(@\S+\.(?:app_)?)(after_request)(\s*)$`),
	}
}

// Apply rewrites all qualifying handlers in text. Each successful block
// rewrite shifts line offsets, so the scan restarts from the top until a full
// pass finds nothing left to change.
func (p *TeardownPass) Apply(text string) string {
	lines := splitAfter(text)
	for {
		changed := false
		for idx := range lines {
			if rewritten, ok := p.rewriteAt(lines, idx); ok {
				lines = rewritten
				changed = true
				break
			}
		}
		if !changed {
			break
		}
	}
	return strings.Join(lines, "")
}

// rewriteAt attempts the rewrite for a decorator at idx. It returns the new
// line slice and true only when the decorator matches, the block extracts
// cleanly and the predicate holds.
func (p *TeardownPass) rewriteAt(lines []string, idx int) ([]string, bool) {
	m := p.decorator.FindStringSubmatch(lines[idx])
	if m == nil {
		return nil, false
	}

	block, ok := ExtractBlock(lines, idx)
	if !ok {
		return nil, false
	}

	param, returnRow, ok := p.passThroughParam(strings.Join(block.Lines(lines), ""))
	if !ok {
		return nil, false
	}

	decorator := m[1] + strings.Replace(m[2], "after_", "teardown_", 1) + m[3]

	// Drop the return by its parsed row rather than by token matching, so a
	// line inside a string literal that happens to start with "return"
	// survives. The rename matches the parameter as a whole word only;
	// identifiers that merely contain it stay intact.
	paramWord := regexp.MustCompile(`\b` + regexp.QuoteMeta(param) + `\b`)

	var body []string
	for i, line := range block.Lines(lines) {
		if i == returnRow {
			continue
		}
		body = append(body, paramWord.ReplaceAllString(line, exceptionName))
	}

	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:idx]...)
	out = append(out, decorator)
	out = append(out, body...)
	out = append(out, lines[block.End:]...)
	return out, true
}

// passThroughParam evaluates the pass-through predicate on one extracted
// function and returns the parameter name as witness plus the row of the
// single return statement, relative to the extracted block. The predicate
// fails closed: a body the frontend cannot parse cleanly, multiple or
// conditional returns, a compound return expression, or any further use of
// the parameter (including nested redeclarations) all disqualify the handler.
func (p *TeardownPass) passThroughParam(code string) (string, int, bool) {
	tree, err := p.frontend.Parse([]byte(code))
	if err != nil {
		return "", 0, false
	}
	defer tree.Close()

	if tree.HasError() {
		return "", 0, false
	}

	root := tree.Root()
	if root.NamedChildCount() != 1 {
		return "", 0, false
	}
	fn := root.NamedChild(0)
	if fn.Kind() != "function_definition" {
		return "", 0, false
	}

	params := fn.ChildByField("parameters")
	if params == nil || params.NamedChildCount() != 1 {
		return "", 0, false
	}
	paramNode := params.NamedChild(0)
	if paramNode.Kind() != "identifier" {
		return "", 0, false
	}
	param := paramNode.Text()

	var returns []pyfront.Node
	fn.Walk(func(n pyfront.Node) bool {
		if n.Kind() == "return_statement" {
			returns = append(returns, n)
		}
		return true
	})
	if len(returns) != 1 {
		return "", 0, false
	}
	ret := returns[0]
	if ret.NamedChildCount() != 1 {
		return "", 0, false
	}
	value := ret.NamedChild(0)
	if value.Kind() != "identifier" || value.Text() != param {
		return "", 0, false
	}

	// The declaration and the returned value account for exactly two
	// occurrences; any third reference means the handler actually uses the
	// response.
	uses := 0
	fn.Walk(func(n pyfront.Node) bool {
		if n.Kind() == "identifier" && n.Text() == param {
			uses++
		}
		return true
	})
	if uses != 2 {
		return "", 0, false
	}

	return param, ret.StartRow(), true
}

// splitAfter splits text into lines that keep their trailing newline, so the
// original line endings survive a join with the empty separator.
func splitAfter(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
