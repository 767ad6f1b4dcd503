// Package rewrite implements the transformation engine: a fixed pipeline of
// pure text-to-text passes that upgrade Flask 0.6-era source to the 0.7 API.
// Every pass takes text in and returns text out; nothing here touches the
// filesystem. Passes that cannot fully vouch for a construct leave it alone.
package rewrite

import (
	"regexp"
	"strings"
)

// stringLiteral matches one single- or double-quoted Python string literal,
// tolerating backslash-escaped quotes inside the body. Submatches: the whole
// literal including quotes, then the single-quoted body, then the
// double-quoted body.
const stringLiteral = `('([^'\\]*(?:\\.[^'\\]*)*)'|"([^"\\]*(?:\\.[^"\\]*)*)")`

// LiteralCallRewriter rewrites the string-literal argument of a named call.
// Matching is lexical, so it works on templates and on source files that do
// not parse as a whole. The rewrite function receives the literal body with
// its escapes intact and must return the replacement body; the surrounding
// quote character is preserved.
type LiteralCallRewriter struct {
	pattern *regexp.Regexp
	rewrite func(string) string
}

// NewLiteralCallRewriter builds a rewriter for calls of the form
// call('literal') or call("literal").
func NewLiteralCallRewriter(call string, rewrite func(string) string) *LiteralCallRewriter {
	return &LiteralCallRewriter{
		pattern: regexp.MustCompile(`\b(` + regexp.QuoteMeta(call) + `\()` + stringLiteral),
		rewrite: rewrite,
	}
}

// Apply rewrites every occurrence in text. Text without matches is returned
// unchanged.
func (r *LiteralCallRewriter) Apply(text string) string {
	return r.pattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := r.pattern.FindStringSubmatch(m)
		prefix, literal := sub[1], sub[2]
		quote := literal[:1]
		body := literal[1 : len(literal)-1]
		return prefix + quote + r.rewrite(body) + quote
	})
}

// NormalizeEndpoint converts a flat endpoint reference to its
// blueprint-relative form. Names that already carry the separator are left
// alone so that repeated runs settle instead of flipping back and forth.
func NormalizeEndpoint(name string) string {
	if strings.HasPrefix(name, ".") {
		return name
	}
	return "." + name
}

// NewEndpointRewriter is the url_for pass of the pipeline.
func NewEndpointRewriter() *LiteralCallRewriter {
	return NewLiteralCallRewriter("url_for", NormalizeEndpoint)
}
