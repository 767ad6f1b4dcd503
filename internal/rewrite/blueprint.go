package rewrite

import (
	"path/filepath"
	"regexp"
	"strings"
)

// rename pairs a pattern with its replacement text.
type rename struct {
	pattern     *regexp.Regexp
	replacement string
}

// BlueprintPass converts Module declarations to Blueprint declarations: the
// constructor call itself, the flask import that brought the symbol in, and
// qualified uses elsewhere in the file. Import renames only happen in files
// where a constructor actually matched; renaming the import out from under
// unrelated uses of the symbol would break them.
type BlueprintPass struct {
	// fromImport anchors a "from flask import ..." statement; the clause
	// may continue over several physical lines.
	fromImport *regexp.Regexp

	// directUse matches fully qualified uses of the removed class.
	directUse *regexp.Regexp

	// constructor matches the Module factory call with its positional
	// __name__ argument and an optional second positional name literal.
	constructor *regexp.Regexp

	// related is the small fixed set of attribute and method renames
	// applied to every source file regardless of whether a constructor was
	// found.
	related []rename
}

// NewBlueprintPass creates the pass.
func NewBlueprintPass() *BlueprintPass {
	return &BlueprintPass{
		fromImport:  regexp.MustCompile(`^\s*from flask import\s+`),
		directUse:   regexp.MustCompile(`flask\.Module`),
		constructor: regexp.MustCompile(`Module\(__name__\s*(?:,\s*` + stringLiteral + `)?`),
		related: []rename{
			{regexp.MustCompile(`request\.module`), "request.blueprint"},
			{regexp.MustCompile(`register_module`), "register_blueprint"},
		},
	}
}

// Apply rewrites text. The path supplies the file's logical module identity
// for constructors that omit their name argument.
func (p *BlueprintPass) Apply(path, text string) string {
	found := false
	out := p.constructor.ReplaceAllStringFunc(text, func(m string) string {
		found = true
		sub := p.constructor.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = "'" + ModuleAutoName(path) + "'"
		}
		return "Blueprint(" + name + ", __name__"
	})

	if found {
		out = p.rewriteImports(out)
	}

	for _, r := range p.related {
		out = r.pattern.ReplaceAllString(out, r.replacement)
	}
	return out
}

// ModuleAutoName derives the logical module name used for a constructor
// without an explicit name: the base filename without its extension, or the
// containing directory for a package entry point.
func ModuleAutoName(path string) string {
	dir, file := filepath.Split(path)
	if file != "__init__.py" {
		return strings.TrimSuffix(file, filepath.Ext(file))
	}
	if dir == "" {
		// A bare __init__.py carries no directory component; the package is
		// named after the working directory it sits in.
		if abs, err := filepath.Abs(file); err == nil {
			dir = filepath.Dir(abs)
		}
	}
	return filepath.Base(filepath.Clean(dir))
}

// rewriteImports renames Module to Blueprint inside "from flask import"
// clauses and in qualified flask.Module references. A clause spanning
// multiple physical lines is consumed and rewritten as one atomic unit: a
// parenthesized list runs through the line closing the parenthesis, a
// backslash-continued list runs through the first line lacking the marker. A
// clause still open at end of input is malformed and left untouched.
func (p *BlueprintPass) rewriteImports(text string) string {
	lines := splitAfter(text)
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		loc := p.fromImport.FindStringIndex(line)
		if loc == nil {
			out = append(out, p.directUse.ReplaceAllString(line, "flask.Blueprint"))
			continue
		}

		clause := []string{line}
		rest := strings.TrimRight(line[loc[1]:], " \t\r\n")
		closed := true

		switch {
		case strings.HasPrefix(rest, "(") && !strings.HasSuffix(rest, ")"):
			closed = false
			for i+1 < len(lines) {
				i++
				clause = append(clause, lines[i])
				if strings.HasSuffix(strings.TrimRight(lines[i], " \t\r\n"), ")") {
					closed = true
					break
				}
			}
		case strings.HasSuffix(rest, `\`):
			closed = false
			for i+1 < len(lines) {
				i++
				clause = append(clause, lines[i])
				if !strings.HasSuffix(strings.TrimRight(lines[i], " \t\r\n"), `\`) {
					closed = true
					break
				}
			}
		}

		if !closed {
			out = append(out, clause...)
			continue
		}
		out = append(out, strings.ReplaceAll(strings.Join(clause, ""), "Module", "Blueprint"))
	}

	return strings.Join(out, "")
}
