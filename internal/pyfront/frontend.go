// Package pyfront provides the structural language frontend used by the
// rewrite engine. The engine only depends on the Frontend, Tree and Node
// interfaces, so a grammar for another target language can be swapped in
// without touching the predicate logic.
package pyfront

import "fmt"

// Frontend parses source text into a structural tree.
type Frontend interface {
	// Name identifies the frontend (e.g. "python").
	Name() string
	// Parse parses source text. The returned tree must be closed by the
	// caller. A nil tree with a nil error is never returned.
	Parse(source []byte) (Tree, error)
}

// Tree is a parsed source tree.
type Tree interface {
	Root() Node
	// HasError reports whether the tree contains any syntax error. Callers
	// that need full confidence in the structure must treat an erroneous
	// tree as unusable.
	HasError() bool
	Close()
}

// Node is a single node in a parsed tree.
type Node interface {
	// Kind returns the grammar's name for this node ("function_definition",
	// "return_statement", "identifier", ...).
	Kind() string
	// ChildByField returns the named child for a grammar field, or nil.
	ChildByField(field string) Node
	NamedChildCount() int
	NamedChild(i int) Node
	// Text returns the source text this node spans.
	Text() string
	// StartRow returns the zero-based source row on which the node starts.
	StartRow() int
	// Walk visits this node and its descendants in document order. The
	// visitor returns false to prune the subtree below a node.
	Walk(visit func(Node) bool)
}

// Probe verifies that the frontend is able to produce a usable tree at all.
// It is run once at startup; a failure is fatal for the whole run since the
// structural passes cannot be trusted without it.
func Probe(f Frontend) error {
	tree, err := f.Parse([]byte("def probe(value):\n    return value\n"))
	if err != nil {
		return fmt.Errorf("%s frontend unavailable: %w", f.Name(), err)
	}
	defer tree.Close()

	root := tree.Root()
	if root == nil || tree.HasError() {
		return fmt.Errorf("%s frontend produced an unusable tree", f.Name())
	}
	if root.NamedChildCount() == 0 || root.NamedChild(0).Kind() != "function_definition" {
		return fmt.Errorf("%s frontend grammar mismatch: expected a function definition", f.Name())
	}
	return nil
}
