package pyfront

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// pythonFrontend implements Frontend on top of the tree-sitter Python
// grammar.
type pythonFrontend struct {
	language *sitter.Language
}

// NewPython creates the Python frontend.
func NewPython() Frontend {
	return &pythonFrontend{
		language: sitter.NewLanguage(python.Language()),
	}
}

func (f *pythonFrontend) Name() string {
	return "python"
}

// Parse parses Python source text into a tree.
func (f *pythonFrontend) Parse(source []byte) (Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(f.language); err != nil {
		return nil, fmt.Errorf("incompatible python grammar: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("python parser returned no tree")
	}
	return &sitterTree{tree: tree, source: source}, nil
}

// sitterTree adapts a tree-sitter tree to the Tree interface.
type sitterTree struct {
	tree   *sitter.Tree
	source []byte
}

func (t *sitterTree) Root() Node {
	return wrapNode(t.tree.RootNode(), t.source)
}

func (t *sitterTree) HasError() bool {
	return t.tree.RootNode().HasError()
}

func (t *sitterTree) Close() {
	t.tree.Close()
}

// sitterNode adapts a tree-sitter node to the Node interface.
type sitterNode struct {
	node   *sitter.Node
	source []byte
}

// wrapNode returns a nil interface for a nil underlying node so callers can
// compare against nil directly.
func wrapNode(node *sitter.Node, source []byte) Node {
	if node == nil {
		return nil
	}
	return &sitterNode{node: node, source: source}
}

func (n *sitterNode) Kind() string {
	return n.node.Kind()
}

func (n *sitterNode) ChildByField(field string) Node {
	return wrapNode(n.node.ChildByFieldName(field), n.source)
}

func (n *sitterNode) NamedChildCount() int {
	return int(n.node.NamedChildCount())
}

func (n *sitterNode) NamedChild(i int) Node {
	return wrapNode(n.node.NamedChild(uint(i)), n.source)
}

func (n *sitterNode) StartRow() int {
	return int(n.node.StartPosition().Row)
}

func (n *sitterNode) Text() string {
	return string(n.source[n.node.StartByte():n.node.EndByte()])
}

func (n *sitterNode) Walk(visit func(Node) bool) {
	walk(n.node, n.source, visit)
}

func walk(node *sitter.Node, source []byte, visit func(Node) bool) {
	if node == nil {
		return
	}
	if !visit(wrapNode(node, source)) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(uint(i)), source, visit)
	}
}
