package lattice

// Tree 一棵已定型的路由树。根节点固定表示字面量 "/" 分段，
// 遍历总是从它开始。
type Tree struct {
	root *Node
}

// Traverse attempts to locate a routable leaf for the provided request
// path segments, which must start with the "/" root segment as produced by
// PathSegments.Segments. It returns the leaf Node, the values captured by
// named segments, and the count of non-root segments consumed.
func (t *Tree) Traverse(segments []string) (*Node, SegmentMapping, int, bool) {
	return t.root.Traverse(segments)
}

// TreeBuilder assembles a Tree. Nodes are added through the root
// NodeBuilder; Finalize sorts every level and freezes the result.
type TreeBuilder struct {
	root *NodeBuilder
}

// NewTreeBuilder creates a TreeBuilder with an empty root node.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{root: NewNodeBuilder("/", SegmentStatic)}
}

// AddRoute adds a Route served directly at the root path.
func (b *TreeBuilder) AddRoute(route Route) {
	b.root.AddRoute(route)
}

// Root returns the root NodeBuilder for attaching children.
func (b *TreeBuilder) Root() *NodeBuilder {
	return b.root
}

// Finalize sorts the tree and produces the immutable Tree.
func (b *TreeBuilder) Finalize() *Tree {
	return &Tree{root: b.root.Finalize()}
}
