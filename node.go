package lattice

import (
	"net/http"
	"regexp"
	"sort"
)

// SegmentType describes how a Node matches a single request path segment.
// The values are ordered most to least specific; children of a finalized
// Node are visited in this order during traversal.
type SegmentType int

const (
	// SegmentStatic matches by string equality. Matched values are not
	// recorded into the segment mapping.
	SegmentStatic SegmentType = iota

	// SegmentConstrained matches when the anchored regular expression
	// accepts the whole segment.
	SegmentConstrained

	// SegmentDynamic matches any single segment.
	SegmentDynamic

	// SegmentGlob matches one or more segments, consuming greedily until a
	// more specific child can take over or the path is exhausted.
	SegmentGlob
)

// Node 路由树中的一个节点，对应可路由路径中的一段（或多段）。
//
// 当某条完整路径的遍历落在该节点上时，它持有的 0..n 个 Route
// 交由 Router 继续甄别。
type Node struct {
	segment     string
	segmentType SegmentType
	pattern     *regexp.Regexp

	routes []Route

	delegating bool
	children   []*Node
}

// Segment returns the segment this Node represents.
func (n *Node) Segment() string { return n.segment }

// Type returns the segment type of this Node.
func (n *Node) Type() SegmentType { return n.segmentType }

// IsParent reports whether at least one child Node is present.
func (n *Node) IsParent() bool { return len(n.children) > 0 }

// IsRoutable reports whether at least one Route is associated with this
// Node, i.e. it can act as the leaf of a path through the tree.
func (n *Node) IsRoutable() bool { return len(n.routes) > 0 }

// SelectRoute determines which Route associated with this Node is willing
// to handle the request.
//
// Where multiple Route instances could handle the request only the first,
// ordered per creation, is chosen. Where none will, the returned
// RouteNonMatch is the union of every route's refusal, so e.g. a 405 from
// one route merges its allow list with another's. A Node with no routes at
// all yields an internal server error.
func (n *Node) SelectRoute(s *State) (Route, *RouteNonMatch) {
	var nonMatch *RouteNonMatch
	for _, r := range n.routes {
		e := r.IsMatch(s)
		if e == nil {
			return r, nil
		}
		if nonMatch == nil {
			nonMatch = e
		} else {
			nonMatch = e.Union(nonMatch)
		}
	}
	if nonMatch != nil {
		return nil, nonMatch
	}
	return nil, NewRouteNonMatch(http.StatusInternalServerError)
}

// Traverse recursively searches for a path of nodes matching every
// remaining request path segment, with the final Node holding 1..n Route
// instances for further processing by the Router.
//
// Only the first fully matching path is found; children are searched in
// the most to least specific order established at Finalize. The returned
// count is the number of non-root segments consumed, which a delegating
// Router uses to offset the path before handing off.
func (n *Node) Traverse(segments []string) (*Node, SegmentMapping, int, bool) {
	return n.innerTraverse(segments, nil)
}

func (n *Node) innerTraverse(segments []string, consumed []string) (*Node, SegmentMapping, int, bool) {
	if len(segments) == 0 {
		return nil, nil, 0, false
	}
	x, xs := segments[0], segments[1:]

	switch {
	case n.delegating && n.isMatch(x):
		// 委托节点立即终止遍历，剩余分段留给被委托的 Router
		return n, n.ownMapping(consumed, x), 0, true

	case n.isLeaf(x, xs):
		return n, n.ownMapping(consumed, x), 0, true

	case n.isMatch(x):
		for _, c := range n.children {
			if leaf, sm, sp, ok := c.innerTraverse(xs, nil); ok {
				if n.segmentType != SegmentStatic {
					sm[n.segment] = append(consumed, x)
				}
				return leaf, sm, sp + 1, true
			}
		}
		// Glob 无子节点可走时继续吞掉当前分段
		if n.segmentType == SegmentGlob {
			if leaf, sm, sp, ok := n.innerTraverse(xs, append(consumed, x)); ok {
				return leaf, sm, sp + 1, true
			}
		}
		return nil, nil, 0, false
	}
	return nil, nil, 0, false
}

// ownMapping builds the mapping contributed by this node when it ends a
// traversal. Static segments record nothing.
func (n *Node) ownMapping(consumed []string, x string) SegmentMapping {
	sm := SegmentMapping{}
	if n.segmentType != SegmentStatic {
		sm[n.segment] = append(consumed, x)
	}
	return sm
}

func (n *Node) isMatch(segment string) bool {
	switch n.segmentType {
	case SegmentStatic:
		return n.segment == segment
	case SegmentConstrained:
		return n.pattern.MatchString(segment)
	default:
		return true
	}
}

func (n *Node) isLeaf(x string, xs []string) bool {
	return len(xs) == 0 && n.isMatch(x) && n.IsRoutable()
}

// NodeBuilder constructs a Node which is sorted and immutable.
type NodeBuilder struct {
	segment     string
	segmentType SegmentType
	pattern     *regexp.Regexp

	routes []Route

	delegating bool
	children   []*NodeBuilder
}

// NewNodeBuilder creates a NodeBuilder for the given segment. Use
// NewConstrainedNodeBuilder for regex-constrained segments.
func NewNodeBuilder(segment string, segmentType SegmentType) *NodeBuilder {
	return &NodeBuilder{segment: segment, segmentType: segmentType}
}

// NewConstrainedNodeBuilder creates a NodeBuilder whose segment matches
// when pattern, anchored to the whole segment, accepts it. Panics when the
// pattern does not compile, routing tables are assembled at startup.
func NewConstrainedNodeBuilder(segment, pattern string) *NodeBuilder {
	return &NodeBuilder{
		segment:     segment,
		segmentType: SegmentConstrained,
		pattern:     regexp.MustCompile(`\A(?:` + pattern + `)\z`),
	}
}

// Segment returns the segment name of the Node under construction.
func (b *NodeBuilder) Segment() string { return b.segment }

// AddRoute adds a Route to be evaluated by the Router when the built Node
// acts as the leaf in a single path through the tree.
func (b *NodeBuilder) AddRoute(route Route) {
	if route.Delegation() == DelegationExternal {
		if len(b.routes) != 0 {
			panic("lattice: externally delegating node must have a single route")
		}
		if len(b.children) != 0 {
			panic("lattice: externally delegating node must not have children")
		}
		b.delegating = true
	}
	b.routes = append(b.routes, route)
}

// AddChild adds a new child to this sub-tree.
func (b *NodeBuilder) AddChild(child *NodeBuilder) {
	if b.delegating {
		panic("lattice: externally delegating node must not have children")
	}
	b.children = append(b.children, child)
}

// HasChild reports whether a child representing the exact segment and type
// already exists.
func (b *NodeBuilder) HasChild(segment string, segmentType SegmentType) bool {
	return b.Child(segment, segmentType) != nil
}

// Child returns the child representing the exact segment and type, or nil.
func (b *NodeBuilder) Child(segment string, segmentType SegmentType) *NodeBuilder {
	for _, c := range b.children {
		if c.segmentType == segmentType && c.segment == segment {
			return c
		}
	}
	return nil
}

// Finalize sorts all children recursively, most to least specific, and
// produces the immutable Node.
func (b *NodeBuilder) Finalize() *Node {
	sort.SliceStable(b.children, func(i, j int) bool {
		a, z := b.children[i], b.children[j]
		if a.segmentType != z.segmentType {
			return a.segmentType < z.segmentType
		}
		return a.segment < z.segment
	})

	children := make([]*Node, 0, len(b.children))
	for _, c := range b.children {
		children = append(children, c.Finalize())
	}

	return &Node{
		segment:     b.segment,
		segmentType: b.segmentType,
		pattern:     b.pattern,
		routes:      b.routes,
		delegating:  b.delegating,
		children:    children,
	}
}
