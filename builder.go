package lattice

import (
	"net/http"
	"strings"
)

// BuildRouter draws a routing table and produces an immutable Router.
// The chain and pipelines apply to every route drawn at the top level;
// scopes may extend or replace the chain for their own routes.
//
//	chain, pipelines := lattice.SinglePipeline(pipeline)
//	router := lattice.BuildRouter(chain, pipelines, func(b *lattice.RouterBuilder) {
//		b.Get("/widgets/:id:[0-9]+").To(showWidget)
//		b.Scope("/admin", func(b *lattice.RouterBuilder) {
//			b.Post("/widgets").To(createWidget)
//		})
//	})
func BuildRouter(chain PipelineChain, pipelines *PipelineSet, draw func(*RouterBuilder)) *Router {
	tree := NewTreeBuilder()
	b := &RouterBuilder{
		node:      tree.Root(),
		chain:     chain,
		pipelines: pipelines,
		finalizer: NewResponseFinalizerBuilder(),
		logger:    DefaultLogger(),
	}
	draw(b)
	return NewRouter(tree.Finalize(), b.finalizer.Finalize(), WithLogger(b.logger))
}

// RouterBuilder accumulates route definitions for one scope of the tree.
type RouterBuilder struct {
	node      *NodeBuilder
	chain     PipelineChain
	pipelines *PipelineSet
	finalizer *ResponseFinalizerBuilder
	logger    *Logger

	// 作用域前缀含命名分段时，内部路由即便自身全是静态分段也要
	// 抽取路径参数
	prefixParams bool
}

// SetLogger sets the logger the built Router will use.
func (b *RouterBuilder) SetLogger(l *Logger) { b.logger = l }

// Get draws a route matching GET requests to the pattern.
func (b *RouterBuilder) Get(pattern string) *RouteBuilder {
	return b.Request([]string{http.MethodGet}, pattern)
}

// Head draws a route matching HEAD requests to the pattern.
func (b *RouterBuilder) Head(pattern string) *RouteBuilder {
	return b.Request([]string{http.MethodHead}, pattern)
}

// Post draws a route matching POST requests to the pattern.
func (b *RouterBuilder) Post(pattern string) *RouteBuilder {
	return b.Request([]string{http.MethodPost}, pattern)
}

// Put draws a route matching PUT requests to the pattern.
func (b *RouterBuilder) Put(pattern string) *RouteBuilder {
	return b.Request([]string{http.MethodPut}, pattern)
}

// Patch draws a route matching PATCH requests to the pattern.
func (b *RouterBuilder) Patch(pattern string) *RouteBuilder {
	return b.Request([]string{http.MethodPatch}, pattern)
}

// Delete draws a route matching DELETE requests to the pattern.
func (b *RouterBuilder) Delete(pattern string) *RouteBuilder {
	return b.Request([]string{http.MethodDelete}, pattern)
}

// Options draws a route matching OPTIONS requests to the pattern.
func (b *RouterBuilder) Options(pattern string) *RouteBuilder {
	return b.Request([]string{http.MethodOptions}, pattern)
}

// Request draws a route matching any of the given methods to the pattern.
//
// Pattern syntax, segment by segment:
//
//	/static          literal match
//	/:name           any single segment, captured as name
//	/:name:[0-9]+    single segment accepted by the anchored regexp
//	/*name           one or more trailing segments, captured as name
//	/*               as above, captured as "*"
func (b *RouterBuilder) Request(methods []string, pattern string) *RouteBuilder {
	leaf, params := b.descend(pattern)
	return &RouteBuilder{
		builder:   b,
		node:      leaf,
		methods:   methods,
		hasParams: params,
	}
}

// Scope draws routes with a shared path prefix. The nested builder keeps
// the current pipeline chain.
func (b *RouterBuilder) Scope(prefix string, fn func(*RouterBuilder)) {
	leaf, params := b.descend(prefix)
	fn(&RouterBuilder{
		node:         leaf,
		chain:        b.chain,
		pipelines:    b.pipelines,
		finalizer:    b.finalizer,
		logger:       b.logger,
		prefixParams: params,
	})
}

// WithPipelineChain draws routes with a different pipeline chain, most
// commonly the current chain extended with one more pipeline handle.
func (b *RouterBuilder) WithPipelineChain(chain PipelineChain, fn func(*RouterBuilder)) {
	fn(&RouterBuilder{
		node:         b.node,
		chain:        chain,
		pipelines:    b.pipelines,
		finalizer:    b.finalizer,
		logger:       b.logger,
		prefixParams: b.prefixParams,
	})
}

// Delegate hands every request under prefix to another Router. The
// delegated Router sees the remaining path suffix as a fresh top-level
// path. Traversal never descends past a delegated node, so the prefix must
// not shadow other routes.
func (b *RouterBuilder) Delegate(prefix string) *DelegateBuilder {
	leaf, _ := b.descend(prefix)
	return &DelegateBuilder{builder: b, node: leaf}
}

// AddResponseExtender registers a ResponseExtender run against every
// response with the given status before the Router returns it.
func (b *RouterBuilder) AddResponseExtender(status int, e ResponseExtender) {
	b.finalizer.Add(status, e)
}

// descend walks pattern from the current scope node, creating or reusing
// one NodeBuilder per segment. It reports whether any segment captures a
// value, including segments inherited from the scope prefix.
func (b *RouterBuilder) descend(pattern string) (*NodeBuilder, bool) {
	node := b.node
	params := b.prefixParams
	for _, seg := range strings.Split(pattern, "/") {
		if seg == "" {
			continue
		}
		segment, segmentType, regex := parseSegment(seg)
		if segmentType != SegmentStatic {
			params = true
		}
		child := node.Child(segment, segmentType)
		if child == nil {
			if segmentType == SegmentConstrained {
				child = NewConstrainedNodeBuilder(segment, regex)
			} else {
				child = NewNodeBuilder(segment, segmentType)
			}
			node.AddChild(child)
		}
		node = child
	}
	return node, params
}

func parseSegment(seg string) (segment string, segmentType SegmentType, regex string) {
	switch {
	case strings.HasPrefix(seg, "*"):
		name := seg[1:]
		if name == "" {
			name = "*"
		}
		return name, SegmentGlob, ""
	case strings.HasPrefix(seg, ":"):
		rest := seg[1:]
		if name, re, ok := strings.Cut(rest, ":"); ok {
			return name, SegmentConstrained, re
		}
		return rest, SegmentDynamic, ""
	default:
		return seg, SegmentStatic, ""
	}
}

// RouteBuilder finishes a single route definition.
type RouteBuilder struct {
	builder   *RouterBuilder
	node      *NodeBuilder
	methods   []string
	accepts   []string
	hasParams bool
}

// Accepting restricts the route to requests whose Accept header admits at
// least one of the given media types. Requests that accept none of them
// draw a 406.
func (rb *RouteBuilder) Accepting(mediaTypes ...string) *RouteBuilder {
	rb.accepts = append(rb.accepts, mediaTypes...)
	return rb
}

// To finishes the route with a stateless handler function.
func (rb *RouteBuilder) To(h HandlerFunc) {
	rb.ToNew(SingleHandler(h))
}

// ToNew finishes the route with a handler factory invoked once per
// request.
func (rb *RouteBuilder) ToNew(nh NewHandler) {
	var matcher RouteMatcher = NewMethodMatcher(rb.methods...)
	if len(rb.accepts) > 0 {
		matcher = NewAndMatcher(matcher, NewAcceptMatcher(rb.accepts...))
	}

	opts := []RouteOption{
		WithQueryExtractor(QueryValuesExtractor{}),
	}
	if rb.hasParams {
		opts = append(opts, WithPathExtractor(PathParamsExtractor{}))
	}

	dispatcher := NewDispatcher(nh, rb.builder.chain, rb.builder.pipelines)
	rb.node.AddRoute(NewRoute(matcher, dispatcher, opts...))
}

// DelegateBuilder finishes a delegated mount point.
type DelegateBuilder struct {
	builder *RouterBuilder
	node    *NodeBuilder
}

// ToRouter finishes the delegation. The nested Router runs inside the
// current pipeline chain.
func (db *DelegateBuilder) ToRouter(router *Router) {
	dispatcher := NewDispatcher(router, db.builder.chain, db.builder.pipelines)
	db.node.AddRoute(NewRoute(AnyMatcher{}, dispatcher, WithDelegation(DelegationExternal)))
}
