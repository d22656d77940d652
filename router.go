package lattice

import (
	"net/http"
	"strings"
)

// Router 路由编排器。每个请求沿固定的状态机前进：取出剩余路径
// 分段、遍历路由树、甄别 Route，然后要么在本地抽取参数并派发，
// 要么把剩余分段整体委托给嵌套的 Router。
//
// 匹配阶段产生的拒绝从不进入处理链；处理链内产生的 error 只在
// 这里被翻译成响应。Router 自身实现 Handler 与 NewHandler，因此
// 可以作为被委托的端点挂载到另一棵树上。
type Router struct {
	tree      *Tree
	finalizer *ResponseFinalizer
	logger    *Logger
}

// RouterOption customizes a Router under construction.
type RouterOption func(*Router)

// WithLogger sets the logger used for per-request diagnostics.
func WithLogger(l *Logger) RouterOption {
	return func(r *Router) { r.logger = l }
}

// NewRouter creates a Router over a finalized tree and response finalizer.
func NewRouter(tree *Tree, finalizer *ResponseFinalizer, opts ...RouterOption) *Router {
	r := &Router{tree: tree, finalizer: finalizer, logger: DefaultLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewHandler implements NewHandler. The Router holds no per-request state,
// so it hands out itself.
func (r *Router) NewHandler() (Handler, error) {
	return r, nil
}

// Handle implements Handler. It never returns an error; every failure mode
// resolves to a response so nothing escapes past the routing boundary.
func (r *Router) Handle(s *State) (*Response, error) {
	segments, ok := Take[*PathSegments](s)
	if !ok {
		r.logger.Error("request path segments missing from state", "request_id", s.RequestID())
		return r.finalize(s, NewResponse(http.StatusInternalServerError)), nil
	}

	leaf, mapping, processed, found := r.tree.Traverse(segments.Segments())
	if !found {
		r.logger.Debug("no routable node for request path",
			"request_id", s.RequestID(), "path", s.URL().EscapedPath())
		return r.finalize(s, NewResponse(http.StatusNotFound)), nil
	}

	route, nonMatch := leaf.SelectRoute(s)
	if nonMatch != nil {
		res := NewResponse(nonMatch.Status())
		if res.Status == http.StatusMethodNotAllowed {
			res.Header.Set("Allow", strings.Join(nonMatch.Allow(), ", "))
		}
		return r.finalize(s, res), nil
	}

	if route.Delegation() == DelegationExternal {
		// 被委托的 Router 以偏移后的剩余分段重新开始遍历
		delegated := segments.Copy()
		delegated.IncreaseOffset(processed)
		Put(s, delegated)
		return r.dispatch(s, route)
	}

	if err := route.ExtractPath(s, mapping); err != nil {
		r.logger.Error("path extraction failed",
			"request_id", s.RequestID(), "err", err)
		return r.finalize(s, route.ExtendResponseOnPathError(s)), nil
	}
	if err := route.ExtractQuery(s); err != nil {
		r.logger.Error("query extraction failed",
			"request_id", s.RequestID(), "err", err)
		return r.finalize(s, route.ExtendResponseOnQueryError(s)), nil
	}

	return r.dispatch(s, route)
}

func (r *Router) dispatch(s *State, route Route) (*Response, error) {
	res, err := route.Dispatch(s)
	if err != nil {
		r.logger.Error("request handling failed",
			"request_id", s.RequestID(), "err", err)
		res = NewResponse(StatusCode(err))
	}
	return r.finalize(s, res), nil
}

func (r *Router) finalize(s *State, res *Response) *Response {
	if r.finalizer != nil {
		r.finalizer.Finalize(s, res)
	}
	return res
}
