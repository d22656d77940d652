package lattice

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Delegation indicates whether a Route fully handles the request itself or
// hands the remaining path segments to another Router.
type Delegation int

const (
	// DelegationInternal routes are handled by this Router's own pipeline
	// chain and handler.
	DelegationInternal Delegation = iota

	// DelegationExternal routes stop tree traversal and re-dispatch the
	// remaining path through a nested Router.
	DelegationExternal
)

// PathExtractor moves values captured from the request path into State
// before the request is dispatched.
type PathExtractor interface {
	ExtractPath(s *State, mapping SegmentMapping) error
}

// QueryExtractor moves values from the query string into State before the
// request is dispatched.
type QueryExtractor interface {
	ExtractQuery(s *State) error
}

// Route binds together everything needed to decide on and serve a single
// matched endpoint: a matcher, a dispatcher, a delegation mode, the
// extractor hooks and the responses produced when extraction fails.
// A Route is immutable once constructed.
type Route interface {
	// IsMatch reports whether the route is willing to handle the request.
	IsMatch(s *State) *RouteNonMatch

	// Delegation indicates how the request proceeds once matched.
	Delegation() Delegation

	// Dispatch runs the request through the route's pipelines and handler.
	Dispatch(s *State) (*Response, error)

	// ExtractPath records path segment captures into State.
	ExtractPath(s *State, mapping SegmentMapping) error

	// ExtractQuery records query string values into State.
	ExtractQuery(s *State) error

	// ExtendResponseOnPathError produces the response returned when
	// ExtractPath fails.
	ExtendResponseOnPathError(s *State) *Response

	// ExtendResponseOnQueryError produces the response returned when
	// ExtractQuery fails.
	ExtendResponseOnQueryError(s *State) *Response
}

type routeImpl struct {
	matcher    RouteMatcher
	dispatcher Dispatcher
	delegation Delegation

	pathExtractor  PathExtractor
	queryExtractor QueryExtractor

	pathErrorExtender  ResponseExtender
	queryErrorExtender ResponseExtender
}

// RouteOption customizes a Route under construction.
type RouteOption func(*routeImpl)

// WithDelegation sets the route's delegation mode.
func WithDelegation(d Delegation) RouteOption {
	return func(r *routeImpl) { r.delegation = d }
}

// WithPathExtractor sets the extractor applied to path segment captures.
func WithPathExtractor(pe PathExtractor) RouteOption {
	return func(r *routeImpl) { r.pathExtractor = pe }
}

// WithQueryExtractor sets the extractor applied to the query string.
func WithQueryExtractor(qe QueryExtractor) RouteOption {
	return func(r *routeImpl) { r.queryExtractor = qe }
}

// WithPathErrorExtender overrides the response produced when path
// extraction fails. The default is an empty 400.
func WithPathErrorExtender(e ResponseExtender) RouteOption {
	return func(r *routeImpl) { r.pathErrorExtender = e }
}

// WithQueryErrorExtender overrides the response produced when query
// extraction fails. The default is an empty 400.
func WithQueryErrorExtender(e ResponseExtender) RouteOption {
	return func(r *routeImpl) { r.queryErrorExtender = e }
}

// NewRoute creates an internal, no-extraction Route over the given matcher
// and dispatcher; options adjust delegation, extractors and error
// responses.
func NewRoute(matcher RouteMatcher, dispatcher Dispatcher, opts ...RouteOption) Route {
	r := &routeImpl{
		matcher:        matcher,
		dispatcher:     dispatcher,
		delegation:     DelegationInternal,
		pathExtractor:  NoopPathExtractor{},
		queryExtractor: NoopQueryExtractor{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *routeImpl) IsMatch(s *State) *RouteNonMatch { return r.matcher.IsMatch(s) }

func (r *routeImpl) Delegation() Delegation { return r.delegation }

func (r *routeImpl) Dispatch(s *State) (*Response, error) { return r.dispatcher.Dispatch(s) }

func (r *routeImpl) ExtractPath(s *State, mapping SegmentMapping) error {
	return r.pathExtractor.ExtractPath(s, mapping)
}

func (r *routeImpl) ExtractQuery(s *State) error {
	return r.queryExtractor.ExtractQuery(s)
}

func (r *routeImpl) ExtendResponseOnPathError(s *State) *Response {
	return extendError(r.pathErrorExtender, s)
}

func (r *routeImpl) ExtendResponseOnQueryError(s *State) *Response {
	return extendError(r.queryErrorExtender, s)
}

func extendError(e ResponseExtender, s *State) *Response {
	res := NewResponse(http.StatusBadRequest)
	if e != nil {
		e.ExtendResponse(s, res)
	}
	return res
}

// NoopPathExtractor discards path segment captures.
type NoopPathExtractor struct{}

// ExtractPath implements PathExtractor.
func (NoopPathExtractor) ExtractPath(*State, SegmentMapping) error { return nil }

// NoopQueryExtractor ignores the query string.
type NoopQueryExtractor struct{}

// ExtractQuery implements QueryExtractor.
func (NoopQueryExtractor) ExtractQuery(*State) error { return nil }

// PathParam 路径参数的名值对
type PathParam struct {
	Name  string
	Value string
}

// PathParams 一次匹配捕获的全部路径参数，按名称排序。
// 通配段捕获的多个分段以 "/" 连接为一个值。
type PathParams []PathParam

// Get returns the value of the named parameter, or "".
func (p PathParams) Get(name string) string {
	v, _ := p.Lookup(name)
	return v
}

// Lookup returns the value of the named parameter and whether it exists.
func (p PathParams) Lookup(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// PathParamsExtractor records the segment mapping into State as
// PathParams, retrievable with Get[PathParams].
type PathParamsExtractor struct{}

// ExtractPath implements PathExtractor.
func (PathParamsExtractor) ExtractPath(s *State, mapping SegmentMapping) error {
	params := make(PathParams, 0, len(mapping))
	for name, values := range mapping {
		params = append(params, PathParam{Name: name, Value: strings.Join(values, "/")})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	Put(s, params)
	return nil
}

// QueryValuesExtractor parses the raw query string and records the
// resulting url.Values into State. A malformed query string is an
// extraction failure.
type QueryValuesExtractor struct{}

// ExtractQuery implements QueryExtractor.
func (QueryValuesExtractor) ExtractQuery(s *State) error {
	values, err := url.ParseQuery(s.URL().RawQuery)
	if err != nil {
		return err
	}
	Put(s, values)
	return nil
}
