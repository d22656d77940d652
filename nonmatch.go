package lattice

import (
	"net/http"
	"sort"
)

// RouteNonMatch describes a route's refusal to handle a request, as
// returned by RouteMatcher.IsMatch. Multiple refusals can be aggregated
// with Union and Intersection; the Router turns the final value into a
// response when no route on the selected Node was willing to proceed.
type RouteNonMatch struct {
	status int
	allow  methodSet
}

// NewRouteNonMatch creates a RouteNonMatch carrying the given HTTP status.
// The allow set starts out permissive so that unions with matchers that
// never restricted the method stay permissive.
func NewRouteNonMatch(status int) *RouteNonMatch {
	return &RouteNonMatch{status: status, allow: defaultMethodSet()}
}

// WithAllowList replaces the allow set. Any matcher that restricts the
// HTTP method must populate this, typically alongside a 405, so the Router
// can fill in the Allow response header accurately.
func (r *RouteNonMatch) WithAllowList(methods ...string) *RouteNonMatch {
	return &RouteNonMatch{status: r.status, allow: newMethodSet(methods)}
}

// Intersection aggregates two refusals joined by a logical AND, as when
// every sub-matcher of an AndMatcher refused.
func (r *RouteNonMatch) Intersection(other *RouteNonMatch) *RouteNonMatch {
	return &RouteNonMatch{
		status: higherPrecedenceStatus(r.status, other.status),
		allow:  r.allow.intersection(other.allow),
	}
}

// Union aggregates two refusals joined by a logical OR, as when each Route
// on a Node refused in turn.
func (r *RouteNonMatch) Union(other *RouteNonMatch) *RouteNonMatch {
	return &RouteNonMatch{
		status: higherPrecedenceStatus(r.status, other.status),
		allow:  r.allow.union(other.allow),
	}
}

// Status returns the HTTP status this refusal resolves to.
func (r *RouteNonMatch) Status() int { return r.status }

// Allow returns the allowed methods, sorted, for the Allow header.
func (r *RouteNonMatch) Allow() []string { return r.allow.list() }

func higherPrecedenceStatus(lhs, rhs int) int {
	isClientError := func(code int) bool { return code >= 400 && code < 500 }
	switch {
	// For 404, prefer routes that indicated *some* kind of match.
	case lhs == http.StatusNotFound:
		return rhs
	case rhs == http.StatusNotFound:
		return lhs
	// For 405, prefer routes that matched the HTTP method.
	case lhs == http.StatusMethodNotAllowed:
		return rhs
	case rhs == http.StatusMethodNotAllowed:
		return lhs
	// For 406, allow harder errors to overrule.
	case lhs == http.StatusNotAcceptable:
		return rhs
	case rhs == http.StatusNotAcceptable:
		return lhs
	// Safeguard against exotic matchers: prefer errors over non-errors.
	case isClientError(lhs):
		return lhs
	case isClientError(rhs):
		return rhs
	default:
		return lhs
	}
}

// methodSet 标准方法用布尔位表示，计算 Allow 列表时不产生分配，
// 扩展方法落入 other。
type methodSet struct {
	connect bool
	delete  bool
	get     bool
	head    bool
	options bool
	patch   bool
	post    bool
	put     bool
	trace   bool
	other   map[string]struct{}
}

// defaultMethodSet allows every standard method except CONNECT and TRACE.
func defaultMethodSet() methodSet {
	return methodSet{
		delete:  true,
		get:     true,
		head:    true,
		options: true,
		patch:   true,
		post:    true,
		put:     true,
	}
}

func newMethodSet(methods []string) methodSet {
	var s methodSet
	for _, m := range methods {
		switch m {
		case http.MethodConnect:
			s.connect = true
		case http.MethodDelete:
			s.delete = true
		case http.MethodGet:
			s.get = true
		case http.MethodHead:
			s.head = true
		case http.MethodOptions:
			s.options = true
		case http.MethodPatch:
			s.patch = true
		case http.MethodPost:
			s.post = true
		case http.MethodPut:
			s.put = true
		case http.MethodTrace:
			s.trace = true
		default:
			if s.other == nil {
				s.other = make(map[string]struct{})
			}
			s.other[m] = struct{}{}
		}
	}
	return s
}

func (s methodSet) intersection(o methodSet) methodSet {
	out := methodSet{
		connect: s.connect && o.connect,
		delete:  s.delete && o.delete,
		get:     s.get && o.get,
		head:    s.head && o.head,
		options: s.options && o.options,
		patch:   s.patch && o.patch,
		post:    s.post && o.post,
		put:     s.put && o.put,
		trace:   s.trace && o.trace,
	}
	for m := range s.other {
		if _, ok := o.other[m]; ok {
			if out.other == nil {
				out.other = make(map[string]struct{})
			}
			out.other[m] = struct{}{}
		}
	}
	return out
}

func (s methodSet) union(o methodSet) methodSet {
	out := methodSet{
		connect: s.connect || o.connect,
		delete:  s.delete || o.delete,
		get:     s.get || o.get,
		head:    s.head || o.head,
		options: s.options || o.options,
		patch:   s.patch || o.patch,
		post:    s.post || o.post,
		put:     s.put || o.put,
		trace:   s.trace || o.trace,
	}
	if len(s.other)+len(o.other) > 0 {
		out.other = make(map[string]struct{}, len(s.other)+len(o.other))
		for m := range s.other {
			out.other[m] = struct{}{}
		}
		for m := range o.other {
			out.other[m] = struct{}{}
		}
	}
	return out
}

func (s methodSet) list() []string {
	out := make([]string, 0, 9+len(s.other))
	if s.connect {
		out = append(out, http.MethodConnect)
	}
	if s.delete {
		out = append(out, http.MethodDelete)
	}
	if s.get {
		out = append(out, http.MethodGet)
	}
	if s.head {
		out = append(out, http.MethodHead)
	}
	if s.options {
		out = append(out, http.MethodOptions)
	}
	if s.patch {
		out = append(out, http.MethodPatch)
	}
	if s.post {
		out = append(out, http.MethodPost)
	}
	if s.put {
		out = append(out, http.MethodPut)
	}
	if s.trace {
		out = append(out, http.MethodTrace)
	}
	for m := range s.other {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
