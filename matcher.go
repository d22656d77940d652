package lattice

import (
	"mime"
	"net/http"
	"strings"
)

// RouteMatcher determines whether a Route is willing to handle a request.
// A nil return means the route matches; otherwise the RouteNonMatch
// explains the refusal so the Router can aggregate it across routes.
type RouteMatcher interface {
	IsMatch(s *State) *RouteNonMatch
}

// MethodMatcher matches requests made with one of the listed HTTP methods.
type MethodMatcher struct {
	methods []string
}

// NewMethodMatcher creates a MethodMatcher for the given methods.
func NewMethodMatcher(methods ...string) *MethodMatcher {
	return &MethodMatcher{methods: methods}
}

// IsMatch implements RouteMatcher. A refusal carries a 405 status and the
// allow list needed to populate the Allow response header.
func (m *MethodMatcher) IsMatch(s *State) *RouteNonMatch {
	for _, method := range m.methods {
		if method == s.Method() {
			return nil
		}
	}
	return NewRouteNonMatch(http.StatusMethodNotAllowed).WithAllowList(m.methods...)
}

// AcceptMatcher matches requests whose Accept header includes at least one
// of the supported media types. A missing Accept header matches, as does
// `*/*` or a `type/*` range covering a supported type. Quality weights are
// parsed but play no role in matching; the matcher can only report whether
// an acceptable representation exists.
type AcceptMatcher struct {
	supported []mediaType
}

type mediaType struct {
	kind    string
	subtype string
}

// NewAcceptMatcher creates an AcceptMatcher for the given `type/subtype`
// media types. Panics on a malformed media type, matchers are assembled at
// startup.
func NewAcceptMatcher(mediaTypes ...string) *AcceptMatcher {
	m := &AcceptMatcher{}
	for _, mt := range mediaTypes {
		essence, _, err := mime.ParseMediaType(mt)
		if err != nil {
			panic("lattice: invalid media type " + mt)
		}
		kind, subtype, ok := strings.Cut(essence, "/")
		if !ok {
			panic("lattice: invalid media type " + mt)
		}
		m.supported = append(m.supported, mediaType{kind: kind, subtype: subtype})
	}
	return m
}

// IsMatch implements RouteMatcher. A refusal carries a 406 status.
func (m *AcceptMatcher) IsMatch(s *State) *RouteNonMatch {
	header := s.Header().Get("Accept")
	if header == "" {
		// 未携带 Accept 报头视为接受任意类型
		return nil
	}

	notAcceptable := NewRouteNonMatch(http.StatusNotAcceptable)

	for _, entry := range strings.Split(header, ",") {
		essence, _, err := mime.ParseMediaType(strings.TrimSpace(entry))
		if err != nil {
			return notAcceptable
		}
		kind, subtype, ok := strings.Cut(essence, "/")
		if !ok {
			return notAcceptable
		}
		for _, st := range m.supported {
			if accepts(kind, subtype, st) {
				return nil
			}
		}
	}
	return notAcceptable
}

func accepts(kind, subtype string, supported mediaType) bool {
	switch {
	case kind == "*" && subtype == "*":
		return true
	case subtype == "*":
		return kind == supported.kind
	case supported.subtype == "*":
		return kind == supported.kind
	default:
		return kind == supported.kind && subtype == supported.subtype
	}
}

// AndMatcher matches when every wrapped matcher matches. When several
// refuse, their refusals aggregate by intersection, so an allow list only
// retains methods every matcher would accept.
type AndMatcher struct {
	matchers []RouteMatcher
}

// NewAndMatcher creates an AndMatcher over the given matchers.
func NewAndMatcher(matchers ...RouteMatcher) *AndMatcher {
	return &AndMatcher{matchers: matchers}
}

// IsMatch implements RouteMatcher.
func (m *AndMatcher) IsMatch(s *State) *RouteNonMatch {
	var nonMatch *RouteNonMatch
	for _, matcher := range m.matchers {
		if e := matcher.IsMatch(s); e != nil {
			if nonMatch == nil {
				nonMatch = e
			} else {
				nonMatch = nonMatch.Intersection(e)
			}
		}
	}
	return nonMatch
}

// AnyMatcher matches every request.
type AnyMatcher struct{}

// IsMatch implements RouteMatcher.
func (AnyMatcher) IsMatch(*State) *RouteNonMatch { return nil }
