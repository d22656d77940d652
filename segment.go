package lattice

import (
	"net/url"
	"strings"
)

// PathSegments holds the `/`-delimited, percent-decoded components of a
// request path, plus an offset tracking how many segments a parent Router
// has already consumed before delegating to a nested Router.
//
// A path of `/some/path/to//my/handler` splits into:
//
//	["/", "some", "path", "to", "my", "handler"]
//
// Empty segments are skipped and a leading "/" segment is added to
// represent the root (and the beginning of traversal).
type PathSegments struct {
	offset   int
	segments []string
}

// NewPathSegments splits and percent-decodes a request path.
// 分段解码失败时保留原始文本，与上层的宽松处理保持一致。
func NewPathSegments(path string) *PathSegments {
	segments := []string{"/"}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if decoded, err := url.PathUnescape(seg); err == nil {
			seg = decoded
		}
		segments = append(segments, seg)
	}
	return &PathSegments{segments: segments}
}

// Segments provides the segments that still need to be processed. The
// result always includes the "/" root segment followed by every segment
// beyond the current offset, so a nested Router sees the remaining suffix
// as if it were a fresh top-level path.
func (p *PathSegments) Segments() []string {
	out := make([]string, 0, len(p.segments)-p.offset)
	out = append(out, "/")
	out = append(out, p.segments[1+p.offset:]...)
	return out
}

// IncreaseOffset advances the offset by the number of segments consumed by
// the delegating Router.
func (p *PathSegments) IncreaseOffset(n int) {
	p.offset += n
}

// Copy returns an independent PathSegments sharing the decoded segments.
func (p *PathSegments) Copy() *PathSegments {
	return &PathSegments{offset: p.offset, segments: p.segments}
}

// SegmentMapping accumulates the raw decoded values matched by named
// segments during tree traversal. Dynamic and Constrained segments
// contribute exactly one value per match; Glob segments may contribute
// many, in path order.
type SegmentMapping map[string][]string

// Get returns the values recorded for the given segment name.
func (m SegmentMapping) Get(name string) ([]string, bool) {
	v, ok := m[name]
	return v, ok
}
