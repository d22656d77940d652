package lattice

import (
	"net/http"
	"reflect"
	"testing"
)

var allDefaultMethods = []string{
	http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions,
	http.MethodPatch, http.MethodPost, http.MethodPut,
}

func TestRouteNonMatchIntersection(t *testing.T) {
	r := NewRouteNonMatch(http.StatusNotFound).
		Intersection(NewRouteNonMatch(http.StatusNotFound))
	if r.Status() != http.StatusNotFound {
		t.Errorf("status = %d, want 404", r.Status())
	}
	if got := r.Allow(); !reflect.DeepEqual(got, allDefaultMethods) {
		t.Errorf("allow = %v, want default set", got)
	}

	r = NewRouteNonMatch(http.StatusNotFound).
		Intersection(NewRouteNonMatch(http.StatusMethodNotAllowed).WithAllowList(http.MethodGet))
	if r.Status() != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", r.Status())
	}
	if got := r.Allow(); !reflect.DeepEqual(got, []string{http.MethodGet}) {
		t.Errorf("allow = %v, want [GET]", got)
	}

	r = NewRouteNonMatch(http.StatusNotAcceptable).
		WithAllowList(http.MethodGet, http.MethodPatch, http.MethodPost).
		Intersection(NewRouteNonMatch(http.StatusMethodNotAllowed).
			WithAllowList(http.MethodGet, http.MethodPost, http.MethodOptions))
	if r.Status() != http.StatusNotAcceptable {
		t.Errorf("status = %d, want 406", r.Status())
	}
	if got := r.Allow(); !reflect.DeepEqual(got, []string{http.MethodGet, http.MethodPost}) {
		t.Errorf("allow = %v, want [GET POST]", got)
	}
}

func TestRouteNonMatchUnion(t *testing.T) {
	r := NewRouteNonMatch(http.StatusNotFound).
		Union(NewRouteNonMatch(http.StatusNotFound))
	if r.Status() != http.StatusNotFound {
		t.Errorf("status = %d, want 404", r.Status())
	}

	r = NewRouteNonMatch(http.StatusNotFound).
		Union(NewRouteNonMatch(http.StatusMethodNotAllowed).WithAllowList(http.MethodGet))
	if r.Status() != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", r.Status())
	}
	if got := r.Allow(); !reflect.DeepEqual(got, allDefaultMethods) {
		t.Errorf("allow = %v, want default set", got)
	}

	r = NewRouteNonMatch(http.StatusNotAcceptable).
		WithAllowList(http.MethodGet, http.MethodPatch, http.MethodPost).
		Union(NewRouteNonMatch(http.StatusMethodNotAllowed).
			WithAllowList(http.MethodGet, http.MethodPost, http.MethodOptions))
	if r.Status() != http.StatusNotAcceptable {
		t.Errorf("status = %d, want 406", r.Status())
	}
	want := []string{http.MethodGet, http.MethodOptions, http.MethodPatch, http.MethodPost}
	if got := r.Allow(); !reflect.DeepEqual(got, want) {
		t.Errorf("allow = %v, want %v", got, want)
	}
}

func TestHigherPrecedenceStatus(t *testing.T) {
	tests := []struct {
		lhs, rhs, want int
	}{
		// 404 loses to anything
		{http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusMethodNotAllowed},
		{http.StatusMethodNotAllowed, http.StatusNotFound, http.StatusMethodNotAllowed},
		// 405 loses to 406: prefer routes that matched the method
		{http.StatusMethodNotAllowed, http.StatusNotAcceptable, http.StatusNotAcceptable},
		{http.StatusNotAcceptable, http.StatusMethodNotAllowed, http.StatusMethodNotAllowed},
		// 406 loses to harder errors
		{http.StatusNotAcceptable, http.StatusUnsupportedMediaType, http.StatusUnsupportedMediaType},
		// client errors preferred over non-errors
		{http.StatusConflict, http.StatusOK, http.StatusConflict},
		{http.StatusOK, http.StatusConflict, http.StatusConflict},
		// ties keep the left side
		{http.StatusConflict, http.StatusGone, http.StatusConflict},
	}
	for _, tt := range tests {
		if got := higherPrecedenceStatus(tt.lhs, tt.rhs); got != tt.want {
			t.Errorf("higherPrecedenceStatus(%d, %d) = %d, want %d", tt.lhs, tt.rhs, got, tt.want)
		}
	}
}

func TestAllowListWithExtensionMethods(t *testing.T) {
	r := NewRouteNonMatch(http.StatusMethodNotAllowed).
		WithAllowList(http.MethodGet, "PROPFIND", http.MethodDelete, "PROPSET")
	want := []string{http.MethodDelete, http.MethodGet, "PROPFIND", "PROPSET"}
	if got := r.Allow(); !reflect.DeepEqual(got, want) {
		t.Errorf("allow = %v, want %v", got, want)
	}
}
