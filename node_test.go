package lattice

import (
	"net/http"
	"reflect"
	"testing"
)

func okHandler(*State) (*Response, error) {
	return NewResponse(http.StatusOK), nil
}

func newTestRoute(methods ...string) Route {
	dispatcher := NewDispatcher(SingleHandler(okHandler), nil, NewPipelineSet().Finalize())
	return NewRoute(NewMethodMatcher(methods...), dispatcher)
}

func newDelegatedTestRoute() Route {
	dispatcher := NewDispatcher(SingleHandler(okHandler), nil, NewPipelineSet().Finalize())
	return NewRoute(AnyMatcher{}, dispatcher, WithDelegation(DelegationExternal))
}

// testStructure builds a tree exercising static, constrained, dynamic and
// glob segments:
//
//	GET|HEAD /seg1
//	POST     /seg2
//	PATCH    /seg2
//	GET      /seg3/seg4
//	GET      /resource/:id where id: [0-9]+
//	GET      /seg5/:segdyn1/seg7
//	GET      /seg5/seg6
//	GET      /*seg8/seg9/*seg10
func testStructure() *NodeBuilder {
	root := NewNodeBuilder("/", SegmentStatic)

	seg1 := NewNodeBuilder("seg1", SegmentStatic)
	seg1.AddRoute(newTestRoute(http.MethodGet, http.MethodHead))
	root.AddChild(seg1)

	seg2 := NewNodeBuilder("seg2", SegmentStatic)
	seg2.AddRoute(newTestRoute(http.MethodPost))
	seg2.AddRoute(newTestRoute(http.MethodPatch))
	root.AddChild(seg2)

	seg3 := NewNodeBuilder("seg3", SegmentStatic)
	seg4 := NewNodeBuilder("seg4", SegmentStatic)
	seg4.AddRoute(newTestRoute(http.MethodGet))
	seg3.AddChild(seg4)
	root.AddChild(seg3)

	segResource := NewNodeBuilder("resource", SegmentStatic)
	segID := NewConstrainedNodeBuilder("id", "[0-9]+")
	segID.AddRoute(newTestRoute(http.MethodGet))
	segResource.AddChild(segID)
	root.AddChild(segResource)

	// seg6 is initially shadowed by the dynamic segdyn1, which matches
	// every segment it sees; traversal has to backtrack to find seg6.
	seg5 := NewNodeBuilder("seg5", SegmentStatic)
	seg6 := NewNodeBuilder("seg6", SegmentStatic)
	seg6.AddRoute(newTestRoute(http.MethodGet))
	segdyn1 := NewNodeBuilder("segdyn1", SegmentDynamic)
	seg7 := NewNodeBuilder("seg7", SegmentStatic)
	seg7.AddRoute(newTestRoute(http.MethodGet))

	seg8 := NewNodeBuilder("seg8", SegmentGlob)
	seg9 := NewNodeBuilder("seg9", SegmentStatic)
	seg10 := NewNodeBuilder("seg10", SegmentGlob)
	seg10.AddRoute(newTestRoute(http.MethodGet))

	seg9.AddChild(seg10)
	seg8.AddChild(seg9)
	root.AddChild(seg8)

	segdyn1.AddChild(seg7)
	seg5.AddChild(segdyn1)
	seg5.AddChild(seg6)
	root.AddChild(seg5)

	return root
}

func TestNodeBuilderManagesChildren(t *testing.T) {
	root := testStructure()

	if !root.HasChild("seg1", SegmentStatic) {
		t.Error("expected child seg1")
	}
	if !root.HasChild("seg2", SegmentStatic) {
		t.Error("expected child seg2")
	}
	if root.HasChild("seg1", SegmentDynamic) {
		t.Error("seg1 should not exist as a dynamic segment")
	}
	if root.HasChild("seg0", SegmentStatic) {
		t.Error("seg0 should not exist")
	}
}

func TestNodeTraversal(t *testing.T) {
	root := testStructure().Finalize()

	traverse := func(path string) (*Node, SegmentMapping, int, bool) {
		return root.Traverse(NewPathSegments(path).Segments())
	}

	// basic traversal
	leaf, _, sp, ok := traverse("/seg3/seg4")
	if !ok {
		t.Fatal("traversal should have succeeded")
	}
	if leaf.Segment() != "seg4" || sp != 2 {
		t.Errorf("got leaf %q sp %d, want seg4 2", leaf.Segment(), sp)
	}

	// no route at the tail
	if _, _, _, ok = traverse("/seg3/seg4/seg5"); ok {
		t.Error("traversal should have failed")
	}

	// static child wins over dynamic sibling
	leaf, _, sp, ok = traverse("/seg5/seg6")
	if !ok {
		t.Fatal("traversal should have succeeded")
	}
	if leaf.Segment() != "seg6" || sp != 2 {
		t.Errorf("got leaf %q sp %d, want seg6 2", leaf.Segment(), sp)
	}

	// backtracking out of the dynamic branch
	leaf, mapping, sp, ok := traverse("/seg5/someval/seg7")
	if !ok {
		t.Fatal("traversal should have succeeded")
	}
	if leaf.Segment() != "seg7" || sp != 3 {
		t.Errorf("got leaf %q sp %d, want seg7 3", leaf.Segment(), sp)
	}
	if got := mapping["segdyn1"]; !reflect.DeepEqual(got, []string{"someval"}) {
		t.Errorf("segdyn1 mapping = %v, want [someval]", got)
	}

	// nested globs spanning multiple segments
	leaf, mapping, sp, ok = traverse("/some/path/seg9/another/branch")
	if !ok {
		t.Fatal("traversal should have succeeded")
	}
	if leaf.Segment() != "seg10" || sp != 5 {
		t.Errorf("got leaf %q sp %d, want seg10 5", leaf.Segment(), sp)
	}
	if got := mapping["seg8"]; !reflect.DeepEqual(got, []string{"some", "path"}) {
		t.Errorf("seg8 mapping = %v, want [some path]", got)
	}
	if got := mapping["seg10"]; !reflect.DeepEqual(got, []string{"another", "branch"}) {
		t.Errorf("seg10 mapping = %v, want [another branch]", got)
	}

	// constrained segment accepts digits
	leaf, mapping, sp, ok = traverse("/resource/5001")
	if !ok {
		t.Fatal("traversal should have succeeded")
	}
	if leaf.Segment() != "id" || sp != 2 {
		t.Errorf("got leaf %q sp %d, want id 2", leaf.Segment(), sp)
	}
	if got := mapping["id"]; !reflect.DeepEqual(got, []string{"5001"}) {
		t.Errorf("id mapping = %v, want [5001]", got)
	}

	// the regexp is anchored to the whole segment
	if _, _, _, ok = traverse("/resource/5001x"); ok {
		t.Error("traversal should have failed for a partial regexp match")
	}
}

func TestNodeSelectRouteAllowList(t *testing.T) {
	root := testStructure().Finalize()
	s := newTestState(http.MethodOptions, "/seg2")

	leaf, _, _, ok := root.Traverse(NewPathSegments("/seg2").Segments())
	if !ok {
		t.Fatal("traversal should have succeeded")
	}
	_, nonMatch := leaf.SelectRoute(s)
	if nonMatch == nil {
		t.Fatal("expected a refusal for OPTIONS")
	}
	if nonMatch.Status() != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", nonMatch.Status())
	}
	want := []string{http.MethodPatch, http.MethodPost}
	if got := nonMatch.Allow(); !reflect.DeepEqual(got, want) {
		t.Errorf("allow = %v, want %v", got, want)
	}

	leaf, _, _, ok = root.Traverse(NewPathSegments("/resource/100").Segments())
	if !ok {
		t.Fatal("traversal should have succeeded")
	}
	_, nonMatch = leaf.SelectRoute(s)
	if nonMatch == nil {
		t.Fatal("expected a refusal for OPTIONS")
	}
	want = []string{http.MethodGet}
	if got := nonMatch.Allow(); !reflect.DeepEqual(got, want) {
		t.Errorf("allow = %v, want %v", got, want)
	}
}

func TestNodeSelectRouteWithoutRoutes(t *testing.T) {
	n := NewNodeBuilder("bare", SegmentStatic).Finalize()
	_, nonMatch := n.SelectRoute(newTestState(http.MethodGet, "/bare"))
	if nonMatch == nil || nonMatch.Status() != http.StatusInternalServerError {
		t.Errorf("expected 500 refusal, got %v", nonMatch)
	}
}

func TestDelegatingNodeBuilderPanics(t *testing.T) {
	expectPanic := func(t *testing.T, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		fn()
	}

	t.Run("delegated node rejects children", func(t *testing.T) {
		seg1 := NewNodeBuilder("seg1", SegmentStatic)
		seg1.AddRoute(newDelegatedTestRoute())
		expectPanic(t, func() { seg1.AddChild(NewNodeBuilder("seg2", SegmentStatic)) })
	})

	t.Run("node with children rejects delegated route", func(t *testing.T) {
		seg1 := NewNodeBuilder("seg1", SegmentStatic)
		seg1.AddChild(NewNodeBuilder("seg2", SegmentStatic))
		expectPanic(t, func() { seg1.AddRoute(newDelegatedTestRoute()) })
	})

	t.Run("delegated node rejects second route", func(t *testing.T) {
		seg1 := NewNodeBuilder("seg1", SegmentStatic)
		seg1.AddRoute(newDelegatedTestRoute())
		expectPanic(t, func() { seg1.AddRoute(newDelegatedTestRoute()) })
	})
}

func TestFinalizeSortsChildren(t *testing.T) {
	root := NewNodeBuilder("/", SegmentStatic)
	glob := NewNodeBuilder("g", SegmentGlob)
	glob.AddRoute(newTestRoute(http.MethodGet))
	dyn := NewNodeBuilder("d", SegmentDynamic)
	dyn.AddRoute(newTestRoute(http.MethodGet))
	static := NewNodeBuilder("s", SegmentStatic)
	static.AddRoute(newTestRoute(http.MethodGet))
	root.AddChild(glob)
	root.AddChild(dyn)
	root.AddChild(static)

	n := root.Finalize()
	var order []SegmentType
	for _, c := range n.children {
		order = append(order, c.Type())
	}
	want := []SegmentType{SegmentStatic, SegmentDynamic, SegmentGlob}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("child order = %v, want %v", order, want)
	}
}
