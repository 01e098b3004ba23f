package dag

import (
	"reflect"
	"testing"

	"github.com/suwa-sh/lineage-to-graph/internal/lineage"
)

func chainEntries() []lineage.Entry {
	// raw.users.id -> staging.users.id -> mart.users.id
	//                 staging.users.id <- raw.profiles.user_id
	return []lineage.Entry{
		{From: []string{"raw.users.id", "raw.profiles.user_id"}, To: "staging.users.id"},
		{From: []string{"staging.users.id"}, To: "mart.users.id"},
	}
}

func TestFromEntries_NodesAndEdges(t *testing.T) {
	g := FromEntries(chainEntries())

	if g.NodeCount() != 4 {
		t.Errorf("nodes = %d, want 4", g.NodeCount())
	}
	if g.EdgeCount() != 3 {
		t.Errorf("edges = %d, want 3", g.EdgeCount())
	}
	if !g.Has("staging.users.id") {
		t.Error("missing node staging.users.id")
	}
}

func TestFromEntries_SkipsSelfLoopsAndDuplicates(t *testing.T) {
	g := FromEntries([]lineage.Entry{
		{From: []string{"A.f", "A.f", "B.f"}, To: "B.f"},
	})

	if g.EdgeCount() != 1 {
		t.Errorf("edges = %d, want 1 (self-loop and duplicate dropped)", g.EdgeCount())
	}
}

func TestParentsAndChildren(t *testing.T) {
	g := FromEntries(chainEntries())

	if got := g.Parents("staging.users.id"); !reflect.DeepEqual(got, []string{"raw.profiles.user_id", "raw.users.id"}) {
		t.Errorf("parents = %v", got)
	}
	if got := g.Children("staging.users.id"); !reflect.DeepEqual(got, []string{"mart.users.id"}) {
		t.Errorf("children = %v", got)
	}
	if got := g.Parents("raw.users.id"); len(got) != 0 {
		t.Errorf("root parents = %v, want none", got)
	}
}

func TestUpstreamDownstream_Unlimited(t *testing.T) {
	g := FromEntries(chainEntries())

	up := g.Upstream("mart.users.id", 0)
	want := []string{"raw.profiles.user_id", "raw.users.id", "staging.users.id"}
	if !reflect.DeepEqual(up, want) {
		t.Errorf("upstream = %v, want %v", up, want)
	}

	down := g.Downstream("raw.users.id", 0)
	if !reflect.DeepEqual(down, []string{"mart.users.id", "staging.users.id"}) {
		t.Errorf("downstream = %v", down)
	}
}

func TestUpstream_DepthLimited(t *testing.T) {
	g := FromEntries(chainEntries())

	up := g.Upstream("mart.users.id", 1)
	if !reflect.DeepEqual(up, []string{"staging.users.id"}) {
		t.Errorf("depth-1 upstream = %v", up)
	}
}

func TestRootsAndLeaves(t *testing.T) {
	g := FromEntries(chainEntries())

	if got := g.Roots(); !reflect.DeepEqual(got, []string{"raw.profiles.user_id", "raw.users.id"}) {
		t.Errorf("roots = %v", got)
	}
	if got := g.Leaves(); !reflect.DeepEqual(got, []string{"mart.users.id"}) {
		t.Errorf("leaves = %v", got)
	}
}

func TestHasCycle(t *testing.T) {
	g := FromEntries(chainEntries())
	if cyclic, path := g.HasCycle(); cyclic {
		t.Errorf("acyclic lineage reported cycle %v", path)
	}

	g = FromEntries([]lineage.Entry{
		{From: []string{"A.f"}, To: "B.f"},
		{From: []string{"B.f"}, To: "C.f"},
		{From: []string{"C.f"}, To: "A.f"},
	})
	cyclic, path := g.HasCycle()
	if !cyclic {
		t.Fatal("cycle not detected")
	}
	if len(path) < 4 || path[0] != path[len(path)-1] {
		t.Errorf("cycle path should close on itself: %v", path)
	}
}

func TestEmptyLineage(t *testing.T) {
	g := FromEntries(nil)
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("empty lineage produced %d nodes / %d edges", g.NodeCount(), g.EdgeCount())
	}
	if cyclic, _ := g.HasCycle(); cyclic {
		t.Error("empty graph reported a cycle")
	}
}
