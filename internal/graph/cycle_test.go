package graph

import (
	"fmt"
	"testing"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

func edge(id, source, target string) *schema.Edge {
	return &schema.Edge{ID: id, Source: source, Target: target}
}

func TestWouldCreateCycle_SelfLoop(t *testing.T) {
	if !WouldCreateCycle(nil, "a", "a") {
		t.Error("self loop must be detected")
	}
}

func TestWouldCreateCycle_SimpleBackEdge(t *testing.T) {
	edges := []*schema.Edge{edge("e1", "a", "b")}
	if !WouldCreateCycle(edges, "b", "a") {
		t.Error("b -> a closes a -> b -> a")
	}
}

func TestWouldCreateCycle_LongPathBack(t *testing.T) {
	edges := []*schema.Edge{
		edge("e1", "a", "b"),
		edge("e2", "b", "c"),
		edge("e3", "c", "d"),
	}
	if !WouldCreateCycle(edges, "d", "a") {
		t.Error("d -> a closes the four-node loop")
	}
}

func TestWouldCreateCycle_AcyclicAdditions(t *testing.T) {
	edges := []*schema.Edge{
		edge("e1", "a", "b"),
		edge("e2", "b", "c"),
	}

	cases := [][2]string{
		{"a", "c"}, // forward shortcut
		{"a", "d"}, // new leaf
		{"d", "a"}, // new root
		{"c", "d"}, // extend the chain
	}
	for _, tc := range cases {
		if WouldCreateCycle(edges, tc[0], tc[1]) {
			t.Errorf("%s -> %s is acyclic but was flagged", tc[0], tc[1])
		}
	}
}

func TestWouldCreateCycle_DiamondIsAcyclic(t *testing.T) {
	edges := []*schema.Edge{
		edge("e1", "a", "b"),
		edge("e2", "a", "c"),
		edge("e3", "b", "d"),
	}
	if WouldCreateCycle(edges, "c", "d") {
		t.Error("completing a diamond is not a cycle")
	}
}

func TestWouldCreateCycle_DisjointComponents(t *testing.T) {
	edges := []*schema.Edge{
		edge("e1", "a", "b"),
		edge("e2", "x", "y"),
		edge("e3", "y", "x"), // pre-existing corruption in another component
	}
	// The proposed edge does not reach the corrupt component.
	if WouldCreateCycle(edges, "b", "c") {
		t.Error("cycle in an unreachable component must not block the new edge")
	}
}

func TestWouldCreateCycle_LargeChain(t *testing.T) {
	// Linear chain of a few thousand nodes: must terminate quickly and
	// detect the closing edge.
	const n = 5000
	edges := make([]*schema.Edge, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, edge(
			fmt.Sprintf("e%d", i),
			fmt.Sprintf("n%d", i),
			fmt.Sprintf("n%d", i+1),
		))
	}

	if !WouldCreateCycle(edges, fmt.Sprintf("n%d", n), "n0") {
		t.Error("closing edge over a long chain must be detected")
	}
	if WouldCreateCycle(edges, "n0", "extra") {
		t.Error("acyclic addition over a long chain was flagged")
	}
}
