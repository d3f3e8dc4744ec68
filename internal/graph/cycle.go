package graph

import "github.com/lumenworks/reelgraph/pkg/schema"

// DFS colors for cycle detection.
const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // fully explored
)

// WouldCreateCycle reports whether adding the edge newSource → newTarget
// to the existing edge set would introduce a directed cycle.
//
// Depth-first search from newSource over the adjacency list built from
// existingEdges plus the hypothetical edge; revisiting a node on the
// current path (a gray node) is a back edge, i.e. a cycle. Iterative with
// an explicit frame stack so deep graphs cannot exhaust the call stack.
// O(V+E) per call, no side effects.
func WouldCreateCycle(existingEdges []*schema.Edge, newSource, newTarget string) bool {
	adjacency := make(map[string][]string, len(existingEdges)+1)
	for _, e := range existingEdges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}
	adjacency[newSource] = append(adjacency[newSource], newTarget)

	type frame struct {
		id   string
		next int
	}

	color := make(map[string]int, len(adjacency))
	stack := []frame{{id: newSource}}
	color[newSource] = gray

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		neighbors := adjacency[top.id]

		if top.next < len(neighbors) {
			nb := neighbors[top.next]
			top.next++
			switch color[nb] {
			case gray:
				return true
			case white:
				color[nb] = gray
				stack = append(stack, frame{id: nb})
			}
			continue
		}

		color[top.id] = black
		stack = stack[:len(stack)-1]
	}

	return false
}
