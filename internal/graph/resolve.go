package graph

import "log/slog"

// MaxAncestorDepth bounds the dependency walk. Cycle detection at edge
// creation time is the real correctness mechanism; this ceiling only
// guards against pathological graphs that arrived via corrupted imports.
const MaxAncestorDepth = 20

// Ancestors returns the ids of every node reachable by walking incoming
// edges backward from targetID, ordered root-first: a node always appears
// before every node that depends on it. The target itself is never
// included, and nodes are visited at most once even with duplicate or
// redundant edges.
//
// When the walk exceeds MaxAncestorDepth the branch is abandoned with a
// warning and whatever was collected so far is returned.
func (s *Store) Ancestors(targetID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visited := map[string]bool{targetID: true}
	order := make([]string, 0)
	truncated := false

	// Post-order collection: a node is appended only after all of its own
	// ancestors have been appended, which yields the root-first order
	// directly.
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if depth >= MaxAncestorDepth {
			truncated = true
			return
		}
		for _, e := range s.edges {
			if e.Target != id || visited[e.Source] {
				continue
			}
			if _, ok := s.byID[e.Source]; !ok {
				s.logger.Warn("edge references missing source node",
					slog.String("edge_id", e.ID), slog.String("source", e.Source))
				continue
			}
			visited[e.Source] = true
			walk(e.Source, depth+1)
			order = append(order, e.Source)
		}
	}
	walk(targetID, 0)

	if truncated {
		s.logger.Warn("ancestor walk exceeded depth ceiling, returning partial chain",
			slog.String("target", targetID), slog.Int("max_depth", MaxAncestorDepth))
	}
	return order
}
