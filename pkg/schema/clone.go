package schema

// Structural deep-copy helpers. History snapshots and document building
// must never alias live graph objects, so payload maps are cloned
// recursively rather than round-tripped through a codec.

// Clone returns a deep copy of the node, including its payload map.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Data = CloneMap(n.Data)
	return &c
}

// Clone returns a copy of the edge.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// CloneNodes deep-copies a node slice.
func CloneNodes(nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneEdges copies an edge slice.
func CloneEdges(edges []*Edge) []*Edge {
	out := make([]*Edge, len(edges))
	for i, e := range edges {
		out[i] = e.Clone()
	}
	return out
}

// CloneMap deep-copies a payload map. Nested maps and slices are cloned;
// scalar values are copied as-is.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
