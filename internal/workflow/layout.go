package workflow

import "github.com/lumenworks/reelgraph/pkg/schema"

// Grid auto-layout parameters. Columns and spacing are sized so a freshly
// imported template is fully visible on a 1080p canvas at default zoom.
const (
	layoutColumns  = 4
	layoutSpacingX = 320
	layoutSpacingY = 240
	layoutOriginX  = 80
	layoutOriginY  = 80
)

// needsLayout reports whether node positions are degenerate: more than one
// node parked at the origin, or every node sharing the same coordinate.
// Single-node documents keep whatever position they carry.
func needsLayout(nodes []*schema.Node) bool {
	if len(nodes) < 2 {
		return false
	}

	atOrigin := 0
	first := nodes[0].Position
	identical := true
	for _, n := range nodes {
		if n.Position.X == 0 && n.Position.Y == 0 {
			atOrigin++
		}
		if n.Position != first {
			identical = false
		}
	}
	return atOrigin > 1 || identical
}

// applyGridLayout places nodes on a fixed-column grid in slice order.
// Deterministic: the same document always lays out the same way.
func applyGridLayout(nodes []*schema.Node) {
	for i, n := range nodes {
		col := i % layoutColumns
		row := i / layoutColumns
		n.Position = schema.Position{
			X: float64(layoutOriginX + col*layoutSpacingX),
			Y: float64(layoutOriginY + row*layoutSpacingY),
		}
	}
}
