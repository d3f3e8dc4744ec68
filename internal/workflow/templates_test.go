package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

func TestTemplateNames(t *testing.T) {
	names := TemplateNames()
	assert.Contains(t, names, "text-to-image")
	assert.Contains(t, names, "storyboard")
}

func TestLoadTemplate_NotFound(t *testing.T) {
	_, err := LoadTemplate("no-such-template")
	requireFlowError(t, err, schema.ErrCodeNotFound)
}

func TestBuiltinTemplates_AllDeserialize(t *testing.T) {
	for _, name := range TemplateNames() {
		t.Run(name, func(t *testing.T) {
			doc, err := LoadTemplate(name)
			require.NoError(t, err)

			nodes, edges, err := Deserialize(doc)
			require.NoError(t, err)
			assert.NotEmpty(t, nodes)
			assert.NotEmpty(t, edges)
		})
	}
}

func TestStoryboardTemplate_GetsGridLayout(t *testing.T) {
	doc, err := LoadTemplate("storyboard")
	require.NoError(t, err)

	nodes, _, err := Deserialize(doc)
	require.NoError(t, err)

	// The storyboard template is authored without positions.
	positions := make(map[schema.Position]struct{})
	for _, n := range nodes {
		positions[n.Position] = struct{}{}
	}
	assert.Len(t, positions, len(nodes))
}
