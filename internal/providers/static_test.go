package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticGenerator_Deterministic(t *testing.T) {
	g := &StaticGenerator{}
	ctx := context.Background()

	a, err := g.GenerateImage(ctx, "a lighthouse", "flux-dev", ImageOptions{Resolution: "1024x1024"})
	require.NoError(t, err)
	b, err := g.GenerateImage(ctx, "a lighthouse", "flux-dev", ImageOptions{Resolution: "1024x1024"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := g.GenerateImage(ctx, "a different prompt", "flux-dev", ImageOptions{Resolution: "1024x1024"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestStaticGenerator_Text(t *testing.T) {
	g := &StaticGenerator{}
	out, err := g.GenerateText(context.Background(), "a castle", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "a castle")
}

func TestStaticGenerator_LatencyHonorsContext(t *testing.T) {
	g := &StaticGenerator{Latency: 5 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.GenerateVideo(ctx, "x", "kling-v2", VideoOptions{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
