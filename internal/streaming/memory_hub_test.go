package streaming

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

func TestPublishSubscribe(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)
	defer cancel()

	event := StreamEvent{
		ChainID:   "chain-1",
		NodeID:    "image_1",
		EventType: schema.EventNodeCompleted,
		Payload:   map[string]any{"imageUrl": "https://cdn.example/img.png"},
	}

	err = hub.Publish(ctx, event)
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, event.ChainID, got.ChainID)
		assert.Equal(t, event.NodeID, got.NodeID)
		assert.Equal(t, event.EventType, got.EventType)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestFilterByChainID(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{ChainID: "chain-1"})
	require.NoError(t, err)
	defer cancel()

	// Should be received (matching chain)
	err = hub.Publish(ctx, StreamEvent{ChainID: "chain-1", EventType: schema.EventNodeStarted})
	require.NoError(t, err)

	// Should be dropped (different chain)
	err = hub.Publish(ctx, StreamEvent{ChainID: "chain-2", EventType: schema.EventNodeStarted})
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, "chain-1", got.ChainID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	// Channel should be empty -- the chain-2 event was filtered out.
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
		// expected
	}
}

func TestFilterByEventType(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{
		EventTypes: []string{schema.EventNodeCompleted, schema.EventChainFailed},
	})
	require.NoError(t, err)
	defer cancel()

	// Should be received
	err = hub.Publish(ctx, StreamEvent{ChainID: "c", EventType: schema.EventNodeCompleted})
	require.NoError(t, err)

	// Should be dropped
	err = hub.Publish(ctx, StreamEvent{ChainID: "c", EventType: schema.EventNodeStarted})
	require.NoError(t, err)

	// Should be received
	err = hub.Publish(ctx, StreamEvent{ChainID: "c", EventType: schema.EventChainFailed})
	require.NoError(t, err)

	var received []string
	for i := 0; i < 2; i++ {
		select {
		case got := <-ch:
			received = append(received, got.EventType)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	assert.Equal(t, []string{schema.EventNodeCompleted, schema.EventChainFailed}, received)
}

func TestCancelStopsDelivery(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)

	cancel()

	err = hub.Publish(ctx, StreamEvent{ChainID: "c", EventType: schema.EventNodeStarted})
	require.NoError(t, err)

	select {
	case evt, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event after cancel: %+v", evt)
		}
	case <-time.After(50 * time.Millisecond):
		// expected: nothing delivered
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	_, cancel, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)
	defer cancel()

	// Overfill the unconsumed buffer; publishes must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			_ = hub.Publish(ctx, StreamEvent{ChainID: "c", EventType: schema.EventNodeStarted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Equal(t, uint64(subscriberBuffer), hub.Dropped())
}

func TestFilterByWorkflowID(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{WorkflowID: "wf-1"})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, hub.Publish(ctx, StreamEvent{WorkflowID: "wf-2", EventType: schema.EventWorkflowSaved}))
	require.NoError(t, hub.Publish(ctx, StreamEvent{WorkflowID: "wf-1", EventType: schema.EventWorkflowSaved}))

	select {
	case got := <-ch:
		assert.Equal(t, "wf-1", got.WorkflowID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSequenceIsMonotonic(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < 3; i++ {
		require.NoError(t, hub.Publish(ctx, StreamEvent{ChainID: "c", EventType: schema.EventNodeStarted}))
	}

	var last uint64
	for i := 0; i < 3; i++ {
		select {
		case got := <-ch:
			assert.Greater(t, got.Seq, last)
			last = got.Seq
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
}
