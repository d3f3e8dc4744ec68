package streaming

import (
	"context"
	"sync"
	"sync/atomic"
)

// subscriberBuffer sizes each subscription channel. A full buffer sheds
// that subscriber's newest event rather than stalling the publisher.
const subscriberBuffer = 64

type subscription struct {
	events chan StreamEvent
	filter EventFilter
}

// MemoryHub is the in-process EventHub. Every published event is stamped
// with a hub-wide sequence number before fan-out, so a consumer that was
// shed under backpressure can detect the gap from the jump in Seq.
type MemoryHub struct {
	mu      sync.RWMutex
	subs    map[uint64]*subscription
	nextID  uint64
	seq     atomic.Uint64
	dropped atomic.Uint64
}

// NewMemoryHub creates an empty hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[uint64]*subscription)}
}

// Publish stamps the event and fans it out to matching subscribers.
// Never blocks: a subscriber whose buffer is full loses the event.
func (h *MemoryHub) Publish(ctx context.Context, event StreamEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event.Seq = h.seq.Add(1)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.filter.matches(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe registers a filtered subscription and returns its event
// channel plus a cancel function that detaches it from the hub.
func (h *MemoryHub) Subscribe(ctx context.Context, filter EventFilter) (<-chan StreamEvent, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sub := &subscription{
		events: make(chan StreamEvent, subscriberBuffer),
		filter: filter,
	}
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
	return sub.events, cancel, nil
}

// Dropped reports how many events were shed across all subscribers since
// the hub was created.
func (h *MemoryHub) Dropped() uint64 {
	return h.dropped.Load()
}
