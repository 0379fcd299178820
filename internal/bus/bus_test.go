package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	t.Parallel()

	b := New()
	ch, cancel := b.Subscribe(EventNavigated)
	defer cancel()

	b.Publish(Event{Name: EventNavigated, Payload: "seq-1"})

	select {
	case ev := <-ch:
		assert.Equal(t, EventNavigated, ev.Name)
		assert.Equal(t, "seq-1", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestPublishToOtherNameNotDelivered(t *testing.T) {
	t.Parallel()

	b := New()
	ch, cancel := b.Subscribe(EventNavigated)
	defer cancel()

	b.Publish(Event{Name: EventPartSaved, Payload: 1})

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event delivered: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelClosesChannel(t *testing.T) {
	t.Parallel()

	b := New()
	ch, cancel := b.Subscribe(EventSequenceChanged)

	cancel()
	cancel() // safe to call twice

	_, open := <-ch
	require.False(t, open)

	// Publishing after cancel must not panic or block.
	b.Publish(Event{Name: EventSequenceChanged})
}

func TestPublishNeverBlocks(t *testing.T) {
	t.Parallel()

	b := New()
	_, cancel := b.Subscribe(EventPartSaved)
	defer cancel()

	// Overflow the subscriber buffer without draining it.
	for i := 0; i < 100; i++ {
		b.Publish(Event{Name: EventPartSaved, Payload: i})
	}
}
