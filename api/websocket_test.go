package api

import (
	"bytes"
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/events"
)

// A joining client must receive its snapshot before any event broadcast
// after registration; events published in between are covered by the
// snapshot, never dropped.
func TestJoinSnapshotPrecedesFeed(t *testing.T) {
	h := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := &Client{
		hub:  h,
		send: make(chan []byte, 8),
		id:   "test-client",
		snapshot: func() ([]byte, error) {
			return []byte(`{"type":"snapshot"}`), nil
		},
	}
	h.register <- c // register is unbuffered, returns once the hub has the client

	h.Publish(events.Event{
		Seq:   1,
		Type:  events.TypeNewOrder,
		Order: &events.OrderEvent{ID: 1, Side: "bid", Price: 100, Qty: 5, User: "U1"},
	})

	first := <-c.send
	if !bytes.Contains(first, []byte("snapshot")) {
		t.Fatalf("first frame = %s, want the join snapshot", first)
	}

	second := <-c.send
	ev, err := events.Decode(second)
	if err != nil || ev.Type != events.TypeNewOrder {
		t.Fatalf("second frame = %s (%v), want the broadcast event", second, err)
	}
}
