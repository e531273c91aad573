package audit

import (
	"context"
	"testing"
	"time"
)

func TestCloseDrainsBufferedEvents(t *testing.T) {
	sink := NewChannelSink(16)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "session_created"})
	}
	d.Close()

	for i := 0; i < 5; i++ {
		select {
		case <-sink.Events():
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d never delivered before close completed", i)
		}
	}
	if got := d.Dropped(); got != 0 {
		t.Fatalf("drained close must not count drops, got %d", got)
	}
}

func TestEmitAfterCloseCountsDropped(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4, DropIfFull: true}, sink)
	d.Close()

	d.Emit(context.Background(), Event{EventType: "session_destroyed"})
	d.Emit(context.Background(), Event{EventType: "session_destroyed"})

	if got := d.Dropped(); got != 2 {
		t.Fatalf("post-close emits must count as drops, got %d", got)
	}
	select {
	case event := <-sink.Events():
		t.Fatalf("no delivery expected after close, got %+v", event)
	default:
	}
}

// gatedSink blocks deliveries until released, so tests can hold the
// dispatcher goroutine mid-delivery and fill the buffer deterministically.
type gatedSink struct {
	release chan struct{}
	seen    chan Event
}

func (s *gatedSink) Emit(_ context.Context, event Event) {
	<-s.release
	s.seen <- event
}

func TestDropIfFullNeverBlocksAndCountsDrops(t *testing.T) {
	sink := &gatedSink{release: make(chan struct{}), seen: make(chan Event, 8)}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 4; i++ {
			d.Emit(context.Background(), Event{EventType: "token_invalid"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drop-if-full emit must never block")
	}
	if d.Dropped() == 0 {
		t.Fatal("overflow past a full buffer must be counted")
	}

	close(sink.release)
	d.Close()
}

func TestNilDispatcherIsInert(t *testing.T) {
	var d *Dispatcher

	d.Emit(context.Background(), Event{EventType: "session_created"})
	d.Close()
	if got := d.Dropped(); got != 0 {
		t.Fatalf("nil dispatcher must report zero drops, got %d", got)
	}
}
