package relay

import (
	"testing"
	"time"
)

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	h := New()
	h.Policy = PolicyDrop
	cl := &Client{Out: make(chan []byte, 1), Closed: make(chan struct{})}
	h.Add(cl)
	h.Broadcast([]byte{1})
	h.Broadcast([]byte{2}) // queue already full of frame 1, dropped under PolicyDrop
	select {
	case got := <-cl.Out:
		if got[0] != 1 {
			t.Fatalf("expected the first frame to survive, got %v", got)
		}
	default:
		t.Fatalf("expected one queued frame")
	}
	select {
	case <-cl.Out:
		t.Fatalf("expected no second frame under PolicyDrop")
	default:
	}
}

func TestHubBroadcastKicksWhenFull(t *testing.T) {
	h := New()
	h.Policy = PolicyKick
	cl := &Client{Out: make(chan []byte, 1), Closed: make(chan struct{})}
	h.Add(cl)
	h.Broadcast([]byte{1})
	h.Broadcast([]byte{2})
	select {
	case <-cl.Closed:
	case <-time.After(time.Second):
		t.Fatalf("expected client to be kicked (Closed closed)")
	}
}

func TestHubAddRemoveCount(t *testing.T) {
	h := New()
	cl := &Client{Out: make(chan []byte, 1), Closed: make(chan struct{})}
	h.Add(cl)
	if h.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", h.Count())
	}
	h.Remove(cl)
	if h.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", h.Count())
	}
	// Remove is idempotent.
	h.Remove(cl)
}

func TestClientCloseIdempotent(t *testing.T) {
	cl := &Client{Out: make(chan []byte, 1), Closed: make(chan struct{})}
	cl.Close()
	cl.Close() // must not panic on double close
	select {
	case <-cl.Closed:
	default:
		t.Fatalf("expected Closed channel to be closed")
	}
}
