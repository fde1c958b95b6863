package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	org := "org1"
	ch := b.Subscribe(org)

	evt := Event{Type: "dispatch.optimized", Data: map[string]any{"assignments": 3}}
	b.Publish(org, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["assignments"].(int) != 3 {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(org, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("channel should be closed after unsubscribe")
	}
}

func TestBrokerOrgIsolation(t *testing.T) {
	b := NewBroker()
	ch1 := b.Subscribe("org1")
	ch2 := b.Subscribe("org2")
	defer b.Unsubscribe("org1", ch1)
	defer b.Unsubscribe("org2", ch2)

	b.Publish("org1", Event{Type: "dispatch.optimized"})

	select {
	case <-ch1:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("org1 subscriber should receive the event")
	}
	select {
	case evt := <-ch2:
		t.Fatalf("org2 subscriber should not receive org1 events, got %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerPublishNeverBlocks(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("org1")
	defer b.Unsubscribe("org1", ch)

	// fill the buffer and keep publishing; slow subscribers drop events
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish("org1", Event{Type: "dispatch.optimized"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
