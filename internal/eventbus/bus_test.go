package eventbus

import (
	"testing"
	"time"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	bus := New()
	ch1, unsub1 := bus.Subscribe()
	ch2, unsub2 := bus.Subscribe()
	defer unsub1()
	defer unsub2()

	bus.Publish(StatusEvent("ready"))

	for _, ch := range []<-chan ChatEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventStatus || ev.Status != "ready" {
				t.Errorf("unexpected event: %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestPublishOrderPreserved(t *testing.T) {
	bus := New()
	ch, unsub := bus.Subscribe()
	defer unsub()

	bus.Publish(StreamDelta("a"))
	bus.Publish(StreamDelta("b"))
	bus.Publish(StreamDelta("c"))

	want := []string{"a", "b", "c"}
	for _, w := range want {
		select {
		case ev := <-ch:
			if ev.Text != w {
				t.Fatalf("expected delta %q, got %q", w, ev.Text)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestPublishDoesNotBlockWithSlowConsumer(t *testing.T) {
	bus := New()
	_, unsub := bus.Subscribe() // never drains
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			bus.Publish(StreamDelta("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow consumer")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	ch, unsub := bus.Subscribe()
	unsub()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel closed after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("channel never closed after unsubscribe")
	}
}

func TestPublishAfterUnsubscribeIsNoop(t *testing.T) {
	bus := New()
	_, unsub := bus.Subscribe()
	unsub()

	// Should not panic or deadlock.
	bus.Publish(StatusEvent("ignored"))

	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", bus.SubscriberCount())
	}
}
