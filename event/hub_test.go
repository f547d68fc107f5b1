package event

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/multierr"
)

func TestPublishOrder(t *testing.T) {
	h := NewHub()

	var got []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		h.Subscribe(TypeSignalReady, name, func(Event) error {
			got = append(got, name)
			return nil
		})
	}

	if err := h.Publish(SignalReady{SignalID: "s1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if strings.Join(got, "") != "abc" {
		t.Fatalf("delivery order = %v, want [a b c]", got)
	}
}

func TestPublishTypeRouting(t *testing.T) {
	h := NewHub()

	frames := 0
	signals := 0
	h.Subscribe(TypeFrameReady, "frames", func(Event) error { frames++; return nil })
	h.Subscribe(TypeSignalReady, "signals", func(Event) error { signals++; return nil })

	_ = h.Publish(FrameReady{Seq: 1})
	_ = h.Publish(FrameReady{Seq: 2})
	_ = h.Publish(SignalReady{})

	if frames != 2 || signals != 1 {
		t.Fatalf("frames = %d signals = %d, want 2 and 1", frames, signals)
	}
}

func TestNoRetroactiveDelivery(t *testing.T) {
	h := NewHub()

	_ = h.Publish(SignalReady{SignalID: "before"})

	seen := 0
	h.Subscribe(TypeSignalReady, "late", func(Event) error { seen++; return nil })

	if seen != 0 {
		t.Fatalf("late subscriber saw %d events published before registration", seen)
	}

	_ = h.Publish(SignalReady{SignalID: "after"})
	if seen != 1 {
		t.Fatalf("seen = %d, want 1", seen)
	}
}

func TestFailingSubscriberDoesNotBlockOthers(t *testing.T) {
	h := NewHub()

	delivered := []string{}
	h.Subscribe(TypeSignalReady, "first", func(Event) error {
		delivered = append(delivered, "first")
		return errors.New("sink full")
	})
	h.Subscribe(TypeSignalReady, "second", func(Event) error {
		delivered = append(delivered, "second")
		panic("bad subscriber")
	})
	h.Subscribe(TypeSignalReady, "third", func(Event) error {
		delivered = append(delivered, "third")
		return nil
	})

	err := h.Publish(SignalReady{})
	if len(delivered) != 3 {
		t.Fatalf("delivered to %d subscribers, want 3", len(delivered))
	}
	if err == nil {
		t.Fatalf("Publish returned nil, want aggregated failures")
	}

	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("aggregated %d failures, want 2: %v", n, err)
	}
	msg := err.Error()
	if !strings.Contains(msg, `"first"`) || !strings.Contains(msg, `"second"`) {
		t.Fatalf("error does not name failing subscribers: %v", msg)
	}
	if strings.Contains(msg, `"third"`) {
		t.Fatalf("error names healthy subscriber: %v", msg)
	}
}

func TestUnsubscribe(t *testing.T) {
	h := NewHub()

	calls := 0
	sub := h.Subscribe(TypeFrameReady, "once", func(Event) error { calls++; return nil })

	_ = h.Publish(FrameReady{Seq: 1})
	sub.Unsubscribe()
	sub.Unsubscribe()
	_ = h.Publish(FrameReady{Seq: 2})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if n := h.SubscriberCount(TypeFrameReady); n != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", n)
	}
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	h := NewHub()

	var sub *Subscription
	calls := 0
	sub = h.Subscribe(TypeSignalReady, "self-removing", func(Event) error {
		calls++
		sub.Unsubscribe()
		return nil
	})

	_ = h.Publish(SignalReady{})
	_ = h.Publish(SignalReady{})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestConcurrentPublishers(t *testing.T) {
	h := NewHub()

	var mu sync.Mutex
	total := 0
	h.Subscribe(TypeFrameReady, "counter", func(Event) error {
		mu.Lock()
		total++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = h.Publish(FrameReady{Seq: uint64(j)})
			}
		}()
	}
	wg.Wait()

	if total != 800 {
		t.Fatalf("total deliveries = %d, want 800", total)
	}
}

func TestPublishNil(t *testing.T) {
	h := NewHub()
	if err := h.Publish(nil); err != nil {
		t.Fatalf("Publish(nil) = %v, want nil", err)
	}
}
