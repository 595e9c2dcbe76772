package notify

import (
	"sync"
	"testing"
)

func TestNotifier_DeliversPerChatID(t *testing.T) {
	n := New()

	var gotA, gotB []Event
	unsubA := n.Subscribe("chat-a", func(ev Event) { gotA = append(gotA, ev) })
	defer unsubA()
	unsubB := n.Subscribe("chat-b", func(ev Event) { gotB = append(gotB, ev) })
	defer unsubB()

	n.Publish(Event{ChatID: "chat-a", Kind: KindSaved})

	if len(gotA) != 1 {
		t.Fatalf("chat-a received %d events, want 1", len(gotA))
	}
	if gotA[0].At.IsZero() {
		t.Error("Publish should stamp At when unset")
	}
	if len(gotB) != 0 {
		t.Errorf("chat-b received %d events, want 0", len(gotB))
	}
}

func TestNotifier_UnsubscribeIsIdempotent(t *testing.T) {
	n := New()

	calls := 0
	unsubscribe := n.Subscribe("chat", func(Event) { calls++ })
	other := n.Subscribe("chat", func(Event) {})
	defer other()

	unsubscribe()
	unsubscribe()

	n.Publish(Event{ChatID: "chat", Kind: KindCleared})

	if calls != 0 {
		t.Errorf("handler called %d times after unsubscribe", calls)
	}
	if got := n.SubscriberCount("chat"); got != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", got)
	}
}

func TestNotifier_ConcurrentPublish(t *testing.T) {
	n := New()

	var mu sync.Mutex
	count := 0
	unsubscribe := n.Subscribe("chat", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Publish(Event{ChatID: "chat", Kind: KindSaved})
		}()
	}
	wg.Wait()

	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}

func TestKindFor(t *testing.T) {
	if KindFor("") != KindCleared {
		t.Error(`KindFor("") should be cleared`)
	}
	if KindFor("x") != KindSaved {
		t.Error(`KindFor("x") should be saved`)
	}
}
