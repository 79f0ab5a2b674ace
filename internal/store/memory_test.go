package store

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func snapshot(seq uint64, results map[string]string) Snapshot {
	return Snapshot{
		Seq:         seq,
		SweepID:     fmt.Sprintf("sweep-%d", seq),
		Results:     results,
		StartedAt:   time.Now(),
		CompletedAt: time.Now(),
	}
}

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	cur := store.Current()
	if !cur.IsZero() {
		t.Errorf("Current().Seq = %d, want 0", cur.Seq)
	}
	if cur.Results == nil || len(cur.Results) != 0 {
		t.Errorf("Current().Results = %v, want empty non-nil map", cur.Results)
	}
	if _, ok := store.Get("https://example.com"); ok {
		t.Error("Get() ok = true before any publish")
	}
}

func TestMemoryStore_BeginIsMonotonic(t *testing.T) {
	store := NewMemoryStore()
	for want := uint64(1); want <= 5; want++ {
		if got := store.Begin(); got != want {
			t.Fatalf("Begin() = %d, want %d", got, want)
		}
	}
}

func TestMemoryStore_Publish(t *testing.T) {
	store := NewMemoryStore()

	seq := store.Begin()
	ok := store.Publish(snapshot(seq, map[string]string{
		"https://www.bbc.co.uk": "200",
		"http://localhost:8080": "UNREACHABLE",
	}))
	if !ok {
		t.Fatal("Publish() = false, want true")
	}

	cur := store.Current()
	if cur.Seq != seq {
		t.Errorf("Current().Seq = %d, want %d", cur.Seq, seq)
	}
	if len(cur.Results) != 2 {
		t.Errorf("Current().Results has %d entries, want 2", len(cur.Results))
	}
	if label, ok := store.Get("https://www.bbc.co.uk"); !ok || label != "200" {
		t.Errorf("Get(bbc) = (%q, %v), want (200, true)", label, ok)
	}
}

func TestMemoryStore_PublishReplacesWholesale(t *testing.T) {
	store := NewMemoryStore()

	store.Publish(snapshot(store.Begin(), map[string]string{"a": "200", "b": "404"}))
	store.Publish(snapshot(store.Begin(), map[string]string{"b": "500", "c": "200"}))

	cur := store.Current()
	if _, ok := cur.Results["a"]; ok {
		t.Error("entry from the previous sweep survived a publish")
	}
	if cur.Results["b"] != "500" || cur.Results["c"] != "200" || len(cur.Results) != 2 {
		t.Errorf("Current().Results = %v, want map[b:500 c:200]", cur.Results)
	}
}

func TestMemoryStore_StaleSweepIsDiscarded(t *testing.T) {
	store := NewMemoryStore()

	older := store.Begin()
	newer := store.Begin()

	// newer sweep finishes first
	if !store.Publish(snapshot(newer, map[string]string{"a": "200"})) {
		t.Fatal("Publish(newer) = false, want true")
	}
	// older sweep finishing late must not overwrite
	if store.Publish(snapshot(older, map[string]string{"a": "UNREACHABLE"})) {
		t.Error("Publish(older) = true, want false")
	}

	if label, _ := store.Get("a"); label != "200" {
		t.Errorf("Get(a) = %q, want %q from the newer sweep", label, "200")
	}
}

func TestMemoryStore_SupersededBeforePublish(t *testing.T) {
	store := NewMemoryStore()

	first := store.Begin()
	store.Begin() // a second sweep starts before the first finishes

	if store.Publish(snapshot(first, map[string]string{"a": "200"})) {
		t.Error("Publish() = true for a sweep that is no longer the latest started")
	}
	if !store.Current().IsZero() {
		t.Error("store changed after a rejected publish")
	}
}

func TestMemoryStore_RejectsUnsequenced(t *testing.T) {
	store := NewMemoryStore()
	if store.Publish(snapshot(0, map[string]string{"a": "200"})) {
		t.Error("Publish() = true for Seq 0")
	}
}

func TestMemoryStore_RejectsDoublePublish(t *testing.T) {
	store := NewMemoryStore()
	seq := store.Begin()

	if !store.Publish(snapshot(seq, map[string]string{"a": "200"})) {
		t.Fatal("first Publish() = false")
	}
	if store.Publish(snapshot(seq, map[string]string{"a": "404"})) {
		t.Error("second Publish() with the same Seq = true, want false")
	}
}

func TestMemoryStore_CopiesIsolateCallers(t *testing.T) {
	store := NewMemoryStore()

	results := map[string]string{"a": "200"}
	store.Publish(snapshot(store.Begin(), results))

	// caller mutates the map it published
	results["a"] = "mutated"
	if label, _ := store.Get("a"); label != "200" {
		t.Errorf("Get(a) = %q after caller mutation, want 200", label)
	}

	// reader mutates the map it was handed
	cur := store.Current()
	cur.Results["a"] = "mutated"
	if label, _ := store.Get("a"); label != "200" {
		t.Errorf("Get(a) = %q after reader mutation, want 200", label)
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	go store.Publish(snapshot(store.Begin(), map[string]string{"a": "200"}))

	select {
	case snap := <-ch:
		if snap.Results["a"] != "200" {
			t.Errorf("received Results = %v, want a=200", snap.Results)
		}
	case <-time.After(time.Second):
		t.Error("Subscribe() channel did not receive snapshot")
	}
}

func TestMemoryStore_RejectedPublishDoesNotNotify(t *testing.T) {
	store := NewMemoryStore()
	ch := store.Subscribe()

	stale := store.Begin()
	store.Begin()
	store.Publish(snapshot(stale, map[string]string{"a": "200"}))

	select {
	case snap := <-ch:
		t.Errorf("subscriber received %v from a rejected publish", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()

	chans := []<-chan Snapshot{store.Subscribe(), store.Subscribe(), store.Subscribe()}
	store.Publish(snapshot(store.Begin(), map[string]string{"a": "200"}))

	for i, ch := range chans {
		select {
		case snap := <-ch:
			if snap.Results["a"] != "200" {
				t.Errorf("subscriber %d received %v", i, snap.Results)
			}
		case <-time.After(time.Second):
			t.Errorf("subscriber %d did not receive snapshot", i)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed after Unsubscribe")
		}
	case <-time.After(time.Second):
		t.Error("channel was not closed after Unsubscribe")
	}

	// unsubscribing twice is a no-op
	store.Unsubscribe(ch)

	// publishing after unsubscribe must not panic on a closed channel
	store.Publish(snapshot(store.Begin(), map[string]string{"a": "200"}))
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Subscribe() // never read

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			store.Publish(snapshot(store.Begin(), map[string]string{"a": fmt.Sprint(i)}))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

// TestMemoryStore_ReadersSeeWholeSnapshots publishes snapshots whose
// entries all share one value and checks that no reader ever sees two
// different values in the same snapshot.
// Run with: go test -race ./internal/store/...
func TestMemoryStore_ReadersSeeWholeSnapshots(t *testing.T) {
	store := NewMemoryStore()
	urls := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	build := func(label string) map[string]string {
		m := make(map[string]string, len(urls))
		for _, u := range urls {
			m[u] = label
		}
		return m
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan string, 8)

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				cur := store.Current()
				if cur.IsZero() {
					continue
				}
				first := cur.Results[urls[0]]
				for _, u := range urls {
					if cur.Results[u] != first {
						select {
						case errs <- fmt.Sprintf("mixed snapshot %d: %v", cur.Seq, cur.Results):
						default:
						}
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		store.Publish(snapshot(store.Begin(), build(fmt.Sprint(i))))
	}
	close(stop)
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

// TestMemoryStore_ConcurrentSweeps races many sweeps against each other and
// checks that the survivor is the last one started.
func TestMemoryStore_ConcurrentSweeps(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq := store.Begin()
			store.Publish(snapshot(seq, map[string]string{"a": fmt.Sprint(seq)}))
		}()
	}
	wg.Wait()

	// the sweep holding the last sequence number can never be superseded
	cur := store.Current()
	if cur.Seq != 50 {
		t.Errorf("Current().Seq = %d, want 50", cur.Seq)
	}
	if cur.Results["a"] != fmt.Sprint(cur.Seq) {
		t.Errorf("Results[a] = %q, want %d", cur.Results["a"], cur.Seq)
	}
	if got := store.Begin(); got != 51 {
		t.Errorf("Begin() after 50 sweeps = %d, want 51", got)
	}
}
