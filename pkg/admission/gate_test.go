package admission

import (
	"errors"
	"sync"
	"testing"
)

func TestGate_Basic(t *testing.T) {
	gate := NewGate(2)

	r1, err := gate.Acquire()
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	r2, err := gate.Acquire()
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}

	if _, err := gate.Acquire(); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if gate.InFlight() != 2 {
		t.Errorf("rejection left counter at %d, want 2", gate.InFlight())
	}
	if gate.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", gate.Remaining())
	}

	r1()
	if gate.InFlight() != 1 {
		t.Errorf("InFlight() = %d after release, want 1", gate.InFlight())
	}
	r2()
	if gate.InFlight() != 0 {
		t.Errorf("InFlight() = %d after release, want 0", gate.InFlight())
	}
}

func TestGate_ReleaseIsIdempotent(t *testing.T) {
	gate := NewGate(1)

	release, err := gate.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()
	release()
	release()

	if gate.InFlight() != 0 {
		t.Fatalf("InFlight() = %d, want 0", gate.InFlight())
	}
	if _, err := gate.Acquire(); err != nil {
		t.Errorf("slot not reusable after release: %v", err)
	}
}

func TestGate_Concurrent(t *testing.T) {
	const limit = 10
	const workers = 100
	gate := NewGate(limit)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted []func()
		rejected int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			release, err := gate.Acquire()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rejected++
				return
			}
			admitted = append(admitted, release)
		}()
	}
	close(start)
	wg.Wait()

	if len(admitted) != limit {
		t.Errorf("admitted %d requests, want %d", len(admitted), limit)
	}
	if rejected != workers-limit {
		t.Errorf("rejected %d requests, want %d", rejected, workers-limit)
	}

	for _, release := range admitted {
		release()
	}
	if gate.InFlight() != 0 {
		t.Errorf("InFlight() = %d after releasing all, want 0", gate.InFlight())
	}
}

func TestGate_OnChange(t *testing.T) {
	gate := NewGate(5)
	var seen []int64
	gate.OnChange = func(n int64) { seen = append(seen, n) }

	r1, _ := gate.Acquire()
	r2, _ := gate.Acquire()
	r2()
	r1()

	want := []int64{1, 2, 1, 0}
	if len(seen) != len(want) {
		t.Fatalf("OnChange saw %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("OnChange[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}
