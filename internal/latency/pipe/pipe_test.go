package pipe

import (
	"testing"
	"time"
)

// TestNewDepthValidation tests that New accepts only positive powers of two.
func TestNewDepthValidation(t *testing.T) {
	tests := []struct {
		name      string
		depth     int
		wantPanic bool
	}{
		{name: "depth 1", depth: 1, wantPanic: false},
		{name: "depth 2", depth: 2, wantPanic: false},
		{name: "depth 4 (harness default)", depth: 4, wantPanic: false},
		{name: "depth 8", depth: 8, wantPanic: false},
		{name: "depth 1024", depth: 1024, wantPanic: false},
		{name: "zero depth", depth: 0, wantPanic: true},
		{name: "negative depth", depth: -4, wantPanic: true},
		{name: "depth 3", depth: 3, wantPanic: true},
		{name: "depth 6", depth: 6, wantPanic: true},
		{name: "depth 100", depth: 100, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if tt.wantPanic && r == nil {
					t.Errorf("New(%d) did not panic, want panic", tt.depth)
				}
				if !tt.wantPanic && r != nil {
					t.Errorf("New(%d) panicked: %v", tt.depth, r)
				}
			}()
			p := New[int](tt.depth)
			if !tt.wantPanic && p.Cap() != tt.depth {
				t.Errorf("Cap() = %d, want %d", p.Cap(), tt.depth)
			}
		})
	}
}

// TestTryReadEmpty tests that TryRead on an empty pipe reports no value.
func TestTryReadEmpty(t *testing.T) {
	p := New[int](4)

	v, ok := p.TryRead()
	if ok {
		t.Fatalf("TryRead() on empty pipe = (%d, true), want (0, false)", v)
	}
	if v != 0 {
		t.Errorf("TryRead() zero value = %d, want 0", v)
	}
}

// TestTryWriteFull tests that TryWrite fails once depth entries are buffered.
func TestTryWriteFull(t *testing.T) {
	p := New[int](4)

	for i := 0; i < 4; i++ {
		if !p.TryWrite(i) {
			t.Fatalf("TryWrite(%d) = false with %d entries buffered, want true", i, i)
		}
	}
	if p.TryWrite(99) {
		t.Error("TryWrite on full pipe = true, want false")
	}
	if got := p.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}

	// Draining one entry makes exactly one slot writable again.
	if v, ok := p.TryRead(); !ok || v != 0 {
		t.Fatalf("TryRead() = (%d, %v), want (0, true)", v, ok)
	}
	if !p.TryWrite(99) {
		t.Error("TryWrite after drain = false, want true")
	}
}

// TestFIFOOrder tests that values come out in insertion order across laps.
func TestFIFOOrder(t *testing.T) {
	p := New[uint64](4)

	// 100 values through a depth-4 ring exercises 25 wraparounds.
	next := uint64(0)
	for sent := uint64(0); sent < 100; {
		for sent < 100 && p.TryWrite(sent) {
			sent++
		}
		for {
			v, ok := p.TryRead()
			if !ok {
				break
			}
			if v != next {
				t.Fatalf("TryRead() = %d, want %d (FIFO order)", v, next)
			}
			next++
		}
	}
	if next != 100 {
		t.Fatalf("drained %d values, want 100", next)
	}
}

// TestBlockingTransfer tests Write/Read across two goroutines.
func TestBlockingTransfer(t *testing.T) {
	const n = 10000
	p := New[int](4)

	go func() {
		for i := 0; i < n; i++ {
			p.Write(i)
		}
	}()

	for i := 0; i < n; i++ {
		if v := p.Read(); v != i {
			t.Fatalf("Read() = %d, want %d", v, i)
		}
	}
}

// TestWriteBlocksWhenFull tests that Write waits for the consumer
// instead of dropping or overwriting entries.
func TestWriteBlocksWhenFull(t *testing.T) {
	p := New[int](4)
	for i := 0; i < 4; i++ {
		p.Write(i)
	}

	done := make(chan struct{})
	go func() {
		p.Write(4)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Write completed on a full pipe before any entry was consumed")
	case <-time.After(20 * time.Millisecond):
		// Still blocked, as required.
	}

	if v, ok := p.TryRead(); !ok || v != 0 {
		t.Fatalf("TryRead() = (%d, %v), want (0, true)", v, ok)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Write did not complete after space became available")
	}

	// The blocked value landed behind the original entries.
	want := []int{1, 2, 3, 4}
	for i, w := range want {
		if v := p.Read(); v != w {
			t.Fatalf("Read() #%d = %d, want %d", i, v, w)
		}
	}
}

// TestDepthFourNeverFillsUnderProtocolLoad tests the sizing property the
// measurement protocol depends on: with at most one pending tick and one
// pending event message at any instant, depth-4 pipes never refuse a write.
func TestDepthFourNeverFillsUnderProtocolLoad(t *testing.T) {
	ticks := New[uint64](4)
	events := New[int](4)
	hostTicks := New[int](4)

	for round := 0; round < 1000; round++ {
		if !ticks.TryWrite(1) {
			t.Fatalf("round %d: tick announcement refused with %d buffered", round, ticks.Len())
		}
		if _, ok := ticks.TryRead(); !ok {
			t.Fatalf("round %d: tick announcement lost", round)
		}
		if !hostTicks.TryWrite(1) {
			t.Fatalf("round %d: relay refused with %d buffered", round, hostTicks.Len())
		}
		if _, ok := hostTicks.TryRead(); !ok {
			t.Fatalf("round %d: relay lost", round)
		}

		// An event message rides along every few rounds, never more than
		// one outstanding.
		if round%3 == 0 {
			if !events.TryWrite(round % 8) {
				t.Fatalf("round %d: event message refused with %d buffered", round, events.Len())
			}
			if _, ok := events.TryRead(); !ok {
				t.Fatalf("round %d: event message lost", round)
			}
		}
	}
}

// TestLenCap tests the diagnostic accessors.
func TestLenCap(t *testing.T) {
	p := New[struct{}](8)

	if got := p.Cap(); got != 8 {
		t.Errorf("Cap() = %d, want 8", got)
	}
	if got := p.Len(); got != 0 {
		t.Errorf("Len() on empty pipe = %d, want 0", got)
	}
	for i := 0; i < 5; i++ {
		p.Write(struct{}{})
	}
	if got := p.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
	p.Read()
	p.Read()
	if got := p.Len(); got != 3 {
		t.Errorf("Len() after two reads = %d, want 3", got)
	}
}

// TestZeroValuePayload tests that struct{} pipes transfer signal-only entries.
func TestZeroValuePayload(t *testing.T) {
	p := New[struct{}](4)

	p.Write(struct{}{})
	if _, ok := p.TryRead(); !ok {
		t.Error("TryRead() after Write = false, want true")
	}
	if _, ok := p.TryRead(); ok {
		t.Error("TryRead() on drained pipe = true, want false")
	}
}
