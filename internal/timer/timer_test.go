package timer

import "testing"

func TestDisabledTimerDoesNotTick(t *testing.T) {
	tm := New(128, 16)
	tm.SetTarget(1)
	if inc := tm.Tick(10000); inc != 0 {
		t.Fatalf("expected 0 increments while disabled, got %d", inc)
	}
}

func TestTimerEnableAndSweep(t *testing.T) {
	// Control enables T0, target_0 = 2; after 160 cycles the visible
	// counter has increased by at least 1, then a one-shot reset zeroes it.
	tm := New(Divisor[0], Width[0])
	tm.SetEnabled(true)
	tm.SetTarget(2)
	tm.Tick(160)
	if tm.Counter() == 0 {
		t.Fatalf("expected visible counter > 0 after 160 cycles at divisor=64,target=2")
	}
	tm.ResetCounter()
	if tm.Counter() != 0 {
		t.Fatalf("expected counter reset to 0, got %d", tm.Counter())
	}
}

func TestTargetZeroMeans256(t *testing.T) {
	tm := New(1, 16) // divisor 1 for a fast, exact test
	tm.SetEnabled(true)
	tm.SetTarget(0)
	if inc := tm.Tick(255); inc != 0 {
		t.Fatalf("expected no increment before 256 phase ticks, got %d", inc)
	}
	if inc := tm.Tick(1); inc != 1 {
		t.Fatalf("expected exactly one increment at the 256th phase tick, got %d", inc)
	}
}

func TestVisibleCounterWrapsAtWidth(t *testing.T) {
	tm := New(1, 4) // width 4 for a compact test
	tm.SetEnabled(true)
	tm.SetTarget(1)
	tm.Tick(5) // five phase ticks, five increments, wraps mod 4
	if got := tm.Counter(); got != 1 {
		t.Fatalf("expected counter to wrap mod width: got %d want 1", got)
	}
}

func TestCycleConservationAcrossPrescaler(t *testing.T) {
	tm := New(128, 16)
	tm.SetEnabled(true)
	tm.SetTarget(1)
	total := 0
	for i := 0; i < 50; i++ {
		total += tm.Tick(37)
	}
	// Sweeping in small increments must match ticking the same total at once,
	// since the prescaler accumulator carries fractional cycles forward.
	ref := New(128, 16)
	ref.SetEnabled(true)
	ref.SetTarget(1)
	refTotal := ref.Tick(37 * 50)
	if total != refTotal {
		t.Fatalf("incremental ticking diverged from bulk ticking: %d vs %d", total, refTotal)
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	tm := New(32, 256)
	tm.SetEnabled(true)
	tm.SetTarget(10)
	tm.Tick(500)
	snap := tm.SaveState()

	other := New(32, 256)
	other.LoadState(snap)
	if other.Counter() != tm.Counter() || other.Enabled() != tm.Enabled() {
		t.Fatal("round trip state mismatch")
	}
}
