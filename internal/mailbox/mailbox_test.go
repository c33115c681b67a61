package mailbox

import "testing"

func TestDirectionsAreIndependent(t *testing.T) {
	m := New()
	m.HostWrite(0, 0xCC)
	if got := m.CPURead(0); got != 0xCC {
		t.Fatalf("expected CPU to observe host write, got %02X", got)
	}
	if got := m.HostRead(0); got != 0x00 {
		t.Fatalf("expected host-read slot untouched by host write, got %02X", got)
	}

	m.CPUWrite(1, 0x42)
	if got := m.HostRead(1); got != 0x42 {
		t.Fatalf("expected host to observe CPU write, got %02X", got)
	}
	if got := m.CPURead(1); got != 0x00 {
		t.Fatalf("expected CPU-read slot untouched by CPU write, got %02X", got)
	}
}

func TestSlotWrapping(t *testing.T) {
	m := New()
	m.HostWrite(4, 0x11) // wraps to slot 0
	if got := m.CPURead(0); got != 0x11 {
		t.Fatalf("expected slot index to wrap mod 4, got %02X", got)
	}
}

func TestResetClearsBothDirections(t *testing.T) {
	m := New()
	m.HostWrite(0, 0xAA)
	m.CPUWrite(0, 0xBB)
	m.Reset()
	if m.CPURead(0) != 0 || m.HostRead(0) != 0 {
		t.Fatal("expected both directions cleared after Reset")
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	m := New()
	m.HostWrite(2, 0x55)
	m.CPUWrite(3, 0x66)
	data := m.SaveState()

	n := New()
	n.LoadState(data)
	if got := n.CPURead(2); got != 0x55 {
		t.Fatalf("round trip mismatch host->apu slot 2: got %02X", got)
	}
	if got := n.HostRead(3); got != 0x66 {
		t.Fatalf("round trip mismatch apu->host slot 3: got %02X", got)
	}
}
