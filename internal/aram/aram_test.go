package aram

import "testing"

func TestResetMapsOverlay(t *testing.T) {
	a := New()
	if !a.Overlay() {
		t.Fatal("expected IPL overlay mapped after reset")
	}
	lo := a.Read(0xFFFE)
	hi := a.Read(0xFFFF)
	if lo == 0 && hi == 0 {
		t.Fatal("expected non-zero reset vector from IPL overlay")
	}
}

func TestOverlayReadOnly(t *testing.T) {
	a := New()
	before := a.Read(0xFFC0)
	a.Write(0xFFC0, 0x00)
	after := a.Read(0xFFC0)
	if before != after {
		t.Fatalf("overlay write should be dropped: before=%02X after=%02X", before, after)
	}
}

func TestOverlayDisableExposesRAM(t *testing.T) {
	a := New()
	a.SetOverlay(false)
	a.Write(0xFFC0, 0x42)
	if got := a.Read(0xFFC0); got != 0x42 {
		t.Fatalf("expected RAM visible once overlay disabled, got %02X", got)
	}
}

func TestWriteRawBypassesOverlay(t *testing.T) {
	a := New()
	a.WriteRaw(0xFFC1, 0x99)
	if got := a.ReadRaw(0xFFC1); got != 0x99 {
		t.Fatalf("expected raw write visible via ReadRaw, got %02X", got)
	}
	// Overlay still shadows it for normal Read.
	if got := a.Read(0xFFC1); got == 0x99 {
		t.Fatal("expected overlay to shadow raw RAM byte while mapped")
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	a := New()
	a.SetOverlay(false)
	a.Write(0x0200, 0xAB)
	data := a.SaveState()

	b := New()
	b.LoadState(data)
	if got := b.Read(0x0200); got != 0xAB {
		t.Fatalf("round trip mismatch at $0200: got %02X", got)
	}
	if b.Overlay() {
		t.Fatal("expected overlay=false restored from state")
	}
}

func TestIsIOWindow(t *testing.T) {
	for addr := uint16(0x00F0); addr <= 0x00FF; addr++ {
		if !IsIO(addr) {
			t.Fatalf("expected $%04X to be in IO window", addr)
		}
	}
	if IsIO(0x00EF) || IsIO(0x0100) {
		t.Fatal("IO window bounds too loose")
	}
}
