package machine

import "testing"

func TestNewResetsToRunnableState(t *testing.T) {
	m := New(Config{OverlayEnabled: true, MixGain: 1})
	for i := 0; i < 32; i++ {
		m.Step(8)
	}
	l, r := m.MixSample()
	_ = l
	_ = r
}

func TestMailboxRoundTripsThroughMachine(t *testing.T) {
	m := New(Config{MixGain: 1})
	m.CPUWritePort(3, 0x99)
	if got := m.Device().Read(0x00F7); got != 0x99 {
		t.Fatalf("expected mailbox write/read round trip, got %02X", got)
	}
}

func TestMixTraceRecordsFrames(t *testing.T) {
	m := New(Config{MixGain: 1, MixTraceSize: 4})
	for i := 0; i < 6; i++ {
		m.MixSample()
	}
	frames := m.MixTrace()
	if len(frames) != 4 {
		t.Fatalf("expected trace capped at 4 frames, got %d", len(frames))
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	m := New(Config{MixGain: 1})
	m.CPUWritePort(0, 0x3C)
	data := m.SaveState()

	m2 := New(Config{MixGain: 1})
	m2.LoadState(data)
	if got := m2.Device().Read(0x00F4); got != 0x3C {
		t.Fatal("expected mailbox state to round trip through Machine")
	}
}
