package dsp

import "testing"

// fakeMem is a flat 64 KiB byte array standing in for ARAM in unit tests.
type fakeMem struct {
	data [0x10000]byte
}

func (m *fakeMem) ReadRaw(addr uint16) byte     { return m.data[addr] }
func (m *fakeMem) WriteRaw(addr uint16, v byte) { m.data[addr] = v }

// writeDirectory installs a one-entry sample directory at DIR page 0,
// SRCN 0, pointing start and loop both at sampleAddr.
func writeDirectory(mem *fakeMem, sampleAddr uint16) {
	mem.data[0] = byte(sampleAddr)
	mem.data[1] = byte(sampleAddr >> 8)
	mem.data[2] = byte(sampleAddr)
	mem.data[3] = byte(sampleAddr >> 8)
}

func TestKeyOnSeedsAddressFromDirectory(t *testing.T) {
	mem := &fakeMem{}
	writeDirectory(mem, 0x0200)
	d := New(mem, Config{})
	d.WriteAddr(regDIR)
	d.WriteData(0x00)
	d.WriteAddr(voSRCN)
	d.WriteData(0x00)

	d.WriteAddr(regKON)
	d.WriteData(0x01)

	if !d.voices[0].active {
		t.Fatal("expected voice 0 active after KON")
	}
	if d.voices[0].addr != 0x0200 {
		t.Fatalf("expected addr seeded to 0x0200, got %04X", d.voices[0].addr)
	}
}

func TestKeyOffDeactivatesVoice(t *testing.T) {
	mem := &fakeMem{}
	writeDirectory(mem, 0x0200)
	d := New(mem, Config{})
	d.WriteAddr(regKON)
	d.WriteData(0x01)
	d.WriteAddr(regKOF)
	d.WriteData(0x01)
	if d.voices[0].active {
		t.Fatal("expected voice 0 inactive after KOF")
	}
}

// TestBRROneShotSetsENDX builds a single-block, non-looping BRR sample
// (header end bit set, loop bit clear) of silence and verifies that once
// it is fully consumed, ENDX latches the voice's bit and the voice goes
// inactive without looping.
func TestBRROneShotSetsENDX(t *testing.T) {
	mem := &fakeMem{}
	writeDirectory(mem, 0x0300)
	mem.data[0x0300] = 0x01 // shift=0, filter=0, END set, LOOP clear
	for i := 0; i < 8; i++ {
		mem.data[0x0301+i] = 0
	}

	d := New(mem, Config{})
	d.WriteAddr(0x00) // voice 0 VOL_L
	d.WriteData(127)
	d.WriteAddr(0x01)
	d.WriteData(127)
	d.WriteAddr(voPitchL)
	d.WriteData(0x00)
	d.WriteAddr(voPitchH)
	d.WriteData(0x10) // pitch=0x1000, 1 sample consumed per frame
	d.WriteAddr(voGAIN)
	d.WriteData(0x7F) // direct gain, full level
	d.WriteAddr(regKON)
	d.WriteData(0x01)

	for i := 0; i < 20; i++ {
		d.MixFrame()
	}

	d.WriteAddr(regENDX)
	if got := d.ReadData(); got&0x01 == 0 {
		t.Fatal("expected ENDX bit 0 set after one-shot sample finished")
	}
	if d.voices[0].active {
		t.Fatal("expected voice to go inactive after a non-looping END block")
	}
}

func TestENDXReadClearsLatch(t *testing.T) {
	d := New(&fakeMem{}, Config{})
	d.endxLatch = 0x03
	d.WriteAddr(regENDX)
	if got := d.ReadData(); got != 0x03 {
		t.Fatalf("expected latch value 0x03, got %02X", got)
	}
	if got := d.ReadData(); got != 0 {
		t.Fatalf("expected latch cleared after read, got %02X", got)
	}
}

func TestDecodeBRRBlockFilter0IsRawShift(t *testing.T) {
	var s1, s2 int16
	var out [16]int16
	header := byte(0x00) // shift=0, filter=0
	var data [8]byte
	data[0] = 0x12 // nibbles 1, 2
	decodeBRRBlock(header, data, &s1, &s2, &out)
	if out[0] != 1 || out[1] != 2 {
		t.Fatalf("expected raw nibble passthrough at shift 0, got %d %d", out[0], out[1])
	}
}

func TestSoftResetClearsRuntimeNotRegisters(t *testing.T) {
	mem := &fakeMem{}
	writeDirectory(mem, 0x0200)
	d := New(mem, Config{})
	d.WriteAddr(voVolL)
	d.WriteData(100)
	d.WriteAddr(regKON)
	d.WriteData(0x01)
	if !d.voices[0].active {
		t.Fatal("expected active before soft reset")
	}

	d.WriteAddr(regFLG)
	d.WriteData(flgSoftReset)

	if d.voices[0].active {
		t.Fatal("expected soft reset to clear active flag")
	}
	if d.voices[0].volL != 100 {
		t.Fatal("expected soft reset to preserve register-mirrored volume")
	}
}

func TestMixFrameMutedProducesSilence(t *testing.T) {
	mem := &fakeMem{}
	writeDirectory(mem, 0x0300)
	mem.data[0x0300] = 0x00
	d := New(mem, Config{})
	d.WriteAddr(voVolL)
	d.WriteData(127)
	d.WriteAddr(voVolR)
	d.WriteData(127)
	d.WriteAddr(voGAIN)
	d.WriteData(0x7F)
	d.WriteAddr(regMVOLL)
	d.WriteData(127)
	d.WriteAddr(regMVOLR)
	d.WriteData(127)
	d.WriteAddr(regKON)
	d.WriteData(0x01)

	d.WriteAddr(regFLG)
	d.WriteData(flgMute)

	l, r := d.MixFrame()
	if l != 0 || r != 0 {
		t.Fatalf("expected silence while FLG mute bit is set, got %d %d", l, r)
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	mem := &fakeMem{}
	writeDirectory(mem, 0x0200)
	d := New(mem, Config{})
	d.WriteAddr(regKON)
	d.WriteData(0x01)
	d.MixFrame()

	data := d.SaveState()

	d2 := New(mem, Config{})
	d2.LoadState(data)
	if d2.voices[0].active != d.voices[0].active {
		t.Fatal("expected active flag to round trip")
	}
	if d2.voices[0].addr != d.voices[0].addr {
		t.Fatal("expected voice address to round trip")
	}
}
