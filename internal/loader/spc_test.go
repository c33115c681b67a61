package loader

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/snesapu/internal/machine"
)

func buildRawSPC(t *testing.T) []byte {
	t.Helper()
	raw := make([]byte, FileSize)
	copy(raw, spcMagic)
	raw[offID666] = 26

	raw[offPC] = 0x00
	raw[offPC+1] = 0x02
	raw[offA] = 0x11
	raw[offX] = 0x22
	raw[offY] = 0x33
	raw[offPSW] = 0x08
	raw[offSP] = 0xEF

	copy(raw[offTagsStart:], []byte("A Test Song"))

	raw[offARAM+0x0200] = 0x00 // NOP at the reported PC
	raw[offARAM+0x00F1] = 0x01 // enable T0 through the control register
	raw[offARAM+0x00FA] = 0x05 // T0 target

	raw[offDSPRegs+0x0C] = 96 // MVOL_L
	raw[offDSPRegs+0x1C] = 96 // MVOL_R
	raw[offDSPRegs+regFLG] = flgSoftReset | flgMute

	return raw
}

func TestParseRejectsBadMagic(t *testing.T) {
	raw := buildRawSPC(t)
	raw[0] = 'X'
	if _, err := Parse(raw); err != ErrBadHeader {
		t.Fatalf("expected ErrBadHeader, got %v", err)
	}
}

func TestParseRejectsTruncatedFile(t *testing.T) {
	raw := buildRawSPC(t)
	if _, err := Parse(raw[:offDSPRegs]); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestParseExtractsRegistersAndTags(t *testing.T) {
	s, err := Parse(buildRawSPC(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.PC != 0x0200 || s.A != 0x11 || s.X != 0x22 || s.Y != 0x33 || s.PSW != 0x08 || s.SP != 0xEF {
		t.Fatalf("unexpected register snapshot: %+v", s)
	}
	if !s.HasTags || s.Tags.SongTitle != "A Test Song" {
		t.Fatalf("unexpected tags: %+v", s.Tags)
	}
}

func TestIngestAppliesRegistersAndClearsMuteAndReset(t *testing.T) {
	m := machine.New(machine.Config{MixGain: 1})
	s, err := Parse(buildRawSPC(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Ingest(m, s)

	dev := m.Device()
	cpu := dev.CPU()
	if cpu.PC != 0x0200 || cpu.A != 0x11 || cpu.SP != 0xEF {
		t.Fatalf("expected CPU register file restored, got PC=%04X A=%02X SP=%02X", cpu.PC, cpu.A, cpu.SP)
	}
	if got := dev.ARAM().ReadRaw(0x0200); got != 0x00 {
		t.Fatalf("expected ARAM image seeded, got %02X at 0x0200", got)
	}
	if dev.Timers()[0].Counter() != 0 {
		t.Fatal("expected timer re-armed through the control path, not mid-count")
	}

	d := dev.DSP()
	d.WriteAddr(regFLG)
	if got := d.ReadData(); got&(flgSoftReset|flgMute) != 0 {
		t.Fatalf("expected reset and mute bits cleared after ingest, got %02X", got)
	}
}

func TestLoadRoundTripsThroughMachine(t *testing.T) {
	m := machine.New(machine.Config{MixGain: 1})
	if err := Load(m, buildRawSPC(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Device().CPU().A != 0x11 {
		t.Fatal("expected Load to ingest the snapshot into the machine")
	}
}
