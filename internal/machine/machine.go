// Package machine provides the host-facing facade over the wired APU
// device: configuration toggles, debug ring buffers, and save/restore, the
// same shape internal/emu's Machine type exposed for the video pipeline.
package machine

import (
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/apu"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/dsp"
)

// Config collects every toggle the host can flip without reaching into
// subsystem internals.
type Config struct {
	Trace               bool
	RelaxedOpcodes      bool
	NullVectorHLE       bool
	BootIPLHLE          bool
	OverlayEnabled      bool
	TimerIRQInjection   bool
	LowPowerDisabled    bool
	MixGain             float64
	VoiceMute           [8]bool
	ForcePanWindow      bool
	InstructionRingSize int
	MixTraceSize        int
}

// Machine wires an apu.Device behind the host API and adds the debug
// surfaces a strong-language port exposes explicitly instead of reaching
// into private interpreter fields.
type Machine struct {
	cfg     Config
	dev     *apu.Device
	mixRing *mixTrace
}

// New constructs a Machine from cfg and resets it to power-on state.
func New(cfg Config) *Machine {
	m := &Machine{cfg: cfg}
	m.dev = apu.New(toDeviceConfig(cfg))
	m.mixRing = newMixTrace(cfg.MixTraceSize)
	return m
}

func toDeviceConfig(cfg Config) apu.Config {
	return apu.Config{
		CPU: cpu.Config{
			NullVectorHLE:       cfg.NullVectorHLE,
			RelaxedOpcodes:      cfg.RelaxedOpcodes,
			LowPowerDisabled:    cfg.LowPowerDisabled,
			InstructionRingSize: cfg.InstructionRingSize,
		},
		OverlayEnabled: cfg.OverlayEnabled,
		BootIPLHLE:     cfg.BootIPLHLE,
		TimerIRQInject: cfg.TimerIRQInjection,
		Mix: dsp.Config{
			MixGain:        cfg.MixGain,
			VoiceMute:      cfg.VoiceMute,
			ForcePanWindow: cfg.ForcePanWindow,
		},
	}
}

// SetConfig updates runtime toggles without resetting device state. The
// CPU-level toggles (RelaxedOpcodes, NullVectorHLE, LowPowerDisabled,
// InstructionRingSize) keep the values given to New, and OverlayEnabled
// takes effect at the next Reset.
func (m *Machine) SetConfig(cfg Config) {
	m.cfg = cfg
	m.dev.SetConfig(toDeviceConfig(cfg))
}

// Reset restores the device to power-on state.
func (m *Machine) Reset() { m.dev.Reset() }

// CPUWritePort is the host-facing mailbox write.
func (m *Machine) CPUWritePort(i int, v byte) { m.dev.CPUWritePort(i, v) }

// CPUReadPort is the host-facing mailbox read.
func (m *Machine) CPUReadPort(i int) byte { return m.dev.CPUReadPort(i) }

// Step advances the device by cycles synthetic CPU cycles. An unimplemented
// opcode is returned as an error rather than logged, mirroring the
// core/edge split the CPU package already uses.
func (m *Machine) Step(cycles int) error { return m.dev.Step(cycles) }

// MixSample pulls one stereo PCM frame from the DSP and records it in the
// mix trace ring if enabled.
func (m *Machine) MixSample() (int16, int16) {
	l, r := m.dev.MixFrame()
	m.mixRing.push(l, r)
	return l, r
}

// InstructionRing exposes the SPC700's optional instruction trace ring.
func (m *Machine) InstructionRing() *cpu.InstructionRing { return m.dev.CPU().InstructionRing() }

// MixTrace returns the most recently captured stereo frames, oldest first.
func (m *Machine) MixTrace() []StereoFrame { return m.mixRing.entries() }

// BeginMixTrace resets the mix trace ring to a fresh buffer of size n.
func (m *Machine) BeginMixTrace(n int) { m.mixRing = newMixTrace(n) }

// Device exposes the underlying apu.Device for the loader, which needs to
// seed ARAM, DSP registers, and CPU state directly during snapshot
// ingestion.
func (m *Machine) Device() *apu.Device { return m.dev }

// SaveState and LoadState checkpoint the entire device via gob.
func (m *Machine) SaveState() []byte    { return m.dev.SaveState() }
func (m *Machine) LoadState(b []byte)   { m.dev.LoadState(b) }
