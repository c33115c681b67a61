// Package apu binds ARAM, the mailbox, the three hardware timers, and the
// S-DSP behind the SPC700's $00F0-$00FF address decoder, and drives the
// step loop that advances the CPU and timers coherently.
package apu

import (
	"bytes"
	"encoding/gob"

	"github.com/FabianRolfMatthiasNoll/snesapu/internal/aram"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/dsp"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/mailbox"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/timer"
)

// $00F0-$00FF register offsets, relative to aram.IOBase.
const (
	ioTest    = 0x00
	ioControl = 0x01
	ioDSPAddr = 0x02
	ioDSPData = 0x03
	ioMailLo  = 0x04 // $F4-$F7, four slots
	ioMailHi  = 0x07
	ioT0Tgt   = 0x0A
	ioT2Tgt   = 0x0C
	ioT0Cnt   = 0x0D
	ioT2Cnt   = 0x0F
)

const (
	ctrlTimerEnableMask = 0x07
	ctrlTimerResetMask  = 0x70
)

// idleCycleCost is the minimum budget charged per executed CPU step, so the
// step loop always makes progress. While the CPU is stopped or sleeping the
// loop instead advances the timers by the whole remaining budget at once.
const idleCycleCost = 2

// Config carries the toggles the host exposes across the whole device.
type Config struct {
	CPU             cpu.Config
	OverlayEnabled  bool
	BootIPLHLE      bool
	TimerIRQInject  bool
	Mix             dsp.Config
}

// Device is the wired-together APU: ARAM, mailbox, timers, DSP, and CPU
// behind a single address decoder.
type Device struct {
	cfg Config

	ram *aram.ARAM
	mb  *mailbox.Mailbox
	tm  [3]*timer.Timer
	dsp *dsp.DSP
	cpu *cpu.CPU

	bootBusy    bool
	bootHaveLo  bool
	bootAddrSet bool
	bootAddr    uint16

	testReg    byte
	controlReg byte
}

// New constructs a fully wired Device and resets it to power-on state.
func New(cfg Config) *Device {
	d := &Device{cfg: cfg}
	d.ram = aram.New()
	d.mb = mailbox.New()
	d.tm = timer.NewBank()
	d.dsp = dsp.New(d.ram, cfg.Mix)
	d.cpu = cpu.New(d, cfg.CPU)
	d.ram.SetOverlay(cfg.OverlayEnabled)
	d.Reset()
	return d
}

// SetConfig updates the device-level toggles and the DSP mixing
// configuration without tearing down device state. The CPU keeps the
// cpu.Config it was constructed with, and OverlayEnabled takes effect at the
// next Reset.
func (d *Device) SetConfig(cfg Config) {
	d.cfg = cfg
	d.dsp.SetConfig(cfg.Mix)
}

// Reset zeroes ARAM, the mailbox, and timer/DSP runtime state, restores the
// IPL overlay per configuration, resets the CPU, and seeds PC from the
// reset vector as read through the mapped bus.
func (d *Device) Reset() {
	d.ram.Reset()
	d.ram.SetOverlay(d.cfg.OverlayEnabled)
	d.mb.Reset()
	for _, t := range d.tm {
		t.SetEnabled(false)
		t.SetTarget(0)
		t.ResetCounter()
	}
	d.dsp.Reset()
	d.cpu.Reset()
	d.bootBusy, d.bootHaveLo, d.bootAddrSet = false, false, false
	d.testReg, d.controlReg = 0, 0
}

// Read implements cpu.Bus: the $00F0-$00FF window is decoded here, every
// other address falls through to ARAM.
func (d *Device) Read(addr uint16) byte {
	if !aram.IsIO(addr) {
		return d.ram.Read(addr)
	}
	off := addr - aram.IOBase
	switch {
	case off == ioTest:
		return d.testReg
	case off == ioControl:
		return d.controlReg
	case off == ioDSPAddr:
		return 0
	case off == ioDSPData:
		return d.dsp.ReadData()
	case off >= ioMailLo && off <= ioMailHi:
		return d.mb.CPURead(int(off - ioMailLo))
	case off >= ioT0Tgt && off <= ioT2Tgt:
		return 0
	case off >= ioT0Cnt && off <= ioT2Cnt:
		return byte(d.tm[off-ioT0Cnt].Counter())
	default:
		return 0
	}
}

// Write implements cpu.Bus.
func (d *Device) Write(addr uint16, v byte) {
	if !aram.IsIO(addr) {
		d.ram.Write(addr, v)
		return
	}
	off := addr - aram.IOBase
	switch {
	case off == ioTest:
		d.testReg = v
	case off == ioControl:
		d.controlReg = v
		for i := 0; i < 3; i++ {
			d.tm[i].SetEnabled(v&(1<<uint(i)) != 0)
			if v&(0x10<<uint(i)) != 0 {
				d.tm[i].ResetCounter()
			}
		}
	case off == ioDSPAddr:
		d.dsp.WriteAddr(v)
	case off == ioDSPData:
		d.dsp.WriteData(v)
	case off >= ioMailLo && off <= ioMailHi:
		d.mb.CPUWrite(int(off-ioMailLo), v)
	case off >= ioT0Tgt && off <= ioT2Tgt:
		d.tm[off-ioT0Tgt].SetTarget(v)
	case off >= ioT0Cnt && off <= ioT2Cnt:
		d.tm[off-ioT0Cnt].ResetCounter()
	}
}

// Step advances the device by cycles synthetic CPU cycles, per the
// documented ordering: CPU instruction effects, then timer ticks for that
// instruction's cost, then wake/IRQ handling. An unimplemented opcode stops
// the CPU mid-step and is returned to the caller rather than logged here;
// the core stays silent and lets the caller decide how to fail.
func (d *Device) Step(cycles int) error {
	for cycles > 0 {
		if d.cpu.Stopped() || d.cpu.Sleeping() {
			d.tickTimers(cycles)
			cycles = 0
			continue
		}
		consumed, err := d.cpu.Step()
		if err != nil {
			return err
		}
		spent := consumed
		if spent < idleCycleCost {
			spent = idleCycleCost
		}
		d.tickTimers(spent)
		cycles -= spent
	}
	return nil
}

// tickTimers advances all three timers by cycles, waking a sleeping CPU
// and optionally injecting a maskable IRQ on T0 overflow.
func (d *Device) tickTimers(cycles int) {
	for i, t := range d.tm {
		inc := t.Tick(cycles)
		if inc > 0 {
			d.cpu.WakeSleep()
			if i == 0 && d.cfg.TimerIRQInject {
				d.cpu.RequestIRQ()
			}
		}
	}
}

// MixFrame pulls one stereo PCM sample from the DSP, independent of Step.
func (d *Device) MixFrame() (int16, int16) { return d.dsp.MixFrame() }

// CPUWritePort is the host-facing mailbox write: updates the slot the
// SPC700 reads at $F4+i, wakes a sleeping CPU, and feeds the boot IPL HLE
// protocol when enabled.
func (d *Device) CPUWritePort(i int, v byte) {
	d.mb.HostWrite(i, v)
	d.cpu.WakeSleep()
	if d.cfg.BootIPLHLE {
		d.handleBootWrite(i, v)
	}
}

// CPUReadPort is the host-facing mailbox read, honoring the boot IPL HLE
// busy-toggle on slot 0.
func (d *Device) CPUReadPort(i int) byte {
	v := d.mb.HostRead(i)
	if d.cfg.BootIPLHLE && i == 0 && d.bootBusy {
		v ^= 0x80
	}
	return v
}

// handleBootWrite implements the optional upload half of the boot
// handshake: writing 0xCC to slot 0 enters busy mode; subsequent slot-1
// writes deliver a 16-bit target address (low byte, then high byte), and
// every slot-1 write after that stores one byte at the advancing ARAM
// address. Writing 0x00 to slot 0 ends busy mode.
func (d *Device) handleBootWrite(slot int, v byte) {
	switch slot {
	case 0:
		switch v {
		case 0xCC:
			d.bootBusy = true
			d.bootHaveLo = false
			d.bootAddrSet = false
		case 0x00:
			d.bootBusy = false
		}
	case 1:
		if !d.bootBusy {
			return
		}
		if !d.bootAddrSet {
			if !d.bootHaveLo {
				d.bootAddr = uint16(v)
				d.bootHaveLo = true
			} else {
				d.bootAddr |= uint16(v) << 8
				d.bootAddrSet = true
			}
			return
		}
		d.ram.WriteRaw(d.bootAddr, v)
		d.bootAddr++
	}
}

// ARAM, Mailbox, Timers, DSP, and CPU expose the underlying components for
// the loader and machine facade; nothing outside this package reaches
// their internals except through these narrow accessors.
func (d *Device) ARAM() *aram.ARAM        { return d.ram }
func (d *Device) Mailbox() *mailbox.Mailbox { return d.mb }
func (d *Device) Timers() [3]*timer.Timer { return d.tm }
func (d *Device) DSP() *dsp.DSP           { return d.dsp }
func (d *Device) CPU() *cpu.CPU           { return d.cpu }

type deviceState struct {
	RAM        []byte
	Mbox       []byte
	Timers     [3]timer.State
	DSP        []byte
	CPU        cpuState
	TestReg    byte
	ControlReg byte
}

type cpuState struct {
	A, X, Y byte
	SP      byte
	PSW     byte
	PC      uint16
}

// SaveState serializes ARAM, mailbox, timer, DSP, and CPU register-file
// state via gob.
func (d *Device) SaveState() []byte {
	var ts [3]timer.State
	for i, t := range d.tm {
		ts[i] = t.SaveState()
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	_ = enc.Encode(deviceState{
		RAM: d.ram.SaveState(), Mbox: d.mb.SaveState(), Timers: ts,
		DSP: d.dsp.SaveState(),
		CPU: cpuState{A: d.cpu.A, X: d.cpu.X, Y: d.cpu.Y, SP: d.cpu.SP, PSW: d.cpu.PSW, PC: d.cpu.PC},
		TestReg: d.testReg, ControlReg: d.controlReg,
	})
	return buf.Bytes()
}

// LoadState restores a Device from SaveState's output.
func (d *Device) LoadState(data []byte) {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var s deviceState
	if err := dec.Decode(&s); err != nil {
		return
	}
	d.ram.LoadState(s.RAM)
	d.mb.LoadState(s.Mbox)
	for i, t := range d.tm {
		t.LoadState(s.Timers[i])
	}
	d.dsp.LoadState(s.DSP)
	d.cpu.A, d.cpu.X, d.cpu.Y = s.CPU.A, s.CPU.X, s.CPU.Y
	d.cpu.SP, d.cpu.PSW, d.cpu.PC = s.CPU.SP, s.CPU.PSW, s.CPU.PC
	d.testReg, d.controlReg = s.TestReg, s.ControlReg
}
