// Package dsp implements the S-DSP: an eight-voice BRR sample playback and
// mixing engine with ADSR/GAIN envelopes and an eight-tap echo filter. It
// reads and writes ARAM directly for sample data and the echo buffer,
// sharing that memory with the SPC700 core the way real hardware does.
package dsp

import (
	"bytes"
	"encoding/gob"
	"math"
)

// Memory is the ARAM access the DSP needs: raw byte reads/writes, with no
// I/O-window or overlay special-casing (that belongs to the CPU's address
// decoder, not the DSP).
type Memory interface {
	ReadRaw(addr uint16) byte
	WriteRaw(addr uint16, v byte)
}

// Register offsets for the global (non-per-voice) control bytes.
const (
	regMVOLL = 0x0C
	regMVOLR = 0x1C
	regEVOLL = 0x2C
	regEVOLR = 0x3C
	regKON   = 0x4C
	regKOF   = 0x5C
	regFLG   = 0x6C
	regENDX  = 0x7C
	regEFB   = 0x0D
	regEON   = 0x4D
	regDIR   = 0x5D
	regESA   = 0x6D
	regEDL   = 0x7D
)

// firCoeffOffset returns the register index of FIR coefficient k (0-7).
func firCoeffOffset(k int) byte { return byte(k<<4 | 0x0F) }

// FLG bits.
const (
	flgEchoWriteDisable = 1 << 5
	flgMute             = 1 << 6
	flgSoftReset        = 1 << 7
)

// Voice per-register offsets within a voice's 0x10-byte block.
const (
	voVolL  = 0x00
	voVolR  = 0x01
	voPitchL = 0x02
	voPitchH = 0x03
	voSRCN  = 0x04
	voADSR1 = 0x05
	voADSR2 = 0x06
	voGAIN  = 0x07
	voENVX  = 0x08
	voOUTX  = 0x09
)

// Config carries debug/mixing knobs that are not part of the register
// interface itself.
type Config struct {
	MixGain        float64
	VoiceMute      [8]bool
	ForcePanWindow bool
}

// DSP is the S-DSP register window plus the eight voices' runtime state.
type DSP struct {
	mem  Memory
	cfg  Config
	regs [128]byte
	addr byte

	voices     [8]voice
	endxLatch  byte
	frameIndex int
}

// New constructs a DSP bound to mem with the given mixing configuration.
func New(mem Memory, cfg Config) *DSP {
	if cfg.MixGain == 0 {
		cfg.MixGain = 1.0
	}
	return &DSP{mem: mem, cfg: cfg}
}

// SetConfig replaces the mixing/debug configuration.
func (d *DSP) SetConfig(cfg Config) {
	if cfg.MixGain == 0 {
		cfg.MixGain = 1.0
	}
	d.cfg = cfg
}

// Reset clears all registers and voice runtime state, matching a hardware
// power-on.
func (d *DSP) Reset() {
	d.regs = [128]byte{}
	d.addr = 0
	d.endxLatch = 0
	d.frameIndex = 0
	for i := range d.voices {
		d.voices[i] = voice{}
	}
}

// WriteAddr latches a 7-bit register index.
func (d *DSP) WriteAddr(a byte) { d.addr = a & 0x7F }

// WriteData writes at the latched index.
func (d *DSP) WriteData(v byte) { d.writeReg(d.addr, v) }

// ReadData reads at the latched index.
func (d *DSP) ReadData() byte { return d.readReg(d.addr) }

func (d *DSP) readReg(idx byte) byte {
	idx &= 0x7F
	if idx == regENDX {
		v := d.endxLatch
		d.endxLatch = 0
		return v
	}
	if voiceIdx, off := voiceOffset(idx); voiceIdx >= 0 {
		switch off {
		case voENVX:
			return byte(int(math.Round(d.voices[voiceIdx].env * 127)))
		case voOUTX:
			return byte(d.voices[voiceIdx].outx)
		}
	}
	return d.regs[idx]
}

func (d *DSP) writeReg(idx byte, v byte) {
	idx &= 0x7F
	d.regs[idx] = v

	if voiceIdx, off := voiceOffset(idx); voiceIdx >= 0 {
		vo := &d.voices[voiceIdx]
		switch off {
		case voVolL:
			vo.volL = int8(v)
		case voVolR:
			vo.volR = int8(v)
		case voPitchL, voPitchH:
			lo := d.regs[int(voiceIdx)*0x10+voPitchL]
			hi := d.regs[int(voiceIdx)*0x10+voPitchH]
			vo.pitch = uint16(lo) | uint16(hi&0x3F)<<8
		case voSRCN:
			vo.srcn = v
		case voADSR1:
			vo.adsr1 = v
		case voADSR2:
			vo.adsr2 = v
		case voGAIN:
			vo.gain = v
		}
		return
	}

	switch idx {
	case regKON:
		for i := 0; i < 8; i++ {
			if v&(1<<uint(i)) != 0 {
				d.keyOn(i)
			}
		}
	case regKOF:
		for i := 0; i < 8; i++ {
			if v&(1<<uint(i)) != 0 {
				d.voices[i].active = false
			}
		}
	case regFLG:
		if v&flgSoftReset != 0 {
			for i := range d.voices {
				d.voices[i].resetRuntime()
			}
			d.frameIndex = 0
		}
	}
}

// voiceOffset maps a 7-bit register index to (voice index, offset within
// the voice's 0x10-byte block), or (-1, 0) if idx is a global register.
func voiceOffset(idx byte) (int, byte) {
	off := idx & 0x0F
	if off > 0x09 {
		return -1, 0
	}
	vi := int(idx >> 4)
	if vi > 7 {
		return -1, 0
	}
	return vi, off
}

// directoryEntry reads the 4-byte sample directory entry for srcn: a
// little-endian start address followed by a little-endian loop address.
func (d *DSP) directoryEntry(srcn byte) (start, loop uint16) {
	base := uint16(d.regs[regDIR])<<8 + uint16(srcn)*4
	start = uint16(d.mem.ReadRaw(base)) | uint16(d.mem.ReadRaw(base+1))<<8
	loop = uint16(d.mem.ReadRaw(base+2)) | uint16(d.mem.ReadRaw(base+3))<<8
	return
}

func (d *DSP) keyOn(i int) {
	vo := &d.voices[i]
	start, _ := d.directoryEntry(vo.srcn)
	vo.addr = start
	vo.blockPos = 16 // force a fresh block decode on first sample request
	vo.blockEnd = false
	vo.blockLoop = false
	vo.s1, vo.s2 = 0, 0
	vo.history = [4]int16{}
	vo.phase = 0
	vo.active = true
	vo.envMode = envAttack
	vo.env = 0
	vo.envTickCounter = 0
	vo.outx = 0
}

// SaveState and LoadState persist the full register window and voice
// runtime state via gob, matching how the rest of this module checkpoints
// subsystem state. gob only encodes exported fields, so each voice's
// unexported runtime state is copied through voiceState before encoding.
type dspState struct {
	Regs       [128]byte
	Addr       byte
	Voices     [8]voiceState
	EndxLatch  byte
	FrameIndex int
}

func (d *DSP) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	var voices [8]voiceState
	for i := range d.voices {
		voices[i] = d.voices[i].snapshot()
	}
	_ = enc.Encode(dspState{
		Regs: d.regs, Addr: d.addr, Voices: voices,
		EndxLatch: d.endxLatch, FrameIndex: d.frameIndex,
	})
	return buf.Bytes()
}

func (d *DSP) LoadState(data []byte) {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var s dspState
	if err := dec.Decode(&s); err != nil {
		return
	}
	d.regs = s.Regs
	d.addr = s.Addr
	for i := range d.voices {
		d.voices[i].restore(s.Voices[i])
	}
	d.endxLatch = s.EndxLatch
	d.frameIndex = s.FrameIndex
}
