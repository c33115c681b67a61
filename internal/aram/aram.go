// Package aram models the SPC700's 64 KiB unified address space: sample
// data, programs, and the DSP/timer/mailbox I/O window all share the same
// flat byte array the CPU sees.
package aram

import (
	"bytes"
	"encoding/gob"

	"github.com/FabianRolfMatthiasNoll/snesapu/internal/iplrom"
)

// Size is the width of the address space in bytes.
const Size = 0x10000

// IOBase and IOEnd bound the $00F0-$00FF control-register window. Reads and
// writes in this range never touch the backing array; internal/apu's
// address decoder handles them instead.
const (
	IOBase uint16 = 0x00F0
	IOEnd  uint16 = 0x00FF
)

// ARAM is the 64 KiB byte array backing the SPC700 address space, plus the
// IPL ROM overlay that can be mapped over its top 64 bytes.
type ARAM struct {
	mem     [Size]byte
	overlay bool // IPL ROM mapped at $FFC0-$FFFF
}

// New returns an ARAM with the IPL overlay mapped, matching hardware reset
// state.
func New() *ARAM {
	a := &ARAM{}
	a.Reset()
	return a
}

// Reset zeroes the backing array and re-enables the IPL ROM overlay.
func (a *ARAM) Reset() {
	for i := range a.mem {
		a.mem[i] = 0
	}
	a.overlay = true
}

// SetOverlay enables or disables the IPL ROM mapping at $FFC0-$FFFF. With
// the overlay disabled, that range reads whatever RAM holds there.
func (a *ARAM) SetOverlay(on bool) { a.overlay = on }

// Overlay reports whether the IPL ROM is currently mapped.
func (a *ARAM) Overlay() bool { return a.overlay }

// IsIO reports whether addr falls in the $00F0-$00FF control window.
func IsIO(addr uint16) bool { return addr >= IOBase && addr <= IOEnd }

// isOverlay reports whether addr falls in the IPL ROM's mapped range.
func (a *ARAM) isOverlay(addr uint16) bool {
	return a.overlay && addr >= iplrom.Base
}

// Read returns the byte at addr. Callers (internal/apu) must intercept the
// I/O window themselves; Read on that range returns the raw backing byte,
// which is never the value the CPU should observe.
func (a *ARAM) Read(addr uint16) byte {
	if a.isOverlay(addr) {
		return iplrom.Program[addr-iplrom.Base]
	}
	return a.mem[addr]
}

// Write stores value at addr. Writes into the IPL ROM overlay range are
// silently dropped, matching real hardware: the overlay is read-only while
// mapped, and the RAM underneath is only reachable once the overlay is
// switched off.
func (a *ARAM) Write(addr uint16, value byte) {
	if a.isOverlay(addr) {
		return
	}
	a.mem[addr] = value
}

// WriteRaw stores directly into the backing array even under the overlay,
// for loader/snapshot ingestion that must seed RAM sitting beneath the ROM.
func (a *ARAM) WriteRaw(addr uint16, value byte) {
	a.mem[addr] = value
}

// ReadRaw reads the backing array directly, bypassing the overlay. Used by
// snapshot save/export paths that need the true RAM contents.
func (a *ARAM) ReadRaw(addr uint16) byte {
	return a.mem[addr]
}

// ResetVector returns the little-endian reset vector the CPU loads PC from,
// honoring whatever is currently mapped at $FFFE/$FFFF.
func (a *ARAM) ResetVector() uint16 {
	lo := a.Read(iplrom.ResetVectorLo)
	hi := a.Read(iplrom.ResetVectorHi)
	return uint16(lo) | uint16(hi)<<8
}

// Bytes returns a copy of the full 64 KiB backing array, bypassing the
// overlay. Seeding RAM from a snapshot image goes through LoadImage.
func (a *ARAM) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, a.mem[:])
	return out
}

// LoadImage replaces the backing array wholesale from a 64 KiB image.
func (a *ARAM) LoadImage(img []byte) {
	copy(a.mem[:], img)
}

type aramState struct {
	Mem     [Size]byte
	Overlay bool
}

// SaveState serializes ARAM contents and overlay flag via gob.
func (a *ARAM) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	_ = enc.Encode(aramState{Mem: a.mem, Overlay: a.overlay})
	return buf.Bytes()
}

// LoadState restores ARAM contents and overlay flag from SaveState's output.
func (a *ARAM) LoadState(data []byte) {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var s aramState
	if err := dec.Decode(&s); err != nil {
		return
	}
	a.mem = s.Mem
	a.overlay = s.Overlay
}
