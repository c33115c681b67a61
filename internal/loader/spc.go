// Package loader parses .spc snapshot files and ingests them into a wired
// machine.Machine, the same fixed-offset binary-header pattern the cart
// package uses to read a Game Boy ROM header, applied here to a much larger
// fixed layout: a 33-byte file header, an ID666 tag block, a 64 KiB ARAM
// image, and a 128-byte DSP register image.
package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"

	"github.com/FabianRolfMatthiasNoll/snesapu/internal/machine"
)

// Fixed byte offsets within a .spc file. The layout is a 33-byte file
// header, a one-byte ID666 presence flag, a 2-byte version marker, a CPU
// register snapshot, an ID666 tag block, a 64 KiB ARAM image, a 128-byte
// DSP register image, and 128 trailing reserved/extra-RAM bytes.
const (
	offHeader    = 0x00
	headerLen    = 0x21
	offID666     = 0x21
	offVersion   = 0x22
	offPC        = 0x25
	offA         = 0x27
	offX         = 0x28
	offY         = 0x29
	offPSW       = 0x2A
	offSP        = 0x2B
	offTagsStart = 0x2E
	offARAM      = 0x100
	aramLen      = 0x10000
	offDSPRegs   = 0x10100
	dspRegsLen   = 0x80

	// FileSize is the exact size every well-formed .spc file occupies:
	// header through DSP registers, plus a trailing reserved/extra-RAM
	// region ingestion never reads.
	FileSize = 0x10200
)

var spcMagic = []byte("SNES-SPC700 Sound File Data v0.30")

// ErrBadHeader is returned when the file does not begin with the expected
// magic string.
var ErrBadHeader = errors.New("loader: not an SPC snapshot")

// ErrTruncated is returned when the file is shorter than the fixed layout
// requires to hold an ARAM image and DSP register block.
var ErrTruncated = errors.New("loader: truncated SPC snapshot")

// Tags holds the best-effort ID666 metadata block. Fields are left zero
// when the block is absent or malformed; tag parsing never fails the load.
type Tags struct {
	SongTitle string
	GameTitle string
	Artist    string
	Comments  string
}

// DSP register offsets this package must defer past the general register
// sweep: KOF clears any already-running voices before KON starts new ones,
// avoiding the spurious key-on a single pass in register order would cause
// if KON happened to be written before KOF in the captured image.
const (
	regKON = 0x4C
	regKOF = 0x5C
	regFLG = 0x6C
)

const (
	flgMute      = 1 << 6
	flgSoftReset = 1 << 7
)

// Snapshot is a parsed .spc file, ready for Ingest.
type Snapshot struct {
	PC      uint16
	A, X, Y byte
	PSW     byte
	SP      byte
	ARAM    [aramLen]byte
	DSPRegs [dspRegsLen]byte
	Tags    Tags
	HasTags bool
}

// Parse decodes raw into a Snapshot without touching any machine state.
func Parse(raw []byte) (*Snapshot, error) {
	if len(raw) < headerLen || !bytes.HasPrefix(raw, spcMagic) {
		return nil, ErrBadHeader
	}
	if len(raw) < offDSPRegs+dspRegsLen {
		return nil, ErrTruncated
	}

	s := &Snapshot{
		PC:  binary.LittleEndian.Uint16(raw[offPC:]),
		A:   raw[offA],
		X:   raw[offX],
		Y:   raw[offY],
		PSW: raw[offPSW],
		SP:  raw[offSP],
	}
	copy(s.ARAM[:], raw[offARAM:offARAM+aramLen])
	copy(s.DSPRegs[:], raw[offDSPRegs:offDSPRegs+dspRegsLen])

	if raw[offID666] == 26 || raw[offID666] == 1 {
		s.Tags = parseID666(raw[offTagsStart:offARAM])
		s.HasTags = true
	}
	return s, nil
}

func parseID666(block []byte) Tags {
	field := func(start, length int) string {
		if start+length > len(block) {
			return ""
		}
		return strings.TrimRight(string(block[start:start+length]), "\x00 ")
	}
	return Tags{
		SongTitle: field(0x00, 32),
		GameTitle: field(0x20, 32),
		Artist:    field(0xB1, 32),
		Comments:  field(0x40, 32),
	}
}

// Ingest seeds m with the snapshot's state in the documented order: ARAM
// first, then the timer/control registers re-applied through the normal
// write path so they land configured the same way a live control write
// would configure them, then the DSP registers in two passes to avoid a
// spurious key-on from whatever order KON and KOF happen to occupy in the
// captured register image, then FLG's reset and mute bits forced off so
// the snapshot is audible immediately, and finally the CPU register file.
func Ingest(m *machine.Machine, s *Snapshot) {
	dev := m.Device()

	dev.ARAM().LoadImage(s.ARAM[:])

	dev.Write(0x00F1, s.ARAM[0x00F1])
	dev.Write(0x00FA, s.ARAM[0x00FA])
	dev.Write(0x00FB, s.ARAM[0x00FB])
	dev.Write(0x00FC, s.ARAM[0x00FC])

	d := dev.DSP()
	for idx := 0; idx < dspRegsLen; idx++ {
		if idx == regKON || idx == regKOF || idx == regFLG {
			continue
		}
		d.WriteAddr(byte(idx))
		d.WriteData(s.DSPRegs[idx])
	}
	d.WriteAddr(regKOF)
	d.WriteData(s.DSPRegs[regKOF])
	d.WriteAddr(regKON)
	d.WriteData(s.DSPRegs[regKON])

	flg := s.DSPRegs[regFLG] &^ (flgSoftReset | flgMute)
	d.WriteAddr(regFLG)
	d.WriteData(flg)

	cpu := dev.CPU()
	cpu.PC = s.PC
	cpu.A, cpu.X, cpu.Y = s.A, s.X, s.Y
	cpu.PSW = s.PSW
	cpu.SP = s.SP
}

// Load parses raw and ingests it into m in one call.
func Load(m *machine.Machine, raw []byte) error {
	s, err := Parse(raw)
	if err != nil {
		return err
	}
	Ingest(m, s)
	return nil
}
