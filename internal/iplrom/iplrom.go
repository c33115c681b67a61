// Package iplrom holds the 64-byte boot program the SPC700 sees mapped at
// $FFC0-$FFFF when the IPL overlay is enabled, and the reset vector pointing
// into it.
package iplrom

// Size is the number of bytes the IPL ROM occupies at the top of the address
// space ($FFC0-$FFFF inclusive).
const Size = 0x40

// Base is the first address the ROM overlay occupies.
const Base uint16 = 0xFFC0

// ResetVectorLo and ResetVectorHi are the addresses of the little-endian
// reset vector, always inside the overlay region regardless of where the
// boot program body starts.
const (
	ResetVectorLo uint16 = 0xFFFE
	ResetVectorHi uint16 = 0xFFFF
)

// Program is a small handshake bootstrap assembled against this module's own
// SPC700 opcode table (internal/cpu), not a byte-for-byte copy of Nintendo's
// mask ROM. It implements the readiness half of the boot handshake: announce
// readiness by writing $AA to mailbox port 0 and $BB to port 1, then park in
// a tight loop. The upload half of the handshake (receiving a destination
// address and a byte stream over the mailbox once the host writes $CC to
// port 0) is handled at the device layer by internal/apu's boot IPL HLE, a
// device-level affordance rather than something driven by interpreting ROM
// bytes.
var Program = buildProgram()

func buildProgram() [Size]byte {
	var p [Size]byte
	i := 0
	put := func(b ...byte) {
		copy(p[i:], b)
		i += len(b)
	}
	// MOV $F4, #$AA ; slot0 <- 0xAA (ready)
	put(0x8F, 0xAA, 0xF4)
	// MOV $F5, #$BB ; slot1 <- 0xBB (ready)
	put(0x8F, 0xBB, 0xF5)
	spin := i
	// BRA spin (park forever)
	put(0x2F, relOffset(i+2, spin))

	// Reset vector points at the handshake program's entry point, offset 0
	// within this ROM (address Base).
	p[ResetVectorLo-Base] = byte(Base & 0xFF)
	p[ResetVectorHi-Base] = byte(Base >> 8)
	return p
}

func relOffset(afterPC, target int) byte {
	return byte(int8(target - afterPC))
}
