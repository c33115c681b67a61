// Package mailbox implements the APU's four-byte bidirectional message
// registers at $00F4-$00F7. The two directions are independent storage:
// what the host writes is not what the host reads back.
package mailbox

import (
	"bytes"
	"encoding/gob"
)

// Slots is the number of mailbox byte registers per direction.
const Slots = 4

// Mailbox holds the host-to-APU and APU-to-host register files. The SPC700
// side accesses these through the $F4-$F7 ARAM I/O window; the host side
// accesses them through CPUWritePort/CPUReadPort.
type Mailbox struct {
	hostToAPU [Slots]byte // written by the host, read by the SPC700
	apuToHost [Slots]byte // written by the SPC700, read by the host
}

// New returns a zeroed Mailbox.
func New() *Mailbox { return &Mailbox{} }

// Reset clears both register files.
func (m *Mailbox) Reset() {
	m.hostToAPU = [Slots]byte{}
	m.apuToHost = [Slots]byte{}
}

// CPURead services an SPC700 read at $F4+i, returning what the host last
// wrote to that slot.
func (m *Mailbox) CPURead(slot int) byte { return m.hostToAPU[slot&3] }

// CPUWrite services an SPC700 write at $F4+i, updating the slot the host
// reads from.
func (m *Mailbox) CPUWrite(slot int, v byte) { m.apuToHost[slot&3] = v }

// HostWrite is the host-facing write: it updates the slot the SPC700
// reads at $F4+i. Callers are responsible for waking a sleeping CPU on
// this event, since that interaction crosses into the device/CPU wiring
// this package doesn't own.
func (m *Mailbox) HostWrite(slot int, v byte) { m.hostToAPU[slot&3] = v }

// HostRead is the host-facing read: it returns the slot the SPC700 last
// wrote via $F4+i.
func (m *Mailbox) HostRead(slot int) byte { return m.apuToHost[slot&3] }

type mailboxState struct {
	HostToAPU [Slots]byte
	APUToHost [Slots]byte
}

// SaveState serializes both register files via gob.
func (m *Mailbox) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	_ = enc.Encode(mailboxState{HostToAPU: m.hostToAPU, APUToHost: m.apuToHost})
	return buf.Bytes()
}

// LoadState restores both register files from SaveState's output.
func (m *Mailbox) LoadState(data []byte) {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var s mailboxState
	if err := dec.Decode(&s); err != nil {
		return
	}
	m.hostToAPU = s.HostToAPU
	m.apuToHost = s.APUToHost
}
