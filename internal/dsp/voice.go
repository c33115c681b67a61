package dsp

import "math"

type envPhase int

const (
	envAttack envPhase = iota
	envDecay
	envSustain
)

// voice holds one S-DSP channel's register mirror and playback runtime
// state. Its fields are unexported, so DSP.SaveState copies them through
// voiceState to checkpoint mid-sample playback exactly.
type voice struct {
	// register mirror
	volL, volR int8
	pitch      uint16
	srcn       byte
	adsr1      byte
	adsr2      byte
	gain       byte

	// BRR decode state
	active    bool
	addr      uint16
	s1, s2    int16
	block     [16]int16
	blockPos  int
	blockEnd  bool
	blockLoop bool

	// resampler
	phase   float64
	history [4]int16

	// envelope
	envMode        envPhase
	env            float64
	envTickCounter int

	// last computed outputs, for ENVX/OUTX readback
	outx int8
}

// voiceState is the gob-encodable snapshot of a voice's register mirror
// and runtime state; voice itself keeps unexported fields for package-
// internal use.
type voiceState struct {
	VolL, VolR     int8
	Pitch          uint16
	SRCN           byte
	ADSR1, ADSR2   byte
	Gain           byte
	Active         bool
	Addr           uint16
	S1, S2         int16
	Block          [16]int16
	BlockPos       int
	BlockEnd       bool
	BlockLoop      bool
	Phase          float64
	History        [4]int16
	EnvMode        envPhase
	Env            float64
	EnvTickCounter int
	Outx           int8
}

func (v *voice) snapshot() voiceState {
	return voiceState{
		VolL: v.volL, VolR: v.volR, Pitch: v.pitch, SRCN: v.srcn,
		ADSR1: v.adsr1, ADSR2: v.adsr2, Gain: v.gain,
		Active: v.active, Addr: v.addr, S1: v.s1, S2: v.s2,
		Block: v.block, BlockPos: v.blockPos,
		BlockEnd: v.blockEnd, BlockLoop: v.blockLoop,
		Phase: v.phase, History: v.history,
		EnvMode: v.envMode, Env: v.env, EnvTickCounter: v.envTickCounter,
		Outx: v.outx,
	}
}

func (v *voice) restore(s voiceState) {
	v.volL, v.volR, v.pitch, v.srcn = s.VolL, s.VolR, s.Pitch, s.SRCN
	v.adsr1, v.adsr2, v.gain = s.ADSR1, s.ADSR2, s.Gain
	v.active, v.addr, v.s1, v.s2 = s.Active, s.Addr, s.S1, s.S2
	v.block, v.blockPos = s.Block, s.BlockPos
	v.blockEnd, v.blockLoop = s.BlockEnd, s.BlockLoop
	v.phase, v.history = s.Phase, s.History
	v.envMode, v.env, v.envTickCounter = s.EnvMode, s.Env, s.EnvTickCounter
	v.outx = s.Outx
}

func (v *voice) resetRuntime() {
	addr, srcn, adsr1, adsr2, gain := v.addr, v.srcn, v.adsr1, v.adsr2, v.gain
	volL, volR, pitch := v.volL, v.volR, v.pitch
	*v = voice{}
	v.addr, v.srcn, v.adsr1, v.adsr2, v.gain = addr, srcn, adsr1, adsr2, gain
	v.volL, v.volR, v.pitch = volL, volR, pitch
}

// loopAddress re-reads the directory's loop pointer for this voice's SRCN.
func (d *DSP) loopAddress(srcn byte) uint16 {
	_, loop := d.directoryEntry(srcn)
	return loop
}

// decodeNextSample advances BRR decoding for voice i by one sample,
// pulling a new 9-byte block from ARAM when the current block is
// exhausted, and handling END/LOOP per the block header.
func (d *DSP) decodeNextSample(i int) int16 {
	vo := &d.voices[i]
	if vo.blockPos >= 16 {
		if vo.blockEnd {
			if vo.blockLoop {
				vo.addr = d.loopAddress(vo.srcn)
			} else {
				vo.active = false
				return 0
			}
		}
		header := d.mem.ReadRaw(vo.addr)
		var data [8]byte
		for k := 0; k < 8; k++ {
			data[k] = d.mem.ReadRaw(vo.addr + 1 + uint16(k))
		}
		decodeBRRBlock(header, data, &vo.s1, &vo.s2, &vo.block)
		vo.blockEnd = header&brrEnd != 0
		vo.blockLoop = header&brrLoop != 0
		if vo.blockEnd {
			d.endxLatch |= 1 << uint(i)
		}
		vo.addr += 9
		vo.blockPos = 0
	}
	s := vo.block[vo.blockPos]
	vo.blockPos++
	return s
}

// gaussian4 is a small 4-tap kernel shaped like the real resampler's
// exp(-2*d^2) weighting, normalized so the four taps sum to 1 for any
// fractional offset.
func gaussian4(frac float64) [4]float64 {
	var w [4]float64
	var sum float64
	// Taps sample the kernel at offsets -1, 0, 1, 2 relative to frac so the
	// interpolation stays centered between history[1] and history[2].
	offsets := [4]float64{-1 - frac, -frac, 1 - frac, 2 - frac}
	for k, d := range offsets {
		w[k] = math.Exp(-2 * d * d)
		sum += w[k]
	}
	for k := range w {
		w[k] /= sum
	}
	return w
}

// advanceResampler steps voice i's 14-bit phase accumulator by its pitch
// and returns the interpolated output sample for this output frame.
func (d *DSP) advanceResampler(i int) int16 {
	vo := &d.voices[i]
	if !vo.active {
		return 0
	}
	step := float64(vo.pitch) / 4096.0
	vo.phase += step
	for vo.phase >= 1.0 {
		vo.phase -= 1.0
		vo.history[0] = vo.history[1]
		vo.history[1] = vo.history[2]
		vo.history[2] = vo.history[3]
		vo.history[3] = d.decodeNextSample(i)
	}
	w := gaussian4(vo.phase)
	out := w[0]*float64(vo.history[0]) + w[1]*float64(vo.history[1]) +
		w[2]*float64(vo.history[2]) + w[3]*float64(vo.history[3])
	if out > 32767 {
		out = 32767
	} else if out < -32768 {
		out = -32768
	}
	return int16(out)
}

// ratePeriod approximates the classic rate-table shape: higher rate index
// advances more often. rate 0 never advances.
func ratePeriod(rate byte) int {
	if rate == 0 {
		return 0
	}
	return int(math.Round(2048.0 / float64(rate+1)))
}

// stepEnvelope advances voice i's envelope by one output frame and
// returns the current envelope value (0..1).
func (d *DSP) stepEnvelope(i int) float64 {
	vo := &d.voices[i]
	if !vo.active {
		return 0
	}

	if vo.adsr1&0x80 != 0 {
		d.stepADSR(vo)
	} else {
		d.stepGain(vo)
	}
	return vo.env
}

func (d *DSP) stepADSR(vo *voice) {
	ar := vo.adsr1 & 0x0F
	dr := (vo.adsr1 >> 4) & 0x07
	sl := float64((vo.adsr2>>5)&0x07+1) / 8.0
	sr := vo.adsr2 & 0x1F

	switch vo.envMode {
	case envAttack:
		period := ratePeriod(ar<<1 | 1)
		if period == 0 || stepTick(vo, period) {
			vo.env += 1.0 / 32.0
			if vo.env >= 1.0 {
				vo.env = 1.0
				vo.envMode = envDecay
			}
		}
	case envDecay:
		period := ratePeriod(dr<<1 | 1)
		if stepTick(vo, period) {
			vo.env -= vo.env * 0.03125
			if vo.env <= sl {
				vo.envMode = envSustain
			}
		}
	case envSustain:
		period := ratePeriod(sr)
		if period > 0 && stepTick(vo, period) {
			vo.env -= vo.env * 0.015625
		}
	}
	if vo.env < 0 {
		vo.env = 0
	}
}

func (d *DSP) stepGain(vo *voice) {
	if vo.gain&0x80 == 0 {
		vo.env = float64(vo.gain&0x7F) / 127.0
		return
	}
	rate := vo.gain & 0x1F
	increasing := (vo.gain>>5)&0x3 < 2
	period := ratePeriod(rate)
	if period == 0 || !stepTick(vo, period) {
		return
	}
	if increasing {
		vo.env += 1.0 / 64.0
		if vo.env > 1.0 {
			vo.env = 1.0
		}
	} else {
		vo.env -= 1.0 / 64.0
		if vo.env < 0 {
			vo.env = 0
		}
	}
}

// stepTick reports whether a rate period has elapsed, advancing the
// voice's frame counter each call.
func stepTick(vo *voice, period int) bool {
	if period <= 0 {
		return true
	}
	vo.envTickCounter++
	if vo.envTickCounter >= period {
		vo.envTickCounter = 0
		return true
	}
	return false
}
