package dsp

// echoFramesPerEDLUnit matches real hardware: each EDL unit is a 16ms
// (2 KiB) delay block, and at 32 kHz with 4 bytes per echo frame that is
// 512 frames.
const echoFramesPerEDLUnit = 512

func clampInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// MixFrame advances every active voice by one output frame, mixes the dry
// and echo buses, updates the ARAM echo buffer, and returns the stereo
// PCM sample for this frame.
func (d *DSP) MixFrame() (int16, int16) {
	flg := d.regs[regFLG]
	var dryL, dryR, echoInL, echoInR int32

	for i := 0; i < 8; i++ {
		vo := &d.voices[i]
		if !vo.active {
			vo.outx = 0
			continue
		}
		resampled := d.advanceResampler(i)
		env := d.stepEnvelope(i)
		weighted := int32(float64(resampled) * env)
		vo.outx = int8(clampInt16(weighted) >> 8)

		if d.cfg.VoiceMute[i] {
			continue
		}
		l := weighted * int32(vo.volL) / 128
		r := weighted * int32(vo.volR) / 128
		dryL += l
		dryR += r
		if d.regs[regEON]&(1<<uint(i)) != 0 {
			echoInL += l
			echoInR += r
		}
	}

	edl := int(d.regs[regEDL] & 0x0F)
	if edl == 0 {
		edl = 1
	}
	echoFrames := edl * echoFramesPerEDLUnit
	base := uint16(d.regs[regESA]) << 8

	var firL, firR int32
	for k := 0; k < 8; k++ {
		idx := ((d.frameIndex-k)%echoFrames + echoFrames) % echoFrames
		addr := base + uint16(idx*4)
		l := int16(uint16(d.mem.ReadRaw(addr)) | uint16(d.mem.ReadRaw(addr+1))<<8)
		r := int16(uint16(d.mem.ReadRaw(addr+2)) | uint16(d.mem.ReadRaw(addr+3))<<8)
		coeff := int32(int8(d.regs[firCoeffOffset(k)]))
		firL += int32(l) * coeff / 128
		firR += int32(r) * coeff / 128
	}

	mvolL := int32(int8(d.regs[regMVOLL]))
	mvolR := int32(int8(d.regs[regMVOLR]))
	evolL := int32(int8(d.regs[regEVOLL]))
	evolR := int32(int8(d.regs[regEVOLR]))

	outL := dryL*mvolL/128 + firL*evolL/128
	outR := dryR*mvolR/128 + firR*evolR/128

	if flg&flgEchoWriteDisable == 0 {
		efb := int32(int8(d.regs[regEFB]))
		wL := clampInt16(echoInL + firL*efb/128)
		wR := clampInt16(echoInR + firR*efb/128)
		writeAddr := base + uint16(d.frameIndex*4)
		d.mem.WriteRaw(writeAddr, byte(wL))
		d.mem.WriteRaw(writeAddr+1, byte(uint16(wL)>>8))
		d.mem.WriteRaw(writeAddr+2, byte(wR))
		d.mem.WriteRaw(writeAddr+3, byte(uint16(wR)>>8))
	}
	d.frameIndex = (d.frameIndex + 1) % echoFrames

	if flg&flgMute != 0 {
		return 0, 0
	}
	return clampInt16(int32(float64(outL) * d.cfg.MixGain)),
		clampInt16(int32(float64(outR) * d.cfg.MixGain))
}
