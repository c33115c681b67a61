// Package ui drives audio playback from a wired machine.Machine: an
// io.Reader pulling PCM frames on demand, wrapped in an ebiten audio
// player. There is no video or input surface; this subsystem's host
// contract ends at a stereo PCM stream.
package ui

import (
	"encoding/binary"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/FabianRolfMatthiasNoll/snesapu/internal/machine"
)

// cyclesPerSample is the host's synthetic-cycle budget per mixed frame,
// matching the APU's documented ~32 cycles per 32 kHz sample.
const cyclesPerSample = 32

// apuStream implements io.Reader by stepping the machine and pulling one
// stereo PCM frame from the DSP per 4-byte chunk requested, converting to
// 16-bit little-endian stereo (or folded mono).
type apuStream struct {
	m      *machine.Machine
	stereo bool
}

func (s *apuStream) Read(p []byte) (int, error) {
	n := len(p) - len(p)%4
	for i := 0; i < n; i += 4 {
		if err := s.m.Step(cyclesPerSample); err != nil {
			return i, err
		}
		l, r := s.m.MixSample()
		if !s.stereo {
			mono := int16((int32(l) + int32(r)) / 2)
			l, r = mono, mono
		}
		binary.LittleEndian.PutUint16(p[i:], uint16(l))
		binary.LittleEndian.PutUint16(p[i+2:], uint16(r))
	}
	return n, nil
}

// Player wraps an ebiten audio context/player pair driven by an apuStream.
type Player struct {
	ctx    *audio.Context
	player *audio.Player
	stream *apuStream
}

// NewPlayer constructs a Player over m using cfg's sample rate, buffer
// size, and stereo/mono fold. The returned Player is not yet playing;
// call Play to start.
func NewPlayer(m *machine.Machine, cfg Config) (*Player, error) {
	cfg.Defaults()
	ctx := audio.NewContext(cfg.SampleRate)
	stream := &apuStream{m: m, stereo: cfg.Stereo}
	p, err := ctx.NewPlayer(stream)
	if err != nil {
		return nil, err
	}
	p.SetBufferSize(time.Duration(cfg.BufferMs) * time.Millisecond)
	return &Player{ctx: ctx, player: p, stream: stream}, nil
}

// Play starts streaming PCM to the audio backend.
func (p *Player) Play() { p.player.Play() }

// Close stops playback and releases the underlying player.
func (p *Player) Close() error { return p.player.Close() }
