// Command apuplay loads an .spc snapshot and either plays it live through
// the host's audio backend or renders a fixed number of PCM frames
// headlessly, with an optional CRC32 checksum assertion for regression
// testing.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"log"
	"os"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/snesapu/internal/loader"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/machine"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/ui"
)

type cliFlags struct {
	SPCPath  string
	Stereo   bool
	Headless bool
	Frames   int
	Expect   string

	BootIPLHLE        bool
	TimerIRQInjection bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.SPCPath, "spc", "", "path to an .spc snapshot")
	flag.BoolVar(&f.Stereo, "stereo", true, "output true stereo; false folds to mono")
	flag.BoolVar(&f.Headless, "headless", false, "render PCM frames without opening an audio device")
	flag.IntVar(&f.Frames, "frames", 32000, "frames to render in headless mode")
	flag.StringVar(&f.Expect, "expect", "", "assert the headless PCM buffer's CRC32 (hex)")
	flag.BoolVar(&f.BootIPLHLE, "bootiplhle", false, "enable the boot upload half of the IPL handshake")
	flag.BoolVar(&f.TimerIRQInjection, "timerirq", true, "raise a CPU IRQ on timer 0 overflow")
	flag.Parse()
	return f
}

func runHeadless(m *machine.Machine, frames int, expect string) error {
	if frames <= 0 {
		frames = 1
	}
	buf := make([]byte, 0, frames*4)
	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := m.Step(32); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		l, r := m.MixSample()
		buf = append(buf, byte(l), byte(l>>8), byte(r), byte(r>>8))
	}
	dur := time.Since(start)
	crc := crc32.ChecksumIEEE(buf)
	log.Printf("headless: frames=%d elapsed=%s pcm_crc32=%08x", frames, dur.Truncate(time.Millisecond), crc)

	if expect != "" {
		want := strings.TrimPrefix(strings.ToLower(expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func main() {
	f := parseFlags()
	if f.SPCPath == "" {
		log.Fatal("-spc is required")
	}

	raw, err := os.ReadFile(f.SPCPath)
	if err != nil {
		log.Fatalf("read spc: %v", err)
	}
	snap, err := loader.Parse(raw)
	if err != nil {
		log.Fatalf("parse spc: %v", err)
	}
	if snap.HasTags {
		log.Printf("loaded %q (%s) — %s", snap.Tags.SongTitle, snap.Tags.GameTitle, snap.Tags.Artist)
	}

	m := machine.New(machine.Config{
		OverlayEnabled:    true,
		BootIPLHLE:        f.BootIPLHLE,
		TimerIRQInjection: f.TimerIRQInjection,
		MixGain:           1,
	})
	loader.Ingest(m, snap)

	if f.Headless {
		if err := runHeadless(m, f.Frames, f.Expect); err != nil {
			log.Fatal(err)
		}
		return
	}

	player, err := ui.NewPlayer(m, ui.Config{Stereo: f.Stereo})
	if err != nil {
		log.Fatalf("new player: %v", err)
	}
	player.Play()

	// Block the main goroutine while audio streams; Ctrl-C exits.
	select {}
}
