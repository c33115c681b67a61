// Command spcrunner drives the SPC700 interpreter instruction-by-instruction
// against a raw binary program or an .spc snapshot, for interpreter
// conformance testing outside a full audio pipeline.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/FabianRolfMatthiasNoll/snesapu/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/loader"
	"github.com/FabianRolfMatthiasNoll/snesapu/internal/machine"
)

func main() {
	binPath := flag.String("bin", "", "raw binary program to load directly into ARAM")
	orgAddr := flag.Int("org", 0x0200, "ARAM address the -bin program is loaded at and PC starts from")
	spcPath := flag.String("spc", "", "an .spc snapshot to load instead of -bin")
	steps := flag.Int("steps", 1_000_000, "max instructions to execute")
	trace := flag.Bool("trace", false, "print PC/opcode/cycle cost for every instruction")
	traceOnFail := flag.Bool("traceOnFail", false, "on a hard interpreter error, print the recent instruction ring")
	ringSize := flag.Int("traceWindow", 256, "instruction ring capacity used by -traceOnFail")
	relaxed := flag.Bool("relaxed", false, "count unimplemented opcodes instead of failing hard")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout; 0 disables")
	flag.Parse()

	if *binPath == "" && *spcPath == "" {
		log.Fatal("one of -bin or -spc is required")
	}

	m := machine.New(machine.Config{
		RelaxedOpcodes:      *relaxed,
		InstructionRingSize: *ringSize,
	})
	dev := m.Device()

	if *spcPath != "" {
		raw, err := os.ReadFile(*spcPath)
		if err != nil {
			log.Fatalf("read spc: %v", err)
		}
		if err := loader.Load(m, raw); err != nil {
			log.Fatalf("load spc: %v", err)
		}
	} else {
		prog, err := os.ReadFile(*binPath)
		if err != nil {
			log.Fatalf("read bin: %v", err)
		}
		dev.ARAM().SetOverlay(false)
		for i, b := range prog {
			dev.ARAM().WriteRaw(uint16(*orgAddr+i), b)
		}
		dev.CPU().PC = uint16(*orgAddr)
	}

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}

	c := dev.CPU()
	var cycles int
	for i := 0; i < *steps; i++ {
		pc := c.PC
		consumed, err := c.Step()
		cycles += consumed
		if *trace {
			fmt.Printf("PC=%04X cyc=%d A=%02X X=%02X Y=%02X SP=%02X PSW=%02X\n",
				pc, consumed, c.A, c.X, c.Y, c.SP, c.PSW)
		}
		if err != nil {
			fmt.Printf("interpreter error at PC=%04X: %v\n", pc, err)
			if *traceOnFail {
				printRing(c.InstructionRing())
			}
			os.Exit(1)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("timeout after %s\n", time.Since(start).Truncate(time.Millisecond))
			os.Exit(2)
		}
	}
	fmt.Printf("done: steps=%d cycles=%d elapsed=%s\n", *steps, cycles, time.Since(start).Truncate(time.Millisecond))
}

func printRing(ring *cpu.InstructionRing) {
	entries := ring.Entries()
	if len(entries) == 0 {
		return
	}
	fmt.Printf("--- recent instructions (last %d) ---\n", len(entries))
	for _, e := range entries {
		fmt.Printf("PC=%04X OP=%02X\n", e.PC, e.Opcode)
	}
	fmt.Println("--- end trace ---")
}
