package cpu

import "testing"

// TestAddwFlagsVector pins a known-good vector: YA=0x1234 plus the dp word
// 0x0001 yields YA=0x1235 with C=0, V=0.
func TestAddwFlagsVector(t *testing.T) {
	bus := newMemBus()
	bus.mem[0x0060] = 0x01
	bus.mem[0x0061] = 0x00
	c := New(bus, Config{})
	c.Y, c.A = 0x12, 0x34

	res := c.addw(c.read16(0x0060))
	c.setYA(res)

	if c.ya() != 0x1235 {
		t.Fatalf("expected YA=0x1235, got %04X", c.ya())
	}
	if c.flag(flagC) {
		t.Fatal("expected C=0")
	}
	if c.flag(flagV) {
		t.Fatal("expected V=0")
	}
}

func TestSubwBorrow(t *testing.T) {
	bus := newMemBus()
	c := New(bus, Config{})
	c.Y, c.A = 0x00, 0x00
	res := c.subw(0x0001)
	if res != 0xFFFF {
		t.Fatalf("expected wraparound to 0xFFFF, got %04X", res)
	}
	if c.flag(flagC) {
		t.Fatal("expected C=0 (borrow occurred)")
	}
}

func TestCmpwSetsFlagsWithoutModifyingYA(t *testing.T) {
	bus := newMemBus()
	c := New(bus, Config{})
	c.Y, c.A = 0x00, 0x10
	c.cmpw(0x0010)
	if !c.flag(flagZ) {
		t.Fatal("expected Z=1 for equal comparison")
	}
	if c.ya() != 0x0010 {
		t.Fatal("expected CMPW to leave YA untouched")
	}
}

func TestMulSetsZNFromHighByte(t *testing.T) {
	bus := newMemBus()
	c := New(bus, Config{})
	c.Y, c.A = 0x00, 0x00
	c.mul()
	if c.ya() != 0 {
		t.Fatalf("expected 0*0=0, got %04X", c.ya())
	}
	if !c.flag(flagZ) {
		t.Fatal("expected Z=1")
	}

	c.Y, c.A = 10, 20
	c.mul()
	if c.ya() != 200 {
		t.Fatalf("expected 10*20=200, got %d", c.ya())
	}
}

func TestMovwYASetsFlags(t *testing.T) {
	bus := newMemBus()
	bus.mem[0x0070] = 0x00
	bus.mem[0x0071] = 0x80
	bus.loadProgram(0x0B00, 0xBA, 0x70) // MOVW YA,$70
	c := New(bus, Config{})
	c.PC = 0x0B00
	if _, err := c.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ya() != 0x8000 {
		t.Fatalf("expected YA=0x8000, got %04X", c.ya())
	}
	if !c.flag(flagN) {
		t.Fatal("expected N=1 for a negative 16-bit result")
	}
}
