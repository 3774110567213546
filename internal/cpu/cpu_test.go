package cpu

import (
	"errors"
	"testing"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
)

// newCPUWithCode places code at the entry point and powers up.
func newCPUWithCode(code []byte) *CPU {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], code)
	c := New(bus.New(cart.NewNoBanking(rom), nil))
	c.PowerUp()
	return c
}

// run steps n times the way the driver does, failing on any error.
func run(t *testing.T, c *CPU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		c.AdvanceInterruptState()
		if err := c.Step(); err != nil {
			t.Fatalf("step %d at %04X: %v", i, c.CurrentPC(), err)
		}
	}
}

// cyclesOf returns the cost of the next step.
func cyclesOf(t *testing.T, c *CPU) uint64 {
	t.Helper()
	before := c.Bus().Cycles()
	run(t, c, 1)
	return c.Bus().Cycles() - before
}

func TestRegisters_PairsRoundTrip(t *testing.T) {
	var r Registers
	for v := 0; v <= 0xFFFF; v++ {
		w := uint16(v)
		r.SetBC(w)
		r.SetDE(w)
		r.SetHL(w)
		r.SetAF(w)
		if r.BC() != w || r.DE() != w || r.HL() != w {
			t.Fatalf("pair round trip failed for %04X", w)
		}
		if r.AF() != w&0xFFF0 || r.F&0x0F != 0 {
			t.Fatalf("AF(%04X) = %04X, F=%02X", w, r.AF(), r.F)
		}
	}
}

func TestPowerUp(t *testing.T) {
	c := newCPUWithCode(nil)
	r := c.Regs()
	if r.AF() != 0x01B0 || r.BC() != 0x0013 || r.DE() != 0x00D8 || r.HL() != 0x014D {
		t.Fatalf("registers AF=%04X BC=%04X DE=%04X HL=%04X", r.AF(), r.BC(), r.DE(), r.HL())
	}
	if c.SP() != 0xFFFE || c.PC() != 0x0100 || c.IME() {
		t.Fatalf("SP=%04X PC=%04X IME=%v", c.SP(), c.PC(), c.IME())
	}
	if got := c.Bus().Load(0xFF0F); got != 0xE1 {
		t.Fatalf("IF = %02X want E1", got)
	}
}

func TestTables(t *testing.T) {
	illegal := map[byte]bool{
		0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true, 0xEB: true,
		0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
	}
	defined := 0
	for op := 0; op < 256; op++ {
		in := Lookup(byte(op), false)
		if in.Defined() == illegal[byte(op)] {
			t.Errorf("opcode %02X defined=%v", op, in.Defined())
		}
		if in.Defined() {
			defined++
			if in.Mnemonic == "" {
				t.Errorf("opcode %02X has no mnemonic", op)
			}
		}
		if !Lookup(byte(op), true).Defined() {
			t.Errorf("CB %02X undefined", op)
		}
	}
	if defined != 245 {
		t.Fatalf("defined primary entries = %d want 245", defined)
	}
	if Lookup(0xCB, false).Cycles != 0 {
		t.Fatalf("prefix entry carries a cost")
	}
}

func TestStep_UnimplementedOpcode(t *testing.T) {
	c := newCPUWithCode([]byte{0x00, 0xD3})
	run(t, c, 1)
	err := c.Step()
	var de *DecodeError
	if !errors.As(err, &de) || de.Opcode != 0xD3 || de.Addr != 0x0101 || de.Extended {
		t.Fatalf("got %v", err)
	}
	if !errors.Is(err, ErrUnimplemented) {
		t.Fatalf("error does not match ErrUnimplemented")
	}
}

func TestStep_NopThenJump(t *testing.T) {
	c := newCPUWithCode([]byte{0x00, 0xC3, 0x50, 0x01})
	run(t, c, 2)
	if c.PC() != 0x0150 {
		t.Fatalf("PC got %04X want 0150", c.PC())
	}
	if c.Bus().Cycles() != 20 {
		t.Fatalf("cycles got %d want 20", c.Bus().Cycles())
	}
}

func TestCPU_LD_A_d8_And_XOR_A(t *testing.T) {
	c := newCPUWithCode([]byte{0x3E, 0x12, 0xAF}) // LD A,0x12; XOR A
	run(t, c, 1)
	if c.Regs().A != 0x12 {
		t.Fatalf("A after LD got %02x want 12", c.Regs().A)
	}
	run(t, c, 1)
	if r := c.Regs(); r.A != 0 || r.F != 0x80 {
		t.Fatalf("after XOR A got A=%02x F=%02x", r.A, r.F)
	}
}

func TestCPU_LD_a16_A_and_LD_A_a16(t *testing.T) {
	// LD A,0x77; LD (0xC000),A; LD A,0x00; LD A,(0xC000)
	c := newCPUWithCode([]byte{0x3E, 0x77, 0xEA, 0x00, 0xC0, 0x3E, 0x00, 0xFA, 0x00, 0xC0})
	run(t, c, 2)
	if a := c.Bus().Load(0xC000); a != 0x77 {
		t.Fatalf("WRAM at C000 got %02x want 77", a)
	}
	run(t, c, 2)
	if c.Regs().A != 0x77 {
		t.Fatalf("A after LD A,(C000) got %02x want 77", c.Regs().A)
	}
}

func TestALU_Flags(t *testing.T) {
	// SCF (37) sets the carry-in for the ADC/SBC rows.
	cases := []struct {
		name  string
		code  []byte
		steps int
		a, f  byte
	}{
		{"add carries", []byte{0x3E, 0x3A, 0xC6, 0xC6}, 2, 0x00, 0xB0},
		{"sub equal", []byte{0x3E, 0x3E, 0xD6, 0x3E}, 2, 0x00, 0xC0},
		{"cp borrow", []byte{0x3E, 0x3E, 0xFE, 0x40}, 2, 0x3E, 0x50},
		{"sub half borrow", []byte{0x3E, 0x10, 0xD6, 0x01}, 2, 0x0F, 0x60},
		{"and sets H", []byte{0x3E, 0xF0, 0xE6, 0x0F}, 2, 0x00, 0xA0},
		{"daa after add", []byte{0x3E, 0x45, 0xC6, 0x38, 0x27}, 3, 0x83, 0x00},
		{"adc half carry from carry-in", []byte{0x3E, 0x0F, 0x37, 0xCE, 0x00}, 3, 0x10, 0x20},
		{"adc wraps on carry-in", []byte{0x3E, 0xFF, 0x37, 0xCE, 0x00}, 3, 0x00, 0xB0},
		{"adc carry-in plus operand", []byte{0x3E, 0x08, 0x37, 0xCE, 0x07}, 3, 0x10, 0x20},
		{"sbc half borrow from carry-in", []byte{0x3E, 0x10, 0x37, 0xDE, 0x00}, 3, 0x0F, 0x60},
		{"sbc borrows on carry-in", []byte{0x3E, 0x00, 0x37, 0xDE, 0x00}, 3, 0xFF, 0x70},
		{"sbc to zero", []byte{0x3E, 0x02, 0x37, 0xDE, 0x01}, 3, 0x00, 0xC0},
	}
	for _, tc := range cases {
		c := newCPUWithCode(tc.code)
		run(t, c, tc.steps)
		if r := c.Regs(); r.A != tc.a || r.F != tc.f {
			t.Errorf("%s: A=%02X F=%02X want A=%02X F=%02X", tc.name, r.A, r.F, tc.a, tc.f)
		}
	}
}

func TestALU_AddHLAndSP(t *testing.T) {
	// LD HL,0x0FFF; LD BC,0x0001; ADD HL,BC; ADD SP,-1
	c := newCPUWithCode([]byte{0x21, 0xFF, 0x0F, 0x01, 0x01, 0x00, 0x09, 0xE8, 0xFF})
	run(t, c, 3)
	r := c.Regs()
	if r.HL() != 0x1000 || !r.Flag(FlagH) || r.Flag(FlagC) || r.Flag(FlagN) {
		t.Fatalf("ADD HL,BC got HL=%04X F=%02X", r.HL(), r.F)
	}
	run(t, c, 1)
	r = c.Regs()
	if c.SP() != 0xFFFD || !r.Flag(FlagH) || !r.Flag(FlagC) || r.Flag(FlagZ) {
		t.Fatalf("ADD SP,-1 got SP=%04X F=%02X", c.SP(), r.F)
	}
}

func TestPushPop(t *testing.T) {
	// LD BC,0x1234; PUSH BC; POP DE; LD BC,0x12FF; PUSH BC; POP AF
	c := newCPUWithCode([]byte{0x01, 0x34, 0x12, 0xC5, 0xD1, 0x01, 0xFF, 0x12, 0xC5, 0xF1})
	run(t, c, 2)
	if c.SP() != 0xFFFC || c.Bus().Load16(0xFFFC) != 0x1234 {
		t.Fatalf("push left SP=%04X top=%04X", c.SP(), c.Bus().Load16(0xFFFC))
	}
	run(t, c, 1)
	if c.Regs().DE() != 0x1234 || c.SP() != 0xFFFE {
		t.Fatalf("pop got DE=%04X SP=%04X", c.Regs().DE(), c.SP())
	}
	run(t, c, 3)
	if c.Regs().AF() != 0x12F0 {
		t.Fatalf("POP AF got %04X want 12F0", c.Regs().AF())
	}
}

func TestStackRoundTripAllValues(t *testing.T) {
	c := newCPUWithCode(nil)
	sp := c.SP()
	for v := 0; v <= 0xFFFF; v++ {
		c.push16(uint16(v))
		if c.SP() != sp-2 {
			t.Fatalf("push %04X left SP=%04X want %04X", v, c.SP(), sp-2)
		}
		if got := c.pop16(); got != uint16(v) {
			t.Fatalf("pop got %04X want %04X", got, v)
		}
		if c.SP() != sp {
			t.Fatalf("SP after pop of %04X got %04X want %04X", v, c.SP(), sp)
		}
	}
}

func TestCallRet(t *testing.T) {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], []byte{0xCD, 0x00, 0x02}) // CALL 0x0200
	rom[0x0200] = 0xC9                           // RET
	c := New(bus.New(cart.NewNoBanking(rom), nil))
	c.PowerUp()

	if n := cyclesOf(t, c); n != 24 || c.PC() != 0x0200 {
		t.Fatalf("CALL took %d cycles to %04X", n, c.PC())
	}
	if c.Bus().Load16(c.SP()) != 0x0103 {
		t.Fatalf("return address %04X", c.Bus().Load16(c.SP()))
	}
	if n := cyclesOf(t, c); n != 16 || c.PC() != 0x0103 {
		t.Fatalf("RET took %d cycles to %04X", n, c.PC())
	}
}

func TestConditionalCycles(t *testing.T) {
	// XOR A; JR NZ,+2; JR Z,+0; JP NZ,a16; CALL NZ,a16; RET NZ; RET Z
	c := newCPUWithCode([]byte{
		0xAF,
		0x20, 0x02,
		0x28, 0x00,
		0xC2, 0x00, 0x00,
		0xC4, 0x00, 0x00,
		0xC0,
		0xC8,
	})
	run(t, c, 1)
	want := []uint64{8, 12, 12, 12, 8}
	for i, w := range want {
		if got := cyclesOf(t, c); got != w {
			t.Fatalf("branch %d cost %d want %d", i, got, w)
		}
	}
}

func TestExtendedCycles(t *testing.T) {
	// LD HL,0xC000; RLC B; RLC (HL); BIT 0,(HL); SET 7,(HL)
	c := newCPUWithCode([]byte{0x21, 0x00, 0xC0, 0xCB, 0x00, 0xCB, 0x06, 0xCB, 0x46, 0xCB, 0xFE})
	run(t, c, 1)
	for i, w := range []uint64{8, 16, 12, 16} {
		if got := cyclesOf(t, c); got != w {
			t.Fatalf("extended %d cost %d want %d", i, got, w)
		}
	}
	if c.Bus().Load(0xC000) != 0x80 {
		t.Fatalf("SET 7,(HL) wrote %02X", c.Bus().Load(0xC000))
	}
	if c.CurrentPC() != 0x0109 {
		t.Fatalf("CurrentPC %04X want the prefix address 0109", c.CurrentPC())
	}
}

func TestShiftsAndBit(t *testing.T) {
	// LD B,0x81; RLC B; SWAP B; BIT 7,B
	c := newCPUWithCode([]byte{0x06, 0x81, 0xCB, 0x00, 0xCB, 0x30, 0xCB, 0x78})
	run(t, c, 2)
	if r := c.Regs(); r.B != 0x03 || !r.Flag(FlagC) {
		t.Fatalf("RLC B got B=%02X F=%02X", r.B, r.F)
	}
	run(t, c, 1)
	if r := c.Regs(); r.B != 0x30 || r.F != 0 {
		t.Fatalf("SWAP B got B=%02X F=%02X", r.B, r.F)
	}
	run(t, c, 1)
	if r := c.Regs(); !r.Flag(FlagZ) || !r.Flag(FlagH) || r.Flag(FlagN) {
		t.Fatalf("BIT 7,B got F=%02X", r.F)
	}
}

func TestEIDelay(t *testing.T) {
	c := newCPUWithCode([]byte{0xFB, 0x00, 0x00, 0xF3, 0x00, 0x00})
	run(t, c, 1) // EI
	if c.IME() {
		t.Fatalf("IME set by EI itself")
	}
	run(t, c, 1)
	if c.IME() {
		t.Fatalf("IME set before the following instruction completed")
	}
	c.AdvanceInterruptState()
	if !c.IME() {
		t.Fatalf("IME not set one instruction after EI")
	}
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	run(t, c, 1) // DI
	run(t, c, 1)
	if !c.IME() {
		t.Fatalf("DI took effect early")
	}
	c.AdvanceInterruptState()
	if c.IME() {
		t.Fatalf("IME still set after DI delay")
	}
}

func TestInterruptDispatch(t *testing.T) {
	// IF is E1 after power up, so v-blank is pending.
	c := newCPUWithCode([]byte{0xFB, 0x00, 0x00})
	c.Bus().Store(0xFFFF, 0x01)
	run(t, c, 2)
	before := c.Bus().Cycles()
	run(t, c, 1)
	if c.PC() != 0x0040 {
		t.Fatalf("PC %04X want 0040", c.PC())
	}
	if n := c.Bus().Cycles() - before; n != 20 {
		t.Fatalf("dispatch cost %d want 20", n)
	}
	if c.IME() {
		t.Fatalf("IME still set inside handler")
	}
	if c.Bus().Load16(c.SP()) != 0x0102 {
		t.Fatalf("pushed %04X want 0102", c.Bus().Load16(c.SP()))
	}
	if c.Bus().Interrupts().Pending(interrupt.VBlank) {
		t.Fatalf("v-blank not acknowledged")
	}
}

func TestInterruptPriority(t *testing.T) {
	c := newCPUWithCode([]byte{0xFB, 0x00, 0x00})
	irq := c.Bus().Interrupts()
	c.Bus().Store(0xFF0F, 0x00)
	c.Bus().Store(0xFFFF, 0x1F)
	irq.Request(interrupt.Joypad)
	irq.Request(interrupt.Timer)
	run(t, c, 3)
	if c.PC() != interrupt.Timer.Vector() {
		t.Fatalf("PC %04X want timer vector", c.PC())
	}
	if !irq.Pending(interrupt.Joypad) {
		t.Fatalf("joypad request lost")
	}
}

func TestHaltAndWake(t *testing.T) {
	c := newCPUWithCode([]byte{0x76, 0x00, 0x00})
	c.Bus().Store(0xFF0F, 0x00)
	c.Bus().Store(0xFFFF, 0x04)
	run(t, c, 1)
	if !c.Halted() {
		t.Fatalf("HALT did not halt")
	}
	if n := cyclesOf(t, c); n != 4 || c.PC() != 0x0101 {
		t.Fatalf("halted step cost %d, PC %04X", n, c.PC())
	}
	c.Bus().Interrupts().Request(interrupt.Timer)
	run(t, c, 1)
	if c.Halted() || c.PC() != 0x0102 {
		t.Fatalf("did not wake: halted=%v PC=%04X", c.Halted(), c.PC())
	}
}

func TestStopResetsDivider(t *testing.T) {
	c := newCPUWithCode([]byte{0x10, 0x00})
	c.Bus().AddCycles(1024)
	if c.Bus().Load(0xFF04) == 0 {
		t.Fatalf("divider did not move")
	}
	run(t, c, 1)
	if c.Bus().Load(0xFF04) != 0 || c.PC() != 0x0102 {
		t.Fatalf("STOP left DIV=%02X PC=%04X", c.Bus().Load(0xFF04), c.PC())
	}
}

func TestStep_UnmodeledFault(t *testing.T) {
	c := New(bus.New(nil, nil))
	c.PowerUp()
	err := c.Step()
	if !errors.Is(err, bus.ErrUnmodeled) {
		t.Fatalf("got %v want unmodeled access", err)
	}
}

func TestDisassemble(t *testing.T) {
	mem := map[uint16][]byte{
		0x0100: {0xC3, 0x50, 0x01},
		0x0200: {0x18, 0xFE},
		0x0300: {0xCB, 0x7C},
		0x0400: {0xD3},
		0x0500: {0xE0, 0x44},
		0x0600: {0x3E, 0x12},
		0x0700: {0xE8, 0xFE},
	}
	want := map[uint16]struct {
		text string
		n    int
	}{
		0x0100: {"JP $0150", 3},
		0x0200: {"JR $0200", 2},
		0x0300: {"BIT 7,H", 2},
		0x0400: {"DB $D3", 1},
		0x0500: {"LDH ($FF44),A", 2},
		0x0600: {"LD A,$12", 2},
		0x0700: {"ADD SP,-2", 2},
	}
	for base, code := range mem {
		read := func(a uint16) byte {
			if i := int(a - base); i >= 0 && i < len(code) {
				return code[i]
			}
			return 0
		}
		text, n := Disassemble(read, base)
		if w := want[base]; text != w.text || n != w.n {
			t.Errorf("%04X: got %q/%d want %q/%d", base, text, n, w.text, w.n)
		}
	}
}
