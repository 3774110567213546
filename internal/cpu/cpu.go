// Package cpu is the SM83 execution core. It owns the address bus and
// charges each instruction's cycle cost to the bus counter.
package cpu

import (
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/log"
)

// interruptCycles is the cost of dispatching to an interrupt vector.
const interruptCycles = 20

type CPU struct {
	regs Registers
	sp   uint16
	pc   uint16

	ime        bool
	enableIME  countdown
	disableIME countdown
	halted     bool

	// address of the opcode being executed
	current uint16

	bus   *bus.Bus
	log   log.Logger
	trace bool
}

// New creates a CPU that owns b. Call PowerUp before stepping.
func New(b *bus.Bus) *CPU {
	return &CPU{bus: b, sp: 0xFFFE, log: log.NewNull()}
}

// SetLogger attaches a logger; trace enables a debug line per instruction.
func (c *CPU) SetLogger(l log.Logger, trace bool) {
	c.log = log.OrNull(l)
	c.trace = trace
}

// PowerUp loads the state the boot ROM leaves behind and the matching I/O
// register values.
func (c *CPU) PowerUp() {
	c.regs = Registers{}
	c.regs.SetAF(0x01B0)
	c.regs.SetBC(0x0013)
	c.regs.SetDE(0x00D8)
	c.regs.SetHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.current = 0x0100
	c.ime = false
	c.enableIME.cancel()
	c.disableIME.cancel()
	c.halted = false
	c.bus.PowerUp()
}

func (c *CPU) Bus() *bus.Bus { return c.bus }

// Regs returns a copy of the register file.
func (c *CPU) Regs() Registers { return c.regs }

func (c *CPU) PC() uint16 { return c.pc }
func (c *CPU) SP() uint16 { return c.sp }
func (c *CPU) IME() bool  { return c.ime }

func (c *CPU) Halted() bool { return c.halted }

// CurrentPC returns the address the last executed opcode was fetched from.
func (c *CPU) CurrentPC() uint16 { return c.current }

// Step runs one instruction, or dispatches one interrupt, or idles for one
// machine cycle while halted. Errors are fatal to the session.
func (c *CPU) Step() error {
	irq := c.bus.Interrupts()
	if c.halted {
		if !irq.Ready() {
			c.bus.AddCycles(4)
			return c.bus.Fault()
		}
		c.halted = false
	}

	if c.ime {
		if src, ok := irq.Next(); ok {
			c.service(irq, src)
			return c.bus.Fault()
		}
	}

	c.current = c.pc
	if err := c.execute(&primary, false); err != nil {
		return err
	}
	return c.bus.Fault()
}

func (c *CPU) service(irq *interrupt.Latches, src interrupt.Source) {
	c.ime = false
	irq.Acknowledge(src)
	c.push16(c.pc)
	c.pc = src.Vector()
	c.bus.AddCycles(interruptCycles)
}

func (c *CPU) execute(table *[256]Instruction, ext bool) error {
	addr := c.pc
	opcode := c.fetch8()
	in := &table[opcode]
	if !in.Defined() {
		return &DecodeError{Opcode: opcode, Addr: addr, Extended: ext}
	}
	if in.op == opPrefix {
		return c.execute(&extended, true)
	}

	var imm uint16
	switch in.Operand {
	case OperandImm8, OperandRel8, OperandHigh8:
		imm = uint16(c.fetch8())
	case OperandImm16:
		imm = c.fetch16()
	}

	if c.trace {
		c.log.Debugf("%04X %02X %-14s A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X",
			addr, opcode, in.Mnemonic, c.regs.A, c.regs.F, c.regs.B, c.regs.C,
			c.regs.D, c.regs.E, c.regs.H, c.regs.L, c.sp)
	}

	cycles := in.Cycles
	if handlers[in.op](c, in, imm) {
		cycles = in.Taken
	}
	c.bus.AddCycles(int(cycles))
	return nil
}

func (c *CPU) read8(addr uint16) byte     { return c.bus.Load(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.Store(addr, v) }

func (c *CPU) fetch8() byte {
	b := c.read8(c.pc)
	c.pc++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) push16(v uint16) {
	c.sp -= 2
	c.bus.Store16(c.sp, v)
}

func (c *CPU) pop16() uint16 {
	v := c.bus.Load16(c.sp)
	c.sp += 2
	return v
}

func (c *CPU) reg8(code uint8) byte {
	switch code {
	case regB:
		return c.regs.B
	case regC:
		return c.regs.C
	case regD:
		return c.regs.D
	case regE:
		return c.regs.E
	case regH:
		return c.regs.H
	case regL:
		return c.regs.L
	case regHLInd:
		return c.read8(c.regs.HL())
	}
	return c.regs.A
}

func (c *CPU) setReg8(code uint8, v byte) {
	switch code {
	case regB:
		c.regs.B = v
	case regC:
		c.regs.C = v
	case regD:
		c.regs.D = v
	case regE:
		c.regs.E = v
	case regH:
		c.regs.H = v
	case regL:
		c.regs.L = v
	case regHLInd:
		c.write8(c.regs.HL(), v)
	default:
		c.regs.A = v
	}
}

// rp reads BC, DE, HL or SP.
func (c *CPU) rp(p uint8) uint16 {
	switch p {
	case 0:
		return c.regs.BC()
	case 1:
		return c.regs.DE()
	case 2:
		return c.regs.HL()
	}
	return c.sp
}

func (c *CPU) setRP(p uint8, v uint16) {
	switch p {
	case 0:
		c.regs.SetBC(v)
	case 1:
		c.regs.SetDE(v)
	case 2:
		c.regs.SetHL(v)
	default:
		c.sp = v
	}
}

// rp2 is the PUSH/POP pair table, with AF in place of SP.
func (c *CPU) rp2(p uint8) uint16 {
	if p == 3 {
		return c.regs.AF()
	}
	return c.rp(p)
}

func (c *CPU) setRP2(p uint8, v uint16) {
	if p == 3 {
		c.regs.SetAF(v)
		return
	}
	c.setRP(p, v)
}

func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.regs.Flag(FlagZ)
	case 1:
		return c.regs.Flag(FlagZ)
	case 2:
		return !c.regs.Flag(FlagC)
	case 3:
		return c.regs.Flag(FlagC)
	}
	return true
}

// indirect returns the address for LD (BC)/(DE)/(HL+)/(HL-), applying the
// HL post-increment or decrement.
func (c *CPU) indirect(kind uint8) uint16 {
	switch kind {
	case 0:
		return c.regs.BC()
	case 1:
		return c.regs.DE()
	}
	hl := c.regs.HL()
	if kind == 2 {
		c.regs.SetHL(hl + 1)
	} else {
		c.regs.SetHL(hl - 1)
	}
	return hl
}
