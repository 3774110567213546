// Package debugger is a line-oriented stepping debugger over an emu.Machine.
package debugger

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/emu"
)

const Prompt = "gb> "

type Debugger struct {
	m    *emu.Machine
	out  io.Writer
	last *Command
}

func New(m *emu.Machine, out io.Writer) *Debugger {
	return &Debugger{m: m, out: out}
}

// Run reads commands until exit, end of input or a fatal emulation error,
// which is returned.
func (d *Debugger) Run(in LineReader) error {
	for {
		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		cmd, err := Parse(line)
		if err == nil && cmd.Kind == Repeat {
			if d.last == nil {
				err = ErrNoLastCommand
			} else {
				cmd = *d.last
			}
		}
		if err != nil {
			fmt.Fprintln(d.out, err)
			d.last = nil
			continue
		}
		d.last = &cmd

		done, err := d.Exec(cmd)
		if err != nil {
			fmt.Fprintf(d.out, "fatal: %v\n", err)
			return err
		}
		if done {
			return nil
		}
	}
}

// Exec runs one command. done reports an exit request.
func (d *Debugger) Exec(cmd Command) (done bool, err error) {
	switch cmd.Kind {
	case Exit:
		return true, nil
	case Step:
		for i := 0; i < cmd.Count; i++ {
			if err := d.m.Step(); err != nil {
				return false, err
			}
		}
		d.printRegs()
	case Regs:
		d.printRegs()
	case Mem:
		d.dump(cmd.Addr, cmd.Count)
	case Dis:
		d.disassemble(cmd.Count)
	case Info:
		d.info()
	}
	return false, nil
}

func (d *Debugger) printRegs() {
	c := d.m.CPU()
	if c == nil {
		fmt.Fprintln(d.out, emu.ErrNoCartridge)
		return
	}
	r := c.Regs()
	flags := []byte("----")
	for i, f := range []cpu.Flag{cpu.FlagZ, cpu.FlagN, cpu.FlagH, cpu.FlagC} {
		if r.Flag(f) {
			flags[i] = "ZNHC"[i]
		}
	}
	fmt.Fprintf(d.out, "AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X %s IME=%t HALT=%t cycles=%d\n",
		r.AF(), r.BC(), r.DE(), r.HL(), c.SP(), c.PC(), flags, c.IME(), c.Halted(), d.m.Bus().Cycles())
}

func (d *Debugger) dump(addr uint16, n int) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		a := addr + uint16(i)
		if i%16 == 0 {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%04X:", a)
		}
		fmt.Fprintf(&sb, " %02X", d.m.ReadBusByte(a))
	}
	fmt.Fprintln(d.out, sb.String())
}

func (d *Debugger) disassemble(n int) {
	c := d.m.CPU()
	if c == nil {
		fmt.Fprintln(d.out, emu.ErrNoCartridge)
		return
	}
	addr := c.PC()
	for i := 0; i < n; i++ {
		text, size := cpu.Disassemble(d.m.ReadBusByte, addr)
		fmt.Fprintf(d.out, "%04X  %s\n", addr, text)
		addr += uint16(size)
	}
}

func (d *Debugger) info() {
	h := d.m.Header()
	if h == nil {
		fmt.Fprintln(d.out, emu.ErrNoCartridge)
		return
	}
	fmt.Fprintf(d.out, "title=%q type=%s rom=%d banks ram=%d bytes fingerprint=%016x\n",
		h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes, d.m.Fingerprint())
}
