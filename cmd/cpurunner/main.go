package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/log"
)

var (
	failRe  = regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)
	stageRe = regexp.MustCompile(`\b(\d{2}:\d{2})\b`)
)

type traceEntry struct {
	pc   uint16
	text string
	regs cpu.Registers
	sp   uint16
	ime  bool
}

func (te traceEntry) String() string {
	r := te.regs
	return fmt.Sprintf("PC=%04X %-16s A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t",
		te.pc, te.text, r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L, te.sp, te.ime)
}

// traceRing keeps the last n executed instructions.
type traceRing struct {
	buf  []traceEntry
	next int
	fill int
}

func (r *traceRing) add(te traceEntry) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.next] = te
	r.next = (r.next + 1) % len(r.buf)
	if r.fill < len(r.buf) {
		r.fill++
	}
}

func (r *traceRing) dump(w io.Writer) {
	if r.fill == 0 {
		return
	}
	start := (r.next - r.fill + len(r.buf)) % len(r.buf)
	for i := 0; i < r.fill; i++ {
		fmt.Fprintln(w, r.buf[(start+i)%len(r.buf)])
	}
}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb, .gz, .zip, .7z)")
	steps := flag.Int("steps", 5_000_000, "max CPU steps to run")
	trace := flag.Bool("trace", false, "print every instruction")
	serial := flag.Bool("serial", true, "echo serial output to stdout")
	auto := flag.Bool("auto", true, "stop on 'Passed' or 'Failed N tests' in serial output and exit 0/1")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceWindow := flag.Int("traceWindow", 200, "recent instructions to print when a failure is detected; 0 disables")
	logLevel := flag.String("log-level", "warn", "debug, info, warn or error")
	flag.Parse()

	l := log.New(*logLevel)
	if *romPath == "" {
		l.Errorf("-rom is required")
		os.Exit(2)
	}

	cfg := emu.DefaultConfig()
	cfg.LogLevel = *logLevel
	m := emu.New(cfg, l)

	var ser bytes.Buffer
	w := io.Writer(&ser)
	if *serial {
		w = io.MultiWriter(os.Stdout, &ser)
	}
	m.SetSerialWriter(w)

	if err := m.LoadROMFromFile(*romPath); err != nil {
		l.Errorf("%v", err)
		os.Exit(2)
	}

	ring := traceRing{buf: make([]traceEntry, max(*traceWindow, 0))}
	record := *trace || *traceWindow > 0

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}
	done := func(n int) {
		fmt.Printf("\nDone: steps=%d cycles=%d elapsed=%s\n", n, m.Bus().Cycles(), time.Since(start).Truncate(time.Millisecond))
	}

	lastStage := ""
	for i := 0; i < *steps; i++ {
		var te traceEntry
		if record {
			c := m.CPU()
			te.pc = c.PC()
			te.text, _ = cpu.Disassemble(m.ReadBusByte, te.pc)
			te.regs, te.sp, te.ime = c.Regs(), c.SP(), c.IME()
		}

		if err := m.Step(); err != nil {
			var de *cpu.DecodeError
			if errors.As(err, &de) {
				fmt.Printf("\nStopped: opcode %02X at %04X is not implemented\n", de.Opcode, de.Addr)
			} else {
				fmt.Printf("\nStopped: %v\n", err)
			}
			ring.dump(os.Stdout)
			done(i)
			os.Exit(1)
		}

		if record {
			ring.add(te)
			if *trace {
				fmt.Println(te)
			}
		}

		if *auto {
			s := ser.String()
			if mm := stageRe.FindAllString(s, -1); len(mm) > 0 {
				lastStage = mm[len(mm)-1]
			}
			if strings.Contains(strings.ToLower(s), "passed") {
				fmt.Printf("\nDetected PASS in serial output.\n")
				done(i + 1)
				os.Exit(0)
			}
			if mm := failRe.FindStringSubmatch(s); mm != nil {
				fmt.Printf("\nDetected %s in serial output.\n", mm[0])
				if lastStage != "" {
					fmt.Printf("Last stage seen: %s\n", lastStage)
				}
				if ring.fill > 0 {
					fmt.Printf("\n--- recent trace (last %d instructions) ---\n", ring.fill)
					ring.dump(os.Stdout)
					fmt.Printf("--- end trace ---\n")
				}
				done(i + 1)
				os.Exit(1)
			}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
			done(i + 1)
			os.Exit(2)
		}
	}
	done(*steps)
}
