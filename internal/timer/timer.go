// Package timer implements the divider (FF04) and the programmable
// counter (FF05 TIMA, FF06 TMA, FF07 TAC).
package timer

import "github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"

// ClockHz is the machine clock the cycle counts are measured in.
const ClockHz = 4194304

// divPeriod is the divider period in cycles (16384 Hz).
const divPeriod = ClockHz / 16384

// Rate is one of the four counter frequencies selected by TAC bits 0-1.
type Rate uint8

const (
	Rate4096   Rate = 0b00
	Rate262144 Rate = 0b01
	Rate65536  Rate = 0b10
	Rate16384  Rate = 0b11
)

// Hz returns the counter frequency for r.
func (r Rate) Hz() int {
	switch r & 0b11 {
	case Rate262144:
		return 262144
	case Rate65536:
		return 65536
	case Rate16384:
		return 16384
	}
	return 4096
}

// Period returns the number of cycles between counter increments.
func (r Rate) Period() int { return ClockHz / r.Hz() }

type Timer struct {
	div    uint8
	divAcc int

	counter uint8
	modulo  uint8
	rate    Rate
	enabled bool
	acc     int

	irq *interrupt.Latches
}

// New returns a timer that raises overflow interrupts on irq.
func New(irq *interrupt.Latches) *Timer {
	return &Timer{irq: irq}
}

// Tick advances both counters by elapsed machine cycles.
func (t *Timer) Tick(cycles int) {
	t.divAcc += cycles
	for t.divAcc >= divPeriod {
		t.divAcc -= divPeriod
		t.div++
	}

	if !t.enabled {
		return
	}
	t.acc += cycles
	period := t.rate.Period()
	for t.acc >= period {
		t.acc -= period
		t.counter++
		if t.counter == 0 {
			t.counter = t.modulo
			if t.irq != nil {
				t.irq.Request(interrupt.Timer)
			}
		}
	}
}

func (t *Timer) Divider() uint8 { return t.div }
func (t *Timer) Counter() uint8 { return t.counter }
func (t *Timer) Modulo() uint8  { return t.modulo }
func (t *Timer) Enabled() bool  { return t.enabled }
func (t *Timer) Rate() Rate     { return t.rate }

// Read returns the register at addr (0xFF04-0xFF07).
func (t *Timer) Read(addr uint16) byte {
	switch addr {
	case 0xFF04:
		return t.div
	case 0xFF05:
		return t.counter
	case 0xFF06:
		return t.modulo
	case 0xFF07:
		v := byte(t.rate) | 0xF8
		if t.enabled {
			v |= 0x04
		}
		return v
	}
	return 0xFF
}

// Write stores v into the register at addr. Any write to DIV clears it.
func (t *Timer) Write(addr uint16, v byte) {
	switch addr {
	case 0xFF04:
		t.div = 0
		t.divAcc = 0
	case 0xFF05:
		t.counter = v
	case 0xFF06:
		t.modulo = v
	case 0xFF07:
		rate := Rate(v & 0b11)
		enabled := v&0x04 != 0
		if rate != t.rate || (enabled && !t.enabled) {
			t.acc = 0
		}
		t.rate = rate
		t.enabled = enabled
	}
}
