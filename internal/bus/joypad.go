package bus

import "github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"

// Buttons is a set of pressed keys.
type Buttons uint8

const (
	JoypRight Buttons = 1 << iota
	JoypLeft
	JoypUp
	JoypDown
	JoypA
	JoypB
	JoypSelect
	JoypStart
)

// joypad is FF00. Bits 4/5 select directions/actions when low; the lower
// nibble reports the selected keys, active low.
type joypad struct {
	selector byte
	pressed  Buttons
}

func (j *joypad) lines() byte {
	var lo byte = 0x0F
	if j.selector&0x10 == 0 {
		lo &^= byte(j.pressed) & 0x0F
	}
	if j.selector&0x20 == 0 {
		lo &^= byte(j.pressed>>4) & 0x0F
	}
	return lo
}

func (j *joypad) read() byte { return 0xC0 | j.selector | j.lines() }

// SetJoypadState replaces the pressed set. A selected line going low
// requests the joypad interrupt.
func (b *Bus) SetJoypadState(pressed Buttons) {
	before := b.joyp.lines()
	b.joyp.pressed = pressed
	if before&^b.joyp.lines() != 0 {
		b.irq.Request(interrupt.Joypad)
	}
}

func (b *Bus) writeJoypad(v byte) {
	before := b.joyp.lines()
	b.joyp.selector = v & 0x30
	if before&^b.joyp.lines() != 0 {
		b.irq.Request(interrupt.Joypad)
	}
}
