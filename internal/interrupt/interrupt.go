// Package interrupt holds the interrupt enable and pending latches exposed
// at 0xFFFF (IE) and 0xFF0F (IF).
package interrupt

// Source identifies one interrupt line. The value is its bit in IE/IF.
type Source uint8

const (
	VBlank  Source = 1 << 0
	LCDStat Source = 1 << 1
	Timer   Source = 1 << 2
	Serial  Source = 1 << 3
	Joypad  Source = 1 << 4
)

const lineMask = 0x1F

// Vector returns the service address for s (0x40, 0x48, ...).
func (s Source) Vector() uint16 {
	for i := uint16(0); i < 5; i++ {
		if Source(1<<i) == s {
			return 0x0040 + i*8
		}
	}
	return 0
}

func (s Source) String() string {
	switch s {
	case VBlank:
		return "vblank"
	case LCDStat:
		return "lcd-stat"
	case Timer:
		return "timer"
	case Serial:
		return "serial"
	case Joypad:
		return "joypad"
	}
	return "none"
}

// Latches is the pair of 5-bit interrupt registers. Hardware event sources
// set pending bits with Request; software writes both through the bus.
type Latches struct {
	enable  uint8
	pending uint8
}

func New() *Latches { return &Latches{} }

func (l *Latches) Request(s Source) { l.pending |= uint8(s) & lineMask }

// Acknowledge clears the pending bit of s.
func (l *Latches) Acknowledge(s Source) { l.pending &^= uint8(s) }

func (l *Latches) Enabled(s Source) bool { return l.enable&uint8(s) != 0 }
func (l *Latches) Pending(s Source) bool { return l.pending&uint8(s) != 0 }

// Ready reports whether any source is both enabled and pending.
func (l *Latches) Ready() bool { return l.enable&l.pending&lineMask != 0 }

// Next returns the highest-priority source that is enabled and pending
// (lowest bit first), or false if there is none.
func (l *Latches) Next() (Source, bool) {
	ready := l.enable & l.pending & lineMask
	if ready == 0 {
		return 0, false
	}
	for i := uint8(0); i < 5; i++ {
		if ready&(1<<i) != 0 {
			return Source(1 << i), true
		}
	}
	return 0, false
}

// ReadIE returns the packed enable byte.
func (l *Latches) ReadIE() byte { return l.enable }

func (l *Latches) WriteIE(v byte) { l.enable = v & lineMask }

// ReadIF returns the packed pending byte; the unused top bits read as 1.
func (l *Latches) ReadIF() byte { return l.pending | 0xE0 }

func (l *Latches) WriteIF(v byte) { l.pending = v & lineMask }
