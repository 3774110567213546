package bus

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
)

// serial is a link port with nobody on the other end. A transfer on the
// internal clock completes at once and shifts in 0xFF.
type serial struct {
	data    byte
	control byte
	out     io.Writer
}

// SetSerialWriter receives every byte sent over the link port.
func (b *Bus) SetSerialWriter(w io.Writer) { b.ser.out = w }

func (b *Bus) writeSerialControl(v byte) {
	b.ser.control = v & 0x81
	if v&0x81 != 0x81 {
		return
	}
	if b.ser.out != nil {
		if _, err := b.ser.out.Write([]byte{b.ser.data}); err != nil {
			b.log.Warnf("bus: serial writer: %v", err)
		}
	}
	b.ser.data = 0xFF
	b.ser.control &^= 0x80
	b.irq.Request(interrupt.Serial)
}

func (b *Bus) readSerialControl() byte { return 0x7E | b.ser.control }
