package cpu

// Flag is one condition bit in F.
type Flag byte

const (
	FlagZ Flag = 1 << 7
	FlagN Flag = 1 << 6
	FlagH Flag = 1 << 5
	FlagC Flag = 1 << 4
)

// Registers is the 8-bit register file. The pairs are derived on every
// call and F's low nibble is kept at zero.
type Registers struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte
}

func (r Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F&0xF0) }
func (r Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

func (r *Registers) SetAF(v uint16) { r.A = byte(v >> 8); r.F = byte(v) & 0xF0 }
func (r *Registers) SetBC(v uint16) { r.B = byte(v >> 8); r.C = byte(v) }
func (r *Registers) SetDE(v uint16) { r.D = byte(v >> 8); r.E = byte(v) }
func (r *Registers) SetHL(v uint16) { r.H = byte(v >> 8); r.L = byte(v) }

func (r Registers) Flag(f Flag) bool { return r.F&byte(f) != 0 }

func (r *Registers) SetFlag(f Flag, on bool) {
	if on {
		r.F |= byte(f)
	} else {
		r.F &^= byte(f)
	}
	r.F &= 0xF0
}

func (r *Registers) setZNHC(z, n, h, carry bool) {
	var f byte
	if z {
		f |= byte(FlagZ)
	}
	if n {
		f |= byte(FlagN)
	}
	if h {
		f |= byte(FlagH)
	}
	if carry {
		f |= byte(FlagC)
	}
	r.F = f
}

func (r Registers) carryBit() byte {
	if r.Flag(FlagC) {
		return 1
	}
	return 0
}
