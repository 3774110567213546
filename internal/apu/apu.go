// Package apu models the sound registers FF10-FF3F as four decoded
// channels. It keeps register state only; producing samples is up to
// whoever reads it.
package apu

import "github.com/FabianRolfMatthiasNoll/gbcore/internal/log"

type Registers struct {
	Square1 Square
	Square2 Square
	Wave    Wave
	Noise   Noise
	Master  Master

	log log.Logger
}

func New(l log.Logger) *Registers {
	return &Registers{log: log.OrNull(l), Master: Master{PowerOn: true}}
}

func boolBit(b bool, bit uint) byte {
	if b {
		return 1 << bit
	}
	return 0
}

// Read returns the register at addr. Write-only bits read as 1.
func (a *Registers) Read(addr uint16) byte {
	switch addr {
	case 0xFF10:
		return 0x80 | a.Square1.Sweep.encode()
	case 0xFF11:
		return indexOf(dutyPercents[:], a.Square1.DutyPercent)<<6 | 0x3F
	case 0xFF12:
		return a.Square1.Envelope.encode()
	case 0xFF14:
		return 0xBF | boolBit(a.Square1.LengthEnabled, 6)
	case 0xFF16:
		return indexOf(dutyPercents[:], a.Square2.DutyPercent)<<6 | 0x3F
	case 0xFF17:
		return a.Square2.Envelope.encode()
	case 0xFF19:
		return 0xBF | boolBit(a.Square2.LengthEnabled, 6)
	case 0xFF1A:
		return 0x7F | boolBit(a.Wave.DACEnabled, 7)
	case 0xFF1C:
		return 0x9F | indexOf(waveLevels[:], a.Wave.OutputLevelPercent)<<5
	case 0xFF1E:
		return 0xBF | boolBit(a.Wave.LengthEnabled, 6)
	case 0xFF21:
		return a.Noise.Envelope.encode()
	case 0xFF22:
		return a.Noise.ShiftClock<<4 | boolBit(a.Noise.Width7, 3) | a.Noise.DivRatio&7
	case 0xFF23:
		return 0xBF | boolBit(a.Noise.LengthEnabled, 6)
	case 0xFF24:
		return a.Master.encodeVolume()
	case 0xFF25:
		return a.Master.encodeRouting()
	case 0xFF26:
		return 0x70 | boolBit(a.Master.PowerOn, 7) |
			boolBit(a.Square1.Active, 0) | boolBit(a.Square2.Active, 1) |
			boolBit(a.Wave.Active, 2) | boolBit(a.Noise.Active, 3)
	}
	if addr >= 0xFF30 && addr <= 0xFF3F {
		return a.Wave.Pattern[addr-0xFF30]
	}
	// NRx3 periods, NRx1 lengths on channels 3/4 and the unused holes.
	return 0xFF
}

// Write decodes v into the register at addr. While powered off only NR52
// and wave RAM accept writes.
func (a *Registers) Write(addr uint16, v byte) {
	if addr >= 0xFF30 && addr <= 0xFF3F {
		a.Wave.Pattern[addr-0xFF30] = v
		return
	}
	if addr == 0xFF26 {
		a.setPower(v&0x80 != 0)
		return
	}
	if !a.Master.PowerOn {
		a.log.Debugf("apu: write %02X to %04X while powered off", v, addr)
		return
	}

	switch addr {
	case 0xFF10:
		a.Square1.Sweep.decode(v)
	case 0xFF11:
		writeDutyLength(&a.Square1, v)
	case 0xFF12:
		writeEnvelope(&a.Square1.Envelope, &a.Square1.Active, v)
	case 0xFF13:
		a.Square1.Frequency = a.Square1.Frequency&0x700 | uint16(v)
	case 0xFF14:
		writeControl(&a.Square1.Frequency, &a.Square1.LengthEnabled, &a.Square1.Active, a.Square1.Envelope.DACOn(), v)
	case 0xFF16:
		writeDutyLength(&a.Square2, v)
	case 0xFF17:
		writeEnvelope(&a.Square2.Envelope, &a.Square2.Active, v)
	case 0xFF18:
		a.Square2.Frequency = a.Square2.Frequency&0x700 | uint16(v)
	case 0xFF19:
		writeControl(&a.Square2.Frequency, &a.Square2.LengthEnabled, &a.Square2.Active, a.Square2.Envelope.DACOn(), v)
	case 0xFF1A:
		a.Wave.DACEnabled = v&0x80 != 0
		if !a.Wave.DACEnabled {
			a.Wave.Active = false
		}
	case 0xFF1B:
		a.Wave.LengthSeconds = lengthSeconds(256, v)
	case 0xFF1C:
		a.Wave.OutputLevelPercent = waveLevels[(v>>5)&3]
	case 0xFF1D:
		a.Wave.Frequency = a.Wave.Frequency&0x700 | uint16(v)
	case 0xFF1E:
		writeControl(&a.Wave.Frequency, &a.Wave.LengthEnabled, &a.Wave.Active, a.Wave.DACEnabled, v)
	case 0xFF20:
		a.Noise.LengthSeconds = lengthSeconds(64, v&0x3F)
	case 0xFF21:
		writeEnvelope(&a.Noise.Envelope, &a.Noise.Active, v)
	case 0xFF22:
		a.Noise.ShiftClock = v >> 4
		a.Noise.Width7 = v&0x08 != 0
		a.Noise.DivRatio = v & 0x07
	case 0xFF23:
		var freq uint16
		writeControl(&freq, &a.Noise.LengthEnabled, &a.Noise.Active, a.Noise.Envelope.DACOn(), v)
	case 0xFF24:
		a.Master.decodeVolume(v)
	case 0xFF25:
		a.Master.decodeRouting(v)
	default:
		a.log.Debugf("apu: write %02X to unused %04X", v, addr)
	}
}

func writeDutyLength(s *Square, v byte) {
	s.DutyPercent = dutyPercents[v>>6]
	s.LengthSeconds = lengthSeconds(64, v&0x3F)
}

func writeEnvelope(e *Envelope, active *bool, v byte) {
	e.decode(v)
	if !e.DACOn() {
		*active = false
	}
}

// writeControl handles NRx4: bit 7 triggers, bit 6 enables the length
// counter, bits 0-2 are the top of the period.
func writeControl(freq *uint16, lengthEnabled, active *bool, dacOn bool, v byte) {
	*freq = *freq&0xFF | uint16(v&0x07)<<8
	*lengthEnabled = v&0x40 != 0
	if v&0x80 != 0 {
		*active = dacOn
	}
}

func (a *Registers) setPower(on bool) {
	if on == a.Master.PowerOn {
		return
	}
	if !on {
		pattern := a.Wave.Pattern
		*a = Registers{log: a.log}
		a.Wave.Pattern = pattern
		return
	}
	a.Master.PowerOn = true
}
