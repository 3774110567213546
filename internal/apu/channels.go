package apu

// sweepTimesMs is NR10 bits 4-6 in milliseconds (n/128 Hz).
var sweepTimesMs = [8]float64{0, 7.8, 15.6, 23.4, 31.3, 39.1, 46.9, 54.7}

// dutyPercents is NRx1 bits 6-7.
var dutyPercents = [4]float64{12.5, 25, 50, 75}

// waveLevels is NR32 bits 5-6 as output percent.
var waveLevels = [4]int{0, 100, 50, 25}

func indexOf[T comparable](table []T, v T) byte {
	for i, x := range table {
		if x == v {
			return byte(i)
		}
	}
	return 0
}

// Sweep is channel 1's frequency sweep (NR10).
type Sweep struct {
	TimeMs   float64
	Decrease bool
	Shift    uint8
}

func (s *Sweep) decode(v byte) {
	s.TimeMs = sweepTimesMs[(v>>4)&7]
	s.Decrease = v&0x08 != 0
	s.Shift = v & 0x07
}

func (s Sweep) encode() byte {
	v := indexOf(sweepTimesMs[:], s.TimeMs)<<4 | s.Shift&7
	if s.Decrease {
		v |= 0x08
	}
	return v
}

// Envelope is the NRx2 volume envelope. Each step lasts StepCount/64 s;
// zero stops the envelope.
type Envelope struct {
	InitialVolume uint8
	Increase      bool
	StepCount     uint8
}

func (e *Envelope) decode(v byte) {
	e.InitialVolume = v >> 4
	e.Increase = v&0x08 != 0
	e.StepCount = v & 0x07
}

func (e Envelope) encode() byte {
	v := e.InitialVolume<<4 | e.StepCount&7
	if e.Increase {
		v |= 0x08
	}
	return v
}

// DACOn reports whether the envelope keeps the channel's DAC powered.
func (e Envelope) DACOn() bool { return e.InitialVolume != 0 || e.Increase }

// lengthSeconds converts a length load t to seconds: (max-t)/256.
func lengthSeconds(max int, t byte) float64 {
	return float64(max-int(t)) / 256
}

// Square is a pulse channel (1 and 2). Sweep only applies to channel 1.
type Square struct {
	Sweep         Sweep
	DutyPercent   float64
	LengthSeconds float64
	Envelope      Envelope
	Frequency     uint16 // 11-bit period value
	LengthEnabled bool
	Active        bool
}

// Hz returns the tone frequency, 131072/(2048-x).
func (s Square) Hz() float64 { return 131072 / float64(2048-int(s.Frequency&0x7FF)) }

// Wave is channel 3, which plays 32 4-bit samples from pattern RAM.
type Wave struct {
	DACEnabled         bool
	LengthSeconds      float64
	OutputLevelPercent int
	Frequency          uint16
	LengthEnabled      bool
	Active             bool
	Pattern            [16]byte
}

// Hz returns the sample-step frequency, 65536/(2048-x).
func (w Wave) Hz() float64 { return 65536 / float64(2048-int(w.Frequency&0x7FF)) }

// Noise is channel 4, a polynomial counter.
type Noise struct {
	LengthSeconds float64
	Envelope      Envelope
	ShiftClock    uint8 // NR43 bits 4-7
	Width7        bool  // bit 3: 7-step instead of 15-step
	DivRatio      uint8 // bits 0-2
	LengthEnabled bool
	Active        bool
}

// Hz returns the counter clock, 524288 / r / 2^(s+1) with r=0 read as 0.5.
func (n Noise) Hz() float64 {
	r := float64(n.DivRatio)
	if r == 0 {
		r = 0.5
	}
	return 524288 / r / float64(uint(2)<<n.ShiftClock)
}

// Master holds NR50-NR52.
type Master struct {
	LeftVolume, RightVolume uint8 // 0-7
	VinLeft, VinRight       bool
	Left, Right             [4]bool // NR51 routing per channel
	PowerOn                 bool
}

func (m *Master) decodeVolume(v byte) {
	m.RightVolume = v & 0x07
	m.VinRight = v&0x08 != 0
	m.LeftVolume = (v >> 4) & 0x07
	m.VinLeft = v&0x80 != 0
}

func (m Master) encodeVolume() byte {
	v := m.LeftVolume<<4 | m.RightVolume
	if m.VinRight {
		v |= 0x08
	}
	if m.VinLeft {
		v |= 0x80
	}
	return v
}

func (m *Master) decodeRouting(v byte) {
	for ch := 0; ch < 4; ch++ {
		m.Right[ch] = v&(1<<ch) != 0
		m.Left[ch] = v&(1<<(ch+4)) != 0
	}
}

func (m Master) encodeRouting() byte {
	var v byte
	for ch := 0; ch < 4; ch++ {
		if m.Right[ch] {
			v |= 1 << ch
		}
		if m.Left[ch] {
			v |= 1 << (ch + 4)
		}
	}
	return v
}
