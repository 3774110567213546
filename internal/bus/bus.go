// Package bus routes every CPU load and store to the device that owns the
// address. It owns working RAM, high RAM, the interrupt latches, the timer,
// the video and sound registers, the joypad and the serial port; the
// cartridge controller is injected.
package bus

import (
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/apu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/log"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/timer"
)

type Bus struct {
	cart cart.Controller
	wram [0x2000]byte
	hram [0x7F]byte

	irq   *interrupt.Latches
	timer *timer.Timer
	video *ppu.Registers
	sound *apu.Registers
	joyp  joypad
	ser   serial
	dma   byte

	cycles        uint64
	ignoredWrites uint64
	fault         error

	log log.Logger
}

// New returns a bus around c. A nil c leaves the cartridge regions
// unmodeled; accessing them latches an UnmodeledError.
func New(c cart.Controller, l log.Logger) *Bus {
	l = log.OrNull(l)
	irq := interrupt.New()
	return &Bus{
		cart:  c,
		irq:   irq,
		timer: timer.New(irq),
		video: ppu.New(irq, l),
		sound: apu.New(l),
		log:   l,
	}
}

func (b *Bus) Cartridge() cart.Controller      { return b.cart }
func (b *Bus) Interrupts() *interrupt.Latches { return b.irq }
func (b *Bus) Timer() *timer.Timer             { return b.timer }
func (b *Bus) Video() *ppu.Registers           { return b.video }
func (b *Bus) Sound() *apu.Registers           { return b.sound }

// Cycles returns the machine cycles charged so far.
func (b *Bus) Cycles() uint64 { return b.cycles }

// IgnoredWrites counts stores that changed nothing: ROM writes on carts
// without banking registers and writes to the unusable ranges.
func (b *Bus) IgnoredWrites() uint64 { return b.ignoredWrites }

// AddCycles charges elapsed cycles and advances the timer and the scanline
// sequencer by the same amount.
func (b *Bus) AddCycles(n int) {
	if n <= 0 {
		return
	}
	b.cycles += uint64(n)
	b.timer.Tick(n)
	b.video.Tick(n)
}

// Fault returns and clears the first unmodeled access since the last call.
func (b *Bus) Fault() error {
	err := b.fault
	b.fault = nil
	return err
}

func (b *Bus) unmodeled(addr uint16, r Region, write bool) {
	if b.fault == nil {
		b.fault = &UnmodeledError{Addr: addr, Region: r, Write: write}
	}
}

// Load returns the byte at addr.
func (b *Bus) Load(addr uint16) byte {
	region, off := Resolve(addr)
	switch region {
	case RegionROM0, RegionROMX:
		if b.cart == nil {
			b.unmodeled(addr, region, false)
			return 0xFF
		}
		return b.cart.ReadROM(addr)
	case RegionTileData:
		return b.video.ReadTileData(off)
	case RegionBGMap1, RegionBGMap2:
		return b.video.ReadMap(region == RegionBGMap2, off)
	case RegionCartRAM:
		if b.cart == nil {
			b.unmodeled(addr, region, false)
			return 0xFF
		}
		return b.cart.ReadRAM(off)
	case RegionWRAM:
		return b.wram[off]
	case RegionEcho:
		return b.wram[off]
	case RegionOAM:
		return b.video.ReadOAM(off)
	case RegionIO:
		return b.loadIO(addr)
	case RegionHRAM:
		return b.hram[off]
	case RegionIE:
		return b.irq.ReadIE()
	}
	return 0
}

// Store writes v at addr.
func (b *Bus) Store(addr uint16, v byte) {
	region, off := Resolve(addr)
	switch region {
	case RegionROM0, RegionROMX:
		if b.cart == nil {
			b.unmodeled(addr, region, true)
			return
		}
		if _, plain := b.cart.(*cart.NoBanking); plain {
			b.ignoredWrites++
			b.log.Debugf("bus: write %02X to ROM %04X ignored", v, addr)
		}
		b.cart.WriteROMControl(addr, v)
	case RegionTileData:
		b.video.WriteTileData(off, v)
	case RegionBGMap1, RegionBGMap2:
		b.video.WriteMap(region == RegionBGMap2, off, v)
	case RegionCartRAM:
		if b.cart == nil {
			b.unmodeled(addr, region, true)
			return
		}
		b.cart.WriteRAM(off, v)
	case RegionWRAM, RegionEcho:
		b.wram[off] = v
	case RegionOAM:
		b.video.WriteOAM(off, v)
	case RegionUnusable:
		b.ignoredWrites++
		b.log.Debugf("bus: write %02X to unusable %04X ignored", v, addr)
	case RegionIO:
		b.storeIO(addr, v)
	case RegionHRAM:
		b.hram[off] = v
	case RegionIE:
		b.irq.WriteIE(v)
	}
}

// Load16 reads a little-endian word.
func (b *Bus) Load16(addr uint16) uint16 {
	return uint16(b.Load(addr)) | uint16(b.Load(addr+1))<<8
}

// Store16 writes v as two byte stores, low byte at addr.
func (b *Bus) Store16(addr uint16, v uint16) {
	b.Store(addr, byte(v))
	b.Store(addr+1, byte(v>>8))
}

func (b *Bus) loadIO(addr uint16) byte {
	switch {
	case addr == 0xFF00:
		return b.joyp.read()
	case addr == 0xFF01:
		return b.ser.data
	case addr == 0xFF02:
		return b.readSerialControl()
	case addr >= 0xFF04 && addr <= 0xFF07:
		return b.timer.Read(addr)
	case addr == 0xFF0F:
		return b.irq.ReadIF()
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.sound.Read(addr)
	case addr == 0xFF46:
		return b.dma
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.video.ReadRegister(addr)
	}
	// FF03, FF08-FF0E
	return 0xFF
}

func (b *Bus) storeIO(addr uint16, v byte) {
	switch {
	case addr == 0xFF00:
		b.writeJoypad(v)
	case addr == 0xFF01:
		b.ser.data = v
	case addr == 0xFF02:
		b.writeSerialControl(v)
	case addr >= 0xFF04 && addr <= 0xFF07:
		b.timer.Write(addr, v)
	case addr == 0xFF0F:
		b.irq.WriteIF(v)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.sound.Write(addr, v)
	case addr == 0xFF46:
		b.startDMA(v)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.video.WriteRegister(addr, v)
	default:
		b.ignoredWrites++
		b.log.Debugf("bus: write %02X to unused I/O %04X ignored", v, addr)
	}
}

// startDMA copies 160 bytes from v<<8 into sprite memory.
func (b *Bus) startDMA(v byte) {
	b.dma = v
	src := uint16(v) << 8
	for i := uint16(0); i < ppu.OAMSize; i++ {
		b.video.WriteOAM(i, b.Load(src+i))
	}
}

// powerUpIO is the register state the boot ROM leaves behind.
var powerUpIO = []struct {
	addr uint16
	v    byte
}{
	{0xFF05, 0x00}, {0xFF06, 0x00}, {0xFF07, 0x00},
	{0xFF10, 0x80}, {0xFF11, 0xBF}, {0xFF12, 0xF3}, {0xFF14, 0xBF},
	{0xFF16, 0x3F}, {0xFF17, 0x00}, {0xFF19, 0xBF},
	{0xFF1A, 0x7F}, {0xFF1B, 0xFF}, {0xFF1C, 0x9F}, {0xFF1E, 0xBF},
	{0xFF20, 0xFF}, {0xFF21, 0x00}, {0xFF22, 0x00}, {0xFF23, 0xBF},
	{0xFF24, 0x77}, {0xFF25, 0xF3}, {0xFF26, 0xF1},
	{0xFF40, 0x91}, {0xFF42, 0x00}, {0xFF43, 0x00}, {0xFF45, 0x00},
	{0xFF47, 0xFC}, {0xFF48, 0xFF}, {0xFF49, 0xFF},
	{0xFF4A, 0x00}, {0xFF4B, 0x00},
	{0xFFFF, 0x00}, {0xFF0F, 0xE1},
}

// PowerUp stores the post-boot I/O register values.
func (b *Bus) PowerUp() {
	b.joyp.selector = 0
	for _, r := range powerUpIO {
		b.Store(r.addr, r.v)
	}
}
