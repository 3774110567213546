// Package emu wires a cartridge, the bus and the CPU into a machine that
// front-ends drive one instruction or one frame at a time.
package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/log"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
)

// ErrNoCartridge is returned when stepping before a cartridge is loaded.
var ErrNoCartridge = errors.New("emu: no cartridge loaded")

type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

type Machine struct {
	cfg Config
	log log.Logger

	bus  *bus.Bus
	cpu  *cpu.CPU
	cart cart.Controller

	romPath     string
	fingerprint uint64
	serial      io.Writer
}

// New returns an empty machine. A nil logger is replaced by one at
// cfg.LogLevel.
func New(cfg Config, l log.Logger) *Machine {
	if cfg.FrameCycles <= 0 {
		cfg.FrameCycles = FrameCycles
	}
	if l == nil {
		l = log.New(cfg.LogLevel)
	}
	return &Machine{cfg: cfg, log: l}
}

// LoadCartridge validates rom and replaces the current machine state with a
// powered-up one. On error the previous state is kept.
func (m *Machine) LoadCartridge(rom []byte) error {
	c, err := cart.New(rom)
	if err != nil {
		return fmt.Errorf("emu: load cartridge: %w", err)
	}

	b := bus.New(c, m.log)
	if m.serial != nil {
		b.SetSerialWriter(m.serial)
	}
	core := cpu.New(b)
	core.SetLogger(m.log, m.cfg.Trace)
	core.PowerUp()

	m.cart, m.bus, m.cpu = c, b, core
	m.fingerprint = cart.Fingerprint(rom)

	h := c.Header()
	m.log.Infof("cartridge %q type=%s rom=%dKiB/%d banks ram=%dKiB fingerprint=%016x",
		h.Title, h.CartTypeStr, h.ROMSizeBytes/1024, h.ROMBanks, h.RAMSizeBytes/1024, m.fingerprint)

	if m.cfg.BatteryPath != "" {
		if err := m.LoadBatteryFile(m.cfg.BatteryPath); err != nil {
			m.log.Warnf("battery: %v", err)
		}
	}
	return nil
}

// LoadROMFromFile reads path (raw or archived) and loads it.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := cart.LoadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(data); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

// ROMPath returns the currently loaded ROM file path, if any.
func (m *Machine) ROMPath() string { return m.romPath }

func (m *Machine) Loaded() bool { return m.cpu != nil }

// PowerUp resets the CPU and I/O to the post-boot state, keeping the
// cartridge and its RAM.
func (m *Machine) PowerUp() error {
	if m.cpu == nil {
		return ErrNoCartridge
	}
	m.cpu.PowerUp()
	return nil
}

// Step advances pending EI/DI requests and runs one instruction.
func (m *Machine) Step() error {
	if m.cpu == nil {
		return ErrNoCartridge
	}
	m.cpu.AdvanceInterruptState()
	return m.cpu.Step()
}

// RunSteps runs up to n instructions and reports how many completed.
func (m *Machine) RunSteps(n int) (int, error) {
	for i := 0; i < n; i++ {
		if err := m.Step(); err != nil {
			return i, err
		}
	}
	return n, nil
}

// StepFrame runs instructions until a frame's worth of cycles has elapsed.
func (m *Machine) StepFrame() error {
	if m.cpu == nil {
		return ErrNoCartridge
	}
	target := m.bus.Cycles() + uint64(m.cfg.FrameCycles)
	for m.bus.Cycles() < target {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// ReadBusByte reads through the bus for viewers and debuggers.
func (m *Machine) ReadBusByte(addr uint16) byte {
	if m.bus == nil {
		return 0xFF
	}
	return m.bus.Load(addr)
}

// CurrentPC is the address of the instruction last executed.
func (m *Machine) CurrentPC() uint16 {
	if m.cpu == nil {
		return 0
	}
	return m.cpu.CurrentPC()
}

func (m *Machine) CPU() *cpu.CPU { return m.cpu }
func (m *Machine) Bus() *bus.Bus { return m.bus }

// Header returns the loaded cartridge header, or nil.
func (m *Machine) Header() *cart.Header {
	if m.cart == nil {
		return nil
	}
	return m.cart.Header()
}

func (m *Machine) Fingerprint() uint64 { return m.fingerprint }

// Frame renders background and window from the current video state.
func (m *Machine) Frame() [ppu.ScreenHeight][ppu.ScreenWidth]ppu.Shade {
	if m.bus == nil {
		return [ppu.ScreenHeight][ppu.ScreenWidth]ppu.Shade{}
	}
	return m.bus.Video().Frame()
}

// SetSerialWriter receives bytes sent over the link port. It survives
// cartridge reloads.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.serial = w
	if m.bus != nil {
		m.bus.SetSerialWriter(w)
	}
}

func (m *Machine) SetButtons(b Buttons) {
	if m.bus == nil {
		return
	}
	var mask bus.Buttons
	if b.Right {
		mask |= bus.JoypRight
	}
	if b.Left {
		mask |= bus.JoypLeft
	}
	if b.Up {
		mask |= bus.JoypUp
	}
	if b.Down {
		mask |= bus.JoypDown
	}
	if b.A {
		mask |= bus.JoypA
	}
	if b.B {
		mask |= bus.JoypB
	}
	if b.Select {
		mask |= bus.JoypSelect
	}
	if b.Start {
		mask |= bus.JoypStart
	}
	m.bus.SetJoypadState(mask)
}

func (m *Machine) battery() (cart.BatteryBacked, bool) {
	if m.cart == nil {
		return nil, false
	}
	if hb, ok := m.cart.(interface{ HasBattery() bool }); ok && !hb.HasBattery() {
		return nil, false
	}
	bb, ok := m.cart.(cart.BatteryBacked)
	return bb, ok
}

// SaveBattery returns a copy of battery-backed cartridge RAM.
func (m *Machine) SaveBattery() ([]byte, bool) {
	bb, ok := m.battery()
	if !ok {
		return nil, false
	}
	data := bb.SaveRAM()
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// LoadBattery restores cartridge RAM saved by SaveBattery.
func (m *Machine) LoadBattery(data []byte) bool {
	bb, ok := m.battery()
	if !ok {
		return false
	}
	bb.LoadRAM(data)
	return true
}

// SaveBatteryFile writes battery RAM to path. Carts without a battery
// write nothing.
func (m *Machine) SaveBatteryFile(path string) error {
	data, ok := m.SaveBattery()
	if !ok {
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("emu: save battery: %w", err)
	}
	m.log.Infof("battery RAM saved to %s (%d bytes)", path, len(data))
	return nil
}

// LoadBatteryFile restores battery RAM from path. A missing file is not an
// error.
func (m *Machine) LoadBatteryFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("emu: load battery: %w", err)
	}
	if m.LoadBattery(data) {
		m.log.Infof("battery RAM restored from %s", path)
	}
	return nil
}

// Close persists battery RAM to the configured path.
func (m *Machine) Close() error {
	if m.cfg.BatteryPath == "" {
		return nil
	}
	return m.SaveBatteryFile(m.cfg.BatteryPath)
}
