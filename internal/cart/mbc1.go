package cart

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// BankingMode selects whether the 2-bit secondary register drives the RAM bank.
type BankingMode uint8

const (
	SimpleBanking BankingMode = iota
	RAMBanking
)

// SingleBank is the MBC1 controller: one switchable ROM window at
// 0x4000-0x7FFF and one switchable RAM window at 0xA000-0xBFFF.
type SingleBank struct {
	rom    []byte
	ram    []byte
	header *Header

	romBank    uint8 // low 5 bits, 0 selects 1
	secondary  uint8 // RAM bank or ROM bank bits 5-6
	ramEnabled bool
	mode       BankingMode
	battery    bool
}

func newSingleBank(rom []byte, h *Header, ramSize int, battery bool) *SingleBank {
	m := &SingleBank{rom: rom, header: h, romBank: 1, battery: battery}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *SingleBank) Header() *Header { return m.header }

// ROMBank returns the bank mapped at 0x4000.
func (m *SingleBank) ROMBank() int {
	bank := int(m.romBank)
	if m.mode == SimpleBanking {
		bank |= int(m.secondary) << 5
	}
	if banks := len(m.rom) / romBankSize; banks > 0 {
		bank %= banks
	}
	return bank
}

// RAMBank returns the bank mapped at 0xA000.
func (m *SingleBank) RAMBank() int {
	if m.mode == SimpleBanking {
		return 0
	}
	return int(m.secondary)
}

func (m *SingleBank) RAMEnabled() bool  { return m.ramEnabled }
func (m *SingleBank) Mode() BankingMode { return m.mode }

func (m *SingleBank) ReadROM(offset uint16) byte {
	off := int(offset)
	if offset >= romBankSize {
		off = m.ROMBank()*romBankSize | int(offset&(romBankSize-1))
	}
	if off < len(m.rom) {
		return m.rom[off]
	}
	return 0xFF
}

func (m *SingleBank) WriteROMControl(offset uint16, value byte) {
	switch {
	case offset < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case offset < 0x4000:
		m.romBank = value & 0x1F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case offset < 0x6000:
		m.secondary = value & 0x03
	case offset < 0x8000:
		m.mode = BankingMode(value & 0x01)
	}
}

func (m *SingleBank) ramOffset(offset uint16) (int, bool) {
	if !m.ramEnabled || len(m.ram) == 0 {
		return 0, false
	}
	off := m.RAMBank()*ramBankSize | int(offset&(ramBankSize-1))
	off %= len(m.ram)
	return off, true
}

func (m *SingleBank) ReadRAM(offset uint16) byte {
	off, ok := m.ramOffset(offset)
	if !ok {
		return 0
	}
	return m.ram[off]
}

func (m *SingleBank) WriteRAM(offset uint16, value byte) {
	if off, ok := m.ramOffset(offset); ok {
		m.ram[off] = value
	}
}

// HasBattery reports whether RAM contents should be persisted.
func (m *SingleBank) HasBattery() bool { return m.battery && len(m.ram) > 0 }

func (m *SingleBank) SaveRAM() []byte {
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *SingleBank) LoadRAM(data []byte) {
	copy(m.ram, data)
}
