package bus

// Region names one exclusive slice of the 16-bit address space.
type Region uint8

const (
	RegionROM0 Region = iota
	RegionROMX
	RegionTileData
	RegionBGMap1
	RegionBGMap2
	RegionCartRAM
	RegionWRAM
	RegionEcho
	RegionOAM
	RegionUnusable
	RegionIO
	RegionHRAM
	RegionIE
	regionCount
)

var regionNames = [regionCount]string{
	"rom0", "romx", "tile-data", "bg-map1", "bg-map2", "cart-ram", "wram",
	"echo", "oam", "unusable", "io", "hram", "ie",
}

func (r Region) String() string {
	if r < regionCount {
		return regionNames[r]
	}
	return "invalid"
}

// Range is an inclusive address range.
type Range struct {
	Start, End uint16
}

// Contains reports whether addr falls in r and its offset from Start.
func (r Range) Contains(addr uint16) (uint16, bool) {
	if addr < r.Start || addr > r.End {
		return 0, false
	}
	return addr - r.Start, true
}

type mapping struct {
	region Region
	rng    Range
}

// memoryMap lists every range in priority order. The ranges are disjoint and
// together cover 0x0000-0xFFFF.
var memoryMap = []mapping{
	{RegionROM0, Range{0x0000, 0x3FFF}},
	{RegionROMX, Range{0x4000, 0x7FFF}},
	{RegionTileData, Range{0x8000, 0x97FF}},
	{RegionBGMap1, Range{0x9800, 0x9BFF}},
	{RegionBGMap2, Range{0x9C00, 0x9FFF}},
	{RegionCartRAM, Range{0xA000, 0xBFFF}},
	{RegionWRAM, Range{0xC000, 0xDFFF}},
	{RegionEcho, Range{0xE000, 0xFDFF}},
	{RegionOAM, Range{0xFE00, 0xFE9F}},
	{RegionUnusable, Range{0xFEA0, 0xFEFF}},
	{RegionIO, Range{0xFF00, 0xFF4B}},
	{RegionUnusable, Range{0xFF4C, 0xFF7F}},
	{RegionHRAM, Range{0xFF80, 0xFFFE}},
	{RegionIE, Range{0xFFFF, 0xFFFF}},
}

// Resolve returns the region owning addr and the offset into it.
func Resolve(addr uint16) (Region, uint16) {
	for _, m := range memoryMap {
		if off, ok := m.rng.Contains(addr); ok {
			return m.region, off
		}
	}
	// unreachable while memoryMap covers the whole space
	return RegionUnusable, 0
}
