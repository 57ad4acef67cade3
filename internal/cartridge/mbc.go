package cartridge

// MBC is a memory bank controller: the chip on the cartridge PCB that maps
// ROM and RAM banks into the CPU's 0x0000-0x7FFF and 0xA000-0xBFFF windows.
type MBC interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	// RAM returns the battery-backed save RAM for persistence, or nil if the
	// cartridge has none.
	RAM() []byte
}
