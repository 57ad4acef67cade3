package cartridge

import "fmt"

// Mode describes a cartridge's declared compatibility with the Color Game
// Boy, read from the 0x0143 header byte.
type Mode uint8

const (
	ModeDMGOnly Mode = iota
	ModeCGBSupported
	ModeCGBOnly
)

// Type identifies the memory bank controller (if any) a cartridge expects.
type Type uint8

const (
	TypeROMOnly          Type = 0x00
	TypeMBC1             Type = 0x01
	TypeMBC1RAM          Type = 0x02
	TypeMBC1RAMBattery   Type = 0x03
	TypeMBC2             Type = 0x05
	TypeMBC2Battery      Type = 0x06
	TypeMBC3TimerBattery Type = 0x0F
	TypeMBC3TimerRAMBatt Type = 0x10
	TypeMBC3             Type = 0x11
	TypeMBC3RAM          Type = 0x12
	TypeMBC3RAMBattery   Type = 0x13
	TypeMBC5             Type = 0x19
	TypeMBC5RAM          Type = 0x1A
	TypeMBC5RAMBattery   Type = 0x1B
)

var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024, // unofficial, some early titles use it
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// nintendoLogo is the 48-byte bitmap every cartridge must reproduce at
// 0x0104-0x0133; the boot ROM refuses to run anything that doesn't match.
var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83,
	0x00, 0x0C, 0x00, 0x0D, 0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E,
	0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99, 0xBB, 0xBB, 0x67, 0x63,
	0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header is the parsed form of the 0x0100-0x014F cartridge header.
type Header struct {
	Title            string
	ManufacturerCode string
	Mode             Mode
	NewLicensee      string
	OldLicensee      uint8
	SGBSupported     bool
	Type             Type
	ROMSize          int
	RAMSize          int
	MaskROMVersion   uint8
	HeaderChecksum   uint8
	GlobalChecksum   uint16

	LogoValid       bool
	HeaderChecksumOK bool
}

// ParseHeader reads the header fields out of a full ROM image. rom must be
// at least 0x150 bytes; shorter images are rejected by the caller before
// this is reached.
func ParseHeader(rom []byte) Header {
	h := Header{}

	switch rom[0x0143] {
	case 0x80:
		h.Mode = ModeCGBSupported
	case 0xC0:
		h.Mode = ModeCGBOnly
	default:
		h.Mode = ModeDMGOnly
	}

	titleEnd := 0x0144
	if h.Mode != ModeDMGOnly {
		titleEnd = 0x0143
	}
	h.Title = trimNulls(rom[0x0134:titleEnd])
	h.ManufacturerCode = trimNulls(rom[0x013F:0x0143])
	h.NewLicensee = string(rom[0x0144:0x0146])
	h.SGBSupported = rom[0x0146] == 0x03
	h.Type = Type(rom[0x0147])
	h.ROMSize = (32 * 1024) << rom[0x0148]
	h.RAMSize = ramSizes[rom[0x0149]]
	h.OldLicensee = rom[0x014B]
	h.MaskROMVersion = rom[0x014C]
	h.HeaderChecksum = rom[0x014D]
	h.GlobalChecksum = uint16(rom[0x014E])<<8 | uint16(rom[0x014F])

	h.LogoValid = logoMatches(rom)
	h.HeaderChecksumOK = computeHeaderChecksum(rom) == h.HeaderChecksum

	return h
}

func trimNulls(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func logoMatches(rom []byte) bool {
	if len(rom) < 0x0134+48 {
		return false
	}
	for i, b := range nintendoLogo {
		if rom[0x0104+i] != b {
			return false
		}
	}
	return true
}

// computeHeaderChecksum reproduces the boot ROM's running-sum check over
// 0x0134-0x014C.
func computeHeaderChecksum(rom []byte) uint8 {
	var sum uint8
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}

func (h Header) CGB() bool {
	return h.Mode == ModeCGBSupported || h.Mode == ModeCGBOnly
}

func (h Header) HasBattery() bool {
	switch h.Type {
	case TypeMBC1RAMBattery, TypeMBC2Battery, TypeMBC3TimerBattery,
		TypeMBC3TimerRAMBatt, TypeMBC3RAMBattery, TypeMBC5RAMBattery:
		return true
	}
	return false
}

func (h Header) HasRTC() bool {
	return h.Type == TypeMBC3TimerBattery || h.Type == TypeMBC3TimerRAMBatt
}

func (h Header) String() string {
	return fmt.Sprintf("%s (type=0x%02X rom=%dKiB ram=%dKiB cgb=%v)",
		h.Title, h.Type, h.ROMSize/1024, h.RAMSize/1024, h.CGB())
}
