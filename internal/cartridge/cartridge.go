// Package cartridge parses Game Boy ROM images and provides the memory
// bank controller that maps them into the address space.
package cartridge

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/retrocore/gbcore/pkg/log"
)

// ErrMalformedCartridge is returned by Load when the ROM image is too short
// to contain a header, or fails the Nintendo logo check.
var ErrMalformedCartridge = errors.New("cartridge: malformed ROM image")

// Cartridge owns the ROM image, its parsed header, and the bank controller
// it selected.
type Cartridge struct {
	header Header
	mbc    MBC
	rtc    *mbc3
	digest uint64
}

// Load parses rom and constructs the matching MBC. logger receives a
// warning whenever an unsupported cartridge type falls back to plain
// read-only mapping.
func Load(rom []byte, logger log.Logger) (*Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, ErrMalformedCartridge
	}
	header := ParseHeader(rom)
	if !header.LogoValid {
		return nil, ErrMalformedCartridge
	}
	if !header.HeaderChecksumOK {
		logger.Errorf("cartridge: header checksum mismatch for %q (continuing anyway)", header.Title)
	}

	c := &Cartridge{header: header, digest: xxhash.Sum64(rom)}

	switch header.Type {
	case TypeROMOnly:
		c.mbc = newNoMBC(rom, header.RAMSize)
	case TypeMBC1, TypeMBC1RAM, TypeMBC1RAMBattery:
		c.mbc = newMBC1(rom, header)
	case TypeMBC3, TypeMBC3RAM, TypeMBC3RAMBattery, TypeMBC3TimerBattery, TypeMBC3TimerRAMBatt:
		m := newMBC3(rom, header)
		c.mbc = m
		c.rtc = m
	default:
		logger.Errorf("cartridge: unsupported mapper 0x%02X, falling back to read-only mapping", header.Type)
		c.mbc = newNoMBC(rom, header.RAMSize)
	}

	return c, nil
}

func (c *Cartridge) Header() Header { return c.header }

// Digest is the 64-bit xxhash of the raw ROM image, used to identify a
// cartridge without hashing its (potentially large) contents again.
func (c *Cartridge) Digest() uint64 { return c.digest }

func (c *Cartridge) Read(addr uint16) uint8        { return c.mbc.Read(addr) }
func (c *Cartridge) Write(addr uint16, value uint8) { c.mbc.Write(addr, value) }

// Tick advances the cartridge's real-time clock, if it has one.
func (c *Cartridge) Tick(cycles uint16) {
	if c.rtc != nil {
		c.rtc.Tick(cycles)
	}
}

// SaveRAM returns the cartridge's battery-backed RAM for persistence, or
// nil if it has none.
func (c *Cartridge) SaveRAM() []byte {
	if !c.header.HasBattery() {
		return nil
	}
	return c.mbc.RAM()
}

// LoadRAM restores previously saved battery-backed RAM.
func (c *Cartridge) LoadRAM(data []byte) error {
	ram := c.mbc.RAM()
	if ram == nil {
		if len(data) == 0 {
			return nil
		}
		return fmt.Errorf("cartridge: no battery RAM to load into")
	}
	copy(ram, data)
	return nil
}
