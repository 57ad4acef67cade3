package cartridge

import (
	"testing"

	"github.com/retrocore/gbcore/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankROM(romType uint8, romSizeCode uint8, ramSizeCode uint8) []byte {
	size := (32 * 1024) << romSizeCode
	if size < 0x8000 {
		size = 0x8000
	}
	rom := make([]byte, size)
	copy(rom[0x0104:0x0134], nintendoLogo[:])
	copy(rom[0x0134:0x0144], []byte("TESTGAME"))
	rom[0x0147] = romType
	rom[0x0148] = romSizeCode
	rom[0x0149] = ramSizeCode
	rom[0x014D] = computeHeaderChecksum(rom)
	return rom
}

func TestLoadRejectsShortImages(t *testing.T) {
	_, err := Load(make([]byte, 10), log.NewNullLogger())
	assert.ErrorIs(t, err, ErrMalformedCartridge)
}

func TestLoadRejectsBadLogo(t *testing.T) {
	rom := blankROM(0x00, 0x00, 0x00)
	rom[0x0104] = 0xFF
	_, err := Load(rom, log.NewNullLogger())
	assert.ErrorIs(t, err, ErrMalformedCartridge)
}

func TestNoMBCReadsFixedBank(t *testing.T) {
	rom := blankROM(0x00, 0x00, 0x00)
	rom[0x4000] = 0x42
	c, err := Load(rom, log.NewNullLogger())
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), c.Read(0x4000))
}

func TestMBC1BankSwitching(t *testing.T) {
	rom := blankROM(0x01, 0x03, 0x00) // MBC1, 256KiB (16 banks), no RAM
	for bank := 1; bank < 8; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	c, err := Load(rom, log.NewNullLogger())
	require.NoError(t, err)

	for bank := uint8(1); bank < 8; bank++ {
		c.Write(0x2000, bank)
		assert.Equal(t, bank, c.Read(0x4000), "bank %d", bank)
	}
}

func TestMBC1MultiCartUsesFourBitLowBank(t *testing.T) {
	rom := blankROM(0x01, 0x05, 0x00) // MBC1, 1MiB (64 banks)
	// stamp a second copy of the boot logo at the start of the second and
	// third quarters, so the multicart heuristic sees more than one match.
	copy(rom[0x40000+0x0104:0x40000+0x0134], nintendoLogo[:])
	copy(rom[0x80000+0x0104:0x80000+0x0134], nintendoLogo[:])
	for bank := 1; bank < 32; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	c, err := Load(rom, log.NewNullLogger())
	require.NoError(t, err)

	m := c.mbc.(*mbc1)
	require.True(t, m.isMultiCart)

	// bank1 is masked to 4 bits on a multicart, so writing 0x1F (0b11111)
	// only selects bank 0x0F within the current 16-bank quarter.
	c.Write(0x2000, 0x1F)
	assert.Equal(t, uint8(0x0F), m.bank1)
	assert.Equal(t, rom[0x0F*0x4000], c.Read(0x4000))
}

func TestMBC1Bank0Remap(t *testing.T) {
	rom := blankROM(0x01, 0x03, 0x00)
	c, err := Load(rom, log.NewNullLogger())
	require.NoError(t, err)

	c.Write(0x2000, 0x00) // selecting bank 0 remaps to bank 1
	assert.Equal(t, uint8(1), c.mbc.(*mbc1).bank1)
}

func TestMBC1RAMEnableGate(t *testing.T) {
	rom := blankROM(0x03, 0x00, 0x02) // MBC1+RAM+Battery, 8KiB RAM
	c, err := Load(rom, log.NewNullLogger())
	require.NoError(t, err)

	c.Write(0xA000, 0x55) // RAM disabled: write is dropped
	assert.Equal(t, uint8(0xFF), c.Read(0xA000))

	c.Write(0x0000, 0x0A) // enable RAM
	c.Write(0xA000, 0x55)
	assert.Equal(t, uint8(0x55), c.Read(0xA000))
}

func TestMBC3RTCLatch(t *testing.T) {
	rom := blankROM(0x0F, 0x00, 0x00) // MBC3+Timer+Battery
	c, err := Load(rom, log.NewNullLogger())
	require.NoError(t, err)

	for i := 0; i < 61*1024; i++ { // 61 seconds of cycles, 4096 at a time
		c.Tick(4096)
	}

	c.Write(0x0000, 0x0A) // RAM/timer enable
	c.Write(0x4000, 0x08) // select seconds register

	c.Write(0x6000, 0x00) // latch sequence
	c.Write(0x6000, 0x01)

	assert.Equal(t, uint8(1), c.Read(0xA000)) // 61s -> 1 minute, 1 second
}
