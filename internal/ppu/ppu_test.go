package ppu

import (
	"testing"

	"github.com/retrocore/gbcore/internal/interrupts"
	"github.com/retrocore/gbcore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeSequencePerScanline(t *testing.T) {
	irq := interrupts.New()
	p := New(irq, false)

	assert.Equal(t, ModeOAMScan, p.mode)
	p.Advance(oamScanDots - 1)
	assert.Equal(t, ModeOAMScan, p.mode)
	p.Advance(1)
	assert.Equal(t, ModeDrawing, p.mode)
	p.Advance(drawingDots)
	assert.Equal(t, ModeHBlank, p.mode)
	p.Advance(dotsPerLine - oamScanDots - drawingDots)
	assert.Equal(t, ModeOAMScan, p.mode)
	assert.Equal(t, uint8(1), p.ly)
}

func TestVBlankEntersAfter144Lines(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.VBlank
	p := New(irq, false)

	for line := 0; line < ScreenHeight; line++ {
		p.Advance(dotsPerLine)
	}
	assert.Equal(t, ModeVBlank, p.mode)
	assert.True(t, irq.Pending())
}

func TestFullFrameReturnsToLine0(t *testing.T) {
	irq := interrupts.New()
	p := New(irq, false)
	for line := 0; line < linesPerFrame; line++ {
		p.Advance(dotsPerLine)
	}
	assert.Equal(t, uint8(0), p.ly)
	assert.Equal(t, ModeOAMScan, p.mode)
}

func TestLYCCoincidenceRaisesSTATInterrupt(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.LCDSTAT
	p := New(irq, false)
	p.Write(types.STAT, 0x40) // enable LYC=LY interrupt source
	p.Write(types.LYC, 1)

	p.Advance(dotsPerLine) // LY becomes 1
	assert.True(t, irq.Pending())
}

func TestBackgroundTileRendersExpectedColor(t *testing.T) {
	irq := interrupts.New()
	p := New(irq, false)
	p.Write(types.LCDC, 0x91) // LCD+BG on, tile data at 0x8000, map at 0x9800

	// tile 0, every row = 0b11111111 / 0b00000000 -> color index 1 everywhere
	for row := uint16(0); row < 8; row++ {
		p.vram[0].Write(row*2, 0xFF)
		p.vram[0].Write(row*2+1, 0x00)
	}
	p.Write(types.BGP, 0xE4) // identity mapping: index n -> shade n

	p.Advance(oamScanDots + drawingDots)
	require.Equal(t, ModeHBlank, p.mode)
	assert.Equal(t, dmgShades[1], p.framebuffer[0][0])
}
