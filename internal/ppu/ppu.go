// Package ppu implements the pixel processing unit: the scanline state
// machine (OAM scan, drawing, HBlank, VBlank), VRAM/OAM storage with CGB
// bank switching, and background/window/sprite rendering into an RGB
// framebuffer.
package ppu

import (
	"github.com/retrocore/gbcore/internal/interrupts"
	"github.com/retrocore/gbcore/internal/ram"
	"github.com/retrocore/gbcore/internal/types"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	dotsPerLine  = 456
	oamScanDots  = 80
	drawingDots  = 172 // fixed-cost approximation of mode 3
	linesPerFrame = 154
)

// Mode is the two-bit value STAT reports in its low bits.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAMScan Mode = 2
	ModeDrawing Mode = 3
)

// PPU owns VRAM, OAM, every LCD register, and the framebuffer the host
// reads back once per frame.
type PPU struct {
	lcdc, stat             uint8
	scy, scx               uint8
	ly, lyc                uint8
	wy, wx                 uint8
	bgp, obp0, obp1        uint8
	vbk                    uint8
	windowLine             uint8
	dot                    uint16
	mode                   Mode
	statLine               bool
	frameReady             bool

	vram [2]*ram.RAM // bank 1 only meaningful in CGB mode
	oam  [160]uint8

	cgb          bool
	bgPalette    cgbPalette
	objPalette   cgbPalette

	irq *interrupts.State

	framebuffer [ScreenHeight][ScreenWidth][3]uint8
}

// New returns a PPU in its post-boot-ROM power-on state.
func New(irq *interrupts.State, cgb bool) *PPU {
	p := &PPU{
		irq:  irq,
		cgb:  cgb,
		lcdc: 0x91,
		bgp:  0xFC,
		mode: ModeOAMScan,
	}
	p.vram[0] = ram.New(0x2000)
	p.vram[1] = ram.New(0x2000)
	return p
}

func (p *PPU) enabled() bool { return p.lcdc&0x80 != 0 }

// Advance steps the PPU forward by cycles T-states. While the LCD is off
// the dot counter and LY are frozen, matching how real hardware never
// advances the scanline machine with the display disabled.
func (p *PPU) Advance(cycles uint16) {
	if !p.enabled() {
		return
	}
	for i := uint16(0); i < cycles; i++ {
		p.tick()
	}
}

func (p *PPU) tick() {
	p.dot++
	switch p.mode {
	case ModeOAMScan:
		if p.dot == oamScanDots {
			p.mode = ModeDrawing
		}
	case ModeDrawing:
		if p.dot == oamScanDots+drawingDots {
			p.renderScanline()
			p.mode = ModeHBlank
			p.updateSTATInterrupt()
		}
	case ModeHBlank:
		if p.dot == dotsPerLine {
			p.dot = 0
			p.ly++
			if p.ly == ScreenHeight {
				p.mode = ModeVBlank
				p.frameReady = true
				p.irq.Request(interrupts.VBlank)
			} else {
				p.mode = ModeOAMScan
			}
			p.checkLYC()
			p.updateSTATInterrupt()
		}
	case ModeVBlank:
		if p.dot == dotsPerLine {
			p.dot = 0
			p.ly++
			if p.ly == linesPerFrame {
				p.ly = 0
				p.windowLine = 0
				p.mode = ModeOAMScan
			}
			p.checkLYC()
			p.updateSTATInterrupt()
		}
	}
}

func (p *PPU) checkLYC() {
	if p.ly == p.lyc {
		p.stat |= 0x04
	} else {
		p.stat &^= 0x04
	}
}

// updateSTATInterrupt implements the STAT interrupt line as the OR of the
// four selectable sources; LCDSTAT fires only on a 0->1 transition of that
// combined line, which is why a game can safely leave multiple sources
// enabled at once without flooding interrupts.
func (p *PPU) updateSTATInterrupt() {
	line := p.stat&0x40 != 0 && p.stat&0x04 != 0
	switch p.mode {
	case ModeHBlank:
		line = line || p.stat&0x08 != 0
	case ModeVBlank:
		line = line || p.stat&0x10 != 0
	case ModeOAMScan:
		line = line || p.stat&0x20 != 0
	}
	if line && !p.statLine {
		p.irq.Request(interrupts.LCDSTAT)
	}
	p.statLine = line
}

// FrameReady reports whether a full frame has completed since the last
// call, clearing the flag.
func (p *PPU) FrameReady() bool {
	r := p.frameReady
	p.frameReady = false
	return r
}

// FrameBuffer returns the most recently rendered frame as 160x144 RGB
// triples, row-major.
func (p *PPU) FrameBuffer() [ScreenHeight][ScreenWidth][3]uint8 {
	return p.framebuffer
}

func (p *PPU) Read(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		return p.vram[p.vramBank()].Read(addr - 0x8000)
	case addr >= 0xFE00 && addr < 0xFEA0:
		return p.oam[addr-0xFE00]
	}
	switch addr {
	case types.LCDC:
		return p.lcdc
	case types.STAT:
		return p.stat | 0x80 | uint8(p.mode)
	case types.SCY:
		return p.scy
	case types.SCX:
		return p.scx
	case types.LY:
		return p.ly
	case types.LYC:
		return p.lyc
	case types.BGP:
		return p.bgp
	case types.OBP0:
		return p.obp0
	case types.OBP1:
		return p.obp1
	case types.WY:
		return p.wy
	case types.WX:
		return p.wx
	case types.VBK:
		return p.vbk | 0xFE
	case types.BCPS:
		return p.bgPalette.readIndex()
	case types.BCPD:
		return p.bgPalette.readData()
	case types.OCPS:
		return p.objPalette.readIndex()
	case types.OCPD:
		return p.objPalette.readData()
	}
	return 0xFF
}

func (p *PPU) Write(addr uint16, value uint8) {
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		p.vram[p.vramBank()].Write(addr-0x8000, value)
		return
	case addr >= 0xFE00 && addr < 0xFEA0:
		p.oam[addr-0xFE00] = value
		return
	}
	switch addr {
	case types.LCDC:
		wasEnabled := p.enabled()
		p.lcdc = value
		if wasEnabled && !p.enabled() {
			p.ly, p.dot = 0, 0
			p.mode = ModeVBlank
			p.framebuffer = [ScreenHeight][ScreenWidth][3]uint8{}
		} else if !wasEnabled && p.enabled() {
			p.mode = ModeOAMScan
		}
	case types.STAT:
		p.stat = p.stat&0x07 | value&0x78
		p.updateSTATInterrupt()
	case types.SCY:
		p.scy = value
	case types.SCX:
		p.scx = value
	case types.LY:
		// read-only on real hardware
	case types.LYC:
		p.lyc = value
		p.checkLYC()
		p.updateSTATInterrupt()
	case types.BGP:
		p.bgp = value
	case types.OBP0:
		p.obp0 = value
	case types.OBP1:
		p.obp1 = value
	case types.WY:
		p.wy = value
	case types.WX:
		p.wx = value
	case types.VBK:
		if p.cgb {
			p.vbk = value & 1
		}
	case types.BCPS:
		p.bgPalette.writeIndex(value)
	case types.BCPD:
		p.bgPalette.writeData(value)
	case types.OCPS:
		p.objPalette.writeIndex(value)
	case types.OCPD:
		p.objPalette.writeData(value)
	}
}

func (p *PPU) vramBank() uint8 {
	if p.cgb {
		return p.vbk & 1
	}
	return 0
}

// WriteOAMByte is used by OAM DMA, which writes directly into OAM rather
// than through the general-purpose bus dispatch.
func (p *PPU) WriteOAMByte(offset uint8, value uint8) {
	p.oam[offset] = value
}
