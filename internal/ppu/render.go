package ppu

// tileAttr mirrors the CGB VRAM bank-1 attribute byte stored alongside
// every background/window tile map entry: palette number, VRAM bank,
// horizontal/vertical flip, and BG-to-OBJ priority.
type tileAttr uint8

func (a tileAttr) palette() uint8 { return uint8(a) & 0x07 }
func (a tileAttr) bank() uint8    { return uint8(a) >> 3 & 1 }
func (a tileAttr) flipX() bool    { return a&0x20 != 0 }
func (a tileAttr) flipY() bool    { return a&0x40 != 0 }
func (a tileAttr) priority() bool { return a&0x80 != 0 }

// renderScanline draws the current LY row (background, window, then
// sprites) into the framebuffer. Rendering happens once per line rather
// than pixel-by-pixel, which is why mode 3's duration here is a fixed
// approximation instead of depending on the actual sprite/window mix.
func (p *PPU) renderScanline() {
	if p.ly >= ScreenHeight {
		return
	}

	var bgColorIndex [ScreenWidth]uint8
	var bgPriority [ScreenWidth]bool
	var bgPal [ScreenWidth]uint8

	bgWinEnabled := p.lcdc&0x01 != 0 || p.cgb
	if bgWinEnabled {
		p.renderBackground(&bgColorIndex, &bgPriority, &bgPal)
	}
	if p.lcdc&0x20 != 0 && p.wy <= p.ly {
		p.renderWindow(&bgColorIndex, &bgPriority, &bgPal)
	}
	p.applyBackgroundPixels(bgColorIndex, bgPal)

	if p.lcdc&0x02 != 0 {
		p.renderSprites(bgColorIndex, bgPriority)
	}
}

func (p *PPU) applyBackgroundPixels(colorIndex [ScreenWidth]uint8, paletteNum [ScreenWidth]uint8) {
	for x := 0; x < ScreenWidth; x++ {
		p.framebuffer[p.ly][x] = p.bgColor(paletteNum[x], colorIndex[x])
	}
}

func (p *PPU) bgColor(paletteNum uint8, colorIndex uint8) [3]uint8 {
	if p.cgb {
		return p.bgPalette.rgb(paletteNum, colorIndex)
	}
	shade := dmgPaletteShade(p.bgp, colorIndex)
	return dmgShades[shade]
}

func (p *PPU) renderBackground(colorIndex *[ScreenWidth]uint8, priority *[ScreenWidth]bool, paletteNum *[ScreenWidth]uint8) {
	mapBase := uint16(0x9800)
	if p.lcdc&0x08 != 0 {
		mapBase = 0x9C00
	}
	y := uint16(p.scy) + uint16(p.ly)
	tileRow := (y / 8) % 32

	for x := 0; x < ScreenWidth; x++ {
		px := uint16(p.scx) + uint16(x)
		tileCol := (px / 8) % 32
		mapOffset := mapBase - 0x8000 + tileRow*32 + tileCol
		tileIndex := p.vram[0].Read(mapOffset)
		attr := tileAttr(0)
		if p.cgb {
			attr = tileAttr(p.vram[1].Read(mapOffset))
		}

		rowInTile := y % 8
		colInTile := px % 8
		if attr.flipY() {
			rowInTile = 7 - rowInTile
		}
		if attr.flipX() {
			colInTile = 7 - colInTile
		}

		ci := p.tilePixel(tileIndex, attr.bank(), rowInTile, colInTile)
		colorIndex[x] = ci
		priority[x] = attr.priority() && ci != 0
		paletteNum[x] = attr.palette()
	}
}

func (p *PPU) renderWindow(colorIndex *[ScreenWidth]uint8, priority *[ScreenWidth]bool, paletteNum *[ScreenWidth]uint8) {
	wx := int(p.wx) - 7
	if wx >= ScreenWidth {
		return
	}
	mapBase := uint16(0x9800)
	if p.lcdc&0x40 != 0 {
		mapBase = 0x9C00
	}
	tileRow := uint16(p.windowLine) / 8

	drewAny := false
	for x := 0; x < ScreenWidth; x++ {
		wxPix := x - wx
		if wxPix < 0 {
			continue
		}
		drewAny = true
		tileCol := uint16(wxPix) / 8 % 32
		mapOffset := mapBase - 0x8000 + tileRow*32 + tileCol
		tileIndex := p.vram[0].Read(mapOffset)
		attr := tileAttr(0)
		if p.cgb {
			attr = tileAttr(p.vram[1].Read(mapOffset))
		}

		rowInTile := uint16(p.windowLine) % 8
		colInTile := uint16(wxPix) % 8
		if attr.flipY() {
			rowInTile = 7 - rowInTile
		}
		if attr.flipX() {
			colInTile = 7 - colInTile
		}

		ci := p.tilePixel(tileIndex, attr.bank(), rowInTile, colInTile)
		colorIndex[x] = ci
		priority[x] = attr.priority() && ci != 0
		paletteNum[x] = attr.palette()
	}
	if drewAny {
		p.windowLine++
	}
}

// tilePixel reads one pixel's 2-bit color index out of tile data, using the
// LCDC bit 4 addressing mode (unsigned from 0x8000, or signed from 0x9000).
func (p *PPU) tilePixel(tileIndex uint8, bank uint8, row, col uint16) uint8 {
	var base uint16
	if p.lcdc&0x10 != 0 {
		base = 0x8000 + uint16(tileIndex)*16
	} else {
		base = 0x9000 + uint16(int16(int8(tileIndex)))*16
	}
	rowAddr := base - 0x8000 + row*2
	lo := p.vram[bank].Read(rowAddr)
	hi := p.vram[bank].Read(rowAddr + 1)
	bit := 7 - col
	return (hi>>bit&1)<<1 | lo>>bit&1
}

// spriteEntry is one 4-byte OAM record.
type spriteEntry struct {
	y, x, tile, attr uint8
}

func (p *PPU) renderSprites(bgColorIndex [ScreenWidth]uint8, bgPriority [ScreenWidth]bool) {
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}

	var visible []spriteEntry
	for i := 0; i < 40 && len(visible) < 10; i++ {
		e := spriteEntry{
			y:    p.oam[i*4],
			x:    p.oam[i*4+1],
			tile: p.oam[i*4+2],
			attr: p.oam[i*4+3],
		}
		top := int(e.y) - 16
		if int(p.ly) >= top && int(p.ly) < top+height {
			visible = append(visible, e)
		}
	}

	for x := 0; x < ScreenWidth; x++ {
		best, found := p.spritePixelAt(visible, x, height)
		if !found {
			continue
		}
		masterPriority := !p.cgb || p.lcdc&0x01 != 0
		if masterPriority && bgColorIndex[x] != 0 && (bgPriority[x] || best.behindBG) {
			continue
		}
		p.framebuffer[p.ly][x] = best.color
	}
}

type spritePixel struct {
	color    [3]uint8
	behindBG bool
}

// spritePixelAt resolves the highest-priority sprite covering column x:
// lowest OAM index wins ties, matching the CGB priority rule this core
// always applies (DMG's X-coordinate tiebreak is not modeled separately).
func (p *PPU) spritePixelAt(sprites []spriteEntry, x int, height int) (spritePixel, bool) {
	for _, e := range sprites {
		left := int(e.x) - 8
		if x < left || x >= left+8 {
			continue
		}
		row := int(p.ly) - (int(e.y) - 16)
		col := x - left
		if e.attr&0x40 != 0 { // Y flip
			row = height - 1 - row
		}
		if e.attr&0x20 != 0 { // X flip
			col = 7 - col
		}
		tile := e.tile
		if height == 16 {
			tile &^= 1
			if row >= 8 {
				tile |= 1
				row -= 8
			}
		}
		bank := uint8(0)
		if p.cgb {
			bank = e.attr >> 3 & 1
		}
		ci := p.tilePixel(tile, bank, uint16(row), uint16(col))
		if ci == 0 {
			continue
		}
		var color [3]uint8
		if p.cgb {
			color = p.objPalette.rgb(e.attr&0x07, ci)
		} else {
			palette := p.obp0
			if e.attr&0x10 != 0 {
				palette = p.obp1
			}
			color = dmgShades[dmgPaletteShade(palette, ci)]
		}
		return spritePixel{color: color, behindBG: e.attr&0x80 != 0}, true
	}
	return spritePixel{}, false
}
