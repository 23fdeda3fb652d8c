package ppu

// renderBackground produces 160 colour indices of the background for line ly.
func renderBackground(mem VRAMReader, mapBase uint16, tileData8000 bool, scx, scy, ly byte) [Width]byte {
	var out [Width]byte
	y := uint16(ly) + uint16(scy)
	var q fifo
	f := tileFetcher{mem: mem, fifo: &q}
	f.start(mapBase, uint16(scx)>>3, (y>>3)&31, byte(y&7), tileData8000)
	for i := 0; i < int(scx&7); i++ {
		f.next()
	}
	for x := range out {
		out[x] = f.next()
	}
	return out
}

// renderWindow overwrites out from column winX onwards with window pixels
// taken from window row line. It reports whether any pixel was drawn.
func renderWindow(out *[Width]byte, mem VRAMReader, mapBase uint16, tileData8000 bool, winX, line int) bool {
	if winX >= Width {
		return false
	}
	var q fifo
	f := tileFetcher{mem: mem, fifo: &q}
	f.start(mapBase, 0, uint16(line>>3), byte(line&7), tileData8000)
	x := winX
	for ; x < 0; x++ {
		f.next()
	}
	for ; x < Width; x++ {
		out[x] = f.next()
	}
	return true
}

// renderLine composites background, window and sprites for the current LY.
func (p *PPU) renderLine() {
	r := &p.bus.Regs
	ly := r.LY
	if int(ly) >= Height {
		return
	}
	tileData8000 := p.lcdc(lcdcTileData)

	var bg [Width]byte
	bgOn := p.lcdc(lcdcBGEnable)
	if bgOn {
		bg = renderBackground(p.bus, mapBase(p.lcdc(lcdcBGMap)), tileData8000, r.SCX, r.SCY, ly)
	}

	// The window is its own layer and draws with the background off.
	winFrom := Width
	if p.lcdc(lcdcWinEnable) && ly >= r.WY {
		if ly == r.WY {
			p.windowLine = 0
		}
		if renderWindow(&bg, p.bus, mapBase(p.lcdc(lcdcWinMap)), tileData8000, int(r.WX)-7, p.windowLine) {
			p.windowLine++
			winFrom = max(int(r.WX)-7, 0)
		}
	}

	var objCI, objPal [Width]byte
	if p.lcdc(lcdcOBJEnable) {
		height := 8
		if p.lcdc(lcdcOBJSize) {
			height = 16
		}
		sprites := selectSprites(p.bus, ly, height)
		objCI, objPal = composeSprites(p.bus, sprites, ly, height, &bg)
	}

	for x := 0; x < Width; x++ {
		var s Shade
		if bgOn || x >= winFrom {
			s = applyPalette(r.BGP, bg[x])
		}
		if objCI[x] != 0 {
			obp := r.OBP0
			if objPal[x] == 1 {
				obp = r.OBP1
			}
			s = applyPalette(obp, objCI[x])
		}
		p.frame.pix[ly][x] = s
	}
}

func mapBase(high bool) uint16 {
	if high {
		return 0x9C00
	}
	return 0x9800
}

// applyPalette maps a colour index through a BGP/OBP register.
func applyPalette(reg, ci byte) Shade {
	return Shade(reg >> (ci * 2) & 0x03)
}
