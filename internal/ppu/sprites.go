package ppu

const maxSpritesPerLine = 10

// OAMReader gives the renderer raw access to the sprite attribute table.
type OAMReader interface {
	OAM(i int) byte
}

// Sprite is one OAM entry with raw coordinates (Y+16, X+8).
type Sprite struct {
	Y, X, Tile, Attr byte
	OAMIndex         int
}

const (
	attrPalette = 0x10
	attrFlipX   = 0x20
	attrFlipY   = 0x40
	attrBehind  = 0x80
)

// selectSprites returns, in OAM order, the first ten entries that cover line ly.
func selectSprites(oam OAMReader, ly byte, height int) []Sprite {
	out := make([]Sprite, 0, maxSpritesPerLine)
	for i := 0; i < 40 && len(out) < maxSpritesPerLine; i++ {
		s := Sprite{
			Y:        oam.OAM(i * 4),
			X:        oam.OAM(i*4 + 1),
			Tile:     oam.OAM(i*4 + 2),
			Attr:     oam.OAM(i*4 + 3),
			OAMIndex: i,
		}
		top := int(s.Y) - 16
		if int(ly) >= top && int(ly) < top+height {
			out = append(out, s)
		}
	}
	return out
}

// composeSprites resolves the sprite layer for one line. For each column the
// opaque pixel of the sprite with the smallest X wins, OAM order breaking ties.
// A winner flagged behind-background is dropped where bg is non-zero.
// It returns colour indices (0 = no sprite) and palette selects (0 OBP0, 1 OBP1).
func composeSprites(mem VRAMReader, sprites []Sprite, ly byte, height int, bg *[Width]byte) (ci, pal [Width]byte) {
	var owner [Width]int
	for x := range owner {
		owner[x] = -1
	}
	var behind [Width]bool

	for i, s := range sprites {
		row := int(ly) - (int(s.Y) - 16)
		if s.Attr&attrFlipY != 0 {
			row = height - 1 - row
		}
		tile := s.Tile
		if height == 16 {
			tile &= 0xFE
		}
		lo, hi := tileRow(mem, tile+byte(row>>3), byte(row&7), true)

		left := int(s.X) - 8
		for col := 0; col < 8; col++ {
			x := left + col
			if x < 0 || x >= Width {
				continue
			}
			bit := 7 - col
			if s.Attr&attrFlipX != 0 {
				bit = col
			}
			c := pixel(lo, hi, bit)
			if c == 0 {
				continue
			}
			if o := owner[x]; o >= 0 && !wins(s, sprites[o]) {
				continue
			}
			owner[x] = i
			ci[x] = c
			pal[x] = 0
			if s.Attr&attrPalette != 0 {
				pal[x] = 1
			}
			behind[x] = s.Attr&attrBehind != 0
		}
	}

	for x := range ci {
		if behind[x] && bg[x] != 0 {
			ci[x] = 0
		}
	}
	return ci, pal
}

// wins reports whether a takes priority over b.
func wins(a, b Sprite) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.OAMIndex < b.OAMIndex
}
