package ppu

import (
	"hash/crc32"
	"image"
	"image/color"
)

const (
	Width  = 160
	Height = 144
)

// Shade is a display colour after palette mapping: 0 lightest, 3 darkest.
type Shade byte

// Frame is the 160x144 output of the PPU.
type Frame struct {
	pix [Height][Width]Shade
}

func (f *Frame) At(x, y int) Shade { return f.pix[y][x] }

// Palette turns shades into display colours.
type Palette [4]color.RGBA

var (
	// GreyPalette is a neutral four-step ramp.
	GreyPalette = Palette{
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xC0, 0xC0, 0xC0, 0xFF},
		{0x60, 0x60, 0x60, 0xFF},
		{0x00, 0x00, 0x00, 0xFF},
	}
	// GreenPalette approximates the original LCD.
	GreenPalette = Palette{
		{0x9B, 0xBC, 0x0F, 0xFF},
		{0x8B, 0xAC, 0x0F, 0xFF},
		{0x30, 0x62, 0x30, 0xFF},
		{0x0F, 0x38, 0x0F, 0xFF},
	}
)

// WriteRGBA fills dst (at least Width*Height*4 bytes) with RGBA pixels.
func (f *Frame) WriteRGBA(dst []byte, pal Palette) {
	i := 0
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c := pal[f.pix[y][x]&3]
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c.R, c.G, c.B, c.A
			i += 4
		}
	}
}

func (f *Frame) RGBA(pal Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	f.WriteRGBA(img.Pix, pal)
	return img
}

// Checksum is a CRC32 over the shades, stable across palettes.
func (f *Frame) Checksum() uint32 {
	return crc32.ChecksumIEEE(f.bytes())
}

func (f *Frame) bytes() []byte {
	out := make([]byte, 0, Width*Height)
	for y := range f.pix {
		for _, s := range f.pix[y] {
			out = append(out, byte(s))
		}
	}
	return out
}

func (f *Frame) setBytes(b []byte) {
	for i := 0; i < len(b) && i < Width*Height; i++ {
		f.pix[i/Width][i%Width] = Shade(b[i] & 3)
	}
}
