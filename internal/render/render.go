// Package render turns PPU frames into images and text for front-ends.
package render

import (
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
)

// Image returns the frame as RGBA, upscaled by an integer factor with
// nearest-neighbour sampling so pixels stay square.
func Image(f *ppu.Frame, pal ppu.Palette, scale int) *image.RGBA {
	src := f.RGBA(pal)
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, ppu.Width*scale, ppu.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// PNG encodes the frame at the given scale.
func PNG(w io.Writer, f *ppu.Frame, pal ppu.Palette, scale int) error {
	return png.Encode(w, Image(f, pal, scale))
}

// asciiRamp maps shades, lightest first.
var asciiRamp = [4]byte{' ', '.', '+', '#'}

// ASCII renders the frame as text, sampling every step-th pixel across and
// every 2*step-th line down to roughly keep the aspect ratio in a terminal.
func ASCII(f *ppu.Frame, step int) string {
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for y := 0; y < ppu.Height; y += 2 * step {
		for x := 0; x < ppu.Width; x += step {
			sb.WriteByte(asciiRamp[f.At(x, y)&3])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
