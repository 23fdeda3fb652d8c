package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
)

func TestImage_Scale(t *testing.T) {
	var f ppu.Frame
	img := Image(&f, ppu.GreyPalette, 1)
	assert.Equal(t, ppu.Width, img.Bounds().Dx())

	img = Image(&f, ppu.GreyPalette, 3)
	assert.Equal(t, ppu.Width*3, img.Bounds().Dx())
	assert.Equal(t, ppu.Height*3, img.Bounds().Dy())
	assert.Equal(t, ppu.GreyPalette[0], img.RGBAAt(479, 431))
}

func TestPNG_Decodes(t *testing.T) {
	var f ppu.Frame
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, &f, ppu.GreenPalette, 2))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, ppu.Width*2, img.Bounds().Dx())
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0x9B), r>>8)
	assert.Equal(t, uint32(0xBC), g>>8)
	assert.Equal(t, uint32(0x0F), b>>8)
}

func TestASCII_Dimensions(t *testing.T) {
	var f ppu.Frame
	out := ASCII(&f, 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, ppu.Height/4)
	assert.Len(t, lines[0], ppu.Width/2)
	assert.Equal(t, strings.Repeat(" ", ppu.Width/2), lines[0])
}
