package ui

import (
	"strings"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
)

// Config contains window and input related settings.
type Config struct {
	Title         string // window title
	Scale         int    // integer upscaling factor
	Palette       string // "grey" or "green"
	ROMsDir       string // directory to browse for ROMs
	StateDir      string // where quick-save slots go; empty means next to the ROM
	ScreenshotDir string
	SaveRAM       bool // flush battery RAM to .sav on ROM switch and exit
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.Palette == "" {
		c.Palette = "grey"
	}
	if c.ROMsDir == "" {
		c.ROMsDir = "roms"
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
}

var paletteNames = []string{"grey", "green"}

// PaletteByName returns the display palette for name, falling back to grey.
func PaletteByName(name string) ppu.Palette {
	switch strings.ToLower(name) {
	case "green":
		return ppu.GreenPalette
	}
	return ppu.GreyPalette
}
