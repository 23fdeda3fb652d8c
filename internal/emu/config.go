package emu

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
)

// Option configures a Session at construction.
type Option func(*Session)

// WithSerial routes bytes the guest shifts out over the link port to w.
// Test ROMs report their results this way.
func WithSerial(w io.Writer) Option {
	return func(s *Session) { s.serial = w }
}

// WithTrace writes one line per executed instruction to w.
func WithTrace(w io.Writer) Option {
	return func(s *Session) { s.trace = w }
}

// WithPalette sets the colours Framebuffer uses.
func WithPalette(p ppu.Palette) Option {
	return func(s *Session) { s.palette = p }
}
