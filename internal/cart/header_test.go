package cart

import (
	"encoding/binary"
	"errors"
	"testing"
)

// buildROM makes a synthetic image with a valid header and checksums.
// size should match the ROM size code (e.g. 64*1024 for code 0x01).
func buildROM(title string, cartType, romSizeCode, ramSizeCode byte, size int) []byte {
	rom := make([]byte, size)
	copy(rom[0x0104:0x0134], nintendoLogo[:])

	tbytes := []byte(title)
	if len(tbytes) > 16 {
		tbytes = tbytes[:16]
	}
	copy(rom[0x0134:0x0144], tbytes)

	rom[0x0147] = cartType
	rom[0x0148] = romSizeCode
	rom[0x0149] = ramSizeCode
	rom[0x014B] = 0x33
	rom[0x014C] = 0x01

	var hsum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		hsum = hsum - rom[addr] - 1
	}
	rom[0x014D] = hsum

	var gsum uint16
	for i := range rom {
		if i == 0x014E || i == 0x014F {
			continue
		}
		gsum += uint16(rom[i])
	}
	binary.BigEndian.PutUint16(rom[0x014E:0x0150], gsum)
	return rom
}

func TestParseHeader_Basic(t *testing.T) {
	rom := buildROM("TEST", 0x01, 0x01, 0x02, 64*1024)

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader error: %v", err)
	}
	if h.Title != "TEST" {
		t.Fatalf("Title got %q want %q", h.Title, "TEST")
	}
	if h.CartType != 0x01 || h.CartTypeStr != "MBC1" {
		t.Fatalf("CartType got %#02x / %s", h.CartType, h.CartTypeStr)
	}
	if h.ROMSizeBytes != 64*1024 || h.ROMBanks != 4 {
		t.Fatalf("ROM size decode got %d bytes / %d banks", h.ROMSizeBytes, h.ROMBanks)
	}
	if h.RAMSizeBytes != 8*1024 {
		t.Fatalf("RAM size decode got %d", h.RAMSizeBytes)
	}
	if !h.LogoOK {
		t.Fatalf("LogoOK = false, want true")
	}
	if !HeaderChecksumOK(rom) {
		t.Fatalf("HeaderChecksumOK = false, want true")
	}
}

func TestHeaderChecksum_Bad(t *testing.T) {
	rom := buildROM("TEST", 0x00, 0x00, 0x00, 32*1024)
	rom[0x0134] ^= 0xFF
	if HeaderChecksumOK(rom) {
		t.Fatalf("HeaderChecksumOK = true, want false after corruption")
	}
}

func TestParseHeader_ShortROM(t *testing.T) {
	short := make([]byte, 0x140)
	if _, err := ParseHeader(short); !errors.Is(err, ErrHeaderTooShort) {
		t.Fatalf("got %v, want ErrHeaderTooShort", err)
	}
}

func TestParseHeader_UnknownSizeCodes(t *testing.T) {
	rom := buildROM("BAD", 0x00, 0x09, 0x00, 32*1024)
	if _, err := ParseHeader(rom); !errors.Is(err, ErrSizeCode) {
		t.Fatalf("ROM code 0x09: got %v, want ErrSizeCode", err)
	}
	rom = buildROM("BAD", 0x00, 0x00, 0x07, 32*1024)
	if _, err := ParseHeader(rom); !errors.Is(err, ErrSizeCode) {
		t.Fatalf("RAM code 0x07: got %v, want ErrSizeCode", err)
	}
}

func TestHeader_HasBattery(t *testing.T) {
	tests := []struct {
		cartType, ramCode byte
		want              bool
	}{
		{0x00, 0x00, false},
		{0x02, 0x02, false}, // MBC1+RAM
		{0x03, 0x02, true},  // MBC1+RAM+BATTERY
		{0x0F, 0x00, false}, // clock battery only
		{0x10, 0x03, true},
		{0x1B, 0x04, true},
		{0x1B, 0x00, false},
	}
	for _, tt := range tests {
		h := &Header{CartType: tt.cartType}
		h.RAMSizeBytes, _ = decodeRAMSize(tt.ramCode)
		if got := h.HasBattery(); got != tt.want {
			t.Fatalf("type 0x%02X ram 0x%02X: HasBattery=%v want %v", tt.cartType, tt.ramCode, got, tt.want)
		}
	}
}
