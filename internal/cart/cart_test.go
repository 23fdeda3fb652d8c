package cart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsController(t *testing.T) {
	tests := []struct {
		name     string
		cartType byte
		romCode  byte
		ramCode  byte
		want     any
	}{
		{"rom only", 0x00, 0x00, 0x00, &ROMOnly{}},
		{"mbc1", 0x01, 0x01, 0x00, &MBC1{}},
		{"mbc1 ram battery", 0x03, 0x01, 0x03, &MBC1{}},
		{"mbc3", 0x13, 0x02, 0x03, &MBC3{}},
		{"mbc5", 0x1B, 0x03, 0x04, &MBC5{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, h, err := New(buildROM("SEL", tt.cartType, tt.romCode, tt.ramCode, (32*1024)<<tt.romCode))
			require.NoError(t, err)
			assert.IsType(t, tt.want, c)
			assert.Equal(t, tt.cartType, h.CartType)
		})
	}
}

func TestNew_LoadErrors(t *testing.T) {
	_, _, err := New(buildROM("MBC2", 0x05, 0x00, 0x00, 32*1024))
	assert.True(t, errors.Is(err, ErrUnsupported), "MBC2: %v", err)

	_, _, err = New(buildROM("HUGE", 0x01, 0x02, 0x00, 64*1024))
	assert.True(t, errors.Is(err, ErrSizeMismatch), "short image: %v", err)

	_, _, err = New(buildROM("RAM", 0x00, 0x00, 0x02, 32*1024))
	assert.True(t, errors.Is(err, ErrSizeMismatch), "ROM-only with RAM: %v", err)

	_, _, err = New(make([]byte, 0x100))
	assert.True(t, errors.Is(err, ErrHeaderTooShort), "tiny image: %v", err)
}

func TestRAMEnable_AllFamilies(t *testing.T) {
	carts := map[string]Cartridge{
		"rom only": NewROMOnly(markedROM(2)),
		"mbc1":     NewMBC1(markedROM(4), 8*1024),
		"mbc3":     NewMBC3(markedROM(4), 8*1024),
		"mbc5":     NewMBC5(markedROM(4), 8*1024),
	}
	for name, c := range carts {
		t.Run(name, func(t *testing.T) {
			_, hasRAM := c.(BatteryBacked)
			for v := 0; v < 0x100; v++ {
				c.Write(0x0000, byte(v))
				c.Write(0xA000, 0x42)
				got := c.Read(0xA000)
				if byte(v)&0x0F == 0x0A && hasRAM {
					assert.Equal(t, byte(0x42), got, "enable value %02X", v)
				} else {
					assert.Equal(t, byte(0xFF), got, "enable value %02X", v)
				}
			}
		})
	}
}

func TestDisabledRAM_IgnoresWrites(t *testing.T) {
	m := NewMBC5(markedROM(4), 8*1024)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x10)
	m.Write(0x1000, 0x00)
	m.Write(0xA000, 0x20)
	assert.Equal(t, byte(0xFF), m.Read(0xA000))
	m.Write(0x1FFF, 0xFA)
	assert.Equal(t, byte(0x10), m.Read(0xA000))
}

func TestLoadRAM_Size(t *testing.T) {
	m := NewMBC1(markedROM(4), 8*1024)
	assert.ErrorIs(t, m.LoadRAM(make([]byte, 100)), ErrRAMSize)

	save := make([]byte, 8*1024)
	save[5] = 0xEE
	require.NoError(t, m.LoadRAM(save))
	m.Write(0x0000, 0x0A)
	assert.Equal(t, byte(0xEE), m.Read(0xA005))
}

func TestTwoKilobyteRAM_Mirrors(t *testing.T) {
	m := NewMBC1(markedROM(4), 2*1024)
	m.Write(0x0000, 0x0A)
	m.Write(0xA001, 0x31)
	assert.Equal(t, byte(0x31), m.Read(0xA801))
}
