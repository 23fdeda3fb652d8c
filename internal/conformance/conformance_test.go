package conformance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandwrittenVectors(t *testing.T) {
	cases, err := LoadFile(filepath.Join("testdata", "handwritten.json"))
	require.NoError(t, err)
	require.NotEmpty(t, cases)

	mem := NewFlatMemory()
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Empty(t, RunOn(mem, c))
		})
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	c := Case{
		Name: "3c inc a",
		Initial: State{
			PC: 0xC000, SP: 0xD000, A: 0x0F,
			RAM: [][2]uint16{{0xC000, 0x3C}},
		},
		Final: State{
			PC: 0xC001, SP: 0xD000, A: 0x11, F: 0x20,
			RAM: [][2]uint16{{0xC000, 0x3D}},
		},
	}
	got := Run(c)
	require.Len(t, got, 2)
	assert.Equal(t, Mismatch{Field: "a", Want: 0x11, Got: 0x10}, got[0])
	assert.Equal(t, "a: want 0x11, got 0x10", got[0].String())
	assert.Equal(t, "ram[0xc000]: want 0x3d, got 0x3c", got[1].String())
}

func TestRun_StrayWrite(t *testing.T) {
	c := Case{
		Name: "77 ld (hl),a",
		Initial: State{
			PC: 0xC000, SP: 0xD000, A: 0x99, H: 0xC1,
			RAM: [][2]uint16{{0xC000, 0x77}},
		},
		Final: State{
			PC: 0xC001, SP: 0xD000, A: 0x99, H: 0xC1,
			RAM: [][2]uint16{{0xC000, 0x77}},
		},
	}
	got := Run(c)
	require.Len(t, got, 1)
	assert.Equal(t, "ram[0xc100]: want 0x00, got 0x99", got[0].String())
}

func TestRun_PCFormatting(t *testing.T) {
	m := Mismatch{Field: "pc", Want: 0x0100, Got: 0xC001}
	assert.Equal(t, "pc: want 0x0100, got 0xc001", m.String())
}

func TestFlatMemory_ResetClearsWrites(t *testing.T) {
	m := NewFlatMemory()
	m.Set(0x1000, 0x01)
	m.Write(0x2000, 0x02)
	w := m.Writes()
	assert.Equal(t, map[uint16]byte{0x2000: 0x02}, w)

	w[0x3000] = 0x03 // a copy
	assert.Len(t, m.Writes(), 1)

	m.Reset()
	assert.Empty(t, m.Writes())
	assert.Equal(t, byte(0), m.Read(0x1000))
}

func TestLoadDir(t *testing.T) {
	files, err := LoadDir("testdata")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "handwritten.json", files[0].Name)

	_, err = LoadFile(filepath.Join("testdata", "missing.json"))
	assert.Error(t, err)
}

// TestSingleStepVectors runs the external sm83 vectors when
// GB_SINGLESTEP_DIR points at a checkout of them.
func TestSingleStepVectors(t *testing.T) {
	dir := os.Getenv("GB_SINGLESTEP_DIR")
	if dir == "" {
		t.Skip("skipping test because GB_SINGLESTEP_DIR is not set")
	}
	files, err := LoadDir(dir)
	require.NoError(t, err)

	mem := NewFlatMemory()
	for _, f := range files {
		t.Run(f.Name, func(t *testing.T) {
			for _, c := range f.Cases {
				if got := RunOn(mem, c); len(got) > 0 {
					t.Fatalf("%s: %v", c.Name, got)
				}
			}
		})
	}
}
