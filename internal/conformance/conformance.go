// Package conformance checks the CPU against single-instruction test
// vectors in the SingleStepTests JSON layout. Each vector gives a register
// file and a set of memory bytes before and after one instruction.
package conformance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cpu"
)

type State struct {
	PC  uint16 `json:"pc"`
	SP  uint16 `json:"sp"`
	A   byte   `json:"a"`
	B   byte   `json:"b"`
	C   byte   `json:"c"`
	D   byte   `json:"d"`
	E   byte   `json:"e"`
	F   byte   `json:"f"`
	H   byte   `json:"h"`
	L   byte   `json:"l"`
	IME byte   `json:"ime"`

	// address/value pairs
	RAM [][2]uint16 `json:"ram"`
}

type Case struct {
	Name    string `json:"name"`
	Initial State  `json:"initial"`
	Final   State  `json:"final"`
}

// Mismatch is one field that differs from the expected final state.
type Mismatch struct {
	Field string
	Want  uint16
	Got   uint16
}

func (m Mismatch) String() string {
	if m.Field == "pc" || m.Field == "sp" {
		return fmt.Sprintf("%s: want 0x%04x, got 0x%04x", m.Field, m.Want, m.Got)
	}
	return fmt.Sprintf("%s: want 0x%02x, got 0x%02x", m.Field, m.Want, m.Got)
}

// Run executes c on a fresh flat memory.
func Run(c Case) []Mismatch {
	return RunOn(NewFlatMemory(), c)
}

// RunOn executes c on mem, which is reset first. Reusing one memory across
// a file of vectors avoids a 64KB allocation per case.
func RunOn(mem *FlatMemory, c Case) []Mismatch {
	mem.Reset()
	for _, e := range c.Initial.RAM {
		mem.Set(e[0], byte(e[1]))
	}

	p := cpu.New(mem)
	in := c.Initial
	p.PC, p.SP = in.PC, in.SP
	p.A, p.B, p.C, p.D, p.E, p.H, p.L = in.A, in.B, in.C, in.D, in.E, in.H, in.L
	p.F = cpu.Flags(in.F) & 0xF0
	p.IME = in.IME != 0

	p.Step()

	want := c.Final
	var out []Mismatch
	check := func(field string, w, g uint16) {
		if w != g {
			out = append(out, Mismatch{Field: field, Want: w, Got: g})
		}
	}
	check("pc", want.PC, p.PC)
	check("sp", want.SP, p.SP)
	check("a", uint16(want.A), uint16(p.A))
	check("b", uint16(want.B), uint16(p.B))
	check("c", uint16(want.C), uint16(p.C))
	check("d", uint16(want.D), uint16(p.D))
	check("e", uint16(want.E), uint16(p.E))
	check("f", uint16(want.F), uint16(p.F))
	check("h", uint16(want.H), uint16(p.H))
	check("l", uint16(want.L), uint16(p.L))

	listed := make(map[uint16]bool, len(want.RAM))
	for _, e := range want.RAM {
		listed[e[0]] = true
		check(fmt.Sprintf("ram[0x%04x]", e[0]), e[1], uint16(mem.Read(e[0])))
	}

	// A write outside the expected set must leave the byte as it started.
	before := make(map[uint16]uint16, len(c.Initial.RAM))
	for _, e := range c.Initial.RAM {
		before[e[0]] = e[1]
	}
	var stray []uint16
	for addr := range mem.Writes() {
		if !listed[addr] {
			stray = append(stray, addr)
		}
	}
	slices.Sort(stray)
	for _, addr := range stray {
		check(fmt.Sprintf("ram[0x%04x]", addr), before[addr], uint16(mem.Read(addr)))
	}
	return out
}

// LoadFile reads one JSON array of cases.
func LoadFile(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("conformance: %s: %w", filepath.Base(path), err)
	}
	return cases, nil
}

// File is the cases of one vector file.
type File struct {
	Name  string
	Cases []Case
}

// LoadDir reads every .json file in dir, in name order.
func LoadDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		cases, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: e.Name(), Cases: cases})
	}
	return files, nil
}
