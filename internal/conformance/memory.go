package conformance

import "golang.org/x/exp/maps"

// FlatMemory is 64KB of plain RAM with no mapping or I/O side effects.
// It records which addresses were written since the last Reset.
type FlatMemory struct {
	data    [0x10000]byte
	written map[uint16]byte
}

func NewFlatMemory() *FlatMemory {
	return &FlatMemory{written: make(map[uint16]byte)}
}

func (m *FlatMemory) Read(addr uint16) byte { return m.data[addr] }

func (m *FlatMemory) Write(addr uint16, v byte) {
	m.data[addr] = v
	m.written[addr] = v
}

// Set stores v without recording a write.
func (m *FlatMemory) Set(addr uint16, v byte) { m.data[addr] = v }

// Writes returns a copy of the last value written to each address.
func (m *FlatMemory) Writes() map[uint16]byte { return maps.Clone(m.written) }

func (m *FlatMemory) Reset() {
	m.data = [0x10000]byte{}
	maps.Clear(m.written)
}
