package cart

// MBC1 maps up to 512KB of ROM through a 5-bit bank register and 32KB
// of RAM through a 2-bit one.
//
//	0000-1FFF  RAM enable (low nibble 0x0A)
//	2000-3FFF  ROM bank, 5 bits (0 selects 1)
//	4000-5FFF  RAM bank, 2 bits, in either mode
//	6000-7FFF  mode select, latched but not used for banking
type MBC1 struct {
	banked

	romLow5 byte
	high2   byte
	mode    byte
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	return &MBC1{banked: newBanked(rom, ramSize), romLow5: 1}
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return m.readROM(0, addr)
	case addr < 0x8000:
		return m.readROM(int(m.romLow5), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return m.readRAM(int(m.high2), addr)
	}
	return 0xFF
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.setRAMEnable(value)
	case addr < 0x4000:
		m.romLow5 = value & 0x1F
		if m.romLow5 == 0 {
			m.romLow5 = 1
		}
	case addr < 0x6000:
		m.high2 = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		m.writeRAM(int(m.high2), addr, value)
	}
}

func (m *MBC1) SaveState() ([]byte, error) {
	return encodeState(bankState{
		RAM:        m.SaveRAM(),
		ROMBank:    uint16(m.romLow5),
		RAMBank:    m.high2,
		Mode:       m.mode,
		RAMEnabled: m.ramEnabled,
	})
}

func (m *MBC1) LoadState(data []byte) error {
	s, err := decodeState(data, m.ram)
	if err != nil {
		return err
	}
	m.romLow5, m.high2, m.mode, m.ramEnabled = byte(s.ROMBank), s.RAMBank, s.Mode, s.RAMEnabled
	return nil
}
