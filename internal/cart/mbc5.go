package cart

// MBC5 maps up to 8MB of ROM and 128KB of RAM. Unlike MBC1/MBC3,
// bank 0 can be mapped into the switchable window.
type MBC5 struct {
	banked

	romBank uint16 // 9 bits
	ramBank byte   // 4 bits
}

func NewMBC5(rom []byte, ramSize int) *MBC5 {
	return &MBC5{banked: newBanked(rom, ramSize), romBank: 1}
}

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return m.readROM(0, addr)
	case addr < 0x8000:
		return m.readROM(int(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return m.readRAM(int(m.ramBank), addr)
	}
	return 0xFF
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.setRAMEnable(value)
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		m.romBank = m.romBank&0x0FF | uint16(value&0x01)<<8
	case addr < 0x6000:
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		m.writeRAM(int(m.ramBank), addr, value)
	}
}

func (m *MBC5) SaveState() ([]byte, error) {
	return encodeState(bankState{
		RAM:        m.SaveRAM(),
		ROMBank:    m.romBank,
		RAMBank:    m.ramBank,
		RAMEnabled: m.ramEnabled,
	})
}

func (m *MBC5) LoadState(data []byte) error {
	s, err := decodeState(data, m.ram)
	if err != nil {
		return err
	}
	m.romBank, m.ramBank, m.ramEnabled = s.ROMBank&0x1FF, s.RAMBank, s.RAMEnabled
	return nil
}
