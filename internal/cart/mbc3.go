package cart

// MBC3 maps up to 2MB of ROM and 32KB of RAM.
//
//	0000-1FFF  RAM enable (low nibble 0x0A)
//	2000-3FFF  ROM bank, 7 bits (0 selects 1)
//	4000-5FFF  RAM bank (4 bits) or clock register select 08-0C
//	6000-7FFF  clock latch, ignored
//
// The real-time clock is not emulated. Its five registers behave as plain
// latches that read back whatever was last written.
type MBC3 struct {
	banked

	romBank byte
	ramSel  byte
	rtc     [5]byte
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	return &MBC3{banked: newBanked(rom, ramSize), romBank: 1}
}

func (m *MBC3) rtcSelected() bool { return m.ramSel >= 0x08 && m.ramSel <= 0x0C }

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return m.readROM(0, addr)
	case addr < 0x8000:
		return m.readROM(int(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.rtcSelected() {
			if !m.ramEnabled {
				return 0xFF
			}
			return m.rtc[m.ramSel-0x08]
		}
		return m.readRAM(int(m.ramSel), addr)
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.setRAMEnable(value)
	case addr < 0x4000:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr < 0x6000:
		m.ramSel = value & 0x0F
	case addr < 0x8000:
		// latch clock
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.rtcSelected() {
			if m.ramEnabled {
				m.rtc[m.ramSel-0x08] = value
			}
			return
		}
		m.writeRAM(int(m.ramSel), addr, value)
	}
}

func (m *MBC3) SaveState() ([]byte, error) {
	return encodeState(bankState{
		RAM:        m.SaveRAM(),
		ROMBank:    uint16(m.romBank),
		RAMBank:    m.ramSel,
		RAMEnabled: m.ramEnabled,
		RTC:        m.rtc,
	})
}

func (m *MBC3) LoadState(data []byte) error {
	s, err := decodeState(data, m.ram)
	if err != nil {
		return err
	}
	m.romBank, m.ramSel, m.ramEnabled, m.rtc = byte(s.ROMBank), s.RAMBank, s.RAMEnabled, s.RTC
	return nil
}
