package cart

// ROMOnly is a 32KB cartridge without a bank controller or external RAM.
type ROMOnly struct {
	rom []byte
}

func NewROMOnly(rom []byte) *ROMOnly {
	return &ROMOnly{rom: rom}
}

func (c *ROMOnly) Read(addr uint16) byte {
	if addr < 0x8000 && int(addr) < len(c.rom) {
		return c.rom[addr]
	}
	return 0xFF
}

// Write ignores control writes; there is nothing to switch.
func (c *ROMOnly) Write(addr uint16, value byte) {}

func (c *ROMOnly) SaveState() ([]byte, error)  { return encodeState(bankState{}) }
func (c *ROMOnly) LoadState(data []byte) error { _, err := decodeState(data, nil); return err }
