package bus

// Button is one bit of the raw joypad state byte. The low nibble holds
// the action keys and the high nibble the direction keys, matching the
// two halves JOYP can select.
type Button byte

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

var buttonNames = map[string]Button{
	"a": ButtonA, "b": ButtonB, "select": ButtonSelect, "start": ButtonStart,
	"right": ButtonRight, "left": ButtonLeft, "up": ButtonUp, "down": ButtonDown,
}

// ParseButton maps a lower-case button name ("a", "start", "left", ...) to its bit.
func ParseButton(name string) (Button, bool) {
	b, ok := buttonNames[name]
	return b, ok
}

// Buttons returns the raw state. A cleared bit means pressed.
func (b *Bus) Buttons() byte { return b.buttons }

// SetButtons replaces the raw state and requests the joypad interrupt
// when any button goes from released to pressed.
func (b *Bus) SetButtons(raw byte) {
	if b.buttons&^raw != 0 {
		b.RequestInterrupt(IntJoypad)
	}
	b.buttons = raw
}

func (b *Bus) Press(btn Button)   { b.SetButtons(b.buttons &^ byte(btn)) }
func (b *Bus) Release(btn Button) { b.SetButtons(b.buttons | byte(btn)) }

// joypad builds the JOYP read value. Bit 4 low selects directions,
// bit 5 low selects actions; unselected lines read high.
func (b *Bus) joypad() byte {
	sel := b.Regs.JOYP & 0x30
	v := 0xC0 | sel | 0x0F
	if sel&0x10 == 0 {
		v &= 0xF0 | b.buttons>>4
	}
	if sel&0x20 == 0 {
		v &= 0xF0 | b.buttons&0x0F
	}
	return v
}
